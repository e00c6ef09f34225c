package verification

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "pocketcredit-backend/internal/domain/verification"
)

func TestMockProvider_CreditDeterministic(t *testing.T) {
	p := NewMockProvider(0)
	ctx := context.Background()

	a, err := p.FetchCreditProfile(ctx, "ABCDE1234F")
	if err != nil {
		t.Fatalf("FetchCreditProfile: %v", err)
	}
	b, _ := p.FetchCreditProfile(ctx, "abcde1234f")
	if a.Score != b.Score || a.PAN != "ABCDE1234F" {
		t.Fatalf("score not deterministic: %d vs %d", a.Score, b.Score)
	}
	if a.Score < 300 || a.Score > 900 {
		t.Fatalf("score out of range: %d", a.Score)
	}
	if a.Band != domain.ScoreBand(a.Score) {
		t.Fatalf("band mismatch: %s for %d", a.Band, a.Score)
	}

	if _, err := p.FetchCreditProfile(ctx, "bad"); err == nil {
		t.Fatalf("invalid PAN should fail")
	}
}

func TestMockProvider_VerifyIdentity(t *testing.T) {
	p := NewMockProvider(0)
	ctx := context.Background()

	ok, err := p.VerifyIdentity(ctx, "ABCDE1234F", "Asha Rao")
	if err != nil || !ok.Verified || ok.NameOnRecord != "ASHA RAO" {
		t.Fatalf("want verified, got %+v err=%v", ok, err)
	}
	bad, err := p.VerifyIdentity(ctx, "12345", "Asha Rao")
	if err != nil || bad.Verified {
		t.Fatalf("want unverified for bad PAN, got %+v err=%v", bad, err)
	}
	noName, _ := p.VerifyIdentity(ctx, "ABCDE1234F", " ")
	if noName.Verified {
		t.Fatalf("empty name must not verify")
	}
}

func TestMockProvider_VerifyBankAccount(t *testing.T) {
	p := NewMockProvider(0)
	ctx := context.Background()

	ok, err := p.VerifyBankAccount(ctx, "123456789012", "hdfc0001234")
	if err != nil || !ok.Verified || ok.BankName != "HDFC Bank" {
		t.Fatalf("want verified HDFC, got %+v err=%v", ok, err)
	}
	for _, tc := range []struct{ acct, ifsc string }{
		{"12ab", "HDFC0001234"},
		{"123456789012", "HDFC1001234"},
		{"123456789012", "HDF0001234"},
	} {
		res, err := p.VerifyBankAccount(ctx, tc.acct, tc.ifsc)
		if err != nil || res.Verified {
			t.Fatalf("%s/%s should not verify: %+v err=%v", tc.acct, tc.ifsc, res, err)
		}
	}
}

func TestMockProvider_HonoursContext(t *testing.T) {
	p := NewMockProvider(time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := p.VerifyBankAccount(ctx, "123456789012", "HDFC0001234"); err == nil {
		t.Fatalf("expected deadline error")
	}
}

type countingProvider struct {
	domain.Provider
	calls int
}

func (c *countingProvider) FetchCreditProfile(ctx context.Context, pan string) (domain.CreditProfile, error) {
	c.calls++
	return c.Provider.FetchCreditProfile(ctx, pan)
}

func TestCachedProvider(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	inner := &countingProvider{Provider: NewMockProvider(0)}
	cp := NewCachedProvider(inner, rdb, time.Hour, zap.NewNop())
	ctx := context.Background()

	first, err := cp.FetchCreditProfile(ctx, "ABCDE1234F")
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := cp.FetchCreditProfile(ctx, "ABCDE1234F")
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("want one bureau pull, got %d", inner.calls)
	}
	if first.Score != second.Score {
		t.Fatalf("cached score differs: %d vs %d", first.Score, second.Score)
	}
	if ttl := s.TTL(creditKey("ABCDE1234F")); ttl != time.Hour {
		t.Fatalf("cache ttl = %v", ttl)
	}

	s.FastForward(2 * time.Hour)
	if _, err := cp.FetchCreditProfile(ctx, "ABCDE1234F"); err != nil {
		t.Fatalf("after expiry: %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("want a fresh pull after expiry, got %d calls", inner.calls)
	}

	// identity passes straight through the embedded provider
	res, err := cp.VerifyIdentity(ctx, "ABCDE1234F", "Asha Rao")
	if err != nil || !res.Verified {
		t.Fatalf("VerifyIdentity via cache wrapper: %+v err=%v", res, err)
	}
}

func TestCachedProvider_RedisDown(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	inner := &countingProvider{Provider: NewMockProvider(0)}
	cp := NewCachedProvider(inner, rdb, time.Hour, zap.NewNop())

	if _, err := cp.FetchCreditProfile(context.Background(), "ABCDE1234F"); err != nil {
		t.Fatalf("cache outage must fall back to live pull: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("want one live pull, got %d", inner.calls)
	}
}
