// Package verification adapts third-party KYC services. MockProvider stands in for
// the credit bureau, PAN registry and penny-drop bank check in development.
package verification

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"regexp"
	"strings"
	"time"

	domain "pocketcredit-backend/internal/domain/verification"
)

var (
	rePAN     = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	reIFSC    = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	reAccount = regexp.MustCompile(`^[0-9]{9,18}$`)
)

var bankCodes = map[string]string{
	"HDFC": "HDFC Bank",
	"ICIC": "ICICI Bank",
	"SBIN": "State Bank of India",
	"UTIB": "Axis Bank",
	"KKBK": "Kotak Mahindra Bank",
}

// MockProvider returns deterministic results derived from a hash of the input, so
// repeated calls for the same PAN or account agree.
type MockProvider struct {
	latency time.Duration
	now     func() time.Time
}

func NewMockProvider(latency time.Duration) *MockProvider {
	return &MockProvider{latency: latency, now: func() time.Time { return time.Now().UTC() }}
}

func (p *MockProvider) wait(ctx context.Context) error {
	if p.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(p.latency)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func digest(s string) [32]byte { return sha256.Sum256([]byte(s)) }

func (p *MockProvider) FetchCreditProfile(ctx context.Context, pan string) (domain.CreditProfile, error) {
	pan = strings.ToUpper(strings.TrimSpace(pan))
	if !rePAN.MatchString(pan) {
		return domain.CreditProfile{}, fmt.Errorf("invalid PAN %q", pan)
	}
	if err := p.wait(ctx); err != nil {
		return domain.CreditProfile{}, err
	}
	h := digest("bureau:" + pan)
	score := 300 + int(binary.BigEndian.Uint32(h[:4])%601) // [300, 900]
	return domain.CreditProfile{
		PAN:            pan,
		Score:          score,
		Band:           domain.ScoreBand(score),
		ActiveAccounts: int(binary.BigEndian.Uint16(h[4:6]) % 8),
		Enquiries:      int(binary.BigEndian.Uint16(h[6:8]) % 5),
		CheckedAt:      p.now(),
	}, nil
}

func (p *MockProvider) VerifyIdentity(ctx context.Context, pan, fullName string) (domain.IdentityResult, error) {
	pan = strings.ToUpper(strings.TrimSpace(pan))
	if err := p.wait(ctx); err != nil {
		return domain.IdentityResult{}, err
	}
	res := domain.IdentityResult{PAN: pan}
	switch {
	case !rePAN.MatchString(pan):
		res.Message = "PAN format is invalid"
	case strings.TrimSpace(fullName) == "":
		res.Message = "name is required"
	default:
		res.Verified = true
		res.NameOnRecord = strings.ToUpper(strings.TrimSpace(fullName))
		res.Message = "PAN verified"
	}
	return res, nil
}

func (p *MockProvider) VerifyBankAccount(ctx context.Context, accountNumber, ifsc string) (domain.BankAccountResult, error) {
	accountNumber = strings.TrimSpace(accountNumber)
	ifsc = strings.ToUpper(strings.TrimSpace(ifsc))
	if err := p.wait(ctx); err != nil {
		return domain.BankAccountResult{}, err
	}
	res := domain.BankAccountResult{AccountNumber: accountNumber, IFSC: ifsc}
	switch {
	case !reAccount.MatchString(accountNumber):
		res.Message = "account number must be 9 to 18 digits"
	case !reIFSC.MatchString(ifsc):
		res.Message = "IFSC format is invalid"
	default:
		res.Verified = true
		res.BankName = bankCodes[ifsc[:4]]
		if res.BankName == "" {
			res.BankName = ifsc[:4]
		}
		res.Message = "account verified"
	}
	return res, nil
}
