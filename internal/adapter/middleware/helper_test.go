package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBodyHash(t *testing.T) {
	sum := sha256.Sum256([]byte("hello world"))
	assert.Equal(t, hex.EncodeToString(sum[:]), bodyHash([]byte("hello world")))
	assert.NotEqual(t, bodyHash([]byte(`{"x":1}`)), bodyHash([]byte(`{"x":2}`)))
}

func TestNowUTC(t *testing.T) {
	u := nowUTC()
	assert.Equal(t, time.UTC, u.Location())
	assert.WithinDuration(t, time.Now(), u, 2*time.Second)
}

func TestBuildKey(t *testing.T) {
	k := buildKey("POST", "/api/v1/loans/:loan_id/repay", testUserID, testReqID)
	assert.Equal(t, "idemp:pc:post:/api/v1/loans/:loan_id/repay:"+testUserID+":"+testReqID, k)
}

func TestValidReqID(t *testing.T) {
	for _, s := range []string{
		"3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c88",
		strings.Repeat("a", 32),
		"  3f9a6a1b3d544fbe8b3a6b3e8d6b2c88 ",
	} {
		assert.True(t, validReqID(s), s)
	}
	for _, s := range []string{
		"",
		"3F9A6A1B3D544FBE8B3A6B3E8D6B2C88",
		strings.Repeat("a", 31),
		"3f9a6a1b-3d54-4fbe-cb3a-6b3e8d6b2c88",
		"zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz",
	} {
		assert.False(t, validReqID(s), s)
	}
}

func TestParseRequestAt(t *testing.T) {
	ref := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)

	cases := map[string]time.Time{
		strconv.FormatInt(ref.Unix(), 10):      ref,
		strconv.FormatInt(ref.UnixMilli(), 10): ref,
		"2025-01-10T10:00:00Z":                 ref,
		"2025-01-10T15:30:00+05:30":            ref,
		"2025-01-10T10:00:00.250Z":             ref.Add(250 * time.Millisecond),
	}
	for raw, want := range cases {
		got, err := parseRequestAt(raw)
		require.NoError(t, err, raw)
		assert.True(t, want.Equal(got), "%s: got %s", raw, got)
		assert.Equal(t, time.UTC, got.Location())
	}

	for _, raw := range []string{"", "   ", "2025-01-10T10:00:00", "2025-01-10", "tomorrow"} {
		_, err := parseRequestAt(raw)
		assert.Error(t, err, raw)
	}
}

func TestProvisionalSetThenLoad(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	ctx := context.Background()
	key := buildKey("POST", "/loans", testUserID, testReqID)
	entry := idempEntry{InProgress: true, BodySHA256: "abc", RequestID: testReqID}

	ok, err := provisionalSet(ctx, rdb, key, entry)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = provisionalSet(ctx, rdb, key, entry)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := loadEntry(ctx, rdb, key)
	require.NoError(t, err)
	assert.True(t, got.InProgress)
	assert.Equal(t, "abc", got.BodySHA256)
	assert.Equal(t, provisionalLockTTL, mr.TTL(key))
}

func TestSaveFinalOverwritesWithTTL(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	ctx := context.Background()
	key := buildKey("POST", "/loans", testUserID, testReqID)

	_, err := provisionalSet(ctx, rdb, key, idempEntry{InProgress: true})
	require.NoError(t, err)
	require.NoError(t, saveFinal(ctx, rdb, key, idempEntry{Code: 201, Body: []byte(`{"ok":true}`)}, 24*time.Hour))

	got, err := loadEntry(ctx, rdb, key)
	require.NoError(t, err)
	assert.False(t, got.InProgress)
	assert.Equal(t, 201, got.Code)
	assert.JSONEq(t, `{"ok":true}`, string(got.Body))
	assert.Equal(t, 24*time.Hour, mr.TTL(key))
}

func TestLoadEntry_Missing(t *testing.T) {
	_, rdb := newMiniredisClient(t)
	_, err := loadEntry(context.Background(), rdb, "idemp:pc:none")
	assert.Error(t, err)
}
