package portal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkTokenRoundTrip(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

	tok, err := MintLinkToken("bk-1", "secret", 24*time.Hour, now)
	require.NoError(t, err)

	id, err := VerifyLinkToken(tok, "secret", now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "bk-1", id)
}

func TestLinkTokenRejections(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	tok, err := MintLinkToken("bk-1", "secret", 24*time.Hour, now)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := VerifyLinkToken(tok, "other-secret", now)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		_, err := VerifyLinkToken(tok, "secret", now.Add(25*time.Hour))
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := VerifyLinkToken("not.a.token", "secret", now)
		assert.Error(t, err)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := VerifyLinkToken("", "secret", now)
		assert.Error(t, err)
	})
}

func TestMintValidation(t *testing.T) {
	now := time.Now()
	_, err := MintLinkToken("", "secret", time.Hour, now)
	assert.Error(t, err)
	_, err = MintLinkToken("bk-1", "", time.Hour, now)
	assert.Error(t, err)
}
