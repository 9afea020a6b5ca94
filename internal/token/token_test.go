package token

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueAndParseRoundTrip(t *testing.T) {
	issuer := NewIssuer("test-secret", 24*time.Hour)

	signed, err := issuer.Issue(42, "alice@example.com", "manager")
	require.NoError(t, err)

	claims, err := issuer.Parse(signed)
	require.NoError(t, err)
	require.Equal(t, uint(42), claims.UserID)
	require.Equal(t, "alice@example.com", claims.Email)
	require.Equal(t, "manager", claims.Role)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := issued
	issuer := NewIssuer("test-secret", 24*time.Hour, WithClock(func() time.Time { return clock }))

	signed, err := issuer.Issue(1, "bob@example.com", "member")
	require.NoError(t, err)

	clock = issued.Add(23 * time.Hour)
	_, err = issuer.Parse(signed)
	require.NoError(t, err)

	clock = issued.Add(25 * time.Hour)
	_, err = issuer.Parse(signed)
	require.ErrorIs(t, err, ErrExpired)
}

func TestParseRejectsTamperedToken(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	signed, err := issuer.Issue(7, "carol@example.com", "member")
	require.NoError(t, err)

	parts := strings.Split(signed, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	_, err = issuer.Parse(tampered)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	issuer := NewIssuer("secret-one", time.Hour)
	other := NewIssuer("secret-two", time.Hour)

	signed, err := issuer.Issue(7, "carol@example.com", "member")
	require.NoError(t, err)

	_, err = other.Parse(signed)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestParseRejectsGarbage(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	_, err := issuer.Parse("not-a-token")
	require.ErrorIs(t, err, ErrMalformed)
}
