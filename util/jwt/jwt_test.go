package jwt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	tok, err := Issue("secret", 7, "admin", 1)
	require.NoError(t, err)

	claims, err := ParseAuth(tok, "secret")
	require.NoError(t, err)
	require.EqualValues(t, 7, claims["sub"])
	require.Equal(t, "admin", claims["role"])
}

func TestParseStripsBearerPrefix(t *testing.T) {
	tok, err := Issue("secret", 3, "member", 1)
	require.NoError(t, err)

	claims, err := ParseAuth("Bearer "+tok, "secret")
	require.NoError(t, err)
	require.EqualValues(t, 3, claims["sub"])
}

func TestParseRejectsBadInput(t *testing.T) {
	tok, err := Issue("secret", 7, "member", 1)
	require.NoError(t, err)

	_, err = ParseAuth(tok, "other-secret")
	require.Error(t, err)

	_, err = ParseAuth("", "secret")
	require.Error(t, err)

	_, err = ParseAuth("Bearer ", "secret")
	require.Error(t, err)

	// Tampered payload fails signature verification.
	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	_, err = ParseAuth(tampered, "secret")
	require.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	tok, err := Issue("secret", 7, "member", -1)
	require.NoError(t, err)

	_, err = ParseAuth(tok, "secret")
	require.Error(t, err)
}
