package token_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bistro-boss-server/pkg/token"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	tok, err := token.Issue("amina@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := token.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "amina@example.com", claims.Email)
	assert.Equal(t, "amina@example.com", claims.Subject)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "not-a-token", "aaa.bbb.ccc"} {
		_, err := token.Verify(s)
		assert.ErrorIs(t, err, token.ErrInvalid, "token: %q", s)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	tok, err := token.Issue("amina@example.com")
	require.NoError(t, err)

	// Flip the last character of the signature segment.
	repl := byte('A')
	if tok[len(tok)-1] == 'A' {
		repl = 'B'
	}
	tampered := tok[:len(tok)-1] + string(repl)
	_, err = token.Verify(tampered)
	assert.ErrorIs(t, err, token.ErrInvalid)
}
