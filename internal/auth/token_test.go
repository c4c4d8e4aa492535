package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-market/internal/apperr"
)

func newService(t *testing.T, ttl time.Duration) *TokenService {
	t.Helper()
	svc, err := NewTokenService("super-secret", ttl)
	require.NoError(t, err)
	return svc
}

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()
	svc := newService(t, 7*24*time.Hour)

	tok, err := svc.Issue(42)
	require.NoError(t, err)

	userID, err := svc.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, 42, userID)
}

func TestIssueSetsSevenDayExpiry(t *testing.T) {
	t.Parallel()
	svc := newService(t, 7*24*time.Hour)
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	tok, err := svc.Issue(1)
	require.NoError(t, err)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(7*24*time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.Equal(t, "1", claims.Subject)
}

func TestVerifyExpired(t *testing.T) {
	t.Parallel()
	svc := newService(t, -time.Second)

	tok, err := svc.Issue(1)
	require.NoError(t, err)

	_, err = svc.Verify(tok)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	assert.Equal(t, "token expired", apperr.MessageOf(err))
}

func TestVerifyWrongSecret(t *testing.T) {
	t.Parallel()
	other, err := NewTokenService("other-secret", time.Hour)
	require.NoError(t, err)
	tok, err := other.Issue(3)
	require.NoError(t, err)

	_, err = newService(t, time.Hour).Verify(tok)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestVerifyMalformed(t *testing.T) {
	t.Parallel()
	_, err := newService(t, time.Hour).Verify("not.a.jwt")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestVerifyRejectsAnySingleByteMutation(t *testing.T) {
	t.Parallel()
	svc := newService(t, time.Hour)
	tok, err := svc.Issue(7)
	require.NoError(t, err)

	for i := 0; i < len(tok); i++ {
		mutated := []byte(tok)
		// keep the byte inside the base64url alphabet so the mutation is not trivially a parse error
		if mutated[i] == 'A' {
			mutated[i] = 'B'
		} else {
			mutated[i] = 'A'
		}
		if string(mutated) == tok {
			continue
		}
		_, err := svc.Verify(string(mutated))
		assert.Errorf(t, err, "mutation at byte %d accepted", i)
	}
}

func TestVerifyRejectsNoneAlgorithm(t *testing.T) {
	t.Parallel()
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})
	s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newService(t, time.Hour).Verify(s)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService("", time.Hour)
	assert.ErrorIs(t, err, ErrEmptySecret)
}
