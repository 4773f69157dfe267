package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "chat-relay/errors"
)

func Test_Token_Round_Trip(t *testing.T) {
	req := require.New(t)

	v := NewVerifier("test-secret", time.Hour)
	token, err := v.Generate("user-42")
	req.NoError(err)

	claims, err := v.Verify(token)
	req.NoError(err)
	req.Equal("user-42", claims.UserID)
}

func Test_Verify_Rejects_Wrong_Secret(t *testing.T) {
	req := require.New(t)

	token, err := NewVerifier("secret-a", time.Hour).Generate("user-42")
	req.NoError(err)

	_, err = NewVerifier("secret-b", time.Hour).Verify(token)
	req.ErrorIs(err, apperrors.ErrUnauthorized)
}

func Test_Verify_Rejects_Expired_Token(t *testing.T) {
	req := require.New(t)

	v := NewVerifier("test-secret", -time.Minute)
	token, err := v.Generate("user-42")
	req.NoError(err)

	_, err = v.Verify(token)
	req.ErrorIs(err, apperrors.ErrUnauthorized)
}

func Test_Verify_Rejects_Garbage(t *testing.T) {
	req := require.New(t)

	_, err := NewVerifier("test-secret", time.Hour).Verify("not-a-token")
	req.ErrorIs(err, apperrors.ErrUnauthorized)
}
