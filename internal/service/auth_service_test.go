package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/terreiro-erp-api/internal/models"
	appErrors "github.com/noah-isme/terreiro-erp-api/pkg/errors"
)

func signToken(t *testing.T, method jwt.SigningMethod, secret string, claims models.JWTClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(method, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims(role models.UserRole) models.JWTClaims {
	now := time.Now()
	return models.JWTClaims{
		UserID: 1,
		Email:  "admin@example.com",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "terreiro-erp",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func TestValidateToken(t *testing.T) {
	svc := NewAuthService(nil, AuthConfig{AccessTokenSecret: "secret", Issuer: "terreiro-erp"})

	claims, err := svc.ValidateToken(signToken(t, jwt.SigningMethodHS256, "secret", validClaims("advanced")))
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdvanced, claims.Role)
	assert.Equal(t, int64(1), claims.UserID)
}

func TestValidateTokenRejections(t *testing.T) {
	svc := NewAuthService(nil, AuthConfig{AccessTokenSecret: "secret", Issuer: "terreiro-erp"})

	expired := validClaims(models.RoleSuperuser)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	foreign := validClaims(models.RoleSuperuser)
	foreign.Issuer = "someone-else"

	cases := map[string]string{
		"wrong secret": signToken(t, jwt.SigningMethodHS256, "other", validClaims(models.RoleStandard)),
		"expired":      signToken(t, jwt.SigningMethodHS256, "secret", expired),
		"issuer":       signToken(t, jwt.SigningMethodHS256, "secret", foreign),
		"algorithm":    signToken(t, jwt.SigningMethodHS512, "secret", validClaims(models.RoleStandard)),
		"unknown role": signToken(t, jwt.SigningMethodHS256, "secret", validClaims("GUEST")),
		"not a jwt":    "garbage",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestValidateTokenReportsExpiry(t *testing.T) {
	svc := NewAuthService(nil, AuthConfig{AccessTokenSecret: "secret"})
	expired := validClaims(models.RoleStandard)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	_, err := svc.ValidateToken(signToken(t, jwt.SigningMethodHS256, "secret", expired))
	require.Error(t, err)
	assert.Equal(t, "token expired", appErrors.FromError(err).Message)
}
