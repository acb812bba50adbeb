package jwt

import (
	"errors"
	"fmt"
	"time"

	"imager/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

const (
	PurposeAccess     = "access"
	PurposeActivation = "activation"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrWrongPurpose  = errors.New("token issued for another purpose")
	ErrMissingUserID = errors.New("token has no user id")
)

// NewToken issues an HS256 bearer token for the JSON API.
func NewToken(user models.User, duration time.Duration, secret string) (string, error) {
	return sign(user, PurposeAccess, duration, secret)
}

// NewActivationToken issues the token embedded in the activation link.
func NewActivationToken(user models.User, duration time.Duration, secret string) (string, error) {
	return sign(user, PurposeActivation, duration, secret)
}

// ParseActivationToken verifies signature, expiry and purpose and returns
// the user id the token was issued for.
func ParseActivationToken(tokenString, secret string) (int64, error) {
	claims, err := parse(tokenString, secret)
	if err != nil {
		return 0, err
	}
	if claims["purpose"] != PurposeActivation {
		return 0, ErrWrongPurpose
	}
	return UserID(claims)
}

// UserID extracts the "uid" claim. JSON numbers decode as float64.
func UserID(claims jwt.MapClaims) (int64, error) {
	switch v := claims["uid"].(type) {
	case float64:
		return int64(v), nil
	case int64:
		return v, nil
	}
	return 0, ErrMissingUserID
}

// AccessUserID validates an already parsed bearer token's claims.
func AccessUserID(claims jwt.MapClaims) (int64, error) {
	if claims["purpose"] != PurposeAccess {
		return 0, ErrWrongPurpose
	}
	return UserID(claims)
}

func sign(user models.User, purpose string, duration time.Duration, secret string) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	now := time.Now()
	claims := token.Claims.(jwt.MapClaims)
	claims["uid"] = user.ID
	claims["username"] = user.Username
	claims["purpose"] = purpose
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(duration).Unix()

	return token.SignedString([]byte(secret))
}

func parse(tokenString, secret string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	return claims, nil
}
