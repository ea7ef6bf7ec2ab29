package utils

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims identify the caller of an anonymous interview session.
type SessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
}

type TokenIssuer struct {
	secret []byte
	method jwt.SigningMethod
	expiry time.Duration
}

// NewTokenIssuer returns nil when secret is empty; a nil issuer disables session tokens.
func NewTokenIssuer(secret, algorithm string, expiry time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, nil
	}
	method := jwt.GetSigningMethod(algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("unsupported jwt algorithm: " + algorithm)
	}
	if expiry <= 0 {
		return nil, errors.New("jwt expiry must be positive")
	}
	return &TokenIssuer{secret: []byte(secret), method: method, expiry: expiry}, nil
}

func (t *TokenIssuer) Issue(userID uint, email, name string, now time.Time) (string, time.Time, error) {
	exp := now.Add(t.expiry)
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Email: email,
		Name:  name,
	}
	signed, err := jwt.NewWithClaims(t.method, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (t *TokenIssuer) Parse(raw string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{t.method.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !tok.Valid || claims.Email == "" {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}
