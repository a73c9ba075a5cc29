package mockservice

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenLifetime is how long an issued token stays valid.
const DefaultTokenLifetime = 24 * time.Hour

var (
	errMissingBearer = errors.New("missing or invalid Authorization header")
	errUserNotFound  = errors.New("user not found")
)

type tokenIssuer struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

func (ti tokenIssuer) issue(subject uuid.UUID) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject.String(),
		ExpiresAt: jwt.NewNumericDate(ti.now().Add(ti.lifetime)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
}

func (ti tokenIssuer) verify(token string) (uuid.UUID, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (interface{}, error) { return ti.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ti.now),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to decode JWT: %w", err)
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("bad subject in JWT: %w", err)
	}
	return id, nil
}

func bearerToken(authorization string) (string, error) {
	token, ok := strings.CutPrefix(authorization, "Bearer ")
	if !ok || token == "" {
		return "", errMissingBearer
	}
	return token, nil
}
