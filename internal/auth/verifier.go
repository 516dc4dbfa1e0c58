// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"revista/internal/models"
)

// audience is the aud claim GoTrue sets on user access tokens.
const audience = "authenticated"

var (
	// ErrTokenExpired is returned for a well-signed token past its exp.
	ErrTokenExpired = errors.New("access token expired")
	// ErrInvalidToken is returned for any other verification failure.
	ErrInvalidToken = errors.New("invalid access token")
)

// Claims is the subset of the GoTrue access token the site relies on.
type Claims struct {
	jwt.RegisteredClaims
	Email       string      `json:"email"`
	AppMetadata AppMetadata `json:"app_metadata"`
}

// AppMetadata carries server-controlled user attributes. Only the service
// role can write it, so the site role is read from here.
type AppMetadata struct {
	Role string `json:"role,omitempty"`
}

// Verifier checks HS256 access tokens against the project JWT secret.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

// NewVerifier returns a Verifier for the given JWT secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret), now: time.Now}
}

// Verify validates token and returns the user it identifies. Unknown roles
// map to a plain reader.
func (v *Verifier) Verify(token string) (*models.User, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
		jwt.WithLeeway(5*time.Second),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, ErrTokenExpired
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject is not a uuid", ErrInvalidToken)
	}

	return &models.User{
		ID:    id,
		Email: claims.Email,
		Role:  roleFrom(claims.AppMetadata.Role),
	}, nil
}

// Sign mints a token shaped like the ones GoTrue issues, for local
// development and tests. Production tokens come from Supabase.
func (v *Verifier) Sign(u models.User, ttl time.Duration) (string, error) {
	now := v.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:       u.Email,
		AppMetadata: AppMetadata{Role: string(u.Role)},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func roleFrom(s string) models.Role {
	switch r := models.Role(s); r {
	case models.RoleAdmin, models.RoleEditor:
		return r
	}
	return models.RoleReader
}
