package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"conferencecentral/internal/domain"
)

type principalClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

type jwtCodec struct {
	secret []byte
}

// NewJWTIssuer returns a TokenIssuer that signs HS256 JWTs with the given
// secret. The subject carries the durable principal id when known; the email
// claim is always set.
func NewJWTIssuer(secret string) domain.TokenIssuer {
	return &jwtCodec{secret: []byte(secret)}
}

// NewJWTVerifier returns a TokenVerifier for tokens produced by NewJWTIssuer
// (or any compatible issuer sharing the secret).
func NewJWTVerifier(secret string) domain.TokenVerifier {
	return &jwtCodec{secret: []byte(secret)}
}

func (c *jwtCodec) Issue(p domain.Principal, expiry time.Duration) (string, error) {
	if p.Email == "" {
		return "", fmt.Errorf("principal email is required")
	}
	now := time.Now()
	claims := principalClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Email: p.Email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (c *jwtCodec) Verify(tokenString string) (domain.Principal, error) {
	claims := &principalClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return domain.Principal{}, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return domain.Principal{}, fmt.Errorf("invalid token")
	}
	if claims.Email == "" {
		return domain.Principal{}, fmt.Errorf("token has no email claim")
	}
	return domain.Principal{ID: claims.Subject, Email: claims.Email}, nil
}
