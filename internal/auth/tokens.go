// Package auth выпускает и проверяет токены владельца ссылок.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken токен не подписан нашим ключом, испорчен или истёк
	ErrInvalidToken = errors.New("invalid owner token")
	// ErrEmptySecret ключ подписи не задан
	ErrEmptySecret = errors.New("empty jwt secret")
)

// OwnerClaims содержимое токена владельца. Subject хранит ID владельца.
type OwnerClaims struct {
	jwt.RegisteredClaims
}

// Tokens выпускает HS256 токены владельца
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens создаёт выпускатель токенов
func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL срок жизни токена
func (t *Tokens) TTL() time.Duration {
	return t.ttl
}

// NewOwnerID генерирует новый ID владельца
func NewOwnerID() string {
	return uuid.NewString()
}

// Issue подписывает токен для владельца
func (t *Tokens) Issue(ownerID string) (string, error) {
	now := t.now()
	claims := OwnerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  ownerID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if t.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(t.ttl))
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign owner token: %w", err)
	}
	return token, nil
}

// Parse проверяет токен и возвращает ID владельца
func (t *Tokens) Parse(tokenString string) (string, error) {
	claims := &OwnerClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", fmt.Errorf("%w: subject is not an owner id", ErrInvalidToken)
	}
	return claims.Subject, nil
}
