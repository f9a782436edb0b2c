package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleClient is the role carried by tokens issued to API clients
const RoleClient = "client"

// ErrInvalidCredentials is returned when a client ID or secret does not match
var ErrInvalidCredentials = errors.New("invalid client credentials")

// JWTClaims represents the claims in our JWT token
type JWTClaims struct {
	ClientID string `json:"client_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer signs and validates API tokens with an HMAC secret
type Issuer struct {
	secret  []byte
	ttl     time.Duration
	clients map[string]string
	now     func() time.Time
}

// NewIssuer creates an issuer for the given registered clients
func NewIssuer(secret string, ttl time.Duration, clients map[string]string) *Issuer {
	registered := make(map[string]string, len(clients))
	for id, clientSecret := range clients {
		registered[id] = clientSecret
	}
	return &Issuer{
		secret:  []byte(secret),
		ttl:     ttl,
		clients: registered,
		now:     time.Now,
	}
}

// Authenticate checks client credentials and returns a token for the client
func (i *Issuer) Authenticate(clientID, clientSecret string) (string, error) {
	expected, ok := i.clients[clientID]
	if !ok || subtle.ConstantTimeCompare([]byte(expected), []byte(clientSecret)) != 1 {
		return "", ErrInvalidCredentials
	}
	return i.GenerateClientToken(clientID)
}

// GenerateClientToken generates a JWT token for an API client
func (i *Issuer) GenerateClientToken(clientID string) (string, error) {
	now := i.now()
	claims := &JWTClaims{
		ClientID: clientID,
		Role:     RoleClient,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clientID,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// ValidateToken validates a JWT token and returns the claims
func (i *Issuer) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrInvalidKey
}
