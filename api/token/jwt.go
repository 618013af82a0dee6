// Package token issues and verifies the session access tokens set as cookies after login.
package token

import (
	"crypto"
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid access token")

type Claims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// UserID parses the subject.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

type Issuer struct {
	key      crypto.Signer
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

func NewIssuer(key crypto.Signer, issuer, audience string, ttl time.Duration) *Issuer {
	return &Issuer{
		key:      key,
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs an EdDSA token for the user.
func (i *Issuer) Issue(userID uuid.UUID, username, email string) (string, error) {
	const op = "Issuer.Issue"
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, Claims{
		Username: username,
		Email:    email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    i.issuer,
			Subject:   userID.String(),
			ID:        uuid.NewString(),
			Audience:  jwt.ClaimStrings{i.audience},
		},
	})
	signed, err := token.SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("[%s] Fail to sign JWT, err=%w", op, err)
	}
	return signed, nil
}

// Parse verifies signature, expiry, issuer and audience. Every failure wraps ErrInvalidToken.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return i.key.Public(), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if _, err := claims.UserID(); err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return claims, nil
}

// LoadPrivateKey reads a PKCS#8 PEM encoded Ed25519 key.
func LoadPrivateKey(path string) (ed25519.PrivateKey, error) {
	const op = "LoadPrivateKey"
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to read key file, err=%w", op, err)
	}
	return ParsePrivateKey(data)
}

func ParsePrivateKey(data []byte) (ed25519.PrivateKey, error) {
	const op = "ParsePrivateKey"
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("[%s] No PEM block found", op)
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to parse PKCS#8 key, err=%w", op, err)
	}
	edKey, ok := key.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("[%s] Key is %T, want ed25519", op, key)
	}
	return edKey, nil
}
