package token

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKey(t *testing.T) ed25519.PrivateKey {
	t.Helper()
	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return key
}

func TestIssueAndParse(t *testing.T) {
	issuer := NewIssuer(newKey(t), "goldpawn", "goldpawn-web", 3*time.Hour)
	userID := uuid.New()

	signed, err := issuer.Issue(userID, "Ana Cruz", "ana@example.com")
	require.NoError(t, err)

	claims, err := issuer.Parse(signed)
	require.NoError(t, err)
	got, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, userID, got)
	assert.Equal(t, "Ana Cruz", claims.Username)
	assert.Equal(t, "ana@example.com", claims.Email)
}

func TestParse_Rejects(t *testing.T) {
	key := newKey(t)
	issuer := NewIssuer(key, "goldpawn", "goldpawn-web", time.Hour)
	signed, err := issuer.Issue(uuid.New(), "ana", "ana@example.com")
	require.NoError(t, err)

	expired := NewIssuer(key, "goldpawn", "goldpawn-web", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := expired.Issue(uuid.New(), "ana", "ana@example.com")
	require.NoError(t, err)

	tests := []struct {
		name   string
		parser *Issuer
		token  string
	}{
		{name: "garbage", parser: issuer, token: "not.a.jwt"},
		{name: "other key", parser: NewIssuer(newKey(t), "goldpawn", "goldpawn-web", time.Hour), token: signed},
		{name: "wrong audience", parser: NewIssuer(key, "goldpawn", "mobile", time.Hour), token: signed},
		{name: "wrong issuer", parser: NewIssuer(key, "someone-else", "goldpawn-web", time.Hour), token: signed},
		{name: "expired", parser: issuer, token: expiredToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.parser.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestLoadPrivateKey(t *testing.T) {
	key := newKey(t)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "key.pem")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), 0o600))

	loaded, err := LoadPrivateKey(path)
	require.NoError(t, err)
	assert.True(t, key.Equal(loaded))

	_, err = ParsePrivateKey([]byte("nothing here"))
	assert.Error(t, err)
	_, err = LoadPrivateKey(filepath.Join(t.TempDir(), "missing.pem"))
	assert.Error(t, err)
}
