package api

import (
	"crypto"
	"strings"
	"time"

	"goldpawn/adapters/mail"
	"goldpawn/store"
)

type ServerConfig struct {
	// ID names this instance inside the Redis consumer group.
	ID string
	// PublicURL is the externally visible origin, used for OIDC redirects.
	PublicURL string
	// AutoMigrate runs gorm AutoMigrate on start.
	AutoMigrate bool

	OIDC    OIDCConfig
	S3      S3Config
	DB      store.Config
	Redis   RedisConfig
	Auth    AuthConfig
	Mail    MailConfig
	Admin   AdminConfig
	Session SessionConfig
}

type OIDCConfig struct {
	Providers map[string]OIDCProviderConfig
}

type OIDCProviderConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
}

type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	Region          string
	Bucket          string
	PublicBaseURL   string
	// RateLimitPerHour caps uploads through POST /api/images per user. Zero disables it.
	RateLimitPerHour int64
}

type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	KeyPrefix     string
	ConsumerGroup string

	StreamKeys RedisStreamKeys
}

type RedisStreamKeys struct {
	Notification string
	ItemEvents   string
}

type AuthConfig struct {
	PrivateKey     crypto.Signer
	Issuer         string
	Audience       string
	ExpireDuration time.Duration
	CookieSecure   bool
}

type MailConfig struct {
	SMTP mail.Config
	// Recipients is a comma separated list of shop addresses.
	Recipients string
}

type AdminConfig struct {
	Emails []string
}

// IsAdmin compares case-insensitively against the allowlist.
func (c AdminConfig) IsAdmin(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, admin := range c.Emails {
		if strings.ToLower(strings.TrimSpace(admin)) == email {
			return true
		}
	}
	return false
}

type SessionConfig struct {
	KeyForCookie string
	CookieMaxAge time.Duration
}
