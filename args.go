package main

import (
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"goldpawn/adapters/mail"
	"goldpawn/api"
	"goldpawn/models"
	"goldpawn/store"
)

func ParseArgs() Args {
	// server config
	pflag.String("server-url", "0.0.0.0:8080", "listen address")
	pflag.String("server-id", "", "instance name inside the redis consumer group, defaults to the hostname")
	pflag.String("public-url", "", "externally visible origin, e.g. https://shop.example.com")
	pflag.Bool("auto-migrate", false, "run database migration on start")
	pflag.String("log-level", "info", "debug, info, warn or error")

	// oidc config
	pflag.String("oidc-google-issuer-url", "https://accounts.google.com", "")
	pflag.String("oidc-google-client-id", "", "")
	pflag.String("oidc-google-client-secret", "", "")

	// s3 config
	pflag.String("s3-endpoint", "", "")
	pflag.String("s3-region", "auto", "")
	pflag.String("s3-bucket", "", "")
	pflag.String("s3-public-base-url", "", "")
	pflag.String("s3-access-key-id", "", "")
	pflag.String("s3-secret-access-key", "", "")
	pflag.Int64("s3-rate-limit-per-hour", 30, "uploads per user per hour through /api/images, 0 disables the limit")

	// db config
	pflag.String("db-user", "", "")
	pflag.String("db-password", "", "")
	pflag.String("db-host", "", "")
	pflag.Int("db-port", 5432, "")
	pflag.String("db-database", "", "")
	pflag.String("db-schema", "public", "")

	// redis config
	pflag.String("redis-addr", "", "")
	pflag.String("redis-password", "", "")
	pflag.Int("redis-db", 0, "")
	pflag.String("redis-key-prefix", "goldpawn:", "")
	pflag.String("redis-consumer-group", "goldpawn-notify", "")

	// redis stream keys
	pflag.String("redis-stream-key-for-notification", "goldpawn:notification", "")
	pflag.String("redis-stream-key-for-item-events", "goldpawn:item-events", "")

	// auth config
	pflag.String("auth-private-key-file", "", "PKCS#8 PEM Ed25519 key signing access tokens")
	pflag.String("auth-issuer", "goldpawn", "")
	pflag.String("auth-audience", "goldpawn", "")
	pflag.Duration("auth-expire-duration", 3*time.Hour, "")
	pflag.Bool("auth-cookie-secure", true, "")

	// mail config
	pflag.String("mail-smtp-host", "", "")
	pflag.Int("mail-smtp-port", 587, "")
	pflag.String("mail-smtp-username", "", "")
	pflag.String("mail-smtp-password", "", "")
	pflag.String("mail-from", "", "")
	pflag.String("mail-from-name", "Gold Pawn", "")
	pflag.String("mail-recipients", "", "comma separated shop addresses")

	// admin and session
	pflag.StringSlice("admin-emails", nil, "comma separated admin allowlist")
	pflag.String("session-key-for-cookie", "session", "")
	pflag.Duration("session-cookie-max-age", 24*time.Hour, "")

	// bind pflag to viper
	pflag.Parse()
	viper.BindPFlags(pflag.CommandLine)
	viper.AutomaticEnv()
	viper.SetEnvPrefix("GOLDPAWN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	providers := map[string]api.OIDCProviderConfig{}
	if clientID := viper.GetString("oidc-google-client-id"); clientID != "" {
		providers[string(models.SSOProviderGoogle)] = api.OIDCProviderConfig{
			IssuerURL:    viper.GetString("oidc-google-issuer-url"),
			ClientID:     clientID,
			ClientSecret: viper.GetString("oidc-google-client-secret"),
		}
	}

	// initial arguments
	return Args{
		ServerURL:      viper.GetString("server-url"),
		LogLevel:       viper.GetString("log-level"),
		PrivateKeyFile: viper.GetString("auth-private-key-file"),
		ServerConfig: api.ServerConfig{
			ID:          viper.GetString("server-id"),
			PublicURL:   viper.GetString("public-url"),
			AutoMigrate: viper.GetBool("auto-migrate"),
			OIDC: api.OIDCConfig{
				Providers: providers,
			},
			S3: api.S3Config{
				Endpoint:         viper.GetString("s3-endpoint"),
				Region:           viper.GetString("s3-region"),
				Bucket:           viper.GetString("s3-bucket"),
				PublicBaseURL:    viper.GetString("s3-public-base-url"),
				AccessKeyID:      viper.GetString("s3-access-key-id"),
				SecretAccessKey:  viper.GetString("s3-secret-access-key"),
				RateLimitPerHour: viper.GetInt64("s3-rate-limit-per-hour"),
			},
			DB: store.Config{
				User:     viper.GetString("db-user"),
				Password: viper.GetString("db-password"),
				Host:     viper.GetString("db-host"),
				Port:     viper.GetInt("db-port"),
				Database: viper.GetString("db-database"),
				Schema:   viper.GetString("db-schema"),
			},
			Redis: api.RedisConfig{
				Addr:          viper.GetString("redis-addr"),
				Password:      viper.GetString("redis-password"),
				DB:            viper.GetInt("redis-db"),
				KeyPrefix:     viper.GetString("redis-key-prefix"),
				ConsumerGroup: viper.GetString("redis-consumer-group"),
				StreamKeys: api.RedisStreamKeys{
					Notification: viper.GetString("redis-stream-key-for-notification"),
					ItemEvents:   viper.GetString("redis-stream-key-for-item-events"),
				},
			},
			Auth: api.AuthConfig{
				Issuer:         viper.GetString("auth-issuer"),
				Audience:       viper.GetString("auth-audience"),
				ExpireDuration: viper.GetDuration("auth-expire-duration"),
				CookieSecure:   viper.GetBool("auth-cookie-secure"),
			},
			Mail: api.MailConfig{
				SMTP: mail.Config{
					Host:     viper.GetString("mail-smtp-host"),
					Port:     viper.GetInt("mail-smtp-port"),
					Username: viper.GetString("mail-smtp-username"),
					Password: viper.GetString("mail-smtp-password"),
					From:     viper.GetString("mail-from"),
					FromName: viper.GetString("mail-from-name"),
				},
				Recipients: viper.GetString("mail-recipients"),
			},
			Admin: api.AdminConfig{
				Emails: splitList(viper.GetStringSlice("admin-emails")),
			},
			Session: api.SessionConfig{
				KeyForCookie: viper.GetString("session-key-for-cookie"),
				CookieMaxAge: viper.GetDuration("session-cookie-max-age"),
			},
		},
	}
}

type Args struct {
	ServerURL      string
	LogLevel       string
	PrivateKeyFile string
	ServerConfig   api.ServerConfig
}

// Validate returns the names of required settings that are missing.
func (args Args) Validate() []string {
	config := args.ServerConfig
	required := map[string]string{
		"server-url":                        args.ServerURL,
		"public-url":                        config.PublicURL,
		"auth-private-key-file":             args.PrivateKeyFile,
		"s3-bucket":                         config.S3.Bucket,
		"s3-public-base-url":                config.S3.PublicBaseURL,
		"db-host":                           config.DB.Host,
		"db-database":                       config.DB.Database,
		"redis-addr":                        config.Redis.Addr,
		"redis-consumer-group":              config.Redis.ConsumerGroup,
		"redis-stream-key-for-notification": config.Redis.StreamKeys.Notification,
		"redis-stream-key-for-item-events":  config.Redis.StreamKeys.ItemEvents,
		"mail-smtp-host":                    config.Mail.SMTP.Host,
		"mail-from":                         config.Mail.SMTP.From,
	}
	var missing []string
	for name, value := range required {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(config.OIDC.Providers) == 0 {
		missing = append(missing, "oidc-google-client-id")
	}
	slices.Sort(missing)
	return missing
}

// splitList flattens comma separated entries, as environment variables arrive as one string.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
