package api

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awsS3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"goldpawn/adapters/mail"
	"goldpawn/adapters/oidc"
	redisAdapter "goldpawn/adapters/redis"
	"goldpawn/adapters/s3"
	"goldpawn/adapters/sse"
	"goldpawn/api/token"
	"goldpawn/lifecycle"
	"goldpawn/marketplace"
	"goldpawn/models"
	"goldpawn/notify"
	"goldpawn/store"
	"goldpawn/submission"
	"goldpawn/validation"
)

// adminEventsChannel is the SSE channel carrying item events to the admin console.
const adminEventsChannel = "admin:items"

// identityStore links SSO subjects to local users on sign-in.
type identityStore interface {
	LinkIdentity(ctx context.Context, provider models.SSOProviderName, subject, username string) (*models.User, error)
	EnsureProfile(ctx context.Context, profile *models.Profile) error
}

type ServerImpl struct {
	oidcProviders map[models.SSOProviderName]oidc.IProvider
	s3Operator    *s3.S3Operator
	redisClient   redis.UniversalClient
	db            *gorm.DB
	store         *store.Store
	identities    identityStore
	issuer        *token.Issuer
	notifier      notify.Deliverer
	validate      *validator.Validate

	outbox     redisAdapter.IProducer[notify.Request]
	worker     *notify.Worker
	sseManager sse.IConnectionManager[lifecycle.ItemEvent]

	items       *lifecycle.Service
	submissions *submission.Service
	listings    *marketplace.Service

	config ServerConfig
}

func NewServer(ctx context.Context, config ServerConfig) (*ServerImpl, error) {
	const op = "NewServer"

	// OIDC providers
	oidcProviders := make(map[models.SSOProviderName]oidc.IProvider, len(config.OIDC.Providers))
	for name, providerConfig := range config.OIDC.Providers {
		provider, err := oidc.NewProvider(ctx, oidc.ProviderConfig{
			Issuer:       providerConfig.IssuerURL,
			ClientID:     providerConfig.ClientID,
			ClientSecret: providerConfig.ClientSecret,
			RedirectURL:  strings.TrimSuffix(config.PublicURL, "/") + "/api/auth/sso/" + name + "/callback",
		})
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to initial OIDC provider, provider=%s, err=%w", op, name, err)
		}
		oidcProviders[models.SSOProviderName(name)] = provider
	}

	// S3
	region := config.S3.Region
	if region == "" {
		region = "auto"
	}
	s3Cfg, err := awsCfg.LoadDefaultConfig(
		ctx,
		awsCfg.WithBaseEndpoint(config.S3.Endpoint),
		awsCfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(config.S3.AccessKeyID, config.S3.SecretAccessKey, "")),
		awsCfg.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to load AWS config, err=%w", op, err)
	}
	s3Operator, err := s3.NewS3Operator(awsS3.NewFromConfig(s3Cfg), config.S3.Bucket, config.S3.PublicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create S3 operator, err=%w", op, err)
	}

	// Postgres
	db, err := store.Open(config.DB)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to open database, err=%w", op, err)
	}
	repo := store.New(db)

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})

	// Mail
	notifier := notify.NewNotifier(
		mail.NewSMTPSender(config.Mail.SMTP),
		mail.ParseRecipients(config.Mail.Recipients),
		notify.WithNotifierLogger(slog.Default()),
	)

	// Notification outbox
	outbox, err := redisAdapter.NewProducer[notify.Request](
		redisClient,
		config.Redis.StreamKeys.Notification,
		redisAdapter.WithProducerLogger[notify.Request](slog.Default()),
		redisAdapter.WithProducerMaxLen[notify.Request](10000),
	)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create notification producer, err=%w", op, err)
	}
	groupConsumer, err := redisAdapter.NewGroupConsumer[notify.Request](
		redisClient,
		config.Redis.StreamKeys.Notification,
		config.Redis.ConsumerGroup,
		config.ID,
		redisAdapter.WithGroupConsumerLogger[notify.Request](slog.Default()),
		redisAdapter.WithGroupConsumerStrictOrdering[notify.Request](true),
	)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create notification group consumer, err=%w", op, err)
	}
	worker := notify.NewWorker(groupConsumer, notifier, notify.WithWorkerLogger(slog.Default()))

	// Admin live events
	eventProducer, err := redisAdapter.NewProducer[sse.PublishRequest[lifecycle.ItemEvent]](
		redisClient,
		config.Redis.StreamKeys.ItemEvents,
		redisAdapter.WithProducerLogger[sse.PublishRequest[lifecycle.ItemEvent]](slog.Default()),
		redisAdapter.WithProducerMaxLen[sse.PublishRequest[lifecycle.ItemEvent]](1000),
	)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create event producer, err=%w", op, err)
	}
	eventConsumer, err := redisAdapter.NewConsumer[sse.PublishRequest[lifecycle.ItemEvent]](
		redisClient,
		config.Redis.StreamKeys.ItemEvents,
		redisAdapter.WithConsumerLogger[sse.PublishRequest[lifecycle.ItemEvent]](slog.Default()),
	)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create event consumer, err=%w", op, err)
	}
	sseManager := sse.NewConnectionManager[lifecycle.ItemEvent](
		sse.WithManagerLogger[lifecycle.ItemEvent](slog.Default()),
		sse.WithManagerTransport[lifecycle.ItemEvent](eventProducer, eventConsumer),
	)

	// Services
	items := lifecycle.NewService(
		repo,
		lifecycle.WithBlobRemover(s3Operator),
		lifecycle.WithEventSink(&eventSink{manager: sseManager}),
		lifecycle.WithServiceLogger(slog.Default()),
	)
	submissions := submission.NewService(
		repo,
		&imageUploader{operator: s3Operator, store: repo, prefix: "items"},
		submission.WithPublisher(outbox),
		submission.WithServiceLogger(slog.Default()),
	)
	listings := marketplace.NewService(
		repo,
		marketplace.WithBlobRemover(s3Operator),
		marketplace.WithServiceLogger(slog.Default()),
	)

	return &ServerImpl{
		oidcProviders: oidcProviders,
		s3Operator:    s3Operator,
		redisClient:   redisClient,
		db:            db,
		store:         repo,
		identities:    repo,
		issuer:        token.NewIssuer(config.Auth.PrivateKey, config.Auth.Issuer, config.Auth.Audience, config.Auth.ExpireDuration),
		notifier:      notifier,
		validate:      validation.New(),
		outbox:        outbox,
		worker:        worker,
		sseManager:    sseManager,
		items:         items,
		submissions:   submissions,
		listings:      listings,
		config:        config,
	}, nil
}

// Start migrates the schema when configured and launches the background workers.
func (impl *ServerImpl) Start(ctx context.Context) error {
	const op = "Start"

	if impl.config.AutoMigrate {
		slog.Info("Run database migration")
		if err := impl.db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
			return fmt.Errorf("[%s] Fail to migrate database, err=%w", op, err)
		}
	}

	impl.outbox.Start()
	impl.sseManager.Start()
	slog.Info("Start notification worker")
	if err := impl.worker.Start(); err != nil {
		return fmt.Errorf("[%s] Fail to start notification worker, err=%w", op, err)
	}
	return nil
}

// Close stops the workers, flushing queued notifications, and releases connections.
func (impl *ServerImpl) Close() {
	impl.worker.Close()
	slog.Info("Notification worker stopped")
	impl.outbox.Close()
	impl.sseManager.Done()

	if err := impl.redisClient.Close(); err != nil {
		slog.Warn("Fail to close redis client", slog.Any("error", err))
	}
	if sqlDB, err := impl.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Warn("Fail to close database", slog.Any("error", err))
		}
	}
}

// CloseEvents ends the open admin event streams so HTTP shutdown does not wait on them.
func (impl *ServerImpl) CloseEvents() {
	impl.sseManager.Done()
}

// eventSink forwards lifecycle transitions to the admin console channel.
type eventSink struct {
	manager sse.IConnectionManager[lifecycle.ItemEvent]
}

func (s *eventSink) PublishItemEvent(_ context.Context, event lifecycle.ItemEvent) error {
	return s.manager.Publish(adminEventsChannel, event)
}
