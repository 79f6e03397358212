package internal

import (
	"context"
	"fmt"
	"time"

	"github.com/bkral/blogsync/internal/auth"
	"github.com/bkral/blogsync/internal/blobstore"
	"github.com/bkral/blogsync/internal/config"
	"github.com/bkral/blogsync/internal/coordinator"
	"github.com/bkral/blogsync/internal/db"
	"github.com/bkral/blogsync/internal/docstore"
	"github.com/bkral/blogsync/internal/screens"
	"github.com/bkral/blogsync/internal/session"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// Client wires the full sync layer together: document repository with
// live subscriptions, blob store, credential gateway, durable session
// store, write coordinator and the screen manager on top.
type Client struct {
	config      *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client
	sessions    *session.BoltStore

	Repo        *docstore.Repo
	Blobs       *blobstore.Store
	Gateway     *auth.Gateway
	Coordinator *coordinator.Coordinator
	Screens     *screens.Manager
}

type NewClientParams struct {
	Config         *config.Config
	RedisPassword  string
	MinioAccessKey string
	MinioSecretKey string
}

func NewClient(
	ctx context.Context,
	params NewClientParams,
) (*Client, error) {
	cfg := params.Config

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.DBHost,
		DBPort:         cfg.DBPort,
		DBName:         cfg.DBName,
		TracingEnabled: cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := docstore.EnsureSchema(ctx, dbPool); err != nil {
		return nil, fmt.Errorf("ensure document store schema: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password: params.RedisPassword,
	})
	if statusCmd := redisClient.Ping(ctx); statusCmd.Err() != nil {
		return nil, fmt.Errorf("ping redis: %w", statusCmd.Err())
	}
	log.Debugln("redis connection ok")

	repo := docstore.NewRepo(dbPool, docstore.NewRedisNotifier(redisClient))

	blobs, err := blobstore.NewStore(blobstore.NewStoreParams{
		Endpoint:        cfg.MinioEndpoint,
		AccessKeyID:     params.MinioAccessKey,
		SecretAccessKey: params.MinioSecretKey,
		UseSSL:          cfg.MinioUseSSL,
		Bucket:          cfg.MinioBucket,
		PublicBaseURL:   cfg.MinioPublicURL,
	})
	if err != nil {
		return nil, fmt.Errorf("new blob store: %w", err)
	}
	if err := blobs.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure blob bucket: %w", err)
	}

	sessions, err := session.NewBoltStore(cfg.SessionFilePath)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	gateway := auth.NewGateway(cfg.IdentityServiceURL)

	return &Client{
		config:      cfg,
		dbPool:      dbPool,
		redisClient: redisClient,
		sessions:    sessions,
		Repo:        repo,
		Blobs:       blobs,
		Gateway:     gateway,
		Coordinator: coordinator.NewCoordinator(repo, blobs, gateway, sessions),
		Screens:     screens.NewManager(sessions),
	}, nil
}

func (c *Client) Sessions() session.Store {
	return c.sessions
}

// GracefulShutdown tears the live subscriptions down first, so nothing
// re-queries a store that is already closing underneath it.
func (c *Client) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	if err := c.Screens.Close(); err != nil {
		log.Errorf("failed to close live subscriptions: %s", err)
	}

	if err := c.sessions.Close(); err != nil {
		log.Errorf("failed to close session store: %s", err)
	}

	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if c.dbPool != nil {
		log.Debugln("closing db pool ...")
		c.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	log.Warnln("client shut down")
}
