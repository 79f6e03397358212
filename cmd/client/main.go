package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bkral/blogsync/internal"
	"github.com/bkral/blogsync/internal/config"
	"github.com/bkral/blogsync/internal/docstore"
	"github.com/bkral/blogsync/internal/guard"
	"github.com/bkral/blogsync/internal/logging"
	"github.com/bkral/blogsync/internal/screens"
	"github.com/bkral/blogsync/pkg"

	log "github.com/sirupsen/logrus"
)

func main() {
	fmt.Println("starting ...")

	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	log.Warnf("---->> running in [%s] environment", *env)

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	sentryDSN := os.Getenv("SENTRY_DSN")
	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    false,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        sentryDSN,
		SentryServerName: "blogsync-client",
	})

	redisPassword := os.Getenv("BLOGSYNC_REDIS_PASS")
	if redisPassword == "" {
		log.Debugln("redis password not set, connecting without one")
	}

	minioAccessKey := os.Getenv("BLOGSYNC_MINIO_ACCESS_KEY")
	minioSecretKey := os.Getenv("BLOGSYNC_MINIO_SECRET_KEY")
	if minioAccessKey == "" || minioSecretKey == "" {
		log.Errorf("blob store credentials not set, use BLOGSYNC_MINIO_ACCESS_KEY and BLOGSYNC_MINIO_SECRET_KEY")
	}

	sessionFileExists, err := pkg.PathExists(cfg.SessionFilePath, false)
	if err != nil {
		log.Fatalf("check session file: %s", err)
	}
	if !sessionFileExists {
		log.Tracef("no session file at %s yet, starting logged out", cfg.SessionFilePath)
	}

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())

	client, err := internal.NewClient(ctx, internal.NewClientParams{
		Config:         cfg,
		RedisPassword:  redisPassword,
		MinioAccessKey: minioAccessKey,
		MinioSecretKey: minioSecretKey,
	})
	if err != nil {
		log.Fatalf("new client: %s", err)
	}

	go watchHomeFeed(ctx, client)

	receivedSig := <-chOsInterrupt
	log.Warnf("signal [%s] received, killing everything ...", receivedSig)
	cancel()

	client.GracefulShutdown()
}

// watchHomeFeed activates the home screen and logs every snapshot of
// the blog list as changes arrive from other writers.
func watchHomeFeed(ctx context.Context, client *internal.Client) {
	access, err := client.Screens.Activate(ctx, screens.Home)
	if err != nil {
		log.Errorf("activate home screen: %s", err)
		return
	}
	if access != guard.Allow {
		log.Warnf("home screen: %s, log in first to watch the feed", access)
		return
	}

	query := docstore.BlogQuery{OrderByCreatedAsc: true}
	sub, err := client.Repo.SubscribeBlogs(ctx, query)
	if err != nil {
		log.Errorf("subscribe to blogs: %s", err)
		return
	}
	client.Screens.Track(screens.Home, query.Key(), sub)

	for blogs := range sub.Updates() {
		log.Printf("home feed: %d blogs", len(blogs))
		for i := range blogs {
			log.Printf("  - [%s] %s", blogs[i].ID, blogs[i].Title)
		}
	}
}
