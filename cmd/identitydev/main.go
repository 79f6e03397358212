package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bkral/blogsync/internal/identitydev"

	log "github.com/sirupsen/logrus"
)

// A tiny in-memory identity service for local development. Accounts
// and sessions live only as long as the process does.
func main() {
	host := flag.String("host", "localhost", "host to bind to")
	port := flag.Int("port", 8901, "port to listen on")
	logLevel := flag.String("loglevel", "trace", "log level")
	flag.Parse()

	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		level = log.TraceLevel
	}
	log.SetLevel(level)

	addr := fmt.Sprintf("%s:%d", *host, *port)
	httpServer := &http.Server{
		Addr:        addr,
		Handler:     identitydev.NewHandler(),
		ReadTimeout: 10 * time.Second,
	}

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("identity dev service listening on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen and serve: %s", err)
		}
	}()

	receivedSig := <-chOsInterrupt
	log.Warnf("signal [%s] received, shutting down ...", receivedSig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Errorf("failed to gracefully shutdown: %s", err)
	}
	log.Warnln("identity dev service shut down")
}
