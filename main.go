package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reunionrs/reunion-site-backend/api"
	"github.com/reunionrs/reunion-site-backend/auth"
	"github.com/reunionrs/reunion-site-backend/config"
	"github.com/reunionrs/reunion-site-backend/database"
	"github.com/reunionrs/reunion-site-backend/models"
	"github.com/reunionrs/reunion-site-backend/services"
	"github.com/reunionrs/reunion-site-backend/store"
	"github.com/rs/zerolog/log"
)

func main() {
	config.LoadDotenv()
	cfg := config.New()

	logCloser := config.SetupLogger(config.LogConfigFrom(cfg))
	defer logCloser.Close()

	log.Info().Msg("Initializing app...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Parameter store values fill in whatever the environment leaves unset
	if path := config.GetString(cfg, "SSM_PARAMETER_PATH", ""); path != "" {
		client, err := config.NewSSMClient(ctx, config.GetString(cfg, "AWS_REGION", ""))
		if err != nil {
			log.Fatal().Err(err).Msg("Error creating SSM client")
		}
		n, err := config.OverlaySSM(ctx, client, cfg, path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("Error loading parameters")
		}
		log.Info().Int("parameters", n).Str("path", path).Msg("Loaded parameters from SSM")
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}
	currentDB := database.New(db)

	// If generating models, run generation and exit
	if config.GetBool(cfg, "GENERATE_MODELS", false) {
		log.Info().Msg("Generating models and query helpers...")
		if err := models.GenerateModels(db); err != nil {
			log.Fatal().Err(err).Msg("Error generating models")
		}
		return
	}

	// If generating column mismatch report, run report and exit
	if config.GetBool(cfg, "GENERATE_COLUMN_REPORT", false) {
		log.Info().Msg("Generating column mismatch report...")
		report, err := models.BuildColumnReport(db)
		if err != nil {
			log.Fatal().Err(err).Msg("Error building column report")
		}
		report.Print()
		return
	}

	if config.GetBool(cfg, "AUTO_MIGRATE", true) {
		if err := currentDB.Migrate(); err != nil {
			log.Fatal().Err(err).Msg("Error migrating database")
		}
	}

	var relay store.Relay = store.NewLocalRelay()
	if redisURL := config.GetString(cfg, "REDIS_URL", ""); redisURL != "" {
		redisRelay, err := store.NewRedisRelayFromURL(ctx, redisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Error connecting to redis")
		}
		defer redisRelay.Close()
		relay = redisRelay
		log.Info().Msg("Publishing project changes through redis")
	}

	projects := store.NewProjects(currentDB.ProjectRepo(), relay)
	go func() {
		if err := projects.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Project change listener stopped")
		}
	}()

	tokens, err := auth.NewTokensFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error configuring sessions")
	}

	uploader, err := services.NewUploaderFromConfig(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error configuring uploads")
	}

	notifier := services.NewNotifierFromConfig(cfg)
	deps := api.Deps{
		Projects: projects,
		Sender:   notifier,
		Uploader: uploader,
		Tokens:   tokens,
		Google:   auth.NewGoogleProviderFromConfig(cfg, config.GetString(cfg, "JWT_SECRET", "")),
	}

	errChannel := newErrChannel()

	server, err := api.NewServer(cfg, deps)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Err(fatalErr).Msg("Closing server")

	cancel()
	server.ShutdownGracefully(30 * time.Second)
	notifier.Wait()
}

// newErrChannel has room for both the server and the signal listener, so the
// one that reports second never blocks or hits a closed channel.
func newErrChannel() chan error {
	return make(chan error, 2)
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
