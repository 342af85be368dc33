package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"creator-contest/domain/repository"
	"creator-contest/domain/scoring"
	"creator-contest/infrastructure/cache"
	"creator-contest/infrastructure/clients/tiktok"
	"creator-contest/infrastructure/configuration"
	"creator-contest/infrastructure/cryptox"
	"creator-contest/infrastructure/logger"
	"creator-contest/infrastructure/persistence"
	"creator-contest/infrastructure/pubsub"
	"creator-contest/infrastructure/realtime"
	"creator-contest/infrastructure/servicebus"
	httpHandler "creator-contest/interfaces/http"
	"creator-contest/server"
	"creator-contest/usecase"

	"golang.org/x/sync/errgroup"
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)
	cfg := configuration.C

	db, err := persistence.NewPostgreSQLDB()
	if err != nil {
		logger.GetLogger().WithField("error", err).Fatal("Cannot connect to PostgreSQL")
	}
	defer db.Close()
	if cfg.Database.Psql.AutoMigrate {
		if err := persistence.RunMigrations(ctx, db); err != nil {
			logger.GetLogger().WithField("error", err).Fatal("Database migration failed")
		}
	}

	cipher, err := cryptox.NewTokenCipher(cfg.Vault.EncryptionSecret)
	if err != nil {
		logger.GetLogger().WithField("error", err).Fatal("Token cipher unavailable; set vault.encryptionSecret")
	}

	leaderboardCache := initiateCache(ctx, cfg.RedisClient)
	publishers := initiatePublishers(ctx, cfg)
	hub := realtime.NewLeaderboardHub()

	platform := tiktok.NewClient(cfg.TikTok.APIBaseURL, cfg.TikTok.RequestTimeout())
	shareLinks := tiktok.NewShareLinkResolver(cfg.TikTok.RequestTimeout(), nil)
	oauth := tiktok.NewOAuthClient(tiktok.OAuthConfig{
		ClientKey:    cfg.TikTok.ClientKey,
		ClientSecret: cfg.TikTok.ClientSecret,
		RedirectURL:  cfg.TikTok.RedirectURI,
		AuthURL:      cfg.TikTok.AuthURL,
		TokenURL:     cfg.TikTok.TokenURL,
		RevokeURL:    cfg.TikTok.RevokeURL,
		Scopes:       cfg.TikTok.Scopes,
		Timeout:      cfg.TikTok.RequestTimeout(),
	})

	credentialRepository := persistence.NewCredentialRepository(db)
	profileRepository := persistence.NewProfileRepository(db)
	contestRepository := persistence.NewContestRepository(db)
	submissionRepository := persistence.NewSubmissionRepository(db)

	engine := scoring.NewEngine(cfg.Scoring.Weights())
	vault := usecase.NewCredentialVault(credentialRepository, profileRepository, cipher, oauth, platform,
		time.Duration(cfg.Vault.ExpirySkewSeconds)*time.Second)
	submissionUsecase := usecase.NewSubmissionUsecase(contestRepository, submissionRepository, vault, platform, shareLinks,
		engine, leaderboardCache, cfg.Contest.LeaderboardTTL())
	rankingUsecase := usecase.NewRankingUsecase(contestRepository, submissionRepository, leaderboardCache, hub,
		cfg.Contest.DefaultWinnerCount, publishers...)
	scheduler := usecase.NewMetricsSyncScheduler(contestRepository, submissionRepository, vault, platform, engine, rankingUsecase,
		usecase.SyncOptions{
			Interval:   cfg.Scheduler.Interval(),
			ChunkSize:  cfg.Scheduler.ChunkSize,
			ChunkPause: cfg.Scheduler.ChunkPause(),
		})

	router := server.InitiateRouter(
		server.RouterConfig{
			SecretKey:    cfg.App.SecretKey,
			AllowOrigins: cfg.App.AllowOrigins,
			OperatorIDs:  cfg.App.OperatorIDs,
		},
		httpHandler.NewHealthHandler(db),
		httpHandler.NewContestHandler(submissionUsecase, scheduler),
		httpHandler.NewTikTokAuthHandler(vault, oauth, cfg.TikTok.SuccessRedirectURL),
		hub.Serve,
	)

	if cfg.Scheduler.Enabled {
		g.Go(func() error {
			return scheduler.Start(ctx)
		})
	} else {
		logger.GetLogger().Info("Metrics sync scheduler disabled; use POST /api/metrics/sync")
	}

	app := cfg.App
	logger.GetLogger().WithField("port", app.Port).WithField("tls", app.TLSEnabled).Info("Starting application")
	httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		var err error
		if app.TLSEnabled && app.TLSCertFile != "" && app.TLSKeyFile != "" {
			err = httpServer.ListenAndServeTLS(app.TLSCertFile, app.TLSKeyFile)
		} else {
			if app.TLSEnabled {
				logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
			}
			err = httpServer.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}

// initiateCache returns nil when Redis is not configured or unreachable; leaderboards are then read straight from Postgres.
func initiateCache(ctx context.Context, rc configuration.RedisClient) repository.ILeaderboardCache {
	if rc.Host == "" {
		logger.GetLogger().Info("Redis not configured - leaderboard cache disabled")
		return nil
	}
	client, err := cache.NewCache(ctx, fmt.Sprintf("%s:%s", rc.Host, rc.Port), rc.Username, rc.Password, rc.DB())
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not available - leaderboard cache disabled")
		return nil
	}
	logger.GetLogger().Info("Redis client initialized successfully.")
	return cache.NewLeaderboardCache(client)
}

func initiatePublishers(ctx context.Context, cfg configuration.Config) []repository.IEventPublisher {
	var publishers []repository.IEventPublisher

	if pubSubClient, err := pubsub.NewPubSub(ctx, cfg.Pubsub.ProjectID); err != nil {
		logger.GetLogger().WithField("error", err).Info("Pub/Sub not available - leaderboard events not published there")
	} else {
		publishers = append(publishers, pubsub.NewLeaderboardPublisher(pubSubClient, cfg.Pubsub.Topic))
	}

	if sbClient, err := servicebus.NewServiceBus(ctx, cfg.ServiceBus.Namespace, cfg.ServiceBus.ConnectionString); err != nil {
		logger.GetLogger().WithField("error", err).Info("Service Bus not available - leaderboard events not published there")
	} else {
		publishers = append(publishers, servicebus.NewLeaderboardPublisher(sbClient, cfg.ServiceBus.Topic))
	}
	return publishers
}
