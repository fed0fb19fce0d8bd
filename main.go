package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/repository"
	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/cache"
	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/clients/mixcloud"
	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/clients/storyblok"
	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/configuration"
	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/jobs"
	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/logger"
	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/metrics"
	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/persistence"
	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/pubsub"
	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/servicebus"
	httpHandler "github.com/tmoody1973/rhythm-lab-app-sub003/interfaces/http"
	"github.com/tmoody1973/rhythm-lab-app-sub003/server"
	"github.com/tmoody1973/rhythm-lab-app-sub003/usecase"

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

	// Env files never override the process environment.
	if n := configuration.LoadEnvFromFile("config.env", ".env"); n > 0 {
		logger.GetLogger().WithField("keys", n).Info("Loaded environment from file")
		configuration.Reload()
	}
	cfg := configuration.C
	metrics.Init()

	psqlDb, err := persistence.NewPostgreSQLDB()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("PostgreSQL not available - show ingestion and Mixcloud OAuth disabled")
		psqlDb = nil
	} else if err := persistence.EnsureSchema(psqlDb); err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed ensuring database schema")
	}

	showCache := initShowCache(ctx, cfg.RedisClient)
	audit := initAudit(ctx, cfg.Database.Mongo)
	events, stopEvents := initEvents(ctx, cfg.Events)
	defer stopEvents()

	httpClient := &http.Client{Timeout: 30 * time.Second}
	mixcloudClient := mixcloud.NewClient(cfg.Mixcloud.APIBaseURL, cfg.Mixcloud.RequestsPerMinute, httpClient)

	var mirror repository.IShowMirror
	if cfg.StoryblokEnabled() {
		mirror = storyblok.NewClient(cfg.Storyblok, httpClient)
	} else {
		logger.GetLogger().Warn("Storyblok management token or space id missing - show creation disabled")
	}

	var shows repository.IShow
	if psqlDb != nil {
		shows = persistence.NewShowRepository(psqlDb)
	}

	ingestionUsecase := usecase.NewShowIngestionUsecase(shows, mirror)
	showUsecase := usecase.NewShowUsecase(shows)
	if showCache != nil {
		ingestionUsecase = ingestionUsecase.WithCache(showCache)
		showUsecase = showUsecase.WithCache(showCache)
	}
	if events != nil {
		ingestionUsecase = ingestionUsecase.WithEvents(events)
	}
	if audit != nil {
		ingestionUsecase = ingestionUsecase.WithAudit(audit)
	}

	var tokenUsecase usecase.IMixcloudTokenUsecase
	var mixcloudOAuthHandler httpHandler.IMixcloudOAuthHandler
	if cfg.MixcloudEnabled() && psqlDb != nil {
		gormDb, err := persistence.NewGormDB(psqlDb)
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while opening gorm session - Mixcloud OAuth disabled")
		} else {
			tokens := usecase.NewMixcloudTokenUsecase(
				persistence.NewMixcloudTokenRepository(psqlDb),
				persistence.NewProfileRepository(gormDb),
				mixcloudClient,
				mixcloud.NewOAuthConfig(cfg.Mixcloud),
			).WithHTTPClient(httpClient)
			tokenUsecase = tokens
			mixcloudOAuthHandler = httpHandler.NewMixcloudOAuthHandler(tokens, cfg.App.AdminRedirect, cfg.App.TLSEnabled)
		}
	} else {
		logger.GetLogger().WithFields(map[string]interface{}{
			"clientIdSet":     cfg.Mixcloud.ClientID != "",
			"clientSecretSet": cfg.Mixcloud.ClientSecret != "",
			"database":        psqlDb != nil,
		}).Warn("Mixcloud OAuth disabled")
	}
	mixcloudHandler := httpHandler.NewMixcloudHandler(usecase.NewCloudcastUsecase(mixcloudClient, tokenUsecase))

	if tokenUsecase != nil {
		scheduler := jobs.NewScheduler(tokenUsecase, time.Duration(cfg.Jobs.TokenRefreshWindowMins)*time.Minute)
		if err := scheduler.Start(cfg.Jobs.TokenRefreshSpec); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while scheduling token refresh")
		} else {
			defer scheduler.Stop()
		}
	}

	var healthHandler httpHandler.IHealthHandler
	if psqlDb != nil {
		healthHandler = httpHandler.NewHealthHandler(psqlDb)
	} else {
		healthHandler = httpHandler.NewHealthHandler(nil)
	}

	router := server.InitiateRouter(
		server.RouterConfig{SecretKey: cfg.App.SecretKey, AllowOrigins: cfg.Cors.AllowOrigins},
		healthHandler,
		httpHandler.NewShowHandler(ingestionUsecase, showUsecase),
		mixcloudOAuthHandler,
		mixcloudHandler,
	)

	app := cfg.App
	logger.GetLogger().WithFields(map[string]interface{}{"port": app.Port, "tls": app.TLSEnabled}).Info("Starting application")
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
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while shutting down server")
	}
	closeDatabase(psqlDb)

	if err := g.Wait(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}

func initShowCache(ctx context.Context, cfg configuration.RedisClient) repository.IShowCache {
	if cfg.Host == "" {
		logger.GetLogger().Info("Redis not configured - show cache disabled")
		return nil
	}
	client, err := cache.NewCache(ctx, cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.DB)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not available - show cache disabled")
		return nil
	}
	logger.GetLogger().Info("Redis client initialized successfully.")
	return cache.NewShowCache(client, time.Duration(cfg.ShowTTLSeconds)*time.Second)
}

func initAudit(ctx context.Context, cfg configuration.Db) repository.IIngestionAudit {
	if cfg.URI == "" {
		return nil
	}
	client, err := persistence.NewMongoDb(ctx, cfg.URI)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("MongoDB not available - ingestion audit disabled")
		return nil
	}
	logger.GetLogger().Info("MongoDB connected successfully")
	return persistence.NewIngestionAuditRepository(client, cfg.Name)
}

// initEvents returns the configured publisher and a stop func that is always safe to call.
func initEvents(ctx context.Context, cfg configuration.Events) (repository.IShowEvents, func()) {
	noop := func() {}
	switch cfg.Driver {
	case "":
		return nil, noop
	case "pubsub":
		client, err := pubsub.NewPubSub(ctx, cfg.ProjectID)
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while instantiate PubSub")
			return nil, noop
		}
		publisher := pubsub.NewShowEventPublisher(client, cfg.Topic)
		return publisher, func() {
			publisher.Stop()
			_ = client.Close()
		}
	case "servicebus":
		client, err := servicebus.NewServiceBus(cfg.Namespace)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Azure Service Bus not available - show events disabled")
			return nil, noop
		}
		return servicebus.NewShowEventPublisher(client, cfg.Queue), func() {
			_ = client.Close(context.Background())
		}
	default:
		logger.GetLogger().WithField("driver", cfg.Driver).Warn("Unknown events driver - show events disabled")
		return nil, noop
	}
}

func closeDatabase(db *sql.DB) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Error while closing database")
	}
}
