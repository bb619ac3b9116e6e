package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/princinho/o3dstudio/config"
	"github.com/princinho/o3dstudio/controllers"
	"github.com/princinho/o3dstudio/database"
	"github.com/princinho/o3dstudio/logger"
	"github.com/princinho/o3dstudio/metrics"
	"github.com/princinho/o3dstudio/quoteform"
	"github.com/princinho/o3dstudio/services"
	"github.com/princinho/o3dstudio/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{ServiceName: "o3dstudio"}).Error(context.Background(), "config.load", err)
		os.Exit(1)
	}

	logg := logger.New(logger.Options{
		ServiceName: "o3dstudio",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "server.exit", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.App.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	advisor := services.NewAdvisoryClient(services.AdvisoryOptions{
		Model:       cfg.Gemini.Model,
		StudioName:  cfg.Studio.Name,
		StudioCity:  cfg.Studio.City,
		Generator:   services.GeminiGenerator{BaseURL: cfg.Gemini.BaseURL},
		Credentials: services.EnvCredentialProvider{Keys: cfg.Gemini.CredentialEnv},
		Logger:      logg,
		Metrics:     m,
	})

	app := &application{
		cfg:      cfg,
		log:      logg,
		gatherer: reg,
		metrics:  m,
		advisor:  advisor,
		intake:   quoteform.NoopIntake{},
	}

	if cfg.Intake.Mode == config.IntakeModeMongo {
		client, err := database.Connect(ctx, cfg.Mongo)
		if err != nil {
			return err
		}
		defer func() {
			_ = client.Disconnect(context.Background())
		}()
		logg.Info(logg.WithField(ctx, "database", cfg.Mongo.DatabaseName), "mongo.connected")

		db := client.Database(cfg.Mongo.DatabaseName)
		store := database.NewQuoteStore(db)
		users := database.NewUserStore(db)
		app.intake = store
		app.review = store
		app.users = users

		if cfg.Auth.AdminEmail != "" {
			inserted, err := utils.SeedAdminUser(ctx, users.Collection(), cfg.Auth)
			if err != nil {
				return err
			}
			logg.Info(logg.WithFields(ctx, map[string]any{"email": cfg.Auth.AdminEmail, "inserted": inserted}), "admin.seed")
		}
	}

	store, err := utils.NewObjectStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	if store != nil {
		app.uploads = controllers.Uploads{
			Store:     store,
			Validator: utils.NewReferenceFileValidator(cfg.Storage.AllowedExtensions, cfg.Storage.MaxUploadSizeMB),
		}
	}

	app.registry = quoteform.NewRegistry(quoteform.Options{
		Advisor:  advisor,
		Intake:   app.intake,
		Messages: quoteform.DefaultMessages(cfg.Studio.City),
		Logger:   logg,
		Metrics:  m,
	})
	go app.registry.Run(ctx, cfg.Forms.SweepInterval, cfg.Forms.IdleTTL)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           app.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(logg.WithFields(ctx, map[string]any{"port": cfg.App.Port, "intake": cfg.Intake.Mode}), "server.start")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	logg.Info(shutdownCtx, "server.shutdown")
	return srv.Shutdown(shutdownCtx)
}
