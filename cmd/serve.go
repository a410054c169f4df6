package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/formkit/config"
	"github.com/lshigami/formkit/database"
	_ "github.com/lshigami/formkit/docs" // Swagger docs
	"github.com/lshigami/formkit/internal/auth"
	"github.com/lshigami/formkit/internal/controller/account"
	"github.com/lshigami/formkit/internal/controller/author"
	"github.com/lshigami/formkit/internal/controller/respondent"
	"github.com/lshigami/formkit/internal/logger"
	"github.com/lshigami/formkit/internal/repository"
	"github.com/lshigami/formkit/internal/router"
	"github.com/lshigami/formkit/internal/service"
	"github.com/lshigami/formkit/internal/storage"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := newApp()
			if err := app.Start(cmd.Context()); err != nil {
				return err
			}
			<-app.Done()
			log.Info().Msg("Application shutting down gracefully...")

			stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return app.Stop(stopCtx)
		},
	}
}

func newApp() *fx.App {
	return fx.New(
		// Core Application Components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			router.NewGinEngine,
			auth.NewTokenManager,
			storage.NewImageStore,
			service.NewSettings,
		),

		// Repositories Layer
		fx.Provide(
			repository.NewUserRepository,
			repository.NewFormRepository,
			repository.NewSectionRepository,
			repository.NewQuestionRepository,
			repository.NewOptionRepository,
			repository.NewResponseRepository,
			repository.NewImageOwnerRepository,
		),

		// Services Layer
		fx.Provide(
			service.NewUserService,
			service.NewFormService,
			service.NewSectionService,
			service.NewQuestionService,
			service.NewOptionService,
			service.NewResponseService,
			service.NewExportService,
			service.NewImageService,
		),

		// API Controllers Layer
		fx.Provide(
			account.NewAccountController,
			author.NewFormController,
			author.NewSectionController,
			author.NewQuestionController,
			author.NewOptionController,
			author.NewResponseController,
			author.NewImageController,
			respondent.NewRespondentController,
		),

		fx.Invoke(configureLogger),
		fx.Invoke(AutoMigrateDB),
		fx.Invoke(RegisterRoutesAndStartServer),
	)
}

func configureLogger(cfg *config.Config) {
	logger.Configure(cfg.Log)
}

// RegisterRoutesAndStartServer mounts the API and ties the HTTP server and
// the database pool to the application lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	engine *gin.Engine,
	cfg *config.Config,
	db *gorm.DB,
	tokens *auth.TokenManager,
	controllers router.Controllers,
) {
	router.RegisterRoutes(engine, tokens, controllers)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Forms API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			if err := server.Shutdown(ctx); err != nil {
				return err
			}
			return database.Close(db)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	if err := database.AutoMigrate(db); err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
