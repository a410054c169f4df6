package main

import (
	"github.com/lshigami/formkit/config"
	"github.com/lshigami/formkit/database"
	"github.com/lshigami/formkit/internal/logger"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(_ *cobra.Command, _ []string) error {
			_, db, err := openStore()
			if err != nil {
				return err
			}
			defer database.Close(db)
			return AutoMigrateDB(db)
		},
	}
}

// openStore loads the configuration and connects to the database for the
// one-shot commands.
func openStore() (*config.Config, *gorm.DB, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, err
	}
	logger.Configure(cfg.Log)
	db, err := database.NewDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
