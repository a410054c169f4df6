package main

import (
	"os"

	"github.com/lshigami/formkit/internal/logger"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// @title Formkit API
// @version 1.0
// @description Build forms out of sections, questions and options, publish them behind a link, collect responses and export them as CSV.
// @contact.name API Support
// @contact.email support@example.com
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()

	if err := newRootCommand().Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "formsd",
		Short:         "Forms builder backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand(), newMigrateCommand(), newExportCommand())
	return root
}
