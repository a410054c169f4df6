package main

import (
	"fmt"
	"io"
	"os"

	"github.com/lshigami/formkit/database"
	"github.com/lshigami/formkit/internal/repository"
	"github.com/lshigami/formkit/internal/service"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newExportCommand() *cobra.Command {
	var (
		formID uint
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the responses of a form as CSV",
		Example: `  formsd export --form 12 --out survey.csv
  formsd export --form 12 > survey.csv`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, db, err := openStore()
			if err != nil {
				return err
			}
			defer database.Close(db)

			exports := service.NewExportService(
				repository.NewFormRepository(db),
				repository.NewQuestionRepository(db),
				repository.NewResponseRepository(db),
				service.NewSettings(cfg),
			)
			export, err := exports.Prepare(cmd.Context(), formID)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}

			summary, err := export.Write(cmd.Context(), w)
			if err != nil {
				return err
			}
			log.Info().Str("file", out).Msg("Export written: " + summary.String())
			return nil
		},
	}
	cmd.Flags().UintVar(&formID, "form", 0, "id of the form to export")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("form")
	return cmd
}
