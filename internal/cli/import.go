package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"quiz-runner/internal/infra/file"
	"quiz-runner/internal/infra/postgres"
)

// NewImportCmd loads a JSON or YAML question set into Postgres.
func NewImportCmd(configPath *string) *cobra.Command {
	var setID string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a question set file into Postgres",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			set, err := file.Decode(args[0], data)
			if err != nil {
				return err
			}
			if setID != "" {
				set.ID = setID
			}
			if set.ID == "" {
				return fmt.Errorf("question set has no id, pass --id")
			}

			ctx := cmd.Context()
			if err := runMigrations(ctx, cfg); err != nil {
				return err
			}
			b, err := openBackends(ctx, cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			if err := postgres.NewQuestionStore(b.pool).SaveQuestionSet(ctx, set); err != nil {
				return err
			}
			log.Printf("imported %q with %d questions", set.ID, set.Len())
			return nil
		},
	}
	cmd.Flags().StringVar(&setID, "id", "", "override the question set id")
	return cmd
}
