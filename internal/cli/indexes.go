package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"classquiz/internal/config"
	infmongo "classquiz/internal/infra/mongo"
)

// NewEnsureIndexesCmd declares the document-store indexes, most
// importantly the unique (quizId, studentId) constraint on submissions.
func NewEnsureIndexesCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-indexes",
		Short: "Declare document store indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnsureIndexes(cmd.Context(), *configPath)
		},
	}
}

func runEnsureIndexes(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Mongo.URI == "" {
		return fmt.Errorf("mongo uri not configured")
	}

	client, err := infmongo.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	if err := infmongo.EnsureIndexes(ctx, client.Database(cfg.Mongo.Database)); err != nil {
		return err
	}
	logrus.Info("indexes ensured")
	return nil
}
