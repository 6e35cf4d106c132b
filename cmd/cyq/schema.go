package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rlch/cyq"
	"github.com/rlch/cyq/plan"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print node models read from the database, in .cyq.yaml form",
		Flags: connectionFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger, err := newLogger(cmd.Bool("debug"))
			if err != nil {
				return err
			}

			defer func() { _ = logger.Sync() }()

			cfg, err := cyq.LoadConfig(".")

			switch {
			case errors.Is(err, cyq.ErrConfigNotFound):
				cfg = &cyq.Config{}
			case err != nil:
				return fmt.Errorf("loading config: %w", err)
			}

			database, err := openDatabase(cmd, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			models, err := cyq.Introspect(ctx, database)
			if err != nil {
				return err
			}

			logger.Debug("schema introspected", zap.Int("models", len(models)))

			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)

			if err := enc.Encode(cyq.Config{Models: models}); err != nil {
				return err
			}

			return enc.Close()
		},
	}
}

func verbsCommand() *cli.Command {
	return &cli.Command{
		Name:  "verbs",
		Usage: "List the step verbs accepted in plan files",
		Action: func(_ context.Context, _ *cli.Command) error {
			for _, verb := range plan.Verbs() {
				fmt.Println(verb)
			}

			return nil
		},
	}
}
