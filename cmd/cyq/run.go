package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rlch/cyq"
	_ "github.com/rlch/cyq/databases/neo4j"
	"github.com/rlch/cyq/runner"
	"github.com/urfave/cli/v3"
)

// Run command errors.
var (
	ErrNoDatabase          = errors.New("no database specified (use neo4j config in .cyq.yaml)")
	ErrNoConnectionURI     = errors.New("no connection URI specified (use --uri or .cyq.yaml)")
	ErrUnsupportedDatabase = errors.New("unsupported database")
)

// connectionFlags are shared by commands that talk to a database.
func connectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "database",
			Aliases: []string{"d"},
			Usage:   "database to use (overrides config)",
		},
		&cli.StringFlag{
			Name:    "uri",
			Usage:   "database connection URI",
			Sources: cli.EnvVars("CYQ_URI"),
		},
		&cli.StringFlag{
			Name:    "username",
			Aliases: []string{"u"},
			Usage:   "database username",
			Sources: cli.EnvVars("CYQ_USER"),
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"p"},
			Usage:   "database password",
			Sources: cli.EnvVars("CYQ_PASS"),
		},
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run query plans and check their expectations",
		ArgsUsage: "[files or directories...]",
		Flags: append(connectionFlags(),
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "output format: dots, verbose or json (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "fail-fast",
				Usage: "stop on first failure",
			},
			&cli.StringFlag{
				Name:  "run",
				Usage: "run only plans matching pattern",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "build plans without executing them",
			},
		),
		Action: runPlans,
	}
}

func runPlans(ctx context.Context, cmd *cli.Command) error {
	logger, err := newLogger(cmd.Bool("debug"))
	if err != nil {
		return err
	}

	defer func() { _ = logger.Sync() }()

	files, cfg, err := loadPlans(ctx, cmd.Args().Slice())
	if err != nil {
		return err
	}

	opts := []runner.Option{
		runner.WithFailFast(cmd.Bool("fail-fast") || cfg.Runner.FailFast),
		runner.WithFilter(cmd.String("run")),
		runner.WithDryRun(cmd.Bool("dry-run")),
		runner.WithModels(cfg.Models),
		runner.WithLogger(logger),
	}

	if !cmd.Bool("dry-run") {
		database, err := openDatabase(cmd, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = database.Close() }()

		opts = append(opts, runner.WithDatabase(database))
	}

	format := cmd.String("format")
	if format == "" {
		format = cfg.Runner.Format
	}

	formatHandler := runner.NewFormatHandler(runner.NewFormatter(format, os.Stdout), os.Stderr)

	opts = append(opts, runner.WithHandler(runner.NewMultiHandler(
		formatHandler,
		runner.NewLogHandler(logger),
	)))

	result, err := runner.New(opts...).Run(ctx, files)
	if err != nil {
		return err
	}

	_ = formatHandler.Summary(result)

	if !result.Ok() {
		return cli.Exit("", 1)
	}

	return nil
}

// openDatabase resolves the database from config and flags, flags winning.
func openDatabase(cmd *cli.Command, cfg *cyq.Config) (cyq.Database, error) { //nolint:ireturn
	databaseName := cmd.String("database")
	if databaseName == "" {
		databaseName = cfg.DatabaseName()
	}

	if databaseName == "" && cmd.String("uri") != "" {
		databaseName = cyq.DatabaseNeo4j
	}

	if databaseName == "" {
		return nil, ErrNoDatabase
	}

	var dbCfg any

	switch databaseName {
	case cyq.DatabaseNeo4j:
		neo4jCfg := &cyq.Neo4jConfig{}
		if cfg.Neo4j != nil {
			neo4jCfg = cfg.Neo4j
		}

		if uri := cmd.String("uri"); uri != "" {
			neo4jCfg.URI = uri
		}

		if username := cmd.String("username"); username != "" {
			neo4jCfg.Username = username
		}

		if password := cmd.String("password"); password != "" {
			neo4jCfg.Password = password
		}

		if neo4jCfg.URI == "" {
			return nil, ErrNoConnectionURI
		}

		dbCfg = neo4jCfg
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDatabase, databaseName)
	}

	database, err := cyq.NewDatabase(databaseName, dbCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	return database, nil
}
