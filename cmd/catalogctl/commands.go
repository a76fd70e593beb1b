package main

import (
	"context"
	"fmt"
	"time"

	"catalog-service/internal/config"
	"catalog-service/internal/database"
	"catalog-service/internal/logger"
	"catalog-service/internal/repository"
	"catalog-service/internal/service"
	"catalog-service/internal/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// env holds what every subcommand needs once the root command has run
type env struct {
	cfg *config.Config
	log *zap.Logger
}

// flagBindings maps persistent flags onto configuration keys
var flagBindings = map[string]string{
	"log-level":   "LOG_LEVEL",
	"db-host":     "DB_HOST",
	"db-port":     "DB_PORT",
	"db-user":     "DB_USER",
	"db-password": "DB_PASSWORD",
	"db-name":     "DB_DATABASE",
	"db-schema":   "DB_SCHEMA",
	"db-sslmode":  "DB_SSLMODE",
}

func newRootCmd() *cobra.Command {
	e := &env{}
	v := config.NewViper()

	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Operator tool for the catalog service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile, _ := cmd.Flags().GetString("env-file"); envFile != "" {
				if err := godotenv.Load(envFile); err != nil {
					return fmt.Errorf("load %s: %w", envFile, err)
				}
			} else {
				_ = godotenv.Load()
			}

			e.cfg = config.FromViper(v)

			log, err := logger.New(e.cfg.Server.Env, e.cfg.Server.LogLevel)
			if err != nil {
				return err
			}
			e.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.log != nil {
				_ = e.log.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.String("env-file", "", "dotenv file to load before reading the environment")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("db-host", "", "PostgreSQL host")
	flags.String("db-port", "", "PostgreSQL port")
	flags.String("db-user", "", "PostgreSQL user")
	flags.String("db-password", "", "PostgreSQL password")
	flags.String("db-name", "", "PostgreSQL database")
	flags.String("db-schema", "", "PostgreSQL schema")
	flags.String("db-sslmode", "", "PostgreSQL sslmode")
	bindFlags(v, root)

	root.AddCommand(newMigrateCmd(e), newSeedCmd(e))
	return root
}

// bindFlags lets flags that were set explicitly override environment values
func bindFlags(v *viper.Viper, cmd *cobra.Command) {
	for flag, key := range flagBindings {
		_ = v.BindPFlag(key, cmd.PersistentFlags().Lookup(flag))
	}
}

func (e *env) openDatabase() (database.Service, error) {
	e.log.Debug("Connecting to database",
		zap.String("host", e.cfg.Database.Host),
		zap.String("database", e.cfg.Database.Database),
	)
	return database.New(e.cfg.Database)
}

func newMigrateCmd(e *env) *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	migrate.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := e.openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			return database.RunMigrations(db.DB(), e.log)
		},
	})

	migrate.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the migration status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := e.openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			return database.GetMigrationStatus(db.DB())
		},
	})

	return migrate
}

func newSeedCmd(e *env) *cobra.Command {
	var (
		file    string
		migrate bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample categories and products",
		Long: "Load categories and products from a JSON file, or the built-in sample catalog when no file is given.\n" +
			"Categories that already exist are reused.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadSeed(file)
			if err != nil {
				return err
			}

			db, err := e.openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			if migrate {
				if err := database.RunMigrations(db.DB(), e.log); err != nil {
					return err
				}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			categories := service.NewCategoryService(repository.NewCategoryRepository(db.DB()))
			products := service.NewProductService(
				repository.NewProductRepository(db.DB()),
				storage.NewLocalAssetStore(e.cfg.Upload.Dir, e.cfg.Upload.PublicPrefix),
				service.NewImageURLResolver(e.cfg.Server.BaseURL),
			)

			result, err := catalog.apply(ctx, categories, products, e.log)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "categories created: %d, reused: %d, products created: %d\n",
				result.categoriesCreated, result.categoriesReused, result.productsCreated)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON seed file (defaults to the built-in sample)")
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply pending migrations first")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "overall time limit")

	return cmd
}
