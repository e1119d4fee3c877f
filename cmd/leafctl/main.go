// Command leafctl runs maintenance tasks against the Leafwise database.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/gamification"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/store"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var db *gorm.DB

var rootCmd = &cobra.Command{
	Use:           "leafctl",
	Short:         "Leafwise maintenance commands",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		conn, err := database.Connect(cfg)
		if err != nil {
			return err
		}
		db = conn
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if db == nil {
			return nil
		}
		return database.Close(db)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.Migrate(db); err != nil {
			return err
		}
		slog.Info("migration complete")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed-plants",
	Short: "Insert the starter species catalog",
	Long: `Insert the built-in list of common houseplants into the catalog.
Species already present (matched by scientific name) are left untouched,
so the command is safe to run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		created, err := seedPlants(cmd.Context(), store.New(db))
		if err != nil {
			return err
		}
		slog.Info("catalog seeded", "created", created, "total", len(starterCatalog))
		return nil
	},
}

var (
	rebuildUser string
	rebuildAll  bool
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild-points",
	Short: "Recompute experience points and level from the activity log",
	Long: `Recompute a user's experience points and level from their activity log.

Examples:
  leafctl rebuild-points --user 6f1c...   # one user
  leafctl rebuild-points --all            # every user`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if rebuildAll == (rebuildUser != "") {
			return fmt.Errorf("pass exactly one of --user or --all")
		}
		st := store.New(db)
		points := gamification.NewService(st)

		var ids []uuid.UUID
		if rebuildAll {
			all, err := st.AllUserIDs(cmd.Context())
			if err != nil {
				return err
			}
			ids = all
		} else {
			id, err := uuid.Parse(rebuildUser)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
			ids = []uuid.UUID{id}
		}

		for _, id := range ids {
			total, level, err := points.RebuildPoints(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("rebuild %s: %w", id, err)
			}
			slog.Info("points rebuilt", "user_id", id, "experience_points", total, "level", level.Name)
		}
		return nil
	},
}

func init() {
	rebuildCmd.Flags().StringVar(&rebuildUser, "user", "", "user id to rebuild")
	rebuildCmd.Flags().BoolVar(&rebuildAll, "all", false, "rebuild every user")
	rootCmd.AddCommand(migrateCmd, seedCmd, rebuildCmd)
}

func main() {
	logging.Setup()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
