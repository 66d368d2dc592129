package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/baxromumarov/upfolio/internal/config"
	"github.com/baxromumarov/upfolio/internal/store"
)

var lockWait time.Duration

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long:  "Applies the embedded schema for the configured database. Concurrent runs on the same host wait on a file lock.",
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().DurationVar(&lockWait, "lock-wait", 30*time.Second, "how long to wait for another migration to finish")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lockCtx, cancel := context.WithTimeout(ctx, lockWait)
	defer cancel()

	lock := flock.New(lockPath(cfg.Database.URL))
	locked, err := lock.TryLockContext(lockCtx, 250*time.Millisecond)
	if err != nil {
		return fmt.Errorf("acquire migration lock %s: %w", lock.Path(), err)
	}
	if !locked {
		return fmt.Errorf("another migration holds %s", lock.Path())
	}
	defer lock.Unlock()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	logger.Info("migrations executed successfully", "dialect", db.Dialect())
	return nil
}

// lockPath puts the lock next to a SQLite file, or in the temp dir for
// server databases.
func lockPath(dsn string) string {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return filepath.Join(os.TempDir(), "upfolio-migrate.lock")
	}
	p := dsn
	for _, prefix := range []string{"sqlite://", "sqlite:", "file:"} {
		if strings.HasPrefix(lower, prefix) {
			p = dsn[len(prefix):]
			break
		}
	}
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	if p == "" || p == ":memory:" {
		return filepath.Join(os.TempDir(), "upfolio-migrate.lock")
	}
	return p + ".migrate.lock"
}
