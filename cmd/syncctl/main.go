// syncctl drives replication and backups between the web and bot store roots
// without starting the full service.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/smallbiznis/dukon/internal/backup"
	"github.com/smallbiznis/dukon/internal/clock"
	"github.com/smallbiznis/dukon/internal/config"
	"github.com/smallbiznis/dukon/internal/logger"
	"github.com/smallbiznis/dukon/internal/replication"
	"github.com/spf13/cobra"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCommand creates the syncctl root command.
func NewRootCommand() *cobra.Command {
	cfg := config.Load()

	cmd := &cobra.Command{
		Use:   "syncctl",
		Short: "Replicate and back up the catalog store roots",
	}

	cmd.PersistentFlags().StringVar(&cfg.WebRoot, "web-root", cfg.WebRoot, "web store root")
	cmd.PersistentFlags().StringVar(&cfg.BotRoot, "bot-root", cfg.BotRoot, "bot store root")
	cmd.PersistentFlags().StringVar(&cfg.BackupDir, "backup-dir", cfg.BackupDir, "directory backups are created under")
	cmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")

	cmd.AddCommand(newWebToBotCommand(&cfg))
	cmd.AddCommand(newBotToWebCommand(&cfg))
	cmd.AddCommand(newSyncCommand(&cfg))
	cmd.AddCommand(newStatusCommand(&cfg))
	cmd.AddCommand(newBackupCommand(&cfg))
	cmd.AddCommand(newWatchCommand(&cfg))

	return cmd
}

func newEngine(cfg *config.Config) (*replication.Engine, error) {
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return replication.NewEngine(cfg.WebRoot, cfg.BotRoot, log, nil), nil
}

func newWebToBotCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "web-to-bot",
		Short: "Copy collection files from the web root to the bot root",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine(cfg)
			if err != nil {
				return err
			}
			results, err := engine.SyncAtoB(cmd.Context())
			printResults(cmd, results)
			return err
		},
	}
}

func newBotToWebCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "bot-to-web",
		Short: "Copy collection files from the bot root to the web root",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine(cfg)
			if err != nil {
				return err
			}
			results, err := engine.SyncBtoA(cmd.Context())
			printResults(cmd, results)
			return err
		},
	}
}

func newSyncCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run both directions, web-to-bot first; the second direction wins on conflict",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine(cfg)
			if err != nil {
				return err
			}
			return engine.SyncBidirectional(cmd.Context())
		},
	}
}

func newStatusCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report existence, size, and element count per root and file",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine(cfg)
			if err != nil {
				return err
			}
			for _, st := range engine.Status() {
				if !st.Exists {
					fmt.Fprintf(cmd.OutOrStdout(), "%s/%s: missing\n", st.Root, st.File)
					continue
				}
				count := "n/a"
				if st.Countable {
					count = fmt.Sprintf("%d items", st.Count)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s/%s: %d bytes, %s\n", st.Root, st.File, st.Size, count)
			}
			return nil
		},
	}
}

func newBackupCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Snapshot both store roots into a timestamped directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			engine := backup.NewEngine(cfg.WebRoot, cfg.BotRoot, cfg.BackupDir, clock.New(), log, nil)
			name, err := engine.CreateBackup()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}
}

func newWatchCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Sync both directions on an interval until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine(cfg)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			engine.AutoSync(ctx, cfg.SyncInterval)
			return nil
		},
	}
	cmd.Flags().DurationVar(&cfg.SyncInterval, "interval", cfg.SyncInterval, "sync interval")
	return cmd
}

func printResults(cmd *cobra.Command, results []replication.CopyResult) {
	for _, r := range results {
		switch {
		case r.Copied:
			fmt.Fprintf(cmd.OutOrStdout(), "%s copied\n", r.File)
		case r.Skipped:
			fmt.Fprintf(cmd.OutOrStdout(), "%s missing, skipped\n", r.File)
		}
	}
}
