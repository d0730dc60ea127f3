// ABOUTME: Root Cobra command and global flags
// ABOUTME: Loads config, opens the storage backend and resolves the signed-in user

package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/harper/cropfit/internal/charm"
	"github.com/harper/cropfit/internal/config"
	"github.com/harper/cropfit/internal/identity"
	"github.com/harper/cropfit/internal/storage"
	"github.com/spf13/cobra"
)

// skipStorage marks commands that run without opening the field store.
const skipStorage = "skip-storage"

var (
	cfg    *config.Config
	repo   storage.Repository
	userID string

	flagUser    string
	flagBackend string
	flagDataDir string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "cropfit",
	Short: "Record and manage farm field boundaries",
	Long: `
 ██████╗██████╗  ██████╗ ██████╗ ███████╗██╗████████╗
██╔════╝██╔══██╗██╔═══██╗██╔══██╗██╔════╝██║╚══██╔══╝
██║     ██████╔╝██║   ██║██████╔╝█████╗  ██║   ██║
██║     ██╔══██╗██║   ██║██╔═══╝ ██╔══╝  ██║   ██║
╚██████╗██║  ██║╚██████╔╝██║     ██║     ██║   ██║
 ╚═════╝╚═╝  ╚═╝ ╚═════╝ ╚═╝     ╚═╝     ╚═╝   ╚═╝

      Walk the boundary, name the field, keep the record

Examples:
  cropfit add "north paddock" --point 41.10,-87.20 --point 41.10,-87.18 --point 41.12,-87.18
  cropfit list
  cropfit fav 3f2a
  cropfit export --format geojson -o fields.geojson
  cropfit browse`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if flagVerbose {
			log.SetLevel(log.DebugLevel)
		}
		if err := loadConfig(); err != nil {
			return err
		}
		if cmd.Annotations[skipStorage] != "" {
			return nil
		}

		r, err := cfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open %s storage: %w", cfg.GetBackend(), err)
		}
		repo = r
		log.Debug("storage opened", "backend", cfg.GetBackend(), "data_dir", cfg.GetDataDir())
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if repo != nil {
			err := repo.Close()
			repo = nil
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "u", "", "user id that owns the fields (overrides config and CROPFIT_USER)")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "storage backend: sqlite, badger or charm")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory for local backends")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

// loadConfig reads .env, the config file and the global flags.
func loadConfig() error {
	config.LoadEnv()
	c, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if flagBackend != "" {
		c.Backend = flagBackend
	}
	if flagDataDir != "" {
		c.DataDir = flagDataDir
	}
	if flagUser != "" {
		c.User = flagUser
	}
	cfg = c
	return nil
}

// userProvider resolves the user from config, the environment, then the
// linked Charm account.
func userProvider() identity.Provider {
	var static, host string
	if cfg != nil {
		static = cfg.User
		host = cfg.CharmHost
	}
	return identity.Chain{
		identity.Static(static),
		identity.Env(""),
		charm.Identity{Host: host},
	}
}

// currentUser returns the signed-in user, resolving it on first use.
func currentUser(ctx context.Context) (string, error) {
	if userID != "" {
		return userID, nil
	}
	id, err := userProvider().UserID(ctx)
	if err != nil {
		return "", fmt.Errorf("who are you? set --user, CROPFIT_USER or link a Charm account: %w", err)
	}
	userID = id
	return id, nil
}
