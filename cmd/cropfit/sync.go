// ABOUTME: Charm cloud commands for the charm backend
// ABOUTME: Account linking, sync status, manual sync and whole-database repair

package main

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/fatih/color"
	"github.com/harper/cropfit/internal/charm"
	"github.com/harper/cropfit/internal/config"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Charm cloud account and sync",
	Long: `Fields stored with --backend charm live in a Charm KV database that syncs
to Charm Cloud after every write. These commands manage the account link and
the database itself.

To delete your own fields on any backend use 'cropfit reset' instead.

Examples:
  cropfit sync status
  cropfit sync link
  cropfit sync now
  cropfit sync repair
  cropfit sync repair --refresh`,
}

var syncStatusCmd = &cobra.Command{
	Use:         "status",
	Short:       "Show the backend, Charm host and linked account",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStorage: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "Backend:    %s\n", cfg.GetBackend())
		_, _ = fmt.Fprintf(out, "Charm host: %s\n", cfg.GetCharmHost())
		_, _ = fmt.Fprintf(out, "Database:   %s\n", charm.DBName)

		if cfg.GetBackend() != config.BackendCharm {
			color.Yellow("\nFields are kept locally by the %s backend and are not synced.", cfg.GetBackend())
		}

		account, err := charmAccount()
		if err != nil {
			color.Yellow("\nAccount: not linked")
			_, _ = fmt.Fprintln(out, "Run 'cropfit sync link' to link this device.")
			return nil
		}
		_, _ = fmt.Fprintf(out, "\nAccount:    %s\n", account)
		color.Green("Linked")
		return nil
	},
}

// charmAccount returns the id of the Charm account this device is linked to.
func charmAccount() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", err
	}
	return cc.ID()
}

var syncNowCmd = &cobra.Command{
	Use:   "now",
	Short: "Push and pull field changes immediately",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := repo.Sync(); err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		if cfg.GetBackend() != config.BackendCharm {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Nothing to sync: the %s backend is local only.\n", cfg.GetBackend())
			return nil
		}
		color.Green("✓ Fields synced with %s", cfg.GetCharmHost())
		return nil
	},
}

var syncLinkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link this device to a Charm account",
	Long: `Run the charm CLI linking flow. Charm authenticates with SSH keys and
creates an account on first use. Once linked, the account id can serve as
your cropfit user.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStorage: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runCharm(cmd, "link"); err != nil {
			return fmt.Errorf("charm link: %w (install the charm CLI with: go install github.com/charmbracelet/charm@latest)", err)
		}
		color.Green("\n✓ Device linked")
		return nil
	},
}

var syncUnlinkCmd = &cobra.Command{
	Use:         "unlink",
	Short:       "Unlink this device from its Charm account",
	Long:        `Run the charm CLI unlink flow. Fields already on this device stay where they are.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStorage: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runCharm(cmd, "unlink"); err != nil {
			return fmt.Errorf("charm unlink: %w", err)
		}
		color.Green("\n✓ Device unlinked")
		return nil
	},
}

// runCharm runs the charm CLI attached to the command's streams.
func runCharm(cmd *cobra.Command, args ...string) error {
	c := exec.CommandContext(cmd.Context(), "charm", args...)
	c.Stdin = cmd.InOrStdin()
	c.Stdout = cmd.OutOrStdout()
	c.Stderr = cmd.ErrOrStderr()
	return c.Run()
}

var (
	repairForce   bool
	repairRefresh bool
	repairWipe    bool
)

var syncRepairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Repair the local Charm database",
	Long: `Repair the Charm KV database behind the charm backend. This works on the
whole database file, not on one user's fields.

Without flags the WAL is checkpointed, a stale SHM file is removed, the
integrity check runs and the file is vacuumed. --force goes on to REINDEX and,
failing that, pulls a fresh copy from the cloud.

--refresh drops the local copy and pulls it again from Charm Cloud; changes
that were not synced are lost.

--wipe deletes the database on this device and every cloud backup of it,
for every user that stored fields in it. You must type the database name.

Examples:
  cropfit sync repair
  cropfit sync repair --force
  cropfit sync repair --refresh
  cropfit sync repair --wipe`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStorage: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		switch {
		case repairWipe:
			return wipeDatabase(cmd)
		case repairRefresh:
			return refreshDatabase(cmd)
		default:
			return repairDatabase(cmd)
		}
	},
}

func repairDatabase(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Repairing %s...\n\n", charm.DBName)

	result, err := kv.Repair(charm.DBName, repairForce)
	if err != nil {
		if !repairForce {
			_, _ = fmt.Fprintln(out, "Try again with --force to attempt recovery.")
		}
		return fmt.Errorf("repair failed: %w", err)
	}

	steps := []struct {
		done bool
		text string
	}{
		{result.WalCheckpointed, "WAL checkpointed"},
		{result.ShmRemoved, "stale SHM file removed"},
		{result.IntegrityOK, "integrity check passed"},
		{result.Vacuumed, "vacuumed"},
	}
	for _, s := range steps {
		if s.done {
			color.Green("  ✓ %s", s.text)
		}
	}
	if !result.IntegrityOK {
		color.Red("  ✗ integrity check failed")
	}
	if result.RecoveryAttempted {
		color.Yellow("  ⚠ indexes rebuilt")
	}
	if result.ResetFromCloud {
		color.Yellow("  ⚠ local copy replaced from the cloud")
	}
	if result.Error != nil {
		color.Yellow("  ⚠ %v", result.Error)
	}
	return nil
}

func refreshDatabase(cmd *cobra.Command) error {
	color.Yellow("Unsynced changes in %s will be lost.", charm.DBName)
	if !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Replace the local database with the cloud copy?") {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
		return nil
	}
	if err := kv.Reset(charm.DBName); err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}
	color.Green("✓ Local database refreshed from the cloud")
	return nil
}

func wipeDatabase(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	color.Red("This deletes the %s database here and in Charm Cloud, for every user in it.", charm.DBName)
	if !typed(cmd.InOrStdin(), out, charm.DBName) {
		_, _ = fmt.Fprintln(out, "Aborted.")
		return nil
	}

	result, err := kv.Wipe(charm.DBName)
	if err != nil {
		return fmt.Errorf("wipe failed: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Cloud backups deleted: %d\n", result.CloudBackupsDeleted)
	_, _ = fmt.Fprintf(out, "Local files deleted:   %d\n", result.LocalFilesDeleted)
	if result.Error != nil {
		color.Yellow("⚠ %v", result.Error)
	}
	color.Green("✓ %s wiped", charm.DBName)
	return nil
}

// typed asks the user to type want and reports whether they did.
func typed(in io.Reader, out io.Writer, want string) bool {
	_, _ = fmt.Fprintf(out, "Type %q to continue: ", want)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimSpace(answer) == want
}

func init() {
	syncRepairCmd.Flags().BoolVarP(&repairForce, "force", "f", false, "reindex and pull from the cloud if the integrity check fails")
	syncRepairCmd.Flags().BoolVar(&repairRefresh, "refresh", false, "replace the local database with the cloud copy")
	syncRepairCmd.Flags().BoolVar(&repairWipe, "wipe", false, "delete the whole database locally and in the cloud")
	syncRepairCmd.MarkFlagsMutuallyExclusive("force", "refresh", "wipe")

	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncNowCmd)
	syncCmd.AddCommand(syncLinkCmd)
	syncCmd.AddCommand(syncUnlinkCmd)
	syncCmd.AddCommand(syncRepairCmd)

	rootCmd.AddCommand(syncCmd)
}
