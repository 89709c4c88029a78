package cmd

import (
	"errors"
	"fmt"
	"os"

	"gtkup/envpath"
	"gtkup/logging"
	"gtkup/repository"

	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove installed GTK+ bundles",
	Long: `Remove the bundle directories selected by --arch under --gtk-dir, so
that a later install can run again. This command will:
1. Delete <gtk-dir>/i386 and/or <gtk-dir>/x64
2. With --set-env, remove the PATH block gtkup wrote to your shell configuration
3. Inform user about the changes`,
	Args: cobra.NoArgs,
	Run:  clean,
}

func init() {
	cleanCmd.Flags().BoolVar(&setEnv, "set-env", false, "Also remove the PATH block from the shell configuration file")
}

func clean(cmd *cobra.Command, args []string) {
	if err := handleClean(); err != nil {
		ExitWithError(err)
	}
}

func handleClean() error {
	if cfg == nil {
		return fmt.Errorf("configuration is not loaded")
	}

	in := resolveInputs(os.Getenv)
	if in.GTKDir == "" {
		return errors.New("gtk_dir is required: refusing to remove bundles relative to the working directory")
	}

	removed, err := removeTargets(repository.Resolve(in.Arch, in.GTKDir))
	if err != nil {
		return err
	}

	if setEnv {
		if err := cleanRCFile(); err != nil {
			return err
		}
	}

	if GetJsonOutput() {
		return OutputJSON(CommandOutput{Removed: removed})
	}
	if len(removed) == 0 {
		logging.LogInfo("ℹ️  Nothing to remove")
	}
	return nil
}

// removeTargets deletes the destination of each target and returns the
// directories that existed
func removeTargets(targets []repository.Target) ([]string, error) {
	removed := []string{}
	for _, t := range targets {
		if _, err := os.Lstat(t.Destination); errors.Is(err, os.ErrNotExist) {
			logging.LogDebug("ℹ️  %s does not exist", t.Destination)
			continue
		}
		logging.LogDebug("🗑️ Removing %s", t.Destination)
		if err := os.RemoveAll(t.Destination); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", t.Destination, err)
		}
		logging.LogInfo("✅ Removed %s bundle from %s", t.Arch, t.Destination)
		removed = append(removed, t.Destination)
	}
	return removed, nil
}

func cleanRCFile() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get user home directory: %w", err)
	}
	rcFile, err := envpath.FindRCFile(cfg.General.ShellConfigPath, os.Getenv("SHELL"), home)
	if err != nil {
		return err
	}

	found, err := (&envpath.RCFilePublisher{Path: rcFile}).Remove()
	if err != nil {
		return err
	}
	if found {
		logging.LogInfo("✅ Successfully removed GTK PATH configuration")
		logging.LogInfo("ℹ️  Please run 'source %s' to apply the changes", rcFile)
	}
	return nil
}
