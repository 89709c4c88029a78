package cmd

import (
	"fmt"
	"os"

	"gtkup/action"
	"gtkup/config"
	"gtkup/downloader"
	"gtkup/downloader/core"
	"gtkup/envpath"
	"gtkup/logging"
	"gtkup/repository"

	"github.com/spf13/cobra"
)

var (
	setEnv bool
	dryRun bool
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Download the selected GTK+ bundles and add them to PATH",
	Long: `Download the GTK+ bundles selected by --arch, unpack each one into
<gtk-dir>/i386 or <gtk-dir>/x64 and add the install directories to PATH.

The arch value is matched by substring: "32" or "86" selects the 32-bit
bundle, "64" selects the 64-bit bundle. Both bundles are installed
concurrently. PATH is only updated when every bundle was installed.`,
	Args:    cobra.NoArgs,
	RunE:    runInstall,
	Example: `  # Install both bundles
  gtkup install --arch x86,x64 --gtk-dir C:\gtk

  # Install the 64-bit bundle and persist PATH in your shell rc file
  gtkup install --arch x64 --gtk-dir ~/gtk --set-env

  # Show what would be installed
  gtkup install --arch x86 --gtk-dir /tmp/gtk --dry-run`,
}

func init() {
	addInstallFlags(installCmd)
}

func addInstallFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&setEnv, "set-env", false, "Persist the PATH addition in the shell configuration file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Resolve the targets without downloading anything")
}

// resolveInputs returns the arch and gtk_dir values.
// Priority: CLI flag > action input (INPUT_ARCH, INPUT_GTK_DIR) > [inputs] in the config file.
func resolveInputs(getenv func(string) string) action.Inputs {
	in := action.New(os.Stdout, getenv).Inputs()
	if archFlag != "" {
		in.Arch = archFlag
	}
	if gtkDirFlag != "" {
		in.GTKDir = gtkDirFlag
	}
	if cfg != nil {
		if in.Arch == "" {
			in.Arch = cfg.Inputs.Arch
		}
		if in.GTKDir == "" {
			in.GTKDir = cfg.Inputs.GTKDir
		}
	}
	return in
}

func runInstall(cmd *cobra.Command, args []string) error {
	if cfg == nil {
		return fmt.Errorf("configuration is not loaded")
	}

	in := resolveInputs(os.Getenv)
	logging.LogDebug("🔧 arch=%q gtk_dir=%q", in.Arch, in.GTKDir)

	if dryRun {
		return handleDryRun(in)
	}

	opts, err := managerOptions(cfg)
	if err != nil {
		return err
	}

	narrator, publisher, err := environment()
	if err != nil {
		return err
	}

	manager := downloader.NewManager(opts)
	orchestrator := downloader.NewOrchestrator(manager, publisher, narrator)
	report, err := orchestrator.Run(cmd.Context(), in.Arch, in.GTKDir)
	// Flush the progress bars before anything else is printed
	manager.Wait()
	if GetJsonOutput() {
		if jsonErr := OutputJSON(report); jsonErr != nil {
			logging.LogError("❌ %v", jsonErr)
		}
	}
	if err != nil {
		return err
	}

	if len(report.Targets) == 0 {
		return nil
	}
	for _, r := range report.Results {
		logging.LogInfo("📂 %s bundle installed in %s", r.Target.Arch, r.Target.Destination)
	}
	logging.LogInfo("✅ Added to PATH: %s", report.Path)
	return nil
}

func handleDryRun(in action.Inputs) error {
	targets := repository.Resolve(in.Arch, in.GTKDir)
	if GetJsonOutput() {
		return OutputJSON(&downloader.Report{Selector: in.Arch, BaseDir: in.GTKDir, Targets: targets})
	}

	if len(targets) == 0 {
		logging.LogInfo("ℹ️  No GTK bundle matches arch %q", in.Arch)
		return nil
	}
	for _, t := range targets {
		logging.LogInfo("📦 Would download %s to %s", t.URL, t.Destination)
	}
	logging.LogInfo("📍 Would add to PATH: %s", envpath.Join(repository.Destinations(targets)))
	return nil
}

// managerOptions maps the configuration onto the pipeline options
func managerOptions(c *config.Config) (core.Options, error) {
	timeout, err := c.Timeout()
	if err != nil {
		return core.Options{}, err
	}
	return core.Options{
		WorkRoot:      c.WorkRoot(os.Getenv),
		KeepDownloads: c.General.KeepDownloads,
		HTTPTimeout:   timeout,
		UserAgent:     c.General.UserAgent,
		Progress:      c.General.Progress && !action.IsActions(os.Getenv) && !GetJsonOutput(),
		SkipDiskCheck: c.General.SkipDiskCheck,
	}, nil
}

// environment picks narration and PATH publishing for where gtkup runs: the
// Actions runner, or a local shell
func environment() (logging.Narrator, envpath.Publisher, error) {
	if action.IsActions(os.Getenv) {
		runner := action.FromEnvironment()
		return runner, runner, nil
	}

	if !setEnv {
		return logging.NewLogNarrator(), envpath.ProcessPublisher{}, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	rcFile, err := envpath.FindRCFile(cfg.General.ShellConfigPath, os.Getenv("SHELL"), home)
	if err != nil {
		return nil, nil, err
	}
	return logging.NewLogNarrator(), &envpath.RCFilePublisher{Path: rcFile}, nil
}
