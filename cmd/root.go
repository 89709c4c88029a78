package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"gtkup/config"
	"gtkup/logging"

	"github.com/spf13/cobra"
)

// Global config variable
var cfg *config.Config

// Global flags
var (
	configFile string
	archFlag   string
	gtkDirFlag string
)

// Root command
var rootCmd = &cobra.Command{
	Use:   "gtkup",
	Short: "gtkup - GTK+ bundle installer for CI",
	Long: `gtkup downloads the prebuilt GTK+ Windows bundles for the selected
architectures, unpacks them under a directory of your choice and adds the
install directories to PATH. Run without a subcommand it behaves like
'gtkup install', which is what the GitHub Action step does.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration with optional config file override
		var err error
		cfg, err = config.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		// Initialize logger with JSON format if requested
		if err := logging.InitLogger(cfg.General.LogPath, cfg.General.LogLevel, jsonOutput || jsonLogs); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if cfg.Source != "" {
			logging.LogDebug("⚙️ Loaded configuration from %s", cfg.Source)
		}
		return nil
	},
	RunE: runInstall,
}

func init() {
	// Pre-log important startup messages before logger is initialized
	logging.PreLog("DEBUG", "Initializing gtkup...")

	// Add subcommands
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(targetsCmd)
	rootCmd.AddCommand(cleanCmd)

	// The root command installs too
	addInstallFlags(rootCmd)

	// Add flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to configuration file (default: GTKUP_CONFIG_PATH or ./gtkup.toml)")
	rootCmd.PersistentFlags().StringVar(&archFlag, "arch", "", "Architectures to install, e.g. \"x86,x64\" (default: INPUT_ARCH or [inputs] arch)")
	rootCmd.PersistentFlags().StringVar(&gtkDirFlag, "gtk-dir", "", "Base directory for the bundles (default: INPUT_GTK_DIR or [inputs] gtk_dir)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Output logs in JSON format")
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	defer logging.Close()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		ExitWithError(err)
	}
}
