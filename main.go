package main

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/wailsapp/wails/v2"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configPath string
		debugMode  bool
	)

	rootCmd := &cobra.Command{
		Use:   "pinview",
		Short: "Pinned, aspect-locked viewer window",
		Long: `Pinview shows a single web page in a frameless window that keeps a
fixed aspect ratio, stays on top and remembers where you left it.`,
		Version: GetVersionInfo().String(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(configPath, debugMode)
		},
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (default: XDG config dir)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	var verbose bool
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), GetVersionInfo())
			if !verbose {
				return nil
			}
			data, err := json.MarshalIndent(GetPlatformInfo(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	versionCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Also print host platform details")

	resetStateCmd := &cobra.Command{
		Use:   "reset-state",
		Short: "Forget the saved window position and size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return resetWindowState(NewLogger(nil, logLevelFor(DefaultLogLevel, debugMode)))
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage Pinview configuration",
	}

	configPathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveConfigPath(configPath)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	configResetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset configuration to defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveConfigPath(configPath)
			if err != nil {
				return err
			}
			if err := SaveConfig(path, DefaultConfig()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration reset: %s\n", path)
			return nil
		},
	}

	configCmd.AddCommand(configPathCmd, configResetCmd)
	rootCmd.AddCommand(versionCmd, resetStateCmd, configCmd)
	return rootCmd
}

func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return DefaultConfigPath()
}

func logLevelFor(configured string, debug bool) string {
	if debug {
		return zerolog.LevelDebugValue
	}
	return configured
}

// runShell loads the configuration, opens the state store and runs the
// window until it is closed.
func runShell(configPath string, debug bool) error {
	platformInit()

	bootLog := NewLogger(nil, logLevelFor(DefaultLogLevel, debug))
	path, err := resolveConfigPath(configPath)
	var cfg *AppConfig
	if err != nil {
		bootLog.Warn().Err(err).Msg("no config location, using defaults")
		cfg = DefaultConfig()
	} else {
		cfg = LoadConfig(path, bootLog)
	}

	log := NewLogger(nil, logLevelFor(cfg.LogLevel, debug))
	store := openStateStore(log)

	content, err := NewContentHandler(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create content handler: %w", err)
	}
	dist, err := fs.Sub(assets, "frontend/dist")
	if err != nil {
		return fmt.Errorf("failed to open embedded assets: %w", err)
	}

	app := NewApp(cfg, store, log)
	if err := wails.Run(createAppOptions(app, dist, content)); err != nil {
		log.Error().Err(err).Msg("failed to start application")
		return err
	}
	return nil
}

// openStateStore opens the default state file. A store that cannot be opened
// is not fatal; geometry is then kept for this session only.
func openStateStore(log zerolog.Logger) *FileStore {
	path, err := DefaultStatePath()
	if err != nil {
		log.Warn().Err(err).Msg("no state location, window geometry will not persist")
		return nil
	}
	store, err := OpenFileStore(path, log)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("state store unavailable, window geometry will not persist")
		return nil
	}
	return store
}

func resetWindowState(log zerolog.Logger) error {
	path, err := DefaultStatePath()
	if err != nil {
		return err
	}
	store, err := OpenFileStore(path, log)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(WindowBoundsKey); err != nil {
		return fmt.Errorf("failed to clear window state: %w", err)
	}
	log.Info().Str("path", path).Msg("window state cleared")
	return nil
}
