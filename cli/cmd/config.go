package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	cliconfig "github.com/fluxbase-eu/preppy/cli/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the project configuration",
	Long: `View and modify the build defaults stored in ` + cliconfig.FileName + `.
Command line flags and PREPPY_* environment variables override them.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new configuration file",
	Long: `Create a new configuration file with default settings in the project root.

Examples:
  preppy config init
  preppy config init --root ./packages/core`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Display current configuration",
	Long: `Show the project configuration, including built-in defaults.

Examples:
  preppy config view
  preppy config view --output json`,
	Args: cobra.NoArgs,
	RunE: runConfigView,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Available keys:
  defaults.sourcemap     - Emit linked source maps (true, false)
  defaults.output_folder - Synthesize conventional outputs below this folder
  defaults.sizes         - Print artifact sizes (true, false)

Examples:
  preppy config set defaults.sourcemap true
  preppy config set defaults.output_folder dist`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Get a configuration value",
	Long: `Get a specific configuration value.

Examples:
  preppy config get defaults.output_folder`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configViewCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := GetConfigPath()

	if _, err := cliconfig.Load(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}

	if err := cliconfig.New().Save(configPath); err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created at: %s\n", configPath)
	return nil
}

func runConfigView(cmd *cobra.Command, args []string) error {
	cfg, err := cliconfig.LoadOrDefault(GetConfigPath())
	if err != nil {
		return err
	}

	f := GetFormatter()
	f.Writer = cmd.OutOrStdout()
	return f.Print(cfg)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	configPath := GetConfigPath()

	cfg, err := cliconfig.LoadOrDefault(configPath)
	if err != nil {
		return err
	}

	if err := cfg.Set(key, value); err != nil {
		return err
	}

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg, err := cliconfig.LoadOrDefault(GetConfigPath())
	if err != nil {
		return err
	}

	value, err := cfg.Get(args[0])
	if err != nil {
		return err
	}

	f := GetFormatter()
	f.Writer = cmd.OutOrStdout()
	return f.Print(map[string]string{args[0]: value})
}
