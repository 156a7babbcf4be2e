// Package cmd provides the Cobra commands for the preppy CLI.
package cmd

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cliconfig "github.com/fluxbase-eu/preppy/cli/config"
	"github.com/fluxbase-eu/preppy/cli/output"
	"github.com/fluxbase-eu/preppy/internal/project"
)

// EnvPrefix prefixes the environment variables read by the CLI
const EnvPrefix = "PREPPY"

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"

	// Global flags
	cfgFile   string
	rootDir   string
	outputFmt string
	noHeaders bool
	noSizes   bool
	analyze   bool
	verbose   bool
	quiet     bool

	// Entry and output overrides, shared by build and plan
	inputs project.Flags

	// Shared across commands
	cfg       *cliconfig.Config
	formatter *output.Formatter
)

// rootCmd represents the base command; on its own it builds the project
var rootCmd = &cobra.Command{
	Use:   "preppy",
	Short: "preppy - Bundle a JavaScript package for every target it declares",
	Long: `preppy reads package.json, works out which artifacts the package declares
(main, module, umd, browser, types, bin) and bundles each of them from the
conventional sources below src/.

Entry points:
  src/node.{js,ts,jsx,tsx}, src/server.*   Node build (CommonJS and ES module)
  src/index.{js,ts,jsx,tsx}                Library build (ES module, CommonJS, UMD)
  --input-browser, --input-binary          Browser and executable builds

Get started:
  preppy              Build everything package.json declares
  preppy plan         Show the jobs a build would run
  preppy --help       Show available commands`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Silence errors only when --quiet is used
		cmd.SilenceErrors = quiet
		return initialize()
	},
	RunE: runBuild,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", "",
		"config file (default is <root>/"+cliconfig.FileName+")")
	flags.StringVar(&rootDir, "root", ".",
		"project root containing package.json")
	flags.BoolVarP(&verbose, "verbose", "v", false,
		"log every loaded file and print a run summary")
	flags.BoolVarP(&quiet, "quiet", "q", false,
		"only print warnings and errors")
	flags.Bool(cliconfig.KeySourcemap, false,
		"emit linked source maps")

	flags.StringVar(&inputs.InputNode, "input-node", "",
		"entry for the Node build (default src/node.* or src/server.*)")
	flags.StringVar(&inputs.InputLibrary, "input-lib", "",
		"entry for the library build (default src/index.*)")
	flags.StringVar(&inputs.InputBrowser, "input-browser", "",
		"entry for the browser build")
	flags.StringVar(&inputs.InputBinary, "input-binary", "",
		"entry for the executable build")
	flags.String("output-folder", "",
		"write conventionally named artifacts below this folder")
	flags.StringVar(&inputs.OutputBinary, "output-binary", "",
		"destination of the executable (default is the manifest bin)")

	flags.BoolVar(&noSizes, "no-sizes", false,
		"do not print artifact sizes")
	flags.BoolVar(&analyze, "analyze", false,
		"print the bundle breakdown of every artifact")
	flags.StringVarP(&outputFmt, "output", "o", "table",
		"output format for plan and config: table, json, yaml")
	flags.BoolVar(&noHeaders, "no-headers", false,
		"hide table headers")

	_ = viper.BindPFlag(cliconfig.KeyVerbose, flags.Lookup("verbose"))
	_ = viper.BindPFlag(cliconfig.KeyQuiet, flags.Lookup("quiet"))
	_ = viper.BindPFlag(cliconfig.KeySourcemap, flags.Lookup(cliconfig.KeySourcemap))
	_ = viper.BindPFlag(cliconfig.KeyOutputFolder, flags.Lookup("output-folder"))

	// Bind environment variables
	viper.SetEnvPrefix(EnvPrefix)
	_ = viper.BindEnv(cliconfig.KeyVerbose)      // PREPPY_VERBOSE
	_ = viper.BindEnv(cliconfig.KeyQuiet)        // PREPPY_QUIET
	_ = viper.BindEnv(cliconfig.KeySourcemap)    // PREPPY_SOURCEMAP
	_ = viper.BindEnv(cliconfig.KeyOutputFolder) // PREPPY_OUTPUT_FOLDER
	_ = viper.BindEnv(cliconfig.KeySizes)        // PREPPY_SIZES

	// Add subcommands
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}

// initialize loads the project config file and sets up logging. Flags and
// environment variables override config file values.
func initialize() error {
	// A .env file in the project root may carry PREPPY_* settings; the
	// process environment wins over it
	_ = godotenv.Load(filepath.Join(rootDir, ".env"))

	var err error
	cfg, err = cliconfig.LoadOrDefault(GetConfigPath())
	if err != nil {
		return err
	}
	cfg.ApplyDefaults(viper.GetViper())

	verbose = viper.GetBool(cliconfig.KeyVerbose)
	quiet = viper.GetBool(cliconfig.KeyQuiet)
	setupLogging(verbose, quiet)

	return nil
}

// setupLogging points the global logger at stderr. --quiet wins over --verbose.
func setupLogging(verbose, quiet bool) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, PartsExclude: []string{zerolog.TimestampFieldName}})

	switch {
	case quiet:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case verbose:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// currentFlags merges the command line overrides with the viper-resolved settings
func currentFlags() project.Flags {
	flags := inputs
	flags.Verbose = verbose
	flags.Quiet = quiet
	flags.Sourcemap = viper.GetBool(cliconfig.KeySourcemap)
	flags.OutputFolder = viper.GetString(cliconfig.KeyOutputFolder)
	return flags
}

// sizesEnabled reports whether artifact size lines are printed
func sizesEnabled() bool {
	return !noSizes && viper.GetBool(cliconfig.KeySizes)
}

// GetFormatter returns the output formatter (for use by subcommands)
func GetFormatter() *output.Formatter {
	if formatter == nil {
		format, _ := output.ParseFormat(outputFmt)
		formatter = output.NewFormatter(format, noHeaders, quiet)
	}
	return formatter
}

// GetConfigPath returns the config file path
func GetConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return cliconfig.DefaultPath(filepath.Clean(rootDir))
}

// IsVerbose returns true if verbose logging is enabled
func IsVerbose() bool {
	return verbose
}
