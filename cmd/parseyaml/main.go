// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the parseyaml CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/parseyaml/internal/convert"
	"github.com/pdiddy/parseyaml/internal/history"
	"github.com/pdiddy/parseyaml/internal/logging"
	"github.com/pdiddy/parseyaml/internal/ui"
	"github.com/pdiddy/parseyaml/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	defaultInput  = ".github/workflows/main.yml"
	defaultOutput = "parseyml.json"

	defaultSecretsDir = ".secrets"
)

// Process exit codes. Conversion failures get one code per error kind.
const (
	exitFailure    = 1
	exitReadError  = 2
	exitParseError = 3
	exitWriteError = 4
)

// rootCmd is the base command for the parseyaml CLI.
var rootCmd = &cobra.Command{
	Use:   "parseyaml",
	Short: "Convert YAML documents to JSON",
	Long: `parseyaml reads a YAML document, parses it, and writes the result as JSON.

By default it converts the CI workflow at .github/workflows/main.yml into
parseyml.json. Inputs may also be "-" for stdin or an http(s) URL; "-" as the
output writes to stdout.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogger,
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./parseyaml.yaml or ~/.config/parseyaml/config.yaml)")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-format", string(types.LogConsole), "log format: console or json")

	viper.BindPFlag("log.level", flags.Lookup("log-level"))
	viper.BindPFlag("log.format", flags.Lookup("log-format"))

	setDefaults(viper.GetViper())
}

// setDefaults registers the built-in value of every config key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("conversion.input", defaultInput)
	v.SetDefault("conversion.output", defaultOutput)
	v.SetDefault("conversion.indent", 0)
	v.SetDefault("conversion.secrets_dir", defaultSecretsDir)
	v.SetDefault("history.enabled", false)
	v.SetDefault("history.db_path", history.DefaultDBPath)
	v.SetDefault("history.max_results", 20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", string(types.LogConsole))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("parseyaml")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "parseyaml"))
		}
	}

	bindEnv(viper.GetViper())

	// A missing config file is fine; defaults and flags still apply.
	viper.ReadInConfig()
}

// bindEnv maps PARSEYAML_SECTION_KEY environment variables onto section.key.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("PARSEYAML")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// loadConfig decodes v into a Config.
func loadConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

func setupLogger(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	lg, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(lg)

	if f := viper.ConfigFileUsed(); f != "" {
		lg.Debug("using config file", zap.String("path", f))
	}
	return nil
}

// exitCode maps an error from a command to the process exit status.
func exitCode(err error) int {
	switch convert.KindOf(err) {
	case convert.KindRead:
		return exitReadError
	case convert.KindParse:
		return exitParseError
	case convert.KindWrite:
		return exitWriteError
	default:
		return exitFailure
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = zap.L().Sync()

	if err != nil {
		ui.Failure(os.Stderr, "%v", err)
		os.Exit(exitCode(err))
	}
}
