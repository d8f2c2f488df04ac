// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/parseyaml/internal/convert"
	"github.com/pdiddy/parseyaml/internal/history"
	"github.com/pdiddy/parseyaml/internal/secrets"
	"github.com/pdiddy/parseyaml/internal/ui"
	"github.com/pdiddy/parseyaml/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [input] [output]",
	Short: "Convert a YAML document to JSON",
	Long: `Convert reads the YAML document at input and writes its JSON form to output,
replacing any existing file. The file is replaced atomically and is left
untouched when the input cannot be read or parsed.

input defaults to .github/workflows/main.yml and may be "-" (stdin) or an
http(s) URL. URL inputs send the token in <secrets_dir>/http-token, if
present, as a bearer token. output defaults to parseyml.json and may be "-" (stdout).
Exit status is 2 for read errors, 3 for parse errors, and 4 for write errors.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().Int("indent", 0, "spaces per indentation level (0 writes compact JSON)")
	convertCmd.Flags().Bool("history", false, "record the run in the history database")

	viper.BindPFlag("conversion.indent", convertCmd.Flags().Lookup("indent"))
	viper.BindPFlag("history.enabled", convertCmd.Flags().Lookup("history"))

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if len(args) > 0 {
		cfg.Conversion.Input = args[0]
	}
	if len(args) > 1 {
		cfg.Conversion.Output = args[1]
	}
	return convertAndRecord(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// convertAndRecord runs one conversion, prints its status to stderr, and
// records it when history is enabled. The conversion error is returned
// unchanged.
func convertAndRecord(ctx context.Context, cfg types.Config, stdin io.Reader, stdout, stderr io.Writer) error {
	in, out := cfg.Conversion.Input, cfg.Conversion.Output

	sec, err := secrets.Load(cfg.Conversion.SecretsDir)
	if err != nil {
		zap.L().Warn("loading secrets", zap.Error(err))
	} else if keys := sec.Keys(); len(keys) > 0 {
		zap.L().Debug("loaded secrets", zap.Strings("keys", keys))
	}

	started := time.Now()
	res, err := convert.Convert(ctx, in, out,
		convert.WithIndent(cfg.Conversion.Indent),
		convert.WithBearerToken(sec.Get(secrets.HTTPToken)),
		convert.WithStdio(stdin, stdout),
	)

	run := types.ConversionRun{
		Input:     in,
		Output:    out,
		StartedAt: started,
		Duration:  time.Since(started),
	}
	if err != nil {
		run.Status = types.ConversionFailed
		run.ErrorKind = string(convert.KindOf(err))
		run.Error = err.Error()
	} else {
		run.Status = types.ConversionDone
		run.Bytes = res.Bytes
		run.SHA256 = res.SHA256
		if out != convert.Stdio {
			ui.Success(stderr, "converted %s -> %s (%d bytes)", in, out, res.Bytes)
		}
	}

	if cfg.History.Enabled {
		recordRun(ctx, cfg.History, run)
	}
	return err
}

// recordRun stores run in the history database. Failures are logged and
// never affect the conversion result.
func recordRun(ctx context.Context, cfg types.HistoryConfig, run types.ConversionRun) {
	log := zap.L().With(zap.String("db", cfg.DBPath))

	store, err := history.NewStore(cfg)
	if err != nil {
		log.Warn("opening history store", zap.Error(err))
		return
	}
	defer store.Close()

	id, err := store.Record(ctx, run)
	if err != nil {
		log.Warn("recording run", zap.Error(err))
		return
	}
	log.Debug("recorded run", zap.Int64("id", id), zap.String("status", string(run.Status)))
}
