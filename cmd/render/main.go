// Package main provides the static timeline renderer.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/narvanalabs/timeline/internal/app"
	"github.com/narvanalabs/timeline/internal/dom"
	"github.com/narvanalabs/timeline/internal/loader"
	"github.com/narvanalabs/timeline/internal/parser"
	"github.com/narvanalabs/timeline/internal/server"
	"github.com/narvanalabs/timeline/internal/validation"
	"github.com/narvanalabs/timeline/pkg/config"
	"github.com/narvanalabs/timeline/pkg/logger"
	"github.com/narvanalabs/timeline/ui"
	"github.com/narvanalabs/timeline/web/layouts"
	"github.com/spf13/cobra"
)

type renderFlags struct {
	data        string
	out         string
	iconsDir    string
	iconsURL    string
	title       string
	stylesheet  string
	otherScores bool
	itemClass   string
	writeAssets bool
	timeout     time.Duration
	verbose     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	defaults := config.LoadWithDefaults()
	flags := &renderFlags{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the timeline data file to a static HTML page",
		Long: `Reads the YAML timeline data, sorts it newest first and writes a
complete HTML page. Score icons are overlaid when they exist in the icons
directory.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.data, "data", "d", defaults.DataSource, "data file path or http(s) URL")
	f.StringVarP(&flags.out, "out", "o", "-", "output file, - for stdout")
	f.StringVar(&flags.iconsDir, "icons", defaults.IconsDir, "directory holding <site>.png score icons")
	f.StringVar(&flags.iconsURL, "icons-url", defaults.IconsURL, "URL prefix of icons in the rendered page")
	f.StringVar(&flags.title, "title", defaults.PageTitle, "page title")
	f.StringVar(&flags.stylesheet, "stylesheet", ui.StylesheetName, "stylesheet href")
	f.BoolVar(&flags.otherScores, "other-scores", defaults.ShowOtherScores, "render scores that are neither critic nor user scores")
	f.StringVar(&flags.itemClass, "item-class", defaults.ItemClass, "extra Tailwind utility classes for every item")
	f.BoolVar(&flags.writeAssets, "write-assets", true, "write the default stylesheet next to the output file")
	f.DurationVar(&flags.timeout, "timeout", defaults.FetchTimeout, "data fetch timeout")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(newCheckCmd(defaults))
	return cmd
}

func newCheckCmd(defaults *config.Config) *cobra.Command {
	var (
		data        string
		otherScores bool
		strict      bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report entries that render with defaults or lose data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), cmd.OutOrStdout(), data, otherScores, strict)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&data, "data", "d", defaults.DataSource, "data file path or http(s) URL")
	f.BoolVar(&otherScores, "other-scores", defaults.ShowOtherScores, "treat unclassified scores as rendered")
	f.BoolVar(&strict, "strict", false, "fail on warnings as well as errors")

	return cmd
}

func runCheck(ctx context.Context, stdout io.Writer, data string, otherScores, strict bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	raw, err := loader.New(data, config.LoadWithDefaults().FetchTimeout).Fetch(ctx)
	if err != nil {
		return err
	}
	entries, err := parser.Parse(raw)
	if err != nil {
		return err
	}

	issues := validation.Check(entries, validation.Options{ShowOtherScores: otherScores})
	for _, issue := range issues {
		fmt.Fprintf(stdout, "%s\t%s\n", issue.Severity, issue.Error())
	}
	fmt.Fprintf(stdout, "%d entries, %d issues\n", len(entries), len(issues))

	if issues.HasErrors() || (strict && len(issues) > 0) {
		return fmt.Errorf("%s has %d issues", data, len(issues))
	}
	return nil
}

func runRender(ctx context.Context, stdout, stderr io.Writer, flags *renderFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}

	level := slog.LevelWarn
	if flags.verbose {
		level = slog.LevelDebug
	}
	log := logger.NewWithWriter(stderr, level, false)

	cfg := config.LoadWithDefaults()
	cfg.DataSource = flags.data
	cfg.IconsDir = flags.iconsDir
	cfg.IconsURL = flags.iconsURL
	cfg.ShowOtherScores = flags.otherScores
	cfg.ItemClass = flags.itemClass
	cfg.FetchTimeout = flags.timeout
	cfg.DataCacheTTL = 0

	pipeline := app.New(cfg, log)
	c := dom.NewContainer(server.ContainerID)

	report := pipeline.Loader.Load(ctx, c)
	if report.Err != nil {
		return fmt.Errorf("render %s: %w", flags.data, report.Err)
	}
	if report.Render != nil {
		waitCtx, cancel := context.WithTimeout(ctx, cfg.IconProbeTimeout)
		defer cancel()
		if err := report.Render.Wait(waitCtx); err != nil {
			log.Warn("some icon probes did not finish", "error", err)
		}
	}

	page := layouts.Page(layouts.PageData{
		Title:      flags.title,
		Stylesheet: flags.stylesheet,
	}, layouts.Timeline(c))

	var buf bytes.Buffer
	if err := page.Render(ctx, &buf); err != nil {
		return fmt.Errorf("render page: %w", err)
	}

	if flags.out == "" || flags.out == "-" {
		_, err := stdout.Write(buf.Bytes())
		return err
	}

	if err := os.WriteFile(flags.out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", flags.out, err)
	}
	log.Info("timeline written", "path", flags.out, "entries", len(report.Entries))

	if flags.writeAssets && flags.stylesheet == ui.StylesheetName {
		cssPath := filepath.Join(filepath.Dir(flags.out), ui.StylesheetName)
		if _, err := os.Stat(cssPath); os.IsNotExist(err) {
			if err := os.WriteFile(cssPath, ui.Stylesheet(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", cssPath, err)
			}
		}
	}
	return nil
}
