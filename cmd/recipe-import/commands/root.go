// Package commands implements the recipe-import command line.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Birgy1002/rezept-pwa/internal/adapter/fetcher"
	"github.com/Birgy1002/rezept-pwa/internal/entity"
	"github.com/Birgy1002/rezept-pwa/internal/usecase"
	"github.com/Birgy1002/rezept-pwa/pkg/config"
	"github.com/Birgy1002/rezept-pwa/pkg/logger"
	"github.com/Birgy1002/rezept-pwa/pkg/metrics"
)

const (
	outputJSON = "json"
	outputYAML = "yaml"
)

// NewRootCmd builds the recipe-import command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipe-import <url>",
		Short: "Fetch a recipe page and print the extracted recipe",
		Long: `recipe-import fetches one recipe page, extracts title, image,
ingredients and steps, and prints the result. Nothing is stored.

Defaults for the user agent, allow-list and timeout come from the same
environment variables as the API server.

Examples:
  recipe-import https://thehiddenveggies.com/savory-vegan-muffins/

  # Only allow one host and print YAML
  recipe-import --allow-host thehiddenveggies.com -o yaml \
      https://thehiddenveggies.com/savory-vegan-muffins/

  # Render with headless Chrome first
  recipe-import --browser https://example.com/recipe`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runImport,
	}

	flags := cmd.Flags()
	flags.StringSlice("allow-host", nil, "allowed host (repeatable, overrides ALLOWED_HOSTS)")
	flags.Bool("browser", false, "render the page in headless Chrome")
	flags.Duration("timeout", 0, "fetch timeout (default FETCH_TIMEOUT_SECONDS)")
	flags.StringP("output", "o", outputJSON, "output format: json, yaml")
	flags.Bool("debug", false, "enable debug logging")

	return cmd
}

// Execute runs the command with os.Args and reports errors on stderr.
func Execute() error {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("output")
	if format != outputJSON && format != outputYAML {
		return fmt.Errorf("unknown output format %q", format)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level := "warn"
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = "debug"
	}
	log, err := logger.New(level)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	metrics.Init()

	opts := fetcher.OptionsFromConfig(cfg)
	if hosts, _ := cmd.Flags().GetStringSlice("allow-host"); len(hosts) > 0 {
		opts.Allowlist = fetcher.NewHostAllowlist(hosts)
	}
	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		opts.Timeout = timeout
	}
	mode := fetcher.ModeStatic
	if browser, _ := cmd.Flags().GetBool("browser"); browser {
		mode = fetcher.ModeBrowser
	}

	pageFetcher, release, err := fetcher.New(mode, opts, log)
	if err != nil {
		return err
	}
	defer release()

	recipe, err := usecase.NewRecipeImporter(pageFetcher, log).ImportRecipe(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if recipe.Degraded {
		log.Warn("page contained no usable HTML, printing placeholder", zap.String("url", args[0]))
	}

	return writeRecipe(cmd.OutOrStdout(), format, recipe)
}

func writeRecipe(w io.Writer, format string, recipe *entity.ExtractedRecipe) error {
	if format == outputYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(recipe); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(recipe)
}
