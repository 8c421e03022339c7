package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Terryzhang-jp/floorplan-label-maker/config"
	"github.com/Terryzhang-jp/floorplan-label-maker/floorplan"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	os.Exit(run())
}

// run executes the command and returns the process exit code.
func run() int {
	format := flag.String("format", "text", "Output format: text, json or yaml")
	concurrency := flag.Int("concurrency", 1, "Number of images analyzed at the same time")
	envFile := flag.String("env", "", "Path to an env file (default: ./.env, then the user config file)")
	setup := flag.Bool("setup", false, "Run the interactive setup and save the API key")
	strict := flag.Bool("strict", false, "Exit with an error when features break the feature rules")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Usage = usage
	flag.Parse()

	setupLogging(*debug)

	if err := config.LoadEnvFile(*envFile); err != nil {
		log.Error().Err(err).Msg("failed to load env file")
		return 1
	}

	if *setup || needsSetup() {
		if !runSetupWizard() {
			return 1
		}
		if *setup && flag.NArg() == 0 {
			return 0
		}
	}

	if flag.NArg() == 0 {
		flag.Usage()
		return 2
	}

	p, err := newPrinter(*format, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, config.ErrConfiguration) {
			fmt.Fprintf(os.Stderr, "Run %s -setup, or set the variable in .env\n", os.Args[0])
		}
		return 1
	}

	// Create context that cancels on SIGINT or SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	analyzer, err := floorplan.NewFromConfig(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	log.Info().Str("provider", cfg.Provider).Str("model", cfg.Model).Msg("floor plan analyzer initialized")

	outcomes := analyzeAll(ctx, analyzer, flag.Args(), *concurrency)

	if err := p.Print(outcomes); err != nil {
		log.Error().Err(err).Msg("failed to print results")
		return 1
	}

	return exitCode(outcomes, *strict)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <image-path-or-url>...\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "\nFlags:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nEnvironment variables:\n")
	fmt.Fprintf(os.Stderr, "  GOOGLE_API_KEY      - Required for Gemini (default provider)\n")
	fmt.Fprintf(os.Stderr, "  OPENAI_API_KEY      - Required when FLOORPLAN_PROVIDER=openai\n")
	fmt.Fprintf(os.Stderr, "  FLOORPLAN_PROVIDER  - gemini or openai\n")
	fmt.Fprintf(os.Stderr, "  FLOORPLAN_MODEL     - Model name override\n")
}

func setupLogging(debug bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// outcome is the result of analyzing one image.
type outcome struct {
	Image    string
	Analysis *floorplan.Analysis
	Issues   []floorplan.Issue
	Err      error
}

// analyzeAll runs one independent Analyze call per image, at most
// concurrency at a time. Outcomes are returned in input order.
func analyzeAll(ctx context.Context, analyzer *floorplan.Analyzer, images []string, concurrency int) []outcome {
	if concurrency < 1 {
		concurrency = 1
	}

	outcomes := make([]outcome, len(images))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, image := range images {
		g.Go(func() error {
			o := outcome{Image: image}
			o.Analysis, o.Err = analyzer.Analyze(ctx, image)
			if o.Err == nil {
				o.Issues = analyzer.CheckQuality(o.Analysis.Result)
			}
			outcomes[i] = o
			// A failed image must not cancel the others
			return nil
		})
	}
	g.Wait()

	return outcomes
}

func exitCode(outcomes []outcome, strict bool) int {
	for _, o := range outcomes {
		if o.Err != nil {
			return 1
		}
		if strict && len(o.Issues) > 0 {
			return 1
		}
	}
	return 0
}
