package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/riskscan/internal/config"
	"github.com/nao1215/riskscan/internal/database"
	"github.com/nao1215/riskscan/internal/extract"
	"github.com/nao1215/riskscan/internal/lexical"
	"github.com/nao1215/riskscan/internal/log"
	"github.com/nao1215/riskscan/internal/model"
	"github.com/nao1215/riskscan/internal/pipeline"
	"github.com/nao1215/riskscan/internal/report"
	"github.com/nao1215/riskscan/internal/section"
	"github.com/nao1215/riskscan/internal/sentence"
	"github.com/nao1215/riskscan/internal/sentiment"
	"github.com/nao1215/riskscan/internal/textnorm"
)

// tokenEnv holds the classifier token when it is not set in the config file.
const tokenEnv = "RISKSCAN_CLASSIFIER_TOKEN"

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <input-dir>",
		Short: "Rank the sentiment of risk factors in 10-K filings",
		Long: `Analyze reads every PDF, HTML and text filing in the input directory,
extracts the Risk Factors section and scores its words and sentences.

Output directory layout:
  extracted_texts/   normalized text of each filing
  risk_factors/      extracted Risk Factors sections
  analysis/          word and sentence CSV tables, summary.json
  output.md          Markdown report

Filings without a Risk Factors section are reported and skipped. The run
is recorded in the history database unless --no-history is given.

Examples:
  # Analyze filings with the VADER lexicon
  riskscan analyze ./filings

  # Write results to a custom directory
  riskscan analyze -o ./results ./filings

  # Classify sentences with a hosted model
  RISKSCAN_CLASSIFIER_TOKEN=hf_xxx riskscan analyze \
    --classifier-endpoint https://api-inference.huggingface.co/models/ProsusAI/finbert ./filings

  # Print the summary as JSON
  riskscan analyze --json ./filings`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyzeCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultOutputDir,
		"Output directory for artifacts and the report")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .riskscan in current or home directory)")
	cmd.Flags().BoolP("json", "j", false,
		"Print the run summary as JSON")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Number of filings loaded in parallel")

	cmd.Flags().StringSlice("stop-word", nil,
		"Additional stop word (repeatable)")
	cmd.Flags().String("start-marker", section.DefaultStartMarker,
		"Regular expression opening the risk section")
	cmd.Flags().String("stop-marker", section.DefaultStopMarker,
		"Regular expression following the risk section")
	cmd.Flags().String("header-pattern", textnorm.DefaultHeaderPattern,
		"Regular expression of running page headers to remove")
	cmd.Flags().String("lexicon", "",
		"Custom sentiment lexicon file (word<TAB>valence) replacing the VADER lexicon")

	cmd.Flags().String("classifier-endpoint", "",
		"URL of a hosted sentence classifier (default: VADER sentence scores)")
	cmd.Flags().Int("classifier-max-chars", sentiment.DefaultMaxChars,
		"Maximum characters per sentence sent to the classifier")
	cmd.Flags().Float64("classifier-rps", 0,
		"Maximum classifier requests per second (0 = unlimited)")
	cmd.Flags().Duration("classifier-timeout", sentiment.DefaultHTTPTimeout,
		"Timeout of one classifier request")

	cmd.Flags().Int("top-words", report.DefaultTopWords,
		"Number of negative words in the report")
	cmd.Flags().Int("top-sentences", report.DefaultTopSentences,
		"Number of negative sentences in the report")
	cmd.Flags().Float64("min-confidence", report.DefaultMinConfidence,
		"Score a negative sentence must exceed to be reported")

	cmd.Flags().Bool("no-history", false,
		"Do not record the run in the history database")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(cmd.ErrOrStderr(), cfg.Verbose, cfg.JSONLog)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runAnalyze(ctx, cfg, logger, cmd.OutOrStdout())
}

// getBoolFlag retrieves a boolean flag from the command or the root's
// persistent flags.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// buildConfig creates a Config from the config file and cobra command flags.
// Flags given on the command line override config file values.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicitly given config file must exist; the default locations are optional.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cf.Apply(cfg)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	if len(args) > 0 {
		cfg.InputDir = args[0]
	}
	cfg.Verbose = getBoolFlag(cmd, "verbose")
	cfg.JSONLog = getBoolFlag(cmd, "json-log")

	if cfg.JSONOutput, err = flags.GetBool("json"); err != nil {
		return nil, err
	}

	stringFlags := map[string]*string{
		"output":              &cfg.OutputDir,
		"start-marker":        &cfg.StartMarker,
		"stop-marker":         &cfg.StopMarker,
		"header-pattern":      &cfg.HeaderPattern,
		"lexicon":             &cfg.LexiconPath,
		"classifier-endpoint": &cfg.ClassifierEndpoint,
		"db-dir":              &cfg.DBDir,
	}
	for name, dst := range stringFlags {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetString(name); err != nil {
			return nil, err
		}
	}

	intFlags := map[string]*int{
		"concurrency":          &cfg.Concurrency,
		"classifier-max-chars": &cfg.ClassifierMaxChars,
		"top-words":            &cfg.TopWords,
		"top-sentences":        &cfg.TopSentences,
	}
	for name, dst := range intFlags {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetInt(name); err != nil {
			return nil, err
		}
	}

	floatFlags := map[string]*float64{
		"classifier-rps": &cfg.ClassifierRPS,
		"min-confidence": &cfg.MinConfidence,
	}
	for name, dst := range floatFlags {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetFloat64(name); err != nil {
			return nil, err
		}
	}

	if flags.Changed("classifier-timeout") {
		if cfg.ClassifierTimeout, err = flags.GetDuration("classifier-timeout"); err != nil {
			return nil, err
		}
	}

	stopWords, err := flags.GetStringSlice("stop-word")
	if err != nil {
		return nil, err
	}
	cfg.StopWords = append(cfg.StopWords, stopWords...)

	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noHistory

	if cfg.ClassifierToken == "" {
		cfg.ClassifierToken = os.Getenv(tokenEnv)
	}

	return cfg, nil
}

// runAnalyze executes one analysis run and prints its summary to out.
func runAnalyze(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	logger.Info("starting analysis",
		"input", cfg.InputDir,
		"output", cfg.OutputDir,
		"concurrency", cfg.Concurrency,
		"remoteClassifier", cfg.UsesRemoteClassifier(),
		"saveToDB", cfg.SaveToDB,
	)

	components, err := buildComponents(cfg, logger)
	if err != nil {
		return err
	}

	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			logger.Warn("history disabled: failed to open database", "dir", cfg.DBDir, "error", err)
		} else {
			defer db.Close()
			components.History = db
			logger.Info("database opened", "path", db.Path())
		}
	}

	p := pipeline.DefaultPipeline(components)
	result := model.NewAnalysisResult(cfg.InputDir, cfg.OutputDir)
	if err := p.Execute(ctx, result); err != nil {
		return err
	}

	return printSummary(out, cfg, result)
}

// buildComponents wires the analysis stages from the configuration.
func buildComponents(cfg *config.Config, logger *slog.Logger) (pipeline.Components, error) {
	var c pipeline.Components

	var normOpts []textnorm.Option
	if cfg.HeaderPattern != "" {
		re, err := regexp.Compile(cfg.HeaderPattern)
		if err != nil {
			return c, fmt.Errorf("%w: %w", config.ErrInvalidHeaderPattern, err)
		}
		normOpts = append(normOpts, textnorm.WithHeaderPattern(re))
	}

	sections, err := section.New(cfg.StartMarker, cfg.StopMarker)
	if err != nil {
		return c, err
	}

	vader := sentiment.NewVader()
	var (
		scorer     sentiment.LexicalScorer = vader
		classifier sentiment.Classifier    = vader
	)
	if cfg.LexiconPath != "" {
		lex, err := loadLexicon(cfg.LexiconPath)
		if err != nil {
			return c, err
		}
		scorer = lex
		classifier = sentiment.NewLexiconClassifier(lex)
	}
	if cfg.UsesRemoteClassifier() {
		classifier = sentiment.NewHTTPClassifier(cfg.ClassifierEndpoint,
			sentiment.WithToken(cfg.ClassifierToken),
			sentiment.WithMaxChars(cfg.ClassifierMaxChars),
			sentiment.WithRateLimit(cfg.ClassifierRPS),
			sentiment.WithHTTPClient(&http.Client{Timeout: cfg.ClassifierTimeout}),
			sentiment.WithLogger(logger),
		)
	}

	registry := extract.NewRegistry()
	c = pipeline.Components{
		Registry: registry,
		Loader:   pipeline.NewLoader(registry, textnorm.New(normOpts...), logger),
		Sections: sections,
		Words: lexical.New(scorer,
			lexical.WithLogger(logger),
			lexical.WithStopWords(lexical.NewStopWords(cfg.StopWords...)),
		),
		Sentences:   sentence.New(classifier, sentence.WithLogger(logger)),
		Artifacts:   report.NewArtifacts(cfg.OutputDir),
		Version:     getVersion(),
		Concurrency: cfg.Concurrency,
		Report: []report.MarkdownOption{
			report.WithTopWords(cfg.TopWords),
			report.WithTopSentences(cfg.TopSentences),
			report.WithFrequentWords(cfg.FrequentWords),
			report.WithMinConfidence(cfg.MinConfidence),
		},
		Logger: logger,
	}
	return c, nil
}

// loadLexicon reads the custom lexicon at path.
func loadLexicon(path string) (*sentiment.Lexicon, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided lexicon path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open lexicon: %w", err)
	}
	defer f.Close()

	lex, err := sentiment.LoadLexicon(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load lexicon %s: %w", path, err)
	}
	return lex, nil
}

// printSummary writes the run summary in the requested format.
func printSummary(out io.Writer, cfg *config.Config, result *model.AnalysisResult) error {
	if cfg.JSONOutput {
		_, err := report.NewJSONWriter(out, report.WithPrettyPrint(), report.WithVersion(getVersion())).Write(result)
		return err
	}

	w := report.NewSimpleWriter(out,
		report.WithVerbose(cfg.Verbose),
		report.WithLimits(cfg.TopWords, cfg.TopSentences, cfg.MinConfidence),
	)
	if _, err := w.Write(result); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nReport written to %s\n", filepath.Join(cfg.OutputDir, report.ReportFile))
	if result.RunID > 0 {
		fmt.Fprintf(out, "Run recorded as #%d (see 'riskscan history --show %d')\n", result.RunID, result.RunID)
	}
	return nil
}
