package main

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"receiptbatch/internal/ledger"
	"receiptbatch/internal/pipeline"
	"receiptbatch/internal/report"
	"receiptbatch/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	// Credentials may live in a project .env; absence is fine.
	_ = godotenv.Load()

	fs := ff.NewFlagSet("receipt-batch")
	var (
		inputDir       = fs.StringLong("input", "data", "Directory of receipt images and PDFs")
		outputDir      = fs.StringLong("output", "output", "Directory for the consolidated report")
		archiveDir     = fs.StringLong("archive", filepath.Join("output", "pdfs"), "Directory for per-receipt archive copies (reset every run)")
		providerType   = fs.StringLong("provider", "openai", "Extraction provider: 'openai' or 'gemini'")
		openaiKey      = fs.StringLong("openai-key", "", "OpenAI API key (or set OPENAI_API_KEY env var)")
		openaiURL      = fs.StringLong("openai-url", "https://api.openai.com/v1", "OpenAI-compatible API base URL")
		openaiModel    = fs.StringLong("openai-model", "gpt-4o", "OpenAI model name")
		geminiKey      = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel    = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		dbPath         = fs.StringLong("db", "", "Run ledger database path (empty disables the ledger)")
		listRuns       = fs.BoolLong("list-runs", "List recorded ledger runs and exit")
		loadWorkers    = fs.IntLong("load-workers", 0, "Concurrent document loads (0 = one per CPU)")
		extractWorkers = fs.IntLong("extract-workers", 8, "Concurrent extraction calls")
		writeXLSX      = fs.BoolLong("xlsx", "Also write an XLSX workbook next to the CSV")
		showVersion    = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPT_BATCH"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Open ledger if requested
	var led *ledger.Ledger
	if *dbPath != "" {
		var err error
		led, err = ledger.Open(*dbPath)
		if err != nil {
			slog.Error("Failed to open ledger", "path", *dbPath, "error", err)
			os.Exit(1)
		}
		defer led.Close()
	}

	if *listRuns {
		if led == nil {
			slog.Error("--list-runs requires --db")
			os.Exit(1)
		}
		printRuns(led)
		return
	}

	// Initialize extraction provider based on type
	var scanner scanning.Scanner
	var err error
	switch *providerType {
	case "openai":
		apiKey := *openaiKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("OpenAI API key is required. Set --openai-key flag or OPENAI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing OpenAI provider...", "model", *openaiModel)
		scanner, err = scanning.NewOpenAI(apiKey, *openaiURL, *openaiModel)
		if err != nil {
			slog.Error("Failed to initialize OpenAI", "error", err)
			os.Exit(1)
		}
	case "gemini":
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini provider...", "model", *geminiModel)
		scanner, err = scanning.NewGemini(apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("Invalid provider type", "type", *providerType, "valid", "openai or gemini")
		os.Exit(1)
	}
	defer scanner.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipe := pipeline.New(scanner, pipeline.NewArchive(*archiveDir), led, pipeline.Config{
		LoadWorkers:    *loadWorkers,
		ExtractWorkers: *extractWorkers,
	})

	results, err := pipe.Run(ctx, *inputDir)
	if err != nil {
		slog.Error("Run failed", "error", err)
		os.Exit(1)
	}

	if len(results) == 0 {
		slog.Info("No receipts accepted, skipping report")
		return
	}

	csvPath, err := report.WriteCSV(*outputDir, results)
	if err != nil {
		slog.Error("Failed to write CSV", "error", err)
		os.Exit(1)
	}
	slog.Info("Report written", "path", csvPath, "rows", len(results))

	if *writeXLSX {
		xlsxPath, err := report.WriteXLSX(*outputDir, results)
		if err != nil {
			slog.Error("Failed to write XLSX", "error", err)
			os.Exit(1)
		}
		slog.Info("Workbook written", "path", xlsxPath)
	}
}

func printRuns(led *ledger.Ledger) {
	runs, err := led.Runs()
	if err != nil {
		slog.Error("Failed to list runs", "error", err)
		os.Exit(1)
	}
	for _, run := range runs {
		records, err := led.Records(run)
		if err != nil {
			slog.Error("Failed to read run", "run", run, "error", err)
			os.Exit(1)
		}
		fmt.Printf("%s: %d receipts\n", run, len(records))
	}
}
