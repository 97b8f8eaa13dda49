package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/owalsh/docbase"
	"github.com/owalsh/docbase/crawl"
	"github.com/owalsh/docbase/fs"
	"github.com/owalsh/docbase/gemini"
	"github.com/owalsh/docbase/goquery"
	dochttp "github.com/owalsh/docbase/http"
	"github.com/owalsh/docbase/rod"
	docslog "github.com/owalsh/docbase/slog"
	"github.com/owalsh/docbase/trafilatura"
	"google.golang.org/genai"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Artifact path. Set before calling Run().
	ArtifactPath string

	// Store backed by the artifact file.
	Store *fs.Store
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		ArtifactPath: defaultArtifactPath(),
	}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Initialize dependencies struct for Kong binding
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	// Create Kong parser with dependency binding
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docbase"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags using Kong
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'docbase --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	// Parse arguments first to know which command and its flags
	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// The selected command comes from the parsed context, not args[0]:
	// global flags like -v may precede the command name.
	cmd := kongCtx.Command()
	if idx := strings.IndexByte(cmd, ' '); idx >= 0 {
		cmd = cmd[:idx]
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	// Wire core services into dependencies
	m.Store = fs.NewStore(m.ArtifactPath)
	deps.Logger = logger
	deps.Store = m.Store
	deps.Searcher = &docbase.Searcher{Store: m.Store}

	// Wire command-specific dependencies based on command
	if cmd == "crawl" {
		var fetcher docbase.Fetcher
		if cli.Crawl.Render {
			rodFetcher, err := rod.NewFetcher()
			if err != nil {
				fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed for --render")
				return fmt.Errorf("failed to start browser: %w", err)
			}
			fetcher = rodFetcher
		} else {
			fetcher = dochttp.NewFetcher(dochttp.WithTimeout(cli.Crawl.Timeout))
		}
		fetcher = docslog.NewLoggingFetcher(fetcher, logger)
		defer fetcher.Close()

		deps.Crawler = &crawl.Crawler{
			Fetcher:   fetcher,
			Extractor: goquery.NewExtractor(),
			Fallback:  trafilatura.NewExtractor(),
			Links:     goquery.NewLinkSelector(),
			Sitemaps:  dochttp.NewSitemapService(nil),
			Limiter:   crawl.NewPolitenessLimiter(cli.Crawl.Delay),
			Logger:    logger,
			PageCap:   cli.Crawl.Pages,
		}
	}

	if cmd == "ask" {
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
			return fmt.Errorf("GEMINI_API_KEY not set. Get a key at https://aistudio.google.com/apikey")
		}

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return fmt.Errorf("failed to connect to Gemini API: %w", err)
		}

		deps.Asker = gemini.NewAsker(client, askModel())
	}

	return kongCtx.Run(deps)
}

func askModel() string {
	if model := os.Getenv("DOCBASE_MODEL"); model != "" {
		return model
	}
	return gemini.DefaultModel
}

func defaultArtifactPath() string {
	if path := os.Getenv("DOCBASE_ARTIFACT"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "chunks.json"
	}
	return filepath.Join(home, ".docbase", "chunks.json")
}
