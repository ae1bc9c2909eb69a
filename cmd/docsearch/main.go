package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"docsearch/internal/chunker"
	"docsearch/internal/config"
	"docsearch/internal/domain"
	"docsearch/internal/embedding/gemini"
	"docsearch/internal/embedding/openai"
	"docsearch/internal/extract"
	"docsearch/internal/pipeline"
	"docsearch/internal/tui"

	chromemstore "docsearch/internal/vectorstore/chromem"
	"docsearch/internal/vectorstore/pgvector"
)

func main() {
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:  "docsearch",
		Usage: "index documents and answer natural-language queries by vector similarity",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to config YAML",
				Value: "config.yaml",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "index",
				Usage: "chunk, embed and store a document (PDF, DOCX or plain text)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Usage:    "path to the document file",
						Required: true,
					},
				},
				Action: runIndex,
			},
			{
				Name:  "search",
				Usage: "rank stored chunks by similarity to a query",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "query",
						Usage: "search query text",
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "number of results to return",
					},
					&cli.BoolFlag{
						Name:  "interactive",
						Usage: "open the interactive search UI",
					},
				},
				Action: runSearch,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err.Error())
	}
}

func runIndex(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	emb, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	store, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ix := pipeline.NewIndexer(extract.New(), chunker.New(cfg.Chunker.SentencesPerChunk), emb, store, logger)
	report, err := ix.IndexFile(ctx, cmd.String("file"))
	if err != nil {
		return err
	}
	if report.Inserted == 0 {
		fmt.Printf("Nothing to index: %s produced no embeddable text.\n", report.Filename)
		return nil
	}
	fmt.Printf("Indexed %s: %d chunks stored, %d skipped, %d failed to embed.\n",
		report.Filename, report.Inserted, report.Skipped, report.Failed)
	return nil
}

func runSearch(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	emb, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	store, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	topK := int(cmd.Int("top-k"))
	if topK <= 0 {
		topK = cfg.Search.TopK
	}
	searcher := pipeline.NewSearcher(emb, store, logger)

	if cmd.Bool("interactive") {
		_, err := tea.NewProgram(tui.New(searcher, topK)).Run()
		return err
	}

	query := cmd.String("query")
	if query == "" {
		return fmt.Errorf("either --query or --interactive is required")
	}
	results, err := searcher.Search(ctx, query, topK)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("No relevant documents found.")
		return nil
	}
	fmt.Println("--- Search Results ---")
	for i, r := range results {
		fmt.Printf("\n--- Result %d (Similarity: %.4f) [%s] ---\n%s\n", i+1, r.Score, r.Filename, r.ChunkText)
	}
	return nil
}

func setup(cmd *cli.Command) (*config.AppConfig, *zap.Logger, error) {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func buildEmbedder(cfg *config.AppConfig) (domain.Embedder, error) {
	switch cfg.Embedder.Type {
	case "gemini":
		g := cfg.Embedder.Gemini
		key := os.Getenv(g.APIKeyEnv)
		if key == "" {
			return nil, &domain.ConfigError{Setting: g.APIKeyEnv}
		}
		return gemini.NewClient(gemini.Config{
			BaseURL: g.BaseURL,
			APIKey:  key,
			Model:   g.Model,
			Timeout: time.Duration(g.TimeoutSecs) * time.Second,
		})
	case "openai":
		o := cfg.Embedder.OpenAI
		key := os.Getenv(o.APIKeyEnv)
		if key == "" {
			return nil, &domain.ConfigError{Setting: o.APIKeyEnv}
		}
		return openai.NewClient(openai.Config{APIKey: key, Model: o.Model})
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}
}

func openStorage(ctx context.Context, cfg *config.AppConfig) (domain.Storage, error) {
	switch cfg.Store.Type {
	case "pgvector":
		p := cfg.Store.Pgvector
		url := os.Getenv(p.URLEnv)
		if url == "" {
			return nil, &domain.ConfigError{Setting: p.URLEnv}
		}
		return pgvector.Connect(ctx, pgvector.Config{URL: url, Dimension: p.Dimension})
	case "chromem":
		c := cfg.Store.Chromem
		return chromemstore.Open(chromemstore.Config{
			Path:       c.Path,
			Collection: c.Collection,
			Dimension:  c.Dimension,
		})
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.Store.Type)
	}
}
