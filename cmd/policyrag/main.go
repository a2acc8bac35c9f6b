// Copyright 2026 Civica Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/civica/policyrag"
	"github.com/civica/policyrag/ai"
	"github.com/civica/policyrag/ai/openai"
	"github.com/civica/policyrag/config"
	"github.com/civica/policyrag/core"
	"github.com/civica/policyrag/location"
	"github.com/civica/policyrag/reembed"
	"github.com/civica/policyrag/storage/badger"
)

func main() {
	app := &cli.App{
		Name:  "policyrag",
		Usage: "Hybrid retrieval engine for policy documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "gazetteer",
				Usage: "Path to a JSON gazetteer file for location matching",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "sync",
				Usage:  "Reconcile the indexes with the documents directory",
				Action: syncCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Rebuild everything regardless of registry state",
					},
				},
			},
			{
				Name:      "index",
				Usage:     "Index a single document file",
				ArgsUsage: "<path>",
				Action:    indexCommand,
			},
			{
				Name:      "search",
				Usage:     "Search the knowledge base",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Maximum number of results",
						Value:   0,
					},
					&cli.StringFlag{
						Name:  "location",
						Usage: "Caller location for geographic reranking",
					},
					&cli.BoolFlag{
						Name:  "with-score",
						Usage: "Show distances instead of ranked text only",
					},
				},
			},
			{
				Name:  "boost",
				Usage: "Manage boost rules",
				Subcommands: []*cli.Command{
					{
						Name:      "set",
						Usage:     "Create or update a boost rule",
						ArgsUsage: "<source|category> <key> <weight>",
						Action:    boostSetCommand,
					},
					{
						Name:      "clear",
						Usage:     "Remove a boost rule",
						ArgsUsage: "<source|category> <key>",
						Action:    boostClearCommand,
					},
					{
						Name:   "list",
						Usage:  "Show all boost rules",
						Action: boostListCommand,
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Show knowledge base statistics",
				Action: statsCommand,
			},
			{
				Name:   "reembed",
				Usage:  "Regenerate embeddings for all stored chunks",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to embed in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed embedding calls",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:  "cache",
				Usage: "Manage the result cache",
				Subcommands: []*cli.Command{
					{
						Name:   "clear",
						Usage:  "Drop all cached result sets",
						Action: cacheClearCommand,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// openService builds the full stack from environment configuration and
// the global CLI flags.
func openService(ctx context.Context, c *cli.Context) (*policyrag.Service, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	opts := []policyrag.ServiceOption{}
	if path := c.String("gazetteer"); path != "" {
		gazetteer, gzErr := loadGazetteer(path)
		if gzErr != nil {
			return nil, nil, fmt.Errorf("failed to load gazetteer: %w", gzErr)
		}
		opts = append(opts, policyrag.WithGazetteer(gazetteer))
	}

	svc, err := policyrag.NewService(ctx, cfg, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start service: %w", err)
	}
	return svc, cfg, nil
}

func loadGazetteer(path string) (location.Gazetteer, error) {
	var gazetteer location.Gazetteer
	data, err := os.ReadFile(path)
	if err != nil {
		return gazetteer, err
	}
	if err := json.Unmarshal(data, &gazetteer); err != nil {
		return gazetteer, err
	}
	return gazetteer, nil
}

func syncCommand(c *cli.Context) error {
	ctx := context.Background()

	svc, _, err := openService(ctx, c)
	if err != nil {
		return err
	}
	defer svc.Close()

	result, err := svc.Sync(ctx, c.Bool("force"))
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "New documents:       %d\n", result.NewDocuments)
	fmt.Fprintf(os.Stderr, "Modified documents:  %d\n", result.ModifiedDocuments)
	fmt.Fprintf(os.Stderr, "Unchanged documents: %d\n", result.UnchangedDocuments)
	fmt.Fprintf(os.Stderr, "Chunks added:        %d\n", result.AddedChunks)
	if result.Rebuilt {
		fmt.Fprintln(os.Stderr, "Indexes were fully rebuilt")
	}
	return nil
}

func indexCommand(c *cli.Context) error {
	ctx := context.Background()

	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("document path is required")
	}

	svc, _, err := openService(ctx, c)
	if err != nil {
		return err
	}
	defer svc.Close()

	result, err := svc.IndexFile(ctx, path)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Indexed %s: %d chunks\n", result.Source, result.AddedChunks)
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.Join(c.Args().Slice(), " ")
	if query == "" {
		return fmt.Errorf("query is required")
	}

	svc, cfg, err := openService(ctx, c)
	if err != nil {
		return err
	}
	defer svc.Close()

	topK := c.Int("top-k")
	if topK <= 0 {
		topK = cfg.TopK
	}

	var loc core.Location
	if locString := c.String("location"); locString != "" {
		loc = svc.ParseLocation(locString)
	}

	if c.Bool("with-score") {
		results, searchErr := svc.SearchWithScore(ctx, query, topK, loc)
		if searchErr != nil {
			return fmt.Errorf("search failed: %w", searchErr)
		}
		for i, result := range results {
			boosted := ""
			if result.BoostApplied {
				boosted = " [boosted]"
			}
			fmt.Printf("%d. (distance %.4f)%s %s: %s\n",
				i+1, result.Distance, boosted, result.Chunk.Source, result.Chunk.Text)
		}
		return nil
	}

	chunks, err := svc.Search(ctx, query, topK, loc)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(chunks) == 0 {
		fmt.Fprintln(os.Stderr, "No results")
		return nil
	}
	for i, chunk := range chunks {
		fmt.Printf("%d. %s: %s\n", i+1, chunk.Source, chunk.Text)
	}
	return nil
}

func parseBoostTarget(s string) (core.BoostTarget, error) {
	switch s {
	case "source":
		return core.BoostTargetSource, nil
	case "category":
		return core.BoostTargetCategory, nil
	default:
		return "", fmt.Errorf("invalid boost target %q: must be source or category", s)
	}
}

func boostSetCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.Args().Len() != 3 {
		return fmt.Errorf("usage: boost set <source|category> <key> <weight>")
	}
	target, err := parseBoostTarget(c.Args().Get(0))
	if err != nil {
		return err
	}
	key := c.Args().Get(1)
	weight, err := strconv.ParseFloat(c.Args().Get(2), 64)
	if err != nil {
		return fmt.Errorf("invalid weight %q: %w", c.Args().Get(2), err)
	}

	svc, _, err := openService(ctx, c)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.SetBoost(ctx, target, key, weight); err != nil {
		return fmt.Errorf("failed to set boost: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Boost %s/%s = %g\n", target, key, weight)
	return nil
}

func boostClearCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.Args().Len() != 2 {
		return fmt.Errorf("usage: boost clear <source|category> <key>")
	}
	target, err := parseBoostTarget(c.Args().Get(0))
	if err != nil {
		return err
	}
	key := c.Args().Get(1)

	svc, _, err := openService(ctx, c)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.ClearBoost(ctx, target, key); err != nil {
		return fmt.Errorf("failed to clear boost: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Cleared boost %s/%s\n", target, key)
	return nil
}

func boostListCommand(c *cli.Context) error {
	ctx := context.Background()

	svc, _, err := openService(ctx, c)
	if err != nil {
		return err
	}
	defer svc.Close()

	rules := svc.GetBoosts()
	if len(rules.Source) == 0 && len(rules.Category) == 0 {
		fmt.Fprintln(os.Stderr, "No boost rules")
		return nil
	}
	for key, weight := range rules.Source {
		fmt.Printf("source   %s = %g\n", key, weight)
	}
	for key, weight := range rules.Category {
		fmt.Printf("category %s = %g\n", key, weight)
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	ctx := context.Background()

	svc, _, err := openService(ctx, c)
	if err != nil {
		return err
	}
	defer svc.Close()

	stats, err := svc.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to collect stats: %w", err)
	}

	fmt.Printf("Documents: %d\n", stats.TotalDocuments)
	fmt.Printf("Chunks:    %d\n", stats.TotalChunks)
	fmt.Printf("Index:     %s\n", stats.IndexLocation)
	for _, doc := range stats.Documents {
		fmt.Printf("  %s (%s)\n", doc.Source, doc.FilePath)
	}
	if len(stats.Boosts.Source) > 0 || len(stats.Boosts.Category) > 0 {
		fmt.Println("Boosts:")
		for key, weight := range stats.Boosts.Source {
			fmt.Printf("  source   %s = %g\n", key, weight)
		}
		for key, weight := range stats.Boosts.Category {
			fmt.Printf("  category %s = %g\n", key, weight)
		}
	}
	return nil
}

func cacheClearCommand(c *cli.Context) error {
	ctx := context.Background()

	svc, _, err := openService(ctx, c)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.ClearCache(ctx); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	fmt.Fprintln(os.Stderr, "Cache cleared")
	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}

	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewChunkRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reembedder := reembed.NewReembedder(repo, embedder, reembedConfig, os.Stderr)

	fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reembedder.Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
