// Command askdoc is a document question-answering CLI built on hybrid
// dense + BM25 retrieval.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/askdoc-labs/askdoc-cli/internal/adapters/driven/config/file"
	embeddingcache "github.com/askdoc-labs/askdoc-cli/internal/adapters/driven/embedding/cache"
	embeddingollama "github.com/askdoc-labs/askdoc-cli/internal/adapters/driven/embedding/ollama"
	embeddingopenai "github.com/askdoc-labs/askdoc-cli/internal/adapters/driven/embedding/openai"
	embeddingratelimit "github.com/askdoc-labs/askdoc-cli/internal/adapters/driven/embedding/ratelimit"
	"github.com/askdoc-labs/askdoc-cli/internal/adapters/driven/fetch"
	"github.com/askdoc-labs/askdoc-cli/internal/adapters/driven/fetch/httpfetch"
	"github.com/askdoc-labs/askdoc-cli/internal/adapters/driven/fetch/localfile"
	llmollama "github.com/askdoc-labs/askdoc-cli/internal/adapters/driven/llm/ollama"
	llmopenai "github.com/askdoc-labs/askdoc-cli/internal/adapters/driven/llm/openai"
	"github.com/askdoc-labs/askdoc-cli/internal/adapters/driven/rerank/crossencoder"
	"github.com/askdoc-labs/askdoc-cli/internal/adapters/driven/rerank/passthrough"
	"github.com/askdoc-labs/askdoc-cli/internal/adapters/driven/storage/sqlite"
	"github.com/askdoc-labs/askdoc-cli/internal/adapters/driving/cli"
	"github.com/askdoc-labs/askdoc-cli/internal/chunker"
	"github.com/askdoc-labs/askdoc-cli/internal/core/ports/driven"
	"github.com/askdoc-labs/askdoc-cli/internal/core/services"
	"github.com/askdoc-labs/askdoc-cli/internal/extractors"
	"github.com/askdoc-labs/askdoc-cli/internal/extractors/docx"
	"github.com/askdoc-labs/askdoc-cli/internal/extractors/pdf"
	"github.com/askdoc-labs/askdoc-cli/internal/extractors/plaintext"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := sqlite.NewStore(cfg.GetString("storage.data_dir"))
	if err != nil {
		return fmt.Errorf("open chunk store: %w", err)
	}
	defer store.Close()

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	if rps := cfg.GetFloat("embedding.requests_per_second"); rps > 0 {
		embedder = embeddingratelimit.New(embedder, rps, cfg.GetInt("embedding.burst"))
	}
	embedder, err = embeddingcache.New(embedder, cfg.GetInt("embedding.cache_size"))
	if err != nil {
		return err
	}

	answerer, err := buildAnswerer(cfg)
	if err != nil {
		return err
	}

	var builderOpts []services.BuilderOption
	if batch := cfg.GetInt("embedding.batch_size"); batch > 0 {
		builderOpts = append(builderOpts, services.WithEmbedBatchSize(batch))
	}
	builder := services.NewIndexBuilder(embedder, builderOpts...)
	retriever := services.NewRetriever(store, builder, embedder)

	registry := extractors.NewRegistry(pdf.New(), docx.New(), plaintext.New())
	fetcher := fetch.NewRouter(httpfetch.NewFetcher(httpfetch.Config{}), localfile.NewFetcher())

	split := chunker.New(
		chunker.WithChunkSize(cfg.GetInt("chunking.size")),
		chunker.WithOverlap(cfg.GetInt("chunking.overlap")),
	)

	var qaOpts []services.QAOption
	if k := cfg.GetInt("retrieval.top_k"); k > 0 {
		qaOpts = append(qaOpts, services.WithRetrieveTopK(k))
	}
	if k := cfg.GetInt("rerank.top_k"); k > 0 {
		qaOpts = append(qaOpts, services.WithRerankTopK(k))
	}
	if n := cfg.GetInt("rerank.workers"); n > 0 {
		qaOpts = append(qaOpts, services.WithRerankWorkers(n))
	}
	if s := cfg.GetInt("answer.timeout_seconds"); s > 0 {
		qaOpts = append(qaOpts, services.WithAnswerTimeout(time.Duration(s)*time.Second))
	}

	orchestrator := services.NewQAOrchestrator(
		store, fetcher, registry, split, retriever,
		buildReranker(cfg), answerer, qaOpts...,
	)

	cli.SetVersion(version)
	cli.SetQAService(orchestrator)
	return cli.Execute()
}

// buildEmbedder selects the embedding backend from config. Ollama is the
// default so askdoc works without API keys.
func buildEmbedder(cfg driven.ConfigStore) (driven.EmbeddingService, error) {
	switch provider := cfg.GetString("embedding.provider"); provider {
	case "", "ollama":
		return embeddingollama.NewEmbeddingService(embeddingollama.Config{
			BaseURL:    cfg.GetString("embedding.base_url"),
			Model:      cfg.GetString("embedding.model"),
			Dimensions: cfg.GetInt("embedding.dimensions"),
		}), nil
	case "openai":
		return embeddingopenai.NewEmbeddingService(embeddingopenai.Config{
			APIKey:     apiKey(cfg, "embedding.api_key"),
			BaseURL:    cfg.GetString("embedding.base_url"),
			Model:      cfg.GetString("embedding.model"),
			Dimensions: cfg.GetInt("embedding.dimensions"),
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", provider)
	}
}

// buildAnswerer selects the answer-generation backend from config.
func buildAnswerer(cfg driven.ConfigStore) (driven.Answerer, error) {
	switch provider := cfg.GetString("answer.provider"); provider {
	case "", "ollama":
		return llmollama.NewAnswerer(llmollama.Config{
			BaseURL: cfg.GetString("answer.base_url"),
			Model:   cfg.GetString("answer.model"),
		}), nil
	case "openai":
		return llmopenai.NewAnswerer(llmopenai.Config{
			APIKey:  apiKey(cfg, "answer.api_key"),
			BaseURL: cfg.GetString("answer.base_url"),
			Model:   cfg.GetString("answer.model"),
		})
	default:
		return nil, fmt.Errorf("unknown answer provider %q", provider)
	}
}

// buildReranker uses the cross-encoder service when one is configured
// and keeps fused retrieval order otherwise.
func buildReranker(cfg driven.ConfigStore) driven.Reranker {
	if url := cfg.GetString("rerank.base_url"); url != "" {
		return crossencoder.NewReranker(crossencoder.Config{
			BaseURL: url,
			Model:   cfg.GetString("rerank.model"),
		})
	}
	return passthrough.New()
}

// apiKey reads a key from config, falling back to OPENAI_API_KEY.
func apiKey(cfg driven.ConfigStore, key string) string {
	if v := cfg.GetString(key); v != "" {
		return v
	}
	return os.Getenv("OPENAI_API_KEY")
}
