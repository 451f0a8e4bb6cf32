package docsearch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/meilisearch/meilisearch-go"
	"github.com/radutopala/meilidocs/internal/config"
)

// Fixed search options: highlight and crop the content field.
const (
	cropLength       = 200
	highlightTag     = "**"
	contentAttribute = "content"
)

// Tool searches a Meilisearch index and formats the hits for an assistant.
type Tool struct {
	config config.Config
	index  meilisearch.IndexManager
	logger *slog.Logger
}

// New creates a Tool for cfg. Each search is a single attempt bounded by cfg.Timeout.
func New(cfg config.Config, logger *slog.Logger) *Tool {
	client := meilisearch.New(cfg.MeilisearchURL,
		meilisearch.WithAPIKey(cfg.MeilisearchAPIKey),
		meilisearch.WithCustomClient(&http.Client{
			Timeout:   cfg.Timeout,
			Transport: nullBodyTransport{base: http.DefaultTransport},
		}),
		meilisearch.WithCustomJsonMarshaler(marshalRequest),
		meilisearch.DisableRetries(),
	)

	return &Tool{
		config: cfg,
		index:  client.Index(cfg.MeilisearchIndex),
		logger: logger,
	}
}

// Config returns the settings the tool was built with.
func (t *Tool) Config() config.Config {
	return t.config
}

// SearchDocs searches the index for query and returns markdown-formatted
// results, or the no-results message. Failures are reported in the returned
// string and never as an error. emit may be nil.
func (t *Tool) SearchDocs(ctx context.Context, query string, emit Emitter) string {
	t.emit(ctx, emit, StatusEvent("Searching indexed docs for: "+query, false))

	results, err := t.Search(ctx, query)
	if err != nil {
		msg := err.Error()
		t.logger.ErrorContext(ctx, "Documentation search failed", "query", query, "index", t.config.MeilisearchIndex, "error", msg)
		t.emit(ctx, emit, StatusEvent(msg, true))
		return msg
	}

	t.emit(ctx, emit, StatusEvent(fmt.Sprintf("Found %d results", len(results)), true))

	return Format(results)
}

// Search runs one search request and decodes the hits in response order.
// Errors are either *TransportError or *UnexpectedError.
func (t *Tool) Search(ctx context.Context, query string) (results []Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			results, err = nil, &UnexpectedError{Err: fmt.Errorf("%v", r)}
		}
	}()

	t.logger.InfoContext(ctx, "Documentation search request", "query", query, "index", t.config.MeilisearchIndex, "limit", t.config.ResultsLimit)

	var nullBody bool
	resp, err := t.index.SearchWithContext(withNullBodyFlag(ctx, &nullBody), query, t.searchRequest(query))
	if err != nil {
		return nil, classify(err)
	}
	if resp == nil || nullBody {
		return nil, &UnexpectedError{Err: errors.New("search response body is null")}
	}

	results = make([]Result, 0, len(resp.Hits))
	for i, hit := range resp.Hits {
		result, err := resultFromHit(hit)
		if err != nil {
			return nil, &UnexpectedError{Err: fmt.Errorf("hit %d: %w", i+1, err)}
		}
		results = append(results, result)
	}

	t.logger.InfoContext(ctx, "Documentation search completed", "query", query, "results_found", len(results))

	return results, nil
}

func (t *Tool) searchRequest(query string) *meilisearch.SearchRequest {
	return &meilisearch.SearchRequest{
		Query:                 query,
		Limit:                 int64(t.config.ResultsLimit),
		AttributesToHighlight: []string{contentAttribute},
		AttributesToCrop:      []string{contentAttribute},
		CropLength:            cropLength,
		HighlightPreTag:       highlightTag,
		HighlightPostTag:      highlightTag,
	}
}
