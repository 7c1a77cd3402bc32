// Package search provides the web search collaborator used by the researcher
// worker and the action that exposes it.
package search

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/PaulCrtr/cart-ai/logging"
	"github.com/PaulCrtr/cart-ai/tool"
)

// ToolName is the action name of the search tool.
const ToolName = "tavily_search_results_json"

// DefaultMaxResults bounds a single search.
const DefaultMaxResults = 5

// Result is one search hit.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Searcher runs web searches.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}

// SearcherFunc adapts a function to Searcher.
type SearcherFunc func(ctx context.Context, query string, maxResults int) ([]Result, error)

// Search implements Searcher.
func (f SearcherFunc) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	return f(ctx, query, maxResults)
}

type searchArgs struct {
	Query string `json:"query" description:"Search query"`
}

// NewTool exposes s as an action returning the hits as a JSON array.
// maxResults <= 0 uses DefaultMaxResults.
func NewTool(s Searcher, maxResults int, logger logging.Logger) (tool.Tool, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	logger = logging.OrNoOp(logger)

	return tool.NewFunctionToolFromStruct(ToolName,
		"A search engine optimized for comprehensive, accurate, and trusted results. "+
			"Useful for when you need to find a product on the web. Input should be a search query.",
		searchArgs{},
		func(ctx context.Context, args map[string]any) (string, error) {
			query, _ := args["query"].(string)
			if query == "" {
				return "", tool.NewToolError(ToolName, "query must not be empty", tool.CodeBadInput)
			}

			results, err := s.Search(ctx, query, maxResults)
			if err != nil {
				return "", fmt.Errorf("search %q: %w", query, err)
			}
			if len(results) > maxResults {
				results = results[:maxResults]
			}
			logger.Info("search.completed", "query", query, "results", len(results))

			if results == nil {
				results = []Result{}
			}
			out, err := json.Marshal(results)
			if err != nil {
				return "", err
			}
			return string(out), nil
		})
}
