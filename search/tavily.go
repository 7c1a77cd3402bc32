package search

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/network/standard"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// DefaultTavilyEndpoint is the Tavily search API.
const DefaultTavilyEndpoint = "https://api.tavily.com/search"

// ErrMissingAPIKey is returned by NewTavily without an API key.
var ErrMissingAPIKey = errors.New("tavily api key is required")

// TavilyOptions configures the Tavily client.
type TavilyOptions struct {
	APIKey   string
	Endpoint string
	Timeout  time.Duration
}

// Tavily is a Searcher backed by the Tavily HTTP API.
type Tavily struct {
	client   *client.Client
	apiKey   string
	endpoint string
}

type tavilyRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []Result `json:"results"`
}

// NewTavily creates a Tavily client.
func NewTavily(optFns ...func(o *TavilyOptions)) (*Tavily, error) {
	opts := TavilyOptions{
		Endpoint: DefaultTavilyEndpoint,
		Timeout:  30 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	c, err := client.NewClient(
		client.WithDialer(standard.NewDialer()),
		client.WithTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12}),
		client.WithDialTimeout(opts.Timeout),
		client.WithClientReadTimeout(opts.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("tavily client: %w", err)
	}

	return &Tavily{client: c, apiKey: opts.APIKey, endpoint: opts.Endpoint}, nil
}

// Search implements Searcher.
func (t *Tavily) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	body, err := json.Marshal(tavilyRequest{APIKey: t.apiKey, Query: query, MaxResults: maxResults})
	if err != nil {
		return nil, fmt.Errorf("encode tavily request: %w", err)
	}

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)

	req.SetRequestURI(t.endpoint)
	req.SetMethod(consts.MethodPost)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	req.SetBody(body)

	if err := t.client.Do(ctx, req, resp); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("tavily api error: %w", err)
	}

	if status := resp.StatusCode(); status != consts.StatusOK {
		return nil, fmt.Errorf("tavily api error: status %d: %s", status, truncate(string(resp.Body()), 200))
	}

	var decoded tavilyResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return nil, fmt.Errorf("decode tavily response: %w", err)
	}
	return decoded.Results, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
