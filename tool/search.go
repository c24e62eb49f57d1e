package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hupe1980/multimind/internal/util"
)

const duckDuckGoEndpoint = "https://api.duckduckgo.com/"

// searchResponse is the subset of the DuckDuckGo Instant Answer payload the
// tool surfaces to the model.
type searchResponse struct {
	AbstractText  string `json:"AbstractText"`
	AbstractURL   string `json:"AbstractURL"`
	Answer        string `json:"Answer"`
	RelatedTopics []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

// SearchOptions configure the web search tool.
type SearchOptions struct {
	HTTPClient *http.Client
	Endpoint   string
	MaxResults int
}

// NewSearchTool returns the web search capability backed by the DuckDuckGo
// Instant Answer API. No API key is required.
func NewSearchTool(optFns ...func(o *SearchOptions)) Tool {
	opts := SearchOptions{
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		Endpoint:   duckDuckGoEndpoint,
		MaxResults: 5,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return NewFunctionTool(
		"web_search",
		"Search the web and return a short answer plus related results.",
		util.ObjectSchema(map[string]any{
			"query": util.StringProperty("The search query"),
		}, "query"),
		func(ctx context.Context, args map[string]any) (any, error) {
			query, _ := args["query"].(string)
			return runSearch(ctx, opts, query)
		},
	)
}

func runSearch(ctx context.Context, opts SearchOptions, query string) (any, error) {
	endpoint := fmt.Sprintf("%s?q=%s&format=json&no_html=1&skip_disambig=1",
		opts.Endpoint, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}

	resp, err := opts.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search request failed: status %d", resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	results := make([]map[string]string, 0, opts.MaxResults)
	for _, topic := range payload.RelatedTopics {
		if topic.Text == "" {
			continue
		}
		results = append(results, map[string]string{
			"text": topic.Text,
			"url":  topic.FirstURL,
		})
		if len(results) >= opts.MaxResults {
			break
		}
	}

	answer := payload.Answer
	if answer == "" {
		answer = payload.AbstractText
	}

	return map[string]any{
		"query":   query,
		"answer":  answer,
		"source":  payload.AbstractURL,
		"results": results,
	}, nil
}
