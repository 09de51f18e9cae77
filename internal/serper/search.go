package serper

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const (
	SearchPath = "/search"
	// organicKey holds the list of regular web results in a Serper response.
	organicKey = "organic"
)

// SearchParams is the request body of a Serper search.
type SearchParams struct {
	Q string `json:"q" mapstructure:"-"`
	// Country and language hints, e.g. "us" and "en".
	GL  string `json:"gl,omitempty" mapstructure:"gl"`
	HL  string `json:"hl,omitempty" mapstructure:"hl"`
	Num int    `json:"num,omitempty" mapstructure:"num"`
}

type SearchResult struct {
	Organic []OrganicResult
	// hasOrganic is false when the response did not carry the organic list at all.
	hasOrganic bool
}

type OrganicResult struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
	Position int    `json:"position"`
}

// NewSearchResult builds a result that carries the given organic items.
func NewSearchResult(items ...OrganicResult) *SearchResult {
	if items == nil {
		items = []OrganicResult{}
	}
	return &SearchResult{Organic: items, hasOrganic: true}
}

// HasOrganic reports whether the response carried the organic result list.
func (r *SearchResult) HasOrganic() bool {
	return r != nil && r.hasOrganic
}

func (r *SearchResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Organic)
}

func (c *Client) search(ctx context.Context, params *SearchParams) (*SearchResult, error) {
	apiURLSearch := fmt.Sprintf("%s%s", c.APIURL, SearchPath)

	var raw map[string]any
	if err := c.postJSON(ctx, apiURLSearch, params, &raw); err != nil {
		return nil, err
	}

	items, ok := raw[organicKey]
	if !ok {
		c.logger.Debug("response has no organic results", zap.String("query", params.Q))
		return &SearchResult{}, nil
	}

	var organic []OrganicResult
	cfg := &mapstructure.DecoderConfig{
		Metadata:         nil,
		Result:           &organic,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decode organic results: %w", err)
	}

	c.logger.Debug("got response from serper", zap.String("query", params.Q), zap.Int("results", len(organic)))

	return &SearchResult{Organic: organic, hasOrganic: true}, nil
}
