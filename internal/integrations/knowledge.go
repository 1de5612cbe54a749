package integrations

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	errx "github.com/shopmate-ai/server/internal/core/error"
	logx "github.com/shopmate-ai/server/pkg/logger"
)

// RetrievalServiceClient queries the knowledge-retrieval service (the
// scrape/embed/similarity pipeline lives behind that service, not here).
type RetrievalServiceClient struct {
	http *resty.Client
}

// NewRetrievalServiceClient builds a retriever talking to the given base URL.
func NewRetrievalServiceClient(baseURL string, timeout time.Duration) *RetrievalServiceClient {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &RetrievalServiceClient{http: rc}
}

// Search returns the top-K excerpts above the similarity threshold for the
// query. An empty slice is a valid outcome.
func (c *RetrievalServiceClient) Search(ctx context.Context, storeID, query string, topK int, threshold float64) ([]KBResult, error) {
	var out struct {
		Results []KBResult `json:"results"`
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"store_id":  storeID,
			"query":     query,
			"top_k":     topK,
			"threshold": threshold,
		}).
		SetResult(&out).
		Post("/search")
	if e := errx.WrapHTTP(err, statusOf(resp), "knowledge"); e != nil {
		logx.Error().Err(e).Str("store_id", storeID).Msg("knowledge search failed")
		return nil, e
	}

	return out.Results, nil
}

var _ KnowledgeRetriever = (*RetrievalServiceClient)(nil)
