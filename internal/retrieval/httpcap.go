package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kektech/cardbot/internal/models"
)

// HTTPCapability is a Searcher backed by the agent runtime's retrieval
// endpoint. The runtime owns embedding computation; this client only ships
// the query text and the scope.
type HTTPCapability struct {
	baseURL string
	client  *http.Client
}

// NewHTTPCapability creates a capability client for baseURL.
func NewHTTPCapability(baseURL string, timeout time.Duration) *HTTPCapability {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPCapability{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type searchRequest struct {
	Query  string `json:"query"`
	RoomID string `json:"room_id,omitempty"`
}

type searchResponse struct {
	Hits []models.RawHit `json:"hits"`
}

// Search implements Searcher.
func (c *HTTPCapability) Search(ctx context.Context, query string, scope models.SearchScope) ([]models.RawHit, error) {
	body, err := json.Marshal(searchRequest{Query: query, RoomID: scope.RoomID})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search request: status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return parsed.Hits, nil
}
