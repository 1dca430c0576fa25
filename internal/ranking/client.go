// Package ranking reads the leaderboard from the table server.
package ranking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/DoyleJ11/poker-table-client/pkg/types"
)

var ErrBadStatus = errors.New("unexpected ranking status")
var ErrInvalidPayload = errors.New("invalid ranking payload")

// Leaderboards are small; anything larger is not a ranking response.
const maxBody = 1 << 20

type Client struct {
	endpoint string
	http     *http.Client
	header   http.Header
}

// NewClient targets origin+path, e.g. "http://localhost:5000" and "/api/get-ranking".
// A nil httpClient uses http.DefaultClient.
func NewClient(origin, path string, header http.Header, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("ranking origin %q: invalid url", origin)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(path, "/")
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{endpoint: u.String(), http: httpClient, header: header}, nil
}

func (c *Client) Endpoint() string { return c.endpoint }

// Fetch returns the rows in server order.
func (c *Client) Fetch(ctx context.Context) ([]types.RankingEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get ranking: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrBadStatus, resp.Status)
	}

	var rows []types.RankingEntry
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return rows, nil
}
