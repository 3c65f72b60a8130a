// Package bdpm queries the public French medication reference database
// when a scanned code is missing from the local catalog.
package bdpm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/easypills/easypills/internal/catalog"
)

const defaultBaseURL = "https://api.openmedic.fr"

// Client is a single-attempt lookup client with a bounded timeout so a
// slow network cannot stall the scan flow.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	url := strings.TrimSpace(baseURL)
	if url == "" {
		url = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(url, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type medicationResponse struct {
	Name         string `json:"name"`
	Denomination string `json:"denomination"`
	Dosage       string `json:"dosage"`
}

// Lookup fetches one CIP13. A non-2xx status or unparsable body is an
// error; the caller absorbs it.
func (c *Client) Lookup(ctx context.Context, cip13 string) (*catalog.Match, error) {
	endpoint := fmt.Sprintf("%s/medicaments/%s", c.baseURL, cip13)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build bdpm request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bdpm request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("bdpm lookup %s: status %d", cip13, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read bdpm response: %w", err)
	}
	var payload medicationResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode bdpm response: %w", err)
	}

	name := payload.Name
	if name == "" {
		name = payload.Denomination
	}
	if name == "" {
		name = "Médicament inconnu"
	}
	dosage := payload.Dosage
	if dosage == "" {
		dosage = catalog.ExtractDosageFromName(name)
	}

	return &catalog.Match{
		Name:       name,
		Dosage:     dosage,
		Cip13:      cip13,
		Confidence: 0.95,
		Source:     "barcode",
	}, nil
}
