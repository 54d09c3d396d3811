package paperless

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/username/spendfolio/backend/src/logger"
)

// Document is the payload fetched from the document store: the id and the
// plain OCR text content of one scanned receipt.
type Document struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Client talks to a paperless-style document store over HTTP. The import
// pipeline only uses it to resolve a link URI into document text.
type Client struct {
	baseURL    string
	token      string
	httpClient http.Client
}

func NewClient(baseURL, token string) *Client {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		logger.L.Error("Failed to create cookie jar for paperless client", "error", err)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: http.Client{
			Jar:     jar,
			Timeout: 20 * time.Second,
		},
	}
}

// IsDocumentURI reports whether the link URI points at this document store.
func (c *Client) IsDocumentURI(uri string) bool {
	parsed, err := url.Parse(uri)
	if err != nil {
		return false
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(parsed.Host, base.Host)
}

// FetchDocument resolves a link URI into the document it points at. The
// document id is the last path segment of the URI.
func (c *Client) FetchDocument(ctx context.Context, uri string) (*Document, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid document uri %q: %w", uri, err)
	}

	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	idStr := parts[len(parts)-1]
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return nil, fmt.Errorf("document uri %q does not end in a document id: %w", uri, err)
	}

	return c.GetDocument(ctx, id)
}

// GetDocument fetches one document by id.
func (c *Client) GetDocument(ctx context.Context, id int) (*Document, error) {
	requestURL := fmt.Sprintf("%s/api/documents/%d/", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document %d: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status %d fetching document %d: %s", resp.StatusCode, id, body)
	}

	var document Document
	if err := json.NewDecoder(resp.Body).Decode(&document); err != nil {
		return nil, fmt.Errorf("failed to decode document %d: %w", id, err)
	}
	return &document, nil
}
