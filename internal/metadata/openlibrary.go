package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/voxreader/voxreader/internal/document"
)

// OpenLibraryClient queries the Open Library search API.
type OpenLibraryClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewOpenLibraryClient creates a client. baseURL defaults to the public
// Open Library endpoint when empty.
func NewOpenLibraryClient(baseURL string) *OpenLibraryClient {
	if baseURL == "" {
		baseURL = "https://openlibrary.org"
	}
	return &OpenLibraryClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type searchResponse struct {
	Docs []struct {
		Title      string   `json:"title"`
		AuthorName []string `json:"author_name"`
		Publisher  []string `json:"publisher"`
		CoverID    int64    `json:"cover_i"`
	} `json:"docs"`
}

// Search returns the best match for title (and author, when known).
func (c *OpenLibraryClient) Search(ctx context.Context, title, author string) (document.Metadata, error) {
	q := url.Values{}
	q.Set("title", title)
	if author != "" {
		q.Set("author", author)
	}
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search.json?"+q.Encode(), nil)
	if err != nil {
		return document.Metadata{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return document.Metadata{}, fmt.Errorf("search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return document.Metadata{}, fmt.Errorf("search: status %d: %s", resp.StatusCode, string(body))
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return document.Metadata{}, fmt.Errorf("decode response: %w", err)
	}
	if len(sr.Docs) == 0 {
		return document.Metadata{}, fmt.Errorf("no match for %q", title)
	}

	doc := sr.Docs[0]
	meta := document.Metadata{Title: doc.Title}
	if len(doc.AuthorName) > 0 {
		meta.Author = doc.AuthorName[0]
	}
	if len(doc.Publisher) > 0 {
		meta.Publisher = doc.Publisher[0]
	}
	if doc.CoverID != 0 {
		meta.CoverURL = fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-M.jpg", doc.CoverID)
	}
	return meta, nil
}
