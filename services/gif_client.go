package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gbonee/hustle-vibes-africa-sub000/utils"
)

// GIFSearcher returns candidate GIF URLs for a search term.
type GIFSearcher interface {
	Search(ctx context.Context, term string, limit int) ([]string, error)
}

// GiphyClient queries a Giphy-compatible search API.
type GiphyClient struct {
	BaseURL string
	APIKey  string
	Rating  string
	Client  *http.Client
}

func NewGiphyClient(baseURL, apiKey string) *GiphyClient {
	return &GiphyClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Rating:  "pg-13",
		Client:  utils.HTTPClient,
	}
}

type giphySearchResponse struct {
	Data []struct {
		Images struct {
			Original struct {
				URL string `json:"url"`
			} `json:"original"`
		} `json:"images"`
	} `json:"data"`
}

func (c *GiphyClient) Search(ctx context.Context, term string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	q := url.Values{}
	q.Set("api_key", c.APIKey)
	q.Set("q", term)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("rating", c.Rating)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v1/gifs/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gif search: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gif search status %d", resp.StatusCode)
	}

	var out giphySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode gif search: %w", err)
	}
	urls := make([]string, 0, len(out.Data))
	for _, d := range out.Data {
		if d.Images.Original.URL != "" {
			urls = append(urls, d.Images.Original.URL)
		}
	}
	return urls, nil
}
