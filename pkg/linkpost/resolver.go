// Package linkpost recovers a usable body for link-only submissions by
// extracting the readable content of the linked article.
package linkpost

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/carclinic/pipeline/pkg/fetcher"
	readability "github.com/go-shiori/go-readability"
)

// maxBodyRunes caps the extracted article text so a single link post
// cannot blow up the prompt size downstream.
const maxBodyRunes = 4000

type Resolver struct {
	fetcher *fetcher.Fetcher
}

func NewResolver(f *fetcher.Fetcher) *Resolver {
	return &Resolver{fetcher: f}
}

// Resolve fetches the linked page and returns its readable text
// content, truncated to a bounded length.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (string, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid link URL %q: %w", rawURL, err)
	}

	body, err := r.fetcher.GetBytes(ctx, rawURL)
	if err != nil {
		return "", err
	}

	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract article from %s: %w", rawURL, err)
	}

	text := article.TextContent
	if runes := []rune(text); len(runes) > maxBodyRunes {
		text = string(runes[:maxBodyRunes])
	}
	return text, nil
}
