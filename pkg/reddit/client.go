// Package reddit wraps the Reddit JSON API: newest-first listings with
// cursor pagination, per-post comment trees, and one-shot expansion of
// collapsed "load more" nodes.
//
// With REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET in the environment the
// client authenticates with an app-only OAuth token; otherwise it falls
// back to the public JSON endpoints with a custom User-Agent.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	tokenURL     = "https://www.reddit.com/api/v1/access_token"
	oauthBaseURL = "https://oauth.reddit.com"

	defaultUserAgent = "carclinic-pipeline/1.0"

	// One morechildren call resolves at most this many stub IDs.
	moreChildrenCap = 100
)

// Credentials for app-only OAuth. Zero value means unauthenticated.
type Credentials struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
}

// CredentialsFromEnv reads the standard environment variables.
func CredentialsFromEnv() Credentials {
	return Credentials{
		ClientID:     os.Getenv("REDDIT_CLIENT_ID"),
		ClientSecret: os.Getenv("REDDIT_CLIENT_SECRET"),
		UserAgent:    os.Getenv("REDDIT_USER_AGENT"),
	}
}

type Client struct {
	baseURL   string
	userAgent string
	creds     Credentials
	client    *http.Client
	logger    *slog.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewClient(baseURL string, timeout time.Duration, creds Credentials, logger *slog.Logger) *Client {
	userAgent := creds.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		userAgent: userAgent,
		creds:     creds,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

// Listing fetches one page of a community's newest submissions.
// Returns the posts, the cursor for the next page ("" at the end of the
// listing), and any transport error.
func (c *Client) Listing(ctx context.Context, community, after string, limit int) ([]Post, string, error) {
	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", limit))
	if after != "" {
		params.Set("after", after)
	}

	var page listing
	path := fmt.Sprintf("/r/%s/new.json", community)
	if err := c.getJSON(ctx, path, params, &page); err != nil {
		return nil, "", fmt.Errorf("listing r/%s: %w", community, err)
	}

	posts := make([]Post, 0, len(page.Data.Children))
	for _, child := range page.Data.Children {
		if child.Kind != "t3" {
			continue
		}
		var p Post
		if err := json.Unmarshal(child.Data, &p); err != nil {
			c.logger.Warn("skipping malformed submission", "community", community, "error", err)
			continue
		}
		posts = append(posts, p)
	}
	return posts, page.Data.After, nil
}

// CommentTree fetches the top-level comments of a post. Collapsed
// "load more" placeholders are kept as stubs until ResolveMore is
// called on the returned tree.
func (c *Client) CommentTree(ctx context.Context, post Post) (*CommentTree, error) {
	params := url.Values{}
	params.Set("depth", "1")
	params.Set("sort", "top")

	var payload []listing
	path := fmt.Sprintf("/comments/%s.json", post.ID)
	if err := c.getJSON(ctx, path, params, &payload); err != nil {
		return nil, fmt.Errorf("comments for %s: %w", post.ID, err)
	}
	if len(payload) < 2 {
		return nil, fmt.Errorf("comments for %s: unexpected payload shape", post.ID)
	}

	tree := &CommentTree{client: c, linkID: "t3_" + post.ID}
	for _, child := range payload[1].Data.Children {
		switch child.Kind {
		case "t1":
			var cm Comment
			if err := json.Unmarshal(child.Data, &cm); err != nil {
				c.logger.Warn("skipping malformed comment", "post", post.ID, "error", err)
				continue
			}
			tree.comments = append(tree.comments, cm)
		case "more":
			var more moreStub
			if err := json.Unmarshal(child.Data, &more); err != nil {
				continue
			}
			tree.moreIDs = append(tree.moreIDs, more.Children...)
		}
	}
	return tree, nil
}

// moreChildren resolves a batch of collapsed comment IDs.
func (c *Client) moreChildren(ctx context.Context, linkID string, ids []string) ([]Comment, error) {
	if len(ids) > moreChildrenCap {
		ids = ids[:moreChildrenCap]
	}
	params := url.Values{}
	params.Set("api_type", "json")
	params.Set("link_id", linkID)
	params.Set("children", strings.Join(ids, ","))

	var payload moreChildrenResponse
	if err := c.getJSON(ctx, "/api/morechildren.json", params, &payload); err != nil {
		return nil, fmt.Errorf("morechildren for %s: %w", linkID, err)
	}

	comments := make([]Comment, 0, len(payload.JSON.Data.Things))
	for _, t := range payload.JSON.Data.Things {
		if t.Kind != "t1" {
			continue
		}
		var cm Comment
		if err := json.Unmarshal(t.Data, &cm); err != nil {
			continue
		}
		comments = append(comments, cm)
	}
	return comments, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, v any) error {
	base := c.baseURL
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}
	if token != "" {
		base = oauthBaseURL
	}
	params.Set("raw_json", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// accessToken returns a cached app-only token, refreshing it when
// expired. Returns "" without error when no credentials are configured.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	if c.creds.ClientID == "" || c.creds.ClientSecret == "" {
		return "", nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.SetBasicAuth(c.creds.ClientID, c.creds.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request failed with status %d", resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	c.token = tok.AccessToken
	// Refresh one minute early to avoid racing the expiry.
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - time.Minute)
	return c.token, nil
}
