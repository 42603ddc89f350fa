// Package social posts public announcements to X (Twitter).
package social

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// DefaultAPIURL is the X API v2 base URL.
const DefaultAPIURL = "https://api.twitter.com"

// Config holds X API credentials.
type Config struct {
	APIURL      string
	AccessToken string // OAuth 2.0 user-context token with tweet.write scope
}

// Poster publishes a post with an optional image link.
type Poster interface {
	Post(ctx context.Context, text, imageURL string) error
}

// Client posts to the X API v2.
type Client struct {
	apiURL string
	http   *http.Client
	log    *zap.Logger
}

// NewClient creates a new Client. Without an access token the client only logs.
func NewClient(cfg Config, log *zap.Logger) *Client {
	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{apiURL: apiURL, log: log.Named("social")}
	if cfg.AccessToken != "" {
		c.http = oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.AccessToken,
			TokenType:   "Bearer",
		}))
	}
	return c
}

// Enabled reports whether credentials are configured.
func (c *Client) Enabled() bool {
	return c.http != nil
}

type createPostRequest struct {
	Text string `json:"text"`
}

type createPostResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// Post creates a post. Missing credentials is not an error: the attempt is logged and skipped.
func (c *Client) Post(ctx context.Context, text, imageURL string) error {
	if !c.Enabled() {
		c.log.Warn("X API credentials are missing, post not sent", zap.String("text", text))
		return nil
	}

	if imageURL != "" {
		text = text + "\n\n" + imageURL
	}
	body, err := json.Marshal(createPostRequest{Text: text})
	if err != nil {
		return fmt.Errorf("failed to marshal post: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/2/tweets", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build post request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("X API request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("X API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var created createPostResponse
	if err := json.Unmarshal(payload, &created); err != nil {
		return fmt.Errorf("failed to decode X API response: %w", err)
	}
	c.log.Info("Post sent to X", zap.String("post_id", created.Data.ID))
	return nil
}
