// Package gravatar derives avatar URLs from email addresses following the
// gravatar convention: md5 of the trimmed, lowercased address.
package gravatar

import (
	"crypto/md5"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

// Client probes gravatar for an existing avatar and falls back to a
// configured default URL on any failure. Lookup never returns an error so
// a gravatar outage can never abort a registration.
type Client struct {
	baseURL    string
	defaultURL string
	httpClient *http.Client
}

// New creates a gravatar client with a bounded request timeout.
func New(defaultURL string) *Client {
	return &Client{
		baseURL:    "https://www.gravatar.com/avatar",
		defaultURL: defaultURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// Lookup returns the gravatar URL for the email when one exists, the
// default URL otherwise.
func (c *Client) Lookup(email string) string {
	hash := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	url := fmt.Sprintf("%s/%x?s=250", c.baseURL, hash)

	// d=404 makes gravatar answer 404 instead of a generated image when the
	// email has no avatar.
	resp, err := c.httpClient.Get(url + "&d=404")
	if err != nil {
		log.Printf("Gravatar lookup failed for %s: %v", email, err)
		return c.defaultURL
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return c.defaultURL
	}
	return url
}
