// Package agent is the outbound client for the external dialogue runtime.
// All calls are fire-and-forget; the kiosk never waits on speech.
package agent

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

const requestTimeout = 5 * time.Second

// Client sends speech instructions to the dialogue runtime over HTTP. A
// client with an empty URL silently drops everything, which keeps the kiosk
// usable with no runtime configured.
type Client struct {
	url  string
	http *http.Client
}

// NewClient returns a speech client for the given speak endpoint.
func NewClient(speakURL string) *Client {
	return &Client{
		url:  speakURL,
		http: &http.Client{Timeout: requestTimeout},
	}
}

type speakRequest struct {
	Text         string `json:"text,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

// Say speaks the given text verbatim.
func (c *Client) Say(text string) {
	c.post(speakRequest{Text: text})
}

// Prompt asks the runtime to generate and speak a reply from instructions.
func (c *Client) Prompt(instructions string) {
	c.post(speakRequest{Instructions: instructions})
}

func (c *Client) post(req speakRequest) {
	if c.url == "" {
		return
	}
	body, err := json.Marshal(req)
	if err != nil {
		log.Printf("agent: encoding speak request: %v", err)
		return
	}
	go func() {
		resp, err := c.http.Post(c.url, "application/json", bytes.NewReader(body))
		if err != nil {
			log.Printf("agent: speak request failed: %v", err)
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			log.Printf("agent: speak request returned %s", resp.Status)
		}
	}()
}
