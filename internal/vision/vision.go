// Package vision extracts a dominant color from a cover image through the
// Google Vision REST API.
package vision

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/bookhaven/catalog/internal/httputil"
)

// Client calls the images:annotate endpoint with an IMAGE_PROPERTIES
// feature request.
type Client struct {
	apiURL string
	apiKey string
	client *httputil.Client
}

// New builds a Vision client. Both the URL and key must be configured;
// callers treat a nil client as "color analysis disabled".
func New(apiURL, apiKey string, client *httputil.Client) *Client {
	return &Client{apiURL: apiURL, apiKey: apiKey, client: client}
}

type annotateRequest struct {
	Requests []annotateEntry `json:"requests"`
}

type annotateEntry struct {
	Image    annotateImage     `json:"image"`
	Features []annotateFeature `json:"features"`
}

type annotateImage struct {
	Source annotateSource `json:"source"`
}

type annotateSource struct {
	ImageURI string `json:"imageUri"`
}

type annotateFeature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults"`
}

// DominantColor returns the most prominent color of the image at imageURL
// as "#rrggbb".
func (c *Client) DominantColor(ctx context.Context, imageURL string) (string, error) {
	endpoint := c.apiURL + "?key=" + url.QueryEscape(c.apiKey)

	resp, err := c.client.Do(ctx, httputil.Request{
		Method:   http.MethodPost,
		URL:      endpoint,
		Upstream: "vision",
		Body: annotateRequest{
			Requests: []annotateEntry{{
				Image:    annotateImage{Source: annotateSource{ImageURI: imageURL}},
				Features: []annotateFeature{{Type: "IMAGE_PROPERTIES", MaxResults: 1}},
			}},
		},
	})
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", fmt.Errorf("vision request failed: status %d", resp.StatusCode)
	}

	color := gjson.GetBytes(resp.Body,
		"responses.0.imagePropertiesAnnotation.dominantColors.colors.0.color")
	if !color.Exists() {
		return "", fmt.Errorf("vision response has no dominant color")
	}

	// Channel values are 0-255 floats; absent channels read as 0.
	r := uint8(color.Get("red").Float())
	g := uint8(color.Get("green").Float())
	b := uint8(color.Get("blue").Float())
	return fmt.Sprintf("#%02x%02x%02x", r, g, b), nil
}
