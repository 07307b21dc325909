// Package wookiee resolves character image URLs through the Wookieepedia
// MediaWiki API (pageimages original image URL).
package wookiee

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultAPIBase is the Wookieepedia MediaWiki endpoint
const DefaultAPIBase = "https://starwars.fandom.com/api.php"

const userAgent = "CardpressAssetBot/1.0 (local project setup)"

// TitleBySlug maps manifest slugs to Wookieepedia article titles
var TitleBySlug = map[string]string{
	"luke_skywalker":    "Luke Skywalker",
	"leia_organa":       "Leia Organa",
	"darth_vader":       "Darth Vader",
	"anakin_skywalker":  "Anakin Skywalker",
	"obi_wan_kenobi":    "Obi-Wan Kenobi",
	"yoda":              "Yoda",
	"han_solo":          "Han Solo",
	"chewbacca":         "Chewbacca",
	"emperor_palpatine": "Palpatine",
	"rey":               "Rey Skywalker",
	"kylo_ren":          "Kylo Ren",
	"r2_d2":             "R2-D2",
	"c_3po":             "C-3PO",
	"lando_calrissian":  "Lando Calrissian",
	"mandalorian":       "Din Djarin",
	"padme_amidala":     "Padmé Amidala",
}

// OverrideURLBySlug pins URLs that skip the API lookup entirely. Vader's page
// image is Anakin's art, which would give the card set a duplicate face.
var OverrideURLBySlug = map[string]string{
	"darth_vader": "https://upload.wikimedia.org/wikipedia/commons/9/9c/Darth_Vader_-_2007_Disney_Weekends.jpg",
}

// Client queries a MediaWiki pageimages endpoint
type Client struct {
	APIBase   string
	HTTP      *http.Client
	UserAgent string
}

// NewClient returns a Client for the Wookieepedia API
func NewClient() *Client {
	return &Client{
		APIBase:   DefaultAPIBase,
		HTTP:      &http.Client{Timeout: 20 * time.Second},
		UserAgent: userAgent,
	}
}

// Resolve returns the image URL for a manifest slug: explicit override first,
// then the article's page image
func (c *Client) Resolve(slug string) (string, error) {
	if override, ok := OverrideURLBySlug[slug]; ok {
		return override, nil
	}

	title, ok := TitleBySlug[slug]
	if !ok {
		return "", fmt.Errorf("missing title mapping for slug: %s", slug)
	}
	return c.ImageURL(title)
}

// ImageURL looks up the original page image for an article title
func (c *Client) ImageURL(title string) (string, error) {
	params := url.Values{
		"action":    {"query"},
		"format":    {"json"},
		"prop":      {"pageimages"},
		"piprop":    {"original"},
		"titles":    {title},
		"redirects": {"1"},
	}

	req, err := http.NewRequest(http.MethodGet, c.APIBase+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("error building request: %v", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, c.APIBase)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response: %v", err)
	}

	var payload struct {
		Query struct {
			Pages map[string]struct {
				Original struct {
					Source string `json:"source"`
				} `json:"original"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", fmt.Errorf("error parsing response: %v", err)
	}

	for _, page := range payload.Query.Pages {
		if page.Original.Source != "" {
			return CanonicalImageURL(page.Original.Source), nil
		}
	}
	return "", fmt.Errorf("no page image found for title %q", title)
}

// CanonicalImageURL strips the Fandom revision suffix so the direct file path
// keeps its extension
func CanonicalImageURL(imageURL string) string {
	if i := strings.Index(imageURL, "/revision/"); i >= 0 {
		return imageURL[:i]
	}
	return imageURL
}
