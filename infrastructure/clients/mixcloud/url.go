package mixcloud

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-querystring/query"
)

const widgetURL = "https://player-widget.mixcloud.com/widget/iframe/"

type widgetParams struct {
	HideCover int    `url:"hide_cover"`
	Light     int    `url:"light,omitempty"`
	Feed      string `url:"feed"`
}

// ExtractCloudcastKey turns a show URL into the API key form "user/slug/".
func ExtractCloudcastKey(showURL string) (string, error) {
	if showURL == "" {
		return "", ErrInvalidShowURL
	}
	parsed, err := url.Parse(showURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidShowURL, err)
	}
	host := strings.ToLower(parsed.Host)
	if host != "mixcloud.com" && host != "www.mixcloud.com" {
		return "", fmt.Errorf("%w: host must be mixcloud.com or www.mixcloud.com, got %q", ErrInvalidShowURL, host)
	}
	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("%w: path must contain user and show slug", ErrInvalidShowURL)
	}
	return fmt.Sprintf("%s/%s/", parts[0], parts[1]), nil
}

// EmbedHTML renders the player widget iframe for a show URL.
func EmbedHTML(showURL string) (string, error) {
	key, err := ExtractCloudcastKey(showURL)
	if err != nil {
		return "", err
	}
	values, err := query.Values(widgetParams{HideCover: 1, Feed: "/" + key})
	if err != nil {
		return "", err
	}
	src := widgetURL + "?" + values.Encode()
	return fmt.Sprintf(`<iframe width="100%%" height="120" src="%s" frameborder="0" allow="autoplay"></iframe>`, src), nil
}
