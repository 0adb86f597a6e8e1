package weibo

import (
	"net/http"
)

// responseFormatTransport overrides the Content-Type of token responses.
// Weibo serves its JSON token response as text/plain, which oauth2 would
// otherwise parse as a form encoded body.
type responseFormatTransport struct {
	format string
	base   http.RoundTripper
}

func (t *responseFormatTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	switch t.format {
	case ResponseFormatJSON:
		resp.Header.Set("Content-Type", "application/json")
	case ResponseFormatForm:
		resp.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	return resp, nil
}
