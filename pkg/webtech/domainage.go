package webtech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// rdapEvent is the subset of an RDAP domain event this package reads.
type rdapEvent struct {
	Action string `json:"eventAction"`
	Date   string `json:"eventDate"`
}

type rdapResponse struct {
	Events []rdapEvent `json:"events"`
}

// DomainAge looks up a domain's registration event via the public RDAP
// bootstrap service and returns its age in whole years. ok is false when
// the registration date could not be determined.
func DomainAge(ctx context.Context, hc *http.Client, websiteURL string) (years int, ok bool) {
	host := hostOf(websiteURL)
	if host == "" {
		return 0, false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://rdap.org/domain/"+host, nil)
	if err != nil {
		return 0, false
	}
	req.Header.Set("Accept", "application/rdap+json")

	resp, err := hc.Do(req)
	if err != nil {
		return 0, false
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return 0, false
	}

	var parsed rdapResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, false
	}

	for _, ev := range parsed.Events {
		if ev.Action != "registration" {
			continue
		}
		t, err := time.Parse(time.RFC3339, ev.Date)
		if err != nil {
			continue
		}
		age := int(time.Since(t).Hours() / 24 / 365)
		if age < 0 {
			age = 0
		}
		return age, true
	}
	return 0, false
}

func hostOf(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
