package webtech

import "strings"

// Fingerprints is the boolean presence of each of the five documented
// tracker signatures, plus the ordered list of tool tags that matched.
type Fingerprints struct {
	HasMetaPixel           bool
	HasGoogleAnalytics     bool
	HasGoogleAdsTag        bool
	HasTikTokPixel         bool
	HasMarketingAutomation bool
	ToolTags               []string
}

type signature struct {
	tag     string
	needles []string
}

var signatures = []signature{
	{tag: "meta_pixel", needles: []string{"connect.facebook.net", "fbq(", "fbevents.js"}},
	{tag: "google_analytics", needles: []string{"googletagmanager.com/gtag/js", "google-analytics.com/analytics.js", "gtag('config'"}},
	{tag: "google_ads", needles: []string{"googleadservices.com", "google_conversion_id", "gtag('event', 'conversion'"}},
	{tag: "tiktok_pixel", needles: []string{"analytics.tiktok.com", "ttq.load("}},
	{tag: "marketing_automation", needles: []string{"hs-scripts.com", "hsforms.net", "js.hsforms.net", "marketo.com/munchkin.js"}},
}

// Detect scans the rendered HTML for each documented fingerprint. It is a
// pure string match over the fully-rendered markup, so scripts injected
// only after JS execution are still visible to it.
func Detect(html string) Fingerprints {
	lower := strings.ToLower(html)
	var f Fingerprints
	var tags []string

	if matchesAny(lower, signatures[0].needles) {
		f.HasMetaPixel = true
		tags = append(tags, signatures[0].tag)
	}
	if matchesAny(lower, signatures[1].needles) {
		f.HasGoogleAnalytics = true
		tags = append(tags, signatures[1].tag)
	}
	if matchesAny(lower, signatures[2].needles) {
		f.HasGoogleAdsTag = true
		tags = append(tags, signatures[2].tag)
	}
	if matchesAny(lower, signatures[3].needles) {
		f.HasTikTokPixel = true
		tags = append(tags, signatures[3].tag)
	}
	if matchesAny(lower, signatures[4].needles) {
		f.HasMarketingAutomation = true
		tags = append(tags, signatures[4].tag)
	}

	f.ToolTags = tags
	return f
}

func matchesAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
