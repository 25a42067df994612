package model

// PlacesFacts holds what the Places source adapter (C3) returned about one
// business. A nil *PlacesFacts means the adapter produced no usable result.
type PlacesFacts struct {
	PlaceID               string   `json:"place_id,omitempty"`
	Name                  string   `json:"name,omitempty"`
	PrimaryCategory       string   `json:"primary_category,omitempty"`
	ReviewCount           int      `json:"review_count"`
	Rating                float64  `json:"rating"`
	Address               string   `json:"address,omitempty"`
	Operational           bool     `json:"operational"`
	Website               string   `json:"website,omitempty"`
	Phone                 string   `json:"phone,omitempty"`
	Locality              string   `json:"locality,omitempty"`
	Types                 []string `json:"types,omitempty"`
	OverwriteAddressHint  bool     `json:"overwrite_address_hint"`
}

// IsStorefront reports whether the Places type tags indicate a retail
// storefront location.
func (p *PlacesFacts) IsStorefront() bool {
	if p == nil {
		return false
	}
	return hasAnyTag(p.Types, storefrontTags)
}

// IsServiceArea reports whether the Places type tags indicate a
// service-area/home-office business rather than a staffed location.
func (p *PlacesFacts) IsServiceArea() bool {
	if p == nil {
		return false
	}
	return hasAnyTag(p.Types, homeOfficeTags)
}

var storefrontTags = []string{
	"store", "retail", "shopping_mall", "shop", "clothing_store",
	"home_goods_store", "furniture_store", "hardware_store",
}

var homeOfficeTags = []string{
	"service_area_business", "home_goods_service", "general_contractor",
}

func hasAnyTag(types []string, candidates []string) bool {
	for _, t := range types {
		for _, c := range candidates {
			if t == c {
				return true
			}
		}
	}
	return false
}

// CompanyFacts holds what the Company-data source adapter (C3) returned
// about one business. A nil *CompanyFacts means the adapter produced no
// usable result.
type CompanyFacts struct {
	FoundedYear     int    `json:"founded_year,omitempty"`
	YearsInBusiness int    `json:"years_in_business"`
	EmployeeCount   int    `json:"employee_count,omitempty"`
	SizeRange       string `json:"size_range,omitempty"`
	Industry        string `json:"industry,omitempty"`
	RevenueRange    string `json:"revenue_range,omitempty"`
	Headquarters    string `json:"headquarters,omitempty"`
}

// BestEmployeeCount returns the best-available employee integer: the exact
// EmployeeCount when present, else the midpoint of SizeRange when it parses,
// else (0, false).
func (c *CompanyFacts) BestEmployeeCount() (int, bool) {
	if c == nil {
		return 0, false
	}
	if c.EmployeeCount > 0 {
		return c.EmployeeCount, true
	}
	return parseSizeRangeMidpoint(c.SizeRange)
}

// WebTechFacts holds what the Web-tech adapter (C3) detected on a business's
// website. Unlike the other two Facts structures this is always present
// (empty-but-well-typed) rather than nil.
type WebTechFacts struct {
	HasMetaPixel         bool     `json:"has_meta_pixel"`
	HasGoogleAnalytics   bool     `json:"has_google_analytics"`
	HasGoogleAdsTag      bool     `json:"has_google_ads_tag"`
	HasTikTokPixel       bool     `json:"has_tiktok_pixel"`
	HasMarketingAutomation bool   `json:"has_marketing_automation"`
	PixelCount           int      `json:"pixel_count"`
	ToolTags             []string `json:"tool_tags,omitempty"`
	DomainAgeYears       int      `json:"domain_age_years,omitempty"`
	DomainAgeKnown       bool     `json:"domain_age_known"`
}

// ComputePixelCount derives PixelCount from the first four tracker booleans,
// per spec (the marketing-automation script does not count toward it).
func (w *WebTechFacts) ComputePixelCount() int {
	count := 0
	if w.HasMetaPixel {
		count++
	}
	if w.HasGoogleAnalytics {
		count++
	}
	if w.HasGoogleAdsTag {
		count++
	}
	if w.HasTikTokPixel {
		count++
	}
	return count
}

// HasAdvertisingTracker reports whether any of the tracker types that count
// as "advertising" for the spending_on_marketing projection are present.
func (w *WebTechFacts) HasAdvertisingTracker() bool {
	if w == nil {
		return false
	}
	return w.HasMetaPixel || w.HasGoogleAdsTag || w.HasTikTokPixel
}
