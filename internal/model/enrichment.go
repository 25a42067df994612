package model

// EnrichmentRecord aggregates the three independently-optional Facts
// structures gathered for one LeadIdentity. It is owned exclusively by the
// orchestrator for the duration of one request.
type EnrichmentRecord struct {
	Places  *PlacesFacts
	Company *CompanyFacts
	WebTech *WebTechFacts
}

// HasAnyFacts reports whether at least one source produced usable data.
// WebTech is excluded because it is always present (empty-but-typed).
func (r *EnrichmentRecord) HasAnyFacts() bool {
	if r == nil {
		return false
	}
	return r.Places != nil || r.Company != nil
}

// EffectiveWebsite applies §4.4's per-source precedence rule for the
// website field: input identity wins unless Places' OverwriteAddressHint is
// set, in which case Places' website wins. Used by scoring and projection,
// both of which run only after all three adapters have settled.
func (r *EnrichmentRecord) EffectiveWebsite(identity LeadIdentity) string {
	if r != nil && r.Places != nil && r.Places.OverwriteAddressHint && r.Places.Website != "" {
		return r.Places.Website
	}
	if identity.Website != "" {
		return identity.Website
	}
	if r != nil && r.Places != nil {
		return r.Places.Website
	}
	return ""
}

// WebTechOrDefault returns the WebTech facts, or a well-typed empty value if
// the adapter never ran or produced nothing (the field is always present by
// contract, but callers that build a record manually may leave it nil).
func (r *EnrichmentRecord) WebTechOrDefault() *WebTechFacts {
	if r != nil && r.WebTech != nil {
		return r.WebTech
	}
	return &WebTechFacts{}
}
