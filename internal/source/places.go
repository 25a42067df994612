package source

import (
	"context"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fit-engine/internal/model"
	"github.com/sells-group/fit-engine/internal/resilience"
	"github.com/sells-group/fit-engine/pkg/places"
)

// operationalStatusOK is the businessStatus value the Places source reports
// for a location that is still open.
const operationalStatusOK = "OPERATIONAL"

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// PlacesAdapter satisfies the Places contract over a pkg/places.Client.
type PlacesAdapter struct {
	client   places.Client
	breaker  *resilience.CircuitBreaker
	retryCfg resilience.RetryConfig
}

// NewPlacesAdapter builds the adapter over the given client and circuit
// breaker. Pass resilience.DefaultRetryConfig() for retryCfg unless a
// caller needs to override it.
func NewPlacesAdapter(client places.Client, breaker *resilience.CircuitBreaker, retryCfg resilience.RetryConfig) *PlacesAdapter {
	return &PlacesAdapter{client: client, breaker: breaker, retryCfg: retryCfg}
}

// Enrich queries the Places source by name, city, and state, then selects the
// best candidate by rating and review volume. The phone is not part of the
// query.
func (a *PlacesAdapter) Enrich(ctx context.Context, identity model.LeadIdentity) (*model.PlacesFacts, error) {
	query := buildPlacesQuery(identity)
	if query == "" {
		return nil, nil
	}

	resp, err := withResilience(ctx, a.breaker, a.retryCfg, "places", func(ctx context.Context) (*places.SearchResponse, error) {
		ctx, cancel := context.WithTimeout(ctx, sourceTimeout)
		defer cancel()
		return a.client.SearchText(ctx, query)
	})
	if err != nil {
		return nil, eris.Wrap(err, "places adapter: search")
	}
	if resp == nil || len(resp.Places) == 0 {
		return nil, nil
	}

	best := selectBestCandidate(resp.Places)
	if best == nil {
		return nil, nil
	}

	facts := candidateToFacts(*best)
	facts.OverwriteAddressHint = isHighConfidenceMatch(identity, *best)

	zap.L().Debug("places adapter matched candidate",
		zap.String("place_id", facts.PlaceID),
		zap.Bool("overwrite_address_hint", facts.OverwriteAddressHint),
	)

	return facts, nil
}

func buildPlacesQuery(identity model.LeadIdentity) string {
	if identity.BusinessName == "" {
		return ""
	}
	parts := []string{identity.BusinessName}
	if identity.City != "" {
		parts = append(parts, identity.City)
	}
	if identity.State != "" {
		parts = append(parts, identity.State)
	}
	return strings.Join(parts, " ")
}

// selectBestCandidate picks the candidate with the highest rating-weighted
// review volume as the source-provided confidence signal; a candidate with
// no reviews at all is deprioritized but not excluded.
func selectBestCandidate(candidates []places.Candidate) *places.Candidate {
	var best *places.Candidate
	var bestScore float64
	for i := range candidates {
		c := &candidates[i]
		score := c.Rating * float64(c.UserRatingCount)
		if best == nil || score > bestScore {
			best = c
			bestScore = score
		}
	}
	return best
}

func candidateToFacts(c places.Candidate) *model.PlacesFacts {
	return &model.PlacesFacts{
		PlaceID:         c.ID,
		Name:            c.DisplayName.Text,
		PrimaryCategory: c.PrimaryType,
		ReviewCount:     c.UserRatingCount,
		Rating:          c.Rating,
		Address:         c.FormattedAddress,
		Operational:     c.BusinessStatus == "" || c.BusinessStatus == operationalStatusOK,
		Website:         c.WebsiteURI,
		Phone:           c.InternationalPhoneNumber,
		Locality:        c.FormattedAddress,
		Types:           append([]string{c.PrimaryType}, c.Types...),
	}
}

// isHighConfidenceMatch reports whether both the normalized phone and the
// normalized business name agree between the input identity and candidate,
// per §4.3's overwrite_address_hint rule.
func isHighConfidenceMatch(identity model.LeadIdentity, c places.Candidate) bool {
	if identity.Phone == "" || c.InternationalPhoneNumber == "" {
		return false
	}
	if normalizePhone(identity.Phone) != normalizePhone(c.InternationalPhoneNumber) {
		return false
	}
	return normalizeName(identity.BusinessName) == normalizeName(c.DisplayName.Text)
}

func normalizePhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	s := digits.String()
	if len(s) == 11 && s[0] == '1' {
		s = s[1:]
	}
	return s
}

func normalizeName(name string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "")
}
