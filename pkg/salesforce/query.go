package salesforce

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Lead represents the subset of a Salesforce Lead record the writer needs
// to confirm before attempting an update.
type Lead struct {
	ID        string `json:"Id" salesforce:"Id"`
	Company   string `json:"Company" salesforce:"Company"`
	Website   string `json:"Website" salesforce:"Website"`
	IsConverted bool `json:"IsConverted" salesforce:"IsConverted"`
}

// leadFields are the SOQL fields selected when looking up a Lead.
var leadFields = []string{"Id", "Company", "Website", "IsConverted"}

// FindLeadByID queries Salesforce for a Lead by its id. Returns nil if no
// Lead is found rather than an error, so callers can distinguish "id not
// found" from a transport failure.
func FindLeadByID(ctx context.Context, c Client, id string) (*Lead, error) {
	soql := fmt.Sprintf(
		"SELECT %s FROM Lead WHERE Id = '%s' LIMIT 1",
		strings.Join(leadFields, ", "),
		escapeSoql(id),
	)

	var leads []Lead
	if err := c.Query(ctx, soql, &leads); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("sf: find lead by id %s", id))
	}
	if len(leads) == 0 {
		return nil, nil
	}
	return &leads[0], nil
}

// escapeSoql escapes single quotes in SOQL string literals to prevent injection.
func escapeSoql(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}
