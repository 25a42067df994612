// Package projector computes the CRM field projection (C6): a pure, total
// mapping from an identity and its enrichment record to the nine
// fixed-shape CRM fields.
package projector

import (
	"fmt"

	"github.com/sells-group/fit-engine/internal/model"
)

const gmbURLTemplate = "https://www.google.com/maps/place/?q=place_id:%s"

// Project derives the CrmProjection from identity and record. It never
// fails: every unresolvable field becomes nil/false rather than an error.
func Project(identity model.LeadIdentity, record *model.EnrichmentRecord) model.CrmProjection {
	places := placesOf(record)
	company := companyOf(record)
	webtech := record.WebTechOrDefault()

	proj := model.CrmProjection{
		HasWebsite:          record.EffectiveWebsite(identity) != "",
		NumberOfEmployees:   employeesPicklist(company),
		NumberOfGBPReviews:  reviewsPicklist(places),
		NumberOfYearsInBusiness: yearsPicklist(company),
		HasGMB:              places != nil && places.PlaceID != "",
		GMBUrl:              gmbURL(places),
		LocationType:        locationTypePicklist(places),
		BusinessLicense:     nil,
		SpendingOnMarketing: spendingOnMarketing(webtech),
	}
	return proj
}

func placesOf(record *model.EnrichmentRecord) *model.PlacesFacts {
	if record == nil {
		return nil
	}
	return record.Places
}

func companyOf(record *model.EnrichmentRecord) *model.CompanyFacts {
	if record == nil {
		return nil
	}
	return record.Company
}

func employeesPicklist(company *model.CompanyFacts) *string {
	count, ok := company.BestEmployeeCount()
	if !ok {
		return nil
	}
	var v string
	switch {
	case count == 0:
		v = model.EmployeesZero
	case count <= 2:
		v = model.Employees1To2
	case count <= 5:
		v = model.Employees3To5
	default:
		v = model.EmployeesOver5
	}
	return &v
}

func reviewsPicklist(places *model.PlacesFacts) *string {
	if places == nil {
		return nil
	}
	var v string
	if places.ReviewCount < 15 {
		v = model.ReviewsUnder15
	} else {
		v = model.ReviewsOver14
	}
	return &v
}

// yearsPicklist implements §4.6's piecewise rule with its stated tie
// resolutions: exactly 3 years falls in "1 - 3 Years", exactly 5 falls in
// "3 - 5 Years".
func yearsPicklist(company *model.CompanyFacts) *string {
	if company == nil || company.FoundedYear == 0 {
		return nil
	}
	years := company.YearsInBusiness
	var v string
	switch {
	case years < 1:
		v = model.YearsUnder1
	case years <= 3:
		v = model.Years1To3
	case years <= 5:
		v = model.Years3To5
	default:
		v = model.Years5To10Plus
	}
	return &v
}

func gmbURL(places *model.PlacesFacts) *string {
	if places == nil || places.PlaceID == "" {
		return nil
	}
	v := fmt.Sprintf(gmbURLTemplate, places.PlaceID)
	return &v
}

func locationTypePicklist(places *model.PlacesFacts) *string {
	if places == nil {
		return nil
	}
	var v string
	switch {
	case places.IsStorefront():
		v = model.LocationRetail
	case places.IsServiceArea():
		v = model.LocationHomeOffice
	default:
		v = model.LocationOffice
	}
	return &v
}

func spendingOnMarketing(webtech *model.WebTechFacts) bool {
	if webtech == nil || !webtech.DomainAgeKnown {
		return false
	}
	if webtech.DomainAgeYears < 2 {
		return false
	}
	return webtech.HasAdvertisingTracker()
}
