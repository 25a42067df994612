package projector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fit-engine/internal/model"
)

func TestProject_EmptyRecord_AllFieldsNilOrFalse(t *testing.T) {
	proj := Project(model.LeadIdentity{}, &model.EnrichmentRecord{})

	assert.False(t, proj.HasWebsite)
	assert.Nil(t, proj.NumberOfEmployees)
	assert.Nil(t, proj.NumberOfGBPReviews)
	assert.Nil(t, proj.NumberOfYearsInBusiness)
	assert.False(t, proj.HasGMB)
	assert.Nil(t, proj.GMBUrl)
	assert.Nil(t, proj.LocationType)
	assert.Nil(t, proj.BusinessLicense)
	assert.False(t, proj.SpendingOnMarketing)
}

func TestProject_HasWebsite_FromIdentityOrPlaces(t *testing.T) {
	p1 := Project(model.LeadIdentity{Website: "https://acme.com"}, &model.EnrichmentRecord{})
	assert.True(t, p1.HasWebsite)

	p2 := Project(model.LeadIdentity{}, &model.EnrichmentRecord{Places: &model.PlacesFacts{Website: "https://acme.com"}})
	assert.True(t, p2.HasWebsite)
}

func TestProject_EmployeesPicklist(t *testing.T) {
	cases := []struct {
		count int
		want  string
	}{
		{0, model.EmployeesZero},
		{1, model.Employees1To2},
		{2, model.Employees1To2},
		{3, model.Employees3To5},
		{5, model.Employees3To5},
		{6, model.EmployeesOver5},
		{500, model.EmployeesOver5},
	}
	for _, tc := range cases {
		proj := Project(model.LeadIdentity{}, &model.EnrichmentRecord{
			Company: &model.CompanyFacts{EmployeeCount: tc.count},
		})
		require.NotNil(t, proj.NumberOfEmployees)
		assert.Equalf(t, tc.want, *proj.NumberOfEmployees, "count=%d", tc.count)
	}
}

func TestProject_ReviewsPicklist(t *testing.T) {
	under := Project(model.LeadIdentity{}, &model.EnrichmentRecord{Places: &model.PlacesFacts{ReviewCount: 14}})
	require.NotNil(t, under.NumberOfGBPReviews)
	assert.Equal(t, model.ReviewsUnder15, *under.NumberOfGBPReviews)

	over := Project(model.LeadIdentity{}, &model.EnrichmentRecord{Places: &model.PlacesFacts{ReviewCount: 15}})
	require.NotNil(t, over.NumberOfGBPReviews)
	assert.Equal(t, model.ReviewsOver14, *over.NumberOfGBPReviews)

	missing := Project(model.LeadIdentity{}, &model.EnrichmentRecord{})
	assert.Nil(t, missing.NumberOfGBPReviews)
}

func TestProject_YearsPicklist_TieResolution(t *testing.T) {
	cases := []struct {
		years int
		want  string
	}{
		{0, model.YearsUnder1},
		{1, model.Years1To3},
		{3, model.Years1To3},
		{4, model.Years3To5},
		{5, model.Years3To5},
		{6, model.Years5To10Plus},
	}
	for _, tc := range cases {
		proj := Project(model.LeadIdentity{}, &model.EnrichmentRecord{
			Company: &model.CompanyFacts{FoundedYear: 2020, YearsInBusiness: tc.years},
		})
		require.NotNilf(t, proj.NumberOfYearsInBusiness, "years=%d", tc.years)
		assert.Equalf(t, tc.want, *proj.NumberOfYearsInBusiness, "years=%d", tc.years)
	}
}

func TestProject_YearsPicklist_UnknownFoundedYear_IsNil(t *testing.T) {
	proj := Project(model.LeadIdentity{}, &model.EnrichmentRecord{
		Company: &model.CompanyFacts{YearsInBusiness: 5},
	})
	assert.Nil(t, proj.NumberOfYearsInBusiness)
}

func TestProject_HasGMB_AndURL(t *testing.T) {
	proj := Project(model.LeadIdentity{}, &model.EnrichmentRecord{
		Places: &model.PlacesFacts{PlaceID: "abc123"},
	})
	assert.True(t, proj.HasGMB)
	require.NotNil(t, proj.GMBUrl)
	assert.Contains(t, *proj.GMBUrl, "abc123")
}

func TestProject_LocationType(t *testing.T) {
	retail := Project(model.LeadIdentity{}, &model.EnrichmentRecord{
		Places: &model.PlacesFacts{Types: []string{"retail"}},
	})
	require.NotNil(t, retail.LocationType)
	assert.Equal(t, model.LocationRetail, *retail.LocationType)

	homeOffice := Project(model.LeadIdentity{}, &model.EnrichmentRecord{
		Places: &model.PlacesFacts{Types: []string{"service_area_business"}},
	})
	require.NotNil(t, homeOffice.LocationType)
	assert.Equal(t, model.LocationHomeOffice, *homeOffice.LocationType)

	office := Project(model.LeadIdentity{}, &model.EnrichmentRecord{
		Places: &model.PlacesFacts{Types: []string{"plumber"}},
	})
	require.NotNil(t, office.LocationType)
	assert.Equal(t, model.LocationOffice, *office.LocationType)
}

func TestProject_SpendingOnMarketing(t *testing.T) {
	yes := Project(model.LeadIdentity{}, &model.EnrichmentRecord{
		WebTech: &model.WebTechFacts{DomainAgeKnown: true, DomainAgeYears: 3, HasMetaPixel: true},
	})
	assert.True(t, yes.SpendingOnMarketing)

	youngDomain := Project(model.LeadIdentity{}, &model.EnrichmentRecord{
		WebTech: &model.WebTechFacts{DomainAgeKnown: true, DomainAgeYears: 1, HasMetaPixel: true},
	})
	assert.False(t, youngDomain.SpendingOnMarketing)

	unknownAge := Project(model.LeadIdentity{}, &model.EnrichmentRecord{
		WebTech: &model.WebTechFacts{DomainAgeKnown: false, HasMetaPixel: true},
	})
	assert.False(t, unknownAge.SpendingOnMarketing)

	noTracker := Project(model.LeadIdentity{}, &model.EnrichmentRecord{
		WebTech: &model.WebTechFacts{DomainAgeKnown: true, DomainAgeYears: 5},
	})
	assert.False(t, noTracker.SpendingOnMarketing)
}

func TestProject_BusinessLicenseAlwaysNil(t *testing.T) {
	proj := Project(model.LeadIdentity{}, &model.EnrichmentRecord{
		Company: &model.CompanyFacts{FoundedYear: 2000, YearsInBusiness: 26},
	})
	assert.Nil(t, proj.BusinessLicense)
}
