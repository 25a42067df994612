// Package scorer computes the deterministic fit score (C5) from an
// EnrichmentRecord: a 0-80 "solvency" sum across five components plus a
// 0-10 pixel bonus, clamped to [0,100].
package scorer

import (
	"math"

	"github.com/sells-group/fit-engine/internal/model"
)

// Score computes the fit score and its structured breakdown for one
// EnrichmentRecord. It is pure and total: every input, including the empty
// record, yields a well-defined score of 0 or more.
func Score(identity model.LeadIdentity, record *model.EnrichmentRecord) (int, model.ScoreBreakdown) {
	solvency := model.SolvencyBreakdown{
		Website:         websiteScore(identity, record),
		Reviews:         reviewsScore(record),
		YearsInBusiness: yearsInBusinessScore(record),
		Employees:       employeesScore(record),
		Location:        locationScore(record),
	}
	solvency.Total = solvency.Website + solvency.Reviews + solvency.YearsInBusiness + solvency.Employees + solvency.Location

	pixelCount := record.WebTechOrDefault().ComputePixelCount()
	pixelBonus := model.PixelBonusBreakdown{
		PixelCount: pixelCount,
		Bonus:      pixelBonusFor(pixelCount),
	}

	final := clamp(solvency.Total+pixelBonus.Bonus, 0, 100)

	return final, model.ScoreBreakdown{
		Solvency:   solvency,
		PixelBonus: pixelBonus,
		FinalScore: final,
	}
}

func websiteScore(identity model.LeadIdentity, record *model.EnrichmentRecord) int {
	if record.EffectiveWebsite(identity) != "" {
		return 10
	}
	return 0
}

func reviewsScore(record *model.EnrichmentRecord) int {
	if record == nil || record.Places == nil {
		return 0
	}
	count := record.Places.ReviewCount
	switch {
	case count < 5:
		return 0
	case count <= 14:
		return 10
	case count <= 29:
		return 20
	default:
		return 25
	}
}

func yearsInBusinessScore(record *model.EnrichmentRecord) int {
	if record == nil || record.Company == nil {
		return 0
	}
	years := record.Company.YearsInBusiness
	switch {
	case years < 2:
		return 0
	case years <= 3:
		return 10
	case years <= 7:
		return 15
	default:
		return 20
	}
}

func employeesScore(record *model.EnrichmentRecord) int {
	if record == nil || record.Company == nil {
		return 0
	}
	count, ok := record.Company.BestEmployeeCount()
	if !ok {
		return 0
	}
	switch {
	case count < 3:
		return 0
	case count <= 5:
		return 10
	case count <= 15:
		return 15
	default:
		return 20
	}
}

func locationScore(record *model.EnrichmentRecord) int {
	if record == nil || record.Places == nil {
		return 0
	}
	if record.Places.Operational && record.Places.Address != "" {
		return 5
	}
	return 0
}

func pixelBonusFor(pixelCount int) int {
	switch {
	case pixelCount >= 2:
		return 10
	case pixelCount == 1:
		return 5
	default:
		return 0
	}
}

func clamp(v, lo, hi int) int {
	return int(math.Max(float64(lo), math.Min(float64(hi), float64(v))))
}
