package store

import (
	"strconv"
	"strings"

	"github.com/jonathan/jobfunnel/internal/types"
)

// parseBool reads IS_REMOTE style flags: true/1/yes are true, false/0/no are
// false (case-insensitive), anything else is def.
func parseBool(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return def
	}
}

func formatBool(b bool) string {
	return strconv.FormatBool(b)
}

// text returns a column value, or def when the column is absent from the file.
func (r row) text(col, def string) string {
	if v, ok := r.get(col); ok {
		return v
	}
	return def
}

func masterFromRow(r row) types.MasterRecord {
	isRemote, _ := r.get(types.ColIsRemote)
	return types.MasterRecord{
		Title:      r.text(types.ColTitle, ""),
		Company:    r.text(types.ColCompany, ""),
		Location:   r.text(types.ColLocation, ""),
		SearchCity: r.text(types.ColSearchCity, ""),
		SearchTerm: r.text(types.ColSearchTerm, ""),
		URL:        strings.TrimSpace(r.text(types.ColJobURL, "")),
		Source:     r.text(types.ColSource, ""),
		IsRemote:   parseBool(isRemote, false),
	}
}

func masterToRow(m types.MasterRecord) map[string]string {
	return map[string]string{
		types.ColTitle:      m.Title,
		types.ColCompany:    m.Company,
		types.ColLocation:   m.Location,
		types.ColSearchCity: m.SearchCity,
		types.ColSearchTerm: m.SearchTerm,
		types.ColJobURL:     m.URL,
		types.ColSource:     m.Source,
		types.ColIsRemote:   formatBool(m.IsRemote),
	}
}

func dailyFromRow(r row) types.DailyRecord {
	return types.DailyRecord{
		MasterRecord: masterFromRow(r),
		Description:  r.text(types.ColDescription, ""),
	}
}

func dailyToRow(d types.DailyRecord) map[string]string {
	fields := masterToRow(d.MasterRecord)
	fields[types.ColDescription] = d.Description
	return fields
}

// screenedFromRow maps a result store row. Absent structured, match and visa
// columns read as "N/A"; an absent SALARY_IS_ESTIMATED reads as true.
func screenedFromRow(r row) types.ScreenedRecord {
	na := types.NotAvailable
	estimated, ok := r.get(types.ColSalaryIsEstimated)
	if !ok {
		estimated = "true"
	}
	return types.ScreenedRecord{
		MasterRecord: masterFromRow(r),
		StructuredFields: types.StructuredFields{
			TechnicalStack:      r.text(types.ColTechnicalStack, na),
			KeyResponsibilities: r.text(types.ColKeyResponsibilities, na),
			RequiredExperience:  r.text(types.ColRequiredExperience, na),
			SuccessMetrics:      r.text(types.ColSuccessMetrics, na),
			SalaryRange:         r.text(types.ColSalaryRange, na),
			SalaryIsEstimated:   parseBool(estimated, true),
		},
		MatchFields: types.MatchFields{
			SystemsFit:        r.text(types.ColSystemsFit, na),
			RetrievalInfraFit: r.text(types.ColRetrievalInfraFit, na),
			AlgorithmicMLFit:  r.text(types.ColAlgorithmicMLFit, na),
			OverallMatch:      r.text(types.ColOverallMatch, na),
			MatchReason:       r.text(types.ColMatchReason, na),
		},
		VisaAnalysis: r.text(types.ColVisaAnalysis, na),
	}
}

func screenedToRow(s types.ScreenedRecord) map[string]string {
	fields := masterToRow(s.MasterRecord)
	fields[types.ColTechnicalStack] = s.TechnicalStack
	fields[types.ColKeyResponsibilities] = s.KeyResponsibilities
	fields[types.ColRequiredExperience] = s.RequiredExperience
	fields[types.ColSuccessMetrics] = s.SuccessMetrics
	fields[types.ColSalaryRange] = s.SalaryRange
	fields[types.ColSalaryIsEstimated] = formatBool(s.SalaryIsEstimated)
	fields[types.ColSystemsFit] = s.SystemsFit
	fields[types.ColRetrievalInfraFit] = s.RetrievalInfraFit
	fields[types.ColAlgorithmicMLFit] = s.AlgorithmicMLFit
	fields[types.ColOverallMatch] = s.OverallMatch
	fields[types.ColMatchReason] = s.MatchReason
	fields[types.ColVisaAnalysis] = s.VisaAnalysis
	return fields
}
