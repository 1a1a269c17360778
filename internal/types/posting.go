// Package types provides the record schema shared by the ingestion, screening and storage layers.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Column names used by the master, daily and result stores.
const (
	ColTitle       = "TITLE"
	ColCompany     = "COMPANY"
	ColLocation    = "LOCATION"
	ColSearchCity  = "SEARCH_CITY"
	ColSearchTerm  = "SEARCH_TERM"
	ColJobURL      = "JOB_URL"
	ColSource      = "SOURCE"
	ColIsRemote    = "IS_REMOTE"
	ColDescription = "DESCRIPTION"

	ColTechnicalStack      = "TECHNICAL_STACK"
	ColKeyResponsibilities = "KEY_RESPONSIBILITIES"
	ColRequiredExperience  = "REQUIRED_EXPERIENCE"
	ColSuccessMetrics      = "SUCCESS_METRICS"
	ColSalaryRange         = "SALARY_RANGE"
	ColSalaryIsEstimated   = "SALARY_IS_ESTIMATED"
	ColSystemsFit          = "SYSTEMS_FIT"
	ColRetrievalInfraFit   = "RETRIEVAL_INFRA_FIT"
	ColAlgorithmicMLFit    = "ALGORITHMIC_ML_FIT"
	ColOverallMatch        = "OVERALL_MATCH"
	ColMatchReason         = "MATCH_REASON"
	ColVisaAnalysis        = "VISA_ANALYSIS"
)

// NotAvailable is the placeholder for structured fields the extractor could not fill.
const NotAvailable = "N/A"

// Unknown is the placeholder for match fields missing from the scorer output.
const Unknown = "UNKNOWN"

// MasterColumns is the column order of the master store.
var MasterColumns = []string{
	ColTitle, ColCompany, ColLocation, ColSearchCity, ColSearchTerm, ColJobURL, ColSource, ColIsRemote,
}

// DailyColumns is the column order of a daily batch file.
var DailyColumns = append(append([]string{}, MasterColumns...), ColDescription)

// ResultColumns is the column order of the result store.
var ResultColumns = append(append([]string{}, MasterColumns...),
	ColTechnicalStack, ColKeyResponsibilities, ColRequiredExperience, ColSuccessMetrics,
	ColSalaryRange, ColSalaryIsEstimated, ColSystemsFit, ColRetrievalInfraFit, ColAlgorithmicMLFit,
	ColOverallMatch, ColMatchReason, ColVisaAnalysis,
)

// RawPosting is a posting as returned by a source, before normalization.
type RawPosting struct {
	Title       string
	Company     string
	Location    string
	Description string
	URL         string
	IsRemote    bool
	Source      string
	SearchCity  string
	SearchTerm  string
}

// MasterRecord is one entry of the historical identity ledger.
type MasterRecord struct {
	Title      string `json:"title"`
	Company    string `json:"company"`
	Location   string `json:"location"`
	SearchCity string `json:"search_city"`
	SearchTerm string `json:"search_term"`
	URL        string `json:"job_url"`
	Source     string `json:"source"`
	IsRemote   bool   `json:"is_remote"`
}

// ID returns the stable identity of the record.
func (r MasterRecord) ID() string {
	return JobID(r.Company, r.Title, r.URL)
}

// FallbackKey is the (title, company, location) triple used when a record has no URL.
func (r MasterRecord) FallbackKey() [3]string {
	return [3]string{r.Title, r.Company, r.Location}
}

// DailyRecord is a normalized posting as written to a daily batch file.
type DailyRecord struct {
	MasterRecord
	Description string `json:"description"`
}

// StructuredFields holds the extractor output, flattened for tabular storage.
type StructuredFields struct {
	TechnicalStack      string `json:"technical_stack"`
	KeyResponsibilities string `json:"key_responsibilities"`
	RequiredExperience  string `json:"required_experience"`
	SuccessMetrics      string `json:"success_metrics"`
	SalaryRange         string `json:"salary_range"`
	SalaryIsEstimated   bool   `json:"salary_is_estimated"`
}

// DefaultStructuredFields returns the placeholders used when extraction fails.
func DefaultStructuredFields() StructuredFields {
	return StructuredFields{
		TechnicalStack:      NotAvailable,
		KeyResponsibilities: NotAvailable,
		RequiredExperience:  NotAvailable,
		SuccessMetrics:      NotAvailable,
		SalaryRange:         NotAvailable,
		SalaryIsEstimated:   true,
	}
}

// MatchFields holds the parsed relevance scorer output.
type MatchFields struct {
	SystemsFit        string `json:"systems_fit"`
	RetrievalInfraFit string `json:"retrieval_infra_fit"`
	AlgorithmicMLFit  string `json:"algorithmic_ml_fit"`
	OverallMatch      string `json:"overall_match"`
	MatchReason       string `json:"match_reason"`
}

// ScreenedRecord is a row of the result store: a posting that passed the funnel.
type ScreenedRecord struct {
	MasterRecord
	StructuredFields
	MatchFields
	VisaAnalysis string `json:"visa_analysis"`
}
