package screening

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/jobfunnel/internal/llm"
	"github.com/jonathan/jobfunnel/internal/schemas"
	"github.com/jonathan/jobfunnel/internal/types"
	schemafiles "github.com/jonathan/jobfunnel/schemas"
)

// Separators used when list fields are flattened into a single cell.
const (
	StackSeparator = ", "
	ListSeparator  = " | "
)

// Placeholders for metadata the manual extraction could not recover.
const (
	ExtractionFailedTitle   = "Extraction Failed"
	ExtractionFailedCompany = "Error"
	UnknownRole             = "Unknown Role"
	UnknownCompany          = "Unknown Company"
	UnknownLocation         = "Unknown"
)

// ExtractResult carries the structured fields of a description. On failure
// Fields holds the defaults.
type ExtractResult struct {
	Fields  types.StructuredFields
	Failure *CallFailure
}

// ParseExtraction reads the structured extraction response. The technical stack
// is joined with ", " and responsibilities with " | ".
func ParseExtraction(text string) ExtractResult {
	data, err := decodeObject(schemafiles.Extraction, text)
	if err != nil {
		return ExtractResult{Fields: types.DefaultStructuredFields(), Failure: parseFailure(err)}
	}
	return ExtractResult{Fields: structuredFrom(data, StackSeparator, ListSeparator)}
}

// ManualExtraction is the metadata and structured fields recovered from the raw
// text of a posting.
type ManualExtraction struct {
	Title       string
	Company     string
	Location    string
	IsRemote    bool
	URL         string
	Description string
	Fields      types.StructuredFields
	Failure     *CallFailure
}

// ParseManualExtraction reads the combined metadata and structured extraction
// response. List values are joined with " | ". When the response cannot be used
// the title and company mark the failure and the raw text becomes the description.
func ParseManualExtraction(text, rawText string) ManualExtraction {
	data, err := decodeObject(schemafiles.ManualExtraction, text)
	if err != nil {
		return failedManualExtraction(rawText, parseFailure(err))
	}

	isRemote, _ := data["is_remote"].(bool)
	return ManualExtraction{
		Title:       stringOr(data, "job_title", UnknownRole),
		Company:     stringOr(data, "company", UnknownCompany),
		Location:    stringOr(data, "location", UnknownLocation),
		IsRemote:    isRemote,
		URL:         strings.TrimSpace(stringOr(data, "job_url", "")),
		Description: stringOr(data, "description", rawText),
		Fields:      structuredFrom(data, ListSeparator, ListSeparator),
	}
}

func failedManualExtraction(rawText string, failure *CallFailure) ManualExtraction {
	return ManualExtraction{
		Title:       ExtractionFailedTitle,
		Company:     ExtractionFailedCompany,
		Location:    UnknownLocation,
		Description: rawText,
		Fields:      types.DefaultStructuredFields(),
		Failure:     failure,
	}
}

func decodeObject(schema, text string) (map[string]any, error) {
	content := llm.CleanJSONBlock(text)
	if err := schemas.Validate(schema, content); err != nil {
		return nil, err
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return nil, fmt.Errorf("failed to decode extraction: %w", err)
	}
	return data, nil
}

func structuredFrom(data map[string]any, stackSep, listSep string) types.StructuredFields {
	fields := types.StructuredFields{
		TechnicalStack:      flatten(data["technical_stack"], stackSep),
		KeyResponsibilities: flatten(data["key_responsibilities"], listSep),
		RequiredExperience:  flatten(data["required_experience"], listSep),
		SuccessMetrics:      flatten(data["success_metrics"], listSep),
		SalaryRange:         flatten(data["salary_range"], listSep),
		SalaryIsEstimated:   true,
	}
	if estimated, ok := data["salary_is_estimated"].(bool); ok {
		fields.SalaryIsEstimated = estimated
	}
	return fields
}

// flatten renders a string or list value as one cell; anything else is "N/A".
func flatten(v any, sep string) string {
	switch val := v.(type) {
	case string:
		return val
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, sep)
	default:
		return types.NotAvailable
	}
}

func stringOr(data map[string]any, key, def string) string {
	if s, ok := data[key].(string); ok {
		return s
	}
	return def
}
