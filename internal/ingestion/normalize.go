// Package ingestion turns source output and pasted text into records the
// rest of the pipeline can store.
package ingestion

import (
	"strings"

	"github.com/jonathan/jobfunnel/internal/types"
)

// Batch is the result of normalizing one fetch run.
type Batch struct {
	Records []types.DailyRecord
	// Dropped counts postings without a URL.
	Dropped int
	// Duplicates counts postings whose URL appeared earlier in the batch.
	Duplicates int
}

// SingleLine coerces a field to one line: invalid UTF-8 is replaced, each run of
// CR/LF becomes one space, and surrounding whitespace is trimmed.
func SingleLine(s string) string {
	s = strings.ToValidUTF8(s, "�")
	s = lineBreakRunRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Normalize maps raw postings to daily records. Postings with an empty URL are
// dropped; a URL seen earlier in the batch is a duplicate and the first
// occurrence wins. Input order is preserved.
func Normalize(raws []types.RawPosting) Batch {
	batch := Batch{Records: make([]types.DailyRecord, 0, len(raws))}
	seen := make(map[string]bool, len(raws))

	for _, raw := range raws {
		record := toDailyRecord(raw)
		if record.URL == "" {
			batch.Dropped++
			continue
		}
		if seen[record.URL] {
			batch.Duplicates++
			continue
		}
		seen[record.URL] = true
		batch.Records = append(batch.Records, record)
	}
	return batch
}

func toDailyRecord(raw types.RawPosting) types.DailyRecord {
	return types.DailyRecord{
		MasterRecord: types.MasterRecord{
			Title:      SingleLine(raw.Title),
			Company:    SingleLine(raw.Company),
			Location:   SingleLine(raw.Location),
			SearchCity: SingleLine(raw.SearchCity),
			SearchTerm: SingleLine(raw.SearchTerm),
			URL:        SingleLine(raw.URL),
			Source:     SingleLine(raw.Source),
			IsRemote:   raw.IsRemote,
		},
		Description: SingleLine(raw.Description),
	}
}
