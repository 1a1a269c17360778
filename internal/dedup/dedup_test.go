package dedup

import (
	"testing"

	"github.com/jonathan/jobfunnel/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func master(title, company, location, url string) types.MasterRecord {
	return types.MasterRecord{Title: title, Company: company, Location: location, URL: url}
}

func daily(title, company, location, url string) types.DailyRecord {
	return types.DailyRecord{MasterRecord: master(title, company, location, url), Description: "desc"}
}

func titles(records []types.DailyRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Title)
	}
	return out
}

func TestFilter_NoHistory(t *testing.T) {
	batch := []types.DailyRecord{
		daily("A", "Acme", "NYC", "https://x/1"),
		daily("B", "Acme", "NYC", ""),
	}
	history := []types.MasterRecord{master("A", "Acme", "NYC", "https://x/1")}

	// historyExists=false wins even if records are passed
	fresh := Filter(batch, history, false)
	assert.Equal(t, []string{"A", "B"}, titles(fresh))
}

func TestFilter_ByURL(t *testing.T) {
	history := []types.MasterRecord{
		master("Backend Engineer", "Acme", "NYC", "https://x/1"),
	}
	batch := []types.DailyRecord{
		// Same URL, different title: still a duplicate
		daily("Backend Engineer II", "Acme", "NYC", " https://x/1 "),
		// Same triple but new URL: new
		daily("Backend Engineer", "Acme", "NYC", "https://x/2"),
	}

	fresh := Filter(batch, history, true)
	require.Len(t, fresh, 1)
	assert.Equal(t, "https://x/2", fresh[0].URL)
}

func TestFilter_FallbackTriple(t *testing.T) {
	history := []types.MasterRecord{
		master("Data Engineer", "Globex", "Remote", ""),
		master("ML Engineer", "Globex", "Austin, TX", "https://x/9"),
	}
	batch := []types.DailyRecord{
		daily(" Data Engineer ", "Globex", "Remote ", ""),
		daily("ML Engineer", "Globex", "Austin, TX", ""),
		daily("Data Engineer", "Globex", "Boston, MA", ""),
	}

	fresh := Filter(batch, history, true)
	assert.Equal(t, []string{"Data Engineer"}, titles(fresh))
	assert.Equal(t, "Boston, MA", fresh[0].Location)
}

func TestFilter_EmptyHistoryFile(t *testing.T) {
	batch := []types.DailyRecord{daily("A", "Acme", "NYC", "https://x/1")}
	assert.Len(t, Filter(batch, nil, true), 1)
}

func TestMerge(t *testing.T) {
	history := []types.MasterRecord{
		master("A", "Acme", "NYC", "https://x/1"),
		master("B", "Acme", "NYC", ""),
	}
	additions := []types.MasterRecord{
		master("A again", "Acme", "NYC", "https://x/1"),
		master("C", "Acme", "NYC", "https://x/3"),
		master("C dup", "Acme", "NYC", "https://x/3"),
		master("B", "Acme", "NYC", ""),
		master("D", "Acme", "NYC", ""),
		master("D", "Acme", "NYC", ""),
	}

	merged := Merge(history, additions)
	require.Len(t, merged, 2)
	assert.Equal(t, "C", merged[0].Title)
	assert.Equal(t, "D", merged[1].Title)
	assert.Empty(t, merged[1].URL)
}

func TestMerge_Idempotent(t *testing.T) {
	history := []types.MasterRecord{master("A", "Acme", "NYC", "https://x/1")}
	additions := []types.MasterRecord{master("B", "Acme", "NYC", "https://x/2")}

	first := Merge(history, additions)
	require.Len(t, first, 1)

	second := Merge(append(history, first...), additions)
	assert.Empty(t, second)
}

func TestIndex_Contains(t *testing.T) {
	idx := NewIndex([]types.MasterRecord{master("A", "Acme", "NYC", "https://x/1")})

	assert.True(t, idx.HasURL(master("", "", "", "https://x/1")))
	assert.False(t, idx.HasURL(master("A", "Acme", "NYC", "")))
	assert.True(t, idx.HasTriple(master("A", "Acme", "NYC", "")))
	assert.True(t, idx.Contains(master("A", "Acme", "NYC", "")))
	assert.False(t, idx.Contains(master("A", "Acme", "NYC", "https://x/other")))
}
