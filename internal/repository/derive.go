package repository

import (
	"math"
	"strconv"
	"strings"

	"github.com/jonathan/jobfunnel/internal/types"
)

// Scores given to legacy textual ratings.
const (
	strongMatchScore  = 85
	mediumMatchScore  = 70
	defaultMatchScore = 50
	goodFitScore      = 60
	maxExplanation    = 3
)

// DefaultStrongFit is shown when the reason names no strengths.
const DefaultStrongFit = "Strong match based on screening analysis"

// DefaultTag marks a job no fit or keyword could place.
const DefaultTag = "SWE-generalist"

var gapWords = []string{"less", "weak", "not primary", "lack", "limited", "no direct"}

// MatchExplanation splits the scorer reason into strengths and gaps.
type MatchExplanation struct {
	StrongFit []string `json:"strong_fit"`
	Gaps      []string `json:"gaps"`
}

// MatchScore converts an overall rating to 0-100. Numbers are truncated; legacy
// ratings map STRONG MATCH to 85 and MEDIUM MATCH to 70; anything else is 50.
func MatchScore(overall string) int {
	if f, ok := parseScore(overall); ok {
		return int(f)
	}
	upper := strings.ToUpper(overall)
	switch {
	case strings.Contains(upper, "STRONG MATCH"):
		return strongMatchScore
	case strings.Contains(upper, "MEDIUM MATCH"):
		return mediumMatchScore
	default:
		return defaultMatchScore
	}
}

func parseScore(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// isGoodFit is true for scores of at least 60 and for the HIGH and MEDIUM labels.
func isGoodFit(v string) bool {
	if f, ok := parseScore(v); ok {
		return f >= goodFitScore
	}
	upper := strings.ToUpper(v)
	return upper == "HIGH" || upper == "MEDIUM"
}

// Explain builds the match explanation from the scorer fields.
func Explain(m types.MatchFields) MatchExplanation {
	var strong, gaps []string

	reason := strings.ReplaceAll(m.MatchReason, "|", "\n")
	for _, line := range strings.Split(reason, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "- |"))
		if line == "" {
			continue
		}
		if containsAny(strings.ToLower(line), gapWords) {
			gaps = append(gaps, line)
		} else {
			strong = append(strong, line)
		}
	}

	if isGoodFit(m.SystemsFit) {
		strong = append(strong, "Systems fit: "+m.SystemsFit)
	}
	if isGoodFit(m.RetrievalInfraFit) {
		strong = append(strong, "Retrieval/Infra fit: "+m.RetrievalInfraFit)
	}
	if isGoodFit(m.AlgorithmicMLFit) {
		strong = append(strong, "Algorithmic/ML fit: "+m.AlgorithmicMLFit)
	}

	if len(strong) == 0 {
		strong = []string{DefaultStrongFit}
	}
	if gaps == nil {
		gaps = []string{}
	}
	return MatchExplanation{StrongFit: limit(strong), Gaps: limit(gaps)}
}

// Tags derives topic tags from the fit scores, falling back to keywords in
// the stack and responsibilities.
func Tags(m types.MatchFields, s types.StructuredFields) []string {
	var tags []string
	if isGoodFit(m.SystemsFit) {
		tags = append(tags, "backend")
	}
	if isGoodFit(m.RetrievalInfraFit) {
		tags = append(tags, "retrieval", "infra")
	}
	if isGoodFit(m.AlgorithmicMLFit) {
		tags = append(tags, "ML")
	}

	if len(tags) == 0 {
		text := strings.ToLower(s.TechnicalStack + " " + s.KeyResponsibilities)
		for _, rule := range tagKeywords {
			if containsAny(text, rule.keywords) {
				tags = append(tags, rule.tag)
			}
		}
	}

	if len(tags) == 0 {
		return []string{DefaultTag}
	}
	return dedupe(tags)
}

var tagKeywords = []struct {
	tag      string
	keywords []string
}{
	{"backend", []string{"backend", "distributed systems", "microservices"}},
	{"ML", []string{"ml", "machine learning", "ai", "deep learning"}},
	{"infra", []string{"infra", "infrastructure", "devops", "kubernetes"}},
	{"retrieval", []string{"retrieval", "search", "ranking", "recommendation"}},
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func limit(items []string) []string {
	if len(items) > maxExplanation {
		return items[:maxExplanation]
	}
	return items
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}
