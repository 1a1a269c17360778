package screening

import "strings"

// SeniorTitleKeywords mark a title as senior. Matching is a case-insensitive
// substring test, so "sr " and "vp " carry their trailing space on purpose.
var SeniorTitleKeywords = []string{
	"senior", "sr.", "sr ", "lead", "principal",
	"chief", "director", "head of", "vp ", "vice president",
	"manager",
}

// VisaBlockerPhrases are citizenship, clearance and no-sponsorship requirements.
var VisaBlockerPhrases = []string{
	"us citizen only",
	"u.s. citizen only",
	"us citizenship required",
	"u.s. citizenship required",
	"must be a us citizen",
	"must be a u.s. citizen",
	"citizen of the united states",
	"citizenship is required",
	"green card only",
	"permanent resident only",
	"green card required",
	"cannot sponsor",
	"will not sponsor",
	"no visa sponsorship",
	"not eligible for visa sponsorship",
	"security clearance required",
	"secret clearance required",
	"top secret clearance",
	"ts/sci required",
	"ts clearance required",
	"sci clearance required",
	"dod clearance required",
	"active clearance required",
	"public trust clearance",
	"must obtain security clearance",
	"ability to obtain security clearance required",
	"clearance eligible",
}

// MatchSeniorTitle returns the first senior keyword found in title, or "".
func MatchSeniorTitle(title string) string {
	return firstContained(strings.ToLower(title), SeniorTitleKeywords)
}

// MatchVisaBlocker returns the first blocker phrase found in description, or "".
func MatchVisaBlocker(description string) string {
	return firstContained(strings.ToLower(description), VisaBlockerPhrases)
}

func firstContained(text string, needles []string) string {
	if text == "" {
		return ""
	}
	for _, n := range needles {
		if strings.Contains(text, n) {
			return n
		}
	}
	return ""
}
