package fetch

import (
	"net/url"
	"slices"
	"strings"
)

// Platform is a job board or applicant tracking system recognised by host.
type Platform string

// Recognised platforms.
const (
	PlatformLinkedIn   Platform = "linkedin"
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformAshby      Platform = "ashby"
	PlatformWorkday    Platform = "workday"
	PlatformUnknown    Platform = "unknown"
)

// platformRule says how to find a platform's posting text.
type platformRule struct {
	hosts   []string
	content []string
	noise   []string
}

var platformRules = map[Platform]platformRule{
	PlatformLinkedIn: {
		hosts:   []string{"linkedin.com"},
		content: []string{".show-more-less-html__markup", ".description__text", ".jobs-description"},
		noise:   []string{".show-more-less-html__button", ".top-card-layout__cta-container", ".similar-jobs"},
	},
	PlatformGreenhouse: {
		hosts:   []string{"greenhouse.io"},
		content: []string{".job__description.body", ".job__description", ".job-post-container", "#content"},
		noise:   []string{".application--wrapper", "#usa_self_id_section"},
	},
	PlatformLever: {
		hosts:   []string{"lever.co"},
		content: []string{".posting-page", ".section-wrapper.page-full-width", ".posting-description", ".content"},
		noise:   []string{".posting-apply", ".lever-application-form"},
	},
	PlatformAshby: {
		hosts:   []string{"ashbyhq.com"},
		content: []string{"[class*='descriptionText']", "main"},
	},
	PlatformWorkday: {
		hosts:   []string{"myworkdayjobs.com", "workday.com"},
		content: []string{"[data-automation-id='jobPostingDescription']", "[data-automation-id='jobDescription']", ".job-description"},
		noise:   []string{"[data-automation-id='applyButton']"},
	},
}

// applicationNoise is removed on every platform.
var applicationNoise = []string{
	"form",
	".application-form",
	".apply-button-container",
	".eeo-statement",
	".voluntary-disclosure",
	".social-share",
	".cookie-consent",
}

// DetectPlatform identifies the platform from a posting URL. Subdomains match;
// look-alike hosts such as notlinkedin.com do not.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}
	host := strings.ToLower(parsed.Hostname())
	for platform, rule := range platformRules {
		for _, h := range rule.hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return platform
			}
		}
	}
	return PlatformUnknown
}

// PlatformContentSelectors returns content selectors for a platform, most specific first.
func PlatformContentSelectors(platform Platform) []string {
	if rule, ok := platformRules[platform]; ok {
		return slices.Clone(rule.content)
	}
	return JobPostingSelectors()
}

// PlatformNoiseSelectors returns the elements to strip before extracting text.
func PlatformNoiseSelectors(platform Platform) []string {
	return slices.Concat(applicationNoise, platformRules[platform].noise)
}
