package fetch

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// DescriptionFormat is how posting descriptions are stored.
type DescriptionFormat string

// Description formats accepted in search.description_format.
const (
	FormatMarkdown DescriptionFormat = "markdown"
	FormatHTML     DescriptionFormat = "html"
	FormatPlain    DescriptionFormat = "plain"
)

// ConvertDescription turns a description HTML fragment into the requested format.
// Markdown conversion falls back to plain text when the converter fails or
// produces nothing.
func ConvertDescription(html string, format DescriptionFormat) (string, error) {
	html = strings.TrimSpace(html)
	if html == "" {
		return "", nil
	}

	switch format {
	case FormatHTML:
		return html, nil
	case FormatPlain:
		return plainText(html)
	case FormatMarkdown, "":
		converted, err := md.NewConverter("", true, nil).ConvertString(html)
		if err != nil || strings.TrimSpace(converted) == "" {
			return plainText(html)
		}
		return strings.TrimSpace(converted), nil
	default:
		return "", fmt.Errorf("unknown description format %q", format)
	}
}

func plainText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	// Keep block boundaries as line breaks
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, li, div, h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	return nonBlankLines(doc.Text()), nil
}
