package client

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	markdownHeading  = regexp.MustCompile(`(?m)^\s{0,3}#{1,6}\s+`)
	markdownBullet   = regexp.MustCompile(`(?m)^\s*(?:[-*+]|\d+[.)])\s+`)
	markdownEmphasis = regexp.MustCompile("(\\*\\*|__|`)([^*_`\n]+)(\\*\\*|__|`)")
	blankLines       = regexp.MustCompile(`\n{3,}`)
)

// PlainText flattens generated article text: HTML is reduced to its text
// nodes (block elements become paragraph breaks) and common Markdown markers
// are dropped.
func PlainText(raw string) (string, error) {
	if strings.Contains(raw, "<") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
		if err != nil {
			return "", fmt.Errorf("failed to parse HTML: %w", err)
		}

		doc.Find("script, style").Remove()
		doc.Find("br").ReplaceWithHtml("\n")
		doc.Find("p, div, h1, h2, h3, h4, h5, h6, li").Each(func(i int, s *goquery.Selection) {
			s.AppendHtml("\n\n")
		})

		raw = doc.Text()
	}

	text := markdownHeading.ReplaceAllString(raw, "")
	text = markdownBullet.ReplaceAllString(text, "")
	text = markdownEmphasis.ReplaceAllString(text, "$2")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = blankLines.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text), nil
}
