// Package render turns stored HTML post bodies into terminal text.
//
// Bodies are converted to markdown with html-to-markdown and then styled by
// glamour, so headings, lists and code blocks survive into the detail view.
package render

import (
	"fmt"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
)

var (
	spaceRun = regexp.MustCompile(`[ \t\r\n]+`)
	blankRun = regexp.MustCompile(`\n{3,}`)
)

// PlainText flattens an HTML fragment to one line of text, used for list
// descriptions.
func PlainText(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return strings.TrimSpace(spaceRun.ReplaceAllString(body, " "))
	}
	doc.Find("script, style, noscript").Remove()
	return strings.TrimSpace(spaceRun.ReplaceAllString(doc.Text(), " "))
}

// ToMarkdown converts an HTML fragment to markdown. Scripts and styles are
// dropped before conversion.
func ToMarkdown(body string) (string, error) {
	if strings.TrimSpace(body) == "" {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	clean, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("serialize html: %w", err)
	}

	md, err := htmltomarkdown.ConvertString(clean)
	if err != nil {
		return "", fmt.Errorf("convert html: %w", err)
	}

	md = strings.TrimSpace(blankRun.ReplaceAllString(md, "\n\n"))
	if md == "" {
		return "", nil
	}
	return md + "\n", nil
}
