package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jaki95/lyrics-relay/internal/domain"
)

// resultLinkSelector matches the result anchors of the lite results page.
const resultLinkSelector = `a.result-link[rel~="nofollow"]`

// ExtractResults returns the result links of a search results page in
// document order, best match first. A page without results yields an empty
// list.
func ExtractResults(body string) ([]domain.SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return []domain.SearchResult{}, fmt.Errorf("failed to parse results page: %w", err)
	}

	results := make([]domain.SearchResult, 0)
	doc.Find(resultLinkSelector).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		results = append(results, domain.SearchResult{
			URL:         href,
			Description: strings.TrimSpace(s.Text()),
		})
	})

	return results, nil
}
