package domain

// PlayerState is the "now playing" record carried by one notification.
type PlayerState struct {
	Artist  string `json:"artist"`
	Track   string `json:"track"`
	Album   string `json:"album,omitempty"`
	Playing bool   `json:"playing"`
}

// SearchResult is a single lyrics candidate returned by the search provider.
type SearchResult struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// ResultURLs returns the URLs of results, preserving relevance order.
func ResultURLs(results []SearchResult) []string {
	urls := make([]string, 0, len(results))
	for _, r := range results {
		urls = append(urls, r.URL)
	}
	return urls
}
