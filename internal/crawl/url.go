package crawl

import (
	"net/url"
	"strconv"
)

// Offsets returns the result offset of every page: 0, 10, 20, ...
func Offsets(pages int) []int {
	offsets := make([]int, 0, pages)
	for i := 0; i < pages; i++ {
		offsets = append(offsets, i*ResultsPerPage)
	}
	return offsets
}

// SearchURL builds the result page URL for query starting at offset.
// Spaces in the query are encoded as '+'.
func SearchURL(base, query string, offset int) string {
	return base + "?q=" + url.QueryEscape(query) + "&start=" + strconv.Itoa(offset)
}
