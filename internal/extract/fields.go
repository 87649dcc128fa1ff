package extract

import (
	"strings"

	"github.com/AlfredBerg/job-crawler/internal/jobs"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	CardSelector  = "div.job_seen_beacon"
	TitleSelector = "h2 a"
)

// field is one optional column: where to find it in a card and how to join its text.
type field struct {
	column   string
	selector string
	sep      string
	assign   func(r *jobs.Record, v *string)
}

var optionalFields = []field{
	{column: "company", selector: ".companyName", assign: func(r *jobs.Record, v *string) { r.Company = v }},
	{column: "location", selector: ".companyLocation", assign: func(r *jobs.Record, v *string) { r.Location = v }},
	{column: "posted_date", selector: ".date", assign: func(r *jobs.Record, v *string) { r.PostedDate = v }},
	{column: "summary", selector: ".job-snippet", sep: " ", assign: func(r *jobs.Record, v *string) { r.Summary = v }},
	{column: "salary", selector: ".salary-snippet", assign: func(r *jobs.Record, v *string) { r.Salary = v }},
}

// lookup returns the text of the first match of selector in card, or nil when nothing matches.
func lookup(card *goquery.Selection, selector, sep string) *string {
	sel := card.Find(selector).First()
	if sel.Length() == 0 {
		return nil
	}
	text := joinText(sel.Get(0), sep)
	return &text
}

// joinText collects every descendant text node of n, trims each one,
// drops the empty ones and joins the rest with sep.
func joinText(n *html.Node, sep string) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if s := strings.TrimSpace(n.Data); s != "" {
				parts = append(parts, s)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, sep)
}
