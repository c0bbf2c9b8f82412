// Package chatbot maps free-text user messages to a small set of actions.
// Classification is an ordered list of matcher predicates over a tagged
// intent union; the first match wins and later matchers never run.
package chatbot

import (
	"regexp"
	"strings"
)

type Kind string

const (
	KindBookSearch Kind = "book_search"
	KindMyRentals  Kind = "my_rentals"
	KindRentalInfo Kind = "rental_info"
	KindHelp       Kind = "help"
	KindGeneral    Kind = "general"
)

// Intent is the classified action plus the entities extracted from the text.
type Intent struct {
	Kind     Kind   `json:"kind"`
	Title    string `json:"title,omitempty"`
	Author   string `json:"author,omitempty"`
	Category string `json:"category,omitempty"`
}

var (
	reHelp       = regexp.MustCompile(`(?i)\b(help|aide|what can you do|how (do|does|can) )`)
	reMyRentals  = regexp.MustCompile(`(?i)\b(my (rentals?|books?|loans?)|mes locations?|what (have i|did i) (rent(ed)?|borrow(ed)?))\b`)
	reRentalInfo = regexp.MustCompile(`(?i)\b(overdue|due date|return date|when .* (due|return)|late)\b`)
	reSearch     = regexp.MustCompile(`(?i)\b(find|search|looking for|do you have|recommend|book|livre)\b`)

	reQuoted   = regexp.MustCompile(`"([^"]{1,100})"|'([^']{1,100})'`)
	reByAuthor = regexp.MustCompile(`(?i)\bby ([a-zà-ÿ][a-zà-ÿ .'-]{1,60})`)
	reCategory = regexp.MustCompile(`(?i)\b(?:category|genre|in) ([a-zà-ÿ][a-zà-ÿ -]{2,40})`)
)

type matcher struct {
	kind  Kind
	match func(string) bool
}

// Ordered: specific intents first, search last before the general fallback.
var matchers = []matcher{
	{KindHelp, reHelp.MatchString},
	{KindMyRentals, reMyRentals.MatchString},
	{KindRentalInfo, reRentalInfo.MatchString},
	{KindBookSearch, reSearch.MatchString},
}

func Classify(text string) Intent {
	text = strings.TrimSpace(text)
	for _, m := range matchers {
		if m.match(text) {
			it := Intent{Kind: m.kind}
			if m.kind == KindBookSearch {
				it.Title = extractTitle(text)
				it.Author = extractAuthor(text)
				it.Category = extractCategory(text)
			}
			return it
		}
	}
	return Intent{Kind: KindGeneral}
}

func extractTitle(text string) string {
	m := reQuoted.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(m[2])
}

func extractAuthor(text string) string {
	m := reByAuthor.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func extractCategory(text string) string {
	m := reCategory.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
