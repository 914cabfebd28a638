// Package filter implements free-text card search.
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"ampere/internal/catalog"
	"ampere/internal/model"
)

// Scope selects the card fields a term is matched against.
type Scope string

// Supported scopes. A term is written as "scope:value"; unknown prefixes are
// treated as part of the value.
const (
	ScopeAll      Scope = "all"
	ScopeTitle    Scope = "title"
	ScopeLeague   Scope = "league"
	ScopeGenre    Scope = "genre"
	ScopePlatform Scope = "platform"
	ScopeBadge    Scope = "badge"
)

// Term is one parsed search term.
type Term struct {
	Scope  Scope
	Value  string
	Negate bool
	re     *regexp.Regexp
}

// Query is a parsed search query. Every positive term must match and no
// negated term may match.
type Query struct {
	Terms []Term
}

// Empty reports whether the query has no terms.
func (q Query) Empty() bool { return len(q.Terms) == 0 }

// Parse splits raw on whitespace into terms. A leading "-" negates a term and
// a value wrapped in slashes is a case-insensitive regular expression.
func Parse(raw string) (Query, error) {
	var q Query
	for _, field := range strings.Fields(raw) {
		t := Term{Scope: ScopeAll}
		if strings.HasPrefix(field, "-") && len(field) > 1 {
			t.Negate = true
			field = field[1:]
		}
		if scope, value, ok := strings.Cut(field, ":"); ok && value != "" {
			if s := Scope(strings.ToLower(scope)); isScope(s) {
				t.Scope = s
				field = value
			}
		}
		if len(field) > 2 && strings.HasPrefix(field, "/") && strings.HasSuffix(field, "/") {
			re, err := compile(field[1 : len(field)-1])
			if err != nil {
				return Query{}, err
			}
			t.re = re
		}
		t.Value = strings.ToLower(field)
		q.Terms = append(q.Terms, t)
	}
	return q, nil
}

// Match checks whether a card passes the query. An empty query matches every
// card.
func Match(card model.Card, q Query) bool {
	for _, t := range q.Terms {
		if matchesTerm(card, t) == t.Negate {
			return false
		}
	}
	return true
}

func matchesTerm(card model.Card, t Term) bool {
	text := textForScope(card, t.Scope)
	if t.re != nil {
		return t.re.MatchString(text)
	}
	return strings.Contains(text, t.Value)
}

func textForScope(card model.Card, scope Scope) string {
	switch scope {
	case ScopeTitle:
		return strings.ToLower(card.Title)
	case ScopeLeague:
		return strings.ToLower(card.League)
	case ScopeGenre:
		return strings.ToLower(card.Genre)
	case ScopePlatform:
		return strings.ToLower(card.PlatformID + " " + catalog.Label(card))
	case ScopeBadge:
		return strings.ToLower(string(card.Badge))
	default:
		return strings.ToLower(strings.Join([]string{
			card.Title, card.Subtitle, card.League, card.Genre, catalog.Label(card),
		}, " "))
	}
}

func isScope(s Scope) bool {
	switch s {
	case ScopeTitle, ScopeLeague, ScopeGenre, ScopePlatform, ScopeBadge:
		return true
	}
	return false
}

func compile(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex: %w", err)
	}
	return re, nil
}
