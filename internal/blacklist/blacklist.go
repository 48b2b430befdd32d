// Package blacklist filters vacancies by configured stop words and ids.
// Word matching is token based: the vacancy text is split into word runs and
// each token is compared case folded, so "senior" flags "Senior Go Developer"
// but not "Seniority Inc".
package blacklist

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// List holds the configured stop words and vacancy ids.
type List struct {
	words map[string]string
	ids   map[string]struct{}
}

// New builds a List. Words are matched case folded, ids verbatim after
// trimming.
func New(words, ids []string) *List {
	list := &List{
		words: make(map[string]string, len(words)),
		ids:   make(map[string]struct{}, len(ids)),
	}
	folder := cases.Fold()
	for _, word := range words {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		list.words[folder.String(word)] = word
	}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		list.ids[id] = struct{}{}
	}
	return list
}

// MatchWord tokenizes text and reports the first configured word found in
// it, in text order.
func (l *List) MatchWord(text string) (string, bool) {
	if l == nil || len(l.words) == 0 {
		return "", false
	}
	folder := cases.Fold()
	for _, token := range tokenize(text) {
		if word, ok := l.words[folder.String(token)]; ok {
			return word, true
		}
	}
	return "", false
}

// MatchID reports whether the vacancy id is blacklisted.
func (l *List) MatchID(id string) bool {
	if l == nil || len(l.ids) == 0 {
		return false
	}
	_, ok := l.ids[strings.TrimSpace(id)]
	return ok
}

func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}
