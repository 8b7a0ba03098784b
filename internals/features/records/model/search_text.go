package model

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeSearch lowercases, NFC-normalizes and collapses whitespace.
// Queries and the stored search_text go through the same function.
func NormalizeSearch(s string) string {
	s = norm.NFC.String(strings.ToLower(s))
	return strings.Join(strings.Fields(s), " ")
}

type searchParts []string

func (p *searchParts) add(values ...string) {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			*p = append(*p, v)
		}
	}
}

func (p *searchParts) addPtr(values ...*string) {
	for _, v := range values {
		if v != nil {
			p.add(*v)
		}
	}
}

func (p *searchParts) addInt(v *int) {
	if v != nil {
		p.add(strconv.Itoa(*v))
	}
}

func (p searchParts) String() string {
	return NormalizeSearch(strings.Join(p, " "))
}

func strOr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
