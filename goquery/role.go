package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/chatvault"
)

// userPrefixes are lowercase text prefixes that mark a user message when no
// selector decides the role.
var userPrefixes = []string{"you said:", "you:", "user:"}

// DetectRole infers who authored a message element. It checks, in order,
// whether the element itself matches a user or assistant selector, whether
// a descendant does, and whether its text starts with a user prefix.
// Anything else is attributed to the assistant.
func DetectRole(sel *goquery.Selection, set chatvault.SelectorSet) chatvault.Role {
	if matchesAny(sel, set.User) {
		return chatvault.RoleUser
	}
	if matchesAny(sel, set.Assistant) {
		return chatvault.RoleAssistant
	}

	if containsAny(sel, set.User) {
		return chatvault.RoleUser
	}
	if containsAny(sel, set.Assistant) {
		return chatvault.RoleAssistant
	}

	text := strings.ToLower(strings.TrimSpace(sel.Text()))
	for _, prefix := range userPrefixes {
		if strings.HasPrefix(text, prefix) {
			return chatvault.RoleUser
		}
	}

	return chatvault.RoleAssistant
}

func matchesAny(sel *goquery.Selection, selectors []string) bool {
	for _, s := range selectors {
		if sel.Is(s) {
			return true
		}
	}
	return false
}

func containsAny(sel *goquery.Selection, selectors []string) bool {
	for _, s := range selectors {
		if sel.Find(s).Length() > 0 {
			return true
		}
	}
	return false
}
