// Package sanitize provides HTML sanitization for editor-generated content.
// Uses bluemonday to strip dangerous HTML (script tags, event handlers,
// javascript: URLs) while preserving the formatting the news editor emits.
package sanitize

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// policy is the singleton bluemonday policy for sanitizing article HTML.
// Initialized once via sync.Once for thread-safe lazy initialization.
var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// getPolicy returns the shared sanitization policy, initializing it on first call.
func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.UGCPolicy()

		// The news editor uses classes for alignment and embeds images from
		// the media library.
		policy.AllowAttrs("class").Globally()
		policy.AllowAttrs("style").OnElements("span", "p", "div")

		// Rich-text tables for fixture lists inside articles.
		policy.AllowElements("table", "thead", "tbody", "tr", "td", "th")
		policy.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
	})
	return policy
}

// HTML sanitizes editor-generated HTML content by stripping dangerous elements
// (script, iframe, event handlers, javascript: URLs) while preserving safe
// formatting tags.
//
// This MUST be called on all user-provided HTML before storing it in the
// database. The sanitized output is safe for rendering via innerHTML.
func HTML(input string) string {
	if input == "" {
		return ""
	}
	return getPolicy().Sanitize(input)
}
