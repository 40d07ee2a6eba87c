// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package tokens is the placeholder substitution engine. Badge text and
// code content may embed {{token}} placeholders from a fixed vocabulary;
// this package resolves them against a registrant and event, with
// illustrative fallbacks so an unbound canvas still previews readably.
//
// Substitute is the single resolution path for both the live preview and
// the batch generator. Divergence between the two contexts is a bug, so
// neither caller gets its own variant.
package tokens

import (
	"regexp"
	"strings"
	"unicode"

	"badgepress/internal/models"
)

// Names lists the recognized tokens. Anything else inside {{...}} passes
// through unchanged.
var Names = []string{
	"name",
	"registration_number",
	"ticket_type",
	"email",
	"phone",
	"institution",
	"designation",
	"addons",
	"event_name",
	"event_date",
}

// fallbacks are the illustrative values shown when no data is bound.
var fallbacks = map[string]string{
	"name":                "John Doe",
	"registration_number": "REG-00001",
	"ticket_type":         "Attendee",
	"email":               "john.doe@example.com",
	"phone":               "+1 555 010 0001",
	"institution":         "Acme Corporation",
	"designation":         "Product Manager",
	"addons":              "Workshop Pass, Lunch",
	"event_name":          "Sample Event",
	"event_date":          "1 Jan 2026 - 3 Jan 2026",
}

// identity tokens fall back to samples even on a real record: a badge
// with a blank name or registration number is worse than a sample one.
var identity = map[string]bool{
	"name":                true,
	"registration_number": true,
}

var tokenPattern = regexp.MustCompile(`\{\{([a-z_]+)\}\}`)

// Context is the data a substitution run draws from. A nil Registrant is
// the preview-without-data state and resolves every token to fallbacks.
type Context struct {
	Registrant *models.Registrant
	Event      *models.Event
	TicketType string
}

// Substitute replaces every recognized {{token}} in content.
//
// Resolution rules: event_name and event_date come from the event when it
// is set and complete, else their fallbacks (a half-set date range falls
// back whole, never prints partially). With no registrant every other
// token takes its fallback. With a registrant, fields resolve to their
// values; empty optional fields become empty strings, empty identity
// fields take the fallback.
func Substitute(content string, ctx Context) string {
	if !strings.Contains(content, "{{") {
		return content
	}
	var values map[string]string
	if ctx.Registrant != nil {
		values = ctx.Registrant.TokenValues(ctx.TicketType)
	}
	return tokenPattern.ReplaceAllStringFunc(content, func(m string) string {
		name := m[2 : len(m)-2]
		fb, known := fallbacks[name]
		if !known {
			return m
		}
		switch name {
		case "event_name":
			if ctx.Event != nil && ctx.Event.Name != "" {
				return ctx.Event.Name
			}
			return fb
		case "event_date":
			if ctx.Event != nil {
				if r := ctx.Event.DateRange(); r != "" {
					return r
				}
			}
			return fb
		}
		if values == nil {
			return fb
		}
		v := values[name]
		if v == "" && identity[name] {
			return fb
		}
		return v
	})
}

// ApplyCase applies a text-case transform after substitution. It is a
// separate step so tokens resolve identically no matter how the text
// element styles them.
func ApplyCase(s string, c models.TextCase) string {
	switch c {
	case models.CaseUppercase:
		return strings.ToUpper(s)
	case models.CaseLowercase:
		return strings.ToLower(s)
	case models.CaseCapitalize:
		return capitalize(s)
	default:
		return s
	}
}

// capitalize upper-cases the first letter of every word and leaves the
// rest of the word as typed, matching the CSS text-transform rule the
// designer exposes.
func capitalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if !prevLetter {
				r = unicode.ToUpper(r)
			}
			prevLetter = true
		} else {
			prevLetter = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
