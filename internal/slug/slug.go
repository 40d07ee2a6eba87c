// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug normalizes arbitrary strings into safe lowercase
// identifiers. Batch output uses it for download filenames and zip
// entry names, so the result must survive every filesystem and
// Content-Disposition header unquoted.
package slug

import (
	"regexp"
	"strings"
)

var (
	// disallowed matches anything that isn't a lowercase letter, digit,
	// whitespace, or hyphen.
	disallowed = regexp.MustCompile(`[^a-z0-9\s-]`)
	// whitespace matches runs of any whitespace, tabs and newlines
	// included; all of it becomes a single hyphen.
	whitespace = regexp.MustCompile(`\s+`)
	// hyphenRuns collapses consecutive hyphens into one.
	hyphenRuns = regexp.MustCompile(`-{2,}`)
)

// Generate creates a slug from the given string.
// "GopherConf 2026" → "gopherconf-2026"; "REG-00123" → "reg-00123".
// Strings with no usable characters yield ""; callers pick their own
// fallback name.
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = disallowed.ReplaceAllString(result, "")
	result = whitespace.ReplaceAllString(result, "-")
	result = hyphenRuns.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}
