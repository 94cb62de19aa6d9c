// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package sanitize cleans user-supplied text before it is stored in the
// catalog: plain fields lose control characters, rich-text descriptions
// lose anything that could run script in the browser.
package sanitize

import (
	"regexp"
	"strings"
)

// controlChars matches ASCII control characters except tab, newline and
// carriage return.
var controlChars = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)

// Input strips null bytes and control characters and trims surrounding
// whitespace.
// Example: "  Cash\x00 ISA\x07 " → "Cash ISA"
func Input(s string) string {
	s = controlChars.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
