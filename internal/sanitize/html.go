// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package sanitize

import (
	"strings"

	"golang.org/x/net/html"
)

// droppedElements are removed together with everything inside them.
var droppedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"iframe":   true,
	"object":   true,
	"form":     true,
	"button":   true,
	"select":   true,
	"textarea": true,
	"title":    true,
	"noscript": true,
	"template": true,
	// Foreign content can rewrite attributes at runtime (<animate>, <set>)
	// and the editor never produces it.
	"svg":  true,
	"math": true,
}

// droppedVoidElements have no content; only the tag itself is removed.
var droppedVoidElements = map[string]bool{
	"embed": true,
	"input": true,
	"link":  true,
	"meta":  true,
	"base":  true,
}

// unwrappedElements lose their tags but keep their content.
var unwrappedElements = map[string]bool{
	"html": true,
	"head": true,
	"body": true,
}

// urlAttributes carry URLs and are checked for script schemes.
var urlAttributes = map[string]bool{
	"href":       true,
	"src":        true,
	"action":     true,
	"formaction": true,
	"xlink:href": true,
	"background": true,
	"poster":     true,
	// SVG animation values; only reachable if foreign content slips through.
	"values": true,
	"to":     true,
	"from":   true,
	"by":     true,
}

// inlineImageTypes are the data: URL media types allowed in attributes.
// Vector formats are excluded since SVG can carry script.
var inlineImageTypes = []string{
	"data:image/png",
	"data:image/jpeg",
	"data:image/jpg",
	"data:image/gif",
	"data:image/webp",
}

// HTML removes active content from a rich-text fragment produced by the
// admin editor. Formatting markup (b, i, u, p, ul, ol, li, a, br, span, ...)
// is kept; scripts, embeds, forms, event handler attributes and
// javascript:/vbscript: URLs are removed, and data: URLs other than raster
// images are dropped. SVG and MathML are removed with their content. Comments and doctypes are discarded.
func HTML(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}

	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	skip := 0

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// io.EOF; a strings.Reader produces no other error.
			break
		}
		tok := z.Token()
		name := strings.ToLower(tok.Data)

		switch tt {
		case html.StartTagToken:
			if droppedElements[name] {
				skip++
				continue
			}
			if skip > 0 || droppedVoidElements[name] || unwrappedElements[name] {
				continue
			}
			tok.Attr = cleanAttrs(tok.Attr)
			b.WriteString(tok.String())

		case html.SelfClosingTagToken:
			if skip > 0 || droppedElements[name] || droppedVoidElements[name] || unwrappedElements[name] {
				continue
			}
			tok.Attr = cleanAttrs(tok.Attr)
			b.WriteString(tok.String())

		case html.EndTagToken:
			if droppedElements[name] {
				if skip > 0 {
					skip--
				}
				continue
			}
			if skip > 0 || droppedVoidElements[name] || unwrappedElements[name] {
				continue
			}
			b.WriteString(tok.String())

		case html.TextToken:
			if skip > 0 {
				continue
			}
			b.WriteString(tok.String())

		case html.CommentToken, html.DoctypeToken:
			// discarded
		}
	}

	return strings.TrimSpace(b.String())
}

// cleanAttrs drops event handlers and unsafe URLs.
func cleanAttrs(attrs []html.Attribute) []html.Attribute {
	out := attrs[:0]
	for _, a := range attrs {
		key := strings.ToLower(a.Key)
		if a.Namespace != "" {
			key = strings.ToLower(a.Namespace) + ":" + key
		}
		if strings.HasPrefix(key, "on") {
			continue
		}
		if urlAttributes[key] && !SafeURL(a.Val) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// SafeURL reports whether a URL attribute value is free of script schemes.
// Whitespace and control characters are ignored when checking the scheme,
// since browsers ignore them too ("java\tscript:").
func SafeURL(v string) bool {
	var b strings.Builder
	for _, r := range v {
		if r <= ' ' || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	u := strings.ToLower(b.String())

	switch {
	case strings.HasPrefix(u, "javascript:"), strings.HasPrefix(u, "vbscript:"):
		return false
	case strings.HasPrefix(u, "data:"):
		return isInlineImage(u)
	}
	return true
}

// isInlineImage reports whether a lowercased data: URL names a raster image
// type, followed by parameters or the payload.
func isInlineImage(u string) bool {
	for _, t := range inlineImageTypes {
		rest, ok := strings.CutPrefix(u, t)
		if ok && (strings.HasPrefix(rest, ";") || strings.HasPrefix(rest, ",")) {
			return true
		}
	}
	return false
}
