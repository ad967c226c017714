// Package sanitize strips markup from HTML-bearing catalog text fields,
// producing plain text suitable for tracker description forms. The raw
// HTML is kept by callers that want formatting; this package only
// produces the stripped variant.
package sanitize

import (
	"strings"

	"golang.org/x/net/html"
)

// blockTags introduce a line break when closed, so paragraph structure
// survives tag stripping as plain-text line breaks.
var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// skipTags have no user-visible text content at all.
var skipTags = map[string]bool{
	"script": true, "style": true,
}

// HTMLToText strips all markup from the input, decoding entities and
// collapsing runs of whitespace. Block-level tags become newlines. Input
// that contains no markup is returned trimmed but otherwise unchanged.
func HTMLToText(input string) string {
	if input == "" {
		return ""
	}

	tokenizer := html.NewTokenizer(strings.NewReader(input))
	var b strings.Builder
	skipDepth := 0

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return collapse(b.String())
		case html.TextToken:
			if skipDepth == 0 {
				b.Write(tokenizer.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			if skipTags[tag] && tt == html.StartTagToken {
				skipDepth++
			}
			if blockTags[tag] {
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			if skipTags[tag] && skipDepth > 0 {
				skipDepth--
			}
			if blockTags[tag] {
				b.WriteByte('\n')
			}
		}
	}
}

// collapse trims each line, drops empty runs beyond one blank line, and
// squeezes intra-line whitespace to single spaces.
func collapse(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	blank := true
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	// Drop a trailing blank line left by the loop.
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
