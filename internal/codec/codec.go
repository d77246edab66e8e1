// Package codec converts block trees to and from HTML and Markdown.
// Both directions work purely on block values: importers emit partial
// blocks for the editor to insert, exporters read snapshots, and
// neither touches engine positions.
//
// The conversions are lossy where the formats are weaker than the
// block model: Markdown has no underline or colors, and only list
// items can express nesting, so children of other block types are
// flattened to the parent's level.
package codec

import (
	"strings"

	"github.com/quillon/masonry/internal/block"
)

// listKindOf reports whether a block type renders as a list item.
func listKindOf(typ string) bool {
	switch typ {
	case "bulletListItem", "numberedListItem", "checkListItem":
		return true
	}
	return false
}

// mergeRun appends text to runs, extending the last run when the
// styles match.
func mergeRun(runs []block.StyledText, text string, st block.Styles) []block.StyledText {
	if text == "" {
		return runs
	}
	if n := len(runs); n > 0 && runs[n-1].Styles == st {
		runs[n-1].Text += text
		return runs
	}
	return append(runs, block.StyledText{Text: text, Styles: st})
}

// mergeInline appends a plain styled run to inline content.
func mergeInline(out []block.InlineContent, text string, st block.Styles) []block.InlineContent {
	if text == "" {
		return out
	}
	if n := len(out); n > 0 {
		if prev, ok := out[n-1].(block.StyledText); ok && prev.Styles == st {
			prev.Text += text
			out[n-1] = prev
			return out
		}
	}
	return append(out, block.StyledText{Text: text, Styles: st})
}

// mergeLink appends a linked run, extending the previous link when the
// href matches.
func mergeLink(out []block.InlineContent, href, text string, st block.Styles) []block.InlineContent {
	if text == "" {
		return out
	}
	if n := len(out); n > 0 {
		if prev, ok := out[n-1].(block.Link); ok && prev.Href == href {
			prev.Content = mergeRun(prev.Content, text, st)
			out[n-1] = prev
			return out
		}
	}
	return append(out, block.Link{Href: href, Content: []block.StyledText{{Text: text, Styles: st}}})
}

// trimLeadingSpace drops leading spaces from the first run, removing it
// entirely when nothing remains.
func trimLeadingSpace(out []block.InlineContent) []block.InlineContent {
	if len(out) > 0 {
		if run, ok := out[0].(block.StyledText); ok {
			run.Text = strings.TrimLeft(run.Text, " ")
			if run.Text == "" {
				return out[1:]
			}
			out[0] = run
		}
	}
	return out
}

// trimTrailingSpace drops trailing spaces from the last run, removing
// it entirely when nothing remains.
func trimTrailingSpace(out []block.InlineContent) []block.InlineContent {
	if n := len(out); n > 0 {
		if run, ok := out[n-1].(block.StyledText); ok {
			run.Text = strings.TrimRight(run.Text, " ")
			if run.Text == "" {
				return out[:n-1]
			}
			out[n-1] = run
		}
	}
	return out
}
