package codec

import (
	"fmt"
	"html"
	"strings"

	"github.com/quillon/masonry/internal/block"
)

// ExportHTML renders blocks as an HTML fragment. Consecutive list item
// blocks group into one list element; children of list items nest as a
// list inside the item, children of other types follow their parent at
// the same level.
func ExportHTML(blocks []block.Block) string {
	var sb strings.Builder
	exportHTMLBlocks(&sb, blocks)
	return sb.String()
}

func exportHTMLBlocks(sb *strings.Builder, blocks []block.Block) {
	for i := 0; i < len(blocks); {
		b := blocks[i]
		if listKindOf(b.Type) {
			// Collect the run of same-kind list items.
			j := i
			for j < len(blocks) && blocks[j].Type == b.Type {
				j++
			}
			writeList(sb, blocks[i:j])
			i = j
			continue
		}
		writeHTMLBlock(sb, b)
		if len(b.Children) > 0 {
			exportHTMLBlocks(sb, b.Children)
		}
		i++
	}
}

func writeList(sb *strings.Builder, items []block.Block) {
	tag := "ul"
	if items[0].Type == "numberedListItem" {
		tag = "ol"
	}
	sb.WriteString("<" + tag + ">")
	for _, item := range items {
		sb.WriteString("<li>")
		if item.Type == "checkListItem" {
			if item.Props.BoolOr("checked", false) {
				sb.WriteString(`<input type="checkbox" checked>`)
			} else {
				sb.WriteString(`<input type="checkbox">`)
			}
		}
		writeInlineHTML(sb, item.Content)
		if len(item.Children) > 0 {
			exportHTMLBlocks(sb, item.Children)
		}
		sb.WriteString("</li>")
	}
	sb.WriteString("</" + tag + ">")
}

func writeHTMLBlock(sb *strings.Builder, b block.Block) {
	switch b.Type {
	case "heading":
		level := b.Props.IntOr("level", 1)
		if level < 1 {
			level = 1
		}
		if level > 3 {
			level = 3
		}
		fmt.Fprintf(sb, "<h%d>", level)
		writeInlineHTML(sb, b.Content)
		fmt.Fprintf(sb, "</h%d>", level)
	case "quote":
		sb.WriteString("<blockquote>")
		writeInlineHTML(sb, b.Content)
		sb.WriteString("</blockquote>")
	case "codeBlock":
		lang := b.Props.StringOr("language", "")
		if lang != "" {
			fmt.Fprintf(sb, `<pre><code class="language-%s">`, html.EscapeString(lang))
		} else {
			sb.WriteString("<pre><code>")
		}
		sb.WriteString(html.EscapeString(b.Text()))
		sb.WriteString("</code></pre>")
	case "image":
		url := b.Props.StringOr("url", "")
		caption := b.Props.StringOr("caption", "")
		fmt.Fprintf(sb, `<img src="%s" alt="%s">`, html.EscapeString(url), html.EscapeString(caption))
	default:
		sb.WriteString("<p>")
		writeInlineHTML(sb, b.Content)
		sb.WriteString("</p>")
	}
}

func writeInlineHTML(sb *strings.Builder, content []block.InlineContent) {
	for _, ic := range content {
		switch run := ic.(type) {
		case block.StyledText:
			sb.WriteString(styledHTML(run))
		case block.Link:
			fmt.Fprintf(sb, `<a href="%s">`, html.EscapeString(run.Href))
			for _, inner := range run.Content {
				sb.WriteString(styledHTML(inner))
			}
			sb.WriteString("</a>")
		}
	}
}

// styledHTML wraps escaped text in style tags, colors outermost.
func styledHTML(run block.StyledText) string {
	out := html.EscapeString(run.Text)
	st := run.Styles
	if st.Code {
		out = "<code>" + out + "</code>"
	}
	if st.Strikethrough {
		out = "<s>" + out + "</s>"
	}
	if st.Underline {
		out = "<u>" + out + "</u>"
	}
	if st.Italic {
		out = "<em>" + out + "</em>"
	}
	if st.Bold {
		out = "<strong>" + out + "</strong>"
	}
	if st.TextColor != "" || st.BackgroundColor != "" {
		var attrs strings.Builder
		if st.TextColor != "" {
			fmt.Fprintf(&attrs, ` data-text-color="%s"`, html.EscapeString(st.TextColor))
		}
		if st.BackgroundColor != "" {
			fmt.Fprintf(&attrs, ` data-background-color="%s"`, html.EscapeString(st.BackgroundColor))
		}
		out = "<span" + attrs.String() + ">" + out + "</span>"
	}
	return out
}
