package codec

import (
	"fmt"
	"strings"

	"github.com/quillon/masonry/internal/block"
)

var mdEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
)

// ExportMarkdown renders blocks as Markdown. Underline and colors have
// no Markdown form and are dropped; children of non-list blocks are
// flattened to their parent's level.
func ExportMarkdown(blocks []block.Block) string {
	var sb strings.Builder
	writeMDBlocks(&sb, blocks, "")
	out := strings.TrimRight(sb.String(), "\n")
	if out == "" {
		return ""
	}
	return out + "\n"
}

func writeMDBlocks(sb *strings.Builder, blocks []block.Block, indent string) {
	for i := 0; i < len(blocks); {
		b := blocks[i]
		if listKindOf(b.Type) {
			j := i
			for j < len(blocks) && blocks[j].Type == b.Type {
				j++
			}
			writeMDList(sb, blocks[i:j], indent)
			sb.WriteString("\n")
			i = j
			continue
		}
		writeMDBlock(sb, b, indent)
		sb.WriteString("\n")
		if len(b.Children) > 0 {
			writeMDBlocks(sb, b.Children, indent)
		}
		i++
	}
}

func writeMDList(sb *strings.Builder, items []block.Block, indent string) {
	n := 1
	for _, item := range items {
		marker := "- "
		switch item.Type {
		case "numberedListItem":
			marker = fmt.Sprintf("%d. ", n)
			n++
		case "checkListItem":
			if item.Props.BoolOr("checked", false) {
				marker = "- [x] "
			} else {
				marker = "- [ ] "
			}
		}
		sb.WriteString(indent + marker + inlineMD(item.Content) + "\n")
		if len(item.Children) > 0 {
			writeMDItemChildren(sb, item.Children, indent+strings.Repeat(" ", len(marker)))
		}
	}
}

// writeMDItemChildren continues a list item: nested lists stay tight,
// other blocks become loose continuation paragraphs.
func writeMDItemChildren(sb *strings.Builder, blocks []block.Block, indent string) {
	for i := 0; i < len(blocks); {
		b := blocks[i]
		if listKindOf(b.Type) {
			j := i
			for j < len(blocks) && blocks[j].Type == b.Type {
				j++
			}
			writeMDList(sb, blocks[i:j], indent)
			i = j
			continue
		}
		sb.WriteString("\n")
		writeMDBlock(sb, b, indent)
		if len(b.Children) > 0 {
			writeMDItemChildren(sb, b.Children, indent)
		}
		i++
	}
}

func writeMDBlock(sb *strings.Builder, b block.Block, indent string) {
	switch b.Type {
	case "heading":
		level := b.Props.IntOr("level", 1)
		if level < 1 {
			level = 1
		}
		if level > 3 {
			level = 3
		}
		sb.WriteString(indent + strings.Repeat("#", level) + " " + inlineMD(b.Content) + "\n")
	case "quote":
		for _, line := range strings.Split(inlineMD(b.Content), "\n") {
			sb.WriteString(indent + "> " + line + "\n")
		}
	case "codeBlock":
		writeFenced(sb, b, indent)
	case "image":
		url := b.Props.StringOr("url", "")
		caption := b.Props.StringOr("caption", "")
		sb.WriteString(indent + "![" + mdEscaper.Replace(caption) + "](" + url + ")\n")
	default:
		for _, line := range strings.Split(inlineMD(b.Content), "\n") {
			sb.WriteString(indent + line + "\n")
		}
	}
}

func writeFenced(sb *strings.Builder, b block.Block, indent string) {
	text := b.Text()
	fence := "```"
	for strings.Contains(text, fence) {
		fence += "`"
	}
	sb.WriteString(indent + fence + b.Props.StringOr("language", "") + "\n")
	if text != "" {
		for _, line := range strings.Split(text, "\n") {
			sb.WriteString(indent + line + "\n")
		}
	}
	sb.WriteString(indent + fence + "\n")
}

func inlineMD(content []block.InlineContent) string {
	var sb strings.Builder
	for _, ic := range content {
		switch run := ic.(type) {
		case block.StyledText:
			sb.WriteString(styledMD(run))
		case block.Link:
			var inner strings.Builder
			for _, r := range run.Content {
				inner.WriteString(styledMD(r))
			}
			fmt.Fprintf(&sb, "[%s](%s)", inner.String(), run.Href)
		}
	}
	return sb.String()
}

func styledMD(run block.StyledText) string {
	if run.Styles.Code {
		if strings.Contains(run.Text, "`") {
			return "`` " + run.Text + " ``"
		}
		return "`" + run.Text + "`"
	}
	text := mdEscaper.Replace(run.Text)
	if run.Styles.Strikethrough {
		text = "~~" + text + "~~"
	}
	if run.Styles.Italic {
		text = "*" + text + "*"
	}
	if run.Styles.Bold {
		text = "**" + text + "**"
	}
	return text
}
