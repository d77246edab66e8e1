package codec

import (
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/quillon/masonry/internal/block"
)

// ImportMarkdown parses Markdown into partial blocks. Strikethrough
// and task list syntax are enabled; raw HTML and thematic breaks are
// dropped. Ids are left empty for the inserting editor to generate.
func ImportMarkdown(data string) ([]block.PartialBlock, error) {
	src := []byte(data)
	md := goldmark.New(goldmark.WithExtensions(extension.Strikethrough, extension.TaskList))
	root := md.Parser().Parse(text.NewReader(src))
	return mdBlocks(root, src), nil
}

func mdBlocks(parent ast.Node, src []byte) []block.PartialBlock {
	var out []block.PartialBlock
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		out = append(out, mdBlock(n, src)...)
	}
	return out
}

func mdBlock(n ast.Node, src []byte) []block.PartialBlock {
	switch t := n.(type) {
	case *ast.Heading:
		level := t.Level
		if level > 3 {
			level = 3
		}
		return []block.PartialBlock{{
			Type:    "heading",
			Props:   block.Props{"level": level},
			Content: mdInline(t, src),
		}}
	case *ast.Paragraph, *ast.TextBlock:
		if img, ok := soleImage(n, src); ok {
			return []block.PartialBlock{img}
		}
		inline := mdInline(n, src)
		if len(inline) == 0 {
			return nil
		}
		return []block.PartialBlock{{Type: "paragraph", Content: inline}}
	case *ast.Blockquote:
		blocks := mdBlocks(t, src)
		for i := range blocks {
			if blocks[i].Type == "paragraph" {
				blocks[i].Type = "quote"
			}
		}
		return blocks
	case *ast.FencedCodeBlock:
		p := block.PartialBlock{Type: "codeBlock", Content: block.InlineText(codeLines(t, src))}
		if lang := string(t.Language(src)); lang != "" {
			p.Props = block.Props{"language": lang}
		}
		return []block.PartialBlock{p}
	case *ast.CodeBlock:
		return []block.PartialBlock{{Type: "codeBlock", Content: block.InlineText(codeLines(t, src))}}
	case *ast.List:
		return mdList(t, src)
	case *ast.ThematicBreak, *ast.HTMLBlock:
		return nil
	default:
		return mdBlocks(n, src)
	}
}

func mdList(list *ast.List, src []byte) []block.PartialBlock {
	itemType := "bulletListItem"
	if list.IsOrdered() {
		itemType = "numberedListItem"
	}
	var out []block.PartialBlock
	for li := list.FirstChild(); li != nil; li = li.NextSibling() {
		item := block.PartialBlock{Type: itemType}
		for c := li.FirstChild(); c != nil; c = c.NextSibling() {
			switch cc := c.(type) {
			case *ast.TextBlock, *ast.Paragraph:
				isTask := false
				if box, ok := c.FirstChild().(*east.TaskCheckBox); ok && box != nil {
					item.Type = "checkListItem"
					item.Props = block.Props{"checked": box.IsChecked}
					isTask = true
				}
				if item.Content == nil {
					item.Content = mdInline(c, src)
					if isTask {
						// The task marker's trailing space stays in the
						// first text segment.
						item.Content = trimLeadingSpace(item.Content)
					}
				} else {
					item.Children = append(item.Children, block.PartialBlock{
						Type:    "paragraph",
						Content: mdInline(c, src),
					})
				}
			case *ast.List:
				item.Children = append(item.Children, mdList(cc, src)...)
			default:
				item.Children = append(item.Children, mdBlock(c, src)...)
			}
		}
		out = append(out, item)
	}
	return out
}

// soleImage recognizes a paragraph holding nothing but one image and
// lifts it into an image block.
func soleImage(n ast.Node, src []byte) (block.PartialBlock, bool) {
	img, ok := n.FirstChild().(*ast.Image)
	if !ok || n.FirstChild() != n.LastChild() {
		return block.PartialBlock{}, false
	}
	caption := block.PlainText(mdInline(img, src))
	return block.PartialBlock{
		Type: "image",
		Props: block.Props{
			"url":     string(img.Destination),
			"caption": caption,
		},
	}, true
}

func mdInline(parent ast.Node, src []byte) []block.InlineContent {
	var out []block.InlineContent

	var walk func(n ast.Node, st block.Styles, href string)
	add := func(text string, st block.Styles, href string) {
		if href != "" {
			out = mergeLink(out, href, text, st)
		} else {
			out = mergeInline(out, text, st)
		}
	}
	walk = func(n ast.Node, st block.Styles, href string) {
		switch t := n.(type) {
		case *ast.Text:
			value := string(t.Segment.Value(src))
			if !t.IsRaw() {
				// Segments carry the raw source; escapes and entity
				// references resolve at render time, so do it here.
				value = mdUnescape(value)
			}
			add(value, st, href)
			if t.HardLineBreak() {
				add("\n", st, href)
			} else if t.SoftLineBreak() {
				add(" ", st, href)
			}
			return
		case *ast.String:
			add(string(t.Value), st, href)
			return
		case *east.TaskCheckBox:
			return
		case *ast.Emphasis:
			if t.Level >= 2 {
				st.Bold = true
			} else {
				st.Italic = true
			}
		case *east.Strikethrough:
			st.Strikethrough = true
		case *ast.CodeSpan:
			st.Code = true
		case *ast.Link:
			if dest := string(t.Destination); dest != "" {
				href = dest
			}
		case *ast.AutoLink:
			add(string(t.Label(src)), st, string(t.URL(src)))
			return
		case *ast.Image:
			// An inline image degrades to its alt text.
		case *ast.RawHTML:
			return
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			walk(c, st, href)
		}
	}
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		walk(c, block.Styles{}, "")
	}
	return out
}

func codeLines(n interface{ Lines() *text.Segments }, src []byte) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(src))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// mdUnescape resolves backslash escapes and entity references in text
// taken straight from source segments.
func mdUnescape(s string) string {
	if !strings.ContainsAny(s, `\&`) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) && isMDPunct(s[i+1]) {
			sb.WriteByte(s[i+1])
			i++
			continue
		}
		if c == '&' {
			if ref, n := entityRef(s[i:]); n > 0 {
				sb.WriteString(ref)
				i += n - 1
				continue
			}
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// entityRef resolves one leading entity reference, returning its
// replacement and consumed length, or 0 when s does not start one.
func entityRef(s string) (string, int) {
	limit := len(s)
	if limit > 32 {
		limit = 32
	}
	for i := 1; i < limit; i++ {
		if s[i] == ';' {
			ref := s[:i+1]
			if got := html.UnescapeString(ref); got != ref {
				return got, i + 1
			}
			return "", 0
		}
	}
	return "", 0
}

func isMDPunct(c byte) bool {
	switch {
	case c >= '!' && c <= '/':
		return true
	case c >= ':' && c <= '@':
		return true
	case c >= '[' && c <= '`':
		return true
	case c >= '{' && c <= '~':
		return true
	}
	return false
}
