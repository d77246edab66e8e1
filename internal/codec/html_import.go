package codec

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/quillon/masonry/internal/block"
)

// blockTags are elements that start a new block during import. Any
// other element is treated as inline or transparent.
var blockTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "blockquote": true, "pre": true,
	"ul": true, "ol": true, "li": true, "img": true, "div": true,
	"section": true, "article": true, "figure": true, "table": true,
	"header": true, "footer": true, "main": true, "aside": true,
}

var skipTags = map[string]bool{
	"script": true, "style": true, "head": true, "title": true,
	"meta": true, "link": true, "input": true, "hr": true,
}

// ImportHTML parses an HTML document or fragment into partial blocks.
// Unknown block elements are transparent wrappers; loose text and
// inline elements between blocks fold into paragraphs. Ids are left
// empty for the inserting editor to generate.
func ImportHTML(data string) ([]block.PartialBlock, error) {
	root, err := html.Parse(strings.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	body := findElement(root, "body")
	if body == nil {
		body = root
	}
	return importChildren(body), nil
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

// importChildren converts parent's children, folding runs of inline
// content between block elements into paragraphs.
func importChildren(parent *html.Node) []block.PartialBlock {
	var out []block.PartialBlock
	var inline []block.InlineContent

	flush := func() {
		inline = trimTrailingSpace(inline)
		if len(inline) > 0 {
			out = append(out, block.PartialBlock{Type: "paragraph", Content: inline})
		}
		inline = nil
	}

	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && blockTags[c.Data] {
			flush()
			out = append(out, importBlock(c)...)
			continue
		}
		inline = appendInlineNode(inline, c, block.Styles{}, "")
	}
	flush()
	return out
}

// importBlock converts one block-level element.
func importBlock(n *html.Node) []block.PartialBlock {
	switch n.Data {
	case "p":
		if inline := importInline(n); len(inline) > 0 {
			return []block.PartialBlock{{Type: "paragraph", Content: inline}}
		}
		return nil
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level := int(n.Data[1] - '0')
		if level > 3 {
			level = 3
		}
		return []block.PartialBlock{{
			Type:    "heading",
			Props:   block.Props{"level": level},
			Content: importInline(n),
		}}
	case "blockquote":
		return importQuote(n)
	case "pre":
		return []block.PartialBlock{importCodeBlock(n)}
	case "ul", "ol":
		return importList(n)
	case "li":
		// Stray list item outside a list.
		return []block.PartialBlock{{Type: "bulletListItem", Content: importInline(n)}}
	case "img":
		return []block.PartialBlock{{
			Type: "image",
			Props: block.Props{
				"url":     attrValue(n, "src"),
				"caption": attrValue(n, "alt"),
			},
		}}
	default:
		// Transparent wrapper like div or section.
		return importChildren(n)
	}
}

// importQuote maps paragraph children to quote blocks; other nested
// blocks keep their own type.
func importQuote(n *html.Node) []block.PartialBlock {
	blocks := importChildren(n)
	for i := range blocks {
		if blocks[i].Type == "paragraph" {
			blocks[i].Type = "quote"
		}
	}
	return blocks
}

func importCodeBlock(pre *html.Node) block.PartialBlock {
	lang := ""
	src := pre
	if code := findElement(pre, "code"); code != nil {
		src = code
		for _, class := range strings.Fields(attrValue(code, "class")) {
			if rest, ok := strings.CutPrefix(class, "language-"); ok {
				lang = rest
				break
			}
		}
	}
	text := rawText(src)
	text = strings.TrimPrefix(text, "\n")
	text = strings.TrimRight(text, "\n")
	p := block.PartialBlock{Type: "codeBlock", Content: block.InlineText(text)}
	if lang != "" {
		p.Props = block.Props{"language": lang}
	}
	return p
}

func importList(list *html.Node) []block.PartialBlock {
	itemType := "bulletListItem"
	if list.Data == "ol" {
		itemType = "numberedListItem"
	}
	var out []block.PartialBlock
	for li := list.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		item := block.PartialBlock{Type: itemType}
		if box := findElement(li, "input"); box != nil && attrValue(box, "type") == "checkbox" {
			item.Type = "checkListItem"
			item.Props = block.Props{"checked": hasAttr(box, "checked")}
		}
		item.Content = importInline(li)
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
				item.Children = append(item.Children, importList(c)...)
			}
		}
		out = append(out, item)
	}
	return out
}

// importInline flattens the element's inline content, skipping nested
// block-level elements.
func importInline(n *html.Node) []block.InlineContent {
	var out []block.InlineContent
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = appendInlineNode(out, c, block.Styles{}, "")
	}
	return trimTrailingSpace(out)
}

// appendInlineNode folds one node into the run list, carrying the
// active styles and link target down the tree.
func appendInlineNode(out []block.InlineContent, c *html.Node, st block.Styles, href string) []block.InlineContent {
	switch c.Type {
	case html.TextNode:
		text := collapseSpace(c.Data)
		if len(out) == 0 {
			// Whitespace never leads a block.
			text = strings.TrimLeft(text, " ")
		}
		if text == "" {
			return out
		}
		if strings.TrimSpace(text) == "" {
			text = " "
		}
		if href != "" {
			return mergeLink(out, href, text, st)
		}
		return mergeInline(out, text, st)
	case html.ElementNode:
	default:
		return out
	}

	if blockTags[c.Data] || skipTags[c.Data] {
		return out
	}
	switch c.Data {
	case "strong", "b":
		st.Bold = true
	case "em", "i":
		st.Italic = true
	case "u":
		st.Underline = true
	case "s", "del", "strike":
		st.Strikethrough = true
	case "code":
		st.Code = true
	case "a":
		if v := attrValue(c, "href"); v != "" {
			href = v
		}
	case "span":
		if v := attrValue(c, "data-text-color"); v != "" {
			st.TextColor = v
		}
		if v := attrValue(c, "data-background-color"); v != "" {
			st.BackgroundColor = v
		}
	case "br":
		return mergeInline(out, "\n", st)
	}
	for sub := c.FirstChild; sub != nil; sub = sub.NextSibling {
		out = appendInlineNode(out, sub, st, href)
	}
	return out
}

// rawText concatenates all text under n without whitespace collapsing,
// for code content.
func rawText(n *html.Node) string {
	var sb strings.Builder
	var walk func(c *html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
			return
		}
		for sub := c.FirstChild; sub != nil; sub = sub.NextSibling {
			walk(sub)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return sb.String()
}

// collapseSpace folds interior whitespace runs into single spaces the
// way HTML rendering does, keeping one boundary space on either side
// when the source had any.
func collapseSpace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if s == "" {
			return ""
		}
		return " "
	}
	out := strings.Join(fields, " ")
	if isHTMLSpace(s[0]) {
		out = " " + out
	}
	if isHTMLSpace(s[len(s)-1]) {
		out += " "
	}
	return out
}

func isHTMLSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}
