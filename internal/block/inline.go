package block

import "strings"

// Styles is the set of inline styles active on a run of text. The zero
// value means unstyled. Styles is a fixed struct rather than an open
// map so style access is checked at compile time.
type Styles struct {
	Bold            bool   `json:"bold,omitempty"`
	Italic          bool   `json:"italic,omitempty"`
	Underline       bool   `json:"underline,omitempty"`
	Strikethrough   bool   `json:"strikethrough,omitempty"`
	Code            bool   `json:"code,omitempty"`
	TextColor       string `json:"textColor,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
}

// IsZero reports whether no style is active.
func (s Styles) IsZero() bool { return s == Styles{} }

// InlineContent is one run of a block's inline content: either a
// StyledText run or a Link. The set of implementations is closed.
type InlineContent interface {
	// PlainText returns the run's text with styling and targets dropped.
	PlainText() string

	inlineContent()
}

// StyledText is a run of text with a uniform style set. Adjacent runs
// always differ in at least one style; conversion merges runs that do
// not.
type StyledText struct {
	Text   string `json:"text"`
	Styles Styles `json:"styles,omitempty"`
}

// PlainText returns the run's text.
func (t StyledText) PlainText() string { return t.Text }

func (StyledText) inlineContent() {}

// Link is a hyperlink wrapping one or more styled text runs that share
// its target.
type Link struct {
	Href    string       `json:"href"`
	Content []StyledText `json:"content"`
}

// PlainText returns the link's visible text.
func (l Link) PlainText() string {
	var sb strings.Builder
	for _, t := range l.Content {
		sb.WriteString(t.Text)
	}
	return sb.String()
}

func (Link) inlineContent() {}

// Text builds a plain unstyled text run.
func Text(s string) StyledText { return StyledText{Text: s} }

// InlineText builds inline content holding a single unstyled run. A
// convenience for the common case of plain-text blocks.
func InlineText(s string) []InlineContent {
	if s == "" {
		return []InlineContent{}
	}
	return []InlineContent{StyledText{Text: s}}
}

// PlainText concatenates the visible text of a content sequence.
func PlainText(content []InlineContent) string {
	var sb strings.Builder
	for _, ic := range content {
		sb.WriteString(ic.PlainText())
	}
	return sb.String()
}
