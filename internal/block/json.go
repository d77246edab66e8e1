package block

import (
	"encoding/json"
	"fmt"
)

// Inline content marshals with a "type" discriminator so heterogeneous
// sequences survive a JSON round trip.

type styledTextJSON struct {
	Type   string `json:"type"`
	Text   string `json:"text"`
	Styles Styles `json:"styles,omitempty"`
}

type linkJSON struct {
	Type    string           `json:"type"`
	Href    string           `json:"href"`
	Content []styledTextJSON `json:"content"`
}

// MarshalJSON encodes the run as {"type":"text",...}.
func (t StyledText) MarshalJSON() ([]byte, error) {
	return json.Marshal(styledTextJSON{Type: "text", Text: t.Text, Styles: t.Styles})
}

// MarshalJSON encodes the link as {"type":"link",...}.
func (l Link) MarshalJSON() ([]byte, error) {
	out := linkJSON{Type: "link", Href: l.Href, Content: make([]styledTextJSON, len(l.Content))}
	for i, t := range l.Content {
		out.Content[i] = styledTextJSON{Type: "text", Text: t.Text, Styles: t.Styles}
	}
	return json.Marshal(out)
}

// UnmarshalInline decodes a JSON array of inline content runs.
func UnmarshalInline(data []byte) ([]InlineContent, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, err
	}
	out := make([]InlineContent, 0, len(raws))
	for _, raw := range raws {
		ic, err := unmarshalInlineOne(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, ic)
	}
	return out, nil
}

func unmarshalInlineOne(raw json.RawMessage) (InlineContent, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}
	switch probe.Type {
	case "text", "":
		var t styledTextJSON
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, err
		}
		return StyledText{Text: t.Text, Styles: t.Styles}, nil
	case "link":
		var l linkJSON
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, err
		}
		link := Link{Href: l.Href, Content: make([]StyledText, len(l.Content))}
		for i, t := range l.Content {
			link.Content[i] = StyledText{Text: t.Text, Styles: t.Styles}
		}
		return link, nil
	default:
		return nil, fmt.Errorf("unknown inline content type %q", probe.Type)
	}
}

// MarshalJSON encodes a Block. Props and children always encode, even
// when empty. Content encodes as an array for block types that carry
// inline text (an empty array when there is none) and is omitted for
// types with no content at all.
func (b Block) MarshalJSON() ([]byte, error) {
	type blockJSON struct {
		ID       string          `json:"id"`
		Type     string          `json:"type"`
		Props    Props           `json:"props"`
		Content  json.RawMessage `json:"content,omitempty"`
		Children []Block         `json:"children"`
	}
	out := blockJSON{ID: b.ID, Type: b.Type, Props: b.Props, Children: b.Children}
	if out.Props == nil {
		out.Props = Props{}
	}
	if out.Children == nil {
		out.Children = []Block{}
	}
	if b.Content != nil {
		raw, err := json.Marshal(b.Content)
		if err != nil {
			return nil, err
		}
		out.Content = raw
	}
	return json.Marshal(out)
}

// MarshalJSON encodes a PartialBlock, keeping the distinction between
// absent and explicitly empty content and children.
func (p PartialBlock) MarshalJSON() ([]byte, error) {
	type partialJSON struct {
		ID       string          `json:"id,omitempty"`
		Type     string          `json:"type,omitempty"`
		Props    Props           `json:"props,omitempty"`
		Content  json.RawMessage `json:"content,omitempty"`
		Children json.RawMessage `json:"children,omitempty"`
	}
	out := partialJSON{ID: p.ID, Type: p.Type, Props: p.Props}
	if p.Content != nil {
		raw, err := json.Marshal(p.Content)
		if err != nil {
			return nil, err
		}
		out.Content = raw
	}
	if p.Children != nil {
		raw, err := json.Marshal(p.Children)
		if err != nil {
			return nil, err
		}
		out.Children = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a Block, resolving inline content run types.
func (b *Block) UnmarshalJSON(data []byte) error {
	type alias struct {
		ID       string            `json:"id"`
		Type     string            `json:"type"`
		Props    Props             `json:"props"`
		Content  json.RawMessage   `json:"content"`
		Children []json.RawMessage `json:"children"`
	}
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	b.ID, b.Type, b.Props = a.ID, a.Type, a.Props
	b.Content = nil
	if len(a.Content) > 0 {
		content, err := UnmarshalInline(a.Content)
		if err != nil {
			return err
		}
		b.Content = content
	}
	b.Children = nil
	for _, raw := range a.Children {
		var c Block
		if err := json.Unmarshal(raw, &c); err != nil {
			return err
		}
		b.Children = append(b.Children, c)
	}
	return nil
}

// UnmarshalJSON decodes a PartialBlock, preserving the distinction
// between absent and explicitly empty content/children.
func (p *PartialBlock) UnmarshalJSON(data []byte) error {
	type alias struct {
		ID       string            `json:"id"`
		Type     string            `json:"type"`
		Props    Props             `json:"props"`
		Content  json.RawMessage   `json:"content"`
		Children []json.RawMessage `json:"children"`
	}
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	p.ID, p.Type, p.Props = a.ID, a.Type, a.Props
	p.Content = nil
	if a.Content != nil {
		content, err := UnmarshalInline(a.Content)
		if err != nil {
			return err
		}
		p.Content = content
	}
	p.Children = nil
	if a.Children != nil {
		p.Children = make([]PartialBlock, 0, len(a.Children))
		for _, raw := range a.Children {
			var c PartialBlock
			if err := json.Unmarshal(raw, &c); err != nil {
				return err
			}
			p.Children = append(p.Children, c)
		}
	}
	return nil
}
