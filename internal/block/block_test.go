package block

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

// ============================================================================
// Props
// ============================================================================

func TestPropsAccessors(t *testing.T) {
	p := Props{
		"title":   "hello",
		"checked": true,
		"level":   float64(2),
		"ratio":   1.5,
	}

	if v, ok := p.GetString("title"); !ok || v != "hello" {
		t.Errorf("GetString(title) = %q, %v", v, ok)
	}
	if _, ok := p.GetString("checked"); ok {
		t.Error("GetString(checked) should report a type mismatch")
	}
	if v, ok := p.GetBool("checked"); !ok || !v {
		t.Errorf("GetBool(checked) = %v, %v", v, ok)
	}
	if v, ok := p.GetInt("level"); !ok || v != 2 {
		t.Errorf("GetInt(level) = %d, %v", v, ok)
	}
	if _, ok := p.GetInt("ratio"); ok {
		t.Error("GetInt(ratio) should reject a fractional value")
	}
	if v, ok := p.GetFloat("ratio"); !ok || v != 1.5 {
		t.Errorf("GetFloat(ratio) = %v, %v", v, ok)
	}
	if v, ok := p.GetFloat("level"); !ok || v != 2 {
		t.Errorf("GetFloat(level) = %v, %v", v, ok)
	}
}

func TestPropsDefaultAccessors(t *testing.T) {
	p := Props{"language": "go", "checked": false, "level": 3}

	if got := p.StringOr("language", "text"); got != "go" {
		t.Errorf("StringOr = %q, want %q", got, "go")
	}
	if got := p.StringOr("missing", "text"); got != "text" {
		t.Errorf("StringOr default = %q, want %q", got, "text")
	}
	if got := p.BoolOr("checked", true); got {
		t.Error("BoolOr should return stored false, not the default")
	}
	if got := p.IntOr("level", 1); got != 3 {
		t.Errorf("IntOr = %d, want 3", got)
	}
	if got := p.IntOr("missing", 1); got != 1 {
		t.Errorf("IntOr default = %d, want 1", got)
	}
}

func TestPropsMerge(t *testing.T) {
	base := Props{"a": "1", "b": "2", "c": "3"}
	merged := base.Merge(Props{"b": "20", "c": nil, "d": "4"})

	if got := merged["a"]; got != "1" {
		t.Errorf("untouched key a = %v, want 1", got)
	}
	if got := merged["b"]; got != "20" {
		t.Errorf("overridden key b = %v, want 20", got)
	}
	if _, ok := merged["c"]; ok {
		t.Error("nil-valued patch key c should be removed")
	}
	if got := merged["d"]; got != "4" {
		t.Errorf("new key d = %v, want 4", got)
	}
	if got := base["b"]; got != "2" {
		t.Errorf("merge mutated the receiver: b = %v", got)
	}
}

func TestPropsMergeNilReceiver(t *testing.T) {
	var base Props
	merged := base.Merge(Props{"a": "1"})
	if got := merged["a"]; got != "1" {
		t.Errorf("merge into nil = %v, want 1", got)
	}
}

func TestPropsClone(t *testing.T) {
	if got := (Props)(nil).Clone(); got != nil {
		t.Errorf("nil clone = %v, want nil", got)
	}
	p := Props{"k": "v"}
	c := p.Clone()
	c["k"] = "changed"
	if p["k"] != "v" {
		t.Error("clone shares storage with the original")
	}
}

// ============================================================================
// Inline Content
// ============================================================================

func TestBlockText(t *testing.T) {
	b := Block{
		Content: []InlineContent{
			StyledText{Text: "Hello "},
			Link{Href: "https://example.com", Content: []StyledText{{Text: "world"}}},
			StyledText{Text: "!"},
		},
	}
	if got := b.Text(); got != "Hello world!" {
		t.Errorf("Text() = %q, want %q", got, "Hello world!")
	}
}

func TestInlineText(t *testing.T) {
	content := InlineText("plain")
	if len(content) != 1 {
		t.Fatalf("InlineText length = %d, want 1", len(content))
	}
	run, ok := content[0].(StyledText)
	if !ok {
		t.Fatalf("InlineText run type = %T", content[0])
	}
	if run.Text != "plain" || !run.Styles.IsZero() {
		t.Errorf("InlineText run = %+v", run)
	}
	if got := PlainText(content); got != "plain" {
		t.Errorf("PlainText = %q, want %q", got, "plain")
	}
}

func TestIdentifierNormalization(t *testing.T) {
	tests := []struct {
		name string
		ref  Identifier
		want string
	}{
		{"bare id", ID("abc"), "abc"},
		{"block value", Block{ID: "b1"}, "b1"},
		{"partial", PartialBlock{ID: "p1"}, "p1"},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IDOf(tt.ref); got != tt.want {
				t.Errorf("IDOf = %q, want %q", got, tt.want)
			}
		})
	}
}

// ============================================================================
// JSON
// ============================================================================

func TestBlockJSONRoundTrip(t *testing.T) {
	b := Block{
		ID:    "b1",
		Type:  "paragraph",
		Props: Props{"textColor": "red"},
		Content: []InlineContent{
			StyledText{Text: "bold", Styles: Styles{Bold: true}},
			Link{Href: "https://example.com", Content: []StyledText{{Text: "link"}}},
		},
		Children: []Block{
			{ID: "b2", Type: "paragraph", Content: []InlineContent{StyledText{Text: "child"}}, Children: []Block{}},
		},
	}

	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Block
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.ID != b.ID || got.Type != b.Type {
		t.Errorf("round trip identity = %q/%q", got.ID, got.Type)
	}
	if got.Props["textColor"] != "red" {
		t.Errorf("round trip props = %v", got.Props)
	}
	if len(got.Content) != 2 {
		t.Fatalf("round trip content length = %d", len(got.Content))
	}
	run, ok := got.Content[0].(StyledText)
	if !ok || run.Text != "bold" || !run.Styles.Bold {
		t.Errorf("round trip run = %#v", got.Content[0])
	}
	link, ok := got.Content[1].(Link)
	if !ok || link.Href != "https://example.com" || len(link.Content) != 1 {
		t.Errorf("round trip link = %#v", got.Content[1])
	}
	if len(got.Children) != 1 || got.Children[0].ID != "b2" {
		t.Errorf("round trip children = %#v", got.Children)
	}
}

func TestBlockMarshalShape(t *testing.T) {
	tests := []struct {
		name        string
		block       Block
		wantContent bool
		contentJSON string
	}{
		{
			name:        "nil content omitted",
			block:       Block{ID: "i1", Type: "image"},
			wantContent: false,
		},
		{
			name:        "empty content kept as array",
			block:       Block{ID: "p1", Type: "paragraph", Content: []InlineContent{}},
			wantContent: true,
			contentJSON: "[]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.block)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var raw map[string]json.RawMessage
			if err := json.Unmarshal(data, &raw); err != nil {
				t.Fatalf("unmarshal shape: %v", err)
			}
			content, ok := raw["content"]
			if ok != tt.wantContent {
				t.Fatalf("content present = %v, want %v", ok, tt.wantContent)
			}
			if tt.wantContent && string(content) != tt.contentJSON {
				t.Errorf("content = %s, want %s", content, tt.contentJSON)
			}
			if _, ok := raw["children"]; !ok {
				t.Error("children should always be present")
			}
			if _, ok := raw["props"]; !ok {
				t.Error("props should always be present")
			}
		})
	}
}

func TestPartialBlockJSONAbsentVsEmpty(t *testing.T) {
	absent := PartialBlock{ID: "a"}
	empty := PartialBlock{ID: "e", Content: []InlineContent{}, Children: []PartialBlock{}}

	dataAbsent, err := json.Marshal(absent)
	if err != nil {
		t.Fatalf("marshal absent: %v", err)
	}
	if strings.Contains(string(dataAbsent), "content") || strings.Contains(string(dataAbsent), "children") {
		t.Errorf("absent fields should be omitted: %s", dataAbsent)
	}

	dataEmpty, err := json.Marshal(empty)
	if err != nil {
		t.Fatalf("marshal empty: %v", err)
	}
	var got PartialBlock
	if err := json.Unmarshal(dataEmpty, &got); err != nil {
		t.Fatalf("unmarshal empty: %v", err)
	}
	if !got.HasContent() {
		t.Error("explicit empty content should survive the round trip")
	}
	if !got.HasChildren() {
		t.Error("explicit empty children should survive the round trip")
	}

	if err := json.Unmarshal(dataAbsent, &got); err != nil {
		t.Fatalf("unmarshal absent: %v", err)
	}
	if got.HasContent() || got.HasChildren() {
		t.Error("absent fields should unmarshal to nil")
	}
}

func TestUnmarshalInlineUnknownType(t *testing.T) {
	_, err := UnmarshalInline([]byte(`[{"type":"mystery","text":"x"}]`))
	if err == nil {
		t.Fatal("expected an error for an unknown inline type")
	}
}

func TestToPartial(t *testing.T) {
	b := Block{
		ID:      "b1",
		Type:    "bulletListItem",
		Props:   Props{"textColor": "default"},
		Content: []InlineContent{StyledText{Text: "item"}},
		Children: []Block{
			{ID: "c1", Type: "paragraph", Content: []InlineContent{StyledText{Text: "sub"}}},
		},
	}
	p := b.ToPartial()

	if p.ID != "b1" || p.Type != "bulletListItem" {
		t.Errorf("partial identity = %q/%q", p.ID, p.Type)
	}
	if !p.HasContent() || PlainText(p.Content) != "item" {
		t.Errorf("partial content = %#v", p.Content)
	}
	if len(p.Children) != 1 || p.Children[0].ID != "c1" {
		t.Errorf("partial children = %#v", p.Children)
	}
	p.Props["textColor"] = "red"
	if b.Props["textColor"] != "default" {
		t.Error("ToPartial shares props with the source block")
	}
}

func TestSentinelErrorsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrBlockNotFound,
		ErrUnknownBlockType,
		ErrInvalidPlacement,
		ErrInvalidProp,
		ErrInvalidContent,
		ErrMissingType,
		ErrNoBlocks,
		ErrStepFailed,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel %d matches sentinel %d", i, j)
			}
		}
	}
}
