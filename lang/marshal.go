package lang

import "encoding/json"

// encodedModule is the serialized form of a Module shared by the JSON and
// YAML encoders. Field order is the output order.
type encodedModule struct {
	Preamble  string        `json:"preamble"            yaml:"preamble"`
	Items     []encodedItem `json:"items"               yaml:"items"`
	Remainder string        `json:"remainder,omitempty" yaml:"remainder,omitempty"`
}

type encodedItem struct {
	Kind     string        `json:"kind"             yaml:"kind"`
	At       string        `json:"at"               yaml:"at"`
	Header   string        `json:"header,omitempty" yaml:"header,omitempty"`
	Params   string        `json:"params,omitempty" yaml:"params,omitempty"`
	Markdown string        `json:"markdown"         yaml:"markdown"`
	Items    []encodedItem `json:"items,omitempty"  yaml:"items,omitempty"`
}

// MarshalJSON implements json.Marshaler for Module.
func (m *Module) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.encode())
}

// MarshalYAML implements yaml.InterfaceMarshaler for Module.
func (m *Module) MarshalYAML() (any, error) {
	return m.encode(), nil
}

func (m *Module) encode() encodedModule {
	return encodedModule{
		Preamble:  m.Preamble,
		Items:     encodeItems(m.Items),
		Remainder: m.Remainder,
	}
}

func encodeItems(items []Item) []encodedItem {
	enc := make([]encodedItem, 0, len(items))

	for _, it := range items {
		enc = append(enc, encodeItem(it))
	}

	return enc
}

func encodeItem(it Item) encodedItem {
	e := encodedItem{
		Kind: it.Kind().String(),
		At:   it.Span().Start.String(),
	}

	switch v := it.(type) {
	case *Question:
		e.Header = v.Header
		e.Markdown = v.Markdown

	case *Grid:
		e.Params = v.Tag.Params
		e.Markdown = v.Markdown

	case *Loop:
		e.Params = v.Tag.Params
		e.Markdown = v.Markdown
		if len(v.Items) > 0 {
			e.Items = encodeItems(v.Items)
		}
	}

	return e
}
