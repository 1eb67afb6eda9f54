package menu

import (
	"bytes"
	"encoding/json"
)

// Version is the explicit schema discriminant. V1 has no marker on the wire.
type Version int

const (
	V1 Version = 1
	V2 Version = 2
)

func (v Version) String() string {
	switch v {
	case V1:
		return "v1"
	case V2:
		return "v2"
	default:
		return "unknown"
	}
}

// Item is one priced entry inside a section. Price is free-form text.
type Item struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       string  `json:"price"`
	Description string  `json:"description"`
	Image       *string `json:"image,omitempty"`
}

// Section groups items under a heading.
type Section struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// Menu is either generation of the payload model. Title is always empty for V1.
type Menu struct {
	Version  Version
	Title    string
	Sections []Section
}

func NewV1() Menu {
	return Menu{Version: V1, Sections: []Section{}}
}

func NewV2(title string) Menu {
	return Menu{Version: V2, Title: title, Sections: []Section{}}
}

func NewSection(id string) Section {
	return Section{ID: id, Items: []Item{}}
}

func NewItem(id string) Item {
	return Item{ID: id}
}

// IsEmpty reports whether there is nothing to encode: no sections and no title.
func (m Menu) IsEmpty() bool {
	if len(m.Sections) != 0 {
		return false
	}
	return m.Version != V2 || m.Title == ""
}

// SupportsImages reports whether items of this menu may carry an inline image.
func (m Menu) SupportsImages() bool {
	return m.Version == V2
}

// Upgrade converts a V1 menu to V2 with an empty title. V2 menus are returned as copies.
func (m Menu) Upgrade() Menu {
	out := m.Clone()
	out.Version = V2
	return out
}

// SectionIndex returns the position of the section with id, or -1.
func (m Menu) SectionIndex(id string) int {
	for i := range m.Sections {
		if m.Sections[i].ID == id {
			return i
		}
	}
	return -1
}

// ItemIndex returns the position of the item with id inside s, or -1.
func (s Section) ItemIndex(id string) int {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// ItemCount sums items across all sections.
func (m Menu) ItemCount() int {
	total := 0
	for _, s := range m.Sections {
		total += len(s.Items)
	}
	return total
}

// Clone deep-copies the menu so callers may mutate the result freely.
func (m Menu) Clone() Menu {
	out := Menu{Version: m.Version, Title: m.Title, Sections: make([]Section, len(m.Sections))}
	for i, s := range m.Sections {
		out.Sections[i] = s.Clone()
	}
	return out
}

// Clone deep-copies the section, including item images.
func (s Section) Clone() Section {
	out := Section{ID: s.ID, Name: s.Name, Items: make([]Item, len(s.Items))}
	for i, item := range s.Items {
		if item.Image != nil {
			img := *item.Image
			item.Image = &img
		}
		out.Items[i] = item
	}
	return out
}

type v2Record struct {
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

// MarshalJSON emits the bare section array for V1 and the {title, sections}
// record for V2. Nil slices are written as empty arrays.
func (m Menu) MarshalJSON() ([]byte, error) {
	sections := m.Clone().Sections
	switch m.Version {
	case V1:
		return marshalPlain(sections)
	case V2:
		return marshalPlain(v2Record{Title: m.Title, Sections: sections})
	default:
		return nil, ErrUnknownVersion
	}
}

// marshalPlain encodes without HTML escaping so text like "Fish & Chips"
// keeps its literal bytes.
func marshalPlain(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
