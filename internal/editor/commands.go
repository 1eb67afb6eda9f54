package editor

import (
	"fmt"

	"github.com/danmuck/menuqr/internal/menu"
)

// Command is one editor mutation. Apply returns the next state and never
// modifies its argument; on error the caller keeps the previous state.
type Command interface {
	Apply(State) (State, error)
}

// Field names an editable text field of an item.
type Field string

const (
	FieldName        Field = "name"
	FieldPrice       Field = "price"
	FieldDescription Field = "description"
)

type AddSection struct {
	Name string
}

func (c AddSection) Apply(s State) (State, error) {
	next := s.clone()
	section := menu.NewSection(next.IDs.Section())
	section.Name = c.Name
	next.Menu.Sections = append(next.Menu.Sections, section)
	return next, nil
}

type DeleteSection struct {
	SectionID string
}

func (c DeleteSection) Apply(s State) (State, error) {
	next := s.clone()
	si, _, err := next.locate(c.SectionID, "")
	if err != nil {
		return s, fmt.Errorf("%w: %s", err, c.SectionID)
	}
	next.Menu.Sections = append(next.Menu.Sections[:si], next.Menu.Sections[si+1:]...)
	return next, nil
}

type RenameSection struct {
	SectionID string
	Name      string
}

func (c RenameSection) Apply(s State) (State, error) {
	next := s.clone()
	si, _, err := next.locate(c.SectionID, "")
	if err != nil {
		return s, fmt.Errorf("%w: %s", err, c.SectionID)
	}
	next.Menu.Sections[si].Name = c.Name
	return next, nil
}

// AddItem appends an item to the end of a section. Blank fields are allowed.
type AddItem struct {
	SectionID   string
	Name        string
	Price       string
	Description string
}

func (c AddItem) Apply(s State) (State, error) {
	next := s.clone()
	si, _, err := next.locate(c.SectionID, "")
	if err != nil {
		return s, fmt.Errorf("%w: %s", err, c.SectionID)
	}
	item := menu.NewItem(next.IDs.Item())
	item.Name = c.Name
	item.Price = c.Price
	item.Description = c.Description
	next.Menu.Sections[si].Items = append(next.Menu.Sections[si].Items, item)
	return next, nil
}

type DeleteItem struct {
	SectionID string
	ItemID    string
}

func (c DeleteItem) Apply(s State) (State, error) {
	next := s.clone()
	si, ii, err := next.locate(c.SectionID, c.ItemID)
	if err != nil {
		return s, fmt.Errorf("%w: %s/%s", err, c.SectionID, c.ItemID)
	}
	items := next.Menu.Sections[si].Items
	next.Menu.Sections[si].Items = append(items[:ii], items[ii+1:]...)
	return next, nil
}

type SetItemField struct {
	SectionID string
	ItemID    string
	Field     Field
	Value     string
}

func (c SetItemField) Apply(s State) (State, error) {
	next := s.clone()
	si, ii, err := next.locate(c.SectionID, c.ItemID)
	if err != nil {
		return s, fmt.Errorf("%w: %s/%s", err, c.SectionID, c.ItemID)
	}
	item := &next.Menu.Sections[si].Items[ii]
	switch c.Field {
	case FieldName:
		item.Name = c.Value
	case FieldPrice:
		item.Price = c.Value
	case FieldDescription:
		item.Description = c.Value
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownField, c.Field)
	}
	return next, nil
}

// SetItemImage stores an inline data URL. The image is taken as given; size
// and type checks belong to the caller.
type SetItemImage struct {
	SectionID string
	ItemID    string
	DataURL   string
}

func (c SetItemImage) Apply(s State) (State, error) {
	if !s.Menu.SupportsImages() {
		return s, menu.ErrImageUnsupported
	}
	next := s.clone()
	si, ii, err := next.locate(c.SectionID, c.ItemID)
	if err != nil {
		return s, fmt.Errorf("%w: %s/%s", err, c.SectionID, c.ItemID)
	}
	img := c.DataURL
	next.Menu.Sections[si].Items[ii].Image = &img
	return next, nil
}

type ClearItemImage struct {
	SectionID string
	ItemID    string
}

func (c ClearItemImage) Apply(s State) (State, error) {
	next := s.clone()
	si, ii, err := next.locate(c.SectionID, c.ItemID)
	if err != nil {
		return s, fmt.Errorf("%w: %s/%s", err, c.SectionID, c.ItemID)
	}
	next.Menu.Sections[si].Items[ii].Image = nil
	return next, nil
}

type SetTitle struct {
	Title string
}

func (c SetTitle) Apply(s State) (State, error) {
	if s.Menu.Version != menu.V2 {
		return s, menu.ErrTitleUnsupported
	}
	next := s.clone()
	next.Menu.Title = c.Title
	return next, nil
}

// ImportMenu replaces the whole menu with a parsed menu file and rebases the
// counters past every imported id. Invalid input leaves the state unchanged.
type ImportMenu struct {
	Data []byte
}

func (c ImportMenu) Apply(s State) (State, error) {
	m, err := menu.Parse(c.Data)
	if err != nil {
		return s, err
	}
	next := State{Menu: m, IDs: s.IDs}
	next.IDs.Rebase(m)
	return next, nil
}

// UpgradeMenu converts a V1 menu to V2 in place. Already-V2 menus are untouched.
type UpgradeMenu struct{}

func (UpgradeMenu) Apply(s State) (State, error) {
	next := s.clone()
	next.Menu = next.Menu.Upgrade()
	return next, nil
}
