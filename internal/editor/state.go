package editor

import (
	"errors"

	"github.com/danmuck/menuqr/internal/ids"
	"github.com/danmuck/menuqr/internal/menu"
)

var (
	ErrSectionNotFound = errors.New("editor: section not found")
	ErrItemNotFound    = errors.New("editor: item not found")
	ErrUnknownField    = errors.New("editor: unknown item field")
)

// State is everything the editor owns: the menu and the id counters.
type State struct {
	Menu menu.Menu
	IDs  ids.Allocator
}

// NewState returns an empty menu of the given generation with fresh counters.
func NewState(version menu.Version) (State, error) {
	switch version {
	case menu.V1:
		return State{Menu: menu.NewV1(), IDs: ids.New()}, nil
	case menu.V2:
		return State{Menu: menu.NewV2(""), IDs: ids.New()}, nil
	default:
		return State{}, menu.ErrUnknownVersion
	}
}

func (s State) clone() State {
	return State{Menu: s.Menu.Clone(), IDs: s.IDs}
}

// locate returns the section and item positions in s, failing on stale ids.
func (s State) locate(sectionID, itemID string) (int, int, error) {
	si := s.Menu.SectionIndex(sectionID)
	if si < 0 {
		return -1, -1, ErrSectionNotFound
	}
	if itemID == "" {
		return si, -1, nil
	}
	ii := s.Menu.Sections[si].ItemIndex(itemID)
	if ii < 0 {
		return si, -1, ErrItemNotFound
	}
	return si, ii, nil
}
