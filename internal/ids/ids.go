// Package ids issues section and item identifiers of the form "<kind>-<ordinal>".
package ids

import (
	"strconv"
	"strings"

	"github.com/danmuck/menuqr/internal/menu"
)

const (
	SectionPrefix = "section"
	ItemPrefix    = "item"
)

// Allocator holds the next ordinal for each kind. The zero value is not ready;
// use New.
type Allocator struct {
	NextSection int
	NextItem    int
}

func New() Allocator {
	return Allocator{NextSection: 1, NextItem: 1}
}

// Section returns the next section id and advances the counter.
func (a *Allocator) Section() string {
	id := format(SectionPrefix, a.NextSection)
	a.NextSection++
	return id
}

// Item returns the next item id and advances the counter.
func (a *Allocator) Item() string {
	id := format(ItemPrefix, a.NextItem)
	a.NextItem++
	return id
}

// Rebase resets both counters to one past the highest ordinal present in m,
// so ids issued afterwards never collide with imported ones.
func (a *Allocator) Rebase(m menu.Menu) {
	maxSection, maxItem := 0, 0
	for _, s := range m.Sections {
		if n := Ordinal(s.ID); n > maxSection {
			maxSection = n
		}
		for _, item := range s.Items {
			if n := Ordinal(item.ID); n > maxItem {
				maxItem = n
			}
		}
	}
	a.NextSection = maxSection + 1
	a.NextItem = maxItem + 1
}

// Ordinal parses the leading digits of the segment after the first '-'.
// Ids without that segment, or without leading digits, count as 0.
func Ordinal(id string) int {
	_, rest, ok := strings.Cut(id, "-")
	if !ok {
		return 0
	}
	if seg, _, found := strings.Cut(rest, "-"); found {
		rest = seg
	}
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(rest[:end])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func format(prefix string, ordinal int) string {
	return prefix + "-" + strconv.Itoa(ordinal)
}
