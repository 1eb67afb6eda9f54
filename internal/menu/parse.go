package menu

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type rawItem struct {
	ID          *string `json:"id"`
	Name        string  `json:"name"`
	Price       string  `json:"price"`
	Description string  `json:"description"`
	Image       *string `json:"image"`
}

type rawSection struct {
	ID    *string     `json:"id"`
	Name  string      `json:"name"`
	Items *[]*rawItem `json:"items"`
}

type rawRecord struct {
	Title    *string        `json:"title"`
	Sections *[]*rawSection `json:"sections"`
}

// Parse validates an imported menu file and returns the model it describes.
// A top-level array is a V1 menu; an object is a V2 {title, sections} record.
// Any violation rejects the whole document with ErrInvalidSchema.
func Parse(data []byte) (Menu, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Menu{}, schemaError("document", fmt.Errorf("empty input"))
	}

	switch trimmed[0] {
	case '[':
		var sections []*rawSection
		if err := json.Unmarshal(trimmed, &sections); err != nil {
			return Menu{}, schemaError("document", err)
		}
		out, err := convertSections(sections)
		if err != nil {
			return Menu{}, err
		}
		return Menu{Version: V1, Sections: out}, nil
	case '{':
		var rec rawRecord
		if err := json.Unmarshal(trimmed, &rec); err != nil {
			return Menu{}, schemaError("document", err)
		}
		if rec.Sections == nil {
			return Menu{}, schemaError("sections", fmt.Errorf("missing sections array"))
		}
		out, err := convertSections(*rec.Sections)
		if err != nil {
			return Menu{}, err
		}
		m := Menu{Version: V2, Sections: out}
		if rec.Title != nil {
			m.Title = *rec.Title
		}
		return m, nil
	default:
		return Menu{}, schemaError("document", fmt.Errorf("expected array or object"))
	}
}

func convertSections(raw []*rawSection) ([]Section, error) {
	out := make([]Section, 0, len(raw))
	for i, rs := range raw {
		where := fmt.Sprintf("sections[%d]", i)
		if rs == nil {
			return nil, schemaError(where, fmt.Errorf("null section"))
		}
		if rs.ID == nil || *rs.ID == "" {
			return nil, schemaError(where+".id", fmt.Errorf("missing id"))
		}
		if rs.Items == nil {
			return nil, schemaError(where+".items", fmt.Errorf("missing items array"))
		}
		section := Section{ID: *rs.ID, Name: rs.Name, Items: make([]Item, 0, len(*rs.Items))}
		for j, ri := range *rs.Items {
			itemWhere := fmt.Sprintf("%s.items[%d]", where, j)
			if ri == nil {
				return nil, schemaError(itemWhere, fmt.Errorf("null item"))
			}
			if ri.ID == nil || *ri.ID == "" {
				return nil, schemaError(itemWhere+".id", fmt.Errorf("missing id"))
			}
			section.Items = append(section.Items, Item{
				ID:          *ri.ID,
				Name:        ri.Name,
				Price:       ri.Price,
				Description: ri.Description,
				Image:       ri.Image,
			})
		}
		out = append(out, section)
	}
	return out, nil
}
