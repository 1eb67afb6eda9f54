package menu

import (
	"bytes"
	"encoding/json"
)

// ExportFileName is the name offered for downloaded menu files.
const ExportFileName = "menu.json"

// Export renders the in-memory model as pretty-printed JSON.
// V1 menus export as a bare section array, V2 as {title, sections}.
func Export(m Menu) ([]byte, error) {
	if len(m.Sections) == 0 {
		return nil, ErrEmptyMenu
	}
	compact, err := m.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
