package protocol

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/danmuck/menuqr/internal/menu"
	"github.com/danmuck/menuqr/internal/provenance"
)

var errEmptyPayload = errors.New("empty payload")

type envelopeProbe struct {
	V    json.RawMessage      `json:"v"`
	Menu json.RawMessage      `json:"menu"`
	Meta *provenance.Metadata `json:"meta"`
}

type menuV2Probe struct {
	Title    *string         `json:"title"`
	Sections *[]menu.Section `json:"sections"`
}

// Dispatch interprets a parsed payload as V2 only when it carries v == 2 and a
// nested {title, sections} menu. Everything else is V1: the menu field, or the
// whole value when there is no menu field, is read as a section array.
func Dispatch(payload []byte) (Envelope, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Envelope{}, errEmptyPayload
	}
	if trimmed[0] == '[' {
		sections, err := decodeSections(trimmed)
		if err != nil {
			return Envelope{}, err
		}
		return Envelope{Menu: menu.Menu{Version: menu.V1, Sections: sections}}, nil
	}

	var probe envelopeProbe
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return Envelope{}, err
	}
	var meta provenance.Metadata
	if probe.Meta != nil {
		meta = *probe.Meta
	}

	if isVersion2(probe.V) {
		if m, ok := decodeMenuV2(probe.Menu); ok {
			return Envelope{Menu: m, Meta: meta}, nil
		}
	}

	body := probe.Menu
	if isAbsent(body) {
		body = trimmed
	}
	sections, err := decodeSections(body)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Menu: menu.Menu{Version: menu.V1, Sections: sections}, Meta: meta}, nil
}

func isVersion2(raw json.RawMessage) bool {
	if isAbsent(raw) {
		return false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	return v == WireVersion2
}

func decodeMenuV2(raw json.RawMessage) (menu.Menu, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return menu.Menu{}, false
	}
	var probe menuV2Probe
	if err := json.Unmarshal(trimmed, &probe); err != nil || probe.Sections == nil {
		return menu.Menu{}, false
	}
	m := menu.Menu{Version: menu.V2, Sections: normalize(*probe.Sections)}
	if probe.Title != nil {
		m.Title = *probe.Title
	}
	return m, true
}

func decodeSections(raw []byte) ([]menu.Section, error) {
	var sections []menu.Section
	if err := json.Unmarshal(raw, &sections); err != nil {
		return nil, err
	}
	return normalize(sections), nil
}

func normalize(sections []menu.Section) []menu.Section {
	if sections == nil {
		return []menu.Section{}
	}
	for i := range sections {
		if sections[i].Items == nil {
			sections[i].Items = []menu.Item{}
		}
	}
	return sections
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
