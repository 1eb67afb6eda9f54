package protocol

import (
	"github.com/danmuck/menuqr/internal/menu"
	"github.com/danmuck/menuqr/internal/provenance"
)

// WireVersion2 is the explicit version tag carried by V2 envelopes.
const WireVersion2 = 2

// Envelope is the decoded wire payload: a menu of either generation plus the
// provenance metadata issued with it. The discriminant is Menu.Version.
type Envelope struct {
	Menu menu.Menu
	Meta provenance.Metadata
}

func NewEnvelope(m menu.Menu, meta provenance.Metadata) Envelope {
	return Envelope{Menu: m, Meta: meta}
}

func (e Envelope) Version() menu.Version {
	return e.Menu.Version
}

type wireV1 struct {
	Menu []menu.Section       `json:"menu"`
	Meta *provenance.Metadata `json:"meta,omitempty"`
}

type wireMenuV2 struct {
	Title    string         `json:"title"`
	Sections []menu.Section `json:"sections"`
}

type wireV2 struct {
	V    int                  `json:"v"`
	Menu wireMenuV2           `json:"menu"`
	Meta *provenance.Metadata `json:"meta,omitempty"`
}

func toWire(e Envelope) (any, error) {
	m := e.Menu.Clone()
	var meta *provenance.Metadata
	if !e.Meta.IsZero() {
		copied := e.Meta
		meta = &copied
	}
	switch m.Version {
	case menu.V1:
		return wireV1{Menu: m.Sections, Meta: meta}, nil
	case menu.V2:
		return wireV2{
			V:    WireVersion2,
			Menu: wireMenuV2{Title: m.Title, Sections: m.Sections},
			Meta: meta,
		}, nil
	default:
		return nil, menu.ErrUnknownVersion
	}
}
