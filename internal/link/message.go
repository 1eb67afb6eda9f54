package link

import (
	"errors"
	"fmt"
)

// MessageLoadMenu is the only message type a preview surface acts on.
const MessageLoadMenu = "loadMenu"

var ErrUnknownMessage = errors.New("link: unknown preview message")

// PreviewMessage notifies an embedded preview surface of a freshly issued link.
type PreviewMessage struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

func NewPreviewMessage(url string) PreviewMessage {
	return PreviewMessage{Type: MessageLoadMenu, URL: url}
}

func (m PreviewMessage) Validate() error {
	if m.Type != MessageLoadMenu {
		return fmt.Errorf("%w: %q", ErrUnknownMessage, m.Type)
	}
	return nil
}
