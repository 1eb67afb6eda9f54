// Package link places menu tokens into shareable URLs and extracts them again.
package link

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Param is the key carrying the token in both the fragment and the query.
const Param = "data"

// DefaultViewerPath is resolved against the editor base to find the viewer page.
const DefaultViewerPath = "menu.html"

var (
	ErrNoToken          = errors.New("link: no 'data' parameter found in URL")
	ErrUnknownPlacement = errors.New("link: unknown token placement")
)

// Placement selects where the token lives in the URL.
type Placement string

const (
	// Query is the legacy V1 placement; the token reaches the server.
	Query Placement = "query"
	// Fragment keeps the token out of requests sent to the server.
	Fragment Placement = "fragment"
)

func ParsePlacement(raw string) (Placement, error) {
	switch Placement(strings.ToLower(strings.TrimSpace(raw))) {
	case Query:
		return Query, nil
	case Fragment, "":
		return Fragment, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPlacement, raw)
	}
}

// ViewerURL resolves the viewer page relative to the editor location.
func ViewerURL(editorBase, viewerPath string) (string, error) {
	if strings.TrimSpace(viewerPath) == "" {
		viewerPath = DefaultViewerPath
	}
	base, err := url.Parse(editorBase)
	if err != nil {
		return "", fmt.Errorf("link: parse base %q: %w", editorBase, err)
	}
	ref, err := url.Parse(viewerPath)
	if err != nil {
		return "", fmt.Errorf("link: parse viewer path %q: %w", viewerPath, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// Build appends token to viewer at placement. An empty token yields "".
func Build(viewer, token string, placement Placement) (string, error) {
	if token == "" {
		return "", nil
	}
	switch placement {
	case Query:
		return viewer + "?" + Param + "=" + token, nil
	case Fragment:
		return viewer + "#" + Param + "=" + token, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPlacement, placement)
	}
}

// Extract returns the token carried by raw. The fragment wins; the query is the
// fallback for legacy links. A value without a scheme or separators is treated as
// a bare token.
func Extract(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrNoToken
	}
	if !strings.ContainsAny(raw, "?#=/:") {
		return raw, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoToken, err)
	}
	if token := FromFragment(u.EscapedFragment()); token != "" {
		return token, nil
	}
	if token := u.Query().Get(Param); token != "" {
		return token, nil
	}
	return "", ErrNoToken
}

// FromFragment reads data= from a fragment such as "data=abc" or "#data=abc".
func FromFragment(fragment string) string {
	fragment = strings.TrimPrefix(fragment, "#")
	if fragment == "" {
		return ""
	}
	values, err := url.ParseQuery(fragment)
	if err != nil {
		return ""
	}
	return values.Get(Param)
}
