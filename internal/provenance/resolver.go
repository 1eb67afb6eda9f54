package provenance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultLookupURL = "https://api.ipify.org?format=json"
	// Sentinel replaces the address whenever the lookup fails.
	Sentinel = "ip_not_available"

	defaultLookupTimeout = 5 * time.Second
	maxLookupBody        = 4 << 10
)

var ErrNetworkUnavailable = errors.New("provenance: network unavailable")

// Resolver reports the caller's public address.
type Resolver interface {
	Lookup(ctx context.Context) (string, error)
}

// HTTPResolver asks a "what is my IP" endpoint answering {"ip": "..."}.
// It performs exactly one request per call and never retries.
type HTTPResolver struct {
	URL    string
	Client *http.Client
}

func NewHTTPResolver(url string, timeout time.Duration) *HTTPResolver {
	if strings.TrimSpace(url) == "" {
		url = DefaultLookupURL
	}
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	return &HTTPResolver{URL: url, Client: &http.Client{Timeout: timeout}}
}

func (r *HTTPResolver) Lookup(ctx context.Context) (string, error) {
	client := r.Client
	if client == nil {
		client = &http.Client{Timeout: defaultLookupTimeout}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetworkUnavailable, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetworkUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d", ErrNetworkUnavailable, resp.StatusCode)
	}
	var body struct {
		IP string `json:"ip"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxLookupBody)).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrNetworkUnavailable, err)
	}
	ip := strings.TrimSpace(body.IP)
	if ip == "" {
		return "", fmt.Errorf("%w: empty address", ErrNetworkUnavailable)
	}
	return ip, nil
}

// StaticResolver returns a fixed address, e.g. the client address of an HTTP request.
type StaticResolver string

func (s StaticResolver) Lookup(context.Context) (string, error) {
	if strings.TrimSpace(string(s)) == "" {
		return "", ErrNetworkUnavailable
	}
	return string(s), nil
}
