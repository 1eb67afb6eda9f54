package protocol

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/json"
	"strings"
)

// Encode turns env into a URL-safe token. An empty menu yields "" and no
// envelope is built.
func Encode(env Envelope) (string, error) {
	if env.Menu.IsEmpty() {
		return "", nil
	}
	payload, err := Marshal(env)
	if err != nil {
		return "", err
	}
	compressed, err := Compress(payload)
	if err != nil {
		return "", err
	}
	return Sanitize(base64.StdEncoding.EncodeToString(compressed)), nil
}

// Marshal writes the canonical JSON form of env: no HTML escaping, no trailing newline.
func Marshal(env Envelope) ([]byte, error) {
	wire, err := toWire(env)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(wire); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Compress deflates payload with the zlib wrapper at the default level.
func Compress(payload []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(payload); err != nil {
		_ = zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var sanitizer = strings.NewReplacer("+", "-", "/", "_")

// Sanitize maps standard base64 onto the URL-safe alphabet and strips padding.
func Sanitize(std string) string {
	return strings.TrimRight(sanitizer.Replace(std), "=")
}
