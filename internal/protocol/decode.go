package protocol

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"errors"
	"io"
	"strings"
)

// MaxInflatedSize bounds decompressed payloads; links never legitimately get near it.
const MaxInflatedSize = 8 << 20

var errInflatedTooLarge = errors.New("inflated payload exceeds limit")

// Decode reverses Encode. Every failure is a *CorruptLinkError.
func Decode(token string) (Envelope, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Envelope{}, corrupt(StepRestore, ErrEmptyToken)
	}
	compressed, err := base64.StdEncoding.DecodeString(Restore(token))
	if err != nil {
		return Envelope{}, corrupt(StepBase64, err)
	}
	payload, err := Inflate(compressed)
	if err != nil {
		return Envelope{}, corrupt(StepInflate, err)
	}
	env, err := Dispatch(payload)
	if err != nil {
		return Envelope{}, corrupt(StepParse, err)
	}
	return env, nil
}

var restorer = strings.NewReplacer("-", "+", "_", "/")

// Restore maps the URL-safe alphabet back to standard base64 and re-appends
// (4 - len%4) % 4 padding characters.
func Restore(token string) string {
	std := restorer.Replace(token)
	if pad := (4 - len(std)%4) % 4; pad > 0 {
		std += strings.Repeat("=", pad)
	}
	return std
}

// Inflate decompresses a zlib stream produced by Compress.
func Inflate(compressed []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, MaxInflatedSize+1))
	if err != nil {
		return nil, err
	}
	if len(out) > MaxInflatedSize {
		return nil, errInflatedTooLarge
	}
	return out, nil
}
