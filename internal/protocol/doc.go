// Package protocol owns the menu link wire contract.
//
// Ownership boundary:
// - envelope shapes for both schema generations
// - the reversible JSON -> zlib -> base64 -> URL-safe token pipeline
// - decode-time version dispatch
//
// V1 payloads are a permanent variant, not a migration path: anything lacking the
// V2 marker decodes as V1.
package protocol
