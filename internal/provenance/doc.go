// Package provenance embeds an encrypted record of the caller's network address
// into every issued link.
//
// The AES key is derived from the creation timestamp, and that timestamp travels
// in clear text inside the same envelope. Anyone holding a link can recover the
// address. This is a forensic marker, not a confidentiality or security control.
// The constants below are wire contract: changing any of them breaks inspection
// of links that were already issued.
package provenance
