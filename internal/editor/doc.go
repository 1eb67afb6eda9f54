// Package editor holds the menu being edited as explicit state, applies pure
// commands to it, and republishes the shareable link after every change.
//
// Publishes run concurrently. Each one is sequenced and cancels its
// predecessor; a completed result is applied only when it is newer than the
// last applied one, so a slow early publish can never overwrite a later link.
package editor
