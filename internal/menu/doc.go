// Package menu owns the versioned payload model shared by the editor and the viewer.
//
// Two schema generations coexist permanently:
// - V1: a bare ordered array of sections
// - V2: a {title, sections} record whose items may carry an inline image
//
// Section and item order is display order and is never rearranged here.
package menu
