// Package viewer serves decoded menus over HTTP.
//
// Fragment links never reach the server, so GET /menu only renders legacy
// query links. The JSON API decodes any link or token, issues new links, and
// keeps the state of one preview surface.
package viewer
