// Package web embeds the single-page chat UI served at the server root.
package web

import _ "embed"

//go:embed index.html
var IndexHTML []byte
