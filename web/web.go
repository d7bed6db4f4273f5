// Package web embeds the browser UI served at /.
package web

import _ "embed"

//go:embed index.html
var Index []byte
