// Package web holds the static pages served by the linkage flow.
package web

import _ "embed"

//go:embed home.html
var HomeHTML []byte
