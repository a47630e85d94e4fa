// Package web embeds the static assets for the transform UI.
package web

import "embed"

//go:embed index.html
var Content embed.FS
