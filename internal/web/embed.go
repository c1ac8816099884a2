package web

import "embed"

// content holds the page templates and static assets.
//
//go:embed templates static
var content embed.FS
