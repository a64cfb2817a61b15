// Package web embeds the HTML templates and static assets served by the
// shipment cost server.
package web

import "embed"

//go:embed templates/*.html static/*
var FS embed.FS
