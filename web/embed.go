// Package web embeds the dashboard UI so the server binary ships as a
// single file.
package web

import "embed"

// TemplatesFS holds the HTML templates rendered server-side.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds the stylesheet and the Chart.js dashboard script.
//
//go:embed static/*
var StaticFS embed.FS
