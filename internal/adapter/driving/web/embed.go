package web

import "embed"

//go:generate go tool templ generate -path templates

// StaticFS holds the embedded static assets (CSS, JS, banner images).
//
//go:embed static/*
var StaticFS embed.FS

// contentFS holds the site metadata and the about page source.
//
//go:embed content/site.yaml content/about.md
var contentFS embed.FS
