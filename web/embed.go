package web

import (
	"embed"
	"io/fs"
)

//go:embed dist/*
var content embed.FS

// Assets returns the canvas page (index.html, app.js, styles.css) as an fs.FS
func Assets() (fs.FS, error) {
	return fs.Sub(content, "dist")
}
