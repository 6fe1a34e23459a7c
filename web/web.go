// Package web embeds the landing page and its assets.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var content embed.FS

// Static returns the static assets rooted at the static directory.
func Static() fs.FS {
	sub, err := fs.Sub(content, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Index returns the landing page.
func Index() []byte {
	b, err := content.ReadFile("static/index.html")
	if err != nil {
		panic(err)
	}
	return b
}
