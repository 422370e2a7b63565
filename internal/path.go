package internal

import (
	"io/fs"
	"path"
	"strings"
)

func ValidPath(name string) bool {
	if strings.Contains(name, "\\") {
		return false
	}

	return fs.ValidPath(name)
}

// StripQuery removes any fragment and query string from name.
func StripQuery(name string) string {
	name, _, _ = strings.Cut(name, "#")
	name, _, _ = strings.Cut(name, "?")

	return name
}

// Ext returns the extension of name (without the leading dot), ignoring any
// query string or fragment. An empty string is returned when there is none.
func Ext(name string) string {
	return strings.TrimPrefix(path.Ext(StripQuery(name)), ".")
}
