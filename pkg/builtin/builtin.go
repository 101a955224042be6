// Package builtin ships the embedded starter skills. They are served at the
// lowest discovery precedence, so any skill of the same name on disk
// shadows its builtin counterpart.
package builtin

import (
	"embed"
	"io/fs"
)

//go:embed skills
var embedded embed.FS

// FS returns the builtin skill bundle rooted at the skill directories.
func FS() fs.FS {
	sub, err := fs.Sub(embedded, "skills")
	if err != nil {
		// The embed path is fixed at compile time; this cannot fail at runtime.
		panic(err)
	}
	return sub
}

// Names returns the names of the builtin skills.
func Names() ([]string, error) {
	entries, err := fs.ReadDir(FS(), ".")
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}
