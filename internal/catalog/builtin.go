package catalog

import (
	"context"
	"embed"
	"io/fs"
)

//go:embed data/*.yaml
var builtinFS embed.FS

// BuiltIn returns the embedded catalog of common compounds and reactions.
func BuiltIn() fs.FS {
	sub, err := fs.Sub(builtinFS, "data")
	if err != nil {
		panic(err) // embedded path is fixed at compile time
	}
	return sub
}

// LoadBuiltIn loads the embedded catalog.
func (c *Catalog) LoadBuiltIn(ctx context.Context) (Report, error) {
	return c.LoadFS(ctx, BuiltIn(), SourceBuiltIn)
}
