package scenario

import (
	_ "embed"
	"sync"
)

//go:embed builtin.yaml
var builtinSource []byte

var builtin = &lazyCatalog{source: builtinSource, name: "builtin.yaml"}

// lazyCatalog parses source on first use and keeps the outcome, error
// included, for every later call.
type lazyCatalog struct {
	source []byte
	name   string

	once    sync.Once
	catalog *Catalog
	err     error
}

func (l *lazyCatalog) get() *Catalog {
	l.once.Do(func() {
		l.catalog, l.err = ParseCatalog(l.source, l.name)
	})
	if l.err != nil {
		panic(l.err)
	}
	return l.catalog
}

// Builtin returns the catalog shipped with the binary.
// It panics on every call if the embedded catalog is invalid.
func Builtin() *Catalog {
	return builtin.get()
}
