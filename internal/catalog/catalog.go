// Package catalog holds the fixed set of surplus-food packages that can be
// ordered.  The catalog is defined at process start and never mutated, so a
// single value can safely be shared between all requests.  Prices live here
// and only here: client-supplied prices are never trusted.
package catalog

// Entry describes one orderable package.  Prices are stored in euro cents
// to avoid floating point money arithmetic.
type Entry struct {
	ID         string // stable package identifier used by clients
	Name       string // display name snapshotted onto orders
	PriceCents int64  // unit price in cents
}

// Catalog maps package identifiers to their entries.  It is a plain value
// type; handlers receive it by injection rather than reading a global.
type Catalog struct {
	entries map[string]Entry
}

// New builds a catalog from the given entries.  Later duplicates of the
// same ID overwrite earlier ones.
func New(entries ...Entry) Catalog {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		m[e.ID] = e
	}
	return Catalog{entries: m}
}

// Default returns the production catalog.  The set mirrors what the shop
// actually sells; adding a package means adding a line here.
func Default() Catalog {
	return New(
		Entry{ID: "fresh", Name: "Cerstve pecivo", PriceCents: 1000},
		Entry{ID: "fruit", Name: "Ovocny box", PriceCents: 1000},
		Entry{ID: "pastry", Name: "Cukrarsky vyber", PriceCents: 1000},
		Entry{ID: "surprise", Name: "Surprise box", PriceCents: 800},
	)
}

// Lookup resolves a package ID.  The second return value reports whether
// the package exists.
func (c Catalog) Lookup(id string) (Entry, bool) {
	e, ok := c.entries[id]
	return e, ok
}

// Len returns the number of packages in the catalog.
func (c Catalog) Len() int { return len(c.entries) }
