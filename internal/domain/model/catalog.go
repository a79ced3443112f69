package model

// Catalog is an immutable, ordered set of catalog entries indexed by the
// folded title. Iteration order is the order titles were first seen.
type Catalog struct {
	entries []CatalogEntry
	keys    []entryKeys // folded title and genre, parallel to entries
	index   map[string]int
}

type entryKeys struct {
	title string
	genre string
}

// NewCatalog builds a Catalog from entries. A later entry whose title folds
// to an existing key replaces that entry in place.
func NewCatalog(entries ...CatalogEntry) *Catalog {
	c := &Catalog{
		entries: make([]CatalogEntry, 0, len(entries)),
		keys:    make([]entryKeys, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		k := entryKeys{title: Key(e.Title), genre: Key(e.Genre)}
		if i, ok := c.index[k.title]; ok {
			c.entries[i] = e
			c.keys[i] = k
			continue
		}
		c.index[k.title] = len(c.entries)
		c.entries = append(c.entries, e)
		c.keys = append(c.keys, k)
	}
	return c
}

// Len returns the number of distinct movies. Safe on a nil Catalog.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Entries returns a copy of the entries in catalog order.
func (c *Catalog) Entries() []CatalogEntry {
	if c == nil {
		return nil
	}
	out := make([]CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Lookup finds an entry by title, ignoring case.
func (c *Catalog) Lookup(title string) (CatalogEntry, bool) {
	e, _, ok := c.LookupKey(Key(title))
	return e, ok
}

// LookupKey finds an entry by an already folded title and also returns the
// entry's folded genre.
func (c *Catalog) LookupKey(titleKey string) (CatalogEntry, string, bool) {
	if c == nil {
		return CatalogEntry{}, "", false
	}
	i, ok := c.index[titleKey]
	if !ok {
		return CatalogEntry{}, "", false
	}
	return c.entries[i], c.keys[i].genre, true
}

// Each calls fn for every entry in catalog order without copying.
func (c *Catalog) Each(fn func(CatalogEntry)) {
	if c == nil {
		return
	}
	for _, e := range c.entries {
		fn(e)
	}
}

// EachKeyed is Each with the entry's folded title and genre.
func (c *Catalog) EachKeyed(fn func(e CatalogEntry, titleKey, genreKey string)) {
	if c == nil {
		return
	}
	for i, e := range c.entries {
		fn(e, c.keys[i].title, c.keys[i].genre)
	}
}
