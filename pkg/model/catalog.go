package model

import "slices"

// Catalog is an immutable snapshot of packages in display order.
// A refresh builds a new Catalog instead of mutating an existing one.
type Catalog struct {
	packages []Package
	byName   map[string]int
}

// NewCatalog builds a snapshot from packages, keeping their order. When two
// packages share a name the first one wins lookups.
func NewCatalog(packages []Package) *Catalog {
	c := &Catalog{
		packages: make([]Package, len(packages)),
		byName:   make(map[string]int, len(packages)),
	}
	for i, p := range packages {
		c.packages[i] = p.clone()
		if _, dup := c.byName[p.Name]; !dup {
			c.byName[p.Name] = i
		}
	}
	return c
}

// Len returns the number of packages; a nil catalog is empty.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.packages)
}

// At returns the package at display position i.
func (c *Catalog) At(i int) (Package, bool) {
	if c == nil || i < 0 || i >= len(c.packages) {
		return Package{}, false
	}
	return c.packages[i].clone(), true
}

// Lookup finds a package by name.
func (c *Catalog) Lookup(name string) (Package, bool) {
	if c == nil {
		return Package{}, false
	}
	i, ok := c.byName[name]
	if !ok {
		return Package{}, false
	}
	return c.packages[i].clone(), true
}

// Packages returns a copy of the packages in display order.
func (c *Catalog) Packages() []Package {
	if c == nil {
		return nil
	}
	out := make([]Package, len(c.packages))
	for i, p := range c.packages {
		out[i] = p.clone()
	}
	return out
}

// clone detaches p from the snapshot's backing arrays.
func (p Package) clone() Package {
	p.Dependencies = slices.Clone(p.Dependencies)
	return p
}

// Names returns package names in display order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, len(c.packages))
	for i, p := range c.packages {
		names[i] = p.Name
	}
	return names
}
