// Package catalog describes the resources a query can target: their tables,
// primary keys and relations.
//
// Catalogs are written in CUE:
//
//	resource: posts: {
//		table: "posts"
//		relations: {
//			comments: {kind: "has_many", foreign_key: "post_id"}
//			author:   {kind: "belongs_to", table: "users", foreign_key: "user_id"}
//			tags: {
//				kind:          "many_to_many"
//				pivot:         "post_tags"
//				pivot_local:   "post_id"
//				pivot_foreign: "tag_id"
//			}
//		}
//	}
//
// Table names default to the resource or relation name; keys default to "id".
package catalog

import (
	"fmt"
	"regexp"
	"sort"
)

// Kind is the cardinality of a relation.
type Kind string

const (
	HasMany    Kind = "has_many"
	HasOne     Kind = "has_one"
	BelongsTo  Kind = "belongs_to"
	ManyToMany Kind = "many_to_many"
)

// Valid reports whether k is a known relation kind.
func (k Kind) Valid() bool {
	switch k {
	case HasMany, HasOne, BelongsTo, ManyToMany:
		return true
	}
	return false
}

// Many reports whether the relation loads a list rather than one row.
func (k Kind) Many() bool {
	return k == HasMany || k == ManyToMany
}

// DefaultKey is the primary key column used when none is declared.
const DefaultKey = "id"

// Relation links a parent resource to related rows.
type Relation struct {
	Name  string `json:"name"`
	Kind  Kind   `json:"kind"`
	Table string `json:"table"`

	// Key is the related table's primary key.
	Key string `json:"key"`

	// ForeignKey is the related table's column for has_many and has_one,
	// and the parent table's column for belongs_to.
	ForeignKey string `json:"foreign_key,omitempty"`

	// LocalKey is the parent column referenced by has_many, has_one and
	// many_to_many. Defaults to the parent key.
	LocalKey string `json:"local_key,omitempty"`

	// OwnerKey is the related column a belongs_to foreign key points at.
	// Defaults to Key.
	OwnerKey string `json:"owner_key,omitempty"`

	Pivot        string `json:"pivot,omitempty"`
	PivotLocal   string `json:"pivot_local,omitempty"`
	PivotForeign string `json:"pivot_foreign,omitempty"`
}

// Link returns the parent column whose values select related rows, and the
// related-side column (qualified) they are matched against.
//
// For many_to_many the related side is the pivot's local column.
func (r Relation) Link() (parentColumn, relatedColumn string) {
	switch r.Kind {
	case BelongsTo:
		return r.ForeignKey, r.Table + "." + r.OwnerKey
	case ManyToMany:
		return r.LocalKey, r.Pivot + "." + r.PivotLocal
	default:
		return r.LocalKey, r.Table + "." + r.ForeignKey
	}
}

// Resource is one queryable table.
type Resource struct {
	Name      string              `json:"name"`
	Table     string              `json:"table"`
	Key       string              `json:"key"`
	Relations map[string]Relation `json:"relations,omitempty"`
}

// Relation looks up a relation by name.
func (r *Resource) Relation(name string) (Relation, bool) {
	rel, ok := r.Relations[name]
	return rel, ok
}

// Catalog is the set of known resources, keyed by name.
type Catalog struct {
	Resources map[string]*Resource
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{Resources: make(map[string]*Resource)}
}

// Lookup returns the named resource.
func (c *Catalog) Lookup(name string) (*Resource, bool) {
	if c == nil {
		return nil, false
	}
	r, ok := c.Resources[name]
	return r, ok
}

// Names returns resource names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Resources))
	for name := range c.Resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Add registers a resource, filling defaults and validating identifiers.
func (c *Catalog) Add(r *Resource) error {
	if r.Table == "" {
		r.Table = r.Name
	}
	if r.Key == "" {
		r.Key = DefaultKey
	}
	for _, id := range []string{r.Name, r.Table, r.Key} {
		if !IsIdentifier(id) {
			return fmt.Errorf("resource %q: invalid identifier %q", r.Name, id)
		}
	}

	names := make([]string, 0, len(r.Relations))
	for name := range r.Relations {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rel := r.Relations[name]
		rel.Name = name
		if err := r.complete(&rel); err != nil {
			return err
		}
		r.Relations[name] = rel
	}

	c.Resources[r.Name] = r
	return nil
}

func (r *Resource) complete(rel *Relation) error {
	if !rel.Kind.Valid() {
		return fmt.Errorf("relation %s.%s: unknown kind %q", r.Name, rel.Name, rel.Kind)
	}
	if rel.Table == "" {
		rel.Table = rel.Name
	}
	if rel.Key == "" {
		rel.Key = DefaultKey
	}
	if rel.LocalKey == "" {
		rel.LocalKey = r.Key
	}
	if rel.OwnerKey == "" {
		rel.OwnerKey = rel.Key
	}

	required := []string{rel.Name, rel.Table, rel.Key, rel.LocalKey, rel.OwnerKey}
	switch rel.Kind {
	case ManyToMany:
		required = append(required, rel.Pivot, rel.PivotLocal, rel.PivotForeign)
	default:
		required = append(required, rel.ForeignKey)
	}
	for _, id := range required {
		if id == "" {
			return fmt.Errorf("relation %s.%s: missing required field for %s", r.Name, rel.Name, rel.Kind)
		}
		if !IsIdentifier(id) {
			return fmt.Errorf("relation %s.%s: invalid identifier %q", r.Name, rel.Name, id)
		}
	}
	return nil
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsIdentifier reports whether s is a plain SQL identifier.
func IsIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}
