// Package schema implements the declarative schema parser and
// bi-directional relation resolver: §4.1 of the core. Grounded in the
// teacher's domain/core/aggregates/graph.go, which hand-rolls a single
// Node/Edge cardinality pair; this package generalizes that into an
// arbitrary multi-type schema with inferred inverses, noun metadata,
// and verb conjugation.
package schema

import "fmt"

// RawFieldDef is one field definition as authored in a declarative
// schema: either a string literal (see field-definition grammar in
// Parse) or a one-element slice acting as that string's array form.
type RawFieldDef = any

// RawEntitySchema maps field name to its raw definition.
type RawEntitySchema map[string]RawFieldDef

// RawSchema maps entity-type name to its raw entity schema. This is
// the caller-declared input to Parse.
type RawSchema map[string]RawEntitySchema

// primitiveTypes are the scalar base types a field definition can
// name; anything else is interpreted as a relation target type.
var primitiveTypes = map[string]bool{
	"string":   true,
	"number":   true,
	"boolean":  true,
	"date":     true,
	"datetime": true,
	"json":     true,
	"markdown": true,
	"url":      true,
}

// IsPrimitive reports whether base names a scalar type.
func IsPrimitive(base string) bool { return primitiveTypes[base] }

// ParsedField is one resolved field of an entity.
type ParsedField struct {
	Name         string
	BaseType     string // scalar primitive, or the related entity type name
	IsArray      bool
	IsOptional   bool
	IsRelation   bool
	RelatedType  string // == BaseType when IsRelation; kept separate for clarity
	InverseName  string // empty if the relation declared no inverse
	// Injected marks a field that was synthesized by the inverse pass
	// rather than authored by the caller.
	Injected bool
}

// ParsedEntity is one resolved entity type: an ordered list of
// resolved fields (authored fields in field-name order, since Go map
// iteration order is not stable, followed by any fields the inverse
// pass injected) plus a name-indexed lookup.
type ParsedEntity struct {
	Name   string
	Fields []ParsedField

	byName map[string]int
}

// Field looks up a field by name, returning (field, true) if present.
func (e *ParsedEntity) Field(name string) (ParsedField, bool) {
	if e.byName == nil {
		return ParsedField{}, false
	}
	idx, ok := e.byName[name]
	if !ok {
		return ParsedField{}, false
	}
	return e.Fields[idx], true
}

// HasField reports whether the entity defines (or was injected) name.
func (e *ParsedEntity) HasField(name string) bool {
	_, ok := e.Field(name)
	return ok
}

func (e *ParsedEntity) addField(f ParsedField) {
	if e.byName == nil {
		e.byName = make(map[string]int)
	}
	if idx, exists := e.byName[f.Name]; exists {
		e.Fields[idx] = f
		return
	}
	e.byName[f.Name] = len(e.Fields)
	e.Fields = append(e.Fields, f)
}

// ParsedSchema is the fully resolved schema: type name -> ParsedEntity.
type ParsedSchema map[string]*ParsedEntity

// Cardinality classifies a relation edge by the multiplicity on each
// side.
type Cardinality string

const (
	OneToOne   Cardinality = "one-to-one"
	OneToMany  Cardinality = "one-to-many"
	ManyToOne  Cardinality = "many-to-one"
	ManyToMany Cardinality = "many-to-many"
)

// Edge is a metadata record for one relation between two types.
type Edge struct {
	From        string
	Name        string
	To          string
	Inverse     string
	Cardinality Cardinality
}

// Noun is inferred entity-type metadata: singular/plural English
// forms, URL-safe slugs, and default action/event lists.
type Noun struct {
	Type       string
	Singular   string
	Plural     string
	Slug       string
	SlugPlural string
	Actions    []string
	Events     []string
}

func (e *ParsedField) String() string {
	s := e.BaseType
	if e.IsRelation && e.InverseName != "" {
		s = fmt.Sprintf("%s.%s", e.RelatedType, e.InverseName)
	}
	if e.IsArray {
		s += "[]"
	}
	if e.IsOptional {
		s += "?"
	}
	return s
}
