// Package model holds the core's runtime data shapes: Thing (the
// generic entity record), the relation graph's addressing, and the
// Event/Action/Artifact records the provider contract persists.
//
// Grounded in the teacher's domain/core/entities/node.go (a rich
// aggregate with id/type/metadata/timestamps/version) generalized from
// one hard-coded entity into the spec's arbitrary-typed Thing.
package model

import (
	"sort"
	"strings"
)

// Reserved flat-shape keys.
const (
	KeyID      = "$id"
	KeyType    = "$type"
	KeyContext = "$context"
)

// Flat is the wire/storage shape of a Thing: reserved keys prefixed
// with "$" plus arbitrary caller data at the top level.
type Flat map[string]any

// Expanded is the isomorphic, field-separated shape of a Thing.
type Expanded struct {
	ID      string
	Type    string
	Context string
	Data    map[string]any
	// Content holds the distinguished string payload, if present. It
	// is mirrored into Data["content"] so that ToFlat can round-trip
	// it without the caller needing to special-case it.
	Content *string
}

// ToExpanded splits a Flat thing into its Expanded shape. Reserved
// keys ($id, $type, $context) become named fields; everything else
// becomes Data. A "content" key, if its value is a string, is also
// lifted into Content.
func ToExpanded(f Flat) Expanded {
	e := Expanded{Data: make(map[string]any, len(f))}
	for k, v := range f {
		switch k {
		case KeyID:
			if s, ok := v.(string); ok {
				e.ID = s
			}
		case KeyType:
			if s, ok := v.(string); ok {
				e.Type = s
			}
		case KeyContext:
			if s, ok := v.(string); ok {
				e.Context = s
			}
		default:
			e.Data[k] = v
		}
	}
	if raw, ok := e.Data["content"]; ok {
		if s, ok := raw.(string); ok {
			e.Content = &s
		}
	}
	return e
}

// ToFlat collapses an Expanded thing back into its Flat shape. The
// invariant ToFlat(ToExpanded(x)) == x holds for any Flat x whose
// "content" key, if present, is a string.
func ToFlat(e Expanded) Flat {
	f := make(Flat, len(e.Data)+3)
	for k, v := range e.Data {
		f[k] = v
	}
	if e.Content != nil {
		f["content"] = *e.Content
	}
	if e.ID != "" {
		f[KeyID] = e.ID
	}
	if e.Type != "" {
		f[KeyType] = e.Type
	}
	if e.Context != "" {
		f[KeyContext] = e.Context
	}
	return f
}

// Clone returns a shallow copy of f, safe to mutate without aliasing
// the caller's map.
func (f Flat) Clone() Flat {
	out := make(Flat, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// ID returns the thing's $id, or "" if absent.
func (f Flat) ID() string {
	s, _ := f[KeyID].(string)
	return s
}

// Type returns the thing's $type, or "" if absent.
func (f Flat) Type() string {
	s, _ := f[KeyType].(string)
	return s
}

// SortedKeys returns f's data keys (excluding reserved $-keys) in
// deterministic order, used by the lexical/semantic search text
// serialization.
func (f Flat) SortedKeys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		if strings.HasPrefix(k, "$") {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
