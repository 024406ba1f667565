package schema

import (
	"sort"
	"strings"

	apperrors "graphfacade/errors"
)

// Parse resolves a RawSchema into a ParsedSchema: primary pass
// tokenizes every field definition, then an inverse pass injects
// missing bi-directional backrefs (§4.1, algorithm steps 1-2).
//
// A relation pointing to a missing type produces the relation without
// an injected inverse — not an error, to allow forward references and
// partial schemas.
func Parse(raw RawSchema) (ParsedSchema, error) {
	parsed := make(ParsedSchema, len(raw))

	// Primary pass.
	for typeName, rawEntity := range raw {
		entity := &ParsedEntity{Name: typeName}
		fieldNames := make([]string, 0, len(rawEntity))
		for name := range rawEntity {
			fieldNames = append(fieldNames, name)
		}
		sort.Strings(fieldNames)

		for _, name := range fieldNames {
			field, err := parseFieldDef(name, rawEntity[name])
			if err != nil {
				return nil, err
			}
			entity.addField(field)
		}
		parsed[typeName] = entity
	}

	// Inverse pass: for every relation with a declared inverse, inject
	// an array backref on the target type unless it already defines
	// that field.
	for _, entity := range parsed {
		for _, field := range entity.Fields {
			if !field.IsRelation || field.InverseName == "" || field.Injected {
				continue
			}
			target, ok := parsed[field.RelatedType]
			if !ok {
				continue // forward/missing reference: not an error
			}
			if target.HasField(field.InverseName) {
				continue // caller already defined it
			}
			target.addField(ParsedField{
				Name:        field.InverseName,
				BaseType:    entity.Name,
				IsArray:     true,
				IsRelation:  true,
				RelatedType: entity.Name,
				InverseName: field.Name,
				Injected:    true,
			})
		}
	}

	return parsed, nil
}

// parseFieldDef tokenizes one field definition per §4.1 step 1:
// strip trailing "?" (optional), strip trailing "[]" or unwrap a
// one-element list (array), recognize a single "." splitting
// "relatedType.inverseName". A bare base token whose first character
// is uppercase and which is not a primitive is a relation without an
// inverse.
func parseFieldDef(name string, raw RawFieldDef) (ParsedField, error) {
	var def string
	isArray := false

	switch v := raw.(type) {
	case string:
		def = v
	case []string:
		if len(v) != 1 {
			return ParsedField{}, apperrors.NewInputError("array field definition must have exactly one element").WithType(name)
		}
		def = v[0]
		isArray = true
	case []any:
		if len(v) != 1 {
			return ParsedField{}, apperrors.NewInputError("array field definition must have exactly one element").WithType(name)
		}
		s, ok := v[0].(string)
		if !ok {
			return ParsedField{}, apperrors.NewInputError("array field definition element must be a string").WithType(name)
		}
		def = s
		isArray = true
	default:
		return ParsedField{}, apperrors.NewInputError("field definition must be a string or one-element list").WithType(name)
	}

	if def == "" {
		return ParsedField{}, apperrors.NewInputError("field definition cannot be empty").WithType(name)
	}

	isOptional := false
	if strings.HasSuffix(def, "?") {
		isOptional = true
		def = strings.TrimSuffix(def, "?")
	}

	if strings.HasSuffix(def, "[]") {
		isArray = true
		def = strings.TrimSuffix(def, "[]")
	}

	if def == "" {
		return ParsedField{}, apperrors.NewInputError("field definition base cannot be empty").WithType(name)
	}

	relatedType, inverseName := "", ""
	base := def
	if idx := strings.IndexByte(def, '.'); idx >= 0 {
		relatedType = def[:idx]
		inverseName = def[idx+1:]
		if relatedType == "" || inverseName == "" || strings.Contains(inverseName, ".") {
			return ParsedField{}, apperrors.NewInputError("relation definition must be TargetType.inverseName").WithType(name)
		}
		base = relatedType
	}

	if IsPrimitive(base) {
		if relatedType != "" {
			return ParsedField{}, apperrors.NewInputError("primitive type cannot declare an inverse").WithType(name)
		}
		return ParsedField{
			Name:       name,
			BaseType:   base,
			IsArray:    isArray,
			IsOptional: isOptional,
		}, nil
	}

	// Non-primitive base: a relation, with or without an inverse.
	if relatedType == "" {
		relatedType = base
	}
	return ParsedField{
		Name:        name,
		BaseType:    relatedType,
		IsArray:     isArray,
		IsOptional:  isOptional,
		IsRelation:  true,
		RelatedType: relatedType,
		InverseName: inverseName,
	}, nil
}
