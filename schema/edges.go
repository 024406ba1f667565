package schema

// EdgeRecords derives the list of Edge metadata records for one
// entity type's relation fields (§4.1's edgeRecords(typeName, parsed)).
func EdgeRecords(typeName string, parsed ParsedSchema) []Edge {
	entity, ok := parsed[typeName]
	if !ok {
		return nil
	}

	edges := make([]Edge, 0, len(entity.Fields))
	for _, field := range entity.Fields {
		if !field.IsRelation {
			continue
		}
		edges = append(edges, Edge{
			From:        typeName,
			Name:        field.Name,
			To:          field.RelatedType,
			Inverse:     field.InverseName,
			Cardinality: cardinalityOf(parsed, typeName, field),
		})
	}
	return edges
}

// cardinalityOf infers an edge's cardinality from the two sides' array
// flags: this field's own IsArray, and its declared inverse's IsArray
// (when resolvable). An unresolvable inverse side defaults to treating
// the far side as singular (one-to-many for an array field, one-to-one
// for a scalar field) since the inverse was not injected (no backing
// type, per §4.1 step 2).
func cardinalityOf(parsed ParsedSchema, ownerType string, field ParsedField) Cardinality {
	farIsArray := false
	if field.InverseName != "" {
		if target, ok := parsed[field.RelatedType]; ok {
			if inverseField, ok := target.Field(field.InverseName); ok {
				farIsArray = inverseField.IsArray
			}
		}
	}

	switch {
	case field.IsArray && farIsArray:
		return ManyToMany
	case field.IsArray && !farIsArray:
		return OneToMany
	case !field.IsArray && farIsArray:
		return ManyToOne
	default:
		return OneToOne
	}
}
