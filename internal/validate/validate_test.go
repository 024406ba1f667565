package validate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypeNameAcceptsExportedIdentifierShape(t *testing.T) {
	require.NoError(t, TypeName("Author"))
	require.NoError(t, TypeName("BlogPost"))
}

func TestTypeNameRejectsLowercaseOrEmpty(t *testing.T) {
	require.Error(t, TypeName("author"))
	require.Error(t, TypeName(""))
	require.Error(t, TypeName("Author Name"))
}

func TestEntityIDRejectsReservedAndPathLike(t *testing.T) {
	require.NoError(t, EntityID("abc-123"))
	require.Error(t, EntityID(""))
	require.Error(t, EntityID("$id"))
	require.Error(t, EntityID("a/b"))
	require.Error(t, EntityID("has space"))
}

func TestFieldNameAndVerbBaseAcceptCamelCase(t *testing.T) {
	require.NoError(t, FieldName("createdAt"))
	require.Error(t, FieldName("CreatedAt"))
	require.NoError(t, VerbBase("process"))
	require.Error(t, VerbBase(""))
}

type taggedExample struct {
	Type string `validate:"required,typename"`
	ID   string `validate:"required,entityid"`
}

func TestStructValidatesRegisteredTags(t *testing.T) {
	require.NoError(t, Struct(taggedExample{Type: "Author", ID: "a1"}))

	err := Struct(taggedExample{Type: "author", ID: "a1"})
	require.Error(t, err)
}
