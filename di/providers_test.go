package di

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"graphfacade/model"
	"graphfacade/schema"
)

func TestInitializeContainerWiresADatabase(t *testing.T) {
	container, err := InitializeContainer(schema.RawSchema{
		"Author": {"name": "string"},
	})
	require.NoError(t, err)
	require.NotNil(t, container.Database)
	require.NotNil(t, container.Provider)
	require.NotNil(t, container.Logger)
	require.Contains(t, container.Schema, "Author")

	created, err := container.Database.Create(context.Background(), "Author", "", model.Flat{"name": "Ada"})
	require.NoError(t, err)
	require.Equal(t, "Ada", created["name"])
}
