package facade

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"graphfacade/bulk"
	"graphfacade/durable"
	"graphfacade/memprovider"
	"graphfacade/model"
	"graphfacade/provider"
	"graphfacade/query"
	"graphfacade/schema"
)

func testSchema() schema.RawSchema {
	return schema.RawSchema{
		"Author": {"name": "string", "posts": []any{"Post"}},
		"Post":   {"title": "string", "author": "Author"},
	}
}

func TestNewRejectsUnknownEntityType(t *testing.T) {
	db, err := New(testSchema(), memprovider.New())
	require.NoError(t, err)

	_, _, err = db.Get(context.Background(), "Unknown", "1")
	require.Error(t, err)
}

func TestCreateGetUpdateDeleteRoundTrip(t *testing.T) {
	db, err := New(testSchema(), memprovider.New())
	require.NoError(t, err)
	ctx := context.Background()

	created, err := db.Create(ctx, "Author", "", model.Flat{"name": "Ada"})
	require.NoError(t, err)
	id := created.ID()
	require.NotEmpty(t, id)

	got, found, err := db.Get(ctx, "Author", id)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "Ada", got["name"])

	updated, err := db.Update(ctx, "Author", id, model.Flat{"name": "Ada Lovelace"})
	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", updated["name"])

	deleted, err := db.Delete(ctx, "Author", id)
	require.NoError(t, err)
	require.True(t, deleted)

	_, found, err = db.Get(ctx, "Author", id)
	require.NoError(t, err)
	require.False(t, found)
}

func TestNounsAndEdgesReflectSchema(t *testing.T) {
	db, err := New(testSchema(), memprovider.New())
	require.NoError(t, err)

	nouns := db.Nouns()
	require.Equal(t, "authors", nouns["Author"].Plural)

	edges := db.Edges("Author")
	require.Len(t, edges, 1)
	require.Equal(t, "Post", edges[0].To)
}

func TestVerbsConjugatesBase(t *testing.T) {
	db, err := New(testSchema(), memprovider.New())
	require.NoError(t, err)

	action, act, activity := db.Verbs("process")
	require.Equal(t, "process", action)
	require.NotEmpty(t, act)
	require.NotEmpty(t, activity)
}

func TestQueryMapHydratesRelation(t *testing.T) {
	db, err := New(testSchema(), memprovider.New())
	require.NoError(t, err)
	ctx := context.Background()

	author, err := db.Create(ctx, "Author", "a1", model.Flat{"name": "Ada"})
	require.NoError(t, err)
	_, err = db.Create(ctx, "Post", "p1", model.Flat{"title": "Hello", "author": author.ID()})
	require.NoError(t, err)

	deferred := db.Query("Post", provider.ListOptions{}).Map(func(item query.ThingReader, _ int) any {
		return item.Get("author")
	})

	value, err := deferred.Resolve(ctx)
	require.NoError(t, err)
	results, ok := value.([]any)
	require.True(t, ok)
	require.Len(t, results, 1)
	authorBody, ok := results[0].(model.Flat)
	require.True(t, ok)
	require.Equal(t, "Ada", authorBody["name"])
}

func TestForEachAppliesWhereFilter(t *testing.T) {
	db, err := New(testSchema(), memprovider.New())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = db.Create(ctx, "Author", "a1", model.Flat{"name": "Ada", "active": true})
	require.NoError(t, err)
	_, err = db.Create(ctx, "Author", "a2", model.Flat{"name": "Bob", "active": false})
	require.NoError(t, err)

	var seen []string
	result, err := db.ForEach(ctx, "Author", func(_ context.Context, item any, _ int) (any, error) {
		seen = append(seen, item.(model.Flat).ID())
		return nil, nil
	}, ForEachOptions{Where: map[string]any{"active": true}})
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	require.Equal(t, []string{"a1"}, seen)
}

func TestForEachPersistsUnderDefaultActionName(t *testing.T) {
	p := memprovider.New()
	db, err := New(testSchema(), p)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = db.Create(ctx, "Author", "a1", model.Flat{"name": "Ada"})
	require.NoError(t, err)

	result, err := db.ForEach(ctx, "Author", func(context.Context, any, int) (any, error) {
		return nil, nil
	}, ForEachOptions{Options: bulk.Options{Persist: true}})
	require.NoError(t, err)
	require.NotEmpty(t, result.ActionID)

	action, found, err := p.GetAction(ctx, result.ActionID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "Author.forEach", action.Object)
}

func TestDurableMirrorsActionThroughFacade(t *testing.T) {
	db, err := New(testSchema(), memprovider.New())
	require.NoError(t, err)
	ctx := context.Background()

	promise, err := db.Durable(ctx, durable.Options{
		Method:   "things.create",
		Executor: func(context.Context) (any, error) { return "ok", nil },
	})
	require.NoError(t, err)
	value, err := promise.Await(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", value)
}

func TestSemanticSearchUsesProviderWhenImplemented(t *testing.T) {
	db, err := New(testSchema(), memprovider.New())
	require.NoError(t, err)

	_, err = db.SemanticSearch(context.Background(), "Author", "ada", provider.SearchOptions{})
	require.NoError(t, err) // memprovider implements semantic search
}
