package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBiDirectionalInference is scenario S1: Post.author -> Author.posts
// with an injected inverse.
func TestBiDirectionalInference(t *testing.T) {
	raw := RawSchema{
		"Post": {
			"title":  "string",
			"author": "Author.posts",
		},
		"Author": {
			"name": "string",
		},
	}

	parsed, err := Parse(raw)
	require.NoError(t, err)

	author, ok := parsed["Author"]
	require.True(t, ok)

	posts, ok := author.Field("posts")
	require.True(t, ok)
	assert.True(t, posts.IsArray)
	assert.True(t, posts.IsRelation)
	assert.Equal(t, "Post", posts.RelatedType)
	assert.Equal(t, "author", posts.InverseName)
	assert.True(t, posts.Injected)
}

func TestExistingInverseIsNotOverwritten(t *testing.T) {
	raw := RawSchema{
		"Post": {
			"author": "Author.posts",
		},
		"Author": {
			"posts": []string{"Post"},
		},
	}

	parsed, err := Parse(raw)
	require.NoError(t, err)

	author := parsed["Author"]
	posts, ok := author.Field("posts")
	require.True(t, ok)
	assert.False(t, posts.Injected)
	assert.Empty(t, posts.InverseName)
}

func TestMissingTargetTypeIsNotAnError(t *testing.T) {
	raw := RawSchema{
		"Post": {
			"author": "Author.posts",
		},
	}

	parsed, err := Parse(raw)
	require.NoError(t, err)

	post := parsed["Post"]
	author, ok := post.Field("author")
	require.True(t, ok)
	assert.True(t, author.IsRelation)
	assert.Equal(t, "Author", author.RelatedType)
	_, hasAuthorType := parsed["Author"]
	assert.False(t, hasAuthorType)
}

func TestScalarFieldsAreParsed(t *testing.T) {
	raw := RawSchema{
		"Event": {
			"name":      "string",
			"startsAt":  "datetime?",
			"tags":      []string{"string"},
			"published": "boolean",
		},
	}

	parsed, err := Parse(raw)
	require.NoError(t, err)
	event := parsed["Event"]

	name, _ := event.Field("name")
	assert.Equal(t, "string", name.BaseType)
	assert.False(t, name.IsRelation)

	startsAt, _ := event.Field("startsAt")
	assert.True(t, startsAt.IsOptional)
	assert.Equal(t, "datetime", startsAt.BaseType)

	tags, _ := event.Field("tags")
	assert.True(t, tags.IsArray)
	assert.Equal(t, "string", tags.BaseType)
}

func TestBareRelationWithoutInverse(t *testing.T) {
	raw := RawSchema{
		"Comment": {"post": "Post"},
		"Post":    {"title": "string"},
	}

	parsed, err := Parse(raw)
	require.NoError(t, err)

	comment := parsed["Comment"]
	post, _ := comment.Field("post")
	assert.True(t, post.IsRelation)
	assert.Empty(t, post.InverseName)
	// No inverse injected on Post, since Comment.post declared none.
	assert.False(t, parsed["Post"].HasField("comment"))
	assert.False(t, parsed["Post"].HasField("comments"))
}

func TestIllFormedFieldDefinitionIsStaticError(t *testing.T) {
	raw := RawSchema{"Post": {"bad": ""}}
	_, err := Parse(raw)
	assert.Error(t, err)
}

func TestNounRecordInference(t *testing.T) {
	n := NounRecord("BlogPost", nil, nil)
	assert.Equal(t, "blog post", n.Singular)
	assert.Equal(t, "blog posts", n.Plural)
	assert.Equal(t, "blog-post", n.Slug)
	assert.Equal(t, "blog-posts", n.SlugPlural)

	box := NounRecord("Box", nil, nil)
	assert.Equal(t, "boxes", box.Plural)

	city := NounRecord("City", nil, nil)
	assert.Equal(t, "cities", city.Plural)

	person := NounRecord("Person", nil, nil)
	assert.Equal(t, "people", person.Plural)
}

func TestEdgeRecordsCardinality(t *testing.T) {
	raw := RawSchema{
		"Customer": {"address": "Address.customer"},
		"Address":  {"street": "string"},
	}
	parsed, err := Parse(raw)
	require.NoError(t, err)

	edges := EdgeRecords("Customer", parsed)
	require.Len(t, edges, 1)
	assert.Equal(t, ManyToOne, edges[0].Cardinality)

	addrEdges := EdgeRecords("Address", parsed)
	require.Len(t, addrEdges, 1)
	assert.Equal(t, OneToMany, addrEdges[0].Cardinality)
}

func TestConjugateKnownAndUnknownVerbs(t *testing.T) {
	_, act, activity := Conjugate("create")
	assert.Equal(t, "creates", act)
	assert.Equal(t, "creating", activity)

	_, act, activity = Conjugate("stop")
	assert.Equal(t, "stops", act)
	assert.Equal(t, "stopping", activity)

	_, act, activity = Conjugate("apply")
	assert.Equal(t, "applies", act)
	assert.Equal(t, "applying", activity)

	_, act, activity = Conjugate("bake")
	assert.Equal(t, "bakes", act)
	assert.Equal(t, "baking", activity)
}
