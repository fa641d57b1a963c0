package relations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rikeda71/drizzle-docs-generator-sub000/internal/parser"
	"github.com/rikeda71/drizzle-docs-generator-sub000/internal/sdl"
)

// loadLegacy evaluates schema source and statically extracts its
// relations() calls, mirroring the engine's per-file flow.
func loadLegacy(t *testing.T, src string) ([]*sdl.Table, map[string]string, []parser.ParsedRelation) {
	t.Helper()
	l := sdl.NewLoader(sdl.DialectPostgres)
	require.NoError(t, l.LoadFile("schema.star", []byte(src)))
	parsed, err := parser.ExtractRelationCalls("schema.star", []byte(src))
	require.NoError(t, err)
	res := l.Result()
	return res.Tables, res.TableIdents, parsed
}

func TestLegacyAdapter_ManyToOne(t *testing.T) {
	tables, idents, parsed := loadLegacy(t, `
users = table("users", {"id": integer("id").primary_key()})
posts = table("posts", {
    "id": integer("id").primary_key(),
    "authorId": integer("author_id"),
})
posts_relations = relations(posts, lambda r: {
    "author": r.one(users, fields=[posts.authorId], references=[users.id]),
})
users_relations = relations(users, lambda r: {
    "posts": r.many(posts),
})
`)

	rels, err := NewLegacyAdapter(tables, idents, parsed).Extract()
	require.NoError(t, err)
	require.Len(t, rels, 1)

	rel := rels[0]
	assert.Equal(t, "posts", rel.SourceTable)
	assert.Equal(t, []string{"author_id"}, rel.SourceColumns, "property names translate to database names")
	assert.Equal(t, "users", rel.TargetTable)
	assert.Equal(t, []string{"id"}, rel.TargetColumns)
	assert.Equal(t, ManyToOne, rel.Cardinality)
}

func TestLegacyAdapter_OneToOne(t *testing.T) {
	tables, idents, parsed := loadLegacy(t, `
users = table("users", {
    "id": integer("id").primary_key(),
    "profile_id": integer("profile_id"),
})
profiles = table("profiles", {"id": integer("id").primary_key()})
users_relations = relations(users, lambda r: {
    "profile": r.one(profiles, fields=[users.profile_id], references=[profiles.id]),
})
profiles_relations = relations(profiles, lambda r: {
    "user": r.one(users, fields=[profiles.id], references=[users.profile_id]),
})
`)

	rels, err := NewLegacyAdapter(tables, idents, parsed).Extract()
	require.NoError(t, err)
	require.Len(t, rels, 1, "bidirectional declarations collapse to one record")
	assert.Equal(t, OneToOne, rels[0].Cardinality)
}

func TestLegacyAdapter_UnresolvedIdentifierSkipped(t *testing.T) {
	tables, idents, parsed := loadLegacy(t, `
posts = table("posts", {
    "id": integer("id"),
    "author_id": integer("author_id"),
})
`)
	parsed = append(parsed, parser.ParsedRelation{
		SourceTable:     "posts",
		TargetTable:     "users",
		Kind:            parser.KindSingle,
		JoinFromColumns: []string{"author_id"},
		JoinToColumns:   []string{"id"},
	})

	rels, err := NewLegacyAdapter(tables, idents, parsed).Extract()
	require.NoError(t, err)
	assert.Empty(t, rels, "relation to an undeclared table is dropped")
}

func TestLegacyAdapter_UnmappedPropertyPassesThrough(t *testing.T) {
	tables, idents, parsed := loadLegacy(t, `
users = table("users", {"id": integer("id")})
posts = table("posts", {"id": integer("id")})
`)
	parsed = append(parsed, parser.ParsedRelation{
		SourceTable:     "posts",
		TargetTable:     "users",
		Kind:            parser.KindSingle,
		JoinFromColumns: []string{"ghost_col"},
		JoinToColumns:   []string{"id"},
	})

	rels, err := NewLegacyAdapter(tables, idents, parsed).Extract()
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, []string{"ghost_col"}, rels[0].SourceColumns)
}

func TestLegacyAdapter_MultiNeverEmits(t *testing.T) {
	tables, idents, parsed := loadLegacy(t, `
users = table("users", {"id": integer("id")})
posts = table("posts", {"author_id": integer("author_id")})
users_relations = relations(users, lambda r: {
    "posts": r.many(posts),
})
`)

	rels, err := NewLegacyAdapter(tables, idents, parsed).Extract()
	require.NoError(t, err)
	assert.Empty(t, rels)
}

func TestLegacyAdapter_DuplicateDeclarationDeduped(t *testing.T) {
	tables, idents, parsed := loadLegacy(t, `
users = table("users", {"id": integer("id")})
posts = table("posts", {"author_id": integer("author_id")})
posts_relations = relations(posts, lambda r: {
    "author": r.one(users, fields=[posts.author_id], references=[users.id]),
    "writer": r.one(users, fields=[posts.author_id], references=[users.id]),
})
`)

	rels, err := NewLegacyAdapter(tables, idents, parsed).Extract()
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, ManyToOne, rels[0].Cardinality)
}

func TestLegacyAdapter_CompositeReversedOrderNotMatched(t *testing.T) {
	tables, idents, parsed := loadLegacy(t, `
a = table("a", {"x": integer("x"), "y": integer("y")})
b = table("b", {"x": integer("x"), "y": integer("y")})
a_relations = relations(a, lambda r: {
    "to_b": r.one(b, fields=[a.x, a.y], references=[b.x, b.y]),
})
b_relations = relations(b, lambda r: {
    "to_a": r.one(a, fields=[b.y, b.x], references=[a.y, a.x]),
})
`)

	rels, err := NewLegacyAdapter(tables, idents, parsed).Extract()
	require.NoError(t, err)
	require.Len(t, rels, 2, "column order differs, so the pairings stay separate")
	for _, rel := range rels {
		assert.Equal(t, ManyToOne, rel.Cardinality)
	}
}
