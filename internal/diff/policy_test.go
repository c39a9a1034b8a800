package diff

import (
	"strings"

	"github.com/koustreak/datmig/internal/schema"
)

// testPolicy is a fully configurable Dialect for exercising the
// planner without depending on the real dialect packages.
type testPolicy struct {
	name                 string
	foldLower            bool
	ignoredPrefix        string
	enums                bool
	dropVariantInPlace   bool
	alterTypeInPlace     bool
	renameIndex          bool
	renameForeignKey     bool
	unnamedForeignKeys   bool
	inlineForeignKeys    bool
	redefineWithInbound  bool
	dropFKsOnDroppedTabs bool
	skipFKIndexes        bool
	tightenFKColumns     bool
	redefine             func(TableDiffer) bool
}

func (p *testPolicy) Name() string { return p.name }

func (p *testPolicy) FoldTableName(name string) string {
	if p.foldLower {
		return strings.ToLower(name)
	}
	return name
}

func (p *testPolicy) TableShouldBeIgnored(name string) bool {
	return p.ignoredPrefix != "" && strings.HasPrefix(name, p.ignoredPrefix)
}

func (p *testPolicy) SupportsEnums() bool               { return p.enums }
func (p *testPolicy) CanDropEnumVariantInPlace() bool   { return p.dropVariantInPlace }
func (p *testPolicy) CanAlterColumnTypeInPlace() bool   { return p.alterTypeInPlace }
func (p *testPolicy) CanRenameIndex() bool              { return p.renameIndex }
func (p *testPolicy) CanRenameForeignKey() bool         { return p.renameForeignKey }
func (p *testPolicy) HasUnnamedForeignKeys() bool       { return p.unnamedForeignKeys }
func (p *testPolicy) ForeignKeysInCreateTable() bool    { return p.inlineForeignKeys }
func (p *testPolicy) CanTightenForeignKeyColumns() bool { return p.tightenFKColumns }

func (p *testPolicy) CanRedefineTableWithInboundForeignKeys() bool { return p.redefineWithInbound }
func (p *testPolicy) ShouldDropForeignKeysOnDroppedTables() bool   { return p.dropFKsOnDroppedTabs }
func (p *testPolicy) ShouldSkipForeignKeyCoveringIndexes() bool    { return p.skipFKIndexes }

func (p *testPolicy) NeedsRedefinition(tables TableDiffer) bool {
	if p.redefine == nil {
		return false
	}
	return p.redefine(tables)
}

// looseLikePolicy resembles an engine that can alter anything in
// place: named keys, in-place type changes, renames, enums.
func looseLikePolicy() *testPolicy {
	return &testPolicy{
		name:                 "loose",
		enums:                true,
		alterTypeInPlace:     true,
		renameIndex:          true,
		renameForeignKey:     true,
		redefineWithInbound:  true,
		dropFKsOnDroppedTabs: true,
		tightenFKColumns:     true,
	}
}

// strictLikePolicy resembles an engine that cannot alter columns in
// place at all and rebuilds tables instead, with unnamed keys declared
// inside CREATE TABLE.
func strictLikePolicy() *testPolicy {
	p := &testPolicy{
		name:                "strict",
		foldLower:           true,
		unnamedForeignKeys:  true,
		inlineForeignKeys:   true,
		redefineWithInbound: true,
	}
	p.redefine = func(tables TableDiffer) bool {
		if tables.AnyColumnChanged() || tables.PrimaryKeyChanged() {
			return true
		}
		return len(tables.CreatedForeignKeys()) > 0 || len(tables.DroppedForeignKeys()) > 0
	}
	return p
}

func col(name string, family schema.ColumnFamily, native string) schema.Column {
	return schema.Column{
		Name: name,
		Type: schema.ColumnType{Family: family, Native: native, Arity: schema.Required},
	}
}

func nullableCol(name string, family schema.ColumnFamily, native string) schema.Column {
	c := col(name, family, native)
	c.Type.Arity = schema.Nullable
	return c
}

// usersSnapshot builds one table "users" with an integer primary key,
// a text column and a unique index on it.
func usersSnapshot() *schema.Snapshot {
	snap := schema.New()
	users := snap.AddTable("users")
	id := snap.AddColumn(users, col("id", schema.FamilyInt, "integer"))
	email := snap.AddColumn(users, col("email", schema.FamilyString, "text"))

	pk := snap.AddIndex(users, "users_pkey", schema.IndexPrimaryKey)
	snap.AddIndexColumn(pk, id, schema.SortAsc)

	uniq := snap.AddIndex(users, "users_email_key", schema.IndexUnique)
	snap.AddIndexColumn(uniq, email, schema.SortAsc)

	return snap
}

// usersAndPostsSnapshot builds the users table plus a "posts" table
// referencing users(id) through posts_author_fkey.
func usersAndPostsSnapshot() *schema.Snapshot {
	snap := schema.New()
	users := snap.AddTable("users")
	usersID := snap.AddColumn(users, col("id", schema.FamilyInt, "integer"))
	email := snap.AddColumn(users, col("email", schema.FamilyString, "text"))

	usersPK := snap.AddIndex(users, "users_pkey", schema.IndexPrimaryKey)
	snap.AddIndexColumn(usersPK, usersID, schema.SortAsc)

	uniq := snap.AddIndex(users, "users_email_key", schema.IndexUnique)
	snap.AddIndexColumn(uniq, email, schema.SortAsc)

	posts := snap.AddTable("posts")
	postsID := snap.AddColumn(posts, col("id", schema.FamilyInt, "integer"))
	author := snap.AddColumn(posts, col("author_id", schema.FamilyInt, "integer"))
	snap.AddColumn(posts, nullableCol("title", schema.FamilyString, "text"))

	postsPK := snap.AddIndex(posts, "posts_pkey", schema.IndexPrimaryKey)
	snap.AddIndexColumn(postsPK, postsID, schema.SortAsc)

	authorIdx := snap.AddIndex(posts, "posts_author_idx", schema.IndexNormal)
	snap.AddIndexColumn(authorIdx, author, schema.SortAsc)

	fk := snap.AddForeignKey(posts, users, "posts_author_fkey", schema.Cascade, schema.NoAction)
	snap.AddForeignKeyColumn(fk, author, usersID)

	return snap
}

func stepKinds(steps []Step) []StepKind {
	out := make([]StepKind, len(steps))
	for i, s := range steps {
		out[i] = s.Kind
	}
	return out
}

func findSteps(steps []Step, kind StepKind) []Step {
	var out []Step
	for _, s := range steps {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}
