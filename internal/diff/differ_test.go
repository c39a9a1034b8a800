package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/datmig/internal/schema"
)

func TestCalculateSteps_IdenticalSnapshots(t *testing.T) {
	previous := usersAndPostsSnapshot()
	next := usersAndPostsSnapshot()

	steps := CalculateSteps(NewPair(previous, next), looseLikePolicy())
	assert.Empty(t, steps)
}

func TestCalculateSteps_CreateTableWithIndexAndForeignKey(t *testing.T) {
	steps := CalculateSteps(NewPair(usersSnapshot(), usersAndPostsSnapshot()), looseLikePolicy())

	require.Equal(t, []StepKind{StepCreateTable, StepCreateIndex, StepAddForeignKey}, stepKinds(steps))

	create := steps[0].CreateTable
	assert.Equal(t, "posts", create.Table.Name)
	assert.Len(t, create.Table.Columns, 3)
	require.NotNil(t, create.Table.PrimaryKey)
	assert.Equal(t, []string{"id"}, create.Table.PrimaryKey.Columns)
	assert.Empty(t, create.Table.ForeignKeys, "keys go through separate steps on this dialect")

	index := steps[1].CreateIndex.Index
	assert.Equal(t, "posts_author_idx", index.Name)
	assert.Equal(t, "posts", index.Table)

	fk := steps[2].AddForeignKey.ForeignKey
	assert.Equal(t, "posts_author_fkey", fk.ConstraintName)
	assert.Equal(t, []string{"author_id"}, fk.Columns)
	assert.Equal(t, "users", fk.ReferencedTable)
	assert.Equal(t, []string{"id"}, fk.ReferencedColumns)
	assert.Equal(t, schema.Cascade, fk.OnDelete)
}

func TestCalculateSteps_DropTableDropsItsForeignKeysFirst(t *testing.T) {
	steps := CalculateSteps(NewPair(usersAndPostsSnapshot(), usersSnapshot()), looseLikePolicy())

	require.Equal(t, []StepKind{StepDropForeignKey, StepDropTable}, stepKinds(steps))
	assert.Equal(t, "posts_author_fkey", steps[0].DropForeignKey.ConstraintName)
	assert.Equal(t, "posts", steps[1].DropTable.Name)
}

func TestCalculateSteps_DropPhasesKeysThenIndexesThenTables(t *testing.T) {
	next := schema.New()
	users := next.AddTable("users")
	id := next.AddColumn(users, col("id", schema.FamilyInt, "integer"))
	next.AddColumn(users, col("email", schema.FamilyString, "text"))
	pk := next.AddIndex(users, "users_pkey", schema.IndexPrimaryKey)
	next.AddIndexColumn(pk, id, schema.SortAsc)

	// posts goes away entirely; surviving users additionally loses its
	// unique index. The posts foreign key must be gone before either.
	steps := CalculateSteps(NewPair(usersAndPostsSnapshot(), next), looseLikePolicy())
	require.Equal(t, []StepKind{StepDropForeignKey, StepDropIndex, StepDropTable}, stepKinds(steps))
	assert.Equal(t, "posts_author_fkey", steps[0].DropForeignKey.ConstraintName)
	assert.Equal(t, "users_email_key", steps[1].DropIndex.Name)
	assert.Equal(t, "users", steps[1].DropIndex.Table)
	assert.Equal(t, "posts", steps[2].DropTable.Name)
}

func TestCalculateSteps_DroppedTableKeysStayWhenDialectCascades(t *testing.T) {
	policy := looseLikePolicy()
	policy.dropFKsOnDroppedTabs = false

	steps := CalculateSteps(NewPair(usersAndPostsSnapshot(), usersSnapshot()), policy)
	require.Equal(t, []StepKind{StepDropTable}, stepKinds(steps))
}

func TestCalculateSteps_AlterTableChangeOrder(t *testing.T) {
	previous := schema.New()
	prevAccounts := previous.AddTable("accounts")
	prevID := previous.AddColumn(prevAccounts, col("id", schema.FamilyInt, "integer"))
	previous.AddColumn(prevAccounts, col("legacy", schema.FamilyString, "text"))
	previous.AddColumn(prevAccounts, col("count", schema.FamilyInt, "integer"))
	prevPK := previous.AddIndex(prevAccounts, "accounts_pkey", schema.IndexPrimaryKey)
	previous.AddIndexColumn(prevPK, prevID, schema.SortAsc)

	next := schema.New()
	nextAccounts := next.AddTable("accounts")
	nextID := next.AddColumn(nextAccounts, col("id", schema.FamilyInt, "integer"))
	org := next.AddColumn(nextAccounts, col("org", schema.FamilyInt, "integer"))
	next.AddColumn(nextAccounts, col("count", schema.FamilyBigInt, "bigint"))
	nextPK := next.AddIndex(nextAccounts, "accounts_pkey", schema.IndexPrimaryKey)
	next.AddIndexColumn(nextPK, nextID, schema.SortAsc)
	next.AddIndexColumn(nextPK, org, schema.SortAsc)

	steps := CalculateSteps(NewPair(previous, next), looseLikePolicy())
	require.Equal(t, []StepKind{StepAlterTable}, stepKinds(steps))

	alter := steps[0].AlterTable
	assert.Equal(t, "accounts", alter.Table)

	kinds := make([]TableChangeKind, len(alter.Changes))
	for i, c := range alter.Changes {
		kinds[i] = c.Kind
	}
	require.Equal(t, []TableChangeKind{
		ChangeDropPrimaryKey,
		ChangeDropColumn,
		ChangeAddColumn,
		ChangeAlterColumn,
		ChangeAddPrimaryKey,
	}, kinds)

	assert.Equal(t, "accounts_pkey", alter.Changes[0].DropPrimaryKey.Name)
	assert.Equal(t, "legacy", alter.Changes[1].DropColumn.Name)
	assert.Equal(t, "org", alter.Changes[2].AddColumn.Column.Name)

	altered := alter.Changes[3].AlterColumn
	assert.Equal(t, "count", altered.Name)
	assert.True(t, altered.TypeChanged)
	assert.False(t, altered.ArityChanged)
	assert.Equal(t, "integer", altered.Previous.Native)
	assert.Equal(t, "bigint", altered.Next.Native)

	assert.Equal(t, []string{"id", "org"}, alter.Changes[4].AddPrimaryKey.Key.Columns)
}

func TestCalculateSteps_GainedColumnAltersInsteadOfCreating(t *testing.T) {
	build := func(withName bool) *schema.Snapshot {
		snap := schema.New()
		users := snap.AddTable("users")
		id := snap.AddColumn(users, col("id", schema.FamilyInt, "integer"))
		if withName {
			snap.AddColumn(users, col("name", schema.FamilyString, "text"))
		}
		pk := snap.AddIndex(users, "users_pkey", schema.IndexPrimaryKey)
		snap.AddIndexColumn(pk, id, schema.SortAsc)
		return snap
	}

	steps := CalculateSteps(NewPair(build(false), build(true)), looseLikePolicy())
	require.Equal(t, []StepKind{StepAlterTable}, stepKinds(steps),
		"a paired table never turns into a create")

	alter := steps[0].AlterTable
	assert.Equal(t, "users", alter.Table)
	require.Len(t, alter.Changes, 1)
	require.Equal(t, ChangeAddColumn, alter.Changes[0].Kind)
	added := alter.Changes[0].AddColumn.Column
	assert.Equal(t, "name", added.Name)
	assert.Equal(t, schema.Required, added.Type.Arity)
}

func TestCalculateSteps_CreatedTablesInDependencyOrder(t *testing.T) {
	next := schema.New()

	comments := next.AddTable("comments")
	next.AddColumn(comments, col("id", schema.FamilyInt, "integer"))
	commentsPost := next.AddColumn(comments, col("post_id", schema.FamilyInt, "integer"))

	posts := next.AddTable("posts")
	postsID := next.AddColumn(posts, col("id", schema.FamilyInt, "integer"))
	postsAuthor := next.AddColumn(posts, col("author_id", schema.FamilyInt, "integer"))

	users := next.AddTable("users")
	usersID := next.AddColumn(users, col("id", schema.FamilyInt, "integer"))

	fkComments := next.AddForeignKey(comments, posts, "comments_post_fkey", schema.Cascade, schema.NoAction)
	next.AddForeignKeyColumn(fkComments, commentsPost, postsID)
	fkPosts := next.AddForeignKey(posts, users, "posts_author_fkey", schema.Cascade, schema.NoAction)
	next.AddForeignKeyColumn(fkPosts, postsAuthor, usersID)

	steps := CalculateSteps(NewPair(schema.New(), next), looseLikePolicy())

	var created []string
	for _, s := range findSteps(steps, StepCreateTable) {
		created = append(created, s.CreateTable.Table.Name)
	}
	assert.Equal(t, []string{"users", "posts", "comments"}, created,
		"referenced tables come before referencing ones")
}

func TestCalculateSteps_CreatedTableCycleFallsBackToNameOrder(t *testing.T) {
	next := schema.New()

	a := next.AddTable("b_side")
	aID := next.AddColumn(a, col("id", schema.FamilyInt, "integer"))
	aRef := next.AddColumn(a, nullableCol("peer_id", schema.FamilyInt, "integer"))

	b := next.AddTable("a_side")
	bID := next.AddColumn(b, col("id", schema.FamilyInt, "integer"))
	bRef := next.AddColumn(b, nullableCol("peer_id", schema.FamilyInt, "integer"))

	fkA := next.AddForeignKey(a, b, "b_side_peer_fkey", schema.SetNull, schema.NoAction)
	next.AddForeignKeyColumn(fkA, aRef, bID)
	fkB := next.AddForeignKey(b, a, "a_side_peer_fkey", schema.SetNull, schema.NoAction)
	next.AddForeignKeyColumn(fkB, bRef, aID)

	steps := CalculateSteps(NewPair(schema.New(), next), looseLikePolicy())

	var created []string
	for _, s := range findSteps(steps, StepCreateTable) {
		created = append(created, s.CreateTable.Table.Name)
	}
	assert.Equal(t, []string{"a_side", "b_side"}, created)
}

func TestCalculateSteps_RenameIndexCapability(t *testing.T) {
	build := func(indexName string) *schema.Snapshot {
		snap := schema.New()
		users := snap.AddTable("users")
		snap.AddColumn(users, col("id", schema.FamilyInt, "integer"))
		email := snap.AddColumn(users, col("email", schema.FamilyString, "text"))
		idx := snap.AddIndex(users, indexName, schema.IndexNormal)
		snap.AddIndexColumn(idx, email, schema.SortAsc)
		return snap
	}
	previous := build("users_email_idx")
	next := build("users_email_key")

	renaming := looseLikePolicy()
	steps := CalculateSteps(NewPair(previous, next), renaming)
	require.Equal(t, []StepKind{StepRenameIndex}, stepKinds(steps))
	assert.Equal(t, "users_email_idx", steps[0].RenameIndex.From)
	assert.Equal(t, "users_email_key", steps[0].RenameIndex.To)

	recreating := looseLikePolicy()
	recreating.renameIndex = false
	steps = CalculateSteps(NewPair(previous, next), recreating)
	require.Equal(t, []StepKind{StepDropIndex, StepCreateIndex}, stepKinds(steps))
	assert.Equal(t, "users_email_idx", steps[0].DropIndex.Name)
	assert.Equal(t, "users_email_key", steps[1].CreateIndex.Index.Name)
}

func TestCalculateSteps_RenameForeignKeyCapability(t *testing.T) {
	build := func(constraintName string) *schema.Snapshot {
		snap := schema.New()
		users := snap.AddTable("users")
		usersID := snap.AddColumn(users, col("id", schema.FamilyInt, "integer"))
		posts := snap.AddTable("posts")
		author := snap.AddColumn(posts, col("author_id", schema.FamilyInt, "integer"))
		fk := snap.AddForeignKey(posts, users, constraintName, schema.Cascade, schema.NoAction)
		snap.AddForeignKeyColumn(fk, author, usersID)
		return snap
	}
	previous := build("posts_author_fkey")
	next := build("fk_posts_author")

	renaming := looseLikePolicy()
	steps := CalculateSteps(NewPair(previous, next), renaming)
	require.Equal(t, []StepKind{StepRenameForeignKey}, stepKinds(steps))
	assert.Equal(t, "posts_author_fkey", steps[0].RenameForeignKey.From)
	assert.Equal(t, "fk_posts_author", steps[0].RenameForeignKey.To)

	recreating := looseLikePolicy()
	recreating.renameForeignKey = false
	steps = CalculateSteps(NewPair(previous, next), recreating)
	require.Equal(t, []StepKind{StepDropForeignKey, StepAddForeignKey}, stepKinds(steps))
}

func TestCalculateSteps_AlterEnumCarriesColumnUses(t *testing.T) {
	build := func(variants []string) *schema.Snapshot {
		snap := schema.New()
		role := snap.AddEnum("role")
		for _, v := range variants {
			snap.AddEnumVariant(role, v)
		}
		users := snap.AddTable("users")
		snap.AddColumn(users, col("id", schema.FamilyInt, "integer"))
		snap.AddColumn(users, schema.Column{
			Name: "role",
			Type: schema.ColumnType{
				Family: schema.FamilyEnum,
				Native: "role",
				Arity:  schema.Required,
				Enum:   role,
			},
			Default: schema.LiteralDefault("user"),
		})
		return snap
	}
	previous := build([]string{"admin", "user", "guest"})
	next := build([]string{"admin", "user"})

	steps := CalculateSteps(NewPair(previous, next), looseLikePolicy())
	require.Equal(t, []StepKind{StepAlterEnum}, stepKinds(steps))

	alter := steps[0].AlterEnum
	assert.Equal(t, "role", alter.Name)
	assert.Empty(t, alter.CreatedVariants)
	assert.Equal(t, []string{"guest"}, alter.DroppedVariants)
	assert.Equal(t, []string{"admin", "user"}, alter.NextVariants)

	require.Len(t, alter.Uses, 1)
	assert.Equal(t, "users", alter.Uses[0].Table)
	assert.Equal(t, "role", alter.Uses[0].Column)
	require.NotNil(t, alter.Uses[0].NextDefault)
	assert.Equal(t, "user", alter.Uses[0].NextDefault.Value)
}

func TestCalculateSteps_AddedVariantsOnlySkipColumnUses(t *testing.T) {
	build := func(variants []string) *schema.Snapshot {
		snap := schema.New()
		role := snap.AddEnum("role")
		for _, v := range variants {
			snap.AddEnumVariant(role, v)
		}
		return snap
	}
	previous := build([]string{"admin"})
	next := build([]string{"admin", "user"})

	steps := CalculateSteps(NewPair(previous, next), looseLikePolicy())
	require.Equal(t, []StepKind{StepAlterEnum}, stepKinds(steps))
	assert.Equal(t, []string{"user"}, steps[0].AlterEnum.CreatedVariants)
	assert.Empty(t, steps[0].AlterEnum.Uses)
}

func TestCalculateSteps_VariantSwapIsOneAlterEnum(t *testing.T) {
	build := func(variants ...string) *schema.Snapshot {
		snap := schema.New()
		color := snap.AddEnum("color")
		for _, v := range variants {
			snap.AddEnumVariant(color, v)
		}
		return snap
	}

	steps := CalculateSteps(NewPair(build("red", "green"), build("green", "blue")), looseLikePolicy())
	require.Equal(t, []StepKind{StepAlterEnum}, stepKinds(steps),
		"a name-matched enum alters; it is never dropped and recreated")

	alter := steps[0].AlterEnum
	assert.Equal(t, "color", alter.Name)
	assert.Equal(t, []string{"blue"}, alter.CreatedVariants)
	assert.Equal(t, []string{"red"}, alter.DroppedVariants)
	assert.Equal(t, []string{"green", "blue"}, alter.NextVariants)
}

func TestCalculateSteps_RedefinesInsteadOfAltering(t *testing.T) {
	previous := usersAndPostsSnapshot()

	// Same shape as the previous snapshot, except title becomes varchar.
	next := schema.New()
	users := next.AddTable("users")
	usersID := next.AddColumn(users, col("id", schema.FamilyInt, "integer"))
	email := next.AddColumn(users, col("email", schema.FamilyString, "text"))
	usersPK := next.AddIndex(users, "users_pkey", schema.IndexPrimaryKey)
	next.AddIndexColumn(usersPK, usersID, schema.SortAsc)
	uniq := next.AddIndex(users, "users_email_key", schema.IndexUnique)
	next.AddIndexColumn(uniq, email, schema.SortAsc)

	posts := next.AddTable("posts")
	postsID := next.AddColumn(posts, col("id", schema.FamilyInt, "integer"))
	author := next.AddColumn(posts, col("author_id", schema.FamilyInt, "integer"))
	next.AddColumn(posts, nullableCol("title", schema.FamilyString, "varchar(255)"))
	postsPK := next.AddIndex(posts, "posts_pkey", schema.IndexPrimaryKey)
	next.AddIndexColumn(postsPK, postsID, schema.SortAsc)
	authorIdx := next.AddIndex(posts, "posts_author_idx", schema.IndexNormal)
	next.AddIndexColumn(authorIdx, author, schema.SortAsc)
	fk := next.AddForeignKey(posts, users, "posts_author_fkey", schema.Cascade, schema.NoAction)
	next.AddForeignKeyColumn(fk, author, usersID)

	steps := CalculateSteps(NewPair(previous, next), strictLikePolicy())
	require.Equal(t, []StepKind{StepRedefineTable}, stepKinds(steps))

	redefine := steps[0].RedefineTable
	assert.Equal(t, "posts", redefine.Table.Name)
	assert.Len(t, redefine.Table.ForeignKeys, 1, "keys are declared inline on this dialect")

	copied := map[string]bool{}
	for _, c := range redefine.CopyColumns {
		copied[c.Name] = c.TypeChanged
	}
	assert.Equal(t, map[string]bool{"author_id": false, "id": false, "title": true}, copied)
	assert.Empty(t, redefine.AddedColumns)
	assert.Empty(t, redefine.DroppedColumns)

	require.Len(t, redefine.Indexes, 1)
	assert.Equal(t, "posts_author_idx", redefine.Indexes[0].Name)
}

func TestCalculateSteps_RebuildBracketsForeignKeys(t *testing.T) {
	build := func(emailNative string) *schema.Snapshot {
		snap := schema.New()
		users := snap.AddTable("users")
		usersID := snap.AddColumn(users, col("id", schema.FamilyInt, "integer"))
		snap.AddColumn(users, col("email", schema.FamilyString, emailNative))
		usersPK := snap.AddIndex(users, "users_pkey", schema.IndexPrimaryKey)
		snap.AddIndexColumn(usersPK, usersID, schema.SortAsc)

		posts := snap.AddTable("posts")
		postsID := snap.AddColumn(posts, col("id", schema.FamilyInt, "integer"))
		author := snap.AddColumn(posts, col("author_id", schema.FamilyInt, "integer"))
		postsPK := snap.AddIndex(posts, "posts_pkey", schema.IndexPrimaryKey)
		snap.AddIndexColumn(postsPK, postsID, schema.SortAsc)
		fk := snap.AddForeignKey(posts, users, "posts_author_fkey", schema.Cascade, schema.NoAction)
		snap.AddForeignKeyColumn(fk, author, usersID)
		return snap
	}
	previous := build("text")
	next := build("varchar(255)")

	policy := looseLikePolicy()
	policy.redefineWithInbound = false
	policy.redefine = func(tables TableDiffer) bool { return tables.AnyColumnChanged() }

	steps := CalculateSteps(NewPair(previous, next), policy)
	require.Equal(t, []StepKind{StepDropForeignKey, StepRedefineTable, StepAddForeignKey}, stepKinds(steps),
		"the untouched inbound key is dropped before the rebuild and added back after")
	assert.Equal(t, "posts_author_fkey", steps[0].DropForeignKey.ConstraintName)
	assert.Equal(t, "users", steps[1].RedefineTable.Table.Name)
	assert.Equal(t, "posts_author_fkey", steps[2].AddForeignKey.ForeignKey.ConstraintName)

	// When the referencing table is rebuilt too, its own keys take the
	// same path: dropped before the rebuilds, added back after.
	both := looseLikePolicy()
	both.redefineWithInbound = false
	both.redefine = func(TableDiffer) bool { return true }

	steps = CalculateSteps(NewPair(previous, next), both)
	require.Equal(t, []StepKind{StepDropForeignKey, StepRedefineTable, StepRedefineTable, StepAddForeignKey}, stepKinds(steps))
	assert.Equal(t, "posts", steps[1].RedefineTable.Table.Name)
	assert.Equal(t, "users", steps[2].RedefineTable.Table.Name)
}

func TestCalculateSteps_SkipsEngineOwnedForeignKeyIndexes(t *testing.T) {
	policy := looseLikePolicy()
	policy.skipFKIndexes = true

	steps := CalculateSteps(NewPair(usersSnapshot(), usersAndPostsSnapshot()), policy)
	require.Equal(t, []StepKind{StepCreateTable, StepAddForeignKey}, stepKinds(steps),
		"the engine creates the key-backing index itself")

	keeping := looseLikePolicy()
	steps = CalculateSteps(NewPair(usersSnapshot(), usersAndPostsSnapshot()), keeping)
	assert.Len(t, findSteps(steps, StepCreateIndex), 1)
}

func TestCalculateSteps_HistoryTableNeverDiffed(t *testing.T) {
	next := schema.New()
	history := next.AddTable(MigrationsTableName)
	next.AddColumn(history, col("id", schema.FamilyInt, "integer"))

	steps := CalculateSteps(NewPair(schema.New(), next), looseLikePolicy())
	assert.Empty(t, steps)
}

func TestCalculateSteps_PhasesAndDeterminism(t *testing.T) {
	previous := schema.New()
	{
		users := previous.AddTable("users")
		usersID := previous.AddColumn(users, col("id", schema.FamilyInt, "integer"))
		pk := previous.AddIndex(users, "users_pkey", schema.IndexPrimaryKey)
		previous.AddIndexColumn(pk, usersID, schema.SortAsc)

		posts := previous.AddTable("posts")
		postsID := previous.AddColumn(posts, col("id", schema.FamilyInt, "integer"))
		author := previous.AddColumn(posts, col("author_id", schema.FamilyInt, "integer"))
		postsPK := previous.AddIndex(posts, "posts_pkey", schema.IndexPrimaryKey)
		previous.AddIndexColumn(postsPK, postsID, schema.SortAsc)
		fk := previous.AddForeignKey(posts, users, "posts_author_fkey", schema.Cascade, schema.NoAction)
		previous.AddForeignKeyColumn(fk, author, usersID)

		old := previous.AddEnum("old_status")
		previous.AddEnumVariant(old, "on")

		role := previous.AddEnum("role")
		previous.AddEnumVariant(role, "admin")
	}

	next := schema.New()
	{
		users := next.AddTable("users")
		usersID := next.AddColumn(users, col("id", schema.FamilyInt, "integer"))
		next.AddColumn(users, nullableCol("bio", schema.FamilyString, "text"))
		pk := next.AddIndex(users, "users_pkey", schema.IndexPrimaryKey)
		next.AddIndexColumn(pk, usersID, schema.SortAsc)

		sessions := next.AddTable("sessions")
		sessionsID := next.AddColumn(sessions, col("id", schema.FamilyInt, "integer"))
		owner := next.AddColumn(sessions, col("user_id", schema.FamilyInt, "integer"))
		sessionsPK := next.AddIndex(sessions, "sessions_pkey", schema.IndexPrimaryKey)
		next.AddIndexColumn(sessionsPK, sessionsID, schema.SortAsc)
		ownerIdx := next.AddIndex(sessions, "sessions_user_idx", schema.IndexNormal)
		next.AddIndexColumn(ownerIdx, owner, schema.SortAsc)
		fk := next.AddForeignKey(sessions, users, "sessions_user_fkey", schema.Cascade, schema.NoAction)
		next.AddForeignKeyColumn(fk, owner, usersID)

		role := next.AddEnum("role")
		next.AddEnumVariant(role, "admin")
		next.AddEnumVariant(role, "member")

		fresh := next.AddEnum("visibility")
		next.AddEnumVariant(fresh, "public")
	}

	steps := CalculateSteps(NewPair(previous, next), looseLikePolicy())

	require.Equal(t, []StepKind{
		StepDropForeignKey,
		StepDropTable,
		StepCreateEnum,
		StepAlterEnum,
		StepCreateTable,
		StepAlterTable,
		StepCreateIndex,
		StepAddForeignKey,
		StepDropEnum,
	}, stepKinds(steps))

	lastPhase := 0
	for _, s := range steps {
		phase, _ := stepPhase(s)
		assert.GreaterOrEqual(t, phase, lastPhase, "phases never go backwards")
		lastPhase = phase
	}

	again := CalculateSteps(NewPair(previous, next), looseLikePolicy())
	assert.Equal(t, steps, again, "same inputs, same steps")
}
