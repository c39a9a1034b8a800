package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/datmig/internal/schema"
)

func TestNewDatabase_PairsTablesByName(t *testing.T) {
	previous := usersSnapshot()
	next := usersAndPostsSnapshot()

	db := NewDatabase(NewPair(previous, next), looseLikePolicy())

	require.Len(t, db.TablePairs(), 1)
	assert.Equal(t, "users", db.TablePairs()[0].Next().Name())

	created := db.CreatedTables()
	require.Len(t, created, 1)
	assert.Equal(t, "posts", created[0].Name())
	assert.Empty(t, db.DroppedTables())
}

func TestNewDatabase_FoldsTableNames(t *testing.T) {
	previous := schema.New()
	previous.AddColumn(previous.AddTable("Users"), col("id", schema.FamilyInt, "integer"))

	next := schema.New()
	next.AddColumn(next.AddTable("users"), col("id", schema.FamilyInt, "integer"))

	folding := looseLikePolicy()
	folding.foldLower = true
	db := NewDatabase(NewPair(previous, next), folding)

	assert.Len(t, db.TablePairs(), 1)
	assert.Empty(t, db.CreatedTables())
	assert.Empty(t, db.DroppedTables())

	exact := NewDatabase(NewPair(previous, next), looseLikePolicy())
	assert.Empty(t, exact.TablePairs())
	assert.Len(t, exact.CreatedTables(), 1)
	assert.Len(t, exact.DroppedTables(), 1)
}

func TestNewDatabase_PanicsOnFoldCollision(t *testing.T) {
	previous := schema.New()
	previous.AddColumn(previous.AddTable("Users"), col("id", schema.FamilyInt, "integer"))
	previous.AddColumn(previous.AddTable("users"), col("id", schema.FamilyInt, "integer"))

	folding := looseLikePolicy()
	folding.foldLower = true

	assert.Panics(t, func() {
		NewDatabase(NewPair(previous, schema.New()), folding)
	})
}

func TestNewDatabase_IgnoresInfrastructureTables(t *testing.T) {
	previous := schema.New()
	previous.AddColumn(previous.AddTable(MigrationsTableName), col("id", schema.FamilyInt, "integer"))
	previous.AddColumn(previous.AddTable("internal_stats"), col("id", schema.FamilyInt, "integer"))

	policy := looseLikePolicy()
	policy.ignoredPrefix = "internal_"
	db := NewDatabase(NewPair(previous, schema.New()), policy)

	assert.Empty(t, db.DroppedTables(), "history and reserved tables never diff")
}

func TestDatabase_ColumnPairing(t *testing.T) {
	previous := schema.New()
	prevUsers := previous.AddTable("users")
	previous.AddColumn(prevUsers, col("id", schema.FamilyInt, "integer"))
	previous.AddColumn(prevUsers, col("name", schema.FamilyString, "text"))

	next := schema.New()
	nextUsers := next.AddTable("users")
	next.AddColumn(nextUsers, col("id", schema.FamilyBigInt, "bigint"))
	next.AddColumn(nextUsers, col("email", schema.FamilyString, "text"))

	db := NewDatabase(NewPair(previous, next), looseLikePolicy())
	require.Len(t, db.TablePairs(), 1)
	tables := db.TablePairs()[0]

	pairs := tables.ColumnPairs()
	require.Len(t, pairs, 1)
	assert.Equal(t, "id", pairs[0].Next().Name())
	assert.True(t, pairs[0].Changes().TypeChanged())

	created := tables.CreatedColumns()
	require.Len(t, created, 1)
	assert.Equal(t, "email", created[0].Name())

	dropped := tables.DroppedColumns()
	require.Len(t, dropped, 1)
	assert.Equal(t, "name", dropped[0].Name())
}

func TestDatabase_RedefinitionPartitionsTablePairs(t *testing.T) {
	previous := usersAndPostsSnapshot()
	next := usersAndPostsSnapshot()

	policy := looseLikePolicy()
	policy.redefine = func(tables TableDiffer) bool {
		return tables.Next().Name() == "users"
	}
	db := NewDatabase(NewPair(previous, next), policy)

	all := db.TablePairs()
	redefined := db.RedefinedTablePairs()
	altered := db.NonRedefinedTablePairs()

	assert.Len(t, all, 2)
	require.Len(t, redefined, 1)
	assert.Equal(t, "users", redefined[0].Next().Name())
	require.Len(t, altered, 1)
	assert.Equal(t, "posts", altered[0].Next().Name())
	assert.Equal(t, len(all), len(redefined)+len(altered))

	assert.True(t, db.IsRedefined(redefined[0].Tables()))
	assert.False(t, db.IsRedefined(altered[0].Tables()))
}

func TestDatabase_EnumPairing(t *testing.T) {
	previous := schema.New()
	role := previous.AddEnum("role")
	previous.AddEnumVariant(role, "admin")
	previous.AddEnumVariant(role, "user")
	gone := previous.AddEnum("legacy_status")
	previous.AddEnumVariant(gone, "on")

	next := schema.New()
	nextRole := next.AddEnum("role")
	next.AddEnumVariant(nextRole, "admin")
	next.AddEnumVariant(nextRole, "user")
	next.AddEnumVariant(nextRole, "guest")
	fresh := next.AddEnum("visibility")
	next.AddEnumVariant(fresh, "public")

	db := NewDatabase(NewPair(previous, next), looseLikePolicy())

	created := db.CreatedEnums()
	require.Len(t, created, 1)
	assert.Equal(t, "visibility", created[0].Name())

	dropped := db.DroppedEnums()
	require.Len(t, dropped, 1)
	assert.Equal(t, "legacy_status", dropped[0].Name())

	pairs := db.EnumPairs()
	require.Len(t, pairs, 1)
	assert.Equal(t, []string{"guest"}, pairs[0].CreatedVariants())
	assert.Empty(t, pairs[0].DroppedVariants())
	assert.True(t, pairs[0].Changed())
}

func TestDatabase_EnumPairingOffWithoutSupport(t *testing.T) {
	previous := schema.New()
	role := previous.AddEnum("role")
	previous.AddEnumVariant(role, "admin")

	policy := looseLikePolicy()
	policy.enums = false
	db := NewDatabase(NewPair(previous, schema.New()), policy)

	assert.Empty(t, db.DroppedEnums())
	assert.Empty(t, db.EnumPairs())
}
