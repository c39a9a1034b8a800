package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/datmig/internal/schema"
)

// pairOf builds two single-table snapshots around the given column
// versions and returns the walkers for the matched pair.
func pairOf(t *testing.T, previous, next schema.Column) Pair[schema.ColumnWalker] {
	t.Helper()

	build := func(c schema.Column) schema.ColumnWalker {
		snap := schema.New()
		tbl := snap.AddTable("t")
		id := snap.AddColumn(tbl, c)
		return snap.WalkColumn(id)
	}
	return Pair[schema.ColumnWalker]{Previous: build(previous), Next: build(next)}
}

func TestCompareColumns_NoChange(t *testing.T) {
	c := col("age", schema.FamilyInt, "integer")
	changes := compareColumns(pairOf(t, c, c))

	assert.False(t, changes.Differs())
	assert.False(t, changes.TypeChanged())
}

func TestCompareColumns_SingleAxes(t *testing.T) {
	base := col("age", schema.FamilyInt, "integer")

	tests := []struct {
		name   string
		mutate func(*schema.Column)
		check  func(t *testing.T, ch ColumnChanges)
	}{
		{
			name: "family change",
			mutate: func(c *schema.Column) {
				c.Type.Family = schema.FamilyBigInt
				c.Type.Native = "bigint"
			},
			check: func(t *testing.T, ch ColumnChanges) {
				assert.True(t, ch.FamilyChanged())
				assert.True(t, ch.NativeTypeChanged())
				assert.True(t, ch.TypeChanged())
				assert.False(t, ch.ArityChanged())
			},
		},
		{
			name: "native type change only",
			mutate: func(c *schema.Column) {
				c.Type.Native = "int4"
			},
			check: func(t *testing.T, ch ColumnChanges) {
				assert.False(t, ch.FamilyChanged())
				assert.True(t, ch.NativeTypeChanged())
				assert.True(t, ch.TypeChanged())
			},
		},
		{
			name: "arity change",
			mutate: func(c *schema.Column) {
				c.Type.Arity = schema.Nullable
			},
			check: func(t *testing.T, ch ColumnChanges) {
				assert.True(t, ch.ArityChanged())
				assert.False(t, ch.TypeChanged())
				assert.False(t, ch.DefaultChanged())
			},
		},
		{
			name: "default change",
			mutate: func(c *schema.Column) {
				c.Default = schema.LiteralDefault("0")
			},
			check: func(t *testing.T, ch ColumnChanges) {
				assert.True(t, ch.DefaultChanged())
				assert.False(t, ch.TypeChanged())
			},
		},
		{
			name: "autoincrement change",
			mutate: func(c *schema.Column) {
				c.AutoIncrement = true
			},
			check: func(t *testing.T, ch ColumnChanges) {
				assert.True(t, ch.AutoincrementChanged())
				assert.False(t, ch.TypeChanged())
				assert.False(t, ch.DefaultChanged())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := base
			tt.mutate(&next)

			changes := compareColumns(pairOf(t, base, next))
			require.True(t, changes.Differs())
			tt.check(t, changes)
		})
	}
}

func TestCompareColumns_EnumsCompareByName(t *testing.T) {
	build := func(enumName string) schema.ColumnWalker {
		snap := schema.New()
		enum := snap.AddEnum(enumName)
		snap.AddEnumVariant(enum, "a")
		tbl := snap.AddTable("t")
		id := snap.AddColumn(tbl, schema.Column{
			Name: "status",
			Type: schema.ColumnType{
				Family: schema.FamilyEnum,
				Native: enumName,
				Arity:  schema.Required,
				Enum:   enum,
			},
		})
		return snap.WalkColumn(id)
	}

	same := compareColumns(Pair[schema.ColumnWalker]{Previous: build("status"), Next: build("status")})
	assert.False(t, same.FamilyChanged())

	changed := compareColumns(Pair[schema.ColumnWalker]{Previous: build("status"), Next: build("state")})
	assert.True(t, changed.FamilyChanged())
}

func TestDefaultsEqual(t *testing.T) {
	tests := []struct {
		name  string
		prev  *schema.DefaultValue
		next  *schema.DefaultValue
		equal bool
	}{
		{name: "both absent", prev: nil, next: nil, equal: true},
		{name: "gained default", prev: nil, next: schema.LiteralDefault("1"), equal: false},
		{name: "lost default", prev: schema.LiteralDefault("1"), next: nil, equal: false},
		{name: "same literal", prev: schema.LiteralDefault("1"), next: schema.LiteralDefault("1"), equal: true},
		{name: "different literal", prev: schema.LiteralDefault("1"), next: schema.LiteralDefault("2"), equal: false},
		{name: "kind change", prev: schema.LiteralDefault("1"), next: schema.NowDefault(), equal: false},
		{name: "now both sides", prev: schema.NowDefault(), next: schema.NowDefault(), equal: true},
		{
			name:  "sequences compare by kind only",
			prev:  schema.SequenceDefault("users_id_seq"),
			next:  schema.SequenceDefault("users_id_seq1"),
			equal: true,
		},
		{
			name:  "dbgenerated same expression",
			prev:  schema.DBGeneratedDefault("uuid()"),
			next:  schema.DBGeneratedDefault("uuid()"),
			equal: true,
		},
		{
			name:  "dbgenerated trims whitespace",
			prev:  schema.DBGeneratedDefault(" uuid() "),
			next:  schema.DBGeneratedDefault("uuid()"),
			equal: true,
		},
		{
			name:  "dbgenerated different expression",
			prev:  schema.DBGeneratedDefault("uuid()"),
			next:  schema.DBGeneratedDefault("gen_random_uuid()"),
			equal: false,
		},
		{
			name:  "dbgenerated unknown expression matches anything",
			prev:  schema.DBGeneratedDefault(""),
			next:  schema.DBGeneratedDefault("gen_random_uuid()"),
			equal: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, defaultsEqual(tt.prev, tt.next))
		})
	}
}
