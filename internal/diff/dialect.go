package diff

// MigrationsTableName is the history table every deployment carries.
// It is infrastructure, not user schema, and never participates in
// diffing regardless of dialect.
const MigrationsTableName = "_datmig_migrations"

// Dialect is everything the differ needs to know about a SQL dialect.
// Implementations live in internal/dialect; adding support for a new
// engine means implementing this interface and nothing else.
//
// All methods must be pure and safe for concurrent use.
type Dialect interface {
	// Name identifies the dialect ("postgres", "mysql", "sqlite").
	Name() string

	// FoldTableName normalizes a table name for pairing. Dialects with
	// case-insensitive table identifiers fold to lower case; others
	// return the name unchanged.
	FoldTableName(name string) string

	// TableShouldBeIgnored reports dialect-specific infrastructure
	// tables that never participate in diffing. The migrations history
	// table is excluded unconditionally, before this is consulted.
	TableShouldBeIgnored(name string) bool

	// SupportsEnums reports whether the dialect models enumerated types
	// as named schema objects. When false, no enum pairing happens and
	// no enum steps are emitted.
	SupportsEnums() bool

	// CanDropEnumVariantInPlace reports whether removing a variant from
	// an enumerated type is possible without recreating the type. The
	// planner emits a single alter-enum step either way; renderers and
	// downstream consumers use this to pick the recreation flow.
	CanDropEnumVariantInPlace() bool

	// CanAlterColumnTypeInPlace reports whether a column's type can be
	// changed with an in-place ALTER.
	CanAlterColumnTypeInPlace() bool

	// CanRenameIndex reports whether an index can be renamed without
	// dropping and recreating it.
	CanRenameIndex() bool

	// CanRenameForeignKey reports whether a foreign key constraint can
	// be renamed in place.
	CanRenameForeignKey() bool

	// HasUnnamedForeignKeys reports whether the dialect stores foreign
	// keys without addressable constraint names. Such keys can never be
	// dropped individually.
	HasUnnamedForeignKeys() bool

	// ForeignKeysInCreateTable reports whether foreign keys are part of
	// the CREATE TABLE statement. When false, every foreign key of a
	// created table is emitted as a separate add-foreign-key step.
	ForeignKeysInCreateTable() bool

	// CanRedefineTableWithInboundForeignKeys reports whether a table
	// can be rebuilt while other tables still hold foreign keys
	// pointing at it. When false, inbound keys are dropped before the
	// rebuild and added back afterwards.
	CanRedefineTableWithInboundForeignKeys() bool

	// ShouldDropForeignKeysOnDroppedTables reports whether a dropped
	// table's foreign keys need explicit drop steps before the table
	// itself is dropped.
	ShouldDropForeignKeysOnDroppedTables() bool

	// ShouldSkipForeignKeyCoveringIndexes reports whether indexes whose
	// leading columns back a surviving foreign key must be kept even
	// when the target schema no longer declares them.
	ShouldSkipForeignKeyCoveringIndexes() bool

	// CanTightenForeignKeyColumns reports whether a constrained column
	// may go from nullable to required without the foreign key being
	// dropped and recreated.
	CanTightenForeignKeyColumns() bool

	// NeedsRedefinition decides whether a matched table pair must be
	// rebuilt (create replacement, copy rows, swap) instead of altered
	// in place. It is invoked exactly once per matched pair, after all
	// column changes are computed, and its verdict is final for the
	// lifetime of the diff.
	NeedsRedefinition(tables TableDiffer) bool
}
