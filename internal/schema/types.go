package schema

// ColumnFamily is the dialect-independent classification of a column type.
// The Native field of ColumnType carries the exact dialect-level spelling.
type ColumnFamily string

const (
	FamilyInt         ColumnFamily = "int"
	FamilyBigInt      ColumnFamily = "bigint"
	FamilyFloat       ColumnFamily = "float"
	FamilyDecimal     ColumnFamily = "decimal"
	FamilyBoolean     ColumnFamily = "boolean"
	FamilyString      ColumnFamily = "string"
	FamilyDateTime    ColumnFamily = "datetime"
	FamilyBinary      ColumnFamily = "binary"
	FamilyJSON        ColumnFamily = "json"
	FamilyUUID        ColumnFamily = "uuid"
	FamilyEnum        ColumnFamily = "enum"
	FamilyUnsupported ColumnFamily = "unsupported"
)

// Arity is the nullability / cardinality of a column.
type Arity string

const (
	Required Arity = "required"
	Nullable Arity = "nullable"
	List     Arity = "list" // array-typed column (Postgres)
)

// ColumnType is the full type description of a column.
type ColumnType struct {
	// Family is the dialect-independent type class.
	Family ColumnFamily

	// Native is the dialect-level type with its parameters,
	// e.g. "varchar(191)", "numeric(10,2)", "timestamptz".
	Native string

	// Arity is the column's nullability.
	Arity Arity

	// Enum points at the enumerated type backing this column.
	// Valid only when Family == FamilyEnum.
	Enum EnumID
}

// Column is the payload passed to Snapshot.AddColumn.
type Column struct {
	Name          string
	Type          ColumnType
	Default       *DefaultValue // nil if no default
	AutoIncrement bool
}

// DefaultKind discriminates the structured default representation.
// Defaults are compared structurally by the differ, never on the SQL
// text a dialect would render them as.
type DefaultKind string

const (
	DefaultLiteral     DefaultKind = "literal"     // a constant value
	DefaultNow         DefaultKind = "now"         // current timestamp function
	DefaultSequence    DefaultKind = "sequence"    // nextval from a sequence
	DefaultUniqueRowID DefaultKind = "uniquerowid" // engine-generated row id
	DefaultDBGenerated DefaultKind = "dbgenerated" // arbitrary database expression
)

// DefaultValue is the structured default of a column.
type DefaultValue struct {
	Kind DefaultKind

	// Value holds the literal text, the sequence name, or the generation
	// expression, depending on Kind. Empty for DefaultNow and
	// DefaultUniqueRowID, and for DefaultDBGenerated when the expression
	// is unknown.
	Value string
}

// LiteralDefault returns a constant-value default.
func LiteralDefault(value string) *DefaultValue {
	return &DefaultValue{Kind: DefaultLiteral, Value: value}
}

// NowDefault returns a current-timestamp default.
func NowDefault() *DefaultValue {
	return &DefaultValue{Kind: DefaultNow}
}

// SequenceDefault returns a default drawn from the named sequence.
func SequenceDefault(name string) *DefaultValue {
	return &DefaultValue{Kind: DefaultSequence, Value: name}
}

// UniqueRowIDDefault returns an engine-generated unique row id default.
func UniqueRowIDDefault() *DefaultValue {
	return &DefaultValue{Kind: DefaultUniqueRowID}
}

// DBGeneratedDefault returns a default computed by the database from the
// given expression. Pass "" when the expression could not be recovered.
func DBGeneratedDefault(expr string) *DefaultValue {
	return &DefaultValue{Kind: DefaultDBGenerated, Value: expr}
}

// IndexKind classifies an index. Primary keys are stored as indexes of
// kind IndexPrimaryKey so key membership and ordering share one model.
type IndexKind string

const (
	IndexNormal     IndexKind = "normal"
	IndexUnique     IndexKind = "unique"
	IndexPrimaryKey IndexKind = "primary"
)

// SortOrder is the per-column direction inside an index.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ForeignKeyAction is a referential action (ON DELETE / ON UPDATE).
type ForeignKeyAction string

const (
	NoAction   ForeignKeyAction = "no_action"
	Restrict   ForeignKeyAction = "restrict"
	Cascade    ForeignKeyAction = "cascade"
	SetNull    ForeignKeyAction = "set_null"
	SetDefault ForeignKeyAction = "set_default"
)

// Sequence is dialect-specific auxiliary data (Postgres sequences).
// Sequences are carried on the Snapshot so describers can round-trip
// them; the differ only consults them through column defaults.
type Sequence struct {
	Name       string
	StartValue int64
	Increment  int64
}
