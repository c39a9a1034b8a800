package diff

import (
	"fmt"

	"github.com/koustreak/datmig/internal/errs"
	"github.com/koustreak/datmig/internal/schema"
)

// StepKind discriminates the step envelope. The declaration order below
// is the execution order of the plan phases.
type StepKind string

const (
	StepDropForeignKey   StepKind = "drop_foreign_key"
	StepDropIndex        StepKind = "drop_index"
	StepDropTable        StepKind = "drop_table"
	StepCreateEnum       StepKind = "create_enum"
	StepAlterEnum        StepKind = "alter_enum"
	StepCreateTable      StepKind = "create_table"
	StepAlterTable       StepKind = "alter_table"
	StepRedefineTable    StepKind = "redefine_table"
	StepRenameIndex      StepKind = "rename_index"
	StepCreateIndex      StepKind = "create_index"
	StepRenameForeignKey StepKind = "rename_foreign_key"
	StepAddForeignKey    StepKind = "add_foreign_key"
	StepDropEnum         StepKind = "drop_enum"
)

// Step is one migration operation. Exactly one payload field matching
// Kind is set. Steps reference schema objects by name and carry full
// definitions for everything they create, so a serialized step sequence
// can be rendered to SQL without either snapshot at hand.
type Step struct {
	Kind StepKind `json:"kind" yaml:"kind"`

	DropForeignKey   *DropForeignKeyStep   `json:"drop_foreign_key,omitempty" yaml:"drop_foreign_key,omitempty"`
	DropIndex        *DropIndexStep        `json:"drop_index,omitempty" yaml:"drop_index,omitempty"`
	DropTable        *DropTableStep        `json:"drop_table,omitempty" yaml:"drop_table,omitempty"`
	CreateEnum       *CreateEnumStep       `json:"create_enum,omitempty" yaml:"create_enum,omitempty"`
	AlterEnum        *AlterEnumStep        `json:"alter_enum,omitempty" yaml:"alter_enum,omitempty"`
	CreateTable      *CreateTableStep      `json:"create_table,omitempty" yaml:"create_table,omitempty"`
	AlterTable       *AlterTableStep       `json:"alter_table,omitempty" yaml:"alter_table,omitempty"`
	RedefineTable    *RedefineTableStep    `json:"redefine_table,omitempty" yaml:"redefine_table,omitempty"`
	RenameIndex      *RenameIndexStep      `json:"rename_index,omitempty" yaml:"rename_index,omitempty"`
	CreateIndex      *CreateIndexStep      `json:"create_index,omitempty" yaml:"create_index,omitempty"`
	RenameForeignKey *RenameForeignKeyStep `json:"rename_foreign_key,omitempty" yaml:"rename_foreign_key,omitempty"`
	AddForeignKey    *AddForeignKeyStep    `json:"add_foreign_key,omitempty" yaml:"add_foreign_key,omitempty"`
	DropEnum         *DropEnumStep         `json:"drop_enum,omitempty" yaml:"drop_enum,omitempty"`
}

// DropForeignKeyStep removes one named foreign key constraint.
type DropForeignKeyStep struct {
	Table          string `json:"table" yaml:"table"`
	ConstraintName string `json:"constraint_name" yaml:"constraint_name"`
}

// DropIndexStep removes one secondary index.
type DropIndexStep struct {
	Table string `json:"table" yaml:"table"`
	Name  string `json:"name" yaml:"name"`
}

// DropTableStep removes one table.
type DropTableStep struct {
	Name string `json:"name" yaml:"name"`
}

// CreateEnumStep creates one enumerated type.
type CreateEnumStep struct {
	Enum EnumDef `json:"enum" yaml:"enum"`
}

// AlterEnumStep changes the variant set of one enumerated type.
// NextVariants is the complete desired set, so renderers that must
// recreate the type instead of altering it have everything they need.
// Uses lists every column typed on the enum in the schema being
// migrated from; it is populated only when variants were dropped,
// because only the recreation flow has to recast those columns and
// reattach their defaults.
type AlterEnumStep struct {
	Name            string          `json:"name" yaml:"name"`
	CreatedVariants []string        `json:"created_variants,omitempty" yaml:"created_variants,omitempty"`
	DroppedVariants []string        `json:"dropped_variants,omitempty" yaml:"dropped_variants,omitempty"`
	NextVariants    []string        `json:"next_variants" yaml:"next_variants"`
	Uses            []EnumColumnUse `json:"uses,omitempty" yaml:"uses,omitempty"`
}

// EnumColumnUse is one column typed on an altered enum. NextDefault is
// the default the column carries after the migration, nil when the
// column is dropped or ends up without one.
type EnumColumnUse struct {
	Table       string      `json:"table" yaml:"table"`
	Column      string      `json:"column" yaml:"column"`
	NextDefault *DefaultDef `json:"next_default,omitempty" yaml:"next_default,omitempty"`
}

// CreateTableStep creates one table from its full definition.
type CreateTableStep struct {
	Table TableDef `json:"table" yaml:"table"`
}

// AlterTableStep applies in-place changes to one table. Changes are
// ordered for execution: primary key drops first, then column drops,
// additions and alterations, and the primary key addition last.
type AlterTableStep struct {
	Table   string        `json:"table" yaml:"table"`
	Changes []TableChange `json:"changes" yaml:"changes"`
}

// RedefineTableStep rebuilds one table: create a replacement from
// Table, copy CopyColumns across, drop the original, move the
// replacement into its name, and recreate Indexes. Dialects that
// cannot alter columns in place take this route.
type RedefineTableStep struct {
	Table          TableDef         `json:"table" yaml:"table"`
	CopyColumns    []RedefineColumn `json:"copy_columns,omitempty" yaml:"copy_columns,omitempty"`
	AddedColumns   []string         `json:"added_columns,omitempty" yaml:"added_columns,omitempty"`
	DroppedColumns []string         `json:"dropped_columns,omitempty" yaml:"dropped_columns,omitempty"`
	Indexes        []IndexDef       `json:"indexes,omitempty" yaml:"indexes,omitempty"`
}

// RedefineColumn is one column whose data survives a table rebuild.
// TypeChanged tells the renderer the copy needs a cast.
type RedefineColumn struct {
	Name        string `json:"name" yaml:"name"`
	TypeChanged bool   `json:"type_changed,omitempty" yaml:"type_changed,omitempty"`
}

// RenameIndexStep renames one index in place.
type RenameIndexStep struct {
	Table string `json:"table" yaml:"table"`
	From  string `json:"from" yaml:"from"`
	To    string `json:"to" yaml:"to"`
}

// CreateIndexStep creates one secondary index.
type CreateIndexStep struct {
	Index IndexDef `json:"index" yaml:"index"`
}

// RenameForeignKeyStep renames one foreign key constraint in place.
type RenameForeignKeyStep struct {
	Table string `json:"table" yaml:"table"`
	From  string `json:"from" yaml:"from"`
	To    string `json:"to" yaml:"to"`
}

// AddForeignKeyStep adds one foreign key constraint to an existing
// table.
type AddForeignKeyStep struct {
	ForeignKey ForeignKeyDef `json:"foreign_key" yaml:"foreign_key"`
}

// DropEnumStep removes one enumerated type.
type DropEnumStep struct {
	Name string `json:"name" yaml:"name"`
}

// TableChangeKind discriminates the per-table change envelope.
type TableChangeKind string

const (
	ChangeDropPrimaryKey TableChangeKind = "drop_primary_key"
	ChangeDropColumn     TableChangeKind = "drop_column"
	ChangeAddColumn      TableChangeKind = "add_column"
	ChangeAlterColumn    TableChangeKind = "alter_column"
	ChangeAddPrimaryKey  TableChangeKind = "add_primary_key"
)

// TableChange is one change inside an alter-table step. Exactly one
// payload field matching Kind is set.
type TableChange struct {
	Kind TableChangeKind `json:"kind" yaml:"kind"`

	DropPrimaryKey *DropPrimaryKeyChange `json:"drop_primary_key,omitempty" yaml:"drop_primary_key,omitempty"`
	DropColumn     *DropColumnChange     `json:"drop_column,omitempty" yaml:"drop_column,omitempty"`
	AddColumn      *AddColumnChange      `json:"add_column,omitempty" yaml:"add_column,omitempty"`
	AlterColumn    *AlterColumnChange    `json:"alter_column,omitempty" yaml:"alter_column,omitempty"`
	AddPrimaryKey  *AddPrimaryKeyChange  `json:"add_primary_key,omitempty" yaml:"add_primary_key,omitempty"`
}

// DropPrimaryKeyChange drops the table's primary key. Name is the
// constraint name when the dialect has one, empty otherwise.
type DropPrimaryKeyChange struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// DropColumnChange drops one column.
type DropColumnChange struct {
	Name string `json:"name" yaml:"name"`
}

// AddColumnChange adds one column.
type AddColumnChange struct {
	Column ColumnDef `json:"column" yaml:"column"`
}

// AlterColumnChange alters one column in place. Both versions are
// carried in full; the booleans repeat the change classification so
// renderers do not have to re-derive it.
type AlterColumnChange struct {
	Name                 string    `json:"name" yaml:"name"`
	Previous             ColumnDef `json:"previous" yaml:"previous"`
	Next                 ColumnDef `json:"next" yaml:"next"`
	TypeChanged          bool      `json:"type_changed,omitempty" yaml:"type_changed,omitempty"`
	ArityChanged         bool      `json:"arity_changed,omitempty" yaml:"arity_changed,omitempty"`
	DefaultChanged       bool      `json:"default_changed,omitempty" yaml:"default_changed,omitempty"`
	AutoIncrementChanged bool      `json:"auto_increment_changed,omitempty" yaml:"auto_increment_changed,omitempty"`
}

// AddPrimaryKeyChange adds a primary key.
type AddPrimaryKeyChange struct {
	Key KeyDef `json:"key" yaml:"key"`
}

// TableDef is the complete definition of one table. ForeignKeys is
// populated only for dialects that declare keys inside CREATE TABLE.
type TableDef struct {
	Name        string          `json:"name" yaml:"name"`
	Columns     []ColumnDef     `json:"columns" yaml:"columns"`
	PrimaryKey  *KeyDef         `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
	ForeignKeys []ForeignKeyDef `json:"foreign_keys,omitempty" yaml:"foreign_keys,omitempty"`
}

// ColumnDef is the complete definition of one column. Enum names the
// backing enumerated type when Family is the enum family.
type ColumnDef struct {
	Name          string              `json:"name" yaml:"name"`
	Family        schema.ColumnFamily `json:"family" yaml:"family"`
	Native        string              `json:"native" yaml:"native"`
	Arity         schema.Arity        `json:"arity" yaml:"arity"`
	Enum          string              `json:"enum,omitempty" yaml:"enum,omitempty"`
	Default       *DefaultDef         `json:"default,omitempty" yaml:"default,omitempty"`
	AutoIncrement bool                `json:"auto_increment,omitempty" yaml:"auto_increment,omitempty"`
}

// DefaultDef is the serializable form of a structured default.
type DefaultDef struct {
	Kind  schema.DefaultKind `json:"kind" yaml:"kind"`
	Value string             `json:"value,omitempty" yaml:"value,omitempty"`
}

// KeyDef names a primary key and its column sequence. Name is empty on
// dialects without named key constraints.
type KeyDef struct {
	Name    string   `json:"name,omitempty" yaml:"name,omitempty"`
	Columns []string `json:"columns" yaml:"columns"`
}

// IndexDef is the complete definition of one secondary index.
type IndexDef struct {
	Table   string           `json:"table" yaml:"table"`
	Name    string           `json:"name" yaml:"name"`
	Kind    schema.IndexKind `json:"kind" yaml:"kind"`
	Columns []IndexColumnDef `json:"columns" yaml:"columns"`
}

// IndexColumnDef is one column membership of an index.
type IndexColumnDef struct {
	Name string           `json:"name" yaml:"name"`
	Sort schema.SortOrder `json:"sort" yaml:"sort"`
}

// ForeignKeyDef is the complete definition of one foreign key.
// ConstraintName is empty on dialects with unnamed keys.
type ForeignKeyDef struct {
	Table             string                  `json:"table" yaml:"table"`
	ConstraintName    string                  `json:"constraint_name,omitempty" yaml:"constraint_name,omitempty"`
	Columns           []string                `json:"columns" yaml:"columns"`
	ReferencedTable   string                  `json:"referenced_table" yaml:"referenced_table"`
	ReferencedColumns []string                `json:"referenced_columns" yaml:"referenced_columns"`
	OnDelete          schema.ForeignKeyAction `json:"on_delete" yaml:"on_delete"`
	OnUpdate          schema.ForeignKeyAction `json:"on_update" yaml:"on_update"`
}

// EnumDef is the complete definition of one enumerated type.
type EnumDef struct {
	Name     string   `json:"name" yaml:"name"`
	Variants []string `json:"variants" yaml:"variants"`
}

// payloads returns the step's non-nil payload pointers as an untyped
// list, paired with the kind each one belongs to.
func (s Step) payloads() []StepKind {
	var set []StepKind
	if s.DropForeignKey != nil {
		set = append(set, StepDropForeignKey)
	}
	if s.DropIndex != nil {
		set = append(set, StepDropIndex)
	}
	if s.DropTable != nil {
		set = append(set, StepDropTable)
	}
	if s.CreateEnum != nil {
		set = append(set, StepCreateEnum)
	}
	if s.AlterEnum != nil {
		set = append(set, StepAlterEnum)
	}
	if s.CreateTable != nil {
		set = append(set, StepCreateTable)
	}
	if s.AlterTable != nil {
		set = append(set, StepAlterTable)
	}
	if s.RedefineTable != nil {
		set = append(set, StepRedefineTable)
	}
	if s.RenameIndex != nil {
		set = append(set, StepRenameIndex)
	}
	if s.CreateIndex != nil {
		set = append(set, StepCreateIndex)
	}
	if s.RenameForeignKey != nil {
		set = append(set, StepRenameForeignKey)
	}
	if s.AddForeignKey != nil {
		set = append(set, StepAddForeignKey)
	}
	if s.DropEnum != nil {
		set = append(set, StepDropEnum)
	}
	return set
}

// Validate checks the envelope invariant: a known kind with exactly the
// matching payload set. Deserialized plans go through this before
// anything renders them.
func (s Step) Validate() error {
	set := s.payloads()
	if len(set) == 0 {
		return errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("step %q has no payload", s.Kind))
	}
	if len(set) > 1 {
		return errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("step %q has %d payloads", s.Kind, len(set)))
	}
	if set[0] != s.Kind {
		return errs.New(errs.ErrKindInvalidInput,
			fmt.Sprintf("step kind %q does not match payload %q", s.Kind, set[0]))
	}
	return nil
}

// Describe returns a one-line human summary of the step.
func (s Step) Describe() string {
	switch s.Kind {
	case StepDropForeignKey:
		return fmt.Sprintf("drop foreign key %q on %q", s.DropForeignKey.ConstraintName, s.DropForeignKey.Table)
	case StepDropIndex:
		return fmt.Sprintf("drop index %q on %q", s.DropIndex.Name, s.DropIndex.Table)
	case StepDropTable:
		return fmt.Sprintf("drop table %q", s.DropTable.Name)
	case StepCreateEnum:
		return fmt.Sprintf("create enum %q", s.CreateEnum.Enum.Name)
	case StepAlterEnum:
		return fmt.Sprintf("alter enum %q (+%d -%d variants)",
			s.AlterEnum.Name, len(s.AlterEnum.CreatedVariants), len(s.AlterEnum.DroppedVariants))
	case StepCreateTable:
		return fmt.Sprintf("create table %q", s.CreateTable.Table.Name)
	case StepAlterTable:
		return fmt.Sprintf("alter table %q (%d changes)", s.AlterTable.Table, len(s.AlterTable.Changes))
	case StepRedefineTable:
		return fmt.Sprintf("redefine table %q", s.RedefineTable.Table.Name)
	case StepRenameIndex:
		return fmt.Sprintf("rename index %q to %q on %q", s.RenameIndex.From, s.RenameIndex.To, s.RenameIndex.Table)
	case StepCreateIndex:
		return fmt.Sprintf("create index %q on %q", s.CreateIndex.Index.Name, s.CreateIndex.Index.Table)
	case StepRenameForeignKey:
		return fmt.Sprintf("rename foreign key %q to %q on %q",
			s.RenameForeignKey.From, s.RenameForeignKey.To, s.RenameForeignKey.Table)
	case StepAddForeignKey:
		return fmt.Sprintf("add foreign key %q on %q",
			s.AddForeignKey.ForeignKey.ConstraintName, s.AddForeignKey.ForeignKey.Table)
	case StepDropEnum:
		return fmt.Sprintf("drop enum %q", s.DropEnum.Name)
	default:
		return fmt.Sprintf("unknown step %q", s.Kind)
	}
}
