// Package sqlite implements the SQLite dialect: the diffing policy the
// planner consults and the renderer that turns steps into DDL
// statements.
//
// SQLite can add and drop columns but cannot alter one, rename an
// index, or touch constraints after the fact, so most table changes go
// through a rebuild: create a replacement, copy the rows, swap it in.
package sqlite

import (
	"strings"

	"github.com/koustreak/datmig/internal/diff"
)

// Policy is the SQLite diffing policy.
type Policy struct{}

// NewPolicy returns the SQLite policy.
func NewPolicy() *Policy {
	return &Policy{}
}

// Name identifies the dialect.
func (*Policy) Name() string { return "sqlite" }

// FoldTableName lower-cases the name: SQLite table names are
// case-insensitive.
func (*Policy) FoldTableName(name string) string {
	return strings.ToLower(name)
}

// TableShouldBeIgnored excludes the engine's own bookkeeping tables,
// sqlite_sequence and friends.
func (*Policy) TableShouldBeIgnored(name string) bool {
	return strings.HasPrefix(name, "sqlite_")
}

func (*Policy) SupportsEnums() bool            { return false }
func (*Policy) CanDropEnumVariantInPlace() bool { return false }

func (*Policy) CanAlterColumnTypeInPlace() bool { return false }
func (*Policy) CanRenameIndex() bool            { return false }
func (*Policy) CanRenameForeignKey() bool       { return false }

// HasUnnamedForeignKeys is true: keys live inside the table definition
// and usually carry no constraint name, so they cannot be dropped or
// renamed individually.
func (*Policy) HasUnnamedForeignKeys() bool    { return true }
func (*Policy) ForeignKeysInCreateTable() bool { return true }

// CanRedefineTableWithInboundForeignKeys is true: rebuilds run with
// foreign key enforcement switched off, so inbound keys can stay put.
func (*Policy) CanRedefineTableWithInboundForeignKeys() bool { return true }
func (*Policy) ShouldDropForeignKeysOnDroppedTables() bool   { return false }
func (*Policy) ShouldSkipForeignKeyCoveringIndexes() bool    { return false }
func (*Policy) CanTightenForeignKeyColumns() bool            { return true }

// NeedsRedefinition routes every column alteration, primary key change
// and foreign key change through a table rebuild.
func (*Policy) NeedsRedefinition(tables diff.TableDiffer) bool {
	return tables.AnyColumnChanged() ||
		tables.PrimaryKeyChanged() ||
		len(tables.CreatedForeignKeys()) > 0 ||
		len(tables.DroppedForeignKeys()) > 0
}
