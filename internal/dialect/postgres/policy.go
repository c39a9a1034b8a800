// Package postgres implements the PostgreSQL dialect: the diffing
// policy the planner consults and the renderer that turns steps into
// DDL statements.
package postgres

import (
	"github.com/koustreak/datmig/internal/diff"
)

// Policy is the PostgreSQL diffing policy. Postgres can alter nearly
// everything in place, so tables are never redefined and most
// capability answers are yes.
type Policy struct{}

// NewPolicy returns the PostgreSQL policy.
func NewPolicy() *Policy {
	return &Policy{}
}

// Name identifies the dialect.
func (*Policy) Name() string { return "postgres" }

// FoldTableName returns the name unchanged: Postgres identifiers are
// case-sensitive once quoted, and describers preserve stored case.
func (*Policy) FoldTableName(name string) string { return name }

// TableShouldBeIgnored excludes the PostGIS bookkeeping table, which
// lives in user namespaces but is extension-owned.
func (*Policy) TableShouldBeIgnored(name string) bool {
	return name == "spatial_ref_sys"
}

// SupportsEnums is true: enums are named types with their own DDL.
func (*Policy) SupportsEnums() bool { return true }

// CanDropEnumVariantInPlace is false. ALTER TYPE can only add values;
// removing one takes the rename-recreate-recast flow in the renderer.
func (*Policy) CanDropEnumVariantInPlace() bool { return false }

func (*Policy) CanAlterColumnTypeInPlace() bool { return true }
func (*Policy) CanRenameIndex() bool            { return true }
func (*Policy) CanRenameForeignKey() bool       { return true }
func (*Policy) HasUnnamedForeignKeys() bool     { return false }
func (*Policy) ForeignKeysInCreateTable() bool  { return false }

func (*Policy) CanRedefineTableWithInboundForeignKeys() bool { return false }
func (*Policy) ShouldDropForeignKeysOnDroppedTables() bool   { return true }
func (*Policy) ShouldSkipForeignKeyCoveringIndexes() bool    { return false }
func (*Policy) CanTightenForeignKeyColumns() bool            { return true }

// NeedsRedefinition is always false on Postgres.
func (*Policy) NeedsRedefinition(diff.TableDiffer) bool { return false }
