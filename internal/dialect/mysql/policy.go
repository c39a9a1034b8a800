// Package mysql implements the MySQL dialect: the diffing policy the
// planner consults and the renderer that turns steps into DDL
// statements.
package mysql

import (
	"strings"

	"github.com/koustreak/datmig/internal/diff"
)

// Options tune the policy for the server being targeted.
type Options struct {
	// LowerCasesTableNames mirrors the server's lower_case_table_names
	// setting. When set, table names pair case-insensitively.
	LowerCasesTableNames bool
}

// Policy is the MySQL diffing policy.
type Policy struct {
	opts Options
}

// NewPolicy returns a MySQL policy for the given server options.
func NewPolicy(opts Options) *Policy {
	return &Policy{opts: opts}
}

// Name identifies the dialect.
func (*Policy) Name() string { return "mysql" }

// FoldTableName lower-cases the name when the server stores table
// names case-insensitively.
func (p *Policy) FoldTableName(name string) string {
	if p.opts.LowerCasesTableNames {
		return strings.ToLower(name)
	}
	return name
}

func (*Policy) TableShouldBeIgnored(string) bool { return false }

// SupportsEnums is false: MySQL enums are column types, not named
// schema objects, so variant edits ride the column's type change.
func (*Policy) SupportsEnums() bool            { return false }
func (*Policy) CanDropEnumVariantInPlace() bool { return true }

func (*Policy) CanAlterColumnTypeInPlace() bool { return true }
func (*Policy) CanRenameIndex() bool            { return true }

// CanRenameForeignKey is false: there is no RENAME for foreign keys,
// a renamed key is dropped and recreated.
func (*Policy) CanRenameForeignKey() bool      { return false }
func (*Policy) HasUnnamedForeignKeys() bool    { return false }
func (*Policy) ForeignKeysInCreateTable() bool { return false }

func (*Policy) CanRedefineTableWithInboundForeignKeys() bool { return false }
func (*Policy) ShouldDropForeignKeysOnDroppedTables() bool   { return true }

// ShouldSkipForeignKeyCoveringIndexes is true: InnoDB requires an index
// over every foreign key's columns and creates one itself if the schema
// does not, so those indexes must not be dropped out from under a
// surviving key.
func (*Policy) ShouldSkipForeignKeyCoveringIndexes() bool { return true }
func (*Policy) CanTightenForeignKeyColumns() bool         { return false }

// NeedsRedefinition is always false: every change MySQL accepts is
// expressible in place.
func (*Policy) NeedsRedefinition(diff.TableDiffer) bool { return false }
