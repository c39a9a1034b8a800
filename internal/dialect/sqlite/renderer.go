package sqlite

import (
	"fmt"
	"strings"

	"github.com/koustreak/datmig/internal/diff"
	"github.com/koustreak/datmig/internal/errs"
	"github.com/koustreak/datmig/internal/schema"
)

// Renderer turns migration steps into SQLite statements. Each step
// renders to one or more statements in execution order, without
// trailing semicolons. Table rebuilds include the PRAGMA bracketing
// they need, so the output is meant to run as a script, not statement
// by statement inside one implicit transaction.
type Renderer struct{}

// NewRenderer returns the SQLite renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderStep renders one step. Constraint and enum steps a SQLite plan
// never contains come back as unsupported errors.
func (r *Renderer) RenderStep(step diff.Step) ([]string, error) {
	if err := step.Validate(); err != nil {
		return nil, err
	}

	switch step.Kind {
	case diff.StepDropForeignKey, diff.StepRenameForeignKey, diff.StepAddForeignKey:
		return nil, errs.New(errs.ErrKindUnsupported, "sqlite foreign keys live inside the table definition; changing them takes a table rebuild")
	case diff.StepDropIndex:
		return []string{"DROP INDEX " + quoteIdent(step.DropIndex.Name)}, nil
	case diff.StepDropTable:
		return []string{"DROP TABLE " + quoteIdent(step.DropTable.Name)}, nil
	case diff.StepCreateEnum, diff.StepAlterEnum, diff.StepDropEnum:
		return nil, errs.New(errs.ErrKindUnsupported, "sqlite has no enumerated types")
	case diff.StepCreateTable:
		sql, err := createTableSQL(step.CreateTable.Table, step.CreateTable.Table.Name)
		if err != nil {
			return nil, err
		}
		return []string{sql}, nil
	case diff.StepAlterTable:
		return alterTableSQL(step.AlterTable)
	case diff.StepRedefineTable:
		return redefineTableSQL(step.RedefineTable)
	case diff.StepRenameIndex:
		return nil, errs.New(errs.ErrKindUnsupported, "sqlite cannot rename an index; drop and recreate it instead")
	case diff.StepCreateIndex:
		return []string{createIndexSQL(step.CreateIndex.Index)}, nil
	default:
		return nil, errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unknown step kind %q", step.Kind))
	}
}

// --- statement builders ---

// createTableSQL renders the table under the given name, which differs
// from the definition's own during a rebuild. A single-column integer
// primary key on an autoincrementing column becomes the rowid alias
// form, INTEGER PRIMARY KEY AUTOINCREMENT, instead of a separate key
// clause.
func createTableSQL(def diff.TableDef, name string) (string, error) {
	rowidAlias := ""
	if pk := def.PrimaryKey; pk != nil && len(pk.Columns) == 1 {
		for _, col := range def.Columns {
			if col.Name == pk.Columns[0] && col.AutoIncrement {
				rowidAlias = col.Name
			}
		}
	}

	parts := make([]string, 0, len(def.Columns)+1+len(def.ForeignKeys))
	for _, col := range def.Columns {
		if col.Name == rowidAlias {
			parts = append(parts, quoteIdent(col.Name)+" INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT")
			continue
		}
		sql, err := columnSQL(col)
		if err != nil {
			return "", err
		}
		parts = append(parts, sql)
	}
	if pk := def.PrimaryKey; pk != nil && rowidAlias == "" {
		parts = append(parts, "PRIMARY KEY ("+quoteIdents(pk.Columns)+")")
	}
	for _, fk := range def.ForeignKeys {
		parts = append(parts, foreignKeyClause(fk))
	}
	return "CREATE TABLE " + quoteIdent(name) + " (" + strings.Join(parts, ", ") + ")", nil
}

func alterTableSQL(step *diff.AlterTableStep) ([]string, error) {
	prefix := "ALTER TABLE " + quoteIdent(step.Table)
	var stmts []string
	for _, change := range step.Changes {
		switch change.Kind {
		case diff.ChangeDropColumn:
			stmts = append(stmts, prefix+" DROP COLUMN "+quoteIdent(change.DropColumn.Name))
		case diff.ChangeAddColumn:
			sql, err := columnSQL(change.AddColumn.Column)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, prefix+" ADD COLUMN "+sql)
		case diff.ChangeAlterColumn, diff.ChangeDropPrimaryKey, diff.ChangeAddPrimaryKey:
			return nil, errs.New(errs.ErrKindUnsupported,
				fmt.Sprintf("sqlite cannot apply a %q change in place; the table has to be rebuilt", change.Kind))
		default:
			return nil, errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unknown table change kind %q", change.Kind))
		}
	}
	return stmts, nil
}

// redefineTableSQL renders the rebuild flow: enforcement off, create
// the replacement under a scratch name, copy the surviving rows, swap
// the tables, recreate the indexes, then verify and re-enable
// enforcement.
func redefineTableSQL(step *diff.RedefineTableStep) ([]string, error) {
	name := step.Table.Name
	scratch := "new_" + name

	create, err := createTableSQL(step.Table, scratch)
	if err != nil {
		return nil, err
	}

	stmts := []string{"PRAGMA foreign_keys=OFF", create}
	if len(step.CopyColumns) > 0 {
		copySQL, err := copyRowsSQL(step, scratch)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, copySQL)
	}
	stmts = append(stmts,
		"DROP TABLE "+quoteIdent(name),
		"ALTER TABLE "+quoteIdent(scratch)+" RENAME TO "+quoteIdent(name),
	)
	for _, idx := range step.Indexes {
		stmts = append(stmts, createIndexSQL(idx))
	}
	stmts = append(stmts, "PRAGMA foreign_key_check", "PRAGMA foreign_keys=ON")
	return stmts, nil
}

func copyRowsSQL(step *diff.RedefineTableStep, scratch string) (string, error) {
	targets := make([]string, len(step.CopyColumns))
	exprs := make([]string, len(step.CopyColumns))
	for i, col := range step.CopyColumns {
		targets[i] = quoteIdent(col.Name)
		if col.TypeChanged {
			next, ok := columnByName(step.Table, col.Name)
			if !ok {
				return "", errs.New(errs.ErrKindInvalidInput,
					fmt.Sprintf("copy column %q missing from the table definition", col.Name))
			}
			exprs[i] = "CAST(" + quoteIdent(col.Name) + " AS " + next.Native + ")"
		} else {
			exprs[i] = quoteIdent(col.Name)
		}
	}
	return "INSERT INTO " + quoteIdent(scratch) + " (" + strings.Join(targets, ", ") + ") SELECT " +
		strings.Join(exprs, ", ") + " FROM " + quoteIdent(step.Table.Name), nil
}

func createIndexSQL(idx diff.IndexDef) string {
	var b strings.Builder
	b.WriteString("CREATE ")
	if idx.Kind == schema.IndexUnique {
		b.WriteString("UNIQUE ")
	}
	b.WriteString("INDEX ")
	b.WriteString(quoteIdent(idx.Name))
	b.WriteString(" ON ")
	b.WriteString(quoteIdent(idx.Table))
	b.WriteString("(")
	for i, col := range idx.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quoteIdent(col.Name))
		if col.Sort == schema.SortDesc {
			b.WriteString(" DESC")
		}
	}
	b.WriteString(")")
	return b.String()
}

func foreignKeyClause(fk diff.ForeignKeyDef) string {
	var b strings.Builder
	if fk.ConstraintName != "" {
		b.WriteString("CONSTRAINT ")
		b.WriteString(quoteIdent(fk.ConstraintName))
		b.WriteString(" ")
	}
	b.WriteString("FOREIGN KEY (")
	b.WriteString(quoteIdents(fk.Columns))
	b.WriteString(") REFERENCES ")
	b.WriteString(quoteIdent(fk.ReferencedTable))
	b.WriteString("(")
	b.WriteString(quoteIdents(fk.ReferencedColumns))
	b.WriteString(") ON DELETE ")
	b.WriteString(actionSQL(fk.OnDelete))
	b.WriteString(" ON UPDATE ")
	b.WriteString(actionSQL(fk.OnUpdate))
	return b.String()
}

// --- fragments ---

func columnSQL(col diff.ColumnDef) (string, error) {
	if col.Arity == schema.List {
		return "", errs.New(errs.ErrKindUnsupported, fmt.Sprintf("sqlite has no array columns (column %q)", col.Name))
	}
	if col.AutoIncrement {
		return "", errs.New(errs.ErrKindUnsupported,
			fmt.Sprintf("autoincrement is only valid on a single-column integer primary key (column %q)", col.Name))
	}
	var b strings.Builder
	b.WriteString(quoteIdent(col.Name))
	b.WriteString(" ")
	b.WriteString(col.Native)
	if col.Arity == schema.Required {
		b.WriteString(" NOT NULL")
	}
	if col.Default != nil {
		sql, err := defaultSQL(col.Default, col.Family)
		if err != nil {
			return "", err
		}
		b.WriteString(" DEFAULT ")
		b.WriteString(sql)
	}
	return b.String(), nil
}

func columnByName(def diff.TableDef, name string) (diff.ColumnDef, bool) {
	for _, col := range def.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return diff.ColumnDef{}, false
}

func defaultSQL(def *diff.DefaultDef, family schema.ColumnFamily) (string, error) {
	switch def.Kind {
	case schema.DefaultLiteral:
		switch family {
		case schema.FamilyInt, schema.FamilyBigInt, schema.FamilyFloat, schema.FamilyDecimal, schema.FamilyBoolean:
			return def.Value, nil
		default:
			return quoteLiteral(def.Value), nil
		}
	case schema.DefaultNow:
		return "CURRENT_TIMESTAMP", nil
	case schema.DefaultDBGenerated:
		if def.Value == "" {
			return "", errs.New(errs.ErrKindUnsupported, "database-generated default has no expression to render")
		}
		return def.Value, nil
	default:
		return "", errs.New(errs.ErrKindUnsupported, fmt.Sprintf("sqlite cannot render a %q default", def.Kind))
	}
}

func actionSQL(action schema.ForeignKeyAction) string {
	switch action {
	case schema.Cascade:
		return "CASCADE"
	case schema.Restrict:
		return "RESTRICT"
	case schema.SetNull:
		return "SET NULL"
	case schema.SetDefault:
		return "SET DEFAULT"
	default:
		return "NO ACTION"
	}
}

// quoteIdent wraps an identifier in double quotes, doubling any quote
// characters it contains.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteIdents(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quoteIdent(n)
	}
	return strings.Join(quoted, ", ")
}

func quoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
