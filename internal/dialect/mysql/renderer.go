package mysql

import (
	"fmt"
	"strings"

	"github.com/koustreak/datmig/internal/diff"
	"github.com/koustreak/datmig/internal/errs"
	"github.com/koustreak/datmig/internal/schema"
)

// Renderer turns migration steps into MySQL DDL. Each step renders to
// one or more statements in execution order, without trailing
// semicolons.
type Renderer struct{}

// NewRenderer returns the MySQL renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderStep renders one step. Steps a MySQL plan never contains, like
// enum DDL or table redefinitions, come back as unsupported errors.
func (r *Renderer) RenderStep(step diff.Step) ([]string, error) {
	if err := step.Validate(); err != nil {
		return nil, err
	}

	switch step.Kind {
	case diff.StepDropForeignKey:
		s := step.DropForeignKey
		return []string{"ALTER TABLE " + quoteIdent(s.Table) + " DROP FOREIGN KEY " + quoteIdent(s.ConstraintName)}, nil
	case diff.StepDropIndex:
		s := step.DropIndex
		return []string{"DROP INDEX " + quoteIdent(s.Name) + " ON " + quoteIdent(s.Table)}, nil
	case diff.StepDropTable:
		return []string{"DROP TABLE " + quoteIdent(step.DropTable.Name)}, nil
	case diff.StepCreateEnum, diff.StepAlterEnum, diff.StepDropEnum:
		return nil, errs.New(errs.ErrKindUnsupported, "mysql enums are column types and have no standalone DDL")
	case diff.StepCreateTable:
		sql, err := createTableSQL(step.CreateTable.Table)
		if err != nil {
			return nil, err
		}
		return []string{sql}, nil
	case diff.StepAlterTable:
		return alterTableSQL(step.AlterTable)
	case diff.StepRedefineTable:
		return nil, errs.New(errs.ErrKindUnsupported, "mysql alters tables in place and never redefines them")
	case diff.StepRenameIndex:
		s := step.RenameIndex
		return []string{"ALTER TABLE " + quoteIdent(s.Table) + " RENAME INDEX " + quoteIdent(s.From) + " TO " + quoteIdent(s.To)}, nil
	case diff.StepCreateIndex:
		return []string{createIndexSQL(step.CreateIndex.Index)}, nil
	case diff.StepRenameForeignKey:
		return nil, errs.New(errs.ErrKindUnsupported, "mysql cannot rename a foreign key; drop and recreate it instead")
	case diff.StepAddForeignKey:
		fk := step.AddForeignKey.ForeignKey
		return []string{"ALTER TABLE " + quoteIdent(fk.Table) + " ADD " + foreignKeyClause(fk)}, nil
	default:
		return nil, errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unknown step kind %q", step.Kind))
	}
}

// --- statement builders ---

func createTableSQL(def diff.TableDef) (string, error) {
	parts := make([]string, 0, len(def.Columns)+1+len(def.ForeignKeys))
	for _, col := range def.Columns {
		sql, err := columnSQL(col)
		if err != nil {
			return "", err
		}
		parts = append(parts, sql)
	}
	if pk := def.PrimaryKey; pk != nil {
		parts = append(parts, "PRIMARY KEY ("+quoteIdents(pk.Columns)+")")
	}
	for _, fk := range def.ForeignKeys {
		parts = append(parts, foreignKeyClause(fk))
	}
	return "CREATE TABLE " + quoteIdent(def.Name) + " (" + strings.Join(parts, ", ") + ")", nil
}

func alterTableSQL(step *diff.AlterTableStep) ([]string, error) {
	prefix := "ALTER TABLE " + quoteIdent(step.Table)
	var stmts []string
	for _, change := range step.Changes {
		switch change.Kind {
		case diff.ChangeDropPrimaryKey:
			stmts = append(stmts, prefix+" DROP PRIMARY KEY")
		case diff.ChangeDropColumn:
			stmts = append(stmts, prefix+" DROP COLUMN "+quoteIdent(change.DropColumn.Name))
		case diff.ChangeAddColumn:
			sql, err := columnSQL(change.AddColumn.Column)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, prefix+" ADD COLUMN "+sql)
		case diff.ChangeAlterColumn:
			// MODIFY restates the whole definition, so one statement
			// covers every changed axis at once.
			sql, err := columnSQL(change.AlterColumn.Next)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, prefix+" MODIFY "+sql)
		case diff.ChangeAddPrimaryKey:
			stmts = append(stmts, prefix+" ADD PRIMARY KEY ("+quoteIdents(change.AddPrimaryKey.Key.Columns)+")")
		default:
			return nil, errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unknown table change kind %q", change.Kind))
		}
	}
	return stmts, nil
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
		return "", errs.New(errs.ErrKindUnsupported, fmt.Sprintf("mysql has no array columns (column %q)", col.Name))
	}
	var b strings.Builder
	b.WriteString(quoteIdent(col.Name))
	b.WriteString(" ")
	b.WriteString(col.Native)
	if col.Arity == schema.Required {
		b.WriteString(" NOT NULL")
	}
	if col.Default != nil && !col.AutoIncrement {
		sql, err := defaultSQL(col.Default, col.Family)
		if err != nil {
			return "", err
		}
		b.WriteString(" DEFAULT ")
		b.WriteString(sql)
	}
	if col.AutoIncrement {
		b.WriteString(" AUTO_INCREMENT")
	}
	return b.String(), nil
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
		return "", errs.New(errs.ErrKindUnsupported, fmt.Sprintf("mysql cannot render a %q default", def.Kind))
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

// quoteIdent wraps an identifier in backticks, doubling any backtick
// characters it contains.
func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
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
