package postgres

import (
	"fmt"
	"strings"

	"github.com/koustreak/datmig/internal/diff"
	"github.com/koustreak/datmig/internal/errs"
	"github.com/koustreak/datmig/internal/schema"
)

// Renderer turns migration steps into PostgreSQL DDL. Each step renders
// to one or more statements in execution order, without trailing
// semicolons.
type Renderer struct{}

// NewRenderer returns the PostgreSQL renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderStep renders one step. Steps a Postgres plan never contains,
// like table redefinitions, come back as unsupported errors.
func (r *Renderer) RenderStep(step diff.Step) ([]string, error) {
	if err := step.Validate(); err != nil {
		return nil, err
	}

	switch step.Kind {
	case diff.StepDropForeignKey:
		s := step.DropForeignKey
		return []string{"ALTER TABLE " + quoteIdent(s.Table) + " DROP CONSTRAINT " + quoteIdent(s.ConstraintName)}, nil
	case diff.StepDropIndex:
		return []string{"DROP INDEX " + quoteIdent(step.DropIndex.Name)}, nil
	case diff.StepDropTable:
		return []string{"DROP TABLE " + quoteIdent(step.DropTable.Name)}, nil
	case diff.StepCreateEnum:
		e := step.CreateEnum.Enum
		return []string{createEnumSQL(e.Name, e.Variants)}, nil
	case diff.StepAlterEnum:
		return alterEnumSQL(step.AlterEnum)
	case diff.StepCreateTable:
		sql, err := createTableSQL(step.CreateTable.Table)
		if err != nil {
			return nil, err
		}
		return []string{sql}, nil
	case diff.StepAlterTable:
		return alterTableSQL(step.AlterTable)
	case diff.StepRedefineTable:
		return nil, errs.New(errs.ErrKindUnsupported, "postgres alters tables in place and never redefines them")
	case diff.StepRenameIndex:
		s := step.RenameIndex
		return []string{"ALTER INDEX " + quoteIdent(s.From) + " RENAME TO " + quoteIdent(s.To)}, nil
	case diff.StepCreateIndex:
		return []string{createIndexSQL(step.CreateIndex.Index)}, nil
	case diff.StepRenameForeignKey:
		s := step.RenameForeignKey
		return []string{"ALTER TABLE " + quoteIdent(s.Table) + " RENAME CONSTRAINT " + quoteIdent(s.From) + " TO " + quoteIdent(s.To)}, nil
	case diff.StepAddForeignKey:
		fk := step.AddForeignKey.ForeignKey
		return []string{"ALTER TABLE " + quoteIdent(fk.Table) + " ADD " + foreignKeyClause(fk)}, nil
	case diff.StepDropEnum:
		return []string{"DROP TYPE " + quoteIdent(step.DropEnum.Name)}, nil
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
		parts = append(parts, "CONSTRAINT "+quoteIdent(pkName(pk.Name, def.Name))+" PRIMARY KEY ("+quoteIdents(pk.Columns)+")")
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
			stmts = append(stmts, prefix+" DROP CONSTRAINT "+quoteIdent(pkName(change.DropPrimaryKey.Name, step.Table)))
		case diff.ChangeDropColumn:
			stmts = append(stmts, prefix+" DROP COLUMN "+quoteIdent(change.DropColumn.Name))
		case diff.ChangeAddColumn:
			sql, err := columnSQL(change.AddColumn.Column)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, prefix+" ADD COLUMN "+sql)
		case diff.ChangeAlterColumn:
			more, err := alterColumnSQL(step.Table, change.AlterColumn)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, more...)
		case diff.ChangeAddPrimaryKey:
			key := change.AddPrimaryKey.Key
			stmts = append(stmts, prefix+" ADD CONSTRAINT "+quoteIdent(pkName(key.Name, step.Table))+" PRIMARY KEY ("+quoteIdents(key.Columns)+")")
		default:
			return nil, errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unknown table change kind %q", change.Kind))
		}
	}
	return stmts, nil
}

// alterColumnSQL emits one statement per changed axis, in type,
// nullability, default order.
func alterColumnSQL(table string, change *diff.AlterColumnChange) ([]string, error) {
	prefix := "ALTER TABLE " + quoteIdent(table) + " ALTER COLUMN " + quoteIdent(change.Name)
	var stmts []string
	if change.TypeChanged {
		stmts = append(stmts, prefix+" SET DATA TYPE "+nativeTypeSQL(change.Next))
	}
	if change.ArityChanged {
		if change.Next.Arity == schema.Nullable {
			stmts = append(stmts, prefix+" DROP NOT NULL")
		} else {
			stmts = append(stmts, prefix+" SET NOT NULL")
		}
	}
	if change.DefaultChanged || change.AutoIncrementChanged {
		if def := change.Next.Default; def != nil {
			sql, err := defaultSQL(def, change.Next.Family)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, prefix+" SET DEFAULT "+sql)
		} else {
			stmts = append(stmts, prefix+" DROP DEFAULT")
		}
	}
	return stmts, nil
}

// alterEnumSQL adds variants in place when it can. Dropping a variant
// has no ALTER TYPE form, so that case renames the type aside, creates
// the replacement and recasts every column typed on it through text.
func alterEnumSQL(step *diff.AlterEnumStep) ([]string, error) {
	name := quoteIdent(step.Name)
	if len(step.DroppedVariants) == 0 {
		stmts := make([]string, 0, len(step.CreatedVariants))
		for _, v := range step.CreatedVariants {
			stmts = append(stmts, "ALTER TYPE "+name+" ADD VALUE "+quoteLiteral(v))
		}
		return stmts, nil
	}

	old := quoteIdent(step.Name + "_old")
	var stmts []string
	for _, use := range step.Uses {
		stmts = append(stmts, alterColumnPrefix(use)+" DROP DEFAULT")
	}
	stmts = append(stmts, "ALTER TYPE "+name+" RENAME TO "+old)
	stmts = append(stmts, createEnumSQL(step.Name, step.NextVariants))
	for _, use := range step.Uses {
		using := quoteIdent(use.Column) + "::text::" + name
		stmts = append(stmts, alterColumnPrefix(use)+" SET DATA TYPE "+name+" USING ("+using+")")
	}
	stmts = append(stmts, "DROP TYPE "+old)
	for _, use := range step.Uses {
		if use.NextDefault == nil {
			continue
		}
		sql, err := defaultSQL(use.NextDefault, schema.FamilyEnum)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, alterColumnPrefix(use)+" SET DEFAULT "+sql)
	}
	return stmts, nil
}

func alterColumnPrefix(use diff.EnumColumnUse) string {
	return "ALTER TABLE " + quoteIdent(use.Table) + " ALTER COLUMN " + quoteIdent(use.Column)
}

func createEnumSQL(name string, variants []string) string {
	quoted := make([]string, len(variants))
	for i, v := range variants {
		quoted[i] = quoteLiteral(v)
	}
	return "CREATE TYPE " + quoteIdent(name) + " AS ENUM (" + strings.Join(quoted, ", ") + ")"
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

// columnSQL renders one column definition clause. Autoincrementing
// columns use the serial pseudo-types, which already imply a sequence
// default.
func columnSQL(col diff.ColumnDef) (string, error) {
	var b strings.Builder
	b.WriteString(quoteIdent(col.Name))
	b.WriteString(" ")
	if col.AutoIncrement {
		if col.Family == schema.FamilyBigInt {
			b.WriteString("BIGSERIAL")
		} else {
			b.WriteString("SERIAL")
		}
	} else {
		b.WriteString(nativeTypeSQL(col))
	}
	if col.Arity != schema.Nullable {
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
	return b.String(), nil
}

func nativeTypeSQL(col diff.ColumnDef) string {
	native := col.Native
	if col.Family == schema.FamilyEnum && col.Enum != "" {
		native = quoteIdent(col.Enum)
	}
	if col.Arity == schema.List && !strings.HasSuffix(native, "[]") {
		native += "[]"
	}
	return native
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
	case schema.DefaultSequence:
		return "nextval(" + quoteLiteral(def.Value) + "::regclass)", nil
	case schema.DefaultDBGenerated:
		if def.Value == "" {
			return "", errs.New(errs.ErrKindUnsupported, "database-generated default has no expression to render")
		}
		return def.Value, nil
	default:
		return "", errs.New(errs.ErrKindUnsupported, fmt.Sprintf("postgres cannot render a %q default", def.Kind))
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

// pkName fills in the conventional constraint name when a snapshot did
// not carry one.
func pkName(name, table string) string {
	if name != "" {
		return name
	}
	return table + "_pkey"
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
