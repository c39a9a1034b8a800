package diff

import (
	"github.com/koustreak/datmig/internal/schema"
)

// Definition builders. Steps carry full definitions instead of arena
// IDs, so everything a walker knows is flattened here by name.

func tableDef(table schema.TableWalker, inlineForeignKeys bool) TableDef {
	def := TableDef{Name: table.Name()}
	for _, col := range table.Columns() {
		def.Columns = append(def.Columns, columnDef(col))
	}
	if pk, ok := table.PrimaryKey(); ok {
		k := keyDef(pk)
		def.PrimaryKey = &k
	}
	if inlineForeignKeys {
		for _, fk := range table.ForeignKeys() {
			def.ForeignKeys = append(def.ForeignKeys, foreignKeyDef(fk))
		}
	}
	return def
}

func columnDef(col schema.ColumnWalker) ColumnDef {
	def := ColumnDef{
		Name:          col.Name(),
		Family:        col.Type().Family,
		Native:        col.Type().Native,
		Arity:         col.Arity(),
		Default:       defaultDef(col.Default()),
		AutoIncrement: col.AutoIncrement(),
	}
	if enum, ok := col.Enum(); ok {
		def.Enum = enum.Name()
	}
	return def
}

func defaultDef(d *schema.DefaultValue) *DefaultDef {
	if d == nil {
		return nil
	}
	return &DefaultDef{Kind: d.Kind, Value: d.Value}
}

func keyDef(pk schema.IndexWalker) KeyDef {
	return KeyDef{Name: pk.Name(), Columns: pk.ColumnNames()}
}

func indexDef(idx schema.IndexWalker) IndexDef {
	def := IndexDef{
		Table: idx.Table().Name(),
		Name:  idx.Name(),
		Kind:  idx.Kind(),
	}
	for _, ic := range idx.Columns() {
		def.Columns = append(def.Columns, IndexColumnDef{
			Name: ic.Column.Name(),
			Sort: ic.SortOrder,
		})
	}
	return def
}

func foreignKeyDef(fk schema.ForeignKeyWalker) ForeignKeyDef {
	return ForeignKeyDef{
		Table:             fk.Table().Name(),
		ConstraintName:    fk.ConstraintName(),
		Columns:           fk.ConstrainedColumnNames(),
		ReferencedTable:   fk.ReferencedTable().Name(),
		ReferencedColumns: fk.ReferencedColumnNames(),
		OnDelete:          fk.OnDelete(),
		OnUpdate:          fk.OnUpdate(),
	}
}

func enumDef(enum schema.EnumWalker) EnumDef {
	return EnumDef{Name: enum.Name(), Variants: enum.Variants()}
}
