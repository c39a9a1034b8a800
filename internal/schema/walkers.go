package schema

// Walkers are cheap value types combining a *Snapshot with an ID. They
// are the only way code outside this package navigates a snapshot.
// Walkers from different snapshots must not be mixed: comparing or
// navigating across snapshots happens by name, in the differ.

// TableWalker navigates one table.
type TableWalker struct {
	snap *Snapshot
	id   TableID
}

// ID returns the table's arena ID.
func (w TableWalker) ID() TableID { return w.id }

// Name returns the table name as stored, without case folding.
func (w TableWalker) Name() string { return w.snap.tables[w.id].name }

// Snapshot returns the snapshot this walker belongs to.
func (w TableWalker) Snapshot() *Snapshot { return w.snap }

// Columns returns the table's columns in definition order.
func (w TableWalker) Columns() []ColumnWalker {
	ids := w.snap.tables[w.id].columns
	out := make([]ColumnWalker, len(ids))
	for i, id := range ids {
		out[i] = ColumnWalker{snap: w.snap, id: id}
	}
	return out
}

// Column returns the column with the given name, matched exactly.
func (w TableWalker) Column(name string) (ColumnWalker, bool) {
	for _, id := range w.snap.tables[w.id].columns {
		if w.snap.columns[id].Name == name {
			return ColumnWalker{snap: w.snap, id: id}, true
		}
	}
	return ColumnWalker{}, false
}

// Indexes returns the table's indexes, primary key included, in arena order.
func (w TableWalker) Indexes() []IndexWalker {
	var out []IndexWalker
	for i := range w.snap.indexes {
		if w.snap.indexes[i].table == w.id {
			out = append(out, IndexWalker{snap: w.snap, id: IndexID(i)})
		}
	}
	return out
}

// PrimaryKey returns the table's primary key index, if any.
func (w TableWalker) PrimaryKey() (IndexWalker, bool) {
	for i := range w.snap.indexes {
		if w.snap.indexes[i].table == w.id && w.snap.indexes[i].kind == IndexPrimaryKey {
			return IndexWalker{snap: w.snap, id: IndexID(i)}, true
		}
	}
	return IndexWalker{}, false
}

// ForeignKeys returns the foreign keys constrained on this table, in arena order.
func (w TableWalker) ForeignKeys() []ForeignKeyWalker {
	var out []ForeignKeyWalker
	for i := range w.snap.foreignKeys {
		if w.snap.foreignKeys[i].table == w.id {
			out = append(out, ForeignKeyWalker{snap: w.snap, id: ForeignKeyID(i)})
		}
	}
	return out
}

// InboundForeignKeys returns the foreign keys of OTHER tables that
// reference this table.
func (w TableWalker) InboundForeignKeys() []ForeignKeyWalker {
	var out []ForeignKeyWalker
	for i := range w.snap.foreignKeys {
		if w.snap.foreignKeys[i].referencedTable == w.id && w.snap.foreignKeys[i].table != w.id {
			out = append(out, ForeignKeyWalker{snap: w.snap, id: ForeignKeyID(i)})
		}
	}
	return out
}

// ColumnWalker navigates one column.
type ColumnWalker struct {
	snap *Snapshot
	id   ColumnID
}

// ID returns the column's arena ID.
func (w ColumnWalker) ID() ColumnID { return w.id }

// Name returns the column name.
func (w ColumnWalker) Name() string { return w.snap.columns[w.id].Name }

// Type returns the column's full type description.
func (w ColumnWalker) Type() ColumnType { return w.snap.columns[w.id].Type }

// Arity returns the column's nullability.
func (w ColumnWalker) Arity() Arity { return w.snap.columns[w.id].Type.Arity }

// Default returns the column's structured default, or nil.
func (w ColumnWalker) Default() *DefaultValue { return w.snap.columns[w.id].Default }

// AutoIncrement reports whether the column is auto-incrementing.
func (w ColumnWalker) AutoIncrement() bool { return w.snap.columns[w.id].AutoIncrement }

// Table returns the owning table.
func (w ColumnWalker) Table() TableWalker {
	return TableWalker{snap: w.snap, id: w.snap.columns[w.id].table}
}

// Enum returns the enumerated type backing this column, when its family
// is FamilyEnum.
func (w ColumnWalker) Enum() (EnumWalker, bool) {
	t := w.snap.columns[w.id].Type
	if t.Family != FamilyEnum {
		return EnumWalker{}, false
	}
	return EnumWalker{snap: w.snap, id: t.Enum}, true
}

// IsPartOfPrimaryKey reports whether the column participates in its
// table's primary key.
func (w ColumnWalker) IsPartOfPrimaryKey() bool {
	pk, ok := w.Table().PrimaryKey()
	if !ok {
		return false
	}
	for _, ic := range pk.Columns() {
		if ic.Column.id == w.id {
			return true
		}
	}
	return false
}

// IndexWalker navigates one index or primary key.
type IndexWalker struct {
	snap *Snapshot
	id   IndexID
}

// ID returns the index's arena ID.
func (w IndexWalker) ID() IndexID { return w.id }

// Name returns the index name.
func (w IndexWalker) Name() string { return w.snap.indexes[w.id].name }

// Kind returns the index kind.
func (w IndexWalker) Kind() IndexKind { return w.snap.indexes[w.id].kind }

// IsUnique reports whether the index enforces uniqueness (unique or primary).
func (w IndexWalker) IsUnique() bool {
	k := w.snap.indexes[w.id].kind
	return k == IndexUnique || k == IndexPrimaryKey
}

// IsPrimaryKey reports whether the index is the table's primary key.
func (w IndexWalker) IsPrimaryKey() bool {
	return w.snap.indexes[w.id].kind == IndexPrimaryKey
}

// Table returns the indexed table.
func (w IndexWalker) Table() TableWalker {
	return TableWalker{snap: w.snap, id: w.snap.indexes[w.id].table}
}

// IndexedColumn is one column membership of an index, in key order.
type IndexedColumn struct {
	Column    ColumnWalker
	SortOrder SortOrder
}

// Columns returns the index's column memberships in key order.
func (w IndexWalker) Columns() []IndexedColumn {
	cols := w.snap.indexes[w.id].columns
	out := make([]IndexedColumn, len(cols))
	for i, ic := range cols {
		out[i] = IndexedColumn{
			Column:    ColumnWalker{snap: w.snap, id: ic.column},
			SortOrder: ic.order,
		}
	}
	return out
}

// ColumnNames returns the names of the indexed columns in key order.
func (w IndexWalker) ColumnNames() []string {
	cols := w.snap.indexes[w.id].columns
	out := make([]string, len(cols))
	for i, ic := range cols {
		out[i] = w.snap.columns[ic.column].Name
	}
	return out
}

// ForeignKeyWalker navigates one foreign key.
type ForeignKeyWalker struct {
	snap *Snapshot
	id   ForeignKeyID
}

// ID returns the foreign key's arena ID.
func (w ForeignKeyWalker) ID() ForeignKeyID { return w.id }

// ConstraintName returns the constraint name, empty when unnamed.
func (w ForeignKeyWalker) ConstraintName() string {
	return w.snap.foreignKeys[w.id].constraintName
}

// Table returns the constrained table.
func (w ForeignKeyWalker) Table() TableWalker {
	return TableWalker{snap: w.snap, id: w.snap.foreignKeys[w.id].table}
}

// ReferencedTable returns the table the key points at.
func (w ForeignKeyWalker) ReferencedTable() TableWalker {
	return TableWalker{snap: w.snap, id: w.snap.foreignKeys[w.id].referencedTable}
}

// OnDelete returns the ON DELETE action.
func (w ForeignKeyWalker) OnDelete() ForeignKeyAction { return w.snap.foreignKeys[w.id].onDelete }

// OnUpdate returns the ON UPDATE action.
func (w ForeignKeyWalker) OnUpdate() ForeignKeyAction { return w.snap.foreignKeys[w.id].onUpdate }

// ConstrainedColumns returns the key's local columns in constraint order.
func (w ForeignKeyWalker) ConstrainedColumns() []ColumnWalker {
	cols := w.snap.foreignKeys[w.id].columns
	out := make([]ColumnWalker, len(cols))
	for i, fc := range cols {
		out[i] = ColumnWalker{snap: w.snap, id: fc.constrained}
	}
	return out
}

// ReferencedColumns returns the referenced columns in constraint order.
func (w ForeignKeyWalker) ReferencedColumns() []ColumnWalker {
	cols := w.snap.foreignKeys[w.id].columns
	out := make([]ColumnWalker, len(cols))
	for i, fc := range cols {
		out[i] = ColumnWalker{snap: w.snap, id: fc.referenced}
	}
	return out
}

// ConstrainedColumnNames returns the local column names in constraint order.
func (w ForeignKeyWalker) ConstrainedColumnNames() []string {
	cols := w.snap.foreignKeys[w.id].columns
	out := make([]string, len(cols))
	for i, fc := range cols {
		out[i] = w.snap.columns[fc.constrained].Name
	}
	return out
}

// ReferencedColumnNames returns the referenced column names in constraint order.
func (w ForeignKeyWalker) ReferencedColumnNames() []string {
	cols := w.snap.foreignKeys[w.id].columns
	out := make([]string, len(cols))
	for i, fc := range cols {
		out[i] = w.snap.columns[fc.referenced].Name
	}
	return out
}

// EnumWalker navigates one enumerated type.
type EnumWalker struct {
	snap *Snapshot
	id   EnumID
}

// ID returns the enum's arena ID.
func (w EnumWalker) ID() EnumID { return w.id }

// Name returns the enum's name.
func (w EnumWalker) Name() string { return w.snap.enums[w.id].name }

// Variants returns the variant names in declaration order.
func (w EnumWalker) Variants() []string {
	ids := w.snap.enums[w.id].variants
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = w.snap.enumVariants[id].name
	}
	return out
}
