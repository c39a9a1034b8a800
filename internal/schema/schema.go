// Package schema defines the snapshot model consumed by the differ.
//
// A Snapshot is a complete, self-contained description of one database
// schema at one point in time. Objects live in flat arenas indexed by
// typed integer IDs; relationships (table→columns, index→columns,
// foreign key→column pairs) are stored as IDs, never as pointers or
// names. Describers and tests build snapshots through the Add* methods;
// the differ reads them through walkers and never mutates them.
//
// Usage:
//
//	s := schema.New()
//	users := s.AddTable("users")
//	id := s.AddColumn(users, schema.Column{
//	    Name: "id",
//	    Type: schema.ColumnType{Family: schema.FamilyInt, Native: "integer", Arity: schema.Required},
//	    AutoIncrement: true,
//	})
//	pk := s.AddIndex(users, "users_pkey", schema.IndexPrimaryKey)
//	s.AddIndexColumn(pk, id, schema.SortAsc)
package schema

// Snapshot holds one schema version. The zero value is not usable;
// construct with New.
type Snapshot struct {
	tables       []table
	columns      []tableColumn
	indexes      []index
	foreignKeys  []foreignKey
	enums        []enumType
	enumVariants []enumVariant
	sequences    []Sequence
}

type table struct {
	name    string
	columns []ColumnID // definition order
}

type tableColumn struct {
	table TableID
	Column
}

type index struct {
	table   TableID
	name    string
	kind    IndexKind
	columns []indexColumn
}

type indexColumn struct {
	column ColumnID
	order  SortOrder
}

type foreignKey struct {
	table           TableID
	referencedTable TableID
	constraintName  string // empty on dialects with unnamed foreign keys
	onDelete        ForeignKeyAction
	onUpdate        ForeignKeyAction
	columns         []foreignKeyColumn
}

type foreignKeyColumn struct {
	constrained ColumnID
	referenced  ColumnID
}

type enumType struct {
	name     string
	variants []EnumVariantID
}

type enumVariant struct {
	enum EnumID
	name string
}

// New returns an empty Snapshot ready for building.
func New() *Snapshot {
	return &Snapshot{}
}

// --- Builder surface ---

// AddTable appends a table and returns its ID.
func (s *Snapshot) AddTable(name string) TableID {
	s.tables = append(s.tables, table{name: name})
	return TableID(len(s.tables) - 1)
}

// AddColumn appends a column to the given table and returns its ID.
// An empty Arity is normalized to Required.
func (s *Snapshot) AddColumn(t TableID, col Column) ColumnID {
	if col.Type.Arity == "" {
		col.Type.Arity = Required
	}
	id := ColumnID(len(s.columns))
	s.columns = append(s.columns, tableColumn{table: t, Column: col})
	s.tables[t].columns = append(s.tables[t].columns, id)
	return id
}

// AddIndex appends an index (or primary key) on the given table and
// returns its ID. Columns are attached with AddIndexColumn.
func (s *Snapshot) AddIndex(t TableID, name string, kind IndexKind) IndexID {
	s.indexes = append(s.indexes, index{table: t, name: name, kind: kind})
	return IndexID(len(s.indexes) - 1)
}

// AddIndexColumn appends a column membership to an index, in key order.
func (s *Snapshot) AddIndexColumn(idx IndexID, col ColumnID, order SortOrder) {
	if order == "" {
		order = SortAsc
	}
	s.indexes[idx].columns = append(s.indexes[idx].columns, indexColumn{column: col, order: order})
}

// AddForeignKey appends a foreign key from table t to referenced and
// returns its ID. Column pairs are attached with AddForeignKeyColumn.
func (s *Snapshot) AddForeignKey(t, referenced TableID, constraintName string, onDelete, onUpdate ForeignKeyAction) ForeignKeyID {
	if onDelete == "" {
		onDelete = NoAction
	}
	if onUpdate == "" {
		onUpdate = NoAction
	}
	s.foreignKeys = append(s.foreignKeys, foreignKey{
		table:           t,
		referencedTable: referenced,
		constraintName:  constraintName,
		onDelete:        onDelete,
		onUpdate:        onUpdate,
	})
	return ForeignKeyID(len(s.foreignKeys) - 1)
}

// AddForeignKeyColumn appends a (constrained, referenced) column pair to
// a foreign key, in constraint order.
func (s *Snapshot) AddForeignKeyColumn(fk ForeignKeyID, constrained, referenced ColumnID) {
	s.foreignKeys[fk].columns = append(s.foreignKeys[fk].columns, foreignKeyColumn{
		constrained: constrained,
		referenced:  referenced,
	})
}

// AddEnum appends an enumerated type and returns its ID.
func (s *Snapshot) AddEnum(name string) EnumID {
	s.enums = append(s.enums, enumType{name: name})
	return EnumID(len(s.enums) - 1)
}

// AddEnumVariant appends a variant to an enum, in declaration order.
func (s *Snapshot) AddEnumVariant(e EnumID, name string) EnumVariantID {
	id := EnumVariantID(len(s.enumVariants))
	s.enumVariants = append(s.enumVariants, enumVariant{enum: e, name: name})
	s.enums[e].variants = append(s.enums[e].variants, id)
	return id
}

// AddSequence appends a sequence and returns its ID.
func (s *Snapshot) AddSequence(seq Sequence) SequenceID {
	s.sequences = append(s.sequences, seq)
	return SequenceID(len(s.sequences) - 1)
}

// --- Read surface ---

// TableCount returns the number of tables in the snapshot.
func (s *Snapshot) TableCount() int {
	return len(s.tables)
}

// ColumnCount returns the total number of columns across all tables.
func (s *Snapshot) ColumnCount() int {
	return len(s.columns)
}

// EnumCount returns the number of enumerated types in the snapshot.
func (s *Snapshot) EnumCount() int {
	return len(s.enums)
}

// Tables returns walkers over every table, in arena order.
func (s *Snapshot) Tables() []TableWalker {
	out := make([]TableWalker, len(s.tables))
	for i := range s.tables {
		out[i] = TableWalker{snap: s, id: TableID(i)}
	}
	return out
}

// Enums returns walkers over every enumerated type, in arena order.
func (s *Snapshot) Enums() []EnumWalker {
	out := make([]EnumWalker, len(s.enums))
	for i := range s.enums {
		out[i] = EnumWalker{snap: s, id: EnumID(i)}
	}
	return out
}

// Sequences returns the snapshot's sequences, in arena order.
func (s *Snapshot) Sequences() []Sequence {
	return s.sequences
}

// FindSequence returns the sequence with the given name, if present.
func (s *Snapshot) FindSequence(name string) (Sequence, bool) {
	for _, seq := range s.sequences {
		if seq.Name == name {
			return seq, true
		}
	}
	return Sequence{}, false
}

// WalkTable returns a walker for the table with the given ID.
func (s *Snapshot) WalkTable(id TableID) TableWalker {
	return TableWalker{snap: s, id: id}
}

// WalkColumn returns a walker for the column with the given ID.
func (s *Snapshot) WalkColumn(id ColumnID) ColumnWalker {
	return ColumnWalker{snap: s, id: id}
}

// WalkIndex returns a walker for the index with the given ID.
func (s *Snapshot) WalkIndex(id IndexID) IndexWalker {
	return IndexWalker{snap: s, id: id}
}

// WalkForeignKey returns a walker for the foreign key with the given ID.
func (s *Snapshot) WalkForeignKey(id ForeignKeyID) ForeignKeyWalker {
	return ForeignKeyWalker{snap: s, id: id}
}

// WalkEnum returns a walker for the enum with the given ID.
func (s *Snapshot) WalkEnum(id EnumID) EnumWalker {
	return EnumWalker{snap: s, id: id}
}
