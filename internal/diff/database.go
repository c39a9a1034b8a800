package diff

import (
	"sort"
	"strings"

	"github.com/koustreak/datmig/internal/schema"
)

// Database is the paired view of two snapshots. It is built once per
// diff and answers every "what matches what" question the planner asks:
// which tables exist on both sides, which columns pair up inside a
// matched table, how each matched column changed, and which matched
// tables the dialect wants rebuilt instead of altered.
type Database struct {
	schemas Pair[*schema.Snapshot]
	dialect Dialect

	// tables maps the folded table name to its pairing slot. tableOrder
	// keeps the folded names in a deterministic order: previous-snapshot
	// arena order first, then tables that only exist in the next
	// snapshot, in next-snapshot arena order.
	tables     map[string]slot[schema.TableID]
	tableOrder []string

	// columnIndex holds one entry per column name seen in a matched
	// table pair, sorted by (previous table, next table, name) so a
	// pair's columns are one contiguous range.
	columnIndex []columnEntry

	// columnChanges caches the classification of every matched column
	// pair, computed eagerly during construction.
	columnChanges map[Pair[schema.ColumnID]]ColumnChanges

	enums     map[string]slot[schema.EnumID]
	enumOrder []string

	redefined map[Pair[schema.TableID]]bool
}

type columnEntry struct {
	tables Pair[schema.TableID]
	name   string
	ids    slot[schema.ColumnID]
}

// NewDatabase pairs the two snapshots under the given dialect. Tables
// pair by folded name, columns inside a matched table pair by exact
// name, enums by exact name. The migrations history table and any
// dialect-reserved tables are excluded on both sides.
//
// Snapshots feeding the differ come from describers or from plan
// documents, both of which guarantee well-formedness; NewDatabase
// panics on duplicate folded names rather than returning an error.
func NewDatabase(schemas Pair[*schema.Snapshot], dialect Dialect) *Database {
	db := &Database{
		schemas:       schemas,
		dialect:       dialect,
		tables:        make(map[string]slot[schema.TableID]),
		columnChanges: make(map[Pair[schema.ColumnID]]ColumnChanges),
		enums:         make(map[string]slot[schema.EnumID]),
		redefined:     make(map[Pair[schema.TableID]]bool),
	}

	for _, t := range schemas.Previous.Tables() {
		if tableIsIgnored(dialect, t.Name()) {
			continue
		}
		key := dialect.FoldTableName(t.Name())
		s := db.tables[key]
		if s.hasPrevious {
			panic("diff: previous snapshot has two tables folding to " + key)
		}
		s.fillPrevious(t.ID())
		db.tables[key] = s
		db.tableOrder = append(db.tableOrder, key)
	}
	for _, t := range schemas.Next.Tables() {
		if tableIsIgnored(dialect, t.Name()) {
			continue
		}
		key := dialect.FoldTableName(t.Name())
		s, seen := db.tables[key]
		if s.hasNext {
			panic("diff: next snapshot has two tables folding to " + key)
		}
		s.fillNext(t.ID())
		db.tables[key] = s
		if !seen {
			db.tableOrder = append(db.tableOrder, key)
		}
	}

	db.indexColumns()

	if dialect.SupportsEnums() {
		for _, e := range schemas.Previous.Enums() {
			s := db.enums[e.Name()]
			if s.hasPrevious {
				panic("diff: previous snapshot has two enums named " + e.Name())
			}
			s.fillPrevious(e.ID())
			db.enums[e.Name()] = s
			db.enumOrder = append(db.enumOrder, e.Name())
		}
		for _, e := range schemas.Next.Enums() {
			s, seen := db.enums[e.Name()]
			if s.hasNext {
				panic("diff: next snapshot has two enums named " + e.Name())
			}
			s.fillNext(e.ID())
			db.enums[e.Name()] = s
			if !seen {
				db.enumOrder = append(db.enumOrder, e.Name())
			}
		}
	}

	// Redefinition verdicts come last: they may consult any pairing
	// built above, column changes included.
	for _, differ := range db.TablePairs() {
		if dialect.NeedsRedefinition(differ) {
			db.redefined[differ.tables] = true
		}
	}

	return db
}

func tableIsIgnored(dialect Dialect, name string) bool {
	return strings.EqualFold(name, MigrationsTableName) || dialect.TableShouldBeIgnored(name)
}

// indexColumns fills columnIndex and columnChanges for every matched
// table pair.
func (db *Database) indexColumns() {
	for _, key := range db.tableOrder {
		tables, ok := db.tables[key].transpose()
		if !ok {
			continue
		}
		prev := db.schemas.Previous.WalkTable(tables.Previous)
		next := db.schemas.Next.WalkTable(tables.Next)

		byName := make(map[string]slot[schema.ColumnID])
		var names []string
		for _, c := range prev.Columns() {
			s := byName[c.Name()]
			s.fillPrevious(c.ID())
			byName[c.Name()] = s
			names = append(names, c.Name())
		}
		for _, c := range next.Columns() {
			s, seen := byName[c.Name()]
			s.fillNext(c.ID())
			byName[c.Name()] = s
			if !seen {
				names = append(names, c.Name())
			}
		}

		for _, name := range names {
			ids := byName[name]
			db.columnIndex = append(db.columnIndex, columnEntry{
				tables: tables,
				name:   name,
				ids:    ids,
			})
			if cols, ok := ids.transpose(); ok {
				walkers := Pair[schema.ColumnWalker]{
					Previous: db.schemas.Previous.WalkColumn(cols.Previous),
					Next:     db.schemas.Next.WalkColumn(cols.Next),
				}
				db.columnChanges[cols] = compareColumns(walkers)
			}
		}
	}

	sort.Slice(db.columnIndex, func(i, j int) bool {
		a, b := db.columnIndex[i], db.columnIndex[j]
		if a.tables.Previous != b.tables.Previous {
			return a.tables.Previous < b.tables.Previous
		}
		if a.tables.Next != b.tables.Next {
			return a.tables.Next < b.tables.Next
		}
		return a.name < b.name
	})
}

// columnEntries returns the contiguous index range belonging to one
// table pair.
func (db *Database) columnEntries(tables Pair[schema.TableID]) []columnEntry {
	n := len(db.columnIndex)
	lo := sort.Search(n, func(i int) bool {
		e := db.columnIndex[i].tables
		if e.Previous != tables.Previous {
			return e.Previous > tables.Previous
		}
		return e.Next >= tables.Next
	})
	hi := sort.Search(n, func(i int) bool {
		e := db.columnIndex[i].tables
		if e.Previous != tables.Previous {
			return e.Previous > tables.Previous
		}
		return e.Next > tables.Next
	})
	return db.columnIndex[lo:hi]
}

// changesFor returns the cached classification for a matched column
// pair. The second return is false when the IDs never formed a pair.
func (db *Database) changesFor(columns Pair[schema.ColumnID]) (ColumnChanges, bool) {
	c, ok := db.columnChanges[columns]
	return c, ok
}

// Schemas returns the snapshots being diffed.
func (db *Database) Schemas() Pair[*schema.Snapshot] { return db.schemas }

// Dialect returns the dialect the pairing was built under.
func (db *Database) Dialect() Dialect { return db.dialect }

// CreatedTables returns tables present only in the next snapshot, in
// next-snapshot arena order.
func (db *Database) CreatedTables() []schema.TableWalker {
	var out []schema.TableWalker
	for _, key := range db.tableOrder {
		if id, ok := db.tables[key].nextOnly(); ok {
			out = append(out, db.schemas.Next.WalkTable(id))
		}
	}
	return out
}

// DroppedTables returns tables present only in the previous snapshot,
// in previous-snapshot arena order.
func (db *Database) DroppedTables() []schema.TableWalker {
	var out []schema.TableWalker
	for _, key := range db.tableOrder {
		if id, ok := db.tables[key].previousOnly(); ok {
			out = append(out, db.schemas.Previous.WalkTable(id))
		}
	}
	return out
}

// TablePairs returns a differ for every table present in both
// snapshots, redefined ones included.
func (db *Database) TablePairs() []TableDiffer {
	var out []TableDiffer
	for _, key := range db.tableOrder {
		if tables, ok := db.tables[key].transpose(); ok {
			out = append(out, TableDiffer{db: db, tables: tables})
		}
	}
	return out
}

// RedefinedTablePairs returns the matched tables the dialect decided to
// rebuild.
func (db *Database) RedefinedTablePairs() []TableDiffer {
	var out []TableDiffer
	for _, differ := range db.TablePairs() {
		if db.redefined[differ.tables] {
			out = append(out, differ)
		}
	}
	return out
}

// NonRedefinedTablePairs returns the matched tables that will be
// altered in place. Together with RedefinedTablePairs it partitions
// TablePairs.
func (db *Database) NonRedefinedTablePairs() []TableDiffer {
	var out []TableDiffer
	for _, differ := range db.TablePairs() {
		if !db.redefined[differ.tables] {
			out = append(out, differ)
		}
	}
	return out
}

// IsRedefined reports whether the matched table pair was marked for
// rebuild.
func (db *Database) IsRedefined(tables Pair[schema.TableID]) bool {
	return db.redefined[tables]
}

// CreatedEnums returns enums present only in the next snapshot.
func (db *Database) CreatedEnums() []schema.EnumWalker {
	var out []schema.EnumWalker
	for _, name := range db.enumOrder {
		if id, ok := db.enums[name].nextOnly(); ok {
			out = append(out, db.schemas.Next.WalkEnum(id))
		}
	}
	return out
}

// DroppedEnums returns enums present only in the previous snapshot.
func (db *Database) DroppedEnums() []schema.EnumWalker {
	var out []schema.EnumWalker
	for _, name := range db.enumOrder {
		if id, ok := db.enums[name].previousOnly(); ok {
			out = append(out, db.schemas.Previous.WalkEnum(id))
		}
	}
	return out
}

// EnumPairs returns a differ for every enum present in both snapshots.
func (db *Database) EnumPairs() []EnumDiffer {
	var out []EnumDiffer
	for _, name := range db.enumOrder {
		if enums, ok := db.enums[name].transpose(); ok {
			out = append(out, EnumDiffer{db: db, enums: enums})
		}
	}
	return out
}
