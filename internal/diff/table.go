package diff

import (
	"github.com/koustreak/datmig/internal/schema"
)

// TableDiffer answers every per-table question about one matched table
// pair: created, dropped and matched columns, primary key movement,
// and index and foreign key pairing. It is a cheap value wrapping the
// shared Database.
type TableDiffer struct {
	db     *Database
	tables Pair[schema.TableID]
}

// Previous returns the walker for the table in the snapshot being
// migrated from.
func (d TableDiffer) Previous() schema.TableWalker {
	return d.db.schemas.Previous.WalkTable(d.tables.Previous)
}

// Next returns the walker for the table in the snapshot being migrated to.
func (d TableDiffer) Next() schema.TableWalker {
	return d.db.schemas.Next.WalkTable(d.tables.Next)
}

// Tables returns the pair of arena IDs identifying this match.
func (d TableDiffer) Tables() Pair[schema.TableID] { return d.tables }

// CreatedColumns returns columns present only on the next side, in
// name order.
func (d TableDiffer) CreatedColumns() []schema.ColumnWalker {
	var out []schema.ColumnWalker
	for _, e := range d.db.columnEntries(d.tables) {
		if id, ok := e.ids.nextOnly(); ok {
			out = append(out, d.db.schemas.Next.WalkColumn(id))
		}
	}
	return out
}

// DroppedColumns returns columns present only on the previous side, in
// name order.
func (d TableDiffer) DroppedColumns() []schema.ColumnWalker {
	var out []schema.ColumnWalker
	for _, e := range d.db.columnEntries(d.tables) {
		if id, ok := e.ids.previousOnly(); ok {
			out = append(out, d.db.schemas.Previous.WalkColumn(id))
		}
	}
	return out
}

// ColumnPairs returns a differ for every column present on both sides,
// in name order.
func (d TableDiffer) ColumnPairs() []ColumnDiffer {
	var out []ColumnDiffer
	for _, e := range d.db.columnEntries(d.tables) {
		if cols, ok := e.ids.transpose(); ok {
			out = append(out, ColumnDiffer{db: d.db, columns: cols})
		}
	}
	return out
}

// AnyColumnChanged reports whether at least one matched column differs.
func (d TableDiffer) AnyColumnChanged() bool {
	for _, pair := range d.ColumnPairs() {
		if pair.Changes().Differs() {
			return true
		}
	}
	return false
}

// PrimaryKeyChanged reports whether the primary key moved: appeared,
// disappeared, or covers a different column sequence.
func (d TableDiffer) PrimaryKeyChanged() bool {
	prev, hasPrev := d.Previous().PrimaryKey()
	next, hasNext := d.Next().PrimaryKey()
	if hasPrev != hasNext {
		return true
	}
	if !hasPrev {
		return false
	}
	return !stringsEqual(prev.ColumnNames(), next.ColumnNames())
}

// DroppedPrimaryKey returns the previous primary key when the change
// requires dropping it.
func (d TableDiffer) DroppedPrimaryKey() (schema.IndexWalker, bool) {
	prev, hasPrev := d.Previous().PrimaryKey()
	if hasPrev && d.PrimaryKeyChanged() {
		return prev, true
	}
	return schema.IndexWalker{}, false
}

// CreatedPrimaryKey returns the next primary key when the change
// requires adding it.
func (d TableDiffer) CreatedPrimaryKey() (schema.IndexWalker, bool) {
	next, hasNext := d.Next().PrimaryKey()
	if hasNext && d.PrimaryKeyChanged() {
		return next, true
	}
	return schema.IndexWalker{}, false
}

// IndexPairs returns structurally matched secondary index pairs, in
// previous-side arena order. Two indexes match when they cover the same
// column sequence with the same sort orders and agree on uniqueness.
// Primary keys never participate: key movement is a table change.
// Matching is greedy, each next-side index claimed at most once.
func (d TableDiffer) IndexPairs() []Pair[schema.IndexWalker] {
	var out []Pair[schema.IndexWalker]
	claimed := make(map[schema.IndexID]bool)
	for _, prev := range d.Previous().Indexes() {
		if prev.IsPrimaryKey() {
			continue
		}
		for _, next := range d.Next().Indexes() {
			if next.IsPrimaryKey() || claimed[next.ID()] {
				continue
			}
			if indexesMatch(prev, next) {
				claimed[next.ID()] = true
				out = append(out, Pair[schema.IndexWalker]{Previous: prev, Next: next})
				break
			}
		}
	}
	return out
}

// CreatedIndexes returns next-side secondary indexes with no structural
// counterpart on the previous side.
func (d TableDiffer) CreatedIndexes() []schema.IndexWalker {
	matched := make(map[schema.IndexID]bool)
	for _, pair := range d.IndexPairs() {
		matched[pair.Next.ID()] = true
	}
	var out []schema.IndexWalker
	for _, next := range d.Next().Indexes() {
		if !next.IsPrimaryKey() && !matched[next.ID()] {
			out = append(out, next)
		}
	}
	return out
}

// DroppedIndexes returns previous-side secondary indexes with no
// structural counterpart on the next side.
func (d TableDiffer) DroppedIndexes() []schema.IndexWalker {
	matched := make(map[schema.IndexID]bool)
	for _, pair := range d.IndexPairs() {
		matched[pair.Previous.ID()] = true
	}
	var out []schema.IndexWalker
	for _, prev := range d.Previous().Indexes() {
		if !prev.IsPrimaryKey() && !matched[prev.ID()] {
			out = append(out, prev)
		}
	}
	return out
}

// RenamedIndexes returns the structurally matched pairs whose names
// differ.
func (d TableDiffer) RenamedIndexes() []Pair[schema.IndexWalker] {
	var out []Pair[schema.IndexWalker]
	for _, pair := range d.IndexPairs() {
		if pair.Previous.Name() != pair.Next.Name() {
			out = append(out, pair)
		}
	}
	return out
}

// ForeignKeyPairs returns matched foreign key pairs, in previous-side
// arena order. Matching is structural, never by constraint name, so a
// renamed key still pairs.
func (d TableDiffer) ForeignKeyPairs() []Pair[schema.ForeignKeyWalker] {
	var out []Pair[schema.ForeignKeyWalker]
	claimed := make(map[schema.ForeignKeyID]bool)
	for _, prev := range d.Previous().ForeignKeys() {
		for _, next := range d.Next().ForeignKeys() {
			if claimed[next.ID()] {
				continue
			}
			if d.foreignKeysMatch(prev, next) {
				claimed[next.ID()] = true
				out = append(out, Pair[schema.ForeignKeyWalker]{Previous: prev, Next: next})
				break
			}
		}
	}
	return out
}

// CreatedForeignKeys returns next-side foreign keys with no match on
// the previous side.
func (d TableDiffer) CreatedForeignKeys() []schema.ForeignKeyWalker {
	matched := make(map[schema.ForeignKeyID]bool)
	for _, pair := range d.ForeignKeyPairs() {
		matched[pair.Next.ID()] = true
	}
	var out []schema.ForeignKeyWalker
	for _, next := range d.Next().ForeignKeys() {
		if !matched[next.ID()] {
			out = append(out, next)
		}
	}
	return out
}

// DroppedForeignKeys returns previous-side foreign keys with no match
// on the next side.
func (d TableDiffer) DroppedForeignKeys() []schema.ForeignKeyWalker {
	matched := make(map[schema.ForeignKeyID]bool)
	for _, pair := range d.ForeignKeyPairs() {
		matched[pair.Previous.ID()] = true
	}
	var out []schema.ForeignKeyWalker
	for _, prev := range d.Previous().ForeignKeys() {
		if !matched[prev.ID()] {
			out = append(out, prev)
		}
	}
	return out
}

// RenamedForeignKeys returns the matched pairs whose constraint names
// differ. Unnamed keys never count as renamed.
func (d TableDiffer) RenamedForeignKeys() []Pair[schema.ForeignKeyWalker] {
	var out []Pair[schema.ForeignKeyWalker]
	for _, pair := range d.ForeignKeyPairs() {
		if pair.Previous.ConstraintName() == "" || pair.Next.ConstraintName() == "" {
			continue
		}
		if pair.Previous.ConstraintName() != pair.Next.ConstraintName() {
			out = append(out, pair)
		}
	}
	return out
}

// foreignKeysMatch decides whether two foreign keys describe the same
// relationship. The constrained columns must keep their types, because
// engines rebuild key-backing columns as drop-and-recreate, which takes
// the key down with it.
func (d TableDiffer) foreignKeysMatch(prev, next schema.ForeignKeyWalker) bool {
	fold := d.db.dialect.FoldTableName
	if fold(prev.ReferencedTable().Name()) != fold(next.ReferencedTable().Name()) {
		return false
	}

	prevCols, nextCols := prev.ConstrainedColumns(), next.ConstrainedColumns()
	if len(prevCols) != len(nextCols) {
		return false
	}
	for i := range prevCols {
		if prevCols[i].Name() != nextCols[i].Name() {
			return false
		}
		changes, ok := d.db.changesFor(Pair[schema.ColumnID]{
			Previous: prevCols[i].ID(),
			Next:     nextCols[i].ID(),
		})
		if !ok || changes.TypeChanged() {
			return false
		}
		if prevCols[i].Arity() != nextCols[i].Arity() {
			tightened := prevCols[i].Arity() == schema.Nullable &&
				nextCols[i].Arity() == schema.Required
			if !tightened || !d.db.dialect.CanTightenForeignKeyColumns() {
				return false
			}
		}
	}

	if !stringsEqual(prev.ReferencedColumnNames(), next.ReferencedColumnNames()) {
		return false
	}
	return prev.OnDelete() == next.OnDelete() && prev.OnUpdate() == next.OnUpdate()
}

func indexesMatch(prev, next schema.IndexWalker) bool {
	prevCols, nextCols := prev.Columns(), next.Columns()
	if len(prevCols) != len(nextCols) {
		return false
	}
	for i := range prevCols {
		if prevCols[i].Column.Name() != nextCols[i].Column.Name() {
			return false
		}
		if prevCols[i].SortOrder != nextCols[i].SortOrder {
			return false
		}
	}
	return prev.IsUnique() == next.IsUnique()
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ColumnDiffer is one matched column pair with its cached change
// classification.
type ColumnDiffer struct {
	db      *Database
	columns Pair[schema.ColumnID]
}

// Previous returns the walker for the column's previous version.
func (d ColumnDiffer) Previous() schema.ColumnWalker {
	return d.db.schemas.Previous.WalkColumn(d.columns.Previous)
}

// Next returns the walker for the column's next version.
func (d ColumnDiffer) Next() schema.ColumnWalker {
	return d.db.schemas.Next.WalkColumn(d.columns.Next)
}

// Columns returns the pair of arena IDs identifying this match.
func (d ColumnDiffer) Columns() Pair[schema.ColumnID] { return d.columns }

// Changes returns the cached change classification.
func (d ColumnDiffer) Changes() ColumnChanges {
	changes, ok := d.db.changesFor(d.columns)
	if !ok {
		panic("diff: column pair missing from change cache")
	}
	return changes
}
