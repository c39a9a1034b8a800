package diff

import (
	"fmt"
	"sort"

	"github.com/koustreak/datmig/internal/schema"
)

// CalculateSteps computes the ordered migration steps that transform
// the previous snapshot into the next one under the given dialect. The
// result is deterministic: equal inputs produce byte-equal step
// sequences, and diffing a snapshot against itself produces none.
//
// Steps come out grouped into execution phases: foreign key drops,
// index drops, table drops, enum creations and alterations, table
// creations in dependency order, in-place table alterations and
// rebuilds, index renames and creations, foreign key additions, and
// enum drops last.
func CalculateSteps(schemas Pair[*schema.Snapshot], dialect Dialect) []Step {
	p := planner{db: NewDatabase(schemas, dialect)}
	return p.plan()
}

type planner struct {
	db *Database

	// createOrder positions every created table in foreign key
	// dependency order, keyed by folded name.
	createOrder map[string]int

	// redefinedNames holds the folded names of tables marked for
	// rebuild.
	redefinedNames map[string]bool
}

func (p *planner) plan() []Step {
	p.createOrder = createTableOrder(p.db)
	p.redefinedNames = make(map[string]bool)
	for _, tables := range p.db.RedefinedTablePairs() {
		p.redefinedNames[p.db.Dialect().FoldTableName(tables.Next().Name())] = true
	}

	var steps []Step
	steps = append(steps, p.foreignKeySteps()...)
	steps = append(steps, p.indexSteps()...)
	steps = append(steps, p.droppedTableSteps()...)
	steps = append(steps, p.enumSteps()...)
	steps = append(steps, p.createdTableSteps()...)
	steps = append(steps, p.alteredTableSteps()...)
	steps = append(steps, p.redefinedTableSteps()...)

	p.sortSteps(steps)
	return steps
}

// foreignKeySteps emits drops and additions for changed keys on matched
// tables, drops for keys of dropped and rebuilt tables, and additions
// for keys of created and rebuilt tables. Renamed keys become a rename
// step when the dialect can do it, a drop plus add otherwise.
func (p *planner) foreignKeySteps() []Step {
	dialect := p.db.Dialect()
	var steps []Step

	for _, tables := range p.db.NonRedefinedTablePairs() {
		for _, fk := range tables.DroppedForeignKeys() {
			if fk.ConstraintName() == "" {
				continue
			}
			steps = append(steps, dropForeignKeyStep(fk))
		}
		for _, fk := range tables.CreatedForeignKeys() {
			steps = append(steps, addForeignKeyStep(fk))
		}
		if dialect.HasUnnamedForeignKeys() {
			continue
		}
		for _, pair := range tables.ForeignKeyPairs() {
			// A surviving key pointing at a table being rebuilt cannot
			// stay in force through the rebuild; it is dropped before
			// and added back after, whether renamed or not.
			if p.bracketsRebuild(pair) {
				if pair.Previous.ConstraintName() != "" {
					steps = append(steps, dropForeignKeyStep(pair.Previous))
				}
				steps = append(steps, addForeignKeyStep(pair.Next))
			}
		}
		for _, pair := range tables.RenamedForeignKeys() {
			if p.bracketsRebuild(pair) {
				continue
			}
			if dialect.CanRenameForeignKey() {
				steps = append(steps, renameForeignKeyStep(pair))
			} else {
				steps = append(steps, dropForeignKeyStep(pair.Previous), addForeignKeyStep(pair.Next))
			}
		}
	}

	// A rebuilt table's own keys go down with the original. Dialects
	// declaring keys inside CREATE TABLE carry them in the redefine
	// step; everywhere else the previous keys are dropped before the
	// rebuild and the next definition's keys added after it.
	if !dialect.ForeignKeysInCreateTable() {
		for _, tables := range p.db.RedefinedTablePairs() {
			for _, fk := range tables.Previous().ForeignKeys() {
				if fk.ConstraintName() == "" {
					continue
				}
				steps = append(steps, dropForeignKeyStep(fk))
			}
			for _, fk := range tables.Next().ForeignKeys() {
				steps = append(steps, addForeignKeyStep(fk))
			}
		}
	}

	if dialect.ShouldDropForeignKeysOnDroppedTables() {
		for _, table := range p.db.DroppedTables() {
			for _, fk := range table.ForeignKeys() {
				if fk.ConstraintName() == "" {
					continue
				}
				steps = append(steps, dropForeignKeyStep(fk))
			}
		}
	}

	if !dialect.ForeignKeysInCreateTable() {
		for _, table := range p.db.CreatedTables() {
			for _, fk := range table.ForeignKeys() {
				steps = append(steps, addForeignKeyStep(fk))
			}
		}
	}

	return steps
}

// bracketsRebuild reports whether a matched key pair must be dropped
// and re-added around the rebuild of the table it references. Changed
// keys never need this: their drop and add steps bracket the rebuild
// already.
func (p *planner) bracketsRebuild(pair Pair[schema.ForeignKeyWalker]) bool {
	if p.db.Dialect().CanRedefineTableWithInboundForeignKeys() {
		return false
	}
	return p.redefinedNames[p.db.Dialect().FoldTableName(pair.Next.ReferencedTable().Name())]
}

// indexSteps emits drops, renames and creations for secondary indexes
// on matched and created tables. Indexes of redefined tables are
// recreated inside their redefine step instead.
func (p *planner) indexSteps() []Step {
	dialect := p.db.Dialect()
	var steps []Step

	for _, tables := range p.db.NonRedefinedTablePairs() {
		for _, idx := range tables.DroppedIndexes() {
			steps = append(steps, dropIndexStep(idx))
		}
		for _, idx := range tables.CreatedIndexes() {
			if p.indexBacksForeignKey(idx, tables.CreatedForeignKeys()) {
				continue
			}
			steps = append(steps, createIndexStep(idx))
		}
		for _, pair := range tables.RenamedIndexes() {
			if dialect.CanRenameIndex() {
				steps = append(steps, renameIndexStep(pair))
			} else {
				steps = append(steps, dropIndexStep(pair.Previous), createIndexStep(pair.Next))
			}
		}
	}

	for _, table := range p.db.CreatedTables() {
		for _, idx := range table.Indexes() {
			if idx.IsPrimaryKey() {
				continue
			}
			if p.indexBacksForeignKey(idx, table.ForeignKeys()) {
				continue
			}
			steps = append(steps, createIndexStep(idx))
		}
	}

	return steps
}

// indexBacksForeignKey reports whether the index duplicates the one the
// engine creates on its own for a new foreign key, on dialects that do
// that. Unique indexes never count: uniqueness is its own constraint.
func (p *planner) indexBacksForeignKey(idx schema.IndexWalker, fks []schema.ForeignKeyWalker) bool {
	if !p.db.Dialect().ShouldSkipForeignKeyCoveringIndexes() || idx.IsUnique() {
		return false
	}
	names := idx.ColumnNames()
	for _, fk := range fks {
		if stringsEqual(names, fk.ConstrainedColumnNames()) {
			return true
		}
	}
	return false
}

func (p *planner) droppedTableSteps() []Step {
	var steps []Step
	for _, table := range p.db.DroppedTables() {
		steps = append(steps, Step{
			Kind:      StepDropTable,
			DropTable: &DropTableStep{Name: table.Name()},
		})
	}
	return steps
}

// enumSteps emits creations, alterations and drops for enumerated
// types. An alteration that removes variants also records every column
// typed on the enum, because the recreation flow has to recast those
// columns before the old type can go away.
func (p *planner) enumSteps() []Step {
	if !p.db.Dialect().SupportsEnums() {
		return nil
	}
	var steps []Step

	for _, enum := range p.db.CreatedEnums() {
		steps = append(steps, Step{
			Kind:       StepCreateEnum,
			CreateEnum: &CreateEnumStep{Enum: enumDef(enum)},
		})
	}
	for _, pair := range p.db.EnumPairs() {
		if !pair.Changed() {
			continue
		}
		alter := AlterEnumStep{
			Name:            pair.Next().Name(),
			CreatedVariants: pair.CreatedVariants(),
			DroppedVariants: pair.DroppedVariants(),
			NextVariants:    pair.Next().Variants(),
		}
		if len(alter.DroppedVariants) > 0 {
			alter.Uses = p.enumColumnUses(pair)
		}
		steps = append(steps, Step{Kind: StepAlterEnum, AlterEnum: &alter})
	}
	for _, enum := range p.db.DroppedEnums() {
		steps = append(steps, Step{
			Kind:     StepDropEnum,
			DropEnum: &DropEnumStep{Name: enum.Name()},
		})
	}

	return steps
}

func (p *planner) enumColumnUses(enum EnumDiffer) []EnumColumnUse {
	enumName := enum.Previous().Name()
	var uses []EnumColumnUse
	for _, tables := range p.db.TablePairs() {
		for _, entry := range p.db.columnEntries(tables.Tables()) {
			if !entry.ids.hasPrevious {
				continue
			}
			prev := p.db.schemas.Previous.WalkColumn(entry.ids.previous)
			prevEnum, ok := prev.Enum()
			if !ok || prevEnum.Name() != enumName {
				continue
			}
			use := EnumColumnUse{Table: tables.Next().Name(), Column: entry.name}
			if entry.ids.hasNext {
				next := p.db.schemas.Next.WalkColumn(entry.ids.next)
				use.NextDefault = defaultDef(next.Default())
			}
			uses = append(uses, use)
		}
	}
	return uses
}

func (p *planner) createdTableSteps() []Step {
	inline := p.db.Dialect().ForeignKeysInCreateTable()
	var steps []Step
	for _, table := range p.db.CreatedTables() {
		steps = append(steps, Step{
			Kind:        StepCreateTable,
			CreateTable: &CreateTableStep{Table: tableDef(table, inline)},
		})
	}
	return steps
}

func (p *planner) alteredTableSteps() []Step {
	var steps []Step
	for _, tables := range p.db.NonRedefinedTablePairs() {
		changes := tableChanges(tables)
		if len(changes) == 0 {
			continue
		}
		steps = append(steps, Step{
			Kind: StepAlterTable,
			AlterTable: &AlterTableStep{
				Table:   tables.Next().Name(),
				Changes: changes,
			},
		})
	}
	return steps
}

// tableChanges assembles the in-place changes for one matched table, in
// execution order: drop the primary key, drop columns, add columns,
// alter columns, add the primary key.
func tableChanges(tables TableDiffer) []TableChange {
	var changes []TableChange

	if pk, ok := tables.DroppedPrimaryKey(); ok {
		changes = append(changes, TableChange{
			Kind:           ChangeDropPrimaryKey,
			DropPrimaryKey: &DropPrimaryKeyChange{Name: pk.Name()},
		})
	}
	for _, col := range tables.DroppedColumns() {
		changes = append(changes, TableChange{
			Kind:       ChangeDropColumn,
			DropColumn: &DropColumnChange{Name: col.Name()},
		})
	}
	for _, col := range tables.CreatedColumns() {
		changes = append(changes, TableChange{
			Kind:      ChangeAddColumn,
			AddColumn: &AddColumnChange{Column: columnDef(col)},
		})
	}
	for _, pair := range tables.ColumnPairs() {
		ch := pair.Changes()
		if !ch.Differs() {
			continue
		}
		changes = append(changes, TableChange{
			Kind: ChangeAlterColumn,
			AlterColumn: &AlterColumnChange{
				Name:                 pair.Next().Name(),
				Previous:             columnDef(pair.Previous()),
				Next:                 columnDef(pair.Next()),
				TypeChanged:          ch.TypeChanged(),
				ArityChanged:         ch.ArityChanged(),
				DefaultChanged:       ch.DefaultChanged(),
				AutoIncrementChanged: ch.AutoincrementChanged(),
			},
		})
	}
	if pk, ok := tables.CreatedPrimaryKey(); ok {
		changes = append(changes, TableChange{
			Kind:          ChangeAddPrimaryKey,
			AddPrimaryKey: &AddPrimaryKeyChange{Key: keyDef(pk)},
		})
	}

	return changes
}

// redefinedTableSteps emits one composite rebuild step per redefined
// table. Keys pointing at or out of the rebuilt table are handled by
// the foreign key pass, which brackets the rebuild with drops and adds
// when the dialect cannot keep them in force through it.
func (p *planner) redefinedTableSteps() []Step {
	dialect := p.db.Dialect()
	var steps []Step

	for _, tables := range p.db.RedefinedTablePairs() {
		step := RedefineTableStep{
			Table: tableDef(tables.Next(), dialect.ForeignKeysInCreateTable()),
		}
		for _, pair := range tables.ColumnPairs() {
			step.CopyColumns = append(step.CopyColumns, RedefineColumn{
				Name:        pair.Next().Name(),
				TypeChanged: pair.Changes().TypeChanged(),
			})
		}
		for _, col := range tables.CreatedColumns() {
			step.AddedColumns = append(step.AddedColumns, col.Name())
		}
		for _, col := range tables.DroppedColumns() {
			step.DroppedColumns = append(step.DroppedColumns, col.Name())
		}
		for _, idx := range tables.Next().Indexes() {
			if idx.IsPrimaryKey() {
				continue
			}
			step.Indexes = append(step.Indexes, indexDef(idx))
		}
		steps = append(steps, Step{Kind: StepRedefineTable, RedefineTable: &step})
	}

	return steps
}

// createTableOrder topologically orders created tables by the foreign
// keys they hold on other created tables, so referenced tables come
// first. Ties break by name, and cycles fall back to name order for
// the remainder.
func createTableOrder(db *Database) map[string]int {
	fold := db.Dialect().FoldTableName
	created := db.CreatedTables()

	deps := make(map[string]map[string]bool, len(created))
	for _, t := range created {
		deps[fold(t.Name())] = make(map[string]bool)
	}
	for _, t := range created {
		key := fold(t.Name())
		for _, fk := range t.ForeignKeys() {
			ref := fold(fk.ReferencedTable().Name())
			if ref == key {
				continue
			}
			if _, isCreated := deps[ref]; isCreated {
				deps[key][ref] = true
			}
		}
	}

	order := make(map[string]int, len(created))
	pos := 0
	for len(order) < len(deps) {
		var ready []string
		for key, refs := range deps {
			if _, done := order[key]; done {
				continue
			}
			satisfied := true
			for ref := range refs {
				if _, done := order[ref]; !done {
					satisfied = false
					break
				}
			}
			if satisfied {
				ready = append(ready, key)
			}
		}
		if len(ready) == 0 {
			for key := range deps {
				if _, done := order[key]; !done {
					ready = append(ready, key)
				}
			}
			sort.Strings(ready)
			for _, key := range ready {
				order[key] = pos
				pos++
			}
			break
		}
		sort.Strings(ready)
		for _, key := range ready {
			order[key] = pos
			pos++
		}
	}
	return order
}

// sortSteps puts the generated steps into execution order. The sort is
// stable and every comparison key is derived from step content, so the
// final sequence does not depend on generation order.
func (p *planner) sortSteps(steps []Step) {
	sort.SliceStable(steps, func(i, j int) bool {
		pi, si := stepPhase(steps[i])
		pj, sj := stepPhase(steps[j])
		if pi != pj {
			return pi < pj
		}
		if si != sj {
			return si < sj
		}
		return p.stepSortKey(steps[i]) < p.stepSortKey(steps[j])
	})
}

func stepPhase(s Step) (phase, sub int) {
	switch s.Kind {
	case StepDropForeignKey:
		return 1, 0
	case StepDropIndex:
		return 2, 0
	case StepDropTable:
		return 3, 0
	case StepCreateEnum:
		return 4, 0
	case StepAlterEnum:
		return 4, 1
	case StepCreateTable:
		return 5, 0
	case StepAlterTable:
		return 6, 0
	case StepRedefineTable:
		return 6, 1
	case StepRenameIndex:
		return 7, 0
	case StepCreateIndex:
		return 7, 1
	case StepRenameForeignKey:
		return 8, 0
	case StepAddForeignKey:
		return 8, 1
	case StepDropEnum:
		return 9, 0
	default:
		return 99, 0
	}
}

func (p *planner) stepSortKey(s Step) string {
	switch s.Kind {
	case StepDropForeignKey:
		return s.DropForeignKey.Table + "\x00" + s.DropForeignKey.ConstraintName
	case StepDropIndex:
		return s.DropIndex.Table + "\x00" + s.DropIndex.Name
	case StepDropTable:
		return s.DropTable.Name
	case StepCreateEnum:
		return s.CreateEnum.Enum.Name
	case StepAlterEnum:
		return s.AlterEnum.Name
	case StepCreateTable:
		fold := p.db.Dialect().FoldTableName
		return fmt.Sprintf("%06d", p.createOrder[fold(s.CreateTable.Table.Name)])
	case StepAlterTable:
		return s.AlterTable.Table
	case StepRedefineTable:
		return s.RedefineTable.Table.Name
	case StepRenameIndex:
		return s.RenameIndex.Table + "\x00" + s.RenameIndex.To
	case StepCreateIndex:
		return s.CreateIndex.Index.Table + "\x00" + s.CreateIndex.Index.Name
	case StepRenameForeignKey:
		return s.RenameForeignKey.Table + "\x00" + s.RenameForeignKey.To
	case StepAddForeignKey:
		return s.AddForeignKey.ForeignKey.Table + "\x00" + s.AddForeignKey.ForeignKey.ConstraintName
	case StepDropEnum:
		return s.DropEnum.Name
	default:
		return ""
	}
}

func dropForeignKeyStep(fk schema.ForeignKeyWalker) Step {
	return Step{
		Kind: StepDropForeignKey,
		DropForeignKey: &DropForeignKeyStep{
			Table:          fk.Table().Name(),
			ConstraintName: fk.ConstraintName(),
		},
	}
}

func addForeignKeyStep(fk schema.ForeignKeyWalker) Step {
	return Step{
		Kind:          StepAddForeignKey,
		AddForeignKey: &AddForeignKeyStep{ForeignKey: foreignKeyDef(fk)},
	}
}

func dropIndexStep(idx schema.IndexWalker) Step {
	return Step{
		Kind:      StepDropIndex,
		DropIndex: &DropIndexStep{Table: idx.Table().Name(), Name: idx.Name()},
	}
}

func createIndexStep(idx schema.IndexWalker) Step {
	return Step{
		Kind:        StepCreateIndex,
		CreateIndex: &CreateIndexStep{Index: indexDef(idx)},
	}
}

func renameIndexStep(pair Pair[schema.IndexWalker]) Step {
	return Step{
		Kind: StepRenameIndex,
		RenameIndex: &RenameIndexStep{
			Table: pair.Next.Table().Name(),
			From:  pair.Previous.Name(),
			To:    pair.Next.Name(),
		},
	}
}

func renameForeignKeyStep(pair Pair[schema.ForeignKeyWalker]) Step {
	return Step{
		Kind: StepRenameForeignKey,
		RenameForeignKey: &RenameForeignKeyStep{
			Table: pair.Next.Table().Name(),
			From:  pair.Previous.ConstraintName(),
			To:    pair.Next.ConstraintName(),
		},
	}
}
