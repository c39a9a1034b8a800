package diff

import (
	"strings"

	"github.com/koustreak/datmig/internal/schema"
)

// ColumnChange is one independent axis on which a column can differ
// between snapshots.
type ColumnChange uint8

const (
	// ColumnChangeFamily means the dialect-independent type class changed.
	ColumnChangeFamily ColumnChange = 1 << iota

	// ColumnChangeNativeType means the dialect-level type spelling
	// changed (e.g. varchar(100) → varchar(255)) while the family may
	// not have.
	ColumnChangeNativeType

	// ColumnChangeArity means nullability or cardinality changed.
	ColumnChangeArity

	// ColumnChangeDefault means the structured default changed.
	ColumnChangeDefault

	// ColumnChangeAutoincrement means the auto-increment property changed.
	ColumnChangeAutoincrement
)

// ColumnChanges is the change classification of one matched column
// pair. It is computed once during pairing and cached; every query on
// it is O(1).
type ColumnChanges struct {
	changes ColumnChange
}

// Differs reports whether anything about the column changed.
func (c ColumnChanges) Differs() bool { return c.changes != 0 }

// FamilyChanged reports whether the type family changed.
func (c ColumnChanges) FamilyChanged() bool { return c.changes&ColumnChangeFamily != 0 }

// NativeTypeChanged reports whether the dialect-level type spelling changed.
func (c ColumnChanges) NativeTypeChanged() bool { return c.changes&ColumnChangeNativeType != 0 }

// TypeChanged reports whether the column's type changed on either the
// family or the native-type axis.
func (c ColumnChanges) TypeChanged() bool {
	return c.changes&(ColumnChangeFamily|ColumnChangeNativeType) != 0
}

// ArityChanged reports whether nullability or cardinality changed.
func (c ColumnChanges) ArityChanged() bool { return c.changes&ColumnChangeArity != 0 }

// DefaultChanged reports whether the structured default changed.
func (c ColumnChanges) DefaultChanged() bool { return c.changes&ColumnChangeDefault != 0 }

// AutoincrementChanged reports whether the auto-increment property changed.
func (c ColumnChanges) AutoincrementChanged() bool {
	return c.changes&ColumnChangeAutoincrement != 0
}

// compareColumns classifies how a matched column pair differs. Enum
// types are compared by enum name, never by arena ID, because IDs are
// only meaningful within their own snapshot.
func compareColumns(cols Pair[schema.ColumnWalker]) ColumnChanges {
	var ch ColumnChange

	if !familiesEqual(cols) {
		ch |= ColumnChangeFamily
	}
	if cols.Previous.Type().Native != cols.Next.Type().Native {
		ch |= ColumnChangeNativeType
	}
	if cols.Previous.Arity() != cols.Next.Arity() {
		ch |= ColumnChangeArity
	}
	if !defaultsEqual(cols.Previous.Default(), cols.Next.Default()) {
		ch |= ColumnChangeDefault
	}
	if cols.Previous.AutoIncrement() != cols.Next.AutoIncrement() {
		ch |= ColumnChangeAutoincrement
	}

	return ColumnChanges{changes: ch}
}

func familiesEqual(cols Pair[schema.ColumnWalker]) bool {
	prev, next := cols.Previous.Type(), cols.Next.Type()
	if prev.Family != next.Family {
		return false
	}
	if prev.Family != schema.FamilyEnum {
		return true
	}
	prevEnum, _ := cols.Previous.Enum()
	nextEnum, _ := cols.Next.Enum()
	return prevEnum.Name() == nextEnum.Name()
}

// defaultsEqual compares structured defaults. Sequence defaults compare
// by kind only (sequence names are dialect-managed and follow table
// renames), and database-generated defaults with an unrecovered
// expression on either side compare equal.
func defaultsEqual(prev, next *schema.DefaultValue) bool {
	if prev == nil || next == nil {
		return prev == next
	}
	if prev.Kind != next.Kind {
		return false
	}

	switch prev.Kind {
	case schema.DefaultNow, schema.DefaultUniqueRowID, schema.DefaultSequence:
		return true
	case schema.DefaultDBGenerated:
		p, n := strings.TrimSpace(prev.Value), strings.TrimSpace(next.Value)
		if p == "" || n == "" {
			return true
		}
		return p == n
	default:
		return prev.Value == next.Value
	}
}
