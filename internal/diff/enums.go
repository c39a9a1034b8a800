package diff

import (
	"github.com/koustreak/datmig/internal/schema"
)

// EnumDiffer compares the two versions of one matched enumerated type.
type EnumDiffer struct {
	db    *Database
	enums Pair[schema.EnumID]
}

// Previous returns the walker for the enum's previous version.
func (d EnumDiffer) Previous() schema.EnumWalker {
	return d.db.schemas.Previous.WalkEnum(d.enums.Previous)
}

// Next returns the walker for the enum's next version.
func (d EnumDiffer) Next() schema.EnumWalker {
	return d.db.schemas.Next.WalkEnum(d.enums.Next)
}

// CreatedVariants returns variants present only on the next side, in
// next-side declaration order.
func (d EnumDiffer) CreatedVariants() []string {
	prev := make(map[string]bool)
	for _, v := range d.Previous().Variants() {
		prev[v] = true
	}
	var out []string
	for _, v := range d.Next().Variants() {
		if !prev[v] {
			out = append(out, v)
		}
	}
	return out
}

// DroppedVariants returns variants present only on the previous side,
// in previous-side declaration order.
func (d EnumDiffer) DroppedVariants() []string {
	next := make(map[string]bool)
	for _, v := range d.Next().Variants() {
		next[v] = true
	}
	var out []string
	for _, v := range d.Previous().Variants() {
		if !next[v] {
			out = append(out, v)
		}
	}
	return out
}

// Changed reports whether the variant set changed. Reordering existing
// variants alone does not count as a change.
func (d EnumDiffer) Changed() bool {
	return len(d.CreatedVariants()) > 0 || len(d.DroppedVariants()) > 0
}
