// Package plan turns planned migration steps into durable documents:
// yaml serialization for storage, a drift summary for humans, and SQL
// script rendering through a dialect renderer.
package plan

import (
	"fmt"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/koustreak/datmig/internal/diff"
	"github.com/koustreak/datmig/internal/errs"
)

// FormatVersion is the document format this build reads and writes.
const FormatVersion = 1

// Document is a serializable migration plan: the steps the planner
// produced for one dialect, in execution order.
type Document struct {
	FormatVersion int         `json:"format_version" yaml:"format_version"`
	Dialect       string      `json:"dialect" yaml:"dialect"`
	CreatedAt     time.Time   `json:"created_at" yaml:"created_at"`
	Steps         []diff.Step `json:"steps" yaml:"steps"`
}

// New wraps planned steps in a document for the named dialect,
// stamped with the current time.
func New(dialect string, steps []diff.Step) *Document {
	return &Document{
		FormatVersion: FormatVersion,
		Dialect:       dialect,
		CreatedAt:     time.Now().UTC(),
		Steps:         steps,
	}
}

// Marshal serializes the document as yaml.
func (d *Document) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(d)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to marshal plan", err)
	}
	return out, nil
}

// Unmarshal parses a yaml plan document and validates it: the format
// version must match, a dialect must be named, and every step must
// satisfy the envelope invariant of one payload matching its kind.
func Unmarshal(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "malformed plan document", err)
	}
	if doc.FormatVersion != FormatVersion {
		return nil, errs.New(errs.ErrKindInvalidInput,
			fmt.Sprintf("unsupported plan format version %d", doc.FormatVersion))
	}
	if doc.Dialect == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "plan names no dialect")
	}
	for i, step := range doc.Steps {
		if err := step.Validate(); err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, fmt.Sprintf("step %d invalid", i+1), err)
		}
	}
	return &doc, nil
}

// Summary returns a human-readable drift listing: what the plan adds,
// removes and changes, one line per step in plan order.
func (d *Document) Summary() string {
	if len(d.Steps) == 0 {
		return "no schema drift"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d steps for %s", len(d.Steps), d.Dialect)

	writeSection(&b, "added", "+", d.Steps, func(k diff.StepKind) bool {
		switch k {
		case diff.StepCreateEnum, diff.StepCreateTable, diff.StepCreateIndex, diff.StepAddForeignKey:
			return true
		}
		return false
	})
	writeSection(&b, "removed", "-", d.Steps, func(k diff.StepKind) bool {
		switch k {
		case diff.StepDropForeignKey, diff.StepDropIndex, diff.StepDropTable, diff.StepDropEnum:
			return true
		}
		return false
	})
	writeSection(&b, "changed", "~", d.Steps, func(k diff.StepKind) bool {
		switch k {
		case diff.StepAlterEnum, diff.StepAlterTable, diff.StepRedefineTable,
			diff.StepRenameIndex, diff.StepRenameForeignKey:
			return true
		}
		return false
	})
	return b.String()
}

func writeSection(b *strings.Builder, title, mark string, steps []diff.Step, match func(diff.StepKind) bool) {
	first := true
	for _, step := range steps {
		if !match(step.Kind) {
			continue
		}
		if first {
			fmt.Fprintf(b, "\n\n%s:", title)
			first = false
		}
		fmt.Fprintf(b, "\n  %s %s", mark, step.Describe())
	}
}
