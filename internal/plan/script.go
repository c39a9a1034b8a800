package plan

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/koustreak/datmig/internal/diff"
)

// StepRenderer turns one step into dialect SQL statements. The dialect
// renderer packages satisfy it.
type StepRenderer interface {
	RenderStep(step diff.Step) ([]string, error)
}

// WriteScript renders the plan as an executable SQL script: a header,
// then each step's summary as a comment followed by its statements,
// semicolon-terminated, in plan order.
func (d *Document) WriteScript(w io.Writer, r StepRenderer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "-- migration script for %s (%d steps)\n", d.Dialect, len(d.Steps))
	if !d.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "-- created %s\n", d.CreatedAt.UTC().Format(time.RFC3339))
	}

	for i, step := range d.Steps {
		stmts, err := r.RenderStep(step)
		if err != nil {
			return err
		}
		fmt.Fprintf(&b, "\n-- %d. %s\n", i+1, step.Describe())
		for _, stmt := range stmts {
			b.WriteString(stmt)
			b.WriteString(";\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
