package sqlite

import (
	"strings"

	"github.com/koustreak/datmig/internal/schema"
)

// typeFamily classifies a declared column type the way SQLite's own
// affinity rules do: by substring, with no regard for what the rest of
// the declaration says. Richer families (bigint, boolean, datetime)
// are carved out before the broad affinity buckets claim them.
func typeFamily(decl string) schema.ColumnFamily {
	t := strings.ToUpper(decl)
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = t[:i]
	}
	t = strings.TrimSpace(t)

	switch {
	case t == "":
		// No declared type means BLOB affinity.
		return schema.FamilyBinary
	case strings.Contains(t, "BIGINT") || t == "INT8":
		return schema.FamilyBigInt
	case strings.Contains(t, "INT"):
		return schema.FamilyInt
	case strings.Contains(t, "CHAR"), strings.Contains(t, "CLOB"), strings.Contains(t, "TEXT"):
		return schema.FamilyString
	case strings.Contains(t, "BLOB"):
		return schema.FamilyBinary
	case strings.Contains(t, "REAL"), strings.Contains(t, "FLOA"), strings.Contains(t, "DOUB"):
		return schema.FamilyFloat
	case strings.Contains(t, "BOOL"):
		return schema.FamilyBoolean
	case strings.Contains(t, "NUMERIC"), strings.Contains(t, "DECIMAL"):
		return schema.FamilyDecimal
	case strings.Contains(t, "DATE"), strings.Contains(t, "TIME"):
		return schema.FamilyDateTime
	case strings.Contains(t, "JSON"):
		return schema.FamilyJSON
	case strings.Contains(t, "UUID"):
		return schema.FamilyUUID
	}
	return schema.FamilyUnsupported
}

// parseDefault interprets the dflt_value column of PRAGMA table_info.
// SQLite hands the default back as the literal SQL text from the
// CREATE TABLE statement.
func parseDefault(raw string) *schema.DefaultValue {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.EqualFold(trimmed, "NULL") {
		return nil
	}

	switch strings.ToUpper(trimmed) {
	case "CURRENT_TIMESTAMP", "CURRENT_TIME", "CURRENT_DATE":
		return schema.NowDefault()
	}

	if len(trimmed) >= 2 && trimmed[0] == '\'' && trimmed[len(trimmed)-1] == '\'' {
		inner := trimmed[1 : len(trimmed)-1]
		return schema.LiteralDefault(strings.ReplaceAll(inner, "''", "'"))
	}
	if isPlainLiteral(trimmed) {
		return schema.LiteralDefault(trimmed)
	}

	// Parenthesized expressions and anything else we cannot decompose.
	return schema.DBGeneratedDefault(trimmed)
}

// isPlainLiteral reports whether the text is a bare numeric or keyword
// literal that needs no quoting to survive a round trip.
func isPlainLiteral(s string) bool {
	if strings.EqualFold(s, "TRUE") || strings.EqualFold(s, "FALSE") {
		return true
	}
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.':
		case (r == '-' || r == '+') && i == 0:
		default:
			return false
		}
	}
	return s != ""
}

// refAction maps a foreign_key_list action phrase to the model's form.
func refAction(rule string) schema.ForeignKeyAction {
	switch strings.ToUpper(rule) {
	case "CASCADE":
		return schema.Cascade
	case "RESTRICT":
		return schema.Restrict
	case "SET NULL":
		return schema.SetNull
	case "SET DEFAULT":
		return schema.SetDefault
	default:
		return schema.NoAction
	}
}

// quoteLiteral renders a string as a single-quoted SQL literal for use
// inside PRAGMA arguments, which take no placeholders.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
