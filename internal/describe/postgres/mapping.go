package postgres

import (
	"fmt"
	"strings"

	"github.com/koustreak/datmig/internal/schema"
)

// typeFamily classifies a catalog type by its udt name. Array columns
// pass the element's udt, with the leading underscore already stripped.
func typeFamily(udt string) schema.ColumnFamily {
	switch udt {
	case "int2", "int4":
		return schema.FamilyInt
	case "int8":
		return schema.FamilyBigInt
	case "float4", "float8":
		return schema.FamilyFloat
	case "numeric", "money":
		return schema.FamilyDecimal
	case "bool":
		return schema.FamilyBoolean
	case "text", "varchar", "bpchar", "char", "name", "citext":
		return schema.FamilyString
	case "date", "time", "timetz", "timestamp", "timestamptz", "interval":
		return schema.FamilyDateTime
	case "bytea":
		return schema.FamilyBinary
	case "json", "jsonb":
		return schema.FamilyJSON
	case "uuid":
		return schema.FamilyUUID
	default:
		return schema.FamilyUnsupported
	}
}

// nativeType renders the catalog's type description the way it would be
// written in DDL.
func nativeType(dataType, udt string, maxLen, precision, scale int) string {
	switch dataType {
	case "character varying":
		if maxLen > 0 {
			return fmt.Sprintf("varchar(%d)", maxLen)
		}
		return "varchar"
	case "character":
		if maxLen > 0 {
			return fmt.Sprintf("char(%d)", maxLen)
		}
		return "char"
	case "numeric":
		if precision > 0 {
			return fmt.Sprintf("numeric(%d,%d)", precision, scale)
		}
		return "numeric"
	case "timestamp without time zone":
		return "timestamp"
	case "timestamp with time zone":
		return "timestamptz"
	case "time without time zone":
		return "time"
	case "time with time zone":
		return "timetz"
	case "ARRAY":
		return strings.TrimPrefix(udt, "_") + "[]"
	case "USER-DEFINED":
		return udt
	default:
		return dataType
	}
}

// parseDefault turns a column_default expression into the structured
// form. Serial columns surface as sequence defaults; the caller flags
// those as autoincrementing. An unrecognized expression is preserved as
// database-generated so it still compares structurally.
func parseDefault(raw string) *schema.DefaultValue {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if name, ok := sequenceName(raw); ok {
		return schema.SequenceDefault(name)
	}
	lower := strings.ToLower(raw)
	if lower == "now()" || strings.HasPrefix(lower, "current_timestamp") {
		return schema.NowDefault()
	}

	value := stripCast(raw)
	if unquoted, ok := unquote(value); ok {
		return schema.LiteralDefault(unquoted)
	}
	if isPlainLiteral(value) {
		return schema.LiteralDefault(value)
	}
	return schema.DBGeneratedDefault(raw)
}

// sequenceName extracts the sequence from nextval('name'::regclass).
func sequenceName(raw string) (string, bool) {
	rest, ok := strings.CutPrefix(raw, "nextval('")
	if !ok {
		return "", false
	}
	end := strings.Index(rest, "'")
	if end < 0 {
		return "", false
	}
	return strings.Trim(rest[:end], `"`), true
}

// stripCast removes a trailing ::type annotation.
func stripCast(raw string) string {
	if i := strings.Index(raw, "::"); i >= 0 {
		return raw[:i]
	}
	return raw
}

// unquote removes one level of single quotes, undoing the doubling.
func unquote(value string) (string, bool) {
	if len(value) >= 2 && value[0] == '\'' && value[len(value)-1] == '\'' {
		return strings.ReplaceAll(value[1:len(value)-1], "''", "'"), true
	}
	return value, false
}

// isPlainLiteral reports whether the expression is a bare numeric or
// boolean constant rather than a function call.
func isPlainLiteral(value string) bool {
	if value == "true" || value == "false" {
		return true
	}
	if value == "" {
		return false
	}
	for i, r := range value {
		switch {
		case r >= '0' && r <= '9':
		case r == '.':
		case r == '-' && i == 0:
		default:
			return false
		}
	}
	return true
}

// refAction maps a pg_constraint action code to the model's form.
func refAction(code string) schema.ForeignKeyAction {
	switch code {
	case "c":
		return schema.Cascade
	case "r":
		return schema.Restrict
	case "n":
		return schema.SetNull
	case "d":
		return schema.SetDefault
	default:
		return schema.NoAction
	}
}
