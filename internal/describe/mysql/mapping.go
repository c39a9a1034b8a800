package mysql

import (
	"strings"

	"github.com/koustreak/datmig/internal/schema"
)

// typeFamily classifies a column by information_schema's DATA_TYPE.
// COLUMN_TYPE disambiguates tinyint(1), the conventional boolean.
func typeFamily(dataType, columnType string) schema.ColumnFamily {
	switch dataType {
	case "tinyint":
		if columnType == "tinyint(1)" {
			return schema.FamilyBoolean
		}
		return schema.FamilyInt
	case "smallint", "mediumint", "int":
		return schema.FamilyInt
	case "bigint":
		return schema.FamilyBigInt
	case "float", "double":
		return schema.FamilyFloat
	case "decimal":
		return schema.FamilyDecimal
	case "bit":
		return schema.FamilyBoolean
	case "char", "varchar", "tinytext", "text", "mediumtext", "longtext":
		return schema.FamilyString
	case "date", "datetime", "timestamp", "time", "year":
		return schema.FamilyDateTime
	case "binary", "varbinary", "tinyblob", "blob", "mediumblob", "longblob":
		return schema.FamilyBinary
	case "json":
		return schema.FamilyJSON
	case "enum":
		return schema.FamilyEnum
	default:
		return schema.FamilyUnsupported
	}
}

// parseEnumVariants splits enum('a','b') into its labels, undoing the
// quote doubling.
func parseEnumVariants(columnType string) []string {
	inner, ok := strings.CutPrefix(columnType, "enum(")
	if !ok {
		return nil
	}
	inner = strings.TrimSuffix(inner, ")")

	var variants []string
	for len(inner) > 0 && inner[0] == '\'' {
		var label strings.Builder
		i := 1
		for i < len(inner) {
			if inner[i] == '\'' {
				if i+1 < len(inner) && inner[i+1] == '\'' {
					label.WriteByte('\'')
					i += 2
					continue
				}
				break
			}
			label.WriteByte(inner[i])
			i++
		}
		variants = append(variants, label.String())
		inner = strings.TrimPrefix(inner[i+1:], ",")
	}
	return variants
}

// parseDefault turns a COLUMN_DEFAULT value into the structured form.
// Expression defaults are flagged DEFAULT_GENERATED in EXTRA; plain
// values arrive quoted on MariaDB and bare on MySQL 8, so one level of
// quotes is stripped when present.
func parseDefault(raw, extra string) *schema.DefaultValue {
	if strings.EqualFold(raw, "null") {
		return nil
	}
	if strings.HasPrefix(strings.ToLower(raw), "current_timestamp") {
		return schema.NowDefault()
	}
	if strings.Contains(strings.ToUpper(extra), "DEFAULT_GENERATED") {
		return schema.DBGeneratedDefault(raw)
	}
	if len(raw) >= 2 && raw[0] == '\'' && raw[len(raw)-1] == '\'' {
		return schema.LiteralDefault(strings.ReplaceAll(raw[1:len(raw)-1], "''", "'"))
	}
	return schema.LiteralDefault(raw)
}

// refAction maps a referential_constraints rule to the model's form.
func refAction(rule string) schema.ForeignKeyAction {
	switch rule {
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
