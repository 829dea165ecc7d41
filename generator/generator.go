package generator

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ridoystarlord/fixturegen/schema"
	"github.com/ridoystarlord/fixturegen/store"
)

// InsertSQL renders one INSERT statement with literal values per record.
func InsertSQL(dialect store.Dialect, model schema.Model, records []map[string]any) ([]string, error) {
	var sqlStatements []string

	for i, rec := range records {
		cols := store.Columns(model, rec)
		if len(cols) == 0 {
			sqlStatements = append(sqlStatements, dialect.InsertRow(model.TableName(), nil)+";")
			continue
		}
		quoted := make([]string, len(cols))
		values := make([]string, len(cols))
		for j, c := range cols {
			lit, err := Literal(dialect, fieldType(model, c), rec[c])
			if err != nil {
				return nil, fmt.Errorf("record %d, field %s: %w", i, c, err)
			}
			quoted[j] = dialect.Quote(c)
			values[j] = lit
		}
		stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s);",
			dialect.Quote(model.TableName()),
			strings.Join(quoted, ", "),
			strings.Join(values, ", "),
		)
		sqlStatements = append(sqlStatements, stmt)
	}

	return sqlStatements, nil
}

func fieldType(model schema.Model, name string) schema.SemanticType {
	if f, ok := model.FieldByName(name); ok {
		return f.Type
	}
	return ""
}

// Literal renders v as a SQL literal for a column of type t.
func Literal(dialect store.Dialect, t schema.SemanticType, v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "NULL", nil
	case bool:
		if dialect == store.SQLite {
			// older SQLite releases have no TRUE/FALSE keywords
			if x {
				return "1", nil
			}
			return "0", nil
		}
		return strings.ToUpper(strconv.FormatBool(x)), nil
	case string:
		return quoteString(dialect, x), nil
	case []byte:
		return quoteString(dialect, string(x)), nil
	case float32:
		return formatFloat(float64(x))
	case float64:
		return formatFloat(x)
	case time.Time:
		if t == schema.TypeDate {
			return quoteString(dialect, x.UTC().Format("2006-01-02")), nil
		}
		return quoteString(dialect, x.UTC().Format("2006-01-02 15:04:05.999999")), nil
	case fmt.Stringer:
		return quoteString(dialect, x.String()), nil
	}
	if n, ok := schema.ToInt64(v); ok {
		return strconv.FormatInt(n, 10), nil
	}
	if n, ok := v.(uint64); ok {
		return strconv.FormatUint(n, 10), nil
	}
	return "", fmt.Errorf("cannot render %T as a SQL literal", v)
}

func formatFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("cannot render %v as a SQL literal", f)
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}

func quoteString(dialect store.Dialect, s string) string {
	if dialect == store.MySQL {
		s = strings.ReplaceAll(s, `\`, `\\`)
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// WriteSeedFile saves the statements into a timestamped .sql file under dir
func WriteSeedFile(dir string, model schema.Model, sqlStatements []string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating seeds folder: %w", err)
	}

	timestamp := time.Now().Format("20060102150405")
	filename := filepath.Join(dir, fmt.Sprintf("%s_%s_seed.sql", timestamp, model.TableName()))

	var content strings.Builder
	content.WriteString("-- Seed: " + model.Name + "\n")
	content.WriteString("-- Generated: " + timestamp + "\n")
	content.WriteString(fmt.Sprintf("-- Records: %d\n\n", len(sqlStatements)))
	for _, stmt := range sqlStatements {
		content.WriteString(stmt + "\n")
	}

	if err := os.WriteFile(filename, []byte(content.String()), 0644); err != nil {
		return "", fmt.Errorf("writing seed file: %w", err)
	}
	return filename, nil
}
