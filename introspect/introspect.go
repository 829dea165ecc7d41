package introspect

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-openapi/inflect"
	"github.com/jackc/pgx/v5"

	"github.com/ridoystarlord/fixturegen/schema"
)

// Querier is the part of a pgx pool or connection used here.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type ExistingTable struct {
	TableName string
	Columns   []ExistingColumn
}

type ExistingColumn struct {
	ColumnName    string
	DataType      string
	IsNullable    bool
	ColumnDefault *string
	MaxLength     *int32
	IsIdentity    bool
	IsPrimaryKey  bool
	// IsUnique is set only for single-column unique constraints.
	IsUnique bool
}

// IntrospectDatabase reads the base tables of the public schema.
func IntrospectDatabase(ctx context.Context, db Querier) ([]ExistingTable, error) {
	tablesQuery := `
	SELECT table_name
	FROM information_schema.tables
	WHERE table_schema = 'public' AND table_type='BASE TABLE'
	ORDER BY table_name;
	`

	rows, err := db.Query(ctx, tablesQuery)
	if err != nil {
		return nil, fmt.Errorf("querying tables: %w", err)
	}
	tableNames, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning table names: %w", err)
	}

	var tables []ExistingTable
	for _, tableName := range tableNames {
		columns, err := getColumns(ctx, db, tableName)
		if err != nil {
			return nil, fmt.Errorf("getting columns for table %s: %w", tableName, err)
		}
		tables = append(tables, ExistingTable{
			TableName: tableName,
			Columns:   columns,
		})
	}
	return tables, nil
}

// IntrospectModels reads the database and converts every table to a model.
func IntrospectModels(ctx context.Context, db Querier) ([]schema.Model, error) {
	tables, err := IntrospectDatabase(ctx, db)
	if err != nil {
		return nil, err
	}
	models := make([]schema.Model, 0, len(tables))
	for _, t := range tables {
		models = append(models, ToModel(t))
	}
	return models, nil
}

func getColumns(ctx context.Context, db Querier, tableName string) ([]ExistingColumn, error) {
	columnsQuery := `
	SELECT
		c.column_name,
		c.data_type,
		(c.is_nullable = 'YES') AS is_nullable,
		c.column_default,
		c.character_maximum_length,
		(c.is_identity = 'YES') AS is_identity,
		COALESCE(bool_or(tc.constraint_type = 'PRIMARY KEY'), false) AS is_primary,
		COALESCE(bool_or(tc.constraint_type = 'UNIQUE' AND cnt.n = 1), false) AS is_unique
	FROM information_schema.columns c
	LEFT JOIN information_schema.key_column_usage kcu
		ON c.table_schema = kcu.table_schema AND c.table_name = kcu.table_name AND c.column_name = kcu.column_name
	LEFT JOIN information_schema.table_constraints tc
		ON kcu.constraint_name = tc.constraint_name AND kcu.table_name = tc.table_name
	LEFT JOIN (
		SELECT constraint_name, table_name, count(*) AS n
		FROM information_schema.key_column_usage
		WHERE table_schema = 'public'
		GROUP BY constraint_name, table_name
	) cnt ON cnt.constraint_name = kcu.constraint_name AND cnt.table_name = kcu.table_name
	WHERE c.table_schema = 'public' AND c.table_name = $1
	GROUP BY c.column_name, c.data_type, c.is_nullable, c.column_default,
		c.character_maximum_length, c.is_identity, c.ordinal_position
	ORDER BY c.ordinal_position;
	`

	rows, err := db.Query(ctx, columnsQuery, tableName)
	if err != nil {
		return nil, fmt.Errorf("querying columns: %w", err)
	}
	defer rows.Close()

	var columns []ExistingColumn
	for rows.Next() {
		var col ExistingColumn
		if err := rows.Scan(
			&col.ColumnName,
			&col.DataType,
			&col.IsNullable,
			&col.ColumnDefault,
			&col.MaxLength,
			&col.IsIdentity,
			&col.IsPrimaryKey,
			&col.IsUnique,
		); err != nil {
			return nil, fmt.Errorf("scanning column: %w", err)
		}
		columns = append(columns, col)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterating column rows: %w", rows.Err())
	}
	return columns, nil
}

// ToModel converts an introspected table. The model name is the singular
// CamelCase form of the table name.
func ToModel(t ExistingTable) schema.Model {
	model := schema.Model{
		Name:  inflect.Camelize(inflect.Singularize(t.TableName)),
		Table: t.TableName,
	}
	for _, c := range t.Columns {
		model.Fields = append(model.Fields, toField(c))
	}
	return model
}

func toField(c ExistingColumn) schema.Field {
	f := schema.Field{
		Name:     c.ColumnName,
		Type:     schema.InferFromSQLType(c.DataType),
		Nullable: c.IsNullable,
		Primary:  c.IsPrimaryKey,
		Auto:     c.IsIdentity,
	}
	if c.ColumnDefault != nil {
		lit, auto := parseDefault(f.Type, *c.ColumnDefault)
		f.Auto = f.Auto || auto
		if lit != nil {
			f.Default = lit
		}
	}
	// a primary key the database does not fill must be generated unique
	f.Unique = c.IsUnique || (c.IsPrimaryKey && !f.Auto)
	if c.MaxLength != nil && f.Type.IsTextual() {
		f.Validators = append(f.Validators, schema.Validator{Code: schema.MaxLength, Limit: int(*c.MaxLength)})
	}
	return f
}

var quotedDefault = regexp.MustCompile(`^'((?:[^']|'')*)'(?:::[\w\s"\[\]().]+)?$`)

// parseDefault interprets a column_default expression. Only literals become
// declared defaults; sequences mark the column as filled by the database and
// other expressions (now(), gen_random_uuid()) are ignored.
func parseDefault(t schema.SemanticType, expr string) (*schema.Literal, bool) {
	expr = strings.TrimSpace(expr)
	if strings.HasPrefix(expr, "nextval(") {
		return nil, true
	}
	if strings.HasPrefix(strings.ToUpper(expr), "NULL") {
		return nil, false
	}
	if m := quotedDefault.FindStringSubmatch(expr); m != nil {
		v, err := schema.ParseLiteral(t, strings.ReplaceAll(m[1], "''", "'"))
		if err != nil {
			return nil, false
		}
		return schema.DefaultOf(v), false
	}
	if !t.IsNumeric() && t != schema.TypeBoolean {
		return nil, false
	}
	raw := strings.Trim(expr, "()")
	if i := strings.Index(raw, "::"); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.Trim(raw, "()")
	if strings.ContainsAny(raw, "( ") {
		return nil, false
	}
	v, err := schema.ParseLiteral(t, raw)
	if err != nil {
		return nil, false
	}
	return schema.DefaultOf(v), false
}
