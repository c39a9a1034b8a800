// Package mysql reads a MySQL schema into a snapshot through
// database/sql and the go-sql-driver driver.
//
// MySQL models enums as column types rather than named schema objects,
// so each enum column gets a synthesized enum named
// <table>_<column>; the diff policy decides whether those participate
// in enum pairing.
package mysql

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/koustreak/datmig/internal/describe"
	"github.com/koustreak/datmig/internal/errs"
	"github.com/koustreak/datmig/internal/logger"
	"github.com/koustreak/datmig/internal/schema"
)

// Describer implements describe.Describer for MySQL. It is safe for
// concurrent use by multiple goroutines.
type Describer struct {
	db        *sql.DB
	namespace string
	folds     bool
	log       *logger.Logger
}

// New connects to MySQL using the provided Config and returns a
// Describer. It pings to validate the connection and resolves the
// target database before returning.
func New(ctx context.Context, cfg *describe.Config) (*Describer, error) {
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid mysql DSN", err)
	}
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(int(cfg.MaxConns))
	}
	if cfg.MinConns > 0 {
		db.SetMaxIdleConns(int(cfg.MinConns))
	}
	if cfg.MaxConnLifetime > 0 {
		db.SetConnMaxLifetime(cfg.MaxConnLifetime)
	}
	if cfg.MaxConnIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.MaxConnIdleTime)
	}

	d := &Describer{db: db, namespace: cfg.Namespace, log: cfg.Log().Str("driver", "mysql")}

	pingCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	if err := d.Ping(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if d.namespace == "" {
		var current sql.NullString
		if err := db.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&current); err != nil {
			_ = db.Close()
			return nil, mapError(err, "failed to resolve current database")
		}
		if !current.Valid || current.String == "" {
			_ = db.Close()
			return nil, errs.New(errs.ErrKindInvalidInput, "DSN selects no database; set Namespace")
		}
		d.namespace = current.String
	}

	var fold int
	if err := db.QueryRowContext(ctx, "SELECT @@lower_case_table_names").Scan(&fold); err != nil {
		_ = db.Close()
		return nil, mapError(err, "failed to read lower_case_table_names")
	}
	d.folds = fold > 0

	return d, nil
}

// Ping verifies the database is reachable.
func (d *Describer) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

// Close releases the connection pool.
func (d *Describer) Close() error {
	if err := d.db.Close(); err != nil {
		return mapError(err, "close failed")
	}
	return nil
}

// Folds reports whether the server compares table names
// case-insensitively (lower_case_table_names > 0). Callers use it to
// configure the matching diff policy.
func (d *Describer) Folds() bool {
	return d.folds
}

type builder struct {
	snap    *schema.Snapshot
	tables  map[string]schema.TableID
	columns map[schema.TableID]map[string]schema.ColumnID
}

// Describe reads the configured database into a snapshot.
func (d *Describer) Describe(ctx context.Context) (*schema.Snapshot, error) {
	names, err := d.listTables(ctx)
	if err != nil {
		return nil, err
	}
	if d.folds {
		if err := checkFoldCollisions(names); err != nil {
			return nil, err
		}
	}
	d.log.Debugf("describing %d tables in database %q", len(names), d.namespace)

	b := &builder{
		snap:    schema.New(),
		tables:  map[string]schema.TableID{},
		columns: map[schema.TableID]map[string]schema.ColumnID{},
	}
	for _, name := range names {
		if err := d.describeTable(ctx, b, name); err != nil {
			return nil, err
		}
	}
	for _, name := range names {
		if err := d.describeForeignKeys(ctx, b, name); err != nil {
			return nil, err
		}
	}
	return b.snap, nil
}

// checkFoldCollisions rejects snapshots where two tables collapse to
// one name under case-insensitive comparison, before the differ would
// have to panic on them.
func checkFoldCollisions(names []string) error {
	seen := make(map[string]string, len(names))
	for _, name := range names {
		folded := strings.ToLower(name)
		if prev, ok := seen[folded]; ok {
			return errs.New(errs.ErrKindInvalidInput,
				"tables "+prev+" and "+name+" collide under case-insensitive naming")
		}
		seen[folded] = name
	}
	return nil
}

const tablesQuery = `
	SELECT table_name
	FROM information_schema.tables
	WHERE table_schema = ?
	  AND table_type   = 'BASE TABLE'
	ORDER BY table_name`

func (d *Describer) listTables(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, tablesQuery, d.namespace)
	if err != nil {
		return nil, mapError(err, "failed to list tables")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, mapError(err, "failed to scan table name")
		}
		names = append(names, name)
	}
	return names, mapError(rows.Err(), "error iterating tables")
}

const columnsQuery = `
	SELECT column_name,
	       data_type,
	       column_type,
	       is_nullable,
	       column_default,
	       extra
	FROM information_schema.columns
	WHERE table_schema = ?
	  AND table_name   = ?
	ORDER BY ordinal_position`

func (d *Describer) describeTable(ctx context.Context, b *builder, name string) error {
	id := b.snap.AddTable(name)
	b.tables[name] = id
	b.columns[id] = map[string]schema.ColumnID{}

	rows, err := d.db.QueryContext(ctx, columnsQuery, d.namespace, name)
	if err != nil {
		return mapError(err, "failed to fetch columns")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			colName, dataType, columnType, nullable, extra string
			rawDefault                                     sql.NullString
		)
		if err := rows.Scan(&colName, &dataType, &columnType, &nullable, &rawDefault, &extra); err != nil {
			return mapError(err, "failed to scan column")
		}

		typ := schema.ColumnType{
			Family: typeFamily(dataType, columnType),
			Native: columnType,
		}
		if nullable == "YES" {
			typ.Arity = schema.Nullable
		} else {
			typ.Arity = schema.Required
		}
		if typ.Family == schema.FamilyEnum {
			enum := b.snap.AddEnum(name + "_" + colName)
			for _, variant := range parseEnumVariants(columnType) {
				b.snap.AddEnumVariant(enum, variant)
			}
			typ.Enum = enum
		}

		var def *schema.DefaultValue
		if rawDefault.Valid {
			def = parseDefault(rawDefault.String, extra)
		}

		cid := b.snap.AddColumn(id, schema.Column{
			Name:          colName,
			Type:          typ,
			Default:       def,
			AutoIncrement: strings.Contains(strings.ToLower(extra), "auto_increment"),
		})
		b.columns[id][colName] = cid
	}
	if err := rows.Err(); err != nil {
		return mapError(err, "error iterating columns")
	}

	return d.describeIndexes(ctx, b, name)
}

// Functional index parts carry a NULL column name and are skipped.
const indexesQuery = `
	SELECT index_name,
	       non_unique,
	       column_name,
	       COALESCE(collation, 'A')
	FROM information_schema.statistics
	WHERE table_schema = ?
	  AND table_name   = ?
	  AND column_name IS NOT NULL
	ORDER BY index_name, seq_in_index`

func (d *Describer) describeIndexes(ctx context.Context, b *builder, name string) error {
	table := b.tables[name]
	rows, err := d.db.QueryContext(ctx, indexesQuery, d.namespace, name)
	if err != nil {
		return mapError(err, "failed to fetch indexes")
	}
	defer rows.Close()

	var (
		current string
		idx     schema.IndexID
		have    bool
	)
	for rows.Next() {
		var idxName, colName, collation string
		var nonUnique int
		if err := rows.Scan(&idxName, &nonUnique, &colName, &collation); err != nil {
			return mapError(err, "failed to scan index column")
		}

		if !have || idxName != current {
			kind := schema.IndexNormal
			switch {
			case idxName == "PRIMARY":
				kind = schema.IndexPrimaryKey
			case nonUnique == 0:
				kind = schema.IndexUnique
			}
			idx = b.snap.AddIndex(table, idxName, kind)
			current, have = idxName, true
		}

		cid, ok := b.columns[table][colName]
		if !ok {
			continue
		}
		order := schema.SortAsc
		if collation == "D" {
			order = schema.SortDesc
		}
		b.snap.AddIndexColumn(idx, cid, order)
	}
	return mapError(rows.Err(), "error iterating indexes")
}

const foreignKeysQuery = `
	SELECT kcu.constraint_name,
	       kcu.column_name,
	       kcu.referenced_table_name,
	       kcu.referenced_column_name,
	       rc.delete_rule,
	       rc.update_rule
	FROM information_schema.key_column_usage kcu
	JOIN information_schema.referential_constraints rc
	  ON rc.constraint_schema = kcu.constraint_schema
	 AND rc.constraint_name   = kcu.constraint_name
	 AND rc.table_name        = kcu.table_name
	WHERE kcu.table_schema = ?
	  AND kcu.table_name   = ?
	  AND kcu.referenced_table_name IS NOT NULL
	ORDER BY kcu.constraint_name, kcu.ordinal_position`

func (d *Describer) describeForeignKeys(ctx context.Context, b *builder, name string) error {
	table := b.tables[name]
	rows, err := d.db.QueryContext(ctx, foreignKeysQuery, d.namespace, name)
	if err != nil {
		return mapError(err, "failed to fetch foreign keys")
	}
	defer rows.Close()

	var (
		current string
		fk      schema.ForeignKeyID
		skip    bool
		have    bool
	)
	for rows.Next() {
		var conName, colName, refTable, refColName, delRule, updRule string
		if err := rows.Scan(&conName, &colName, &refTable, &refColName, &delRule, &updRule); err != nil {
			return mapError(err, "failed to scan foreign key column")
		}

		if !have || conName != current {
			current, have = conName, true
			refID, ok := b.tables[refTable]
			skip = !ok
			if !skip {
				fk = b.snap.AddForeignKey(table, refID, conName, refAction(delRule), refAction(updRule))
			}
		}
		if skip {
			continue
		}

		cid, ok := b.columns[table][colName]
		if !ok {
			continue
		}
		refCID, ok := b.columns[b.tables[refTable]][refColName]
		if !ok {
			continue
		}
		b.snap.AddForeignKeyColumn(fk, cid, refCID)
	}
	return mapError(rows.Err(), "error iterating foreign keys")
}
