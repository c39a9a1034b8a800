// Package postgres reads a PostgreSQL schema into a snapshot over a
// pgx connection pool.
package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koustreak/datmig/internal/describe"
	"github.com/koustreak/datmig/internal/errs"
	"github.com/koustreak/datmig/internal/logger"
	"github.com/koustreak/datmig/internal/schema"
)

// Describer implements describe.Describer for PostgreSQL. It is safe
// for concurrent use by multiple goroutines.
type Describer struct {
	pool      *pgxpool.Pool
	namespace string
	log       *logger.Logger
}

// New connects to PostgreSQL using the provided Config and returns a
// Describer. It pings to validate the connection before returning.
func New(ctx context.Context, cfg *describe.Config) (*Describer, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid postgres DSN", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.ConnectTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, mapError(err, "failed to create connection pool")
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "public"
	}

	d := &Describer{pool: pool, namespace: namespace, log: cfg.Log().Str("driver", "postgres")}
	if err := d.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return d, nil
}

// Ping verifies the database is reachable.
func (d *Describer) Ping(ctx context.Context) error {
	if err := d.pool.Ping(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

// Close drains the connection pool.
func (d *Describer) Close() error {
	d.pool.Close()
	return nil
}

// builder accumulates arena IDs while the catalog is read, so foreign
// keys can resolve across tables in a second pass.
type builder struct {
	snap    *schema.Snapshot
	tables  map[string]schema.TableID
	columns map[schema.TableID]map[string]schema.ColumnID
	enums   map[string]schema.EnumID
}

// Describe reads the configured namespace into a snapshot.
func (d *Describer) Describe(ctx context.Context) (*schema.Snapshot, error) {
	b := &builder{
		snap:    schema.New(),
		tables:  map[string]schema.TableID{},
		columns: map[schema.TableID]map[string]schema.ColumnID{},
		enums:   map[string]schema.EnumID{},
	}

	if err := d.describeEnums(ctx, b); err != nil {
		return nil, err
	}

	names, err := d.listTables(ctx)
	if err != nil {
		return nil, err
	}
	d.log.Debugf("describing %d tables in schema %q", len(names), d.namespace)

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
	if err := d.describeSequences(ctx, b); err != nil {
		return nil, err
	}
	return b.snap, nil
}

const enumsQuery = `
	SELECT t.typname, e.enumlabel
	FROM pg_type t
	JOIN pg_enum e ON e.enumtypid = t.oid
	JOIN pg_namespace n ON n.oid = t.typnamespace
	WHERE n.nspname = $1
	ORDER BY t.typname, e.enumsortorder`

func (d *Describer) describeEnums(ctx context.Context, b *builder) error {
	rows, err := d.pool.Query(ctx, enumsQuery, d.namespace)
	if err != nil {
		return mapError(err, "failed to fetch enums")
	}
	defer rows.Close()

	for rows.Next() {
		var typ, label string
		if err := rows.Scan(&typ, &label); err != nil {
			return mapError(err, "failed to scan enum variant")
		}
		id, ok := b.enums[typ]
		if !ok {
			id = b.snap.AddEnum(typ)
			b.enums[typ] = id
		}
		b.snap.AddEnumVariant(id, label)
	}
	return mapError(rows.Err(), "error iterating enums")
}

const tablesQuery = `
	SELECT table_name
	FROM information_schema.tables
	WHERE table_schema = $1
	  AND table_type   = 'BASE TABLE'
	ORDER BY table_name`

func (d *Describer) listTables(ctx context.Context) ([]string, error) {
	rows, err := d.pool.Query(ctx, tablesQuery, d.namespace)
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
	       udt_name,
	       is_nullable = 'YES',
	       is_identity = 'YES',
	       COALESCE(column_default, ''),
	       COALESCE(character_maximum_length, 0),
	       COALESCE(numeric_precision, 0),
	       COALESCE(numeric_scale, 0)
	FROM information_schema.columns
	WHERE table_schema = $1
	  AND table_name   = $2
	ORDER BY ordinal_position`

func (d *Describer) describeTable(ctx context.Context, b *builder, name string) error {
	id := b.snap.AddTable(name)
	b.tables[name] = id
	b.columns[id] = map[string]schema.ColumnID{}

	rows, err := d.pool.Query(ctx, columnsQuery, d.namespace, name)
	if err != nil {
		return mapError(err, "failed to fetch columns")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			colName, dataType, udt, rawDefault string
			nullable, identity                 bool
			maxLen, precision, scale           int
		)
		if err := rows.Scan(&colName, &dataType, &udt, &nullable, &identity, &rawDefault, &maxLen, &precision, &scale); err != nil {
			return mapError(err, "failed to scan column")
		}

		elem := strings.TrimPrefix(udt, "_")
		typ := schema.ColumnType{
			Family: typeFamily(elem),
			Native: nativeType(dataType, udt, maxLen, precision, scale),
		}
		switch {
		case dataType == "ARRAY":
			typ.Arity = schema.List
		case nullable:
			typ.Arity = schema.Nullable
		default:
			typ.Arity = schema.Required
		}
		if enumID, ok := b.enums[elem]; ok {
			typ.Family = schema.FamilyEnum
			typ.Enum = enumID
		}

		def := parseDefault(rawDefault)
		auto := identity || (def != nil && def.Kind == schema.DefaultSequence)

		cid := b.snap.AddColumn(id, schema.Column{
			Name:          colName,
			Type:          typ,
			Default:       def,
			AutoIncrement: auto,
		})
		b.columns[id][colName] = cid
	}
	if err := rows.Err(); err != nil {
		return mapError(err, "error iterating columns")
	}

	return d.describeIndexes(ctx, b, name)
}

// Expression and partial indexes are skipped: they have no column-list
// identity the differ could match on.
const indexesQuery = `
	SELECT ci.relname,
	       ix.indisunique,
	       ix.indisprimary,
	       a.attname,
	       (ix.indoption[k.n] & 1) = 1
	FROM pg_index ix
	JOIN pg_class ci ON ci.oid = ix.indexrelid
	JOIN pg_class ct ON ct.oid = ix.indrelid
	JOIN pg_namespace ns ON ns.oid = ct.relnamespace
	CROSS JOIN LATERAL generate_subscripts(ix.indkey, 1) AS k(n)
	JOIN pg_attribute a ON a.attrelid = ct.oid AND a.attnum = ix.indkey[k.n]
	WHERE ns.nspname = $1
	  AND ct.relname = $2
	  AND ix.indexprs IS NULL
	  AND ix.indpred IS NULL
	ORDER BY ci.relname, k.n`

func (d *Describer) describeIndexes(ctx context.Context, b *builder, name string) error {
	table := b.tables[name]
	rows, err := d.pool.Query(ctx, indexesQuery, d.namespace, name)
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
		var idxName, colName string
		var unique, primary, desc bool
		if err := rows.Scan(&idxName, &unique, &primary, &colName, &desc); err != nil {
			return mapError(err, "failed to scan index column")
		}

		if !have || idxName != current {
			kind := schema.IndexNormal
			switch {
			case primary:
				kind = schema.IndexPrimaryKey
			case unique:
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
		if desc {
			order = schema.SortDesc
		}
		b.snap.AddIndexColumn(idx, cid, order)
	}
	return mapError(rows.Err(), "error iterating indexes")
}

const foreignKeysQuery = `
	SELECT con.conname,
	       ref.relname,
	       con.confdeltype::text,
	       con.confupdtype::text,
	       a.attname,
	       ra.attname
	FROM pg_constraint con
	JOIN pg_class src ON src.oid = con.conrelid
	JOIN pg_class ref ON ref.oid = con.confrelid
	JOIN pg_namespace ns ON ns.oid = src.relnamespace
	CROSS JOIN LATERAL unnest(con.conkey, con.confkey) WITH ORDINALITY AS cols(attnum, refattnum, n)
	JOIN pg_attribute a ON a.attrelid = src.oid AND a.attnum = cols.attnum
	JOIN pg_attribute ra ON ra.attrelid = ref.oid AND ra.attnum = cols.refattnum
	WHERE con.contype = 'f'
	  AND ns.nspname = $1
	  AND src.relname = $2
	ORDER BY con.conname, cols.n`

func (d *Describer) describeForeignKeys(ctx context.Context, b *builder, name string) error {
	table := b.tables[name]
	rows, err := d.pool.Query(ctx, foreignKeysQuery, d.namespace, name)
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
		var conName, refTable, delCode, updCode, colName, refColName string
		if err := rows.Scan(&conName, &refTable, &delCode, &updCode, &colName, &refColName); err != nil {
			return mapError(err, "failed to scan foreign key column")
		}

		if !have || conName != current {
			current, have = conName, true
			refID, ok := b.tables[refTable]
			// Keys into other namespaces have no referenced table in
			// this snapshot.
			skip = !ok
			if !skip {
				fk = b.snap.AddForeignKey(table, refID, conName, refAction(delCode), refAction(updCode))
			}
		}
		if skip {
			continue
		}

		cid, ok := b.columns[table][colName]
		if !ok {
			continue
		}
		refTableID := b.tables[refTable]
		refCID, ok := b.columns[refTableID][refColName]
		if !ok {
			continue
		}
		b.snap.AddForeignKeyColumn(fk, cid, refCID)
	}
	return mapError(rows.Err(), "error iterating foreign keys")
}

const sequencesQuery = `
	SELECT sequence_name,
	       COALESCE(start_value::bigint, 1),
	       COALESCE(increment::bigint, 1)
	FROM information_schema.sequences
	WHERE sequence_schema = $1
	ORDER BY sequence_name`

func (d *Describer) describeSequences(ctx context.Context, b *builder) error {
	rows, err := d.pool.Query(ctx, sequencesQuery, d.namespace)
	if err != nil {
		return mapError(err, "failed to fetch sequences")
	}
	defer rows.Close()

	for rows.Next() {
		var seq schema.Sequence
		if err := rows.Scan(&seq.Name, &seq.StartValue, &seq.Increment); err != nil {
			return mapError(err, "failed to scan sequence")
		}
		b.snap.AddSequence(seq)
	}
	return mapError(rows.Err(), "error iterating sequences")
}
