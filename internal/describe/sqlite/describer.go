// Package sqlite reads a SQLite schema into a snapshot through
// database/sql and the modernc.org/sqlite driver, which registers
// itself under the driver name "sqlite".
//
// SQLite exposes its catalog through PRAGMA calls rather than
// information_schema views, and PRAGMAs take no placeholders, so
// object names are spliced in as quoted literals.
package sqlite

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/koustreak/datmig/internal/describe"
	"github.com/koustreak/datmig/internal/errs"
	"github.com/koustreak/datmig/internal/logger"
	"github.com/koustreak/datmig/internal/schema"
)

// Describer implements describe.Describer for SQLite. It is safe for
// concurrent use by multiple goroutines.
type Describer struct {
	db  *sql.DB
	log *logger.Logger
}

// New opens the SQLite database named by the Config's DSN and returns
// a Describer. It pings to validate the file before returning.
// Config.Namespace is ignored: a SQLite connection sees one database.
func New(ctx context.Context, cfg *describe.Config) (*Describer, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid sqlite DSN", err)
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

	d := &Describer{db: db, log: cfg.Log().Str("driver", "sqlite")}

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

type builder struct {
	snap    *schema.Snapshot
	tables  map[string]schema.TableID
	columns map[schema.TableID]map[string]schema.ColumnID
}

// Describe reads the database into a snapshot. Enums and sequences
// never appear: SQLite has neither.
func (d *Describer) Describe(ctx context.Context) (*schema.Snapshot, error) {
	tables, err := d.listTables(ctx)
	if err != nil {
		return nil, err
	}
	d.log.Debugf("describing %d tables", len(tables))

	b := &builder{
		snap:    schema.New(),
		tables:  map[string]schema.TableID{},
		columns: map[schema.TableID]map[string]schema.ColumnID{},
	}
	for _, t := range tables {
		if err := d.describeTable(ctx, b, t.name, t.ddl); err != nil {
			return nil, err
		}
	}
	for _, t := range tables {
		if err := d.describeForeignKeys(ctx, b, t.name); err != nil {
			return nil, err
		}
	}
	return b.snap, nil
}

type tableEntry struct {
	name string
	ddl  string
}

const tablesQuery = `
	SELECT name, COALESCE(sql, '')
	FROM sqlite_master
	WHERE type = 'table'
	  AND name NOT LIKE 'sqlite\_%' ESCAPE '\'
	ORDER BY name`

func (d *Describer) listTables(ctx context.Context) ([]tableEntry, error) {
	rows, err := d.db.QueryContext(ctx, tablesQuery)
	if err != nil {
		return nil, mapError(err, "failed to list tables")
	}
	defer rows.Close()

	var tables []tableEntry
	for rows.Next() {
		var t tableEntry
		if err := rows.Scan(&t.name, &t.ddl); err != nil {
			return nil, mapError(err, "failed to scan table name")
		}
		tables = append(tables, t)
	}
	return tables, mapError(rows.Err(), "error iterating tables")
}

func (d *Describer) describeTable(ctx context.Context, b *builder, name, ddl string) error {
	id := b.snap.AddTable(name)
	b.tables[name] = id
	b.columns[id] = map[string]schema.ColumnID{}

	cols, err := d.listColumns(ctx, name)
	if err != nil {
		return err
	}

	// The key column is the rowid alias only when it stands alone and
	// the original statement spelled out AUTOINCREMENT.
	autoCol := -1
	pkCount, last := 0, -1
	for i, c := range cols {
		if c.pkPos > 0 {
			pkCount++
			last = i
		}
	}
	if pkCount == 1 {
		switch typeFamily(cols[last].declType) {
		case schema.FamilyInt, schema.FamilyBigInt:
			if strings.Contains(strings.ToUpper(ddl), "AUTOINCREMENT") {
				autoCol = last
			}
		}
	}

	for i, c := range cols {
		typ := schema.ColumnType{
			Family: typeFamily(c.declType),
			Native: c.declType,
		}
		// Key columns are modeled as required even when NOT NULL is
		// not spelled out.
		if c.notNull || c.pkPos > 0 {
			typ.Arity = schema.Required
		} else {
			typ.Arity = schema.Nullable
		}

		var def *schema.DefaultValue
		if c.rawDefault.Valid {
			def = parseDefault(c.rawDefault.String)
		}

		cid := b.snap.AddColumn(id, schema.Column{
			Name:          c.name,
			Type:          typ,
			Default:       def,
			AutoIncrement: i == autoCol,
		})
		b.columns[id][c.name] = cid
	}

	if pkCount > 0 {
		keyed := make([]rawColumn, 0, pkCount)
		for _, c := range cols {
			if c.pkPos > 0 {
				keyed = append(keyed, c)
			}
		}
		sort.Slice(keyed, func(i, j int) bool { return keyed[i].pkPos < keyed[j].pkPos })

		// The primary key has no name of its own in SQLite.
		idx := b.snap.AddIndex(id, "", schema.IndexPrimaryKey)
		for _, c := range keyed {
			b.snap.AddIndexColumn(idx, b.columns[id][c.name], schema.SortAsc)
		}
	}

	return d.describeIndexes(ctx, b, name)
}

type rawColumn struct {
	name       string
	declType   string
	notNull    bool
	rawDefault sql.NullString
	pkPos      int
}

func (d *Describer) listColumns(ctx context.Context, name string) ([]rawColumn, error) {
	rows, err := d.db.QueryContext(ctx, "PRAGMA table_info("+quoteLiteral(name)+")")
	if err != nil {
		return nil, mapError(err, "failed to fetch columns")
	}
	defer rows.Close()

	var cols []rawColumn
	for rows.Next() {
		var (
			cid, notNull int
			c            rawColumn
		)
		if err := rows.Scan(&cid, &c.name, &c.declType, &notNull, &c.rawDefault, &c.pkPos); err != nil {
			return nil, mapError(err, "failed to scan column")
		}
		c.notNull = notNull == 1
		cols = append(cols, c)
	}
	return cols, mapError(rows.Err(), "error iterating columns")
}

type indexEntry struct {
	name   string
	unique bool
}

func (d *Describer) describeIndexes(ctx context.Context, b *builder, name string) error {
	entries, err := d.listIndexes(ctx, name)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := d.describeIndexColumns(ctx, b, b.tables[name], e); err != nil {
			return err
		}
	}
	return nil
}

func (d *Describer) listIndexes(ctx context.Context, name string) ([]indexEntry, error) {
	rows, err := d.db.QueryContext(ctx, "PRAGMA index_list("+quoteLiteral(name)+")")
	if err != nil {
		return nil, mapError(err, "failed to fetch indexes")
	}
	defer rows.Close()

	var entries []indexEntry
	for rows.Next() {
		var (
			seq, unique, partial int
			idxName, origin      string
		)
		if err := rows.Scan(&seq, &idxName, &unique, &origin, &partial); err != nil {
			return nil, mapError(err, "failed to scan index")
		}
		// Only CREATE INDEX entries survive: 'pk' rows duplicate the
		// table key and 'u' auto-indexes carry engine-owned names that
		// no statement can recreate. Partial indexes have a predicate
		// the column list cannot express.
		if origin != "c" || partial == 1 {
			continue
		}
		entries = append(entries, indexEntry{name: idxName, unique: unique == 1})
	}
	return entries, mapError(rows.Err(), "error iterating indexes")
}

func (d *Describer) describeIndexColumns(ctx context.Context, b *builder, table schema.TableID, entry indexEntry) error {
	rows, err := d.db.QueryContext(ctx, "PRAGMA index_xinfo("+quoteLiteral(entry.name)+")")
	if err != nil {
		return mapError(err, "failed to fetch index columns")
	}
	defer rows.Close()

	type part struct {
		name string
		desc bool
	}
	var parts []part
	expr := false
	for rows.Next() {
		var (
			seqno, cid, desc, key int
			colName               sql.NullString
			collation             string
		)
		if err := rows.Scan(&seqno, &cid, &colName, &desc, &collation, &key); err != nil {
			return mapError(err, "failed to scan index column")
		}
		if key != 1 {
			continue
		}
		if cid < 0 || !colName.Valid {
			expr = true
			continue
		}
		parts = append(parts, part{name: colName.String, desc: desc == 1})
	}
	if err := rows.Err(); err != nil {
		return mapError(err, "error iterating index columns")
	}

	// Expression parts have no column identity to pair on.
	if expr {
		return nil
	}

	kind := schema.IndexNormal
	if entry.unique {
		kind = schema.IndexUnique
	}
	idx := b.snap.AddIndex(table, entry.name, kind)
	for _, p := range parts {
		cid, ok := b.columns[table][p.name]
		if !ok {
			continue
		}
		order := schema.SortAsc
		if p.desc {
			order = schema.SortDesc
		}
		b.snap.AddIndexColumn(idx, cid, order)
	}
	return nil
}

type fkGroup struct {
	id       int
	table    string
	from     []string
	to       []string
	onUpdate string
	onDelete string
}

func (d *Describer) describeForeignKeys(ctx context.Context, b *builder, name string) error {
	groups, err := d.listForeignKeys(ctx, name)
	if err != nil {
		return err
	}

	table := b.tables[name]
	for _, g := range groups {
		refID, ok := b.tables[g.table]
		if !ok {
			continue
		}

		// The engine never hands constraint names back out; unnamed
		// keys pair by shape instead.
		fk := b.snap.AddForeignKey(table, refID, "", refAction(g.onDelete), refAction(g.onUpdate))

		var refPK []string
		for i, from := range g.from {
			cid, ok := b.columns[table][from]
			if !ok {
				continue
			}
			to := g.to[i]
			if to == "" {
				// A missing target column means the key references the
				// implicit primary key of the other table.
				if refPK == nil {
					if pk, ok := b.snap.WalkTable(refID).PrimaryKey(); ok {
						refPK = pk.ColumnNames()
					}
				}
				if i >= len(refPK) {
					continue
				}
				to = refPK[i]
			}
			refCID, ok := b.columns[refID][to]
			if !ok {
				continue
			}
			b.snap.AddForeignKeyColumn(fk, cid, refCID)
		}
	}
	return nil
}

func (d *Describer) listForeignKeys(ctx context.Context, name string) ([]fkGroup, error) {
	rows, err := d.db.QueryContext(ctx, "PRAGMA foreign_key_list("+quoteLiteral(name)+")")
	if err != nil {
		return nil, mapError(err, "failed to fetch foreign keys")
	}
	defer rows.Close()

	groups := map[int]*fkGroup{}
	for rows.Next() {
		var (
			id, seq                   int
			refTable, from            string
			to                        sql.NullString
			onUpdate, onDelete, match string
		)
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, mapError(err, "failed to scan foreign key")
		}
		g, ok := groups[id]
		if !ok {
			g = &fkGroup{id: id, table: refTable, onUpdate: onUpdate, onDelete: onDelete}
			groups[id] = g
		}
		g.from = append(g.from, from)
		g.to = append(g.to, to.String)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating foreign keys")
	}

	out := make([]fkGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out, nil
}
