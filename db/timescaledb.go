// Read-only access to power tables kept in a PostgreSQL/TimescaleDB database.  Each database table
// is one power table, with a node column, a timestamp column and a value column (names as for CSV
// power tables).  Only the rows in the time span of the job table, for the nodes of interest, are
// fetched.

package db

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	. "jobpower/common"
	"jobpower/repr"
	"jobpower/table"
)

type PowerDB struct {
	// The connection is not thread-safe, the lock is held for the duration of a query.
	connection *pgx.Conn
	lock       sync.Mutex
}

func Open(ctx context.Context, databaseURI string) (*PowerDB, error) {
	connection, err := pgx.Connect(ctx, databaseURI)
	if err != nil {
		return nil, fmt.Errorf("Unable to connect to database: %v", err)
	}
	return &PowerDB{connection: connection}, nil
}

func (pdb *PowerDB) Close(ctx context.Context) error {
	return pdb.connection.Close(ctx)
}

// Read the rows of a power table with from <= timestamp <= to into a frozen repr.PowerTable.  If
// nodes is empty then all nodes are read.  Rows with NULLs or non-finite values are dropped and
// counted.
func (pdb *PowerDB) ReadPowerTable(
	ctx context.Context,
	tableName string,
	cols table.Columns,
	from, to time.Time,
	nodes []string,
) (pt *repr.PowerTable, softErrors int, err error) {
	if cols == nil {
		cols = table.DefaultPowerColumns()
	}
	qstr := powerQuery(tableName, cols, len(nodes) > 0)
	qarg := []any{from, to}
	if len(nodes) > 0 {
		qarg = append(qarg, nodes)
	}

	pdb.lock.Lock()
	defer pdb.lock.Unlock()
	rows, err := pdb.connection.Query(ctx, qstr, qarg...)
	if err != nil {
		return nil, 0, fmt.Errorf("Power table %s: %w", tableName, err)
	}
	var (
		node  pgtype.Text
		ts    pgtype.Timestamptz
		value pgtype.Float8
	)
	boxes := []any{&node, &ts, &value}
	pt = repr.NewPowerTable(tableName)
	_, err = pgx.ForEachRow(rows, boxes, func() error {
		if !node.Valid || !ts.Valid || !value.Valid || math.IsNaN(value.Float64) || math.IsInf(value.Float64, 0) {
			softErrors++
			return nil
		}
		pt.Add(repr.PowerSample{
			Node:      node.String,
			Timestamp: ts.Time.Unix(),
			Watts:     value.Float64,
		})
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("Power table %s: %w", tableName, err)
	}
	pt = pt.Freeze()
	Log.Infof("Power table %s: %d samples for %d nodes", tableName, pt.Len(), len(pt.Nodes()))
	return
}

func powerQuery(tableName string, cols table.Columns, byNode bool) string {
	node := pgx.Identifier{cols[table.FieldNode]}.Sanitize()
	ts := pgx.Identifier{cols[table.FieldTimestamp]}.Sanitize()
	value := pgx.Identifier{cols[table.FieldValue]}.Sanitize()
	qstr := fmt.Sprintf(
		"SELECT %s::text, %s, %s::float8 FROM %s WHERE %s >= $1 AND %s <= $2",
		node, ts, value, pgx.Identifier(strings.Split(tableName, ".")).Sanitize(), ts, ts,
	)
	if byNode {
		qstr += fmt.Sprintf(" AND %s = ANY($3)", node)
	}
	return qstr + fmt.Sprintf(" ORDER BY %s, %s", node, ts)
}
