package db

import (
	"strings"
	"testing"

	"jobpower/table"
)

func TestPowerQuery(t *testing.T) {
	q := powerQuery("ps0", table.DefaultPowerColumns(), false)
	want := `SELECT "node"::text, "timestamp", "value"::float8 FROM "ps0" ` +
		`WHERE "timestamp" >= $1 AND "timestamp" <= $2 ORDER BY "node", "timestamp"`
	if q != want {
		t.Fatalf("Got\n%s\nwant\n%s", q, want)
	}

	cols := table.DefaultPowerColumns()
	cols.Set("node=hostname,timestamp=time,value=watts")
	q = powerQuery(`evil"table`, cols, true)
	want = `SELECT "hostname"::text, "time", "watts"::float8 FROM "evil""table" ` +
		`WHERE "time" >= $1 AND "time" <= $2 AND "hostname" = ANY($3) ORDER BY "hostname", "time"`
	if q != want {
		t.Fatalf("Got\n%s\nwant\n%s", q, want)
	}

	q = powerQuery("power.ps1", table.DefaultPowerColumns(), false)
	if !strings.Contains(q, `FROM "power"."ps1" WHERE`) {
		t.Fatalf("Qualified name: %s", q)
	}
}
