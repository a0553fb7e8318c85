// Attribution of power samples to a job.
//
// The power of a job at a timestamp is the sum, over the job's nodes and over all the power tables,
// of the samples at that timestamp.  Only samples within [Start, End] of the job are considered
// (the raw times, not the grid-aligned ones).  When there are several tables (say, one per supply
// rail), the tables are combined per (node, timestamp): a node's reading at a timestamp counts only
// if every table has a sample for that node at exactly that timestamp.  A timestamp is in the
// series if at least one node has a complete reading there.

package power

import (
	"errors"
	"maps"
	"slices"

	"jobpower/repr"
)

var (
	// No power samples matched the job.  This is a per-job outcome, not a failure of the run.
	ErrNoData = errors.New("No power data found")

	// The table sequence was empty.  This is a configuration problem.
	ErrNoTables = errors.New("No power tables")
)

// Aggregate computes the power series of job from the sequence of tables.
func Aggregate(job *repr.Job, tables []*repr.PowerTable) (repr.Series, error) {
	if len(tables) == 0 {
		return repr.Series{}, ErrNoTables
	}
	// Sample timestamps are whole seconds, so round the window inward.
	from, to := job.Start.Unix(), job.End.Unix()
	if job.Start.Nanosecond() != 0 {
		from++
	}

	var readings map[reading]float64
	for _, table := range tables {
		perTable := sumTable(job.Nodes, table, from, to)
		if readings == nil {
			readings = perTable
			continue
		}
		for key, w := range readings {
			if x, found := perTable[key]; found {
				readings[key] = w + x
			} else {
				delete(readings, key)
			}
		}
	}
	if len(readings) == 0 {
		return repr.Series{}, ErrNoData
	}

	sums := make(map[int64]float64)
	for key, w := range readings {
		sums[key.timestamp] += w
	}
	times := slices.Sorted(maps.Keys(sums))
	values := make([]float64, len(times))
	for i, ts := range times {
		values[i] = sums[ts]
	}
	return repr.Series{Times: times, Values: values}, nil
}

type reading struct {
	node      string
	timestamp int64
}

func sumTable(nodes []string, table *repr.PowerTable, from, to int64) map[reading]float64 {
	readings := make(map[reading]float64)
	for _, node := range nodes {
		for _, s := range table.Window(node, from, to) {
			readings[reading{node, s.Timestamp}] += s.Watts
		}
	}
	return readings
}
