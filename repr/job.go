// Data representations shared by the loaders, the engine, and the writers.

package repr

import (
	"slices"
	"time"
)

// JobID is opaque; the only thing we rely on is that it is comparable.  Numeric Slurm job IDs are
// carried in their decimal form.
type JobID string

// A Job is immutable once loaded.  Nodes is sorted and has no duplicates.  Extra holds the other
// columns of the source row, keyed by column name, so that they can be written back out.
type Job struct {
	ID    JobID
	Start time.Time
	End   time.Time
	Nodes []string
	Extra map[string]string
}

func NewJob(id JobID, start, end time.Time, nodes []string) *Job {
	ns := slices.Clone(nodes)
	slices.Sort(ns)
	return &Job{
		ID:    id,
		Start: start,
		End:   end,
		Nodes: slices.Compact(ns),
	}
}

func (j *Job) HasNode(node string) bool {
	_, found := slices.BinarySearch(j.Nodes, node)
	return found
}

func (j *Job) Duration() time.Duration {
	return j.End.Sub(j.Start)
}
