// Node occupancy and job exclusivity.
//
// An occupancy map records, for one node, which jobs held the node at each tick of the sampling
// grid.  A job holds a node at every tick from the ceiling of its start to the floor of its end,
// so a job that does not span a full grid interval holds no ticks at all.  A job is exclusive if,
// on every node and at every tick, it is the only job in the map.
//
// Build is independent per node and only reads the job list, so maps for different nodes can be
// built concurrently.  FindNonExclusive must wait for all of them.

package occupancy

import (
	"cmp"
	"maps"
	"slices"

	"jobpower/repr"
	"jobpower/tick"
)

// Map from tick to the jobs on the node at that tick, in job-list order.  A tick is present only if
// its list is nonempty.
type Map map[tick.Tick][]repr.JobID

// Set of job IDs.
type Set map[repr.JobID]struct{}

func (s Set) Has(id repr.JobID) bool {
	_, found := s[id]
	return found
}

// Sorted member list, for printing.
func (s Set) Sorted() []repr.JobID {
	return slices.Sorted(maps.Keys(s))
}

// Build the occupancy map for node from all the jobs.
func Build(node string, jobs []*repr.Job, grid tick.Grid) Map {
	m := make(Map)
	for _, job := range jobs {
		if !job.HasNode(node) {
			continue
		}
		first, last, ok := grid.Span(job.Start, job.End)
		if !ok {
			continue
		}
		for k := first; k <= last; k++ {
			m[k] = append(m[k], job.ID)
		}
	}
	return m
}

// Ticks returns the ticks of the map in ascending order.
func (m Map) Ticks() []tick.Tick {
	return slices.SortedFunc(maps.Keys(m), cmp.Compare[tick.Tick])
}

// Jobs returns the set of all job IDs present in the map.
func (m Map) Jobs() Set {
	s := make(Set)
	for _, ids := range m {
		for _, id := range ids {
			s[id] = struct{}{}
		}
	}
	return s
}

// FindNonExclusive returns every job ID that shares some tick on some node with another job.
func FindNonExclusive(occupancy []Map) Set {
	excluded := make(Set)
	for _, m := range occupancy {
		for _, ids := range m {
			if len(ids) > 1 {
				for _, id := range ids {
					excluded[id] = struct{}{}
				}
			}
		}
	}
	return excluded
}

// Exclusive returns the jobs not in the excluded set, in their original order.
func Exclusive(jobs []*repr.Job, excluded Set) []*repr.Job {
	result := make([]*repr.Job, 0, len(jobs))
	for _, j := range jobs {
		if !excluded.Has(j.ID) {
			result = append(result, j)
		}
	}
	return result
}

// Nodes returns the sorted union of the nodes allocated to the jobs.
func Nodes(jobs []*repr.Job) []string {
	seen := make(map[string]bool)
	for _, j := range jobs {
		for _, n := range j.Nodes {
			seen[n] = true
		}
	}
	return slices.Sorted(maps.Keys(seen))
}
