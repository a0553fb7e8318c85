package repr

import (
	"cmp"
	"slices"
	"sort"
)

type PowerSample struct {
	Node      string
	Timestamp int64 // Unix seconds
	Watts     float64
}

// PowerTable is one physical power table (for example one supply rail), indexed by node.  The
// samples for each node are sorted by timestamp and a timestamp occurs at most once per node:
// Freeze sums duplicate (node, timestamp) rows.
//
// A table is built with Add and then frozen; after Freeze it is read-only and may be shared freely
// between goroutines.
type PowerTable struct {
	Name   string
	byNode map[string][]PowerSample
	frozen bool
}

func NewPowerTable(name string) *PowerTable {
	return &PowerTable{
		Name:   name,
		byNode: make(map[string][]PowerSample),
	}
}

func (pt *PowerTable) Add(s PowerSample) {
	if pt.frozen {
		panic("Add on frozen power table")
	}
	pt.byNode[s.Node] = append(pt.byNode[s.Node], s)
}

func (pt *PowerTable) Freeze() *PowerTable {
	if pt.frozen {
		return pt
	}
	for node, samples := range pt.byNode {
		slices.SortStableFunc(samples, func(a, b PowerSample) int {
			return cmp.Compare(a.Timestamp, b.Timestamp)
		})
		merged := samples[:0]
		for _, s := range samples {
			if n := len(merged); n > 0 && merged[n-1].Timestamp == s.Timestamp {
				merged[n-1].Watts += s.Watts
			} else {
				merged = append(merged, s)
			}
		}
		pt.byNode[node] = merged
	}
	pt.frozen = true
	return pt
}

func (pt *PowerTable) Nodes() []string {
	nodes := make([]string, 0, len(pt.byNode))
	for n := range pt.byNode {
		nodes = append(nodes, n)
	}
	slices.Sort(nodes)
	return nodes
}

func (pt *PowerTable) Len() int {
	n := 0
	for _, xs := range pt.byNode {
		n += len(xs)
	}
	return n
}

// Window returns the samples for node with from <= Timestamp <= to, in timestamp order.  The
// result aliases the table and must not be modified.
func (pt *PowerTable) Window(node string, from, to int64) []PowerSample {
	if !pt.frozen {
		panic("Window on unfrozen power table")
	}
	samples := pt.byNode[node]
	lo := sort.Search(len(samples), func(i int) bool { return samples[i].Timestamp >= from })
	hi := sort.Search(len(samples), func(i int) bool { return samples[i].Timestamp > to })
	if lo >= hi {
		return nil
	}
	return samples[lo:hi]
}
