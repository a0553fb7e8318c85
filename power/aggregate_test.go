package power

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"jobpower/artifact"
	"jobpower/repr"
)

var t0 = time.Date(2020, 5, 1, 10, 0, 0, 0, time.UTC)

func sec(n int) int64 {
	return t0.Unix() + int64(n)
}

func table(name string, rows ...repr.PowerSample) *repr.PowerTable {
	pt := repr.NewPowerTable(name)
	for _, r := range rows {
		pt.Add(r)
	}
	return pt.Freeze()
}

func job(id string, from, to int, nodes ...string) *repr.Job {
	return repr.NewJob(repr.JobID(id), t0.Add(time.Duration(from)*time.Second), t0.Add(time.Duration(to)*time.Second), nodes)
}

func TestAggregateSumsNodes(t *testing.T) {
	pt := table("ps",
		repr.PowerSample{"A", sec(0), 10},
		repr.PowerSample{"A", sec(20), 20},
		repr.PowerSample{"B", sec(0), 5},
		repr.PowerSample{"B", sec(20), 7},
		repr.PowerSample{"C", sec(0), 1000},
	)
	s, err := Aggregate(job("1", 0, 20, "A", "B"), []*repr.PowerTable{pt})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(s.Values, []float64{15, 27}) {
		t.Fatalf("Values %v", s.Values)
	}
	if !slices.Equal(s.Times, []int64{sec(0), sec(20)}) {
		t.Fatalf("Times %v", s.Times)
	}
}

func TestAggregateWindow(t *testing.T) {
	pt := table("ps",
		repr.PowerSample{"A", sec(-20), 1},
		repr.PowerSample{"A", sec(0), 2},
		repr.PowerSample{"A", sec(40), 3},
		repr.PowerSample{"A", sec(60), 4},
		repr.PowerSample{"A", sec(80), 5},
	)
	// The window is inclusive at both ends and uses the raw job times.
	s, err := Aggregate(job("1", 0, 60, "A"), []*repr.PowerTable{pt})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(s.Values, []float64{2, 3, 4}) {
		t.Fatalf("Values %v", s.Values)
	}
	// Sub-second start excludes the sample at the start's whole second.
	j := repr.NewJob("2", t0.Add(500*time.Millisecond), t0.Add(60*time.Second), []string{"A"})
	s, err = Aggregate(j, []*repr.PowerTable{pt})
	if err != nil || !slices.Equal(s.Values, []float64{3, 4}) {
		t.Fatalf("Values %v %v", s.Values, err)
	}
}

func TestAggregateNoData(t *testing.T) {
	pt := table("ps", repr.PowerSample{"A", sec(0), 10})
	s, err := Aggregate(job("1", 100, 200, "A"), []*repr.PowerTable{pt})
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("Expected no data, got %v %v", s, err)
	}
	_, err = Aggregate(job("1", 0, 200, "Z"), []*repr.PowerTable{pt})
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("Expected no data for unknown node, got %v", err)
	}
	_, err = Aggregate(job("1", 0, 200, "A"), nil)
	if !errors.Is(err, ErrNoTables) {
		t.Fatalf("Expected no tables, got %v", err)
	}
}

func TestAggregateMultipleTables(t *testing.T) {
	ps0 := table("ps0",
		repr.PowerSample{"A", sec(0), 10},
		repr.PowerSample{"A", sec(20), 11},
		repr.PowerSample{"A", sec(40), 12},
	)
	ps1 := table("ps1",
		repr.PowerSample{"A", sec(0), 1},
		repr.PowerSample{"A", sec(40), 2},
		repr.PowerSample{"A", sec(41), 100},
	)
	s, err := Aggregate(job("1", 0, 60, "A"), []*repr.PowerTable{ps0, ps1})
	if err != nil {
		t.Fatal(err)
	}
	// 20 is missing from ps1 and 41 from ps0, so both are dropped.
	if !slices.Equal(s.Times, []int64{sec(0), sec(40)}) || !slices.Equal(s.Values, []float64{11, 14}) {
		t.Fatalf("Series %v", s)
	}
	// One table is the degenerate case.
	s1, err := Aggregate(job("1", 0, 60, "A"), []*repr.PowerTable{ps0})
	if err != nil || s1.Len() != 3 {
		t.Fatalf("Single table %v %v", s1, err)
	}
	// Disjoint timestamps give no data.
	ps2 := table("ps2", repr.PowerSample{"A", sec(10), 1})
	if _, err = Aggregate(job("1", 0, 60, "A"), []*repr.PowerTable{ps0, ps2}); !errors.Is(err, ErrNoData) {
		t.Fatalf("Expected no data, got %v", err)
	}
}

func TestAggregateTablesAlignPerNode(t *testing.T) {
	// Each table has a reading at 0, but for different nodes, so neither node is complete.
	ps0 := table("ps0", repr.PowerSample{"A", sec(0), 100})
	ps1 := table("ps1", repr.PowerSample{"B", sec(0), 7})
	if s, err := Aggregate(job("1", 0, 60, "A", "B"), []*repr.PowerTable{ps0, ps1}); !errors.Is(err, ErrNoData) {
		t.Fatalf("Expected no data, got %v %v", s, err)
	}

	// A is complete at 0 and 20, B only at 20; the incomplete reading for B at 0 is left out.
	ps0 = table("ps0",
		repr.PowerSample{"A", sec(0), 100},
		repr.PowerSample{"A", sec(20), 100},
		repr.PowerSample{"B", sec(0), 50},
		repr.PowerSample{"B", sec(20), 50},
	)
	ps1 = table("ps1",
		repr.PowerSample{"A", sec(0), 1},
		repr.PowerSample{"A", sec(20), 2},
		repr.PowerSample{"B", sec(20), 3},
	)
	s, err := Aggregate(job("1", 0, 60, "A", "B"), []*repr.PowerTable{ps0, ps1})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(s.Times, []int64{sec(0), sec(20)}) || !slices.Equal(s.Values, []float64{101, 155}) {
		t.Fatalf("Series %v", s)
	}
}

type memStore struct {
	sync.Mutex
	arts map[repr.JobID]*artifact.Artifact
}

func (m *memStore) Put(_ context.Context, a *artifact.Artifact) error {
	m.Lock()
	defer m.Unlock()
	m.arts[a.JobID] = a
	return nil
}

func (m *memStore) Close() error { return nil }

func TestAttribute(t *testing.T) {
	pt := table("ps", repr.PowerSample{"A", sec(0), 10})
	store := &memStore{arts: make(map[repr.JobID]*artifact.Artifact)}
	at := &Attributor{Tables: []*repr.PowerTable{pt}, Store: store, TickSeconds: 20}

	r := at.Attribute(context.Background(), job("1", 0, 20, "A"))
	if r.NoData || r.Series.Len() != 1 || r.Job.ID != "1" {
		t.Fatalf("Result %+v", r)
	}
	if a := store.arts["1"]; a == nil || a.Values[0] != 10 {
		t.Fatalf("Artifact %+v", a)
	}

	r = at.Attribute(context.Background(), job("2", 100, 120, "A"))
	if !r.NoData || r.Series.Len() != 0 {
		t.Fatalf("Expected NoData %+v", r)
	}
	if store.arts["2"] != nil {
		t.Fatal("No artifact for a job without data")
	}

	// An unfrozen table makes Window panic; that must turn into NoData for this job only.
	bad := &Attributor{Tables: []*repr.PowerTable{repr.NewPowerTable("raw")}}
	r = bad.Attribute(context.Background(), job("3", 0, 20, "A"))
	if !r.NoData {
		t.Fatalf("Expected NoData after panic %+v", r)
	}
}
