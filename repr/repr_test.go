package repr

import (
	"slices"
	"testing"
	"time"
)

func TestNewJob(t *testing.T) {
	now := time.Now()
	j := NewJob("17", now, now.Add(time.Hour), []string{"n2", "n1", "n2"})
	if !slices.Equal(j.Nodes, []string{"n1", "n2"}) {
		t.Fatalf("Nodes %v", j.Nodes)
	}
	if !j.HasNode("n2") || j.HasNode("n3") {
		t.Fatal("HasNode")
	}
	if j.Duration() != time.Hour {
		t.Fatalf("Duration %v", j.Duration())
	}
}

func TestPowerTable(t *testing.T) {
	pt := NewPowerTable("ps0")
	pt.Add(PowerSample{"a", 40, 1})
	pt.Add(PowerSample{"a", 20, 2})
	pt.Add(PowerSample{"a", 40, 3})
	pt.Add(PowerSample{"b", 20, 5})
	pt.Freeze()
	if pt.Len() != 3 {
		t.Fatalf("Len %d", pt.Len())
	}
	w := pt.Window("a", 0, 100)
	if len(w) != 2 || w[0].Timestamp != 20 || w[1].Watts != 4 {
		t.Fatalf("Window %v", w)
	}
	if w = pt.Window("a", 21, 39); w != nil {
		t.Fatalf("Window should be empty %v", w)
	}
	if w = pt.Window("a", 40, 40); len(w) != 1 {
		t.Fatalf("Window should be inclusive %v", w)
	}
	if !slices.Equal(pt.Nodes(), []string{"a", "b"}) {
		t.Fatalf("Nodes %v", pt.Nodes())
	}
}
