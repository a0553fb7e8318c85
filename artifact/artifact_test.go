package artifact

import (
	"context"
	"encoding/json"
	"os"
	"slices"
	"testing"

	"jobpower/repr"
)

func TestDirStore(t *testing.T) {
	dir := t.TempDir()
	ds, err := NewDirStore(dir + "/arts")
	if err != nil {
		t.Fatal(err)
	}
	series := repr.Series{Times: []int64{20, 40}, Values: []float64{15.5, 0.1 + 0.2}}
	for _, id := range []repr.JobID{"1001", "a/b"} {
		if err := ds.Put(context.Background(), New(id, 20, series)); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := os.ReadDir(dir + "/arts")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected one file per job, got %d", len(entries))
	}
	a, err := ds.Get("a/b")
	if err != nil {
		t.Fatal(err)
	}
	if a.JobID != "a/b" || a.Tick != 20 || !slices.Equal(a.Values, series.Values) || !slices.Equal(a.Times, series.Times) {
		t.Fatalf("Bad artifact %+v", a)
	}
	if _, err := ds.Get("nope"); err == nil {
		t.Fatal("Expected error for missing artifact")
	}
	if _, err := NewDirStore(""); err == nil {
		t.Fatal("Expected error for empty directory")
	}
}

func TestKafkaRecord(t *testing.T) {
	ks := &KafkaStore{topic: "jobpower.series", runID: "run-1"}
	rec, err := ks.record(New("77", 20, repr.Series{Times: []int64{0}, Values: []float64{3}}))
	if err != nil {
		t.Fatal(err)
	}
	if string(rec.Key) != "77" || rec.Topic != "jobpower.series" {
		t.Fatalf("Bad record %+v", rec)
	}
	if len(rec.Headers) != 1 || rec.Headers[0].Key != "run" || string(rec.Headers[0].Value) != "run-1" {
		t.Fatalf("Bad headers %+v", rec.Headers)
	}
	var a Artifact
	if err := json.Unmarshal(rec.Value, &a); err != nil || a.Values[0] != 3 {
		t.Fatalf("Bad value %s %v", rec.Value, err)
	}
}
