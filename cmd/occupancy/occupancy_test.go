package occupancy

import (
	"bytes"
	"context"
	"os"
	"path"
	"strings"
	"testing"

	. "jobpower/cmd"
)

func TestOccupancyCommand(t *testing.T) {
	jobs := path.Join(t.TempDir(), "jobs.csv")
	os.WriteFile(jobs, []byte("JobID,Start,End,Hosts\n"+
		"a,2024-03-01T10:00:00Z,2024-03-01T10:01:00Z,c1\n"+
		"b,2024-03-01T10:00:30Z,2024-03-01T10:02:00Z,\"c[1-2]\"\n"+
		"c,2024-03-01T10:00:00Z,2024-03-01T10:01:00Z,c2\n"), 0644)

	oc := new(OccupancyCommand)
	fs := NewCLI("occupancy", oc, "jobpower", false)
	oc.Add(fs)
	err := fs.Parse([]string{
		"-jobs", jobs,
		"-job-columns", "job_id=JobID,start_time=Start,end_time=End,nodes=Hosts",
		"-node", "c1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := oc.Validate(); err != nil {
		t.Fatal(err)
	}
	var stdout, stderr bytes.Buffer
	if err := oc.Perform(context.Background(), &stdout, &stderr); err != nil {
		t.Fatal(err)
	}
	expect := []string{
		"2024-03-01T10:00:00Z a",
		"2024-03-01T10:00:20Z a",
		"2024-03-01T10:00:40Z a,b",
		"2024-03-01T10:01:00Z a,b",
		"2024-03-01T10:01:20Z b",
		"2024-03-01T10:01:40Z b",
		"2024-03-01T10:02:00Z b",
	}
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if strings.Join(lines, "\n") != strings.Join(expect, "\n") {
		t.Fatalf("Occupancy %q", lines)
	}
}

func TestOccupancyCommandRequiresNode(t *testing.T) {
	oc := new(OccupancyCommand)
	fs := NewCLI("occupancy", oc, "jobpower", false)
	oc.Add(fs)
	fs.Parse([]string{"-jobs", "j.csv"})
	if err := oc.Validate(); err == nil || !strings.Contains(err.Error(), "-node") {
		t.Fatalf("Got %v", err)
	}
}
