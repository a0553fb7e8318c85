package exclusive

import (
	"bytes"
	"context"
	"os"
	"path"
	"testing"

	. "jobpower/cmd"
)

// a and b share c1 from 10:00:40 to 10:01:00, c runs alone on c2.
const jobTable = "JobID,Start,End,Hosts\n" +
	"a,2024-03-01T10:00:00Z,2024-03-01T10:01:00Z,c1\n" +
	"b,2024-03-01T10:00:30Z,2024-03-01T10:02:00Z,c1\n" +
	"c,2024-03-01T10:00:00Z,2024-03-01T10:01:00Z,c2\n"

func runExclusive(t *testing.T, extra ...string) string {
	jobs := path.Join(t.TempDir(), "jobs.csv")
	os.WriteFile(jobs, []byte(jobTable), 0644)

	ec := new(ExclusiveCommand)
	fs := NewCLI("exclusive", ec, "jobpower", false)
	ec.Add(fs)
	args := []string{
		"-jobs", jobs,
		"-job-columns", "job_id=JobID,start_time=Start,end_time=End,nodes=Hosts",
	}
	if err := fs.Parse(append(args, extra...)); err != nil {
		t.Fatal(err)
	}
	if err := ec.Validate(); err != nil {
		t.Fatal(err)
	}
	var stdout, stderr bytes.Buffer
	if err := ec.Perform(context.Background(), &stdout, &stderr); err != nil {
		t.Fatal(err)
	}
	return stdout.String()
}

func TestExclusiveCommand(t *testing.T) {
	if out := runExclusive(t); out != "c\n" {
		t.Fatalf("Exclusive %q", out)
	}
}

func TestNonExclusiveCommand(t *testing.T) {
	if out := runExclusive(t, "-non-exclusive", "-workers", "2"); out != "a\nb\n" {
		t.Fatalf("Non-exclusive %q", out)
	}
}

func TestExclusiveCommandWideTicks(t *testing.T) {
	// With 60s ticks b starts on 10:01:00, the last tick of a, so they still collide.
	if out := runExclusive(t, "-tick", "60"); out != "c\n" {
		t.Fatalf("Exclusive %q", out)
	}
}
