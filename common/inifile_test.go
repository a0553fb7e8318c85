package common

import (
	"strings"
	"testing"
)

func TestApplyDefault(t *testing.T) {
	t.Setenv("JP_TEST_ROOT", "/srv/data")
	err := LoadDefaults(strings.NewReader(`
[data-source]
jobs=$JP_TEST_ROOT/jobs.csv
power=ps0.csv, $JP_TEST_ROOT/ps1.csv,

[operation]
tick=30
`))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { store = nil }()

	var jobs string
	if !ApplyDefault(&jobs, DataSourceJobs) || jobs != "/srv/data/jobs.csv" {
		t.Fatalf("Jobs default: %q", jobs)
	}
	explicit := "mine.csv"
	if ApplyDefault(&explicit, DataSourceJobs) || explicit != "mine.csv" {
		t.Fatalf("Explicit value overridden: %q", explicit)
	}
	var output string
	if ApplyDefault(&output, DataTargetOutput) || output != "" {
		t.Fatal("Absent default applied")
	}

	var power []string
	if !ApplyListDefault(&power, DataSourcePower) ||
		len(power) != 2 || power[0] != "ps0.csv" || power[1] != "/srv/data/ps1.csv" {
		t.Fatalf("Power default: %v", power)
	}
	power = []string{"x.csv"}
	if ApplyListDefault(&power, DataSourcePower) || len(power) != 1 {
		t.Fatalf("Explicit power overridden: %v", power)
	}

	tick := 20
	if err := ApplyIntDefault(&tick, 20, OperationTick); err != nil || tick != 30 {
		t.Fatalf("Tick default: %d %v", tick, err)
	}
	tick = 15
	if err := ApplyIntDefault(&tick, 20, OperationTick); err != nil || tick != 15 {
		t.Fatalf("Explicit tick overridden: %d %v", tick, err)
	}
}

func TestProtect(t *testing.T) {
	err := Protect(func() error {
		var m map[string]int
		m["x"] = 1
		return nil
	})
	if err == nil || !strings.HasPrefix(err.Error(), "Panic:") {
		t.Fatalf("Expected panic error, got %v", err)
	}
	if Protect(func() error { return nil }) != nil {
		t.Fatal("Expected no error")
	}
}
