package common

import (
	"errors"
	"io"
	"os"
	"path"
	"strconv"
	"strings"

	ini "github.com/lars-t-hansen/ini"
)

// The defaults file is ~/.jobpower, or the file named by $JOBPOWER_CONFIG.  It provides default
// values for command line options; an option given on the command line always wins.  Values are
// subject to environment variable expansion.
//
//   [data-source]
//   jobs=/data/m100/job_table.csv
//   power=/data/m100/ps0.csv.gz,/data/m100/ps1.csv.gz
//   nodes=/data/m100/nodes.txt
//   node-format=hostlist
//   database-uri=postgres://...
//   power-tables=ps0,ps1
//
//   [data-target]
//   output=...
//   artifact-dir=...
//   kafka-broker=...
//   kafka-topic=...
//   metrics-file=...
//
//   [operation]
//   tick=20
//   workers=8

// MT: Constant after initialization
var (
	p                = ini.NewParser()
	store            *ini.Store
	dataSource       = p.AddSection("data-source")
	DataSourceJobs   = dataSource.AddString("jobs")
	DataSourcePower  = dataSource.AddString("power")
	DataSourceNodes  = dataSource.AddString("nodes")
	DataSourceFormat = dataSource.AddString("node-format")
	DataSourceDBURI  = dataSource.AddString("database-uri")
	DataSourceTables = dataSource.AddString("power-tables")
	dataTarget       = p.AddSection("data-target")
	DataTargetOutput = dataTarget.AddString("output")
	DataTargetArtDir = dataTarget.AddString("artifact-dir")
	DataTargetBroker = dataTarget.AddString("kafka-broker")
	DataTargetTopic  = dataTarget.AddString("kafka-topic")
	DataTargetMetric = dataTarget.AddString("metrics-file")
	operation        = p.AddSection("operation")
	OperationTick    = operation.AddString("tick")
	OperationWorkers = operation.AddString("workers")
)

func init() {
	fn := os.Getenv("JOBPOWER_CONFIG")
	if fn == "" {
		home := os.Getenv("HOME")
		if home == "" {
			return
		}
		fn = path.Join(path.Clean(home), ".jobpower")
	}
	input, err := os.Open(fn)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			Log.Errorf("Error in trying to open %s: %s", fn, err.Error())
		}
		return
	}
	defer input.Close()
	if err := LoadDefaults(input); err != nil {
		Log.Errorf("Error in trying to parse %s: %s", fn, err.Error())
	}
}

// Replace the defaults with those parsed from input.  Not thread-safe; call before any option
// processing.
func LoadDefaults(input io.Reader) error {
	s, err := p.Parse(input)
	if err != nil {
		return err
	}
	store = s
	return nil
}

func HasDefault(f *ini.Field) bool {
	return store != nil && f.Present(store)
}

func ApplyDefault(sp *string, f *ini.Field) bool {
	if *sp != "" || !HasDefault(f) {
		return false
	}
	*sp = os.ExpandEnv(strings.TrimSpace(f.StringVal(store)))
	return true
}

// Apply a comma-separated default to a repeatable option that was not given at all.
func ApplyListDefault(xs *[]string, f *ini.Field) bool {
	if len(*xs) > 0 || !HasDefault(f) {
		return false
	}
	for _, x := range strings.Split(os.ExpandEnv(f.StringVal(store)), ",") {
		if x = strings.TrimSpace(x); x != "" {
			*xs = append(*xs, x)
		}
	}
	return true
}

// Apply the default to an integer option only if it still has the value it was given by the flag
// definition.
func ApplyIntDefault(ip *int, flagDefault int, f *ini.Field) error {
	if *ip != flagDefault || !HasDefault(f) {
		return nil
	}
	n, err := strconv.Atoi(os.ExpandEnv(strings.TrimSpace(f.StringVal(store))))
	if err != nil {
		return err
	}
	*ip = n
	return nil
}
