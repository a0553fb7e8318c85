package cmd

import (
	"errors"
	"fmt"
	"path"
	"strings"

	. "jobpower/common"
	"jobpower/pipeline"
	"jobpower/table"
	"jobpower/tick"
)

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// DevArgs are for development and their inclusion can be controlled with the devArgs setting,
// below.

type DevArgs struct {
	CpuProfile string
}

const devArgs = true

func (d *DevArgs) CpuProfileFile() string {
	return d.CpuProfile
}

func (d *DevArgs) Add(fs *CLI) {
	if devArgs {
		fs.Group("development")
		fs.StringVar(&d.CpuProfile, "cpuprofile", "",
			"(Development) write cpu profile to `filename`")
	}
}

func (d *DevArgs) Validate() error {
	return nil
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// -v lowers the log level to Info, -debug to Debug.

type VerboseArgs struct {
	Verbose bool
	Debug   bool
}

func (va *VerboseArgs) Add(fs *CLI) {
	fs.Group("development")
	fs.BoolVar(&va.Verbose, "v", false, "Print verbose diagnostics to stderr")
	fs.BoolVar(&va.Verbose, "verbose", false, "Print verbose diagnostics to stderr")
	fs.BoolVar(&va.Debug, "debug", false, "Print debugging diagnostics to stderr")
}

func (va *VerboseArgs) Validate() error {
	return nil
}

func (va *VerboseArgs) VerboseFlag() bool {
	return va.Verbose
}

func (va *VerboseArgs) DebugFlag() bool {
	return va.Debug
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// JobSourceArgs locate the job tables and say how to read them.

type JobSourceArgs struct {
	JobFiles     []string
	NodeListFile string
	NodeFormat   string
	Columns      table.Columns

	columnSpec string
}

func (js *JobSourceArgs) Add(fs *CLI) {
	fs.Group("data-source")
	fs.Var(NewRepeatableString(&js.JobFiles), "jobs",
		"Read jobs from `filename` (.csv, .json, optionally .gz), repeatable [default: none]")
	fs.StringVar(&js.columnSpec, "job-columns", "",
		"Map job fields to table columns, `field=column,...` with fields job_id, start_time,\n"+
			"end_time, nodes [default: the field names]")
	fs.StringVar(&js.NodeFormat, "node-format", "",
		"Syntax of the node column, `format` hostlist or layout [default: hostlist]")
	fs.StringVar(&js.NodeListFile, "nodes", "",
		"Index only the nodes listed in `filename` [default: every node that has a job]")
}

func (js *JobSourceArgs) Validate() error {
	ApplyListDefault(&js.JobFiles, DataSourceJobs)
	ApplyDefault(&js.NodeListFile, DataSourceNodes)
	ApplyDefault(&js.NodeFormat, DataSourceFormat)
	if len(js.JobFiles) == 0 {
		return errors.New("Required -jobs")
	}
	for i := range js.JobFiles {
		js.JobFiles[i] = path.Clean(js.JobFiles[i])
	}
	if _, err := table.NodeExtractorByName(js.NodeFormat); err != nil {
		return err
	}
	js.Columns = table.DefaultJobColumns()
	if err := js.Columns.Set(js.columnSpec); err != nil {
		return fmt.Errorf("Bad -job-columns: %w", err)
	}
	return nil
}

func (js *JobSourceArgs) Configure(cfg *pipeline.Config) {
	cfg.JobFiles = js.JobFiles
	cfg.JobColumns = js.Columns
	cfg.NodeFormat = js.NodeFormat
	cfg.NodeListFile = js.NodeListFile
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// PowerSourceArgs locate the power tables, in files or in a database.

type PowerSourceArgs struct {
	PowerFiles  []string
	PowerTables []string
	DatabaseURI string
	Columns     table.Columns

	columnSpec string
}

func (ps *PowerSourceArgs) Add(fs *CLI) {
	fs.Group("data-source")
	fs.Var(NewRepeatableString(&ps.PowerFiles), "power",
		"Read a power table from `filename` (.csv, .json, optionally .gz), repeatable, the tables\n"+
			"are summed [default: none]")
	fs.Var(NewRepeatableString(&ps.PowerTables), "power-table",
		"Read a power table from database table `name`, repeatable [default: none]")
	fs.StringVar(&ps.DatabaseURI, "database-uri", "",
		"Connect to the database at `uri` for -power-table [default: none]")
	fs.StringVar(&ps.columnSpec, "power-columns", "",
		"Map power fields to table columns, `field=column,...` with fields node, timestamp,\n"+
			"value [default: the field names]")
}

func (ps *PowerSourceArgs) Validate() error {
	ApplyListDefault(&ps.PowerFiles, DataSourcePower)
	ApplyListDefault(&ps.PowerTables, DataSourceTables)
	ApplyDefault(&ps.DatabaseURI, DataSourceDBURI)
	if len(ps.PowerFiles) == 0 && len(ps.PowerTables) == 0 {
		return errors.New("Required -power or -power-table")
	}
	if len(ps.PowerTables) > 0 && ps.DatabaseURI == "" {
		return errors.New("-power-table requires -database-uri")
	}
	for i := range ps.PowerFiles {
		ps.PowerFiles[i] = path.Clean(ps.PowerFiles[i])
	}
	ps.Columns = table.DefaultPowerColumns()
	if err := ps.Columns.Set(ps.columnSpec); err != nil {
		return fmt.Errorf("Bad -power-columns: %w", err)
	}
	return nil
}

func (ps *PowerSourceArgs) Configure(cfg *pipeline.Config) {
	cfg.PowerFiles = ps.PowerFiles
	cfg.PowerTables = ps.PowerTables
	cfg.DatabaseURI = ps.DatabaseURI
	cfg.PowerColumns = ps.Columns
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// DataTargetArgs say where the results go.

type DataTargetArgs struct {
	Output      string
	ArtifactDir string
	KafkaBroker string
	KafkaTopic  string
	MetricsFile string
}

func (dt *DataTargetArgs) Add(fs *CLI) {
	fs.Group("data-target")
	fs.StringVar(&dt.Output, "output", "",
		"Write the exclusive jobs with their power series to `filename` (.csv, .jsonl,\n"+
			"optionally .gz) [default: none]")
	fs.StringVar(&dt.ArtifactDir, "artifact-dir", "",
		"Also store each job's power series as a file in `directory` [default: none]")
	fs.StringVar(&dt.KafkaBroker, "kafka-broker", "",
		"Also send each job's power series to the Kafka broker at `host:port` [default: none]")
	fs.StringVar(&dt.KafkaTopic, "kafka-topic", "",
		"The `topic` for -kafka-broker [default: none]")
	fs.StringVar(&dt.MetricsFile, "metrics-file", "",
		"Write run metrics in Prometheus text format to `filename` [default: none]")
}

func (dt *DataTargetArgs) Validate() error {
	ApplyDefault(&dt.Output, DataTargetOutput)
	ApplyDefault(&dt.ArtifactDir, DataTargetArtDir)
	ApplyDefault(&dt.KafkaBroker, DataTargetBroker)
	ApplyDefault(&dt.KafkaTopic, DataTargetTopic)
	ApplyDefault(&dt.MetricsFile, DataTargetMetric)
	if dt.Output == "" {
		return errors.New("Required -output")
	}
	if (dt.KafkaBroker == "") != (dt.KafkaTopic == "") {
		return errors.New("-kafka-broker and -kafka-topic must be used together")
	}
	return nil
}

func (dt *DataTargetArgs) Configure(cfg *pipeline.Config) {
	cfg.Output = dt.Output
	cfg.ArtifactDir = dt.ArtifactDir
	cfg.KafkaBroker = dt.KafkaBroker
	cfg.KafkaTopic = dt.KafkaTopic
	cfg.MetricsFile = dt.MetricsFile
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// OperationArgs control the computation itself.

type OperationArgs struct {
	TickSeconds int
	Workers     int
}

func (oa *OperationArgs) Add(fs *CLI) {
	fs.Group("application-control")
	fs.IntVar(&oa.TickSeconds, "tick", tick.DefaultWidth,
		"Occupancy grid width in `seconds`, must divide 60")
	fs.IntVar(&oa.Workers, "workers", 1,
		"Use `n` worker goroutines")
}

func (oa *OperationArgs) Validate() error {
	if err := ApplyIntDefault(&oa.TickSeconds, tick.DefaultWidth, OperationTick); err != nil {
		return fmt.Errorf("Bad tick in defaults file: %w", err)
	}
	if err := ApplyIntDefault(&oa.Workers, 1, OperationWorkers); err != nil {
		return fmt.Errorf("Bad workers in defaults file: %w", err)
	}
	if _, err := tick.NewGrid(oa.TickSeconds); err != nil {
		return err
	}
	if oa.Workers < 1 {
		return errors.New("-workers must be at least 1")
	}
	return nil
}

func (oa *OperationArgs) Configure(cfg *pipeline.Config) {
	cfg.TickSeconds = oa.TickSeconds
	cfg.Workers = oa.Workers
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// Repeatable arguments.  These can't be comma-separated since file names and host patterns may
// contain commas.

type RepeatableString struct {
	xs *[]string
}

func NewRepeatableString(xs *[]string) *RepeatableString {
	return &RepeatableString{xs}
}

func (rs *RepeatableString) String() string {
	if rs == nil || rs.xs == nil {
		return ""
	}
	return strings.Join(*rs.xs, ",")
}

func (rs *RepeatableString) Set(s string) error {
	if s == "" {
		return errors.New("Empty string is an invalid argument")
	}
	*rs.xs = append(*rs.xs, s)
	return nil
}
