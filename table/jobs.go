package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	. "jobpower/common"
	"jobpower/repr"
)

// A JobTable is the concatenation of one or more job inputs.  Extra holds the names of the
// pass-through columns in the order they first appeared, so that output can reproduce them.
type JobTable struct {
	Jobs  []*repr.Job
	Extra []string
}

type JobOptions struct {
	Columns Columns
	Nodes   NodeExtractor
}

func (o *JobOptions) columns() Columns {
	if o == nil || o.Columns == nil {
		return DefaultJobColumns()
	}
	return o.Columns
}

func (o *JobOptions) nodes() NodeExtractor {
	if o == nil || o.Nodes == nil {
		return HostlistNodes
	}
	return o.Nodes
}

// Load job tables from files and concatenate them.  Files whose name (without any ".gz") ends in
// ".json" are Sonar Slurm job streams, everything else is CSV.  Malformed rows are dropped and
// counted as soft errors, as are rows that repeat an already-seen job ID (the first one wins).
func LoadJobs(filenames []string, opts *JobOptions) (table *JobTable, softErrors int, err error) {
	table = &JobTable{Jobs: make([]*repr.Job, 0)}
	seen := make(map[repr.JobID]bool)
	haveExtra := make(map[string]bool)
	for _, fn := range filenames {
		var (
			jobs  []*repr.Job
			extra []string
			soft  int
		)
		jobs, extra, soft, err = loadJobFile(fn, opts)
		if err != nil {
			return nil, 0, fmt.Errorf("Job table %s: %w", fn, err)
		}
		softErrors += soft
		for _, e := range extra {
			if !haveExtra[e] {
				haveExtra[e] = true
				table.Extra = append(table.Extra, e)
			}
		}
		for _, j := range jobs {
			if seen[j.ID] {
				Log.Warningf("Job table %s: duplicate job %s ignored", fn, j.ID)
				softErrors++
				continue
			}
			seen[j.ID] = true
			table.Jobs = append(table.Jobs, j)
		}
		Log.Infof("Job table %s: %d jobs", fn, len(jobs))
	}
	return
}

func loadJobFile(filename string, opts *JobOptions) ([]*repr.Job, []string, int, error) {
	input, err := Open(filename)
	if err != nil {
		return nil, nil, 0, err
	}
	defer input.Close()
	if strings.HasSuffix(baseName(filename), ".json") {
		jobs, soft, err := ReadSonarJobs(input)
		return jobs, SonarJobColumns, soft, err
	}
	return ReadJobsCSV(input, opts)
}

// Read a CSV job table with a header row.  Columns not mapped to a logical field are carried in
// each job's Extra map.
func ReadJobsCSV(
	input io.Reader,
	opts *JobOptions,
) (
	jobs []*repr.Job,
	extra []string,
	softErrors int,
	err error,
) {
	cols := opts.columns()
	extract := opts.nodes()
	rdr := csv.NewReader(input)
	rdr.FieldsPerRecord = -1
	rdr.ReuseRecord = true
	header, err := rdr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("Empty job table")
		}
		return nil, nil, 0, err
	}
	header = append([]string(nil), header...)
	ix, err := cols.locate(header)
	if err != nil {
		return nil, nil, 0, err
	}
	isLogical := make(map[int]bool)
	for _, i := range ix {
		isLogical[i] = true
	}
	for i, h := range header {
		if !isLogical[i] {
			extra = append(extra, strings.TrimSpace(h))
		}
	}

	jobs = make([]*repr.Job, 0)
	line := 1
	for {
		var fields []string
		fields, err = rdr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = nil
				break
			}
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				Log.Warningf("Job table: %v", err)
				softErrors++
				line++
				continue
			}
			return nil, nil, 0, err
		}
		line++
		if len(fields) != len(header) {
			Log.Warningf("Job table line %d: expected %d fields, got %d", line, len(header), len(fields))
			softErrors++
			continue
		}
		job, err := makeJob(fields, ix, extract)
		if err != nil {
			Log.Warningf("Job table line %d: %v", line, err)
			softErrors++
			continue
		}
		if len(extra) > 0 {
			job.Extra = make(map[string]string, len(extra))
			for i, h := range header {
				if !isLogical[i] {
					job.Extra[strings.TrimSpace(h)] = fields[i]
				}
			}
		}
		jobs = append(jobs, job)
	}
	return
}

func makeJob(fields []string, ix map[string]int, extract NodeExtractor) (*repr.Job, error) {
	id := strings.TrimSpace(fields[ix[FieldJobID]])
	if id == "" {
		return nil, errors.New("Empty job ID")
	}
	start, err := ParseTime(fields[ix[FieldStart]])
	if err != nil {
		return nil, fmt.Errorf("Job %s: bad start time '%s'", id, fields[ix[FieldStart]])
	}
	end, err := ParseTime(fields[ix[FieldEnd]])
	if err != nil {
		return nil, fmt.Errorf("Job %s: bad end time '%s'", id, fields[ix[FieldEnd]])
	}
	if end.Before(start) {
		return nil, fmt.Errorf("Job %s: end time before start time", id)
	}
	nodes, err := extract(fields[ix[FieldNodes]])
	if err != nil {
		return nil, fmt.Errorf("Job %s: %w", id, err)
	}
	return repr.NewJob(repr.JobID(id), start, end, nodes), nil
}
