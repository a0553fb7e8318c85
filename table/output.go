package table

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"jobpower/repr"
)

const (
	// Written in the power column for an exclusive job that had no power samples.
	NoDataMarker = "nodata"

	// Separates the values of a power series within a CSV field.
	valueSeparator = "|"
)

type Format int

const (
	FormatCSV Format = iota
	FormatJSONL
)

// The output format is determined by the file extension, ignoring any ".gz".
func FormatFor(filename string) Format {
	if strings.HasSuffix(baseName(filename), ".jsonl") {
		return FormatJSONL
	}
	return FormatCSV
}

// The output table is the input job table (the mapped job columns followed by the pass-through
// columns), restricted to exclusive jobs, plus the power column.
type OutputLayout struct {
	Columns Columns
	Extra   []string
}

func (ol *OutputLayout) columns() Columns {
	if ol.Columns == nil {
		return DefaultJobColumns()
	}
	return ol.Columns
}

func (ol *OutputLayout) Header() []string {
	cols := ol.columns()
	h := []string{cols[FieldJobID], cols[FieldStart], cols[FieldEnd], cols[FieldNodes]}
	h = append(h, ol.Extra...)
	return append(h, PowerColumn)
}

// Write the results to a file, atomically.
func WriteOutput(filename string, layout *OutputLayout, results []repr.Result) error {
	out, err := Create(filename)
	if err != nil {
		return err
	}
	if err := WriteResults(out, FormatFor(filename), layout, results); err != nil {
		out.Abort()
		return err
	}
	return out.Close()
}

func WriteResults(w io.Writer, format Format, layout *OutputLayout, results []repr.Result) error {
	switch format {
	case FormatJSONL:
		return writeJSONL(w, layout, results)
	default:
		return writeCSV(w, layout, results)
	}
}

func writeCSV(w io.Writer, layout *OutputLayout, results []repr.Result) error {
	out := csv.NewWriter(w)
	if err := out.Write(layout.Header()); err != nil {
		return err
	}
	row := make([]string, 0, len(layout.Extra)+5)
	for i := range results {
		r := &results[i]
		row = append(row[:0],
			string(r.Job.ID),
			FormatTime(r.Job.Start),
			FormatTime(r.Job.End),
			FormatNodes(r.Job.Nodes),
		)
		for _, e := range layout.Extra {
			row = append(row, r.Job.Extra[e])
		}
		row = append(row, FormatSeries(r))
		if err := out.Write(row); err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

func writeJSONL(w io.Writer, layout *OutputLayout, results []repr.Result) error {
	cols := layout.columns()
	enc := json.NewEncoder(w)
	for i := range results {
		r := &results[i]
		rec := make(map[string]any, len(layout.Extra)+5)
		rec[cols[FieldJobID]] = string(r.Job.ID)
		rec[cols[FieldStart]] = FormatTime(r.Job.Start)
		rec[cols[FieldEnd]] = FormatTime(r.Job.End)
		rec[cols[FieldNodes]] = r.Job.Nodes
		for _, e := range layout.Extra {
			rec[e] = r.Job.Extra[e]
		}
		if r.NoData {
			rec[PowerColumn] = NoDataMarker
		} else {
			values := r.Series.Values
			if values == nil {
				values = []float64{}
			}
			rec[PowerColumn] = values
		}
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}

// Shortest representation that parses back to the same float64.
func FormatSeries(r *repr.Result) string {
	if r.NoData {
		return NoDataMarker
	}
	var b strings.Builder
	for i, v := range r.Series.Values {
		if i > 0 {
			b.WriteString(valueSeparator)
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return b.String()
}

func ParseSeries(s string) (values []float64, noData bool, err error) {
	s = strings.TrimSpace(s)
	if s == NoDataMarker {
		return nil, true, nil
	}
	values = make([]float64, 0)
	if s == "" {
		return
	}
	for _, f := range strings.Split(s, valueSeparator) {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, false, fmt.Errorf("Bad power value '%s'", f)
		}
		values = append(values, v)
	}
	return
}

// Read back an output file.  The series in the results carry values only, since the output table
// does not record sample times.
func ReadOutput(filename string, cols Columns) ([]repr.Result, error) {
	input, err := Open(filename)
	if err != nil {
		return nil, err
	}
	defer input.Close()
	return ReadResults(input, FormatFor(filename), cols)
}

func ReadResults(input io.Reader, format Format, cols Columns) ([]repr.Result, error) {
	if cols == nil {
		cols = DefaultJobColumns()
	}
	if format == FormatJSONL {
		return readJSONL(input, cols)
	}
	jobs, _, soft, err := ReadJobsCSV(input, &JobOptions{Columns: cols, Nodes: HostlistNodes})
	if err != nil {
		return nil, err
	}
	if soft > 0 {
		return nil, fmt.Errorf("%d malformed rows in output table", soft)
	}
	results := make([]repr.Result, 0, len(jobs))
	for _, j := range jobs {
		text, found := j.Extra[PowerColumn]
		if !found {
			return nil, fmt.Errorf("Column '%s' not found", PowerColumn)
		}
		delete(j.Extra, PowerColumn)
		values, noData, err := ParseSeries(text)
		if err != nil {
			return nil, fmt.Errorf("Job %s: %w", j.ID, err)
		}
		results = append(results, repr.Result{Job: j, Series: repr.Series{Values: values}, NoData: noData})
	}
	return results, nil
}

func readJSONL(input io.Reader, cols Columns) ([]repr.Result, error) {
	results := make([]repr.Result, 0)
	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if strings.TrimSpace(scanner.Text()) == "" {
			continue
		}
		var rec map[string]json.RawMessage
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("Line %d: %w", line, err)
		}
		r, err := resultFromJSON(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("Line %d: %w", line, err)
		}
		results = append(results, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func resultFromJSON(rec map[string]json.RawMessage, cols Columns) (repr.Result, error) {
	var (
		id, start, end string
		nodes          []string
	)
	for _, f := range []struct {
		field string
		dest  any
	}{
		{FieldJobID, &id},
		{FieldStart, &start},
		{FieldEnd, &end},
		{FieldNodes, &nodes},
	} {
		raw, found := rec[cols[f.field]]
		if !found {
			return repr.Result{}, fmt.Errorf("Missing field '%s'", cols[f.field])
		}
		if err := json.Unmarshal(raw, f.dest); err != nil {
			return repr.Result{}, fmt.Errorf("Field '%s': %w", cols[f.field], err)
		}
		delete(rec, cols[f.field])
	}
	st, err := ParseTime(start)
	if err != nil {
		return repr.Result{}, err
	}
	et, err := ParseTime(end)
	if err != nil {
		return repr.Result{}, err
	}
	job := repr.NewJob(repr.JobID(id), st, et, nodes)

	var result repr.Result
	raw, found := rec[PowerColumn]
	if !found {
		return result, fmt.Errorf("Missing field '%s'", PowerColumn)
	}
	delete(rec, PowerColumn)
	var marker string
	if json.Unmarshal(raw, &marker) == nil {
		if marker != NoDataMarker {
			return result, fmt.Errorf("Bad power marker '%s'", marker)
		}
		result.NoData = true
	} else if err := json.Unmarshal(raw, &result.Series.Values); err != nil {
		return result, errors.New("Bad power series")
	}

	if len(rec) > 0 {
		job.Extra = make(map[string]string, len(rec))
		for k, v := range rec {
			var s string
			if json.Unmarshal(v, &s) != nil {
				s = string(v)
			}
			job.Extra[k] = s
		}
	}
	result.Job = job
	return result, nil
}
