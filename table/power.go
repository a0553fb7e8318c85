package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	. "jobpower/common"
	"jobpower/repr"
)

// Load a power table from one file.  Files whose name (without any ".gz") ends in ".json" are
// Sonar sample streams, everything else is a CSV table with node, timestamp and value columns.
// The returned table is frozen.
func LoadPower(filename string, cols Columns) (table *repr.PowerTable, softErrors int, err error) {
	input, err := Open(filename)
	if err != nil {
		return nil, 0, fmt.Errorf("Power table %s: %w", filename, err)
	}
	defer input.Close()
	table = repr.NewPowerTable(filename)
	if strings.HasSuffix(baseName(filename), ".json") {
		softErrors, err = ReadSonarPower(input, table)
	} else {
		softErrors, err = ReadPowerCSV(input, cols, table)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("Power table %s: %w", filename, err)
	}
	table = table.Freeze()
	Log.Infof("Power table %s: %d samples for %d nodes", filename, table.Len(), len(table.Nodes()))
	return
}

// Read CSV power samples into the table.  Rows with a bad timestamp, or a value that is not a
// finite number, are dropped and counted.
func ReadPowerCSV(input io.Reader, cols Columns, table *repr.PowerTable) (softErrors int, err error) {
	if cols == nil {
		cols = DefaultPowerColumns()
	}
	rdr := csv.NewReader(input)
	rdr.FieldsPerRecord = -1
	rdr.ReuseRecord = true
	header, err := rdr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("Empty power table")
		}
		return 0, err
	}
	ix, err := cols.locate(header)
	if err != nil {
		return 0, err
	}
	nodeIx, tsIx, valIx := ix[FieldNode], ix[FieldTimestamp], ix[FieldValue]
	width := len(header)
	for {
		fields, err := rdr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				softErrors++
				continue
			}
			return 0, err
		}
		if len(fields) != width {
			softErrors++
			continue
		}
		node := strings.TrimSpace(fields[nodeIx])
		t, terr := ParseTime(fields[tsIx])
		v, verr := strconv.ParseFloat(strings.TrimSpace(fields[valIx]), 64)
		if node == "" || terr != nil || verr != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			softErrors++
			continue
		}
		table.Add(repr.PowerSample{Node: node, Timestamp: t.Unix(), Watts: v})
	}
	if softErrors > 0 {
		Log.Warningf("Power table %s: %d malformed rows dropped", table.Name, softErrors)
	}
	return softErrors, nil
}
