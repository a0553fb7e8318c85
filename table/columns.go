package table

import (
	"fmt"
	"strings"
)

// Logical field names of the job table, also the default column names.
const (
	FieldJobID = "job_id"
	FieldStart = "start_time"
	FieldEnd   = "end_time"
	FieldNodes = "nodes"
)

// Logical field names of a power table, also the default column names.
const (
	FieldNode      = "node"
	FieldTimestamp = "timestamp"
	FieldValue     = "value"
)

// The column added to the output table.
const PowerColumn = "power_consumption"

// Columns maps logical field names to the column names actually used in a table.
type Columns map[string]string

func DefaultJobColumns() Columns {
	return Columns{
		FieldJobID: FieldJobID,
		FieldStart: FieldStart,
		FieldEnd:   FieldEnd,
		FieldNodes: FieldNodes,
	}
}

func DefaultPowerColumns() Columns {
	return Columns{
		FieldNode:      FieldNode,
		FieldTimestamp: FieldTimestamp,
		FieldValue:     FieldValue,
	}
}

// Override the mapping from a spec of the form "field=column,field=column".  Only known logical
// fields may be named.
func (c Columns) Set(spec string) error {
	if strings.TrimSpace(spec) == "" {
		return nil
	}
	for _, kv := range strings.Split(spec, ",") {
		field, column, ok := strings.Cut(kv, "=")
		field = strings.TrimSpace(field)
		column = strings.TrimSpace(column)
		if !ok || column == "" {
			return fmt.Errorf("Bad column mapping '%s', expected field=column", kv)
		}
		if _, known := c[field]; !known {
			return fmt.Errorf("Unknown field '%s' in column mapping", field)
		}
		c[field] = column
	}
	return nil
}

func (c Columns) String() string {
	var parts []string
	for _, f := range []string{FieldJobID, FieldStart, FieldEnd, FieldNodes, FieldNode, FieldTimestamp, FieldValue} {
		if col, found := c[f]; found {
			parts = append(parts, f+"="+col)
		}
	}
	return strings.Join(parts, ",")
}

// Locate the columns in a header row, returning the index of each logical field.
func (c Columns) locate(header []string) (map[string]int, error) {
	ix := make(map[string]int, len(c))
	for field, column := range c {
		found := false
		for i, h := range header {
			if strings.TrimSpace(h) == column {
				ix[field] = i
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("Column '%s' (for %s) not found in header", column, field)
		}
	}
	return ix, nil
}
