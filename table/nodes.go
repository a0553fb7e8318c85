package table

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"jobpower/utils/hostglob"
)

// A NodeExtractor computes the set of allocated node names from the raw text of the job table's
// node field.  It must fail rather than return an empty set.
type NodeExtractor func(raw string) ([]string, error)

var errNoNodes = errors.New("Empty node set")

// HostlistNodes accepts a Slurm host list ("r201n[01-04],r202n07") or a JSON array of names
// (`["r201n01","r201n02"]`, also with single quotes as written by some dataframe tools).
func HostlistNodes(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	var nodes []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(strings.ReplaceAll(raw, "'", `"`)), &nodes); err != nil {
			return nil, fmt.Errorf("Bad node array: %w", err)
		}
		for i := range nodes {
			nodes[i] = strings.TrimSpace(nodes[i])
		}
		nodes = slices.DeleteFunc(nodes, func(s string) bool { return s == "" })
	} else {
		var err error
		nodes, err = hostglob.ExpandMultiPattern(raw)
		if err != nil {
			return nil, err
		}
	}
	if len(nodes) == 0 {
		return nil, errNoNodes
	}
	return nodes, nil
}

// LayoutNodes accepts a JSON object whose keys are node names and whose values describe the
// resources allocated on the node, eg `{"r201n01": [0, 1, 2, 3], "r201n02": [0, 1]}`.
func LayoutNodes(raw string) ([]string, error) {
	var layout map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.ReplaceAll(raw, "'", `"`)), &layout); err != nil {
		return nil, fmt.Errorf("Bad node layout: %w", err)
	}
	if len(layout) == 0 {
		return nil, errNoNodes
	}
	return slices.Sorted(maps.Keys(layout)), nil
}

func NodeExtractorByName(name string) (NodeExtractor, error) {
	switch name {
	case "", "hostlist":
		return HostlistNodes, nil
	case "layout":
		return LayoutNodes, nil
	default:
		return nil, fmt.Errorf("Unknown node format '%s', expected 'hostlist' or 'layout'", name)
	}
}

// Read a node list file: one node name per line, blank lines and "#" comments ignored.
func ReadNodeList(filename string) ([]string, error) {
	input, err := Open(filename)
	if err != nil {
		return nil, err
	}
	defer input.Close()
	nodes := make([]string, 0)
	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		l := strings.TrimSpace(scanner.Text())
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		nodes = append(nodes, l)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return nodes, nil
}

// Format a node set for output.
func FormatNodes(nodes []string) string {
	return strings.Join(hostglob.CompressHostnames(nodes), ",")
}
