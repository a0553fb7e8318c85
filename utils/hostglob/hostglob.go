// Slurm-style host lists, as found in the node columns of job tables and in Sonar job records.
//
// A host list is a comma-separated list of patterns.  A pattern is a host name in which any run of
// characters may be replaced by a bracketed list of numbers and number ranges:
//
//   host-list ::= pattern ("," pattern)*
//   pattern   ::= element ("." element)*
//   element   ::= (literal | range)+
//   literal   ::= <characters other than "[", "]", ",", ".", "*">+
//   range     ::= "[" item ("," item)* "]"
//   item      ::= number | number "-" number
//
// "c1-[1-3,7]" stands for c1-1, c1-2, c1-3, c1-7.  Leading zeroes fix the width of the generated
// numbers, so "r1n[08-10]" stands for r1n08, r1n09, r1n10.  Wildcards are not host lists.
//
// CompressHostnames goes the other way.  Expanding its result gives back the same set of names,
// padding included.

package hostglob

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var errEmptyName = errors.New("Illegal pattern: Empty host name")

// Split a host list into its patterns.  Commas inside brackets do not split.

func SplitMultiPattern(s string) ([]string, error) {
	patterns := make([]string, 0)
	if s == "" {
		return patterns, nil
	}
	start, open := 0, false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			if open {
				return nil, errors.New("Illegal pattern: nested brackets")
			}
			open = true
		case ']':
			if !open {
				return nil, errors.New("Illegal pattern: unmatched end bracket")
			}
			open = false
		case ',':
			if open {
				continue
			}
			if i == start {
				return nil, errEmptyName
			}
			patterns = append(patterns, s[start:i])
			start = i + 1
		}
	}
	if open {
		return nil, errors.New("Illegal pattern: Missing end bracket")
	}
	if start == len(s) {
		return nil, errEmptyName
	}
	return append(patterns, s[start:]), nil
}

// Expand a host list into host names in order of first appearance, without duplicates.

func ExpandMultiPattern(s string) ([]string, error) {
	patterns, err := SplitMultiPattern(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	hosts := make([]string, 0)
	for _, p := range patterns {
		names, err := ExpandPattern(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%q: %w", p, err)
		}
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				hosts = append(hosts, n)
			}
		}
	}
	return hosts, nil
}

// Expand a single pattern.  The pattern is a sequence of pieces, each a list of alternatives, and
// the names are the product of the pieces with the leftmost piece varying slowest.

func ExpandPattern(s string) ([]string, error) {
	var pieces [][]string
	for i, elt := range strings.Split(s, ".") {
		if i > 0 {
			pieces = append(pieces, []string{"."})
		}
		p, err := parseElement(elt)
		if err != nil {
			return nil, err
		}
		pieces = append(pieces, p...)
	}
	names := []string{""}
	for _, alts := range pieces {
		next := make([]string, 0, len(names)*len(alts))
		for _, n := range names {
			for _, a := range alts {
				next = append(next, n+a)
			}
		}
		names = next
	}
	return names, nil
}

func parseElement(s string) ([][]string, error) {
	if s == "" {
		return nil, errors.New("Empty element")
	}
	var pieces [][]string
	for s != "" {
		i := strings.IndexAny(s, "[],*")
		switch {
		case i == -1:
			pieces = append(pieces, []string{s})
			s = ""
		case i > 0:
			pieces = append(pieces, []string{s[:i]})
			s = s[i:]
		case s[0] == '[':
			end := strings.IndexByte(s, ']')
			if end == -1 {
				return nil, errors.New("Missing end bracket")
			}
			nums, err := expandRange(s[1:end])
			if err != nil {
				return nil, err
			}
			pieces = append(pieces, nums)
			s = s[end+1:]
		case s[0] == '*':
			return nil, errors.New("Wildcard not allowed in host lists")
		default:
			return nil, fmt.Errorf("Unexpected '%c'", s[0])
		}
	}
	return pieces, nil
}

func expandRange(body string) ([]string, error) {
	var nums []string
	for _, item := range strings.Split(body, ",") {
		lo, hi, isRange := strings.Cut(item, "-")
		first, width, err := parseNumber(lo)
		if err != nil {
			return nil, err
		}
		last := first
		if isRange {
			if last, _, err = parseNumber(hi); err != nil {
				return nil, err
			}
			if first > last {
				return nil, fmt.Errorf("Bad range %s", item)
			}
		}
		for n := first; n <= last; n++ {
			nums = append(nums, fmt.Sprintf("%0*d", width, n))
		}
	}
	return nums, nil
}

// Returns the number and the width it was padded to, 0 if it was not padded.

func parseNumber(digits string) (int, int, error) {
	if digits == "" || strings.Trim(digits, "0123456789") != "" {
		return 0, 0, fmt.Errorf("Expected number, got %q", digits)
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, 0, err
	}
	return n, paddedWidth(digits), nil
}

func paddedWidth(digits string) int {
	if len(digits) > 1 && digits[0] == '0' {
		return len(digits)
	}
	return 0
}

// Compress host names into a sorted list of patterns.  Only the last run of digits in the first
// element of a name is folded into a range, and names whose digits are padded to different widths
// are kept apart.  The result is stable for a given set of names but not necessarily the shortest.

var lastDigitsRe = regexp.MustCompile(`^(.*?)(\d+)(\D*)$`)

type rangeKey struct {
	prefix, tail string
	width        int
}

func CompressHostnames(hosts []string) []string {
	literal := make(map[string]bool)
	ranges := make(map[rangeKey][]int)
	for _, h := range hosts {
		first, domain, hasDomain := strings.Cut(h, ".")
		m := lastDigitsRe.FindStringSubmatch(first)
		if m == nil {
			literal[h] = true
			continue
		}
		n, err := strconv.Atoi(m[2])
		if err != nil {
			literal[h] = true
			continue
		}
		tail := m[3]
		if hasDomain {
			tail += "." + domain
		}
		k := rangeKey{prefix: m[1], tail: tail, width: paddedWidth(m[2])}
		ranges[k] = append(ranges[k], n)
	}

	result := make([]string, 0, len(literal)+len(ranges))
	for h := range literal {
		result = append(result, h)
	}
	for k, ns := range ranges {
		result = append(result, k.prefix+formatRange(ns, k.width)+k.tail)
	}
	slices.Sort(result)
	return result
}

func formatRange(ns []int, width int) string {
	ns = slices.Compact(slices.Sorted(slices.Values(ns)))
	if len(ns) == 1 {
		return fmt.Sprintf("%0*d", width, ns[0])
	}
	var items []string
	for i := 0; i < len(ns); {
		j := i
		for j+1 < len(ns) && ns[j+1] == ns[j]+1 {
			j++
		}
		if i == j {
			items = append(items, fmt.Sprintf("%0*d", width, ns[i]))
		} else {
			items = append(items, fmt.Sprintf("%0*d-%0*d", width, ns[i], width, ns[j]))
		}
		i = j + 1
	}
	return "[" + strings.Join(items, ",") + "]"
}
