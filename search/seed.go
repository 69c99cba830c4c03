package search

import (
	"fmt"
	"strings"

	"touch-composer/method"
)

// ParseSeed parses spec §6's start-composition seed format: a
// whitespace-separated list of leads, each "XY[-|s]" for half-lead
// splicing (X and Y method abbreviations) or "X[-|s]" for leadhead-only,
// where a trailing "-" marks a bob and a trailing "s" marks a single. The
// returned methodIndex values are in the same slot representation
// Driver.methodIndex uses: a flat composite index (firstIdx*len(methods)+
// secondIdx) for half-lead splicing, or a plain method index for
// leadhead-only.
func ParseSeed(seed string, methods []*method.Method, leadheadOnly bool) (methodIndex []int, calls []method.CallKind, err error) {
	fields := strings.Fields(seed)
	if len(fields) == 0 {
		return nil, nil, nil
	}

	byAbbrev := make(map[string]int, len(methods))
	for i, m := range methods {
		byAbbrev[m.Abbreviation] = i
	}

	methodIndex = make([]int, len(fields))
	calls = make([]method.CallKind, len(fields))

	for i, field := range fields {
		body, call := splitCallMarker(field)
		calls[i] = call

		if leadheadOnly {
			idx, ok := byAbbrev[body]
			if !ok {
				return nil, nil, fmt.Errorf("seed lead %q: unknown method abbreviation %q", field, body)
			}

			methodIndex[i] = idx

			continue
		}

		firstIdx, secondIdx, ok := splitMethodPair(body, byAbbrev)
		if !ok {
			return nil, nil, fmt.Errorf("seed lead %q: could not resolve a method pair", field)
		}

		methodIndex[i] = firstIdx*len(methods) + secondIdx
	}

	return methodIndex, calls, nil
}

// splitCallMarker strips an optional trailing bob/single marker from one
// seed field.
func splitCallMarker(field string) (body string, call method.CallKind) {
	switch {
	case strings.HasSuffix(field, "s"):
		return field[:len(field)-1], method.Single
	case strings.HasSuffix(field, "-"):
		return field[:len(field)-1], method.Bob
	default:
		return field, method.Plain
	}
}

// splitMethodPair resolves a two-method abbreviation pair by trying every
// split point against the known abbreviation set, since abbreviations need
// not be a single character.
func splitMethodPair(body string, byAbbrev map[string]int) (first, second int, ok bool) {
	for split := 1; split < len(body); split++ {
		firstIdx, ok1 := byAbbrev[body[:split]]
		secondIdx, ok2 := byAbbrev[body[split:]]

		if ok1 && ok2 {
			return firstIdx, secondIdx, true
		}
	}

	return 0, 0, false
}

// ApplySeed presets the slot choice arrays from a parsed start-composition
// seed (spec §6): the first candidate the search explores is the seed
// itself, with normal backtracking enumeration continuing forward from
// there. The seed must already be the lowest rotation; the driver does not
// re-sort it. Call immediately after NewDriver, before Run.
func (d *Driver) ApplySeed(methodIndex []int, calls []method.CallKind) {
	n := copy(d.methodIndex, methodIndex)
	copy(d.call, calls[:n])
}
