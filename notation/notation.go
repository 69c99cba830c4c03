// Package notation parses the textual place-notation formats a method
// library or a human operator supplies (spec §6) into the row package's
// Notation type. This is the "narrow interface" boundary the core search
// engine consumes place notation through — the engine itself never parses
// text, only row.Notation values.
package notation

import (
	"fmt"
	"strings"

	"touch-composer/row"
)

// bellIndex maps a display character back to its place number, the inverse
// of the bellChars table in package row.
var bellIndex = buildBellIndex()

func buildBellIndex() map[byte]int {
	const chars = "1234567890ETABCDFGHJ"

	m := make(map[byte]int, len(chars))
	for i := 0; i < len(chars); i++ {
		m[chars[i]] = i + 1
	}

	return m
}

// leadheadCodes maps the single-letter leadhead-code prefix of format (d) to
// an implicit trailing block appended to the parsed notation. Real method
// classification assigns dozens of distinct group shapes to these letters;
// this engine only needs a leadhead row to exist, so codes map to one of a
// small set of representative endings (see DESIGN.md).
var leadheadCodes = map[byte]string{
	'f': "12",
	'b': "14",
	'c': "16",
	'a': "18",
	'm': "1",
	'z': "x",
}

// Parse accepts any of the four place-notation string forms of spec §6 and
// returns the first-half notation (through the half-lead change inclusive).
// Callers derive the second half via Notation.Mirror.
func Parse(s string) (row.Notation, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty place notation")
	}

	switch {
	case strings.Contains(s, ","):
		return parseBlockForm(s)
	case len(s) > 0 && isLeadheadCode(s[0]):
		return parseCodeForm(s)
	default:
		return parseDotForm(s)
	}
}

func isLeadheadCode(c byte) bool {
	lower := c | 0x20
	if lower == 'z' {
		return true
	}

	return lower >= 'a' && lower <= 'm'
}

// parseDotForm handles forms (a) and (b): dot-separated changes, optionally
// with an explicit "l"/"lh" marker introducing the leadhead change. Either
// way the leadhead change is simply the final token.
func parseDotForm(s string) (row.Notation, error) {
	fields := strings.Fields(s)

	var tokens []string

	for _, f := range fields {
		tokens = append(tokens, strings.Split(f, ".")...)
	}

	out := make(row.Notation, 0, len(tokens))

	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}

		lower := strings.ToLower(tok)
		if lower == "l" || lower == "lh" {
			continue
		}

		c, err := parseChange(tok)
		if err != nil {
			return nil, err
		}

		out = append(out, c)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no changes parsed from %q", s)
	}

	return out, nil
}

// parseBlockForm handles form (c): comma-separated blocks, each prefixed
// "&" (symmetric) or "+" (asymmetric). Asymmetric methods are a Non-goal
// (spec §1), so a "+" block is rejected rather than silently mishandled.
func parseBlockForm(s string) (row.Notation, error) {
	blocks := strings.Split(s, ",")

	var out row.Notation

	for _, b := range blocks {
		b = strings.TrimSpace(b)
		if b == "" {
			continue
		}

		switch b[0] {
		case '&':
			n, err := parseDotForm(b[1:])
			if err != nil {
				return nil, err
			}

			out = append(out, n...)
		case '+':
			return nil, fmt.Errorf("asymmetric block %q is not supported (stage-8 symmetric methods only)", b)
		default:
			n, err := parseDotForm(b)
			if err != nil {
				return nil, err
			}

			out = append(out, n...)
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no changes parsed from %q", s)
	}

	return out, nil
}

// parseCodeForm handles form (d): a leadhead-code prefix (letter, optional
// digit) followed by a symmetric block.
func parseCodeForm(s string) (row.Notation, error) {
	code := s[0] | 0x20
	rest := s[1:]

	for len(rest) > 0 && rest[0] >= '0' && rest[0] <= '9' {
		rest = rest[1:]
	}

	body, err := parseDotForm(strings.TrimSpace(rest))
	if err != nil {
		return nil, err
	}

	ending, ok := leadheadCodes[code]
	if !ok {
		return nil, fmt.Errorf("unknown leadhead code %q", string(s[0]))
	}

	endChange, err := parseChange(ending)
	if err != nil {
		return nil, err
	}

	return append(body, endChange), nil
}

// parseChange parses a single token: "x" or "-" for cross, else the bell
// characters naming held places.
func parseChange(tok string) (row.Change, error) {
	lower := strings.ToLower(tok)
	if lower == "x" || lower == "-" {
		return row.Cross, nil
	}

	held := make([]int, 0, len(tok))

	for i := 0; i < len(tok); i++ {
		p, ok := bellIndex[tok[i]]
		if !ok {
			return row.Change{}, fmt.Errorf("unrecognized place character %q in %q", tok[i], tok)
		}

		held = append(held, p)
	}

	sortInts(held)

	return row.Change{Held: held}, nil
}

func sortInts(s []int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
