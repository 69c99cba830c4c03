// ABOUTME: Minimal precision formatting for rate values, and composition output rendering
// ABOUTME: Formats float64 pairs with just enough digits to show the difference

package main

import (
	"fmt"
	"math"
	"strings"

	"touch-composer/method"
	"touch-composer/topk"
)

// FormatMinimalPrecision returns a formatted string of curr with the minimum
// precision needed to distinguish it from prev. Returns a string suitable for
// displaying fitness values in CLI output.
func FormatMinimalPrecision(prev, curr float64) string {
	// Handle special cases
	if math.IsNaN(prev) || math.IsNaN(curr) {
		return fmt.Sprintf("%.2f", curr)
	}
	if math.IsInf(prev, 0) || math.IsInf(curr, 0) {
		return fmt.Sprintf("%.2f", curr)
	}

	// If they're exactly equal, use minimal precision
	if prev == curr {
		return fmt.Sprintf("%.2f", curr)
	}

	// Find the minimum precision where formatted strings differ
	const maxPrecision = 10
	for precision := 1; precision <= maxPrecision; precision++ {
		format := fmt.Sprintf("%%.%df", precision)
		prevStr := fmt.Sprintf(format, prev)
		currStr := fmt.Sprintf(format, curr)

		if prevStr != currStr {
			// Found differing precision, add 1 more digit for clarity
			clarityPrecision := precision + 1
			if clarityPrecision > maxPrecision {
				clarityPrecision = maxPrecision
			}
			return fmt.Sprintf(fmt.Sprintf("%%.%df", clarityPrecision), curr)
		}
	}

	// Fallback to max precision if still can't distinguish
	return fmt.Sprintf(fmt.Sprintf("%%.%df", maxPrecision), curr)
}

// callMarker renders a call kind as the optional suffix spec §6's
// start-composition seed format uses: "-" for a bob, "s" for a single,
// nothing for plain.
func callMarker(c method.CallKind) string {
	switch c {
	case method.Bob:
		return "-"
	case method.Single:
		return "s"
	default:
		return ""
	}
}

// compositeAbbreviation names a half-lead-spliced lead by concatenating
// its first and second half methods' abbreviations (e.g. "CY" for
// Cambridge-then-Yorkshire); a non-spliced or leadhead-only lead collapses
// to the single method's abbreviation.
func compositeAbbreviation(methods []*method.Method, cm method.CompositeMethod) string {
	if cm.FirstIdx == cm.SecondIdx {
		return methods[cm.FirstIdx].Abbreviation
	}

	return methods[cm.FirstIdx].Abbreviation + methods[cm.SecondIdx].Abbreviation
}

// FormatComposition renders an output composition per spec §6: a title
// ("<length> <n>-spliced"), the lead sequence with method abbreviation and
// optional call marker, part count, best-rotation music, per-part COM, and
// method balance percentage.
func FormatComposition(c topk.Candidate, methods []*method.Method, composites []method.CompositeMethod, parts int) string {
	var b strings.Builder

	perPart := 0
	leads := make([]string, 0, len(c.Leads))

	for _, lead := range c.Leads {
		cm := composites[lead.CompositeIdx]
		perPart += len(cm.PNPermIDs)
		leads = append(leads, compositeAbbreviation(methods, cm)+callMarker(lead.Call))
	}

	fmt.Fprintf(&b, "%d %d-spliced\n", perPart*parts, len(methods))
	fmt.Fprintf(&b, "%s\n", strings.Join(leads, " "))
	fmt.Fprintf(&b, "parts: %d  music: %d  com: %d (total %d)  balance: %d%%\n",
		parts, c.Music, c.COM, c.COM*parts, c.Balance)

	return b.String()
}
