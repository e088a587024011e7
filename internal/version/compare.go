// Package version implements the pkg-config version comparator: a
// total order over dotted version strings with alphabetic pre-release
// suffixes.
package version

import (
	"regexp"
	"strconv"
	"strings"
)

// Suffix patterns are pre-compiled once at startup.
var (
	namedSuffixRe   = regexp.MustCompile(`-?(rc|beta|b|alpha|a)(\d+)$`)
	trailingLetterRe = regexp.MustCompile(`([A-Za-z])$`)
)

// suffix describes a parsed pre-release/point-release tail.
type suffix struct {
	present bool
	label   string // "a", "alpha", "b", "beta", "rc", or a single letter
	number  int    // numeric part following a named suffix; -1 for a bare trailing letter
}

// suffixRank orders suffix labels by their first letter: alpha < beta
// < rc.
func suffixRank(label string) int {
	if label == "" {
		return -1
	}
	switch label[0] {
	case 'a':
		return 0
	case 'b':
		return 1
	case 'r':
		return 2
	default:
		return 3
	}
}

// splitSuffix extracts the optional named suffix, or failing that an
// optional single trailing ASCII letter, from v. It returns the
// stripped body and the suffix descriptor.
func splitSuffix(v string) (body string, s suffix) {
	if m := namedSuffixRe.FindStringSubmatchIndex(v); m != nil {
		label := v[m[2]:m[3]]
		numStr := v[m[4]:m[5]]
		n, _ := strconv.Atoi(numStr)
		return v[:m[0]], suffix{present: true, label: label, number: n}
	}
	if m := trailingLetterRe.FindStringSubmatchIndex(v); m != nil {
		letter := v[m[2]:m[3]]
		return v[:m[0]], suffix{present: true, label: letter, number: -1}
	}
	return v, suffix{}
}

// Compare returns -1, 0, or 1 for a<b, a==b, a>b.
func Compare(a, b string) int {
	if a == b {
		return 0
	}

	bodyA, sufA := splitSuffix(a)
	bodyB, sufB := splitSuffix(b)

	partsA := strings.Split(bodyA, ".")
	partsB := strings.Split(bodyB, ".")

	n := len(partsA)
	if len(partsB) > n {
		n = len(partsB)
	}

	for i := 0; i < n; i++ {
		lastA := i == len(partsA)-1
		lastB := i == len(partsB)-1
		hasA := i < len(partsA)
		hasB := i < len(partsB)

		var numA, numB int
		if hasA {
			numA = atoi(partsA[i])
		}
		if hasB {
			numB = atoi(partsB[i])
		}

		atFinalPosition := (lastA || !hasA) && (lastB || !hasB)
		if (sufA.present || sufB.present) && atFinalPosition && hasA && hasB && numA == numB {
			switch {
			case sufA.present && sufB.present:
				if sufA.number == -1 && sufB.number == -1 {
					// Both are bare trailing letters (e.g. "1.0.1h" vs
					// "1.0.1g"): order them alphabetically.
					return sign(strings.Compare(sufA.label, sufB.label))
				}
				if r := suffixRank(sufA.label) - suffixRank(sufB.label); r != 0 {
					return sign(r)
				}
				return sign(sufA.number - sufB.number)
			case sufA.present:
				return -1
			default:
				return 1
			}
		}

		if !hasA {
			return -1
		}
		if !hasB {
			return 1
		}
		if numA != numB {
			return sign(numA - numB)
		}
	}

	if len(partsA) != len(partsB) {
		return sign(len(partsA) - len(partsB))
	}
	return 0
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

// Operator is one of the six relational operators accepted in
// Requires-class tokens and CLI constraint triples.
type Operator string

const (
	OpLT Operator = "<"
	OpLE Operator = "<="
	OpEQ Operator = "="
	OpNE Operator = "!="
	OpGE Operator = ">="
	OpGT Operator = ">"
)

// Satisfies evaluates "installed OP required" using Compare.
func Satisfies(installed string, op Operator, required string) bool {
	c := Compare(installed, required)
	switch op {
	case OpLT:
		return c < 0
	case OpLE:
		return c <= 0
	case OpEQ:
		return c == 0
	case OpNE:
		return c != 0
	case OpGE:
		return c >= 0
	case OpGT:
		return c > 0
	default:
		return false
	}
}

// AtLeastMajorMinor implements the special self-version comparison used
// by --atleast-pkgconfig-version: the major and minor components of
// want must each be satisfied independently by the corresponding
// component of have; components after the minor one are ignored.
func AtLeastMajorMinor(have, want string) bool {
	haveParts := strings.Split(have, ".")
	wantParts := strings.Split(want, ".")

	for i, wp := range wantParts {
		if i >= 2 {
			break
		}
		if i >= len(haveParts) {
			return false
		}
		if atoi(haveParts[i]) < atoi(wp) {
			return false
		}
	}
	return true
}
