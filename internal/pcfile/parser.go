package pcfile

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/matijaskala/pkgconfig-openbsd/internal/pcerr"
)

var (
	nameRe = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)

	// Operator patterns used to fuse a relational operator with its
	// neighboring name/version token: "foo", ">=", "1.2" -> "foo>=1.2".
	pureOperatorRe   = regexp.MustCompile(`^(<=|>=|!=|<|>|=)$`)
	trailingOperator = regexp.MustCompile(`(<=|>=|!=|<|>|=)$`)
	leadingOperator  = regexp.MustCompile(`^(<=|>=|!=|<|>|=)`)
)

// Load reads and parses a .pc file from disk.
func Load(path string) (*PkgConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pcerr.Wrap(pcerr.IO, "", err, "reading %s", path)
	}
	pc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	pc.Path = path
	return pc, nil
}

// Parse parses the contents of a .pc file into a value model. CRLF line
// endings are normalized to LF; a backslash immediately before a
// newline continues the logical line onto the next physical line.
func Parse(data []byte) (*PkgConfig, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	lines := splitLogicalLines(text)

	pc := New()
	for _, line := range lines {
		if err := parseLine(pc, line); err != nil {
			return nil, err
		}
	}
	return pc, nil
}

// splitLogicalLines joins backslash-continued physical lines and strips
// unescaped '#' comments, but leaves blank-line/comment-only detection
// to the caller (an all-comment logical line becomes "").
func splitLogicalLines(text string) []string {
	var logical []string
	var cur strings.Builder

	physical := strings.Split(text, "\n")
	for i := 0; i < len(physical); i++ {
		line := physical[i]
		// A trailing backslash (not itself escaped) continues the line.
		if n := countTrailingBackslashes(line); n%2 == 1 {
			cur.WriteString(line[:len(line)-1])
			continue
		}
		cur.WriteString(line)
		logical = append(logical, stripComment(cur.String()))
		cur.Reset()
	}
	if cur.Len() > 0 {
		logical = append(logical, stripComment(cur.String()))
	}
	return logical
}

func countTrailingBackslashes(s string) int {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\\'; i-- {
		n++
	}
	return n
}

// stripComment removes a '#' comment that is not preceded by a
// backslash, and leaves a leading-'#' comment line as empty.
func stripComment(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "#") {
		return ""
	}
	var out strings.Builder
	for i := 0; i < len(line); i++ {
		if line[i] == '#' && (i == 0 || line[i-1] != '\\') {
			break
		}
		out.WriteByte(line[i])
	}
	return out.String()
}

func parseLine(pc *PkgConfig, line string) error {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}

	if name, value, ok := splitAssignment(trimmed); ok {
		if !nameRe.MatchString(name) {
			return pcerr.New(pcerr.ParseError, "", fmt.Sprintf("invalid variable name %q", name))
		}
		value = stripQuotes(value)
		if dup := pc.AddVariable(name, value); dup {
			return pcerr.New(pcerr.ParseError, "", fmt.Sprintf("duplicate variable %q", name))
		}
		return nil
	}

	if name, value, ok := splitProperty(trimmed); ok {
		if !nameRe.MatchString(name) {
			return pcerr.New(pcerr.ParseError, "", fmt.Sprintf("invalid property name %q", name))
		}
		tokens := splitTokens(kindOf(name), value)
		if dup := pc.AddProperty(name, tokens); dup {
			return pcerr.New(pcerr.ParseError, "", fmt.Sprintf("duplicate property %q", name))
		}
		return nil
	}

	return pcerr.New(pcerr.ParseError, "", fmt.Sprintf("malformed line: %q", line))
}

// splitAssignment recognizes "NAME = VALUE", preferring the property
// form when both a ':' and an '=' could match ambiguously by requiring
// the '=' to appear before any ':'.
func splitAssignment(line string) (name, value string, ok bool) {
	eq := strings.IndexByte(line, '=')
	if eq < 0 {
		return "", "", false
	}
	if colon := strings.IndexByte(line, ':'); colon >= 0 && colon < eq {
		return "", "", false
	}
	return strings.TrimSpace(line[:eq]), strings.TrimSpace(line[eq+1:]), true
}

func splitProperty(line string) (name, value string, ok bool) {
	colon := strings.IndexByte(line, ':')
	if colon < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:colon]), strings.TrimSpace(line[colon+1:]), true
}

func stripQuotes(value string) string {
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		return value[1 : len(value)-1]
	}
	return value
}

// splitTokens applies a property's per-kind splitting rule to its raw
// value string.
func splitTokens(kind Kind, value string) []string {
	if value == "" {
		return nil
	}
	switch kind {
	case RequiresLike:
		return splitRequires(value)
	default:
		return splitWhitespace(value)
	}
}

// splitWhitespace splits on runs of unescaped whitespace, preserving
// backslash-escaped whitespace inside a token.
func splitWhitespace(value string) []string {
	var tokens []string
	var cur strings.Builder
	escaped := false
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch {
		case escaped:
			cur.WriteByte(c)
			escaped = false
		case c == '\\':
			cur.WriteByte(c)
			escaped = true
		case c == ' ' || c == '\t':
			if cur.Len() > 0 {
				tokens = append(tokens, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteByte(c)
		}
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens
}

// splitRequires splits on commas and/or whitespace, then fuses a
// relational operator with its neighboring package name and version so
// that "foo", ">=", "1.2" (however the whitespace fell) becomes the
// single token "foo>=1.2".
func splitRequires(value string) []string {
	raw := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})

	var fused []string
	i := 0
	for i < len(raw) {
		tok := raw[i]
		switch {
		case pureOperatorRe.MatchString(tok):
			// "foo", ">=", "1.2" -> fuse all three into the previous token.
			if len(fused) > 0 && i+1 < len(raw) {
				fused[len(fused)-1] += tok + raw[i+1]
				i += 2
				continue
			}
			fused = append(fused, tok)
			i++
		case trailingOperator.MatchString(tok) && !pureOperatorRe.MatchString(tok):
			// "foo>=", "1.2" -> "foo>=1.2"
			if i+1 < len(raw) {
				fused = append(fused, tok+raw[i+1])
				i += 2
				continue
			}
			fused = append(fused, tok)
			i++
		case leadingOperator.MatchString(tok) && len(fused) > 0:
			// "foo", ">=1.2" -> "foo>=1.2"
			fused[len(fused)-1] += tok
			i++
		default:
			fused = append(fused, tok)
			i++
		}
	}
	return fused
}
