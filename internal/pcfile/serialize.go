package pcfile

import (
	"fmt"
	"io"
	"strings"
)

// Serialize writes the model back out in the canonical .pc textual form:
// all variables in insertion order as "NAME=VALUE" lines, a blank
// separator, then all properties in insertion order as "NAME: v1 v2 …".
// Libs and Libs.private are written with a single leading space and
// (already, per AddProperty) deduplicated tokens. Parsing the output
// again yields a structurally equivalent model.
func (p *PkgConfig) Serialize(w io.Writer) error {
	for _, v := range p.variables {
		if _, err := fmt.Fprintf(w, "%s=%s\n", v.name, v.value); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	for _, prop := range p.properties {
		if _, err := fmt.Fprintf(w, "%s:", prop.name); err != nil {
			return err
		}
		for _, tok := range prop.tokens {
			if _, err := fmt.Fprintf(w, " %s", tok); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

// String renders Serialize's output as a string, for tests and diagnostics.
func (p *PkgConfig) String() string {
	var b strings.Builder
	_ = p.Serialize(&b)
	return b.String()
}
