// Package jcamp parses Bruker ParaVision parameter files (acqp, method),
// a JCAMP-DX dialect. Private parameters look like
//
//	##$NECHOES=1
//	##$ACQ_size=( 2 )
//	128 128
//	##$ACQ_ReceiverSelect=( 4 )
//	Yes Yes No No
//	##$ACQ_word_size=_32_BIT
//	##$ACQ_method=<Bruker:FLASH>
//
// Array parameters declare their extent in parentheses and carry the
// payload on the following lines, up to the next "##" entry. Lines starting
// with "$$" are timestamps/comments and are skipped.
package jcamp

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Value is one parameter value, kept as raw text and converted on demand.
// Conversion accessors report whether the text had the requested form, so
// callers can distinguish a missing parameter from a malformed one.
type Value struct {
	raw string
}

// Params is a parsed parameter file: a map from parameter name (without the
// "##$" prefix) to its value.
type Params struct {
	values map[string]Value
}

// Parse reads a ParaVision parameter file from r.
func Parse(r io.Reader) (*Params, error) {
	p := &Params{values: make(map[string]Value)}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var name string
	var payload []string
	flush := func() {
		if name != "" {
			p.values[name] = Value{raw: strings.TrimSpace(strings.Join(payload, " "))}
			name = ""
			payload = nil
		}
	}

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		switch {
		case text == "" || strings.HasPrefix(text, "$$"):
			continue
		case strings.HasPrefix(text, "##"):
			flush()
			if text == "##END=" || strings.HasPrefix(text, "##END") {
				continue
			}
			// Only private (##$) parameters are interesting; standard
			// JCAMP labels like ##TITLE are kept too, they cost nothing.
			body := strings.TrimPrefix(text, "##")
			body = strings.TrimPrefix(body, "$")
			eq := strings.Index(body, "=")
			if eq < 0 {
				return nil, fmt.Errorf("jcamp: line %d: parameter without '=': %q", line, text)
			}
			name = body[:eq]
			value := strings.TrimSpace(body[eq+1:])
			if strings.HasPrefix(value, "(") {
				// Array declaration: the sizes in parentheses describe the
				// payload layout; the values follow on subsequent lines.
				if !strings.Contains(value, ")") {
					return nil, fmt.Errorf("jcamp: line %d: unterminated size declaration for %s", line, name)
				}
				rest := strings.TrimSpace(value[strings.Index(value, ")")+1:])
				if rest != "" {
					payload = append(payload, rest)
				}
			} else {
				payload = append(payload, value)
			}
		default:
			if name == "" {
				continue
			}
			payload = append(payload, text)
		}
	}
	flush()
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("jcamp: %w", err)
	}
	return p, nil
}

// ParseFile reads and parses a parameter file from disk.
func ParseFile(path string) (*Params, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the CLI
	if err != nil {
		return nil, fmt.Errorf("jcamp: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Parse(f)
}

// Get looks up a parameter by name (without the "##$" prefix).
func (p *Params) Get(name string) (Value, bool) {
	v, ok := p.values[name]
	return v, ok
}

// Names returns the number of parsed parameters.
func (p *Params) Len() int {
	return len(p.values)
}

// String returns the raw value text. Angle-bracketed string values keep
// their brackets; use Text for the unwrapped form.
func (v Value) String() string {
	return v.raw
}

// Text returns the value with one layer of ParaVision angle brackets
// removed, e.g. "<Bruker:FLASH>" becomes "Bruker:FLASH".
func (v Value) Text() string {
	s := v.raw
	if strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">") {
		return s[1 : len(s)-1]
	}
	return s
}

// Int converts a scalar integer value.
func (v Value) Int() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(v.raw))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Ints converts an integer sequence. A scalar integer converts to a
// one-element slice.
func (v Value) Ints() ([]int, bool) {
	fields := strings.Fields(v.raw)
	if len(fields) == 0 {
		return nil, false
	}
	out := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}

// Bools converts a Yes/No sequence.
func (v Value) Bools() ([]bool, bool) {
	fields := strings.Fields(v.raw)
	if len(fields) == 0 {
		return nil, false
	}
	out := make([]bool, len(fields))
	for i, f := range fields {
		switch f {
		case "Yes":
			out[i] = true
		case "No":
			out[i] = false
		default:
			return nil, false
		}
	}
	return out, true
}
