package trace

import (
	"bufio"
	"io"
)

// Reader reads the data accesses of a Valgrind trace.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader creates a Reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		scanner: bufio.NewScanner(r),
	}
}

// Next returns the next data access. It returns io.EOF at the end of the
// trace and a *ParseError for malformed lines.
func (r *Reader) Next() (Instruction, error) {
	for r.scanner.Scan() {
		r.line++
		text := r.scanner.Text()

		ins, ok, err := ParseLine(text)
		if err != nil {
			return Instruction{}, &ParseError{Line: r.line, Text: text, Err: err}
		}

		if ok {
			return ins, nil
		}
	}

	if err := r.scanner.Err(); err != nil {
		return Instruction{}, err
	}

	return Instruction{}, io.EOF
}
