package trace

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// A ParseError reports a malformed log line and where it was found.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// A Reader streams records out of a memory access log, in log order. Blank
// lines are skipped.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader creates a Reader that consumes the given log.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	return &Reader{scanner: scanner}
}

// Next returns the next record of the log. It returns io.EOF after the last
// record and a *ParseError for a malformed line; after a *ParseError the
// Reader stays usable and Next moves on to the following line.
func (r *Reader) Next() (Record, error) {
	for r.scanner.Scan() {
		r.line++

		text := strings.TrimSpace(r.scanner.Text())
		if text == "" {
			continue
		}

		record, err := ParseRecord(text)
		if err != nil {
			return Record{}, &ParseError{Line: r.line, Err: err}
		}

		return record, nil
	}

	if err := r.scanner.Err(); err != nil {
		return Record{}, err
	}

	return Record{}, io.EOF
}
