// Package fasta provides a streaming reader for FASTA protein databases
package fasta

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const maxLineSize = 16 * 1024 * 1024

// Record is one FASTA entry.
type Record struct {
	Header   string // Header line without the leading '>'
	Sequence string // Sequence lines joined without line breaks
	Line     int    // Line number of the header
}

// ID returns the first word of the header.
func (r *Record) ID() string {
	if i := strings.IndexAny(r.Header, " \t"); i >= 0 {
		return r.Header[:i]
	}
	return r.Header
}

// Reader provides streaming access to FASTA files
type Reader struct {
	scanner       *bufio.Scanner
	lineNum       int
	pending       string // header read while finishing the previous record
	pendingLine   int
	hasPending    bool
	currentRecord *Record
	err           error
}

// NewReader creates a new FASTA reader
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	return &Reader{scanner: scanner}
}

// Next advances to the next record. Returns false when no more records or error.
func (r *Reader) Next() bool {
	r.currentRecord = nil

	rec, err := r.readRecord()
	if err != nil {
		if err != io.EOF {
			r.err = err
		}
		return false
	}

	r.currentRecord = rec
	return true
}

// Record returns the current record
func (r *Reader) Record() *Record {
	return r.currentRecord
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

// readRecord reads lines up to the next header or end of input. Sequence
// text before the first header is rejected.
func (r *Reader) readRecord() (*Record, error) {
	var rec *Record
	if r.hasPending {
		rec = &Record{Header: r.pending, Line: r.pendingLine}
		r.hasPending = false
	}

	var seq strings.Builder
	for r.scanner.Scan() {
		r.lineNum++
		line := strings.TrimSpace(r.scanner.Text())

		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}

		if strings.HasPrefix(line, ">") {
			header := strings.TrimSpace(line[1:])
			if rec == nil {
				rec = &Record{Header: header, Line: r.lineNum}
				continue
			}
			r.pending = header
			r.pendingLine = r.lineNum
			r.hasPending = true
			rec.Sequence = seq.String()
			return rec, nil
		}

		if rec == nil {
			return nil, fmt.Errorf("line %d: sequence data before first header", r.lineNum)
		}
		seq.WriteString(line)
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}

	if rec == nil {
		return nil, io.EOF
	}
	rec.Sequence = seq.String()
	return rec, nil
}

// ReadAll reads every remaining record.
func (r *Reader) ReadAll() ([]*Record, error) {
	var records []*Record
	for r.Next() {
		records = append(records, r.Record())
	}
	return records, r.Err()
}
