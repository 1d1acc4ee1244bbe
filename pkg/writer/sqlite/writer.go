// Package sqlite provides SQLite database writing for digestion and fragmentation results
package sqlite

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/ChrisMcGann/pepfrag/pkg/core"
	"github.com/ChrisMcGann/pepfrag/pkg/enzyme"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Date format for RunTable (ISO 8601)
const runDateFormat = "2006-01-02T15:04:05Z07:00"

// RunInfo describes the command that produced the rows of one run.
type RunInfo struct {
	Command         string // digest or fragment
	Enzyme          string
	MissedCleavages int
	MassSource      string
	Version         string
}

// Writer handles writing results to SQLite database files
type Writer struct {
	db           *sql.DB
	outputPath   string
	runID        string
	proteinStmt  *sql.Stmt
	peptideStmt  *sql.Stmt
	spectrumStmt *sql.Stmt
	fragmentStmt *sql.Stmt
	closed       bool
}

// NewWriter creates a new SQLite writer and records the run
func NewWriter(outputPath string, run RunInfo) (*Writer, error) {
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{
		db:         db,
		outputPath: outputPath,
		runID:      uuid.NewString(),
	}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	if err := w.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	_, err = db.Exec(`
		INSERT INTO RunTable (RunId, CreationDate, Command, Enzyme, MissedCleavages, MassSource, Version)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, w.runID, time.Now().UTC().Format(runDateFormat), run.Command, run.Enzyme, run.MissedCleavages, run.MassSource, run.Version)
	if err != nil {
		w.closeStatements()
		db.Close()
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}

	return w, nil
}

// RunID returns the identifier stored with every row of this run
func (w *Writer) RunID() string {
	return w.runID
}

// createTables creates the required database schema
func (w *Writer) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS RunTable (
		RunId TEXT PRIMARY KEY,
		CreationDate TEXT,
		Command TEXT,
		Enzyme TEXT,
		MissedCleavages INTEGER,
		MassSource TEXT,
		Version TEXT
	);

	CREATE TABLE IF NOT EXISTS ProteinTable (
		ProteinId INTEGER PRIMARY KEY AUTOINCREMENT,
		RunId TEXT REFERENCES RunTable(RunId),
		Accession TEXT,
		Header TEXT,
		Length INTEGER
	);

	CREATE TABLE IF NOT EXISTS PeptideTable (
		PeptideId INTEGER PRIMARY KEY AUTOINCREMENT,
		ProteinId INTEGER REFERENCES ProteinTable(ProteinId),
		Sequence TEXT,
		StartPos INTEGER,
		EndPos INTEGER,
		MissedCleavages INTEGER,
		NeutralMass DOUBLE
	);

	CREATE TABLE IF NOT EXISTS SpectrumTable (
		SpectrumId INTEGER PRIMARY KEY AUTOINCREMENT,
		RunId TEXT REFERENCES RunTable(RunId),
		Sequence TEXT,
		Charge INTEGER,
		PrecursorMass DOUBLE,
		NTerm TEXT,
		CTerm TEXT,
		Modifications TEXT,
		ModMass DOUBLE,
		blobMass BLOB
	);

	CREATE TABLE IF NOT EXISTS FragmentTable (
		FragmentId INTEGER PRIMARY KEY AUTOINCREMENT,
		SpectrumId INTEGER REFERENCES SpectrumTable(SpectrumId),
		Ion TEXT,
		Position INTEGER,
		Charge INTEGER,
		MZ DOUBLE,
		Annotation TEXT,
		Diagnostic BOOL
	);

	CREATE INDEX IF NOT EXISTS PeptideSequenceIdx ON PeptideTable(Sequence);
	`

	_, err := w.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// prepareStatements prepares SQL statements for repeated insertion
func (w *Writer) prepareStatements() error {
	var err error

	w.proteinStmt, err = w.db.Prepare(`
		INSERT INTO ProteinTable (RunId, Accession, Header, Length) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare protein statement: %w", err)
	}

	w.peptideStmt, err = w.db.Prepare(`
		INSERT INTO PeptideTable (ProteinId, Sequence, StartPos, EndPos, MissedCleavages, NeutralMass)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare peptide statement: %w", err)
	}

	w.spectrumStmt, err = w.db.Prepare(`
		INSERT INTO SpectrumTable (RunId, Sequence, Charge, PrecursorMass, NTerm, CTerm, Modifications, ModMass, blobMass)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare spectrum statement: %w", err)
	}

	w.fragmentStmt, err = w.db.Prepare(`
		INSERT INTO FragmentTable (SpectrumId, Ion, Position, Charge, MZ, Annotation, Diagnostic)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare fragment statement: %w", err)
	}

	return nil
}

// WriteProtein records a digested protein and returns its row id
func (w *Writer) WriteProtein(accession, header string, length int) (int64, error) {
	res, err := w.proteinStmt.Exec(w.runID, accession, header, length)
	if err != nil {
		return 0, fmt.Errorf("failed to insert protein %s: %w", accession, err)
	}
	return res.LastInsertId()
}

// WritePeptide records one digestion product of a protein
func (w *Writer) WritePeptide(proteinID int64, p enzyme.Peptide, neutralMass float64) error {
	_, err := w.peptideStmt.Exec(proteinID, p.Sequence, p.Start, p.End, p.MissedCleavages, neutralMass)
	if err != nil {
		return fmt.Errorf("failed to insert peptide %s: %w", p.Sequence, err)
	}
	return nil
}

// WriteSpectrum writes a theoretical spectrum and its fragment ions
func (w *Writer) WriteSpectrum(spec *core.Spectrum) error {
	// Ensure peaks are sorted
	if !spec.ArePeaksSorted() {
		spec.SortPeaks()
	}

	res, err := w.spectrumStmt.Exec(
		w.runID,
		spec.Sequence,
		spec.Charge,
		spec.PrecursorMZ,
		spec.NTerm,
		spec.CTerm,
		spec.ModString(),
		spec.TotalModMass(),
		encodePeaksFloat64(spec.Peaks),
	)
	if err != nil {
		return fmt.Errorf("failed to insert spectrum %s: %w", spec.Name(), err)
	}

	spectrumID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read spectrum id: %w", err)
	}

	for _, peak := range spec.Peaks {
		_, err := w.fragmentStmt.Exec(
			spectrumID,
			peak.Ion,
			peak.Position,
			peak.Charge,
			peak.MZ,
			peak.Annotation,
			peak.Diagnostic,
		)
		if err != nil {
			return fmt.Errorf("failed to insert fragment %s: %w", peak.Annotation, err)
		}
	}

	return nil
}

// encodePeaksFloat64 encodes peak m/z values as a little-endian float64 blob
func encodePeaksFloat64(peaks []core.Peak) []byte {
	buf := make([]byte, len(peaks)*8)
	for i, peak := range peaks {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(peak.MZ))
	}
	return buf
}

// DecodePeaksFloat64 reverses the blobMass encoding
func DecodePeaksFloat64(blob []byte) []float64 {
	values := make([]float64, len(blob)/8)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[i*8:]))
	}
	return values
}

func (w *Writer) closeStatements() {
	for _, stmt := range []*sql.Stmt{w.proteinStmt, w.peptideStmt, w.spectrumStmt, w.fragmentStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}
}

// Finalize closes prepared statements and the database. Calling it again is a no-op.
func (w *Writer) Finalize() error {
	if w.closed {
		return nil
	}
	w.closed = true

	w.closeStatements()

	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

// Close closes the database connection (alias for Finalize)
func (w *Writer) Close() error {
	return w.Finalize()
}
