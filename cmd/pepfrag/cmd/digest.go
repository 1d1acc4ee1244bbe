package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/ChrisMcGann/pepfrag/pkg/core"
	"github.com/ChrisMcGann/pepfrag/pkg/enzyme"
	"github.com/ChrisMcGann/pepfrag/pkg/filter"
	"github.com/ChrisMcGann/pepfrag/pkg/reader/fasta"
	"github.com/ChrisMcGann/pepfrag/pkg/writer/sqlite"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

var (
	// Flags for digest command
	digestInput  string
	digestOutput string
	chunkSize    int
)

const defaultChunkSize = 1000

func newDigestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digest [sequence...]",
		Short: "Digest protein sequences into peptides",
		Long: `Digest protein sequences with a named cleavage rule, allowing up to
N missed cleavages. Sequences come from the arguments or a FASTA file.

Examples:
  # Tryptic peptides of one sequence
  pepfrag digest MIVIGRSIVHPYITNEYEPFAAEK

  # Whole FASTA database with one missed cleavage, 4 workers, into SQLite
  pepfrag digest --in proteome.fasta --missed 1 --threads 4 --out peptides.db`,
		RunE: runDigest,
	}

	flags := cmd.Flags()
	flags.StringVarP(&digestInput, "in", "i", "", "FASTA input file ('-' for stdin)")
	flags.StringVarP(&digestOutput, "out", "o", "", "Write results to this SQLite database")
	flags.IntVar(&chunkSize, "chunk-size", defaultChunkSize, "Records digested per batch")

	flags.StringP("enzyme", "e", defaultEnzyme, "Cleavage rule name")
	bindFlagToConfig(flags.Lookup("enzyme"), enzymeKey)
	flags.IntP("missed", "m", 0, "Maximum missed cleavages")
	bindFlagToConfig(flags.Lookup("missed"), missedKey)
	flags.Int("min-length", 0, "Drop peptides shorter than this (0 = no minimum)")
	bindFlagToConfig(flags.Lookup("min-length"), minLengthKey)
	flags.Int("max-length", 0, "Drop peptides longer than this (0 = no maximum)")
	bindFlagToConfig(flags.Lookup("max-length"), maxLengthKey)
	flags.Bool("strip-whitespace", true, "Remove whitespace from sequences before digestion")
	bindFlagToConfig(flags.Lookup("strip-whitespace"), stripWhitespaceKey)
	flags.IntP("threads", "t", defaultThreads, "Number of worker threads")
	bindFlagToConfig(flags.Lookup("threads"), threadsKey)

	return cmd
}

// recordSource is satisfied by fasta.Reader
type recordSource interface {
	Next() bool
	Record() *fasta.Record
	Err() error
}

// argSource serves command-line sequences as records
type argSource struct {
	records []*fasta.Record
	pos     int
}

func newArgSource(args []string) *argSource {
	src := &argSource{pos: -1}
	for i, seq := range args {
		src.records = append(src.records, &fasta.Record{
			Header:   "seq" + strconv.Itoa(i+1),
			Sequence: filter.StripFastaHeader(seq),
		})
	}
	return src
}

func (s *argSource) Next() bool {
	s.pos++
	return s.pos < len(s.records)
}

func (s *argSource) Record() *fasta.Record { return s.records[s.pos] }

func (s *argSource) Err() error { return nil }

// digestSettings are the resolved digest options
type digestSettings struct {
	rule      *enzyme.Rule
	maxMisses int
	strip     bool
	filter    filter.Config
	table     *core.ResidueTable
	src       core.MassSource
}

// digestResult is the digestion of one record
type digestResult struct {
	record   *fasta.Record
	sequence string
	peptides []enzyme.Peptide
	masses   []float64
}

func digestRecord(rec *fasta.Record, s *digestSettings) digestResult {
	seq := filter.Normalize(rec.Sequence, s.strip)
	if seq == "" {
		return digestResult{record: rec}
	}
	peptides := s.filter.Apply(s.rule.Peptides(seq, s.maxMisses))

	masses := make([]float64, len(peptides))
	for i, p := range peptides {
		masses[i] = core.NeutralMass(p.Sequence, s.table, s.src)
	}

	return digestResult{record: rec, sequence: seq, peptides: peptides, masses: masses}
}

// digestChunk digests records concurrently; results keep input order
func digestChunk(ctx context.Context, records []*fasta.Record, s *digestSettings, threads int) ([]digestResult, error) {
	results := make([]digestResult, len(records))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(max(threads, 1))

	for i, rec := range records {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			results[i] = digestRecord(rec, s)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// digestSink receives results in input order
type digestSink interface {
	add(res digestResult) error
	close() error
}

// reportSink collects rows for table, tsv or yaml output
type reportSink struct {
	w      io.Writer
	format string
	rep    report
	docs   []digestDoc
	count  int
}

type digestDoc struct {
	Protein  string       `yaml:"protein"`
	Length   int          `yaml:"length"`
	Peptides []peptideDoc `yaml:"peptides"`
}

type peptideDoc struct {
	Sequence        string  `yaml:"sequence"`
	Start           int     `yaml:"start"`
	End             int     `yaml:"end"`
	MissedCleavages int     `yaml:"missed_cleavages"`
	NeutralMass     float64 `yaml:"neutral_mass"`
}

func newReportSink(w io.Writer, format string) *reportSink {
	return &reportSink{
		w:      w,
		format: format,
		rep: report{
			header: []string{"Protein", "Peptide", "Start", "End", "Missed", "Mass"},
		},
	}
}

func (s *reportSink) add(res digestResult) error {
	doc := digestDoc{Protein: res.record.ID(), Length: len(res.sequence)}
	for i, p := range res.peptides {
		s.rep.append(
			res.record.ID(),
			p.Sequence,
			strconv.Itoa(p.Start),
			strconv.Itoa(p.End),
			strconv.Itoa(p.MissedCleavages),
			formatMass(res.masses[i]),
		)
		doc.Peptides = append(doc.Peptides, peptideDoc{
			Sequence:        p.Sequence,
			Start:           p.Start,
			End:             p.End,
			MissedCleavages: p.MissedCleavages,
			NeutralMass:     res.masses[i],
		})
	}
	s.docs = append(s.docs, doc)
	s.count += len(res.peptides)
	return nil
}

func (s *reportSink) close() error {
	s.rep.doc = s.docs
	s.rep.footer = []string{fmt.Sprintf("%d proteins", len(s.docs)), fmt.Sprintf("%d peptides", s.count), "", "", "", ""}
	return s.rep.render(s.w, s.format)
}

// storeSink writes results to a SQLite database
type storeSink struct {
	writer   *sqlite.Writer
	proteins int
	peptides int
}

func (s *storeSink) add(res digestResult) error {
	proteinID, err := s.writer.WriteProtein(res.record.ID(), res.record.Header, len(res.sequence))
	if err != nil {
		return err
	}
	for i, p := range res.peptides {
		if err := s.writer.WritePeptide(proteinID, p, res.masses[i]); err != nil {
			return err
		}
	}
	s.proteins++
	s.peptides += len(res.peptides)
	return nil
}

func (s *storeSink) close() error {
	return s.writer.Finalize()
}

func runDigest(cmd *cobra.Command, args []string) error {
	if digestInput == "" && len(args) == 0 {
		return fmt.Errorf("no input: give sequences as arguments or use --in")
	}
	if digestInput != "" && len(args) > 0 {
		return fmt.Errorf("sequence arguments cannot be combined with --in")
	}

	lib, err := loadEnzymeLibrary()
	if err != nil {
		return err
	}
	rule, err := lookupRule(lib, viper.GetString(enzymeKey))
	if err != nil {
		return err
	}
	src, table, err := massSource()
	if err != nil {
		return err
	}

	settings := &digestSettings{
		rule:      rule,
		maxMisses: max(viper.GetInt(missedKey), 0),
		strip:     viper.GetBool(stripWhitespaceKey),
		filter: filter.Config{
			MinLength: viper.GetInt(minLengthKey),
			MaxLength: viper.GetInt(maxLengthKey),
		},
		table: table,
		src:   src,
	}
	threads := viper.GetInt(threadsKey)

	var source recordSource
	switch digestInput {
	case "":
		source = newArgSource(args)
	case "-":
		source = fasta.NewReader(cmd.InOrStdin())
	default:
		inFile, err := os.Open(digestInput)
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer inFile.Close()
		source = fasta.NewReader(inFile)
	}

	var sink digestSink
	var store *storeSink
	if digestOutput != "" {
		writer, err := sqlite.NewWriter(digestOutput, sqlite.RunInfo{
			Command:         "digest",
			Enzyme:          rule.Name(),
			MissedCleavages: settings.maxMisses,
			MassSource:      viper.GetString(massSourceKey),
			Version:         version,
		})
		if err != nil {
			return fmt.Errorf("failed to create output database: %w", err)
		}
		defer writer.Close()
		store = &storeSink{writer: writer}
		sink = store
	} else {
		sink = newReportSink(cmd.OutOrStdout(), viper.GetString(formatKey))
	}

	slog.Info("digest started",
		"enzyme", rule.Name(),
		"missed", settings.maxMisses,
		"threads", threads,
		"input", digestInput)

	records := 0
	batch := make([]*fasta.Record, 0, max(chunkSize, 1))
	flush := func() error {
		results, err := digestChunk(cmd.Context(), batch, settings, threads)
		if err != nil {
			return err
		}
		for _, res := range results {
			if len(res.sequence) == 0 {
				slog.Warn("empty sequence", "protein", res.record.ID(), "line", res.record.Line)
			}
			if err := sink.add(res); err != nil {
				return err
			}
		}
		records += len(batch)
		slog.Debug("batch digested", "records", records)
		batch = batch[:0]
		return nil
	}

	for source.Next() {
		batch = append(batch, source.Record())
		if len(batch) >= cap(batch) {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := source.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}
	if len(batch) > 0 {
		if err := flush(); err != nil {
			return err
		}
	}

	if err := sink.close(); err != nil {
		return fmt.Errorf("failed to finalize output: %w", err)
	}

	slog.Info("digest complete", "records", records)
	if store != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Digested %d proteins into %d peptides\nOutput: %s\n", store.proteins, store.peptides, digestOutput)
	}
	return nil
}
