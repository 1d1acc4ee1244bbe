package cmd

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/pepfrag/pkg/core"
	"github.com/ChrisMcGann/pepfrag/pkg/filter"
	"github.com/ChrisMcGann/pepfrag/pkg/fragment"
	"github.com/ChrisMcGann/pepfrag/pkg/writer/sqlite"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Flags for fragment command
	precursorCharge int
	fragmentOutput  string
	diagnosticMasks []string
)

func newFragmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fragment sequence...",
		Short: "Compute theoretical fragment ion series",
		Long: `Compute fragment ion series for peptides. A series is an ion type
followed by '+' or '-' signs for its charge and an optional modification
(a mass, a modification name or a chemical formula), for example
"b", "y++", "a- H2O" or "y Phospho".

Ion types: ` + ionTypeList() + `

Examples:
  # b and y ions of a peptide
  pepfrag fragment TVQQEL

  # Doubly charged y ions with a water loss, written to SQLite
  pepfrag fragment TVQQEL --series "y++,y -H2O" --charge 2 --out spectra.db

  # Mark y1 and y2 as diagnostic
  pepfrag fragment TVQQEL --series y --diagnostic "y=4,5"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runFragment,
	}

	flags := cmd.Flags()
	flags.IntVarP(&precursorCharge, "charge", "z", 1, "Precursor charge")
	flags.StringVarP(&fragmentOutput, "out", "o", "", "Write spectra to this SQLite database")
	flags.StringArrayVar(&diagnosticMasks, "diagnostic", nil, "Mark series entries as diagnostic: 'ion[ modification]=index,...' (repeatable)")

	flags.StringSliceP("series", "s", defaultSeries, "Comma-separated ion series")
	bindFlagToConfig(flags.Lookup("series"), seriesKey)
	flags.String("nterm", "H", "N-terminal group (formula, mass or modification name)")
	bindFlagToConfig(flags.Lookup("nterm"), ntermKey)
	flags.String("cterm", "OH", "C-terminal group (formula, mass or modification name)")
	bindFlagToConfig(flags.Lookup("cterm"), ctermKey)

	return cmd
}

func ionTypeList() string {
	names := make([]string, 0, len(fragment.IonTypes()))
	for _, ion := range fragment.IonTypes() {
		names = append(names, ion.String())
	}
	return strings.Join(names, ", ")
}

// parseSeriesList parses series requests, skipping empty entries
func parseSeriesList(values []string) ([]fragment.SeriesSpec, error) {
	specs := make([]fragment.SeriesSpec, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		spec, err := fragment.ParseSeriesSpec(v)
		if err != nil {
			return nil, fmt.Errorf("invalid series '%s': %w", v, err)
		}
		specs = append(specs, spec)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("no ion series requested")
	}
	return specs, nil
}

// parseMask parses "ion[ modification]=i,j,..." into a mask option
func parseMask(value string) (fragment.Option, error) {
	lhs, rhs, ok := strings.Cut(value, "=")
	if !ok {
		return nil, fmt.Errorf("invalid diagnostic mask '%s': expected ion=index,...", value)
	}

	spec, err := fragment.ParseSeriesSpec(lhs)
	if err != nil {
		return nil, fmt.Errorf("invalid diagnostic mask '%s': %w", value, err)
	}

	var indices []int
	for _, field := range strings.Split(rhs, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		idx, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid index '%s' in diagnostic mask '%s'", field, value)
		}
		indices = append(indices, idx)
	}

	return fragment.WithMask(spec.Ion, spec.Modification, indices...), nil
}

type spectrumDoc struct {
	Sequence  string    `yaml:"sequence"`
	Charge    int       `yaml:"charge"`
	Precursor float64   `yaml:"precursor_mz"`
	Peaks     []peakDoc `yaml:"peaks"`
}

type peakDoc struct {
	Ion        string  `yaml:"ion"`
	Number     int     `yaml:"number"`
	Charge     int     `yaml:"charge"`
	MZ         float64 `yaml:"mz"`
	Diagnostic bool    `yaml:"diagnostic,omitempty"`
}

func runFragment(cmd *cobra.Command, args []string) error {
	if precursorCharge == 0 {
		return fragment.ErrZeroCharge
	}

	specs, err := parseSeriesList(viper.GetStringSlice(seriesKey))
	if err != nil {
		return err
	}

	src, table, err := massSource()
	if err != nil {
		return err
	}
	modDB, err := loadModDatabase()
	if err != nil {
		return err
	}

	opts := []fragment.Option{
		fragment.WithTermini(viper.GetString(ntermKey), viper.GetString(ctermKey)),
		fragment.WithMassSource(src),
		fragment.WithResidueTable(table),
		fragment.WithModDatabase(modDB),
	}
	for _, m := range diagnosticMasks {
		opt, err := parseMask(m)
		if err != nil {
			return err
		}
		opts = append(opts, opt)
	}

	var writer *sqlite.Writer
	if fragmentOutput != "" {
		writer, err = sqlite.NewWriter(fragmentOutput, sqlite.RunInfo{
			Command:    "fragment",
			MassSource: viper.GetString(massSourceKey),
			Version:    version,
		})
		if err != nil {
			return fmt.Errorf("failed to create output database: %w", err)
		}
		defer writer.Close()
	}

	rep := report{header: []string{"Peptide", "Ion", "Number", "Charge", "m/z", "Diagnostic"}}
	var docs []spectrumDoc

	for _, arg := range args {
		seq := filter.Normalize(arg, true)

		sp, err := fragment.NewSpectrum(seq, opts...)
		if err != nil {
			return fmt.Errorf("peptide %s: %w", seq, err)
		}
		theoretical, err := sp.Theoretical(precursorCharge, specs)
		if err != nil {
			return fmt.Errorf("peptide %s: %w", seq, err)
		}
		if err := theoretical.Validate(); err != nil {
			return fmt.Errorf("peptide %s: %w", seq, err)
		}
		slog.Debug("spectrum computed", "peptide", theoretical.Name(), "peaks", len(theoretical.Peaks))

		if writer != nil {
			if err := writer.WriteSpectrum(theoretical); err != nil {
				return err
			}
			continue
		}

		doc := spectrumDoc{Sequence: seq, Charge: theoretical.Charge, Precursor: theoretical.PrecursorMZ}
		rep.append(seq, "precursor", strconv.Itoa(len(seq)), strconv.Itoa(theoretical.Charge), formatMass(theoretical.PrecursorMZ), "")
		for _, p := range theoretical.Peaks {
			rep.append(seq, p.Ion, strconv.Itoa(p.Position), strconv.Itoa(p.Charge), formatMass(p.MZ), diagnosticMark(p))
			doc.Peaks = append(doc.Peaks, peakDoc{
				Ion:        p.Ion,
				Number:     p.Position,
				Charge:     p.Charge,
				MZ:         p.MZ,
				Diagnostic: p.Diagnostic,
			})
		}
		docs = append(docs, doc)
	}

	slog.Info("fragment complete", "peptides", len(args), "series", len(specs))

	if writer != nil {
		if err := writer.Finalize(); err != nil {
			return fmt.Errorf("failed to finalize database: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d spectra\nOutput: %s\n", len(args), fragmentOutput)
		return nil
	}

	rep.doc = docs
	return rep.render(cmd.OutOrStdout(), viper.GetString(formatKey))
}

func diagnosticMark(p core.Peak) string {
	if p.Diagnostic {
		return "*"
	}
	return ""
}
