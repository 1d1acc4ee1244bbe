package core

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ModDatabase stores modification definitions
type ModDatabase struct {
	mods map[string]float64 // name -> mass shift
}

// NewModDatabase creates an empty modification database
func NewModDatabase() *ModDatabase {
	return &ModDatabase{
		mods: make(map[string]float64),
	}
}

// LoadFromCSV loads modifications from a CSV file (format: mod,massshift[,aa]).
// The first line is a header; lines starting with '#' are comments.
func (db *ModDatabase) LoadFromCSV(r io.Reader) error {
	scanner := bufio.NewScanner(r)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if lineNum == 1 {
			continue
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, massStr, ok := strings.Cut(line, ",")
		if !ok {
			return fmt.Errorf("line %d: invalid format, expected at least 2 comma-separated fields", lineNum)
		}
		massStr, _, _ = strings.Cut(massStr, ",")

		name = strings.TrimSpace(name)
		massStr = strings.TrimSpace(massStr)
		if name == "" {
			return fmt.Errorf("line %d: empty modification name", lineNum)
		}

		mass, err := strconv.ParseFloat(massStr, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid mass value '%s': %w", lineNum, massStr, err)
		}

		db.mods[name] = mass
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading CSV: %w", err)
	}

	return nil
}

// GetMass returns the mass shift for a modification name
func (db *ModDatabase) GetMass(name string) (float64, bool) {
	mass, ok := db.mods[name]
	return mass, ok
}

// Add adds or updates a modification
func (db *ModDatabase) Add(name string, mass float64) {
	db.mods[name] = mass
}

// Resolve turns a modification token into a mass shift. The token may be
// a plain number ("15.9949"), a known modification name ("Oxidation") or a
// chemical formula ("H2O", "-NH3") evaluated under src.
func (db *ModDatabase) Resolve(token string, src MassSource) (float64, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, nil
	}

	if mass, err := strconv.ParseFloat(token, 64); err == nil {
		return mass, nil
	}

	if mass, ok := db.GetMass(token); ok {
		return mass, nil
	}

	mass, err := FormulaMass(token, src)
	if err != nil {
		return 0, fmt.Errorf("unknown modification '%s': %w", token, err)
	}
	return mass, nil
}

// Len returns the number of known modifications
func (db *ModDatabase) Len() int {
	return len(db.mods)
}

// DefaultModDatabase returns a ModDatabase pre-loaded with common modifications
func DefaultModDatabase() *ModDatabase {
	db := NewModDatabase()

	// Common modifications from unimod (monoisotopic)
	db.Add("Acetyl", 42.010565)
	db.Add("Amidated", -0.984016)
	db.Add("Biotin", 226.077598)
	db.Add("Carbamidomethyl", 57.021464)
	db.Add("Carbamyl", 43.005814)
	db.Add("Carboxymethyl", 58.005479)
	db.Add("Deamidated", 0.984016)
	db.Add("Met->Hse", -29.992806)
	db.Add("Met->Hsl", -48.003371)
	db.Add("NIPCAM", 99.068414)
	db.Add("Phospho", 79.966331)
	db.Add("Dehydrated", -18.010565)
	db.Add("Propionamide", 71.037114)
	db.Add("Pyro-carbamidomethyl", 39.994915)
	db.Add("Glu->pyro-Glu", -18.010565)
	db.Add("Gln->pyro-Glu", -17.026549)
	db.Add("Cation:Na", 21.981943)
	db.Add("Methyl", 14.01565)
	db.Add("Oxidation", 15.994915)
	db.Add("Dimethyl", 28.0313)
	db.Add("Trimethyl", 42.04695)
	db.Add("Methylthio", 45.987721)
	db.Add("Sulfo", 79.956815)
	db.Add("Hex", 162.052824)
	db.Add("Lipoyl", 188.032956)
	db.Add("HexNAc", 203.079373)
	db.Add("Farnesyl", 204.187801)
	db.Add("Myristoyl", 210.198366)
	db.Add("PyridoxalPhosphate", 229.014009)
	db.Add("Palmitoyl", 238.229666)
	db.Add("GeranylGeranyl", 272.250401)
	db.Add("Phosphopantetheine", 340.085794)
	db.Add("FAD", 783.141486)
	db.Add("Guanidinyl", 42.021798)
	db.Add("HNE", 156.11503)
	db.Add("Glucuronyl", 176.032088)
	db.Add("Glutathione", 305.068156)
	db.Add("Propionyl", 56.026215)
	db.Add("TMT", 229.162932)
	db.Add("TMTPro", 304.207146)
	db.Add("TMT6plex", 229.162932)
	db.Add("TMT10plex", 229.162932)
	db.Add("TMT11plex", 229.162932)
	db.Add("TMT16plex", 304.207146)
	db.Add("iTRAQ4plex", 144.102063)
	db.Add("iTRAQ8plex", 304.205360)

	return db
}
