package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/optix/internal/beam"
	"github.com/san-kum/optix/internal/optics"
)

const (
	metadataFile = "metadata.json"
	resultsFile  = "results.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type TwissRecord struct {
	Alpha     Float `json:"alpha"`
	Beta      Float `json:"beta"`
	Emittance Float `json:"emittance"`
}

type RunMetadata struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name"`
	Timestamp           time.Time      `json:"timestamp"`
	Gamma               float64        `json:"gamma"`
	Thresholds          optics.Config  `json:"thresholds"`
	PhaseAdvancePerCell [3]Float       `json:"phase_advance_per_cell"`
	Tune                [3]Float       `json:"tune"`
	PhaseAdvance        *[3]Float      `json:"phase_advance,omitempty"`
	Stable              [3]bool        `json:"stable"`
	Matched             [3]TwissRecord `json:"matched"`
	FixedPoint          [6]Float       `json:"fixed_point"`
	Chromatic           [6]Float       `json:"chromatic"`
	Dispersion          [4]Float       `json:"dispersion"`
}

// NewRunMetadata flattens a report into its stored form.
func NewRunMetadata(r optics.Report, thresholds optics.Config) RunMetadata {
	meta := RunMetadata{
		Name:       r.Name,
		Gamma:      r.Gamma,
		Thresholds: thresholds,
		Stable:     r.Stable,
	}
	for i := 0; i < 3; i++ {
		meta.PhaseAdvancePerCell[i] = Float(r.PhaseAdvancePerCell[i])
		meta.Tune[i] = Float(r.Tune[i])
		meta.Matched[i] = TwissRecord{
			Alpha:     Float(r.Matched[i].Alpha),
			Beta:      Float(r.Matched[i].Beta),
			Emittance: Float(r.Matched[i].Emittance),
		}
	}
	if r.PhaseAdvance != nil {
		var phi [3]Float
		for i, v := range r.PhaseAdvance {
			phi[i] = Float(v)
		}
		meta.PhaseAdvance = &phi
	}
	coords := r.FixedPoint.Coords()
	for i := range coords {
		meta.FixedPoint[i] = Float(coords[i])
		meta.Chromatic[i] = Float(r.Chromatic[i])
	}
	for i := range r.Dispersion {
		meta.Dispersion[i] = Float(r.Dispersion[i])
	}
	return meta
}

// Report rebuilds the engine report a run was saved from.
func (m *RunMetadata) Report() optics.Report {
	r := optics.Report{
		Name:   m.Name,
		Gamma:  m.Gamma,
		Stable: m.Stable,
	}
	for i := 0; i < 3; i++ {
		r.PhaseAdvancePerCell[i] = float64(m.PhaseAdvancePerCell[i])
		r.Tune[i] = float64(m.Tune[i])
		r.Matched[i] = beam.Twiss{
			Alpha:     float64(m.Matched[i].Alpha),
			Beta:      float64(m.Matched[i].Beta),
			Emittance: float64(m.Matched[i].Emittance),
		}
	}
	if m.PhaseAdvance != nil {
		var phi [3]float64
		for i, v := range m.PhaseAdvance {
			phi[i] = float64(v)
		}
		r.PhaseAdvance = &phi
	}
	var coords [6]float64
	for i := range coords {
		coords[i] = float64(m.FixedPoint[i])
		r.Chromatic[i] = float64(m.Chromatic[i])
	}
	r.FixedPoint = beam.NewPhaseVector(coords)
	for i := range r.Dispersion {
		r.Dispersion[i] = float64(m.Dispersion[i])
	}
	return r
}

// PlaneRow is one line of results.csv.
type PlaneRow struct {
	Plane        string
	PhaseAdvance float64
	Tune         float64
	Alpha        float64
	Beta         float64
	FixedPos     float64
	FixedAng     float64
	Dispersion   float64
	DispersionP  float64
}

var planeHeader = []string{
	"plane", "phase_advance", "tune", "alpha", "beta",
	"fixed_pos", "fixed_ang", "dispersion", "dispersion_p",
}

// PlaneRows splits a report per plane. The longitudinal plane carries no
// dispersion and reports NaN there.
func PlaneRows(r optics.Report) []PlaneRow {
	rows := make([]PlaneRow, 0, len(beam.Planes))
	for _, p := range beam.Planes {
		row := PlaneRow{
			Plane:        p.String(),
			PhaseAdvance: r.PhaseAdvancePerCell[p],
			Tune:         r.Tune[p],
			Alpha:        r.Matched[p].Alpha,
			Beta:         r.Matched[p].Beta,
			FixedPos:     r.FixedPoint[p.Pos()],
			FixedAng:     r.FixedPoint[p.Ang()],
			Dispersion:   math.NaN(),
			DispersionP:  math.NaN(),
		}
		if p != beam.Z {
			row.Dispersion = r.Dispersion[p.Pos()]
			row.DispersionP = r.Dispersion[p.Ang()]
		}
		rows = append(rows, row)
	}
	return rows
}

func runID(name string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '-'
		}
	}, name)
	if clean == "" {
		clean = "run"
	}
	return fmt.Sprintf("%s_%s", clean, uuid.NewString()[:8])
}

// Save writes a report under a fresh run directory and returns its ID.
func (s *Store) Save(r optics.Report, thresholds optics.Config) (string, error) {
	meta := NewRunMetadata(r, thresholds)
	meta.ID = runID(r.Name)
	meta.Timestamp = time.Now()

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	if err := ExportJSON(metaFile, &meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, resultsFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := writePlanes(csvFile, PlaneRows(r)); err != nil {
		return "", err
	}

	return meta.ID, nil
}

func writePlanes(out io.Writer, rows []PlaneRow) error {
	w := csv.NewWriter(out)
	if err := w.Write(planeHeader); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.Plane,
			formatFloat(row.PhaseAdvance),
			formatFloat(row.Tune),
			formatFloat(row.Alpha),
			formatFloat(row.Beta),
			formatFloat(row.FixedPos),
			formatFloat(row.FixedAng),
			formatFloat(row.Dispersion),
			formatFloat(row.DispersionP),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns stored runs, oldest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), metadataFile))
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadPlanes(runID string) ([]PlaneRow, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, resultsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(planeHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []PlaneRow{}, nil
	}

	rows := make([]PlaneRow, 0, len(records)-1)
	for i, record := range records[1:] {
		vals := make([]float64, len(record)-1)
		for j := range vals {
			v, err := strconv.ParseFloat(record[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d column %s: %w", resultsFile, i+2, planeHeader[j+1], err)
			}
			vals[j] = v
		}
		rows = append(rows, PlaneRow{
			Plane:        record[0],
			PhaseAdvance: vals[0],
			Tune:         vals[1],
			Alpha:        vals[2],
			Beta:         vals[3],
			FixedPos:     vals[4],
			FixedAng:     vals[5],
			Dispersion:   vals[6],
			DispersionP:  vals[7],
		})
	}
	return rows, nil
}

func ExportJSON(w io.Writer, meta *RunMetadata) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// ExportCSV copies the per-plane results of a run to w.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	rows, err := s.LoadPlanes(runID)
	if err != nil {
		return err
	}
	return writePlanes(w, rows)
}
