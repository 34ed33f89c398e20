package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/coldsim/internal/config"
	"github.com/san-kum/coldsim/internal/sim"
)

const (
	metadataFile     = "metadata.json"
	measurementsFile = "measurements.csv"
)

// ErrBadRow indicates a measurement row with the wrong number of columns.
var ErrBadRow = errors.New("storage: malformed measurement row")

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Summary condenses a finished run.
type Summary struct {
	Steps            int     `json:"steps"`
	Events           int     `json:"events"`
	Collisions       int     `json:"collisions"`
	TrapLosses       int     `json:"trap_losses"`
	VacuumLosses     int     `json:"vacuum_losses"`
	FinalAtoms       int     `json:"final_atoms"`
	FinalTemperature float64 `json:"final_temperature"`
	PeakDensity      float64 `json:"peak_density"`
}

type RunMetadata struct {
	ID         string         `json:"id"`
	Potential  string         `json:"potential"`
	Integrator string         `json:"integrator"`
	Timestamp  time.Time      `json:"timestamp"`
	Seed       uint64         `json:"seed"`
	Atoms      int            `json:"atoms"`
	Dt         float64        `json:"dt"`
	DtOut      float64        `json:"dt_out"`
	Duration   float64        `json:"duration"`
	Collisions bool           `json:"collisions"`
	Summary    Summary        `json:"summary"`
	Config     *config.Config `json:"config"`
}

func summarize(result *sim.Result) Summary {
	final := result.Final()
	sum := Summary{
		Steps:            result.Steps,
		Events:           result.Events,
		Collisions:       result.Collisions,
		TrapLosses:       result.TrapLosses,
		VacuumLosses:     result.VacuumLosses,
		FinalAtoms:       final.N,
		FinalTemperature: final.Temperature,
	}
	for _, m := range result.Measurements {
		if m.PeakDensity > sum.PeakDensity {
			sum.PeakDensity = m.PeakDensity
		}
	}
	return sum
}

// Save writes the configuration snapshot, a summary and every measurement
// of a run, and returns the run id. Runs saved within the same second
// with the same seed get a numeric suffix.
func (s *Store) Save(cfg *config.Config, result *sim.Result) (string, error) {
	now := s.now()
	runID, runDir, err := s.claim(fmt.Sprintf("%s_%d_s%d", cfg.Potential.Type, now.Unix(), cfg.Simulation.Seed))
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Potential:  cfg.Potential.Type,
		Integrator: cfg.Simulation.Integrator,
		Timestamp:  now,
		Seed:       cfg.Simulation.Seed,
		Atoms:      cfg.Atoms.Number,
		Dt:         cfg.Simulation.Dt,
		DtOut:      cfg.Simulation.DtOut,
		Duration:   cfg.Simulation.Duration,
		Collisions: cfg.Simulation.Collisions,
		Summary:    summarize(result),
		Config:     cfg,
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, measurementsFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, result.Measurements); err != nil {
		return "", err
	}
	return runID, csvFile.Sync()
}

// claim creates a fresh run directory named base, or base-2, base-3, ...
func (s *Store) claim(base string) (string, string, error) {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return "", "", err
	}
	runID := base
	for k := 2; ; k++ {
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
		runID = fmt.Sprintf("%s-%d", base, k)
	}
}

// List returns the stored runs, oldest first. Directories without
// readable metadata are skipped.
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
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadMeasurements(runID string) ([]sim.Measurement, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, measurementsFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.Measurement{}, nil
	}

	out := make([]sim.Measurement, 0, len(records)-1)
	for i, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %w", ErrBadRow, i+2, err)
			}
			vals[j] = v
		}
		m, ok := sim.FromValues(vals)
		if !ok {
			return nil, fmt.Errorf("%w: line %d has %d columns", ErrBadRow, i+2, len(record))
		}
		out = append(out, m)
	}
	return out, nil
}

// Path returns the directory of a run.
func (s *Store) Path(runID string) string {
	return filepath.Join(s.baseDir, runID)
}
