package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/san-kum/astroprop/internal/config"
	"github.com/san-kum/astroprop/internal/dynamo"
	"github.com/san-kum/astroprop/internal/logging"
	"github.com/san-kum/astroprop/internal/propagator"
	"github.com/san-kum/astroprop/internal/sim"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

var ErrNoRun = errors.New("storage: run not found")

// Store keeps one directory per run under baseDir.
type Store struct {
	baseDir string
	logger  log.Logger
}

func New(baseDir string, logger log.Logger) *Store {
	return &Store{baseDir: baseDir, logger: logging.Subsystem(logger, "store")}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Timestamp  time.Time          `json:"timestamp"`
	Scenario   *config.Config     `json:"scenario"`
	Spacecraft []string           `json:"spacecraft"`
	Events     []propagator.Event `json:"events"`
	Metrics    map[string]float64 `json:"metrics"`
	Final      []sim.Summary      `json:"final"`
}

func (s *Store) Save(cfg *config.Config, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", cfg.Name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Timestamp:  now,
		Scenario:   cfg,
		Spacecraft: sortedIDs(result.Samples),
		Events:     result.Events,
		Metrics:    result.Metrics,
		Final:      result.Final,
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

	csvFile, err := os.Create(filepath.Join(runDir, statesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteStates(csvFile, result.Samples); err != nil {
		return "", err
	}

	level.Info(s.logger).Log("msg", "run saved", "id", runID, "events", len(result.Events))
	return runID, nil
}

// WriteStates writes samples as CSV with one row per spacecraft and time.
// Spacecraft with extra state blocks get trailing s6, s7, ... columns;
// shorter rows leave them empty.
func WriteStates(w io.Writer, samples map[string][]dynamo.Sample) error {
	cw := csv.NewWriter(w)

	width := 6
	for _, ss := range samples {
		for _, s := range ss {
			width = max(width, len(s.State))
		}
	}

	header := []string{"spacecraft", "t", "x", "y", "z", "vx", "vy", "vz"}
	for i := 6; i < width; i++ {
		header = append(header, fmt.Sprintf("s%d", i))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, id := range sortedIDs(samples) {
		for _, s := range samples[id] {
			row := make([]string, 0, len(header))
			row = append(row, id, strconv.FormatFloat(s.T, 'f', 6, 64))
			for _, val := range s.State {
				row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
			}
			for len(row) < len(header) {
				row = append(row, "")
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

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
			level.Debug(s.logger).Log("msg", "skipping run", "dir", entry.Name(), "err", err)
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", runID, ErrNoRun)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadStates reads the samples of a run back, keyed by spacecraft.
func (s *Store) LoadStates(runID string) (map[string][]dynamo.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", runID, ErrNoRun)
		}
		return nil, err
	}
	defer file.Close()
	return ReadStates(file)
}

func ReadStates(r io.Reader) (map[string][]dynamo.Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	samples := make(map[string][]dynamo.Sample)
	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) < 2 {
			continue
		}

		t, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}

		state := make(dynamo.State, 0, len(record)-2)
		for _, field := range record[2:] {
			if field == "" {
				break
			}
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			state = append(state, val)
		}
		samples[record[0]] = append(samples[record[0]], dynamo.Sample{State: state, T: t})
	}

	return samples, nil
}

func sortedIDs(samples map[string][]dynamo.Sample) []string {
	ids := make([]string, 0, len(samples))
	for id := range samples {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
