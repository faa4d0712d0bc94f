package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/tiltsand/internal/config"
	"github.com/san-kum/tiltsand/internal/experiment"
)

const (
	metadataFile = "metadata.json"
	ticksFile    = "ticks.csv"
	frameFile    = "frame.bin"
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

type RunMetadata struct {
	ID        string             `json:"id"`
	Pattern   string             `json:"pattern"`
	Timestamp time.Time          `json:"timestamp"`
	Dim       int                `json:"dim"`
	Seed      int64              `json:"seed"`
	Ticks     int                `json:"ticks"`
	Impulses  int                `json:"impulses"`
	OffGrid   int                `json:"off_grid"`
	ElapsedMS int64              `json:"elapsed_ms"`
	Metrics   map[string]float64 `json:"metrics"`
	Config    *config.Config     `json:"config,omitempty"`
}

// Save writes a run directory holding the metadata, the per-tick CSV and
// the final frame, and returns the run id.
func (s *Store) Save(cfg *config.Config, result *experiment.Result) (string, error) {
	runID, runDir, err := s.newRunDir(cfg.Pattern)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Pattern:   cfg.Pattern,
		Timestamp: time.Now(),
		Dim:       result.Dim,
		Seed:      cfg.Seed,
		Ticks:     len(result.Ticks),
		Impulses:  result.Impulses,
		OffGrid:   result.OffGrid,
		ElapsedMS: result.Elapsed.Milliseconds(),
		Metrics:   result.Metrics,
		Config:    cfg,
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

	csvFile, err := os.Create(filepath.Join(runDir, ticksFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	ticks := result.Ticks
	if ticks == nil {
		ticks = []experiment.TickStats{}
	}
	if err := gocsv.MarshalFile(&ticks, csvFile); err != nil {
		return "", fmt.Errorf("write ticks: %w", err)
	}

	if err := os.WriteFile(filepath.Join(runDir, frameFile), result.Frame, 0644); err != nil {
		return "", err
	}

	return runID, nil
}

// newRunDir creates <base>/<pattern>_<unix>, adding a suffix when a run
// from the same second already exists.
func (s *Store) newRunDir(pattern string) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	base := fmt.Sprintf("%s_%d", pattern, time.Now().Unix())
	runID := base
	for i := 2; ; i++ {
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
		runID = fmt.Sprintf("%s-%d", base, i)
	}
}

// List returns the metadata of every run, oldest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
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

func (s *Store) LoadTicks(runID string) ([]experiment.TickStats, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, ticksFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	ticks := []experiment.TickStats{}
	if err := gocsv.UnmarshalFile(file, &ticks); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return ticks, nil
		}
		return nil, fmt.Errorf("read ticks: %w", err)
	}
	return ticks, nil
}

// LoadFrame returns the final grid buffer of a run.
func (s *Store) LoadFrame(runID string) ([]byte, error) {
	frame, err := os.ReadFile(filepath.Join(s.baseDir, runID, frameFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	return frame, nil
}
