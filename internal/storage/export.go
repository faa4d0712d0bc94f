package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/tiltsand/internal/experiment"
)

type ExportData struct {
	Run   *RunMetadata           `json:"run"`
	Ticks []experiment.TickStats `json:"ticks"`
	Frame []byte                 `json:"frame,omitempty"`
}

// Export gathers everything stored for a run.
func (s *Store) Export(runID string, withFrame bool) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	ticks, err := s.LoadTicks(runID)
	if err != nil {
		return nil, err
	}
	data := &ExportData{Run: meta, Ticks: ticks}
	if withFrame {
		if data.Frame, err = s.LoadFrame(runID); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func WriteJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, data *ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, data)
}
