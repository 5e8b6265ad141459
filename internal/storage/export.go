package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/astroprop/internal/dynamo"
	"github.com/san-kum/astroprop/internal/propagator"
)

type ExportTrack struct {
	Times  []float64   `json:"times"`
	States [][]float64 `json:"states"`
}

type ExportData struct {
	ID       string                 `json:"id"`
	Scenario string                 `json:"scenario"`
	Events   []propagator.Event     `json:"events"`
	Metrics  map[string]float64     `json:"metrics"`
	Tracks   map[string]ExportTrack `json:"tracks"`
}

// ExportJSON writes a stored run and its samples as one JSON document.
func ExportJSON(w io.Writer, meta *RunMetadata, samples map[string][]dynamo.Sample) error {
	data := ExportData{
		ID:      meta.ID,
		Events:  meta.Events,
		Metrics: meta.Metrics,
		Tracks:  make(map[string]ExportTrack, len(samples)),
	}
	if meta.Scenario != nil {
		data.Scenario = meta.Scenario.Name
	}

	for id, ss := range samples {
		track := ExportTrack{
			Times:  make([]float64, len(ss)),
			States: make([][]float64, len(ss)),
		}
		for i, s := range ss {
			track.Times[i] = s.T
			track.States[i] = s.State
		}
		data.Tracks[id] = track
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportCSV writes samples in the states.csv layout.
func ExportCSV(w io.Writer, samples map[string][]dynamo.Sample) error {
	return WriteStates(w, samples)
}
