package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/coldsim/internal/sim"
)

// WriteCSV writes a header of sim.Columns followed by one row per measurement.
func WriteCSV(w io.Writer, ms []sim.Measurement) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(sim.Columns); err != nil {
		return err
	}
	row := make([]string, len(sim.Columns))
	for _, m := range ms {
		for i, v := range m.Values() {
			row[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type ExportData struct {
	Run          *RunMetadata `json:"run"`
	Columns      []string     `json:"columns"`
	Measurements [][]float64  `json:"measurements"`
}

// ExportJSON writes the metadata and measurements of a run as one document.
func ExportJSON(w io.Writer, meta *RunMetadata, ms []sim.Measurement) error {
	data := ExportData{
		Run:          meta,
		Columns:      sim.Columns,
		Measurements: make([][]float64, len(ms)),
	}
	for i, m := range ms {
		data.Measurements[i] = m.Values()
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
