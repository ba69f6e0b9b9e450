package keyframe

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// LoadCSV parses keyframe records from the CSV layout produced by the map
// unpacker:
//
//	id, timestamp, x, y, z[, neighbor[:weight] ...]
//
// The timestamp column is carried by the exporter but unused for routing.
// Neighbor cells are either a bare keyframe ID or "id:weight" for maps with
// measured traversal costs. Malformed rows fail the load with a
// *MalformedRecordError carrying the line number; a navigable map with
// silently dropped rows would misroute, so nothing is skipped.
func LoadCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var records []Record
	line := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading keyframe csv: %w", err)
		}
		line++

		rec, err := parseRow(row, line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// LoadCSVFile is a convenience wrapper around LoadCSV.
func LoadCSVFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadCSV(f)
}

func parseRow(row []string, line int) (Record, error) {
	if len(row) < 5 {
		return Record{}, &MalformedRecordError{
			Line:   line,
			Reason: fmt.Sprintf("expected at least 5 columns (id, ts, x, y, z), got %d", len(row)),
		}
	}

	id := strings.TrimSpace(row[0])
	if id == "" {
		return Record{}, &MalformedRecordError{Line: line, Reason: "empty identifier"}
	}

	var coords [3]float64
	for i, cell := range row[2:5] {
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			return Record{}, &MalformedRecordError{
				ID:     id,
				Line:   line,
				Reason: fmt.Sprintf("bad coordinate %q: %v", cell, err),
			}
		}
		coords[i] = v
	}

	rec := Record{ID: id, Pos: r3.Vec{X: coords[0], Y: coords[1], Z: coords[2]}}
	for _, cell := range row[5:] {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		link, err := parseLink(cell)
		if err != nil {
			return Record{}, &MalformedRecordError{ID: id, Line: line, Reason: err.Error()}
		}
		rec.Links = append(rec.Links, link)
	}
	return rec, nil
}

func parseLink(cell string) (Link, error) {
	target, weightStr, hasWeight := strings.Cut(cell, ":")
	target = strings.TrimSpace(target)
	if target == "" {
		return Link{}, fmt.Errorf("neighbor cell %q has empty target", cell)
	}
	link := Link{To: target}
	if hasWeight {
		w, err := strconv.ParseFloat(strings.TrimSpace(weightStr), 64)
		if err != nil {
			return Link{}, fmt.Errorf("bad neighbor weight %q: %v", weightStr, err)
		}
		if w < 0 {
			return Link{}, fmt.Errorf("negative neighbor weight %g", w)
		}
		link.Weight = w
	}
	return link, nil
}
