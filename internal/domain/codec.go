package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"
)

// EncodeRecord returns the canonical JSON form of rec, date included.
func EncodeRecord(rec *PuzzleRecord) ([]byte, error) {
	if rec == nil {
		return nil, errors.New("encode record: nil record")
	}
	return json.Marshal(rec)
}

// DecodeRecord rebuilds a record from its canonical form. Every boundary
// where a puzzle enters the process (store row, cache value) goes through
// here, so the result is always fully typed.
func DecodeRecord(data []byte) (*PuzzleRecord, error) {
	var rec PuzzleRecord
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if rec.Date.IsZero() {
		return nil, errors.New("decode record: missing date")
	}
	if err := checkRacks(rec.InitialRacks); err != nil {
		return nil, fmt.Errorf("decode record %s: initialRacks: %w", rec.Date, err)
	}
	if err := checkRacks(rec.TargetSolution); err != nil {
		return nil, fmt.Errorf("decode record %s: targetSolution: %w", rec.Date, err)
	}
	return &rec, nil
}

// EncodeRacks returns the JSON array-of-arrays form used for store columns.
func EncodeRacks(racks []Rack) ([]byte, error) {
	if racks == nil {
		racks = []Rack{}
	}
	return json.Marshal(racks)
}

// DecodeRacks parses a store column back into typed racks.
func DecodeRacks(data []byte) ([]Rack, error) {
	var racks []Rack
	if err := json.Unmarshal(data, &racks); err != nil {
		return nil, fmt.Errorf("decode racks: %w", err)
	}
	if err := checkRacks(racks); err != nil {
		return nil, fmt.Errorf("decode racks: %w", err)
	}
	return racks, nil
}

func checkRacks(racks []Rack) error {
	for i, r := range racks {
		for j, t := range r {
			if t.ID == "" {
				return fmt.Errorf("rack %d tile %d: missing id", i, j)
			}
			if utf8.RuneCountInString(t.Letter) != 1 {
				return fmt.Errorf("rack %d tile %s: letter %q is not a single character", i, t.ID, t.Letter)
			}
		}
	}
	return nil
}

// DecodeColumns rebuilds a record from a store row: the ISO date key and
// the two JSON rack columns.
func DecodeColumns(date string, initial, target []byte) (*PuzzleRecord, error) {
	d, err := ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	ir, err := DecodeRacks(initial)
	if err != nil {
		return nil, fmt.Errorf("decode record %s: initialRacks: %w", date, err)
	}
	tr, err := DecodeRacks(target)
	if err != nil {
		return nil, fmt.Errorf("decode record %s: targetSolution: %w", date, err)
	}
	return &PuzzleRecord{Date: d, Puzzle: Puzzle{InitialRacks: ir, TargetSolution: tr}}, nil
}
