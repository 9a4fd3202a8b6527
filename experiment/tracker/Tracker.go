// Package tracker defines Trackers, which track and save data in an
// experiment
package tracker

import (
	"encoding/gob"
	"fmt"
	"os"

	ts "github.com/samuelfneumann/walker/timestep"
)

// Interface Tracker keeps track of experiment data and saves the data
// after the experiment has finished
type Tracker interface {
	Track(t ts.TimeStep)
	Save() error
}

// Encode gob-encodes data into the file filename, replacing it
func Encode(filename string, data interface{}) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("encode: could not open save file: %v", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(data); err != nil {
		return fmt.Errorf("encode: could not encode data: %v", err)
	}
	return file.Close()
}

// Decode decodes the gob-encoded data in the file filename into data,
// which must be a pointer
func Decode(filename string, data interface{}) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("decode: could not open data file: %v", err)
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(data); err != nil {
		return fmt.Errorf("decode: could not decode data: %v", err)
	}
	return nil
}

// LoadData loads and returns the data saved by a Tracker of
// per-episode values
func LoadData(filename string) ([]float64, error) {
	var data []float64
	if err := Decode(filename, &data); err != nil {
		return nil, fmt.Errorf("loadData: %v", err)
	}
	return data, nil
}
