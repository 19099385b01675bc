// Package locations holds the campus location directory and the proximity
// graph the matcher uses to treat nearby places as equivalent.
package locations

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

type Location struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// Directory is the ordered list of known locations.
type Directory struct {
	locations []Location
	byName    map[string]int
}

func NewDirectory(locs []Location) (*Directory, error) {
	d := &Directory{byName: make(map[string]int, len(locs))}
	for _, loc := range locs {
		loc.Name = strings.TrimSpace(loc.Name)
		if loc.Name == "" {
			return nil, errors.New("location with empty name")
		}
		key := strings.ToLower(loc.Name)
		if _, dup := d.byName[key]; dup {
			return nil, fmt.Errorf("duplicate location %q", loc.Name)
		}
		d.byName[key] = len(d.locations)
		d.locations = append(d.locations, loc)
	}
	return d, nil
}

// LoadCSV reads a directory file with the header name,lat,lon.
func LoadCSV(path string) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

func ReadCSV(r io.Reader) (*Directory, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3
	reader.TrimLeadingSpace = true

	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var locs []Location
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("bad latitude for %q: %w", record[0], err)
		}
		lng, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("bad longitude for %q: %w", record[0], err)
		}
		locs = append(locs, Location{Name: record[0], Lat: lat, Lng: lng})
	}
	return NewDirectory(locs)
}

// All returns the locations in file order.
func (d *Directory) All() []Location {
	out := make([]Location, len(d.locations))
	copy(out, d.locations)
	return out
}

// Find looks a location up case-insensitively.
func (d *Directory) Find(name string) (Location, bool) {
	i, ok := d.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Location{}, false
	}
	return d.locations[i], true
}

func (d *Directory) Len() int {
	return len(d.locations)
}
