package inventory

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// CSV column headers per inventory type. Website rows carry a domain-style
// primary column; TV and streaming rows carry a platform name plus publisher.
const (
	colDomain    = "Domain Name"
	colPlatform  = "App/Platform Name"
	colPublisher = "Publisher Name"
	colCategory  = "Category"
	colKeywords  = "Behavioral Keywords"
	colAudience  = "Audience"
)

// Store loads and memoizes the per-type reference datasets. Each dataset is
// read at most once per process; concurrent first loads for the same type are
// serialized so the backing file is parsed exactly once.
type Store struct {
	dataDir string
	files   map[EntryType]string
	logger  *log.Logger

	mu       sync.Mutex
	datasets map[EntryType]Dataset
	loads    int64 // file reads performed, for tests and diagnostics
}

// NewStore creates a store reading datasets from dataDir. files maps each
// inventory type to its CSV file name; types without a mapping are absent.
func NewStore(dataDir string, files map[EntryType]string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(log.Writer(), "[INVENTORY] ", log.LstdFlags)
	}
	return &Store{
		dataDir:  dataDir,
		files:    files,
		logger:   logger,
		datasets: make(map[EntryType]Dataset),
	}
}

// Load returns the dataset for the given type. The boolean reports presence:
// a missing backing file is a normal "no inventory of this type" condition,
// not an error. Errors are returned only for I/O or format failures on a file
// that does exist.
func (s *Store) Load(t EntryType) (Dataset, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ds, ok := s.datasets[t]; ok {
		return ds, true, nil
	}

	filename, ok := s.files[t]
	if !ok || filename == "" {
		return nil, false, nil
	}

	path := filepath.Join(s.dataDir, filename)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		s.logger.Printf("file not found for %s: %s", t, path)
		return nil, false, nil
	}

	ds, err := s.readCSV(t, path)
	if err != nil {
		return nil, false, err
	}

	s.datasets[t] = ds
	s.loads++
	s.logger.Printf("loaded %s: %d entries", t, len(ds))
	return ds, true, nil
}

// Loads reports how many backing files have been read so far
func (s *Store) Loads() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}

func (s *Store) readCSV(t EntryType, path string) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // rows with missing trailing columns still parse

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header %s: %w", path, err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}

	nameCol := colDomain
	if t != TypeWebsite {
		nameCol = colPlatform
	}
	if _, ok := idx[nameCol]; !ok {
		return nil, fmt.Errorf("%s: missing required column %q", path, nameCol)
	}

	field := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var ds Dataset
	line := 1
	for {
		row, err := r.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			// malformed row: skip it, keep loading
			s.logger.Printf("skipping malformed row %d in %s: %v", line, path, err)
			continue
		}

		name := field(row, nameCol)
		if name == "" {
			s.logger.Printf("skipping row %d in %s: empty %s", line, path, nameCol)
			continue
		}

		e := Entry{
			Type:     t,
			Name:     name,
			Category: field(row, colCategory),
			Keywords: field(row, colKeywords),
			Audience: field(row, colAudience),
		}
		if t != TypeWebsite {
			e.Publisher = field(row, colPublisher)
		}
		ds = append(ds, e)
	}

	return ds, nil
}
