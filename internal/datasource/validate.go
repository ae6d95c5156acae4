package datasource

import (
	"fmt"
)

// ValidateSource loads the source fully and records whether it is usable.
// The returned error is also stored in ValidationError.
func ValidateSource(s *DataSource) error {
	if s.Type == SourceTypeEmbedded {
		s.Valid = true
		return nil
	}
	if s.Size == 0 {
		s.Valid = false
		s.ValidationError = "empty file"
		return fmt.Errorf("%s: empty file", s.Path)
	}
	d, err := LoadFromSource(*s)
	if err != nil {
		s.Valid = false
		s.ValidationError = err.Error()
		return err
	}
	s.Valid = true
	s.ValidationError = ""
	s.SectionCount = len(d.Sections)
	return nil
}

// SelectBestSource picks the freshest valid source; ties go to the higher
// priority.
func SelectBestSource(sources []DataSource) (DataSource, error) {
	var best *DataSource
	for i := range sources {
		s := &sources[i]
		if !s.Valid {
			continue
		}
		if best == nil ||
			s.ModTime.After(best.ModTime) ||
			(s.ModTime.Equal(best.ModTime) && s.Priority > best.Priority) {
			best = s
		}
	}
	if best == nil {
		return DataSource{}, ErrNoSources
	}
	return *best, nil
}
