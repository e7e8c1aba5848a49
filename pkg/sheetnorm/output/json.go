package output

import (
	"encoding/json"
	"fmt"

	"github.com/ukaji3/sheetnorm-go/pkg/sheetnorm/models"
)

// ReportToJSON serializes a run report.
func ReportToJSON(r *models.Report, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(r, "", "  ")
	}
	return json.Marshal(r)
}

// WriteReport writes the run report as indented JSON.
func WriteReport(path string, r *models.Report) (err error) {
	data, err := ReportToJSON(r, true)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	file, err := createFile(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
