package vocab

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/vocadrill/pkg/models"
)

// loadSpreadsheet reads word pairs from an .xlsx or .csv file with three
// columns: source term, target term, level. A header row is detected by its
// level cell not naming a known level and is skipped.
func loadSpreadsheet(path string) (*Library, error) {
	var rows [][]string
	var err error

	if strings.ToLower(filepath.Ext(path)) == ".csv" {
		rows, err = readCSVRows(path)
	} else {
		rows, err = readExcelRows(path)
	}
	if err != nil {
		return nil, err
	}

	buckets := map[models.Level][]models.WordPair{}
	skipped := 0
	for i, row := range rows {
		if len(row) < 3 {
			skipped++
			continue
		}

		source := strings.TrimSpace(row[0])
		target := strings.TrimSpace(row[1])
		level := models.Level(strings.ToLower(strings.TrimSpace(row[2])))

		if !level.Valid() {
			if i == 0 {
				continue // header row
			}
			skipped++
			continue
		}
		if source == "" || target == "" {
			skipped++
			continue
		}

		buckets[level] = append(buckets[level], models.WordPair{Source: source, Target: target})
	}

	if skipped > 0 {
		log.Printf("Skipped %d malformed rows in %s", skipped, path)
	}

	lib := NewLibrary(buckets)
	if lib.Size() == 0 {
		return nil, fmt.Errorf("vocabulary file %s contains no usable rows", path)
	}
	return lib, nil
}

func readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV file %s: %w", path, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
