package benchmark

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// DefaultOutputDir is where exports land unless overridden.
const DefaultOutputDir = "benchmark_results"

var csvHeader = []string{"name", "execution_time_ms", "query_count", "status_code", "result_count", "total_rows", "error"}

// ExportResults writes the scenario results as JSON and CSV under dir,
// returning the paths written. Both files contain identical rows.
func ExportResults(dir string, results []Result) (string, string, error) {
	stamp := time.Now().Format("20060102_150405")
	jsonPath := filepath.Join(dir, fmt.Sprintf("benchmark_results_%s.json", stamp))
	csvPath := filepath.Join(dir, fmt.Sprintf("benchmark_results_%s.csv", stamp))

	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", "", err
	}
	if err := writeJSON(jsonPath, results); err != nil {
		return "", "", err
	}
	if err := writeResultsCSV(csvPath, results); err != nil {
		return "", "", err
	}
	return jsonPath, csvPath, nil
}

// ExportPagination writes a pagination report as JSON plus its per-page rows
// as CSV under dir, returning the paths written.
func ExportPagination(dir string, report PaginationReport) (string, string, error) {
	stamp := time.Now().Format("20060102_150405")
	name := fmt.Sprintf("pagination_report_page_size_%d_%s", report.PageSize, stamp)
	jsonPath := filepath.Join(dir, name+".json")
	csvPath := filepath.Join(dir, name+".csv")

	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", "", err
	}
	if err := writeJSON(jsonPath, report); err != nil {
		return "", "", err
	}
	if err := writeResultsCSV(csvPath, report.Results); err != nil {
		return "", "", err
	}
	return jsonPath, csvPath, nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return ioutil.WriteFile(path, data, 0640)
}

func writeResultsCSV(path string, results []Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, result := range results {
		row := []string{
			result.Name,
			strconv.FormatFloat(result.ExecutionTimeMS, 'f', 3, 64),
			strconv.FormatInt(result.QueryCount, 10),
			strconv.Itoa(result.StatusCode),
			strconv.FormatInt(result.ResultCount, 10),
			strconv.FormatInt(result.TotalRows, 10),
			result.Error,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
