package benchmark

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deciphernow/contact-registry-server/client"
)

// fakeRegistry serves canned resultset pages shaped like the real server.
func fakeRegistry(totalRows int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/ping") {
			fmt.Fprint(w, `{"status":"ok"}`)
			return
		}
		pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
		if pageSize <= 0 {
			pageSize = 100
		}
		pageNumber, _ := strconv.Atoi(r.URL.Query().Get("pageNumber"))
		if pageNumber <= 0 {
			pageNumber = 1
		}
		remaining := totalRows - (pageNumber-1)*pageSize
		if remaining < 0 {
			remaining = 0
		}
		rows := pageSize
		if remaining < rows {
			rows = remaining
		}
		contacts := make([]string, 0, rows)
		for i := 0; i < rows; i++ {
			contacts = append(contacts, fmt.Sprintf(`{"id":%d,"firstName":"A","lastName":"B","customerId":"c"}`, (pageNumber-1)*pageSize+i+1))
		}
		w.Header().Set("X-Query-Count", "2")
		fmt.Fprintf(w, `{"TotalRows":%d,"PageNumber":%d,"PageSize":%d,"contacts":[%s]}`,
			totalRows, pageNumber, pageSize, strings.Join(contacts, ","))
	})
}

func newTestRunner(t *testing.T, handler http.Handler, pageSize int) (*Runner, *httptest.Server) {
	server := httptest.NewServer(handler)
	runner, err := NewRunner(client.Config{Remote: server.URL}, pageSize)
	if err != nil {
		server.Close()
		t.Fatalf("could not build runner: %v", err)
	}
	runner.Out = &bytes.Buffer{}
	return runner, server
}

func TestRunScenarios(t *testing.T) {
	runner, server := newTestRunner(t, fakeRegistry(2500), 1000)
	defer server.Close()

	results := runner.RunScenarios()
	if len(results) == 0 {
		t.Fatal("expected scenario results")
	}
	names := make(map[string]bool)
	for _, result := range results {
		names[result.Name] = true
		assert.Equal(t, http.StatusOK, result.StatusCode)
		assert.Empty(t, result.Error)
		assert.Equal(t, int64(2), result.QueryCount)
		assert.Equal(t, int64(2500), result.TotalRows)
		assert.True(t, result.ExecutionTimeMS >= 0)
	}
	for _, expected := range []string{
		"initial_list", "filter_by_name", "sort_by_attribute_created_desc",
		"multi_field_sort_points_names", "filter_and_sort", "multiple_filters",
		"search", "complex_query",
	} {
		assert.True(t, names[expected], "missing scenario %s", expected)
	}
}

func TestTimedGetRecordsTimeout(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
		fmt.Fprint(w, `{"detail": "Query timed out"}`)
	})
	runner, server := newTestRunner(t, handler, 100)
	defer server.Close()

	result := runner.timedGet("slow_scenario", "/contacts", nil)
	assert.Equal(t, http.StatusGatewayTimeout, result.StatusCode)
	assert.Equal(t, ErrTimeout, result.Error)
	assert.True(t, result.ExecutionTimeMS >= 0, "elapsed time recorded even on timeout")
}

func TestTimedGetRecordsErrorDetail(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"detail": "Error parsing request parameters"}`)
	})
	runner, server := newTestRunner(t, handler, 100)
	defer server.Close()

	result := runner.timedGet("bad_request", "/contacts", nil)
	assert.Equal(t, "Error parsing request parameters", result.Error)
}

func TestRunPagination(t *testing.T) {
	runner, server := newTestRunner(t, fakeRegistry(1050), 0)
	defer server.Close()

	rng := rand.New(rand.NewSource(1))
	report := runner.RunPagination(100, rng)

	assert.Equal(t, int64(1050), report.TotalRows)
	assert.Equal(t, int64(11), report.PageCount)
	// first, middle, last, plus up to 10 random distinct pages
	assert.True(t, report.PagesFetched >= 3)
	assert.True(t, report.PagesFetched <= 13)
	assert.True(t, report.MinMS <= report.MaxMS)
	assert.Equal(t, int64(report.PagesFetched)*2, report.TotalQueries)
	assert.InDelta(t, 2.0, report.AvgQueriesPerPage, 0.001)
}

func TestRunPaginationSinglePage(t *testing.T) {
	runner, server := newTestRunner(t, fakeRegistry(50), 0)
	defer server.Close()

	report := runner.RunPagination(100, rand.New(rand.NewSource(1)))
	assert.Equal(t, 1, report.PagesFetched)
	assert.Equal(t, int64(1), report.PageCount)
}

func TestExportResultsWritesMatchingRows(t *testing.T) {
	dir := t.TempDir()
	results := []Result{
		{Name: "initial_list", ExecutionTimeMS: 12.5, QueryCount: 2, StatusCode: 200, ResultCount: 100, TotalRows: 2500},
		{Name: "complex_query", ExecutionTimeMS: 90.1, QueryCount: 2, StatusCode: 504, Error: ErrTimeout},
	}
	jsonPath, csvPath, err := ExportResults(dir, results)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	data, err := ioutil.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("could not read json export: %v", err)
	}
	var decoded []Result
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("could not decode json export: %v", err)
	}
	assert.Equal(t, results, decoded)

	f, err := os.Open(csvPath)
	if err != nil {
		t.Fatalf("could not open csv export: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("could not parse csv export: %v", err)
	}
	// header plus one row per result
	assert.Len(t, rows, len(results)+1)
	assert.Equal(t, "initial_list", rows[1][0])
	assert.Equal(t, ErrTimeout, rows[2][6])
}

func TestExportPagination(t *testing.T) {
	dir := t.TempDir()
	report := PaginationReport{
		PageSize:     100,
		TotalRows:    1050,
		PageCount:    11,
		PagesFetched: 1,
		Results:      []Result{{Name: "page_first_1", StatusCode: 200}},
	}
	jsonPath, csvPath, err := ExportPagination(dir, report)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	assert.Contains(t, filepath.Base(jsonPath), "pagination_report_page_size_100_")
	assert.Contains(t, filepath.Base(csvPath), "pagination_report_page_size_100_")

	data, _ := ioutil.ReadFile(jsonPath)
	var decoded PaginationReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("could not decode json export: %v", err)
	}
	assert.Equal(t, report.PageCount, decoded.PageCount)
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, []Result{
		{Name: "initial_list", ExecutionTimeMS: 10, QueryCount: 2, StatusCode: 200, ResultCount: 5, TotalRows: 5},
		{Name: "search", ExecutionTimeMS: 30, QueryCount: 2, StatusCode: 200, ResultCount: 1, TotalRows: 1},
	})
	out := buf.String()
	assert.Contains(t, out, "initial_list")
	assert.Contains(t, out, "search")
	assert.Contains(t, out, "average")
	assert.Contains(t, out, "20.0")
}
