// Package benchmark drives a running contact registry over HTTP and reports
// per-endpoint latency and query counts. It is a sequence of timed calls with
// printed summaries and optional file export, not a load generator.
package benchmark

import (
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/deciphernow/contact-registry-server/client"
)

// DefaultPageSize is the page size scenarios request unless overridden.
const DefaultPageSize = 1000

// ErrTimeout is the error label recorded when a call runs out the server's
// query budget or the client's own request timeout.
const ErrTimeout = "TIMEOUT"

// Result captures one timed call against the registry.
type Result struct {
	Name            string  `json:"name"`
	ExecutionTimeMS float64 `json:"execution_time_ms"`
	QueryCount      int64   `json:"query_count"`
	StatusCode      int     `json:"status_code"`
	ResultCount     int64   `json:"result_count"`
	TotalRows       int64   `json:"total_rows"`
	Error           string  `json:"error,omitempty"`
}

// Runner executes benchmark scenarios against one registry instance.
type Runner struct {
	registry   *client.Client
	httpClient *http.Client
	base       string
	// PageSize is the page size requested by the standard scenarios.
	PageSize int
	// Out receives progress lines and summaries. Defaults to stdout.
	Out io.Writer
}

// NewRunner builds a Runner for the remote named in conf.
func NewRunner(conf client.Config, pageSize int) (*Runner, error) {
	registry, err := client.NewClient(conf)
	if err != nil {
		return nil, err
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Runner{
		registry:   registry,
		httpClient: registry.GetHttpClient(),
		base:       strings.TrimSuffix(conf.Remote, "/"),
		PageSize:   pageSize,
		Out:        os.Stdout,
	}, nil
}

// Ping verifies the remote is reachable before a run.
func (r *Runner) Ping() error {
	return r.registry.Ping()
}

// timedGet performs one GET, measures wall time, and picks the response body
// apart for row counts. Failures are recorded, never returned: a benchmark
// run continues past a slow or broken scenario.
func (r *Runner) timedGet(name, path string, params url.Values) Result {
	result := Result{Name: name}

	u := r.base + path
	if encoded := params.Encode(); encoded != "" {
		u += "?" + encoded
	}

	start := time.Now()
	resp, err := r.httpClient.Get(u)
	result.ExecutionTimeMS = float64(time.Since(start)) / float64(time.Millisecond)
	if err != nil {
		if isTimeoutError(err) {
			result.Error = ErrTimeout
		} else {
			result.Error = err.Error()
		}
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	if qc, err := strconv.ParseInt(resp.Header.Get("X-Query-Count"), 10, 64); err == nil {
		result.QueryCount = qc
	}

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	switch {
	case resp.StatusCode == http.StatusGatewayTimeout:
		result.Error = ErrTimeout
	case resp.StatusCode != http.StatusOK:
		detail := gjson.GetBytes(body, "detail").String()
		if detail == "" {
			detail = http.StatusText(resp.StatusCode)
		}
		result.Error = detail
	default:
		result.ResultCount = gjson.GetBytes(body, "contacts.#").Int()
		result.TotalRows = gjson.GetBytes(body, "TotalRows").Int()
		if result.ResultCount == 0 && gjson.GetBytes(body, "id").Exists() {
			result.ResultCount = 1
		}
	}
	return result
}

func isTimeoutError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded")
}

// RunScenarios executes the standard scenario set in order and prints a
// progress line per scenario.
func (r *Runner) RunScenarios() []Result {
	scenarios := r.scenarios()
	results := make([]Result, 0, len(scenarios))
	for _, s := range scenarios {
		result := r.timedGet(s.name, s.path, s.params)
		r.printProgress(result)
		results = append(results, result)
	}
	return results
}

type scenario struct {
	name   string
	path   string
	params url.Values
}

func (r *Runner) scenarios() []scenario {
	size := strconv.Itoa(r.PageSize)
	listParams := func(extra url.Values) url.Values {
		params := url.Values{}
		params.Set("pageSize", size)
		for key, values := range extra {
			for _, v := range values {
				params.Add(key, v)
			}
		}
		return params
	}
	return []scenario{
		{
			name:   "initial_list",
			path:   "/contacts",
			params: listParams(nil),
		},
		{
			name:   "filter_by_name",
			path:   "/contacts",
			params: listParams(url.Values{"name": {"smith"}}),
		},
		{
			name: "sort_by_attribute_created_desc",
			path: "/contacts",
			params: listParams(url.Values{
				"sortField": {"created"}, "sortAscending": {"false"},
			}),
		},
		{
			name: "sort_by_attribute_points_asc",
			path: "/contacts",
			params: listParams(url.Values{
				"sortField": {"points"}, "sortAscending": {"true"},
			}),
		},
		{
			name: "sort_by_attribute_city_asc",
			path: "/contacts",
			params: listParams(url.Values{
				"sortField": {"city"}, "sortAscending": {"true"},
			}),
		},
		{
			name: "multi_field_sort_points_names",
			path: "/contacts",
			params: listParams(url.Values{
				"sortField":     {"points", "lastname", "firstname"},
				"sortAscending": {"false", "true", "true"},
			}),
		},
		{
			name: "multi_field_sort_geography",
			path: "/contacts",
			params: listParams(url.Values{
				"sortField":     {"country", "city", "created"},
				"sortAscending": {"true", "true", "false"},
			}),
		},
		{
			name: "filter_and_sort",
			path: "/contacts",
			params: listParams(url.Values{
				"filterField":   {"city"},
				"condition":     {"contains"},
				"expression":    {"ing"},
				"sortField":     {"points"},
				"sortAscending": {"false"},
			}),
		},
		{
			name: "multiple_filters",
			path: "/contacts",
			params: listParams(url.Values{
				"filterField":     {"gender", "points", "country"},
				"condition":       {"equals", "atleast", "contains"},
				"expression":      {"M", "5000", "United"},
				"filterMatchType": {"and"},
			}),
		},
		{
			name:   "search",
			path:   "/contacts/search/" + url.PathEscape("smith"),
			params: listParams(nil),
		},
		{
			name: "complex_query",
			path: "/contacts",
			params: listParams(url.Values{
				"filterField":     {"gender", "points", "country"},
				"condition":       {"equals", "atleast", "contains"},
				"expression":      {"M", "1000", "United"},
				"filterMatchType": {"and"},
				"sortField":       {"lastactivity"},
				"sortAscending":   {"false"},
			}),
		},
	}
}

func (r *Runner) printProgress(result Result) {
	if result.Error != "" {
		fmt.Fprintf(r.Out, "%-34s %10.1f ms  ERROR: %s\n", result.Name, result.ExecutionTimeMS, result.Error)
		return
	}
	fmt.Fprintf(r.Out, "%-34s %10.1f ms  %3d queries  %6d rows of %d\n",
		result.Name, result.ExecutionTimeMS, result.QueryCount, result.ResultCount, result.TotalRows)
}

// PrintSummary renders a table of results plus averages across scenarios.
func PrintSummary(w io.Writer, results []Result) {
	fmt.Fprintf(w, "\n%-34s %12s %8s %8s %10s %s\n", "scenario", "ms", "queries", "rows", "totalRows", "status")
	fmt.Fprintln(w, strings.Repeat("-", 90))

	var totalMS float64
	var totalQueries int64
	counted := 0
	for _, result := range results {
		status := strconv.Itoa(result.StatusCode)
		if result.Error != "" {
			status = result.Error
		}
		fmt.Fprintf(w, "%-34s %12.1f %8d %8d %10d %s\n",
			result.Name, result.ExecutionTimeMS, result.QueryCount, result.ResultCount, result.TotalRows, status)
		totalMS += result.ExecutionTimeMS
		totalQueries += result.QueryCount
		counted++
	}
	if counted > 0 {
		fmt.Fprintln(w, strings.Repeat("-", 90))
		fmt.Fprintf(w, "%-34s %12.1f %8.1f\n", "average",
			totalMS/float64(counted), float64(totalQueries)/float64(counted))
	}
}
