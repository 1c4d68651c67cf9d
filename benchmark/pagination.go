package benchmark

import (
	"fmt"
	"math/rand"
	"net/url"
	"strconv"
)

// PaginationReport aggregates the timed page fetches of a pagination run.
type PaginationReport struct {
	PageSize          int      `json:"page_size"`
	TotalRows         int64    `json:"total_rows"`
	PageCount         int64    `json:"page_count"`
	PagesFetched      int      `json:"pages_fetched"`
	TotalMS           float64  `json:"total_ms"`
	AvgMS             float64  `json:"avg_ms"`
	MinMS             float64  `json:"min_ms"`
	MaxMS             float64  `json:"max_ms"`
	TotalQueries      int64    `json:"total_queries"`
	AvgQueriesPerPage float64  `json:"avg_queries_per_page"`
	AvgItemsPerPage   float64  `json:"avg_items_per_page"`
	Results           []Result `json:"results"`
}

// RunPagination fetches page 1 to learn the shape of the resultset, then
// times the first page, the middle page, the last page, and up to ten
// distinct random pages. rng may be seeded for a reproducible page pick.
func (r *Runner) RunPagination(pageSize int, rng *rand.Rand) PaginationReport {
	if pageSize <= 0 {
		pageSize = r.PageSize
	}
	report := PaginationReport{PageSize: pageSize}

	fetchPage := func(label string, pageNumber int64) Result {
		params := url.Values{}
		params.Set("pageSize", strconv.Itoa(pageSize))
		params.Set("pageNumber", strconv.FormatInt(pageNumber, 10))
		result := r.timedGet(fmt.Sprintf("page_%s_%d", label, pageNumber), "/contacts", params)
		r.printProgress(result)
		return result
	}

	first := fetchPage("first", 1)
	report.Results = append(report.Results, first)
	report.TotalRows = first.TotalRows
	if report.TotalRows > 0 {
		report.PageCount = (report.TotalRows + int64(pageSize) - 1) / int64(pageSize)
	}

	if report.PageCount > 1 {
		middle := (report.PageCount + 1) / 2
		if middle > 1 {
			report.Results = append(report.Results, fetchPage("middle", middle))
		}
		report.Results = append(report.Results, fetchPage("last", report.PageCount))

		visited := map[int64]bool{1: true, middle: true, report.PageCount: true}
		for picks := 0; picks < 10 && int64(len(visited)) < report.PageCount; picks++ {
			page := rng.Int63n(report.PageCount) + 1
			if visited[page] {
				continue
			}
			visited[page] = true
			report.Results = append(report.Results, fetchPage("random", page))
		}
	}

	report.PagesFetched = len(report.Results)
	report.MinMS = first.ExecutionTimeMS
	var totalItems int64
	for _, result := range report.Results {
		report.TotalMS += result.ExecutionTimeMS
		report.TotalQueries += result.QueryCount
		totalItems += result.ResultCount
		if result.ExecutionTimeMS < report.MinMS {
			report.MinMS = result.ExecutionTimeMS
		}
		if result.ExecutionTimeMS > report.MaxMS {
			report.MaxMS = result.ExecutionTimeMS
		}
	}
	if report.PagesFetched > 0 {
		report.AvgMS = report.TotalMS / float64(report.PagesFetched)
		report.AvgQueriesPerPage = float64(report.TotalQueries) / float64(report.PagesFetched)
		report.AvgItemsPerPage = float64(totalItems) / float64(report.PagesFetched)
	}

	r.printPaginationSummary(report)
	return report
}

func (r *Runner) printPaginationSummary(report PaginationReport) {
	fmt.Fprintf(r.Out, "\npagination summary (page size %d):\n", report.PageSize)
	fmt.Fprintf(r.Out, "  pages fetched:   %d of %d\n", report.PagesFetched, report.PageCount)
	fmt.Fprintf(r.Out, "  total time:      %.1f ms\n", report.TotalMS)
	fmt.Fprintf(r.Out, "  avg/min/max:     %.1f / %.1f / %.1f ms\n", report.AvgMS, report.MinMS, report.MaxMS)
	fmt.Fprintf(r.Out, "  total queries:   %d (%.1f per page)\n", report.TotalQueries, report.AvgQueriesPerPage)
	fmt.Fprintf(r.Out, "  avg items/page:  %.1f\n", report.AvgItemsPerPage)
}
