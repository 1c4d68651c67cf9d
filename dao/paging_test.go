package dao_test

import (
	"testing"

	"github.com/deciphernow/contact-registry-server/dao"
)

func TestSanitizedPaging(t *testing.T) {
	if dao.GetSanitizedPageNumber(0) != 1 {
		t.Error("expected page number 0 to sanitize to 1")
	}
	if dao.GetSanitizedPageNumber(-5) != 1 {
		t.Error("expected negative page number to sanitize to 1")
	}
	if dao.GetSanitizedPageSize(0) != 1 {
		t.Error("expected page size 0 to sanitize to 1")
	}
	if dao.GetSanitizedPageSize(dao.MaxPageSize+1) != dao.MaxPageSize {
		t.Error("expected oversized page size to clamp to the maximum")
	}
	if dao.GetSanitizedPageSize(250) != 250 {
		t.Error("expected in range page size to pass through")
	}
}

func TestGetOffset(t *testing.T) {
	if offset := dao.GetOffset(1, 20); offset != 0 {
		t.Errorf("expected offset 0 for the first page, got %d", offset)
	}
	if offset := dao.GetOffset(4, 20); offset != 60 {
		t.Errorf("expected offset 60 for page 4 of 20, got %d", offset)
	}
}

func TestGetPageCount(t *testing.T) {
	cases := []struct {
		totalRows int
		pageSize  int
		expected  int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{56, 20, 3},
	}
	for _, c := range cases {
		if got := dao.GetPageCount(c.totalRows, c.pageSize); got != c.expected {
			t.Errorf("%d rows at %d per page: expected %d pages, got %d", c.totalRows, c.pageSize, c.expected, got)
		}
	}
}
