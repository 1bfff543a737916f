package paging

import (
	"math"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestParsePageLimit(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "/x", 1, 4},
		{"explicit", "/x?page=3&limit=10", 3, 10},
		{"zero page", "/x?page=0&limit=2", 1, 2},
		{"negative limit", "/x?page=2&limit=-5", 2, 4},
		{"garbage", "/x?page=abc&limit=1.5", 1, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.target, nil)
			page, limit := ParsePageLimit(r)
			if page != tt.wantPage || limit != tt.wantLimit {
				t.Errorf("ParsePageLimit(%q) = (%d, %d), want (%d, %d)", tt.target, page, limit, tt.wantPage, tt.wantLimit)
			}
		})
	}
}

func TestPaginate(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	tests := []struct {
		name        string
		page, limit int
		want        []int
	}{
		{"first page", 1, 4, []int{0, 1, 2, 3}},
		{"second page", 2, 4, []int{4, 5, 6, 7}},
		{"short last page", 3, 4, []int{8, 9}},
		{"past the end", 4, 4, []int{}},
		{"invalid page falls back", 0, 4, []int{0, 1, 2, 3}},
		{"invalid limit falls back", 1, 0, []int{0, 1, 2, 3}},
		{"everything", 1, 100, items},
		{"huge page", 2305843009213693953, 5, []int{}},
		{"huge page and limit", math.MaxInt, math.MaxInt, []int{}},
		{"huge limit", 1, math.MaxInt, items},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Paginate(items, tt.page, tt.limit)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Paginate(page=%d, limit=%d) = %v, want %v", tt.page, tt.limit, got, tt.want)
			}
		})
	}
}

func TestPaginate_Empty(t *testing.T) {
	got := Paginate([]string(nil), 1, 4)
	if got == nil || len(got) != 0 {
		t.Errorf("Paginate(nil) = %#v, want empty non-nil slice", got)
	}
}
