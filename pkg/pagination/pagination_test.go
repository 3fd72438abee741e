package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, perPage, want int
	}{
		{0, 12, 1},
		{1, 12, 1},
		{12, 12, 1},
		{13, 12, 2},
		{32, 12, 3},
		{5, 0, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalPages(tt.total, tt.perPage), "total=%d perPage=%d", tt.total, tt.perPage)
	}
}

func TestPaginateNoEmptyPages(t *testing.T) {
	for n := 1; n <= 40; n++ {
		items := seq(n)
		pages := TotalPages(n, 12)
		seen := 0
		for p := 1; p <= pages; p++ {
			page := Paginate(items, p, 12)
			assert.NotEmpty(t, page.Items, "n=%d page=%d", n, p)
			seen += len(page.Items)
		}
		assert.Equal(t, n, seen)
	}
}

func TestPaginateEmpty(t *testing.T) {
	page := Paginate([]string{}, 3, 12)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 0, page.Total)
}

func TestPaginateClampsPage(t *testing.T) {
	page := Paginate(seq(30), 99, 12)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, []int{25, 26, 27, 28, 29, 30}, page.Items)

	page = Paginate(seq(30), -1, 12)
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Items, 12)
}
