package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 32, c.Len())
	assert.Len(t, c.Categories(), 11)
}

func TestFindPaging(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	first := c.Find(Query{Page: 1})
	assert.Equal(t, 3, first.TotalPages)
	assert.Len(t, first.Items, PerPage)
	assert.Equal(t, 1, first.Items[0].ID)

	last := c.Find(Query{Page: 3})
	assert.Len(t, last.Items, 8)

	clamped := c.Find(Query{Page: 99})
	assert.Equal(t, 3, clamped.Page)
}

func TestFindFilters(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	db := c.Find(Query{Categories: []string{"database"}, Sort: SortAlphabetical})
	titles := make([]string, 0, len(db.Items))
	for _, e := range db.Items {
		titles = append(titles, e.Title)
	}
	assert.Equal(t, []string{"Appwrite", "MongoDB", "PostgreSQL"}, titles)

	latest := c.Find(Query{Categories: []string{"Database"}, Sort: SortLatest})
	assert.Equal(t, "PostgreSQL", latest.Items[0].Title)

	search := c.Find(Query{Search: "typescr"})
	require.Len(t, search.Items, 1)
	assert.Equal(t, "TypeScript", search.Items[0].Title)

	none := c.Find(Query{Search: "zzz"})
	assert.Empty(t, none.Items)
	assert.Equal(t, 1, none.TotalPages)
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, SortPopular, ParseSort(""))
	assert.Equal(t, SortLatest, ParseSort("Latest"))
	assert.Equal(t, SortAlphabetical, ParseSort(" alphabetical "))
}
