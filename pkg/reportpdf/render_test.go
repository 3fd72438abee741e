package reportpdf

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanvasWidthIsFixed(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	img := r.Canvas("# Progress\n\nShort body.")
	assert.Equal(t, CanvasWidth, img.Bounds().Dx())
	assert.Greater(t, img.Bounds().Dy(), 40)
}

func TestPDFSinglePage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	out, err := r.PDF("# User Progress Report\n\n## 1) Technical Knowledge\nGood work 🎉 so far.")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestPDFSpansPages(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	var sb strings.Builder
	sb.WriteString("# Long Report\n\n")
	for i := 0; i < 120; i++ {
		sb.WriteString("- a list item that keeps the report growing well past a single page\n")
	}

	img := r.Canvas(sb.String())
	pages := PageCount(img.Bounds().Dy())
	assert.Greater(t, pages, 1)

	out, err := r.PDF(sb.String())
	require.NoError(t, err)
	pageObjects := bytes.Count(out, []byte("/Type /Page")) - bytes.Count(out, []byte("/Type /Pages"))
	assert.Equal(t, pages, pageObjects)
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 1, PageCount(0))
	assert.Equal(t, 1, PageCount(100))
	assert.Equal(t, 2, PageCount(1300))
}

func TestPDFConcurrentRenders(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	report := "# Report\n\n## Skills\n- Go\n- SQL\n\n> keep going\n\nA paragraph long enough to wrap across the canvas width more than once, twice even."

	var wg sync.WaitGroup
	outputs := make([][]byte, 8)
	errs := make([]error, 8)
	for i := range outputs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outputs[i], errs[i] = r.PDF(report)
		}(i)
	}
	wg.Wait()

	for i := range outputs {
		require.NoError(t, errs[i])
		assert.True(t, bytes.HasPrefix(outputs[i], []byte("%PDF-")))
	}
}
