package avatar

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialsText(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"ada lovelace", "AL"},
		{"  grace ", "G"},
		{"john ronald reuel", "JR"},
		{"", "?"},
		{"!!! ???", "?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Initials(tt.name))
		})
	}
}

func TestColorForIsStable(t *testing.T) {
	assert.Equal(t, ColorFor("user-1"), ColorFor("user-1"))
}

func TestGeneratorInitials(t *testing.T) {
	g, err := NewGenerator()
	require.NoError(t, err)

	out, err := g.Initials("Ada Lovelace", "user-1")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, Size, img.Bounds().Dx())
	assert.Equal(t, Size, img.Bounds().Dy())
}

func TestGeneratorConcurrentInitials(t *testing.T) {
	g, err := NewGenerator()
	require.NoError(t, err)

	names := []string{"Ada Lovelace", "Grace Hopper", "Alan Turing", "Barbara Liskov", "Ken Thompson", "Rob Pike"}
	var wg sync.WaitGroup
	errs := make([]error, len(names))
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			_, errs[i] = g.Initials(name, name)
		}(i, name)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
}

func TestNormalize(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 300, 120))
	for y := 0; y < 120; y++ {
		for x := 0; x < 300; x++ {
			src.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	out, err := Normalize(buf.Bytes())
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, Size, Size), img.Bounds())

	// corners fall outside the circle clip
	_, _, _, a := img.At(0, 0).RGBA()
	assert.Zero(t, a)
}

func TestNormalizeRejects(t *testing.T) {
	_, err := Normalize([]byte("not an image"))
	assert.Error(t, err)

	_, err = Normalize(make([]byte, MaxUploadBytes+1))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestIsImageType(t *testing.T) {
	assert.True(t, IsImageType("image/png"))
	assert.True(t, IsImageType(" Image/JPEG"))
	assert.False(t, IsImageType("application/pdf"))
}
