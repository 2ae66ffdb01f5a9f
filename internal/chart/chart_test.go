package chart

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderBar(t *testing.T) {
	svg, err := RenderBar(400, 300, []string{"Ali", "Ayesha", "Imtiaz"}, []float64{90, 85, 95})
	require.NoError(t, err)

	assert.Contains(t, svg, "<svg")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(svg), "</svg>"))
	for _, name := range []string{"Ali", "Ayesha", "Imtiaz"} {
		assert.Contains(t, svg, name)
	}
}

func TestRenderBar_ReleasesCanvas(t *testing.T) {
	before := Open()
	for i := 0; i < 5; i++ {
		_, err := RenderBar(200, 100, []string{"a"}, []float64{1})
		require.NoError(t, err)
	}
	_, err := RenderBar(200, 100, []string{"a", "b"}, []float64{1})
	require.Error(t, err)

	assert.Equal(t, before, Open())
}

func TestRenderBar_Deterministic(t *testing.T) {
	a, err := RenderBar(400, 300, []string{"x", "y"}, []float64{1, 2})
	require.NoError(t, err)
	b, err := RenderBar(400, 300, []string{"x", "y"}, []float64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBar_Errors(t *testing.T) {
	c := NewCanvas(100, 100)
	defer c.Close()

	assert.Error(t, Bar(c, nil, nil))
	assert.Error(t, Bar(c, []string{"a"}, []float64{-1}))
}

func TestCanvas_UseAfterClose(t *testing.T) {
	c := NewCanvas(100, 100)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, err := c.SVG()
	assert.ErrorIs(t, err, ErrCanvasClosed)
	assert.ErrorIs(t, Bar(c, []string{"a"}, []float64{1}), ErrCanvasClosed)
}

func TestRenderBar_EscapesLabels(t *testing.T) {
	svg, err := RenderBar(200, 100, []string{"<b>"}, []float64{1})
	require.NoError(t, err)
	assert.NotContains(t, svg, "<b>")
	assert.Contains(t, svg, "&lt;b&gt;")
}
