package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindowBuilderOptions(t *testing.T) {
	w := &engineWindow{samples: 4, vsync: true, resizable: true}
	for _, opt := range []WindowBuilderOption{
		WithTitle("viewer"),
		WithWidth(800),
		WithHeight(600),
		WithMinWidth(320),
		WithMinHeight(240),
		WithMaxWidth(1920),
		WithMaxHeight(1080),
		WithSamples(-2),
		WithVSync(false),
		WithResizable(false),
	} {
		opt(w)
	}

	assert.Equal(t, "viewer", w.title)
	assert.Equal(t, 800, w.Width())
	assert.Equal(t, 600, w.Height())
	assert.Equal(t, [4]int{320, 240, 1920, 1080}, [4]int{w.minWidth, w.minHeight, w.maxWidth, w.maxHeight})
	assert.Equal(t, 0, w.Samples(), "negative sample counts disable multisampling")
	assert.False(t, w.vsync)
	assert.False(t, w.resizable)
}

func TestWindowWithoutPlatformWindow(t *testing.T) {
	w := &engineWindow{}

	assert.False(t, w.IsRunning())
	assert.Error(t, w.Close())
	assert.NotPanics(t, func() {
		w.SwapBuffers()
		w.MakeContextCurrent()
		w.SetVSync(true)
		w.RequestClose()
	})
}
