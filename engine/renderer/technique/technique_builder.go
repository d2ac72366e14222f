package technique

import "github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"

// TechniqueBuilderOption is a functional option for configuring a Technique.
type TechniqueBuilderOption func(*technique)

// WithWatcher resets the programs and rebuilds every pipeline after each reload
// announced by w.
func WithWatcher(w shader.Watcher) TechniqueBuilderOption {
	return func(t *technique) {
		t.watcher = w
	}
}

// WithNodeRegistration records the drawn nodes of every frame for RenderedNodes.
func WithNodeRegistration(enabled bool) TechniqueBuilderOption {
	return func(t *technique) {
		t.register = enabled
	}
}
