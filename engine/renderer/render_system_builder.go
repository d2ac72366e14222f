package renderer

// FakeRenderSystemOption is a functional option applied to a FakeRenderSystem during construction.
type FakeRenderSystemOption func(*FakeRenderSystem)

// WithInstancing sets whether the fake reports hardware instancing.
//
// Parameters:
//   - supported: the reported capability
//
// Returns:
//   - FakeRenderSystemOption: a function that sets the capability
func WithInstancing(supported bool) FakeRenderSystemOption {
	return func(f *FakeRenderSystem) {
		f.info.Instancing = supported
	}
}

// WithSamples sets the multisample count reported by the fake.
//
// Parameters:
//   - samples: the sample count
//
// Returns:
//   - FakeRenderSystemOption: a function that sets the sample count
func WithSamples(samples MSAASampleCount) FakeRenderSystemOption {
	return func(f *FakeRenderSystem) {
		f.samples = samples
	}
}

// WithGpuInformations replaces the reported context information.
func WithGpuInformations(info GpuInformations) FakeRenderSystemOption {
	return func(f *FakeRenderSystem) {
		f.info = info
	}
}
