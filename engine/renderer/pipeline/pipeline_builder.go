package pipeline

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithCullMode sets which faces the pipeline discards.
//
// Parameters:
//   - mode: the cull mode
//
// Returns:
//   - PipelineBuilderOption: a function that sets the cull mode
func WithCullMode(mode CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithDepthTest enables or disables depth testing.
func WithDepthTest(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthTest = enabled
	}
}

// WithDepthWrite enables or disables depth writes.
func WithDepthWrite(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthWrite = enabled
	}
}

// WithBlendState overrides the blend state derived from the pipeline flags.
//
// Parameters:
//   - s: the blend state to use
//
// Returns:
//   - PipelineBuilderOption: a function that sets the blend state
func WithBlendState(s BlendState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendState = s
	}
}

// WithAlphaToCoverage enables the alpha-to-coverage multisample mode.
func WithAlphaToCoverage(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.alphaToCoverage = enabled
	}
}
