package material

// materialBuilder collects construction options before the material's passes are created.
type materialBuilder struct {
	defaultPass bool
	passes      [][]PassBuilderOption
}

// MaterialBuilderOption is a function that configures a material during construction.
type MaterialBuilderOption func(*materialBuilder)

// WithPass is an option builder that appends a pass configured by options.
// Multiple WithPass options create passes in order.
//
// Parameters:
//   - options: the pass options
//
// Returns:
//   - MaterialBuilderOption: a function that appends the pass
func WithPass(options ...PassBuilderOption) MaterialBuilderOption {
	return func(b *materialBuilder) {
		b.passes = append(b.passes, options)
	}
}

// WithoutDefaultPass is an option builder that creates the material with no passes.
//
// Returns:
//   - MaterialBuilderOption: a function that disables the default pass
func WithoutDefaultPass() MaterialBuilderOption {
	return func(b *materialBuilder) {
		b.defaultPass = false
	}
}
