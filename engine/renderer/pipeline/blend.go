package pipeline

import "github.com/Carmen-Shannon/oxy-gl/engine/renderer/flags"

// BlendFactor is a source or destination blend factor.
type BlendFactor int

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcColour
	BlendInvSrcColour
	BlendSrcAlpha
	BlendInvSrcAlpha
	BlendDstColour
	BlendInvDstColour
	BlendDstAlpha
	BlendInvDstAlpha
)

var blendFactorNames = [...]string{
	BlendZero:         "Zero",
	BlendOne:          "One",
	BlendSrcColour:    "SrcColour",
	BlendInvSrcColour: "InvSrcColour",
	BlendSrcAlpha:     "SrcAlpha",
	BlendInvSrcAlpha:  "InvSrcAlpha",
	BlendDstColour:    "DstColour",
	BlendInvDstColour: "InvDstColour",
	BlendDstAlpha:     "DstAlpha",
	BlendInvDstAlpha:  "InvDstAlpha",
}

func (f BlendFactor) String() string {
	if f < 0 || int(f) >= len(blendFactorNames) {
		return "Unknown"
	}
	return blendFactorNames[f]
}

// BlendState describes the colour attachment blend equation of a pipeline.
// The equation is always an add.
type BlendState struct {
	Enabled   bool
	ColourSrc BlendFactor
	ColourDst BlendFactor
	AlphaSrc  BlendFactor
	AlphaDst  BlendFactor
}

// NewBlendState derives the blend factors for a pair of pass blend modes.
// The alpha mode overrides the colour factors for Multiplicative and Interpolative.
//
// Parameters:
//   - colour: the pass colour blend mode
//   - alpha: the pass alpha blend mode
//
// Returns:
//   - BlendState: the resulting blend state
func NewBlendState(colour, alpha flags.BlendMode) BlendState {
	var s BlendState

	switch colour {
	case flags.BlendModeNone:
		s.ColourSrc, s.ColourDst = BlendOne, BlendZero
	case flags.BlendModeAdditive:
		s.Enabled = true
		s.ColourSrc, s.ColourDst = BlendOne, BlendOne
	case flags.BlendModeMultiplicative:
		s.Enabled = true
		s.ColourSrc, s.ColourDst = BlendZero, BlendInvSrcColour
	default:
		s.Enabled = true
		s.ColourSrc, s.ColourDst = BlendSrcColour, BlendInvSrcColour
	}

	switch alpha {
	case flags.BlendModeNone:
		s.AlphaSrc, s.AlphaDst = BlendOne, BlendZero
	case flags.BlendModeAdditive:
		s.Enabled = true
		s.AlphaSrc, s.AlphaDst = BlendOne, BlendOne
	case flags.BlendModeMultiplicative:
		s.Enabled = true
		s.AlphaSrc, s.AlphaDst = BlendZero, BlendInvSrcAlpha
		s.ColourSrc, s.ColourDst = BlendZero, BlendInvSrcAlpha
	default:
		s.Enabled = true
		s.AlphaSrc, s.AlphaDst = BlendSrcAlpha, BlendInvSrcAlpha
		s.ColourSrc, s.ColourDst = BlendSrcAlpha, BlendInvSrcAlpha
	}

	return s
}
