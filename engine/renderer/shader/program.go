// Package shader assembles, compiles and caches the scene shader programs. Programs
// are keyed by the texture channels and program flags they were generated for.
package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/flags"
	"github.com/go-gl/mathgl/mgl32"
)

// Uniform names shared by the scene programs and the draw path.
const (
	UniformProjection     = "uProjection"
	UniformView           = "uView"
	UniformModel          = "uModel"
	UniformBones          = "uBones"
	UniformMorphTime      = "uMorphTime"
	UniformBillboardSize  = "uBillboardSize"
	UniformAmbientColour  = "uAmbientColour"
	UniformDiffuseColour  = "uDiffuseColour"
	UniformSpecularColour = "uSpecularColour"
	UniformEmissiveColour = "uEmissiveColour"
	UniformShininess      = "uShininess"
	UniformOpacity        = "uOpacity"
	UniformCameraPosition = "uCameraPosition"
	UniformLightDirection = "uLightDirection"
	UniformFogMode        = "uFogMode"
	UniformFogDensity     = "uFogDensity"
	UniformFogColour      = "uFogColour"
	UniformObjectID       = "uObjectId"
)

// MaxBones is the length of the bone palette declared by skinned programs.
const MaxBones = 64

// SamplerName returns the sampler uniform bound to a texture channel, or "" for
// channels the scene programs do not sample.
func SamplerName(channel flags.TextureChannels) string {
	switch channel {
	case flags.TextureDiffuse:
		return "uDiffuseMap"
	case flags.TextureOpacity:
		return "uOpacityMap"
	case flags.TextureSpecular:
		return "uSpecularMap"
	case flags.TextureEmissive:
		return "uEmissiveMap"
	default:
		return ""
	}
}

// Program is a compiled and linked GPU program.
type Program interface {
	// Name returns the identifier the program was compiled under.
	Name() string

	// Bind makes the program current.
	Bind()

	// Unbind clears the current program.
	Unbind()

	// SetMat4 uploads a matrix uniform. Unknown uniforms are ignored.
	SetMat4(name string, m mgl32.Mat4)

	// SetMat4Array uploads a matrix array uniform.
	SetMat4Array(name string, m []mgl32.Mat4)

	// SetVec2 uploads a vec2 uniform.
	SetVec2(name string, v mgl32.Vec2)

	// SetVec3 uploads a vec3 uniform.
	SetVec3(name string, v mgl32.Vec3)

	// SetVec4 uploads a vec4 uniform.
	SetVec4(name string, v mgl32.Vec4)

	// SetFloat uploads a float uniform.
	SetFloat(name string, v float32)

	// SetInt uploads an int uniform, also used for sampler units.
	SetInt(name string, v int32)

	// Release deletes the GPU program.
	Release()
}

// ProgramKey identifies one generated program variant.
type ProgramKey struct {
	TextureFlags  flags.TextureChannels
	ProgramFlags  flags.ProgramFlags
	InvertNormals bool
}

// Name returns a stable readable identifier for the variant.
func (k ProgramKey) Name() string {
	name := fmt.Sprintf("scene_t%04x_p%04x", uint16(k.TextureFlags), uint16(k.ProgramFlags))
	if k.InvertNormals {
		name += "_inv"
	}
	return name
}

var programDefines = []struct {
	flag flags.ProgramFlags
	name string
}{
	{flags.ProgramInstantiation, "INSTANTIATION"},
	{flags.ProgramSkinning, "SKINNING"},
	{flags.ProgramMorphing, "MORPHING"},
	{flags.ProgramShadows, "SHADOWS"},
	{flags.ProgramShadowMap, "SHADOW_MAP"},
	{flags.ProgramAlphaBlending, "ALPHA_BLENDING"},
	{flags.ProgramBillboards, "BILLBOARDS"},
	{flags.ProgramPicking, "PICKING"},
}

var textureDefines = []struct {
	flag flags.TextureChannels
	name string
}{
	{flags.TextureDiffuse, "DIFFUSE_MAP"},
	{flags.TextureNormal, "NORMAL_MAP"},
	{flags.TextureOpacity, "OPACITY_MAP"},
	{flags.TextureSpecular, "SPECULAR_MAP"},
	{flags.TextureEmissive, "EMISSIVE_MAP"},
	{flags.TextureHeight, "HEIGHT_MAP"},
	{flags.TextureGloss, "GLOSS_MAP"},
	{flags.TextureAmbient, "AMBIENT_MAP"},
}

// Defines lists the preprocessor symbols enabled for the variant.
func (k ProgramKey) Defines() []string {
	var out []string
	for _, d := range programDefines {
		if k.ProgramFlags.Has(d.flag) {
			out = append(out, d.name)
		}
	}
	for _, d := range textureDefines {
		if k.TextureFlags.Has(d.flag) {
			out = append(out, d.name)
		}
	}
	if k.InvertNormals {
		out = append(out, "INVERT_NORMALS")
	}
	return out
}

// ProgramSource is the GLSL text of one program variant.
type ProgramSource struct {
	Vertex   string
	Fragment string
}

// header renders the version line followed by one #define per symbol.
func header(version string, defines []string) string {
	var b strings.Builder
	b.WriteString("#version ")
	b.WriteString(version)
	b.WriteByte('\n')
	for _, d := range defines {
		b.WriteString("#define ")
		b.WriteString(d)
		b.WriteString(" 1\n")
	}
	return b.String()
}
