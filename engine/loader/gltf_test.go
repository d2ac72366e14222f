package loader

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/buffer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/flags"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gltfFixture assembles a document and its single binary buffer.
type gltfFixture struct {
	doc gltfDocument
	bin []byte
}

func (f *gltfFixture) view(data []byte) int {
	for len(f.bin)%4 != 0 {
		f.bin = append(f.bin, 0)
	}
	f.doc.BufferViews = append(f.doc.BufferViews, gltfBufferView{ByteOffset: len(f.bin), ByteLength: len(data)})
	f.bin = append(f.bin, data...)
	return len(f.doc.BufferViews) - 1
}

func (f *gltfFixture) accessor(data []byte, componentType int, accessorType string, count int) int {
	v := f.view(data)
	f.doc.Accessors = append(f.doc.Accessors, gltfAccessor{BufferView: &v, ComponentType: componentType, Count: count, Type: accessorType})
	return len(f.doc.Accessors) - 1
}

func (f *gltfFixture) gltf(t *testing.T) []byte {
	doc := f.doc
	if doc.Asset.Version == "" {
		doc.Asset.Version = "2.0"
	}
	doc.Buffers = []gltfBuffer{{
		URI:        "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(f.bin),
		ByteLength: len(f.bin),
	}}
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	return data
}

func (f *gltfFixture) glb(t *testing.T) []byte {
	doc := f.doc
	doc.Asset.Version = "2.0"
	doc.Buffers = []gltfBuffer{{ByteLength: len(f.bin)}}
	js, err := json.Marshal(doc)
	require.NoError(t, err)
	for len(js)%4 != 0 {
		js = append(js, ' ')
	}
	bin := append([]byte(nil), f.bin...)
	for len(bin)%4 != 0 {
		bin = append(bin, 0)
	}

	out := binary.LittleEndian.AppendUint32(nil, glbMagic)
	out = binary.LittleEndian.AppendUint32(out, glbVersion)
	out = binary.LittleEndian.AppendUint32(out, uint32(12+8+len(js)+8+len(bin)))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(js)))
	out = binary.LittleEndian.AppendUint32(out, glbChunkJSON)
	out = append(out, js...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(bin)))
	out = binary.LittleEndian.AppendUint32(out, glbChunkBIN)
	return append(out, bin...)
}

func floatBytes(values ...float32) []byte {
	out := make([]byte, 0, 4*len(values))
	for _, v := range values {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}
	return out
}

func uint16Bytes(values ...uint16) []byte {
	out := make([]byte, 0, 2*len(values))
	for _, v := range values {
		out = binary.LittleEndian.AppendUint16(out, v)
	}
	return out
}

func intPtr(v int) *int { return &v }

// triangleFixture is one triangle in the XY plane without normals or texcoords.
func triangleFixture() *gltfFixture {
	f := &gltfFixture{}
	pos := f.accessor(floatBytes(0, 0, 0, 1, 0, 0, 0, 1, 0), gltfFloat, "VEC3", 3)
	idx := f.accessor(uint16Bytes(0, 1, 2), gltfUnsignedShort, "SCALAR", 3)
	f.doc.Meshes = []gltfMesh{{Name: "tri", Primitives: []gltfPrimitive{{
		Attributes: map[string]int{"POSITION": pos},
		Indices:    intPtr(idx),
	}}}}
	f.doc.Nodes = []gltfNode{{Name: "tri", Mesh: intPtr(0)}}
	return f
}

// skinnedFixture is the triangle bound to a two-joint skin whose joint list names the
// child before the root, with a rotation clip on the root.
func skinnedFixture() *gltfFixture {
	f := triangleFixture()
	joints := f.accessor([]byte{0, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0}, gltfUnsignedByte, "VEC4", 3)
	weights := f.accessor(floatBytes(2, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0), gltfFloat, "VEC4", 3)
	f.doc.Meshes[0].Primitives[0].Attributes["JOINTS_0"] = joints
	f.doc.Meshes[0].Primitives[0].Attributes["WEIGHTS_0"] = weights

	f.doc.Nodes = []gltfNode{
		{Name: "root", Children: []int{1}},
		{Name: "child", Translation: &[3]float32{0, 1, 0}},
		{Name: "body", Mesh: intPtr(0), Skin: intPtr(0)},
	}
	f.doc.Skins = []gltfSkin{{Joints: []int{1, 0}}}

	times := f.accessor(floatBytes(0, 1.5), gltfFloat, "SCALAR", 2)
	rotations := f.accessor(floatBytes(0, 0, 0, 1, 0, 0.7071068, 0, 0.7071068), gltfFloat, "VEC4", 2)
	f.doc.Animations = []gltfAnimation{{
		Name:     "spin",
		Samplers: []gltfAnimationSampler{{Input: times, Output: rotations}},
		Channels: []gltfAnimationChannel{
			{Sampler: 0, Target: gltfAnimationTarget{Node: intPtr(0), Path: gltfPathRotation}},
			{Sampler: 0, Target: gltfAnimationTarget{Node: intPtr(2), Path: gltfPathRotation}},
		},
	}}
	return f
}

func TestImportTriangleFromDataURI(t *testing.T) {
	p, err := parseGLTF(triangleFixture().gltf(t), ".")
	require.NoError(t, err)

	asset, err := p.importAsset("tri")
	require.NoError(t, err)
	require.Equal(t, 1, asset.Mesh.SubmeshCount())

	sm := asset.Mesh.Submesh(0)
	assert.Equal(t, buffer.PositionNormalUV, sm.Layout())
	assert.Equal(t, []uint32{0, 1, 2}, sm.Indices())
	require.Len(t, sm.Vertices(), 3*8)
	assert.Equal(t, []float32{0, 0, 1}, sm.Vertices()[3:6], "normals are generated from the winding")

	require.Len(t, asset.Materials, 1)
	assert.Equal(t, "tri/default", asset.Materials[0].Name())
	assert.Nil(t, asset.Mesh.Skeleton())
}

func TestImportGLBMatchesGLTF(t *testing.T) {
	f := triangleFixture()
	fromText, err := parseGLTF(f.gltf(t), ".")
	require.NoError(t, err)
	fromBinary, err := parseGLTF(f.glb(t), ".")
	require.NoError(t, err)

	a, err := fromText.importAsset("a")
	require.NoError(t, err)
	b, err := fromBinary.importAsset("b")
	require.NoError(t, err)
	assert.Equal(t, a.Mesh.Submesh(0).Vertices(), b.Mesh.Submesh(0).Vertices())
}

func TestParseRejectsMalformedDocuments(t *testing.T) {
	t.Run("version", func(t *testing.T) {
		f := triangleFixture()
		f.doc.Asset.Version = "1.0"
		_, err := parseGLTF(f.gltf(t), ".")
		assert.ErrorIs(t, err, errInvalidGLTFVersion)
	})

	t.Run("accessor overrun", func(t *testing.T) {
		f := triangleFixture()
		f.doc.Accessors[0].Count = 40
		p, err := parseGLTF(f.gltf(t), ".")
		require.NoError(t, err)
		_, err = p.importAsset("tri")
		assert.ErrorIs(t, err, errAccessorRange)
	})

	t.Run("truncated glb", func(t *testing.T) {
		data := triangleFixture().glb(t)
		_, err := parseGLTF(data[:30], ".")
		assert.ErrorIs(t, err, errInvalidGLB)
	})

	t.Run("line primitives", func(t *testing.T) {
		f := triangleFixture()
		f.doc.Meshes[0].Primitives[0].Mode = intPtr(1)
		p, err := parseGLTF(f.gltf(t), ".")
		require.NoError(t, err)
		_, err = p.importAsset("tri")
		assert.ErrorContains(t, err, "unsupported primitive mode")
	})
}

func TestImportSkinnedMesh(t *testing.T) {
	p, err := parseGLTF(skinnedFixture().gltf(t), ".")
	require.NoError(t, err)
	asset, err := p.importAsset("body")
	require.NoError(t, err)

	sk := asset.Mesh.Skeleton()
	require.NotNil(t, sk)
	require.Len(t, sk.Bones, 2)
	assert.Equal(t, "root", sk.Bones[0].Name)
	assert.Equal(t, -1, sk.Bones[0].Parent)
	assert.Equal(t, "child", sk.Bones[1].Name)
	assert.Equal(t, 0, sk.Bones[1].Parent)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, sk.Bones[1].Local.Translation)

	sm := asset.Mesh.Submesh(0)
	require.Equal(t, buffer.SkinnedLayout, sm.Layout())
	stride := buffer.SkinnedLayout.Stride()
	v := sm.Vertices()
	// Joint 0 is the child node, which sorts to bone 1.
	assert.Equal(t, []float32{1, 1, 1, 1}, v[8:12])
	assert.Equal(t, []float32{1, 0, 0, 0}, v[12:16], "weights are normalized")
	assert.Equal(t, float32(0), v[stride+8])
	assert.Equal(t, []float32{1, 0, 0, 0}, v[2*stride+12:2*stride+16], "zero weights bind to the first joint")

	clips := asset.Mesh.AnimationClips()
	require.Len(t, clips, 1)
	assert.Equal(t, "spin", clips[0].Name)
	assert.InDelta(t, 1.5, clips[0].Duration, 1e-6)
	require.Len(t, clips[0].Channels, 1, "channels on non-joint nodes are dropped")
	assert.Equal(t, 0, clips[0].Channels[0].Bone)
	assert.Len(t, clips[0].Channels[0].Rotations, 2)
}

func TestImportMaterials(t *testing.T) {
	f := triangleFixture()
	image := f.view([]byte("not really a png"))
	f.doc.Images = []gltfImage{{Name: "albedo", BufferView: intPtr(image)}}
	f.doc.Textures = []gltfTexture{{Source: intPtr(0)}}
	f.doc.Materials = []gltfMaterial{{
		Name: "glass",
		PbrMetallicRoughness: &gltfPbr{
			BaseColorFactor:  &[4]float32{0.2, 0.4, 0.6, 0.5},
			BaseColorTexture: &gltfTextureInfo{Index: 0},
		},
		AlphaMode:   gltfAlphaBlend,
		DoubleSided: true,
	}}
	f.doc.Meshes[0].Primitives[0].Material = intPtr(0)

	p, err := parseGLTF(f.gltf(t), ".")
	require.NoError(t, err)
	asset, err := p.importAsset("window")
	require.NoError(t, err)
	require.Len(t, asset.Materials, 1)

	m := asset.Materials[0]
	assert.Equal(t, "window/glass", m.Name())
	pass := m.Pass(0)
	assert.Equal(t, mgl32.Vec4{0.2, 0.4, 0.6, 0.5}, pass.DiffuseColour())
	assert.InDelta(t, 0.5, pass.Opacity(), 1e-6)
	assert.True(t, pass.IsTwoSided())
	assert.Equal(t, flags.BlendModeInterpolative, pass.ColourBlendMode())
	assert.True(t, pass.HasAlphaBlending())

	units := pass.Units()
	require.Len(t, units, 1)
	assert.Equal(t, flags.TextureDiffuse, units[0].Channel)
	assert.Equal(t, []byte("not really a png"), units[0].Image.Data)
}

func TestDecodeDataURI(t *testing.T) {
	data, mime, err := decodeDataURI("data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte{1, 2, 3}))
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, []byte{1, 2, 3}, data)

	_, _, err = decodeDataURI("data:text/plain,hello")
	assert.ErrorIs(t, err, errInvalidDataURI)
}
