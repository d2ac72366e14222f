package mesh

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/buffer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/flags"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type drawCall struct {
	indices   int
	instances int
}

type fakeBuffers struct {
	draws    []drawCall
	released bool
}

func (b *fakeBuffers) Bind()   {}
func (b *fakeBuffers) Unbind() {}
func (b *fakeBuffers) Draw(indexCount int) {
	b.draws = append(b.draws, drawCall{indices: indexCount, instances: 1})
}
func (b *fakeBuffers) DrawInstanced(indexCount, instances int) {
	b.draws = append(b.draws, drawCall{indices: indexCount, instances: instances})
}
func (b *fakeBuffers) Release() { b.released = true }

type fakeStore struct{}

func (fakeStore) Upload([]byte) {}
func (fakeStore) Release()      {}

type fakeFactory struct {
	buffers []*fakeBuffers
	fail    error
}

func (f *fakeFactory) CreateGeometryBuffers(buffer.VertexLayout, []float32, []uint32, *buffer.MatrixBuffer) (buffer.GeometryBuffers, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	b := &fakeBuffers{}
	f.buffers = append(f.buffers, b)
	return b, nil
}

func (f *fakeFactory) CreateMatrixStore(int) (buffer.MatrixStore, error) {
	return fakeStore{}, nil
}

func TestNewCube(t *testing.T) {
	m := NewCube("cube", 2)
	require.Equal(t, 1, m.SubmeshCount())
	s := m.Submesh(0)
	assert.Equal(t, 12, s.FaceCount())
	assert.Equal(t, 24, s.PointCount())

	sphere := s.CollisionSphere()
	assert.InDelta(t, 0, sphere.Center.Len(), 1e-6)
	assert.InDelta(t, mgl32.Vec3{1, 1, 1}.Len(), sphere.Radius, 1e-5)
	assert.InDelta(t, sphere.Radius, m.CollisionSphere().Radius, 1e-5)
}

func TestNewQuad(t *testing.T) {
	m := NewQuad("quad", 2, 4, WithProgramFlags(flags.ProgramPicking))
	s := m.Submesh(0)
	assert.Equal(t, 2, s.FaceCount())
	assert.Equal(t, 4, s.PointCount())
	assert.True(t, s.ProgramFlags().IsPicking())
}

func TestSubmeshRefCount(t *testing.T) {
	s := NewCube("cube", 1).Submesh(0)
	a := material.NewMaterial("a")
	b := material.NewMaterial("b")

	s.IncRef(a)
	s.IncRef(a)
	s.IncRef(b)
	assert.Equal(t, 2, s.RefCount(a))
	assert.Equal(t, 1, s.RefCount(b))

	s.DecRef(a)
	s.DecRef(b)
	s.DecRef(b)
	assert.Equal(t, 1, s.RefCount(a))
	assert.Equal(t, 0, s.RefCount(b))
	s.IncRef(nil)
}

func TestSubmeshInitialiseAndDraw(t *testing.T) {
	m := NewCube("cube", 1)
	s := m.Submesh(0)
	s.Draw()
	assert.False(t, s.Initialised())

	f := &fakeFactory{}
	require.NoError(t, m.Initialise(f, 8, buffer.DefaultInstanceLayout))
	require.NoError(t, m.Initialise(f, 8, buffer.DefaultInstanceLayout))
	require.Len(t, f.buffers, 1)
	assert.True(t, s.HasMatrixBuffer())
	assert.Equal(t, 8, s.MatrixBuffer().Capacity())

	s.Draw()
	s.DrawInstanced(3)
	s.DrawInstanced(0)
	assert.Equal(t, []drawCall{{36, 1}, {36, 3}}, f.buffers[0].draws)

	m.Release()
	assert.True(t, f.buffers[0].released)
	assert.False(t, s.HasMatrixBuffer())
}

func TestSubmeshInitialiseWithoutInstancing(t *testing.T) {
	s := NewQuad("quad", 1, 1).Submesh(0)
	require.NoError(t, s.Initialise(&fakeFactory{}, 0, buffer.DefaultInstanceLayout))
	assert.False(t, s.HasMatrixBuffer())
	assert.Nil(t, s.MatrixBuffer())
}

func TestMeshInitialiseFailure(t *testing.T) {
	m := NewCube("cube", 1)
	err := m.Initialise(&fakeFactory{fail: errors.New("no vram")}, 0, buffer.DefaultInstanceLayout)
	assert.ErrorContains(t, err, "failed to initialise mesh cube")
	assert.ErrorContains(t, err, "no vram")
}

func TestAnimationClipPose(t *testing.T) {
	skel := &Skeleton{Bones: []Bone{
		{Name: "root", Parent: -1, InverseBind: mgl32.Ident4(), Local: IdentityTransform()},
		{Name: "arm", Parent: 0, InverseBind: mgl32.Ident4(), Local: IdentityTransform()},
	}}
	clip := &AnimationClip{
		Name:     "slide",
		Duration: 2,
		Channels: []AnimationChannel{{
			Bone: 0,
			Translations: []VectorKey{
				{Time: 0, Value: mgl32.Vec3{0, 0, 0}},
				{Time: 2, Value: mgl32.Vec3{2, 0, 0}},
			},
		}},
	}

	palette := clip.Pose(skel, 1, nil)
	require.Len(t, palette, 2)
	assert.InDelta(t, 1, palette[0].Col(3).X(), 1e-6)
	assert.InDelta(t, 1, palette[1].Col(3).X(), 1e-6)
	assert.Equal(t, 1, skel.BoneIndex("arm"))
	assert.Equal(t, -1, skel.BoneIndex("leg"))

	wrapped := clip.Pose(skel, 3, palette)
	assert.InDelta(t, 1, wrapped[0].Col(3).X(), 1e-6)
}

func TestSubmeshHasBoneData(t *testing.T) {
	assert.False(t, NewCube("cube", 1).Submesh(0).HasBoneData())

	m := NewMesh("rigged")
	sm := m.CreateSubmesh(buffer.SkinnedLayout, make([]float32, 3*buffer.SkinnedLayout.Stride()), []uint32{0, 1, 2})
	assert.True(t, sm.HasBoneData())
}
