package opengl

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// program is a linked GL program with a uniform location cache.
type program struct {
	name      string
	id        uint32
	locations map[string]int32
}

var _ shader.Program = &program{}

// compileProgram compiles and links the two stages of src.
func compileProgram(name string, src shader.ProgramSource) (*program, error) {
	vs, err := compileStage(gl.VERTEX_SHADER, src.Vertex)
	if err != nil {
		return nil, fmt.Errorf("failed to compile program %s: %w", name, err)
	}
	defer gl.DeleteShader(vs)
	fs, err := compileStage(gl.FRAGMENT_SHADER, src.Fragment)
	if err != nil {
		return nil, fmt.Errorf("failed to compile program %s: %w", name, err)
	}
	defer gl.DeleteShader(fs)

	id := gl.CreateProgram()
	if id == 0 {
		return nil, fmt.Errorf("failed to create program %s: GL error %d", name, gl.GetError())
	}
	gl.AttachShader(id, vs)
	gl.AttachShader(id, fs)
	gl.LinkProgram(id)
	gl.DetachShader(id, vs)
	gl.DetachShader(id, fs)

	var status int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &status)
	if !glBool(status) {
		var length int32
		gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &length)
		log := strings.Repeat("\x00", int(length)+1)
		gl.GetProgramInfoLog(id, length, nil, gl.Str(log))
		gl.DeleteProgram(id)
		return nil, fmt.Errorf("failed to link program %s: %s", name, strings.TrimRight(log, "\x00"))
	}
	return &program{name: name, id: id, locations: make(map[string]int32)}, nil
}

func compileStage(stage uint32, source string) (uint32, error) {
	id := gl.CreateShader(stage)
	if id == 0 {
		return 0, fmt.Errorf("failed to create %s shader: GL error %d", StageName(stage), gl.GetError())
	}
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(id, 1, csources, nil)
	free()
	gl.CompileShader(id)

	var status int32
	gl.GetShaderiv(id, gl.COMPILE_STATUS, &status)
	if !glBool(status) {
		var length int32
		gl.GetShaderiv(id, gl.INFO_LOG_LENGTH, &length)
		log := strings.Repeat("\x00", int(length)+1)
		gl.GetShaderInfoLog(id, length, nil, gl.Str(log))
		gl.DeleteShader(id)
		return 0, fmt.Errorf("%s shader: %s", StageName(stage), strings.TrimRight(log, "\x00"))
	}
	return id, nil
}

func (p *program) Name() string {
	return p.name
}

func (p *program) Bind() {
	gl.UseProgram(p.id)
}

func (p *program) Unbind() {
	gl.UseProgram(0)
}

// location returns the cached uniform location, -1 for uniforms the program lacks.
func (p *program) location(name string) int32 {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(p.id, gl.Str(name+"\x00"))
	p.locations[name] = loc
	return loc
}

func (p *program) SetMat4(name string, m mgl32.Mat4) {
	if loc := p.location(name); loc >= 0 {
		gl.UniformMatrix4fv(loc, 1, false, &m[0])
	}
}

func (p *program) SetMat4Array(name string, m []mgl32.Mat4) {
	if len(m) == 0 {
		return
	}
	if loc := p.location(name); loc >= 0 {
		gl.UniformMatrix4fv(loc, int32(len(m)), false, &m[0][0])
	}
}

func (p *program) SetVec2(name string, v mgl32.Vec2) {
	if loc := p.location(name); loc >= 0 {
		gl.Uniform2fv(loc, 1, &v[0])
	}
}

func (p *program) SetVec3(name string, v mgl32.Vec3) {
	if loc := p.location(name); loc >= 0 {
		gl.Uniform3fv(loc, 1, &v[0])
	}
}

func (p *program) SetVec4(name string, v mgl32.Vec4) {
	if loc := p.location(name); loc >= 0 {
		gl.Uniform4fv(loc, 1, &v[0])
	}
}

func (p *program) SetFloat(name string, v float32) {
	if loc := p.location(name); loc >= 0 {
		gl.Uniform1f(loc, v)
	}
}

func (p *program) SetInt(name string, v int32) {
	if loc := p.location(name); loc >= 0 {
		gl.Uniform1i(loc, v)
	}
}

func (p *program) Release() {
	if p.id != 0 {
		gl.DeleteProgram(p.id)
		p.id = 0
	}
}
