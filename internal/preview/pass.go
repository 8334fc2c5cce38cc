package preview

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/matjam/camview/internal/gles"
)

// pass holds the program and vertex buffer shared by both draw stages.
type pass struct {
	gl         gles.Functions
	fragment   string
	texTarget  uint32
	program    uint32
	vbo        uint32
	aVertex    int32
	aTexture   int32
	uVertex    int32
	uTexMatrix int32
	uSampler   int32
}

// reset forgets every object id. The objects themselves died with the old
// context.
func (p *pass) reset() {
	p.program = 0
	p.vbo = 0
}

// setup builds the program and vbo, each at most once per context.
func (p *pass) setup() error {
	if p.program == 0 {
		prog, err := gles.CreateProgram(p.gl, vertexShaderSrc, p.fragment)
		if err != nil {
			return fmt.Errorf("create program: %w", err)
		}
		p.program = prog
		p.aVertex = p.gl.GetAttribLocation(prog, attribVertex)
		p.aTexture = p.gl.GetAttribLocation(prog, attribTexture)
		p.uVertex = p.gl.GetUniformLocation(prog, uniformVertex)
		p.uTexMatrix = p.gl.GetUniformLocation(prog, uniformTexture)
		p.uSampler = p.gl.GetUniformLocation(prog, uniformSampler)
	}

	if p.vbo == 0 {
		vbo := p.gl.GenBuffer()
		if vbo == 0 {
			return fmt.Errorf("glGenBuffers returned 0")
		}
		p.gl.BindBuffer(gles.ARRAY_BUFFER, vbo)
		p.gl.BufferData(gles.ARRAY_BUFFER, quad, gles.STATIC_DRAW)
		p.gl.BindBuffer(gles.ARRAY_BUFFER, 0)
		p.vbo = vbo
	}
	return nil
}

func (p *pass) ready() bool {
	return p.program != 0 && p.vbo != 0
}

// drawQuad samples textureID through the current program into whatever
// framebuffer is bound.
func (p *pass) drawQuad(textureID uint32, textureMatrix, vertexMatrix mgl32.Mat4) {
	p.gl.UseProgram(p.program)

	p.gl.ActiveTexture(gles.TEXTURE0)
	p.gl.BindTexture(p.texTarget, textureID)
	p.gl.Uniform1i(p.uSampler, 0)
	p.gl.UniformMatrix4fv(p.uVertex, vertexMatrix)
	p.gl.UniformMatrix4fv(p.uTexMatrix, textureMatrix)

	p.gl.BindBuffer(gles.ARRAY_BUFFER, p.vbo)
	p.gl.EnableVertexAttribArray(uint32(p.aVertex))
	p.gl.VertexAttribPointer(uint32(p.aVertex), 2, 0, quadCoordsOffset)
	p.gl.EnableVertexAttribArray(uint32(p.aTexture))
	p.gl.VertexAttribPointer(uint32(p.aTexture), 2, 0, quadTexOffset)

	p.gl.DrawArrays(gles.TRIANGLE_STRIP, 0, quadVertices)

	p.gl.BindBuffer(gles.ARRAY_BUFFER, 0)
	p.gl.BindTexture(p.texTarget, 0)
}

func (p *pass) release() {
	if p.program != 0 {
		p.gl.DeleteProgram(p.program)
	}
	if p.vbo != 0 {
		p.gl.DeleteBuffer(p.vbo)
	}
	p.reset()
}
