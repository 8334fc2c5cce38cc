// Package gles is the subset of OpenGL ES 2.0 the preview pipeline uses. The
// indirection lets the pipeline run against go-gl on a real context and
// against a recording fake in tests.
package gles

// Enum values shared by every implementation. They match the GLES2 headers.
const (
	TEXTURE_2D           uint32 = 0x0DE1
	TEXTURE_EXTERNAL_OES uint32 = 0x8D65
	TEXTURE0             uint32 = 0x84C0

	TEXTURE_MIN_FILTER uint32 = 0x2801
	TEXTURE_MAG_FILTER uint32 = 0x2800
	TEXTURE_WRAP_S     uint32 = 0x2802
	TEXTURE_WRAP_T     uint32 = 0x2803
	NEAREST            int32  = 0x2600
	LINEAR             int32  = 0x2601
	CLAMP_TO_EDGE      int32  = 0x812F

	RGBA          uint32 = 0x1908
	UNSIGNED_BYTE uint32 = 0x1401
	FLOAT         uint32 = 0x1406

	FRAMEBUFFER          uint32 = 0x8D40
	COLOR_ATTACHMENT0    uint32 = 0x8CE0
	FRAMEBUFFER_COMPLETE uint32 = 0x8CD5

	ARRAY_BUFFER uint32 = 0x8892
	STATIC_DRAW  uint32 = 0x88E4

	VERTEX_SHADER   uint32 = 0x8B31
	FRAGMENT_SHADER uint32 = 0x8B30

	COLOR_BUFFER_BIT uint32 = 0x4000
	TRIANGLE_STRIP   uint32 = 0x0005
)

// Functions is implemented by GL (go-gl backed) and glestest.Functions.
// Object creation returns 0 on failure, like the C API.
type Functions interface {
	// Init loads the entry points. It needs a current context.
	Init() error

	GenTexture() uint32
	DeleteTexture(id uint32)
	BindTexture(target, id uint32)
	ActiveTexture(unit uint32)
	TexParameteri(target, pname uint32, param int32)
	TexImage2D(target uint32, width, height int32, format uint32, pixels []byte)

	GenFramebuffer() uint32
	DeleteFramebuffer(id uint32)
	BindFramebuffer(target, id uint32)
	FramebufferTexture2D(target, attachment, texTarget, texture uint32)
	CheckFramebufferStatus(target uint32) uint32

	GenBuffer() uint32
	DeleteBuffer(id uint32)
	BindBuffer(target, id uint32)
	BufferData(target uint32, data []float32, usage uint32)

	CreateShader(kind uint32) uint32
	ShaderSource(shader uint32, src string)
	CompileShader(shader uint32)
	ShaderCompiled(shader uint32) bool
	ShaderInfoLog(shader uint32) string
	DeleteShader(shader uint32)

	CreateProgram() uint32
	AttachShader(program, shader uint32)
	LinkProgram(program uint32)
	ProgramLinked(program uint32) bool
	ProgramInfoLog(program uint32) string
	DeleteProgram(program uint32)
	UseProgram(program uint32)

	GetAttribLocation(program uint32, name string) int32
	GetUniformLocation(program uint32, name string) int32
	EnableVertexAttribArray(index uint32)
	VertexAttribPointer(index uint32, size int32, stride int32, offset int)
	UniformMatrix4fv(location int32, m [16]float32)
	Uniform1i(location int32, v int32)

	Viewport(x, y, width, height int32)
	ClearColor(r, g, b, a float32)
	Clear(mask uint32)
	DrawArrays(mode uint32, first, count int32)
}
