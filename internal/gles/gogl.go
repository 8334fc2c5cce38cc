package gles

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v3.1/gles2"
)

// GL implements Functions on top of go-gl's GLES2 bindings. Every call must
// happen on the OS thread holding the current context.
type GL struct{}

func (GL) Init() error {
	if err := gles2.Init(); err != nil {
		return fmt.Errorf("gles2 init failed: %w", err)
	}
	return nil
}

func (GL) GenTexture() uint32 {
	var id uint32
	gles2.GenTextures(1, &id)
	return id
}

func (GL) DeleteTexture(id uint32) {
	gles2.DeleteTextures(1, &id)
}

func (GL) BindTexture(target, id uint32) {
	gles2.BindTexture(target, id)
}

func (GL) ActiveTexture(unit uint32) {
	gles2.ActiveTexture(unit)
}

func (GL) TexParameteri(target, pname uint32, param int32) {
	gles2.TexParameteri(target, pname, param)
}

func (GL) TexImage2D(target uint32, width, height int32, format uint32, pixels []byte) {
	var ptr unsafe.Pointer
	if len(pixels) > 0 {
		ptr = gles2.Ptr(pixels)
	}
	gles2.TexImage2D(target, 0, int32(format), width, height, 0, format, UNSIGNED_BYTE, ptr)
}

func (GL) GenFramebuffer() uint32 {
	var id uint32
	gles2.GenFramebuffers(1, &id)
	return id
}

func (GL) DeleteFramebuffer(id uint32) {
	gles2.DeleteFramebuffers(1, &id)
}

func (GL) BindFramebuffer(target, id uint32) {
	gles2.BindFramebuffer(target, id)
}

func (GL) FramebufferTexture2D(target, attachment, texTarget, texture uint32) {
	gles2.FramebufferTexture2D(target, attachment, texTarget, texture, 0)
}

func (GL) CheckFramebufferStatus(target uint32) uint32 {
	return gles2.CheckFramebufferStatus(target)
}

func (GL) GenBuffer() uint32 {
	var id uint32
	gles2.GenBuffers(1, &id)
	return id
}

func (GL) DeleteBuffer(id uint32) {
	gles2.DeleteBuffers(1, &id)
}

func (GL) BindBuffer(target, id uint32) {
	gles2.BindBuffer(target, id)
}

func (GL) BufferData(target uint32, data []float32, usage uint32) {
	gles2.BufferData(target, len(data)*4, gles2.Ptr(data), usage)
}

func (GL) CreateShader(kind uint32) uint32 {
	return gles2.CreateShader(kind)
}

func (GL) ShaderSource(shader uint32, src string) {
	csrc, free := gles2.Strs(src + "\x00")
	defer free()
	gles2.ShaderSource(shader, 1, csrc, nil)
}

func (GL) CompileShader(shader uint32) {
	gles2.CompileShader(shader)
}

func (GL) ShaderCompiled(shader uint32) bool {
	var status int32
	gles2.GetShaderiv(shader, gles2.COMPILE_STATUS, &status)
	return status != gles2.FALSE
}

func (GL) ShaderInfoLog(shader uint32) string {
	var logLen int32
	gles2.GetShaderiv(shader, gles2.INFO_LOG_LENGTH, &logLen)
	if logLen == 0 {
		return ""
	}
	buf := make([]uint8, logLen+1)
	gles2.GetShaderInfoLog(shader, logLen, nil, &buf[0])
	return gles2.GoStr(&buf[0])
}

func (GL) DeleteShader(shader uint32) {
	gles2.DeleteShader(shader)
}

func (GL) CreateProgram() uint32 {
	return gles2.CreateProgram()
}

func (GL) AttachShader(program, shader uint32) {
	gles2.AttachShader(program, shader)
}

func (GL) LinkProgram(program uint32) {
	gles2.LinkProgram(program)
}

func (GL) ProgramLinked(program uint32) bool {
	var status int32
	gles2.GetProgramiv(program, gles2.LINK_STATUS, &status)
	return status != gles2.FALSE
}

func (GL) ProgramInfoLog(program uint32) string {
	var logLen int32
	gles2.GetProgramiv(program, gles2.INFO_LOG_LENGTH, &logLen)
	if logLen == 0 {
		return ""
	}
	buf := make([]uint8, logLen+1)
	gles2.GetProgramInfoLog(program, logLen, nil, &buf[0])
	return gles2.GoStr(&buf[0])
}

func (GL) DeleteProgram(program uint32) {
	gles2.DeleteProgram(program)
}

func (GL) UseProgram(program uint32) {
	gles2.UseProgram(program)
}

func (GL) GetAttribLocation(program uint32, name string) int32 {
	return gles2.GetAttribLocation(program, gles2.Str(name+"\x00"))
}

func (GL) GetUniformLocation(program uint32, name string) int32 {
	return gles2.GetUniformLocation(program, gles2.Str(name+"\x00"))
}

func (GL) EnableVertexAttribArray(index uint32) {
	gles2.EnableVertexAttribArray(index)
}

func (GL) VertexAttribPointer(index uint32, size int32, stride int32, offset int) {
	gles2.VertexAttribPointer(index, size, gles2.FLOAT, false, stride, gles2.PtrOffset(offset))
}

func (GL) UniformMatrix4fv(location int32, m [16]float32) {
	gles2.UniformMatrix4fv(location, 1, false, &m[0])
}

func (GL) Uniform1i(location int32, v int32) {
	gles2.Uniform1i(location, v)
}

func (GL) Viewport(x, y, width, height int32) {
	gles2.Viewport(x, y, width, height)
}

func (GL) ClearColor(r, g, b, a float32) {
	gles2.ClearColor(r, g, b, a)
}

func (GL) Clear(mask uint32) {
	gles2.Clear(mask)
}

func (GL) DrawArrays(mode uint32, first, count int32) {
	gles2.DrawArrays(mode, first, count)
}
