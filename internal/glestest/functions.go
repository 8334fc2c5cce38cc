// Package glestest provides recording fakes of gles.Functions and
// eglcore.Backend so the pipeline can be exercised without a GPU.
package glestest

import (
	"errors"
	"sync"

	"github.com/matjam/camview/internal/gles"
)

// TexImage records one TexImage2D call.
type TexImage struct {
	Target        uint32
	Texture       uint32
	Width, Height int32
	Pixels        int
}

// MatrixUpload records one UniformMatrix4fv call.
type MatrixUpload struct {
	Program  uint32
	Location int32
	Matrix   [16]float32
}

// Functions records every call made through gles.Functions. Object ids are
// handed out from a single increasing counter per object kind, so ids are
// never reused.
type Functions struct {
	mu sync.Mutex

	// Failure injection.
	InitErr           error
	FailCompile       bool
	FailLink          bool
	FramebufferStatus uint32 // 0 means FRAMEBUFFER_COMPLETE

	calls    []string
	counts   map[string]int
	nextID   map[string]uint32
	textures []uint32
	bound    map[uint32]uint32
	images   []TexImage
	program  uint32
	uploads  []MatrixUpload
	viewport [4]int32
	params   map[uint32]map[uint32]int32
}

var _ gles.Functions = (*Functions)(nil)

func NewFunctions() *Functions {
	f := &Functions{}
	f.Reset()
	return f
}

// Reset forgets every recorded call but keeps the id counters so ids stay
// unique for the lifetime of the fake.
func (f *Functions) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
	f.counts = make(map[string]int)
	if f.nextID == nil {
		f.nextID = make(map[string]uint32)
	}
	f.textures = nil
	f.bound = make(map[uint32]uint32)
	f.images = nil
	f.program = 0
	f.uploads = nil
	f.params = make(map[uint32]map[uint32]int32)
}

func (f *Functions) record(name string) {
	f.calls = append(f.calls, name)
	f.counts[name]++
}

func (f *Functions) gen(kind string) uint32 {
	f.nextID[kind]++
	return f.nextID[kind]
}

// Calls returns the call names in order.
func (f *Functions) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *Functions) Count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[name]
}

func (f *Functions) Total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// Textures returns every texture id handed out since the last Reset.
func (f *Functions) Textures() []uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint32(nil), f.textures...)
}

func (f *Functions) Images() []TexImage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]TexImage(nil), f.images...)
}

// Uploads returns every matrix uniform upload in order.
func (f *Functions) Uploads() []MatrixUpload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]MatrixUpload(nil), f.uploads...)
}

// LastMatrix returns the last matrix uploaded to the named uniform while
// program was in use.
func (f *Functions) LastMatrix(program uint32, name string) ([16]float32, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	loc := UniformLocation(name)
	for i := len(f.uploads) - 1; i >= 0; i-- {
		u := f.uploads[i]
		if u.Program == program && u.Location == loc {
			return u.Matrix, true
		}
	}
	return [16]float32{}, false
}

func (f *Functions) LastViewport() [4]int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewport
}

// TexParameter returns the last value set for pname on texture id.
func (f *Functions) TexParameter(id, pname uint32) (int32, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.params[id][pname]
	return v, ok
}

func (f *Functions) Init() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Init")
	return f.InitErr
}

func (f *Functions) GenTexture() uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GenTexture")
	id := f.gen("texture")
	f.textures = append(f.textures, id)
	return id
}

func (f *Functions) DeleteTexture(id uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteTexture")
}

func (f *Functions) BindTexture(target, id uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("BindTexture")
	f.bound[target] = id
}

func (f *Functions) ActiveTexture(unit uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ActiveTexture")
}

func (f *Functions) TexParameteri(target, pname uint32, param int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("TexParameteri")
	id := f.bound[target]
	if f.params[id] == nil {
		f.params[id] = make(map[uint32]int32)
	}
	f.params[id][pname] = param
}

func (f *Functions) TexImage2D(target uint32, width, height int32, format uint32, pixels []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("TexImage2D")
	f.images = append(f.images, TexImage{
		Target:  target,
		Texture: f.bound[target],
		Width:   width,
		Height:  height,
		Pixels:  len(pixels),
	})
}

func (f *Functions) GenFramebuffer() uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GenFramebuffer")
	return f.gen("framebuffer")
}

func (f *Functions) DeleteFramebuffer(id uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteFramebuffer")
}

func (f *Functions) BindFramebuffer(target, id uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("BindFramebuffer")
	f.bound[target] = id
}

func (f *Functions) FramebufferTexture2D(target, attachment, texTarget, texture uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FramebufferTexture2D")
}

func (f *Functions) CheckFramebufferStatus(target uint32) uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CheckFramebufferStatus")
	if f.FramebufferStatus != 0 {
		return f.FramebufferStatus
	}
	return gles.FRAMEBUFFER_COMPLETE
}

func (f *Functions) GenBuffer() uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GenBuffer")
	return f.gen("buffer")
}

func (f *Functions) DeleteBuffer(id uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteBuffer")
}

func (f *Functions) BindBuffer(target, id uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("BindBuffer")
	f.bound[target] = id
}

func (f *Functions) BufferData(target uint32, data []float32, usage uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("BufferData")
}

func (f *Functions) CreateShader(kind uint32) uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateShader")
	return f.gen("shader")
}

func (f *Functions) ShaderSource(shader uint32, src string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ShaderSource")
}

func (f *Functions) CompileShader(shader uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CompileShader")
}

func (f *Functions) ShaderCompiled(shader uint32) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ShaderCompiled")
	return !f.FailCompile
}

func (f *Functions) ShaderInfoLog(shader uint32) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ShaderInfoLog")
	return "0:1(1): error: fake compile failure\n"
}

func (f *Functions) DeleteShader(shader uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteShader")
}

func (f *Functions) CreateProgram() uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateProgram")
	return f.gen("program")
}

func (f *Functions) AttachShader(program, shader uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("AttachShader")
}

func (f *Functions) LinkProgram(program uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("LinkProgram")
}

func (f *Functions) ProgramLinked(program uint32) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ProgramLinked")
	return !f.FailLink
}

func (f *Functions) ProgramInfoLog(program uint32) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ProgramInfoLog")
	return "error: fake link failure"
}

func (f *Functions) DeleteProgram(program uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteProgram")
}

func (f *Functions) UseProgram(program uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UseProgram")
	f.program = program
}

// Attribute and uniform locations are derived from the name length so they
// are stable and distinct enough for assertions.
func (f *Functions) GetAttribLocation(program uint32, name string) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetAttribLocation")
	return int32(len(name))
}

func (f *Functions) GetUniformLocation(program uint32, name string) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetUniformLocation")
	return UniformLocation(name)
}

// UniformLocation is the location the fake reports for a uniform name.
func UniformLocation(name string) int32 {
	var h int32
	for _, c := range name {
		h = h*31 + c
	}
	if h < 0 {
		h = -h
	}
	return h % 4096
}

func (f *Functions) EnableVertexAttribArray(index uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("EnableVertexAttribArray")
}

func (f *Functions) VertexAttribPointer(index uint32, size int32, stride int32, offset int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("VertexAttribPointer")
}

func (f *Functions) UniformMatrix4fv(location int32, m [16]float32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UniformMatrix4fv")
	f.uploads = append(f.uploads, MatrixUpload{Program: f.program, Location: location, Matrix: m})
}

func (f *Functions) Uniform1i(location int32, v int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Uniform1i")
}

func (f *Functions) Viewport(x, y, width, height int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Viewport")
	f.viewport = [4]int32{x, y, width, height}
}

func (f *Functions) ClearColor(r, g, b, a float32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ClearColor")
}

func (f *Functions) Clear(mask uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Clear")
}

func (f *Functions) DrawArrays(mode uint32, first, count int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DrawArrays")
}

// ErrInjected is a convenience error for failure injection in tests.
var ErrInjected = errors.New("injected failure")
