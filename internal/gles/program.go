package gles

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrCompile = errors.New("shader compile error")
	ErrLink    = errors.New("program link error")
)

func compileShader(gl Functions, kind uint32, src string) (uint32, error) {
	shader := gl.CreateShader(kind)
	if shader == 0 {
		return 0, fmt.Errorf("%w: glCreateShader returned 0", ErrCompile)
	}
	gl.ShaderSource(shader, src)
	gl.CompileShader(shader)

	if !gl.ShaderCompiled(shader) {
		info := strings.TrimSpace(gl.ShaderInfoLog(shader))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%w: %s", ErrCompile, info)
	}
	return shader, nil
}

// CreateProgram compiles and links a vertex/fragment pair. The shader objects
// are released once the program is linked.
func CreateProgram(gl Functions, vertexSrc, fragmentSrc string) (uint32, error) {
	vs, err := compileShader(gl, VERTEX_SHADER, vertexSrc)
	if err != nil {
		return 0, fmt.Errorf("vertex shader: %w", err)
	}
	fs, err := compileShader(gl, FRAGMENT_SHADER, fragmentSrc)
	if err != nil {
		gl.DeleteShader(vs)
		return 0, fmt.Errorf("fragment shader: %w", err)
	}
	defer gl.DeleteShader(vs)
	defer gl.DeleteShader(fs)

	prog := gl.CreateProgram()
	if prog == 0 {
		return 0, fmt.Errorf("%w: glCreateProgram returned 0", ErrLink)
	}
	gl.AttachShader(prog, vs)
	gl.AttachShader(prog, fs)
	gl.LinkProgram(prog)

	if !gl.ProgramLinked(prog) {
		info := strings.TrimSpace(gl.ProgramInfoLog(prog))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("%w: %s", ErrLink, info)
	}
	return prog, nil
}
