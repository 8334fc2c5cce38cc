package preview

const vertexShaderSrc = `
    attribute vec4 aVertexCoordinate;
    attribute vec4 aTextureCoordinate;
    uniform mat4 uVertexMatrix;
    uniform mat4 uTextureMatrix;
    varying vec2 vTextureCoordinate;

    void main() {
        gl_Position = uVertexMatrix * aVertexCoordinate;
        vTextureCoordinate = (uTextureMatrix * aTextureCoordinate).xy;
    }
`

const externalFragmentShaderSrc = `
    #extension GL_OES_EGL_image_external : require
    precision mediump float;
    varying vec2 vTextureCoordinate;
    uniform samplerExternalOES uTexture;

    void main() {
        gl_FragColor = texture2D(uTexture, vTextureCoordinate);
    }
`

const fragmentShaderSrc = `
    precision mediump float;
    varying vec2 vTextureCoordinate;
    uniform sampler2D uTexture;

    void main() {
        gl_FragColor = texture2D(uTexture, vTextureCoordinate);
    }
`

const (
	attribVertex   = "aVertexCoordinate"
	attribTexture  = "aTextureCoordinate"
	uniformVertex  = "uVertexMatrix"
	uniformTexture = "uTextureMatrix"
	uniformSampler = "uTexture"
)

// Full screen quad as a triangle strip, followed by its texture coordinates.
var quad = []float32{
	-1, 1,
	-1, -1,
	1, 1,
	1, -1,

	0, 1,
	0, 0,
	1, 1,
	1, 0,
}

const (
	quadVertices     = 4
	quadCoordsOffset = 0
	quadTexOffset    = 8 * 4 // bytes
)
