// Package assets embeds the viewer's default GLSL shaders.
package assets

import (
	"embed"
	"io/fs"
	"path"

	"github.com/pkg/errors"
)

//go:embed shaders/*.vert shaders/*.frag shaders/include/*.glsl
var shaders embed.FS

// Shaders returns the embedded shader directory, rooted so that "basic.vert" resolves.
func Shaders() fs.FS {
	sub, err := fs.Sub(shaders, "shaders")
	if err != nil {
		panic(err)
	}
	return sub
}

// Includes returns the embedded @oxy:include chunks, rooted so that "lighting.glsl" resolves.
func Includes() fs.FS {
	sub, err := fs.Sub(shaders, "shaders/include")
	if err != nil {
		panic(err)
	}
	return sub
}

// ShaderPair reads the embedded vertex and fragment sources for name, e.g. "basic" or "sky".
//
// Parameters:
//   - name: the shader base name
//
// Returns:
//   - string: vertex source
//   - string: fragment source
//   - error: if either file is not embedded
func ShaderPair(name string) (string, string, error) {
	vs, err := fs.ReadFile(shaders, path.Join("shaders", name+".vert"))
	if err != nil {
		return "", "", errors.Wrapf(err, "embedded shader %s", name)
	}
	fsrc, err := fs.ReadFile(shaders, path.Join("shaders", name+".frag"))
	if err != nil {
		return "", "", errors.Wrapf(err, "embedded shader %s", name)
	}
	return string(vs), string(fsrc), nil
}
