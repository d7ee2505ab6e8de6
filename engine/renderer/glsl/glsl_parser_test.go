package glsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const source = `#version 410 core
// uniform vec3 commented;
layout(location = 0) in vec3 aPos;
layout (location=1) in vec3 aNormal;
/* uniform mat4 blockCommented;
   still comment */
uniform mat4 model;
uniform highp vec4 color;
uniform float weights[4];
flat out vec3 Normal;

void main()
{
    Normal = aNormal;
}
`

func TestParse(t *testing.T) {
	decls := Parse(source)

	inputs := decls.Filter(QualifierIn)
	require.Len(t, inputs, 2)
	assert.Equal(t, Declaration{Qualifier: QualifierIn, Type: "vec3", Name: "aPos", Location: 0}, inputs[0])
	assert.Equal(t, 1, inputs[1].Location)

	uniforms := decls.Filter(QualifierUniform)
	assert.Equal(t, []string{"color", "model", "weights"}, uniforms.Names())
	w, ok := decls.Find(QualifierUniform, "weights")
	require.True(t, ok)
	assert.Equal(t, 4, w.ArraySize)
	assert.Equal(t, -1, w.Location)

	out, ok := decls.Find(QualifierOut, "Normal")
	require.True(t, ok)
	assert.Equal(t, "vec3", out.Type)

	_, ok = decls.Find(QualifierUniform, "commented")
	assert.False(t, ok)
	_, ok = decls.Find(QualifierUniform, "blockCommented")
	assert.False(t, ok)
}

func TestHasEntryPointAndVersion(t *testing.T) {
	assert.True(t, HasEntryPoint(source))
	assert.False(t, HasEntryPoint("// void main()\nvoid helper() {}"))

	v, profile := Version(source)
	assert.Equal(t, 410, v)
	assert.Equal(t, "core", profile)

	v, profile = Version("void main() {}")
	assert.Zero(t, v)
	assert.Empty(t, profile)
}

func TestStripCommentsKeepsLines(t *testing.T) {
	in := "a /* x\ny */ b // z\nc"
	assert.Equal(t, "a \n b \nc", StripComments(in))
}
