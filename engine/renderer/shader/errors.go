package shader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
)

// CompileError reports a shader stage that failed to compile. Log is the compiler info log.
type CompileError struct {
	Program string
	Stage   renderer.ShaderStage
	Log     string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("shader %q: %s stage failed to compile: %s", e.Program, e.Stage, e.Log)
}

// LinkError reports a program that failed to link. Log is the linker info log.
type LinkError struct {
	Program string
	Log     string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("shader %q: failed to link: %s", e.Program, e.Log)
}
