package shader

import (
	"io/fs"
	"log/slog"
)

// ProgramBuilderOption is a functional option applied to a program during construction via NewProgram.
type ProgramBuilderOption func(*program)

// WithName sets the label used in logs, errors and leak reports.
//
// Parameters:
//   - name: the program name
//
// Returns:
//   - ProgramBuilderOption: a function that applies the name option to a program
func WithName(name string) ProgramBuilderOption {
	return func(p *program) {
		if name != "" {
			p.name = name
		}
	}
}

// WithLogger overrides the logger inherited from the renderer.
//
// Parameters:
//   - logger: the logger to use; nil keeps the renderer's logger
//
// Returns:
//   - ProgramBuilderOption: a function that applies the logger option to a program
func WithLogger(logger *slog.Logger) ProgramBuilderOption {
	return func(p *program) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithIncludes adds roots searched for @oxy:include chunks, before the embedded chunks.
//
// Parameters:
//   - roots: file systems holding <name>.glsl files
//
// Returns:
//   - ProgramBuilderOption: a function that applies the include option to a program
func WithIncludes(roots ...fs.FS) ProgramBuilderOption {
	return func(p *program) {
		p.includes = append(p.includes, roots...)
	}
}
