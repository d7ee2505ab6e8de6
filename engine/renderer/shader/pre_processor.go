// pre_processor.go implements the GLSL shader pre-processor. It scans shader source for
// @oxy: annotations, replaces includes with the text of shared chunks and defines with
// #define lines, and records what it resolved so callers can report it.
package shader

import (
	"fmt"
	"io/fs"
	"strings"
)

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// roots are searched in order for <name>.glsl
	roots []fs.FS

	// declarations accumulates the annotations seen during a Process call, in source order.
	declarations []Annotation
}

// PreProcessor expands @oxy: annotations in GLSL source before compilation.
type PreProcessor interface {
	// Process expands every annotation in source. Included chunks are expanded recursively; a chunk
	// already emitted for this source is skipped and an include cycle is an error.
	//
	// The declarations list is reset at the start of each call and can be retrieved
	// via Declarations() after Process returns.
	//
	// Parameters:
	//   - source: the raw GLSL source
	//
	// Returns:
	//   - string: the expanded source
	//   - error: a malformed annotation, an unknown chunk or an include cycle
	Process(source string) (string, error)

	// Declarations returns the annotations processed during the most recent call to Process,
	// including those found inside chunks, in expansion order.
	//
	// Returns:
	//   - []Annotation: the annotations of the last Process call
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor resolving includes against roots, earliest root first.
//
// Parameters:
//   - roots: file systems holding <name>.glsl chunks
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor(roots ...fs.FS) PreProcessor {
	return &preProcessor{roots: roots}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]
	emitted := make(map[string]bool)
	out, err := p.expand(source, "", emitted, nil)
	if err != nil {
		return "", err
	}
	return strings.Join(out, "\n"), nil
}

// expand processes one source text. chunk names the text being expanded ("" for the stage itself)
// and stack holds the chunks currently being expanded, for cycle detection.
func (p *preProcessor) expand(source, chunk string, emitted map[string]bool, stack []string) ([]string, error) {
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return nil, wrapChunk(chunk, err)
		}
		if a == nil {
			out = append(out, line)
			continue
		}
		p.declarations = append(p.declarations, *a)

		switch a.Type {
		case AnnotationTypeInclude:
			name := a.Args[0]
			for _, open := range stack {
				if open == name {
					return nil, wrapChunk(chunk, fmt.Errorf("line %d: include cycle %s -> %s", a.Line, strings.Join(stack, " -> "), name))
				}
			}
			if emitted[name] {
				continue
			}
			text, err := p.readChunk(name)
			if err != nil {
				return nil, wrapChunk(chunk, fmt.Errorf("line %d: %w", a.Line, err))
			}
			emitted[name] = true
			inner, err := p.expand(text, name, emitted, append(stack, name))
			if err != nil {
				return nil, err
			}
			out = append(out, inner...)
		case AnnotationTypeDefine:
			out = append(out, strings.TrimSpace("#define "+strings.Join(a.Args, " ")))
		}
	}
	return out, nil
}

func (p *preProcessor) readChunk(name string) (string, error) {
	for _, root := range p.roots {
		data, err := fs.ReadFile(root, name+".glsl")
		if err == nil {
			return strings.TrimRight(string(data), "\n"), nil
		}
	}
	return "", fmt.Errorf("unknown @oxy:include chunk %q", name)
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}

func wrapChunk(chunk string, err error) error {
	if chunk == "" {
		return err
	}
	return fmt.Errorf("in chunk %s: %w", chunk, err)
}
