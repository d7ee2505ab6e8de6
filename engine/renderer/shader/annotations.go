// annotations.go defines the annotation types and the parser for the GLSL pre-processor.
// Annotations are single-line GLSL comments prefixed with @oxy: so that an annotated
// shader is still valid GLSL for tools that never run the pre-processor.
package shader

import (
	"fmt"
	"strings"
)

// annotationPrefix is the marker that identifies an Oxy annotation within a GLSL comment line.
// Every annotation must appear on a line beginning with "//" followed by this prefix.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a GLSL comment line.
type AnnotationType string

const (
	// AnnotationTypeInclude injects a shared GLSL chunk at the annotation site. The chunk
	// <name>.glsl is looked up in the pre-processor's include roots. A chunk is emitted at most
	// once per stage, so two chunks may include a common one.
	//
	// Syntax: //@oxy:include <name>
	//
	// Example: //@oxy:include lighting
	AnnotationTypeInclude AnnotationType = "include"

	// AnnotationTypeDefine emits a #define, letting a chunk be parameterised by the including stage.
	//
	// Syntax: //@oxy:define <NAME> [value]
	//
	// Example: //@oxy:define AMBIENT 0.25
	AnnotationTypeDefine AnnotationType = "define"
)

// Annotation is a single parsed @oxy: annotation.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Args holds the whitespace-separated arguments after the type.
	//   - include: [0] = chunk name
	//   - define:  [0] = macro name, [1:] = replacement text
	Args []string

	// Line is the 1-based line in the source where the annotation was found.
	Line int
}

// parseAnnotation parses line as an annotation. It returns nil, nil for ordinary lines, including
// comments that do not carry the prefix.
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	body, ok := strings.CutPrefix(trimmed, "//")
	if !ok {
		return nil, nil
	}
	body, ok = strings.CutPrefix(strings.TrimSpace(body), annotationPrefix)
	if !ok {
		return nil, nil
	}

	fields := strings.Fields(body)
	if len(fields) == 0 {
		return nil, fmt.Errorf("line %d: empty annotation", lineNum)
	}
	a := &Annotation{Type: AnnotationType(fields[0]), Args: fields[1:], Line: lineNum}

	switch a.Type {
	case AnnotationTypeInclude:
		if len(a.Args) != 1 {
			return nil, fmt.Errorf("line %d: @oxy:include takes exactly one chunk name, got %d", lineNum, len(a.Args))
		}
		if strings.ContainsAny(a.Args[0], `/\.`) {
			return nil, fmt.Errorf("line %d: @oxy:include chunk %q must be a bare name", lineNum, a.Args[0])
		}
	case AnnotationTypeDefine:
		if len(a.Args) == 0 {
			return nil, fmt.Errorf("line %d: @oxy:define needs a macro name", lineNum)
		}
	default:
		return nil, fmt.Errorf("line %d: unknown annotation type %q", lineNum, a.Type)
	}
	return a, nil
}
