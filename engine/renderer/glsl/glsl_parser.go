// Package glsl scans GLSL source for the interface declarations a program exposes:
// uniforms, stage inputs and stage outputs. It is not a compiler; it recognizes the
// single-declaration-per-statement style used by the viewer's shaders.
package glsl

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Qualifier is the storage qualifier of a global declaration.
type Qualifier int

const (
	QualifierUniform Qualifier = iota
	QualifierIn
	QualifierOut
)

func (q Qualifier) String() string {
	switch q {
	case QualifierIn:
		return "in"
	case QualifierOut:
		return "out"
	default:
		return "uniform"
	}
}

// Declaration is one global interface variable.
type Declaration struct {
	Qualifier Qualifier
	Type      string
	Name      string
	// Location is the explicit layout location, or -1 when none is given.
	Location int
	// ArraySize is 0 for non-array declarations.
	ArraySize int
}

// Declarations is the ordered list of declarations found in one source.
type Declarations []Declaration

var (
	// lineCommentRegex matches // comments up to the end of the line
	lineCommentRegex = regexp.MustCompile(`//[^\n]*`)

	// blockCommentRegex matches /* */ comments, including multi-line ones
	blockCommentRegex = regexp.MustCompile(`(?s)/\*.*?\*/`)

	// declarationRegex matches a global declaration with an optional layout(location = N) prefix,
	// optional interpolation and precision qualifiers and an optional array size
	declarationRegex = regexp.MustCompile(`(?m)^\s*(?:layout\s*\(\s*location\s*=\s*(\d+)\s*\)\s*)?(?:(?:flat|smooth|noperspective|centroid)\s+)*(uniform|in|out)\s+(?:(?:highp|mediump|lowp)\s+)*(\w+)\s+(\w+)\s*(?:\[\s*(\d+)\s*\])?\s*;`)

	// mainRegex matches the entry point definition
	mainRegex = regexp.MustCompile(`\bvoid\s+main\s*\(\s*(?:void)?\s*\)`)

	// versionRegex matches the #version directive and captures the number and optional profile
	versionRegex = regexp.MustCompile(`(?m)^\s*#version\s+(\d+)(?:\s+(\w+))?`)
)

// StripComments removes line and block comments from source, keeping line structure for block comments.
//
// Parameters:
//   - source: GLSL source text
//
// Returns:
//   - string: the source without comments
func StripComments(source string) string {
	source = blockCommentRegex.ReplaceAllStringFunc(source, func(m string) string {
		return strings.Repeat("\n", strings.Count(m, "\n"))
	})
	return lineCommentRegex.ReplaceAllString(source, "")
}

// Parse extracts the global uniform, in and out declarations from source in source order.
//
// Parameters:
//   - source: GLSL source text
//
// Returns:
//   - Declarations: every declaration found
func Parse(source string) Declarations {
	clean := StripComments(source)
	matches := declarationRegex.FindAllStringSubmatch(clean, -1)
	decls := make(Declarations, 0, len(matches))
	for _, m := range matches {
		d := Declaration{
			Type:     m[3],
			Name:     m[4],
			Location: -1,
		}
		switch m[2] {
		case "in":
			d.Qualifier = QualifierIn
		case "out":
			d.Qualifier = QualifierOut
		default:
			d.Qualifier = QualifierUniform
		}
		if m[1] != "" {
			d.Location, _ = strconv.Atoi(m[1])
		}
		if m[5] != "" {
			d.ArraySize, _ = strconv.Atoi(m[5])
		}
		decls = append(decls, d)
	}
	return decls
}

// HasEntryPoint reports whether source defines void main().
func HasEntryPoint(source string) bool {
	return mainRegex.MatchString(StripComments(source))
}

// Version returns the #version number and profile of source, or 0 and "" when absent.
func Version(source string) (int, string) {
	m := versionRegex.FindStringSubmatch(StripComments(source))
	if m == nil {
		return 0, ""
	}
	v, _ := strconv.Atoi(m[1])
	return v, m[2]
}

// Filter returns the declarations carrying qualifier q.
func (d Declarations) Filter(q Qualifier) Declarations {
	var out Declarations
	for _, decl := range d {
		if decl.Qualifier == q {
			out = append(out, decl)
		}
	}
	return out
}

// Find returns the first declaration named name with qualifier q.
func (d Declarations) Find(q Qualifier, name string) (Declaration, bool) {
	for _, decl := range d {
		if decl.Qualifier == q && decl.Name == name {
			return decl, true
		}
	}
	return Declaration{}, false
}

// Names returns the declaration names sorted alphabetically, without duplicates.
func (d Declarations) Names() []string {
	seen := make(map[string]struct{}, len(d))
	names := make([]string, 0, len(d))
	for _, decl := range d {
		if _, ok := seen[decl.Name]; ok {
			continue
		}
		seen[decl.Name] = struct{}{}
		names = append(names, decl.Name)
	}
	sort.Strings(names)
	return names
}
