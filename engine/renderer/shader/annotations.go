// annotations.go defines the annotations understood by the WGSL pre-processor. Annotations
// are single-line WGSL comments prefixed with @echo: that inject shared struct source and
// generate bind group declarations, so the Go side and the shaders name bindings once.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix is the marker that identifies an annotation within a WGSL comment line.
const annotationPrefix = "@echo:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects the WGSL source of a registered struct at the annotation site.
	// It produces no declaration.
	//
	// Syntax: //@echo:include <struct_type>
	//
	// Example: //@echo:include types
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a @group/@binding variable declaration and records
	// it in the PreProcessor's declarations list.
	//
	// Syntax: //@echo:group <group> <binding> <address_space> <var_name> <type>
	//
	// Example: //@echo:group 0 1 storage_read hits array<hit_record>
	AnnotationTypeBindingGroup AnnotationType = "group"
)

// Annotation is a single parsed annotation.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - include: [0] = struct type key
	//   - group:   [0] = address space, [1] = var name, [2] = struct type key, optionally wrapped in array<>
	Args []AnnotationArg

	// Line is the 1-based source line the annotation was found on.
	Line int

	// Group is the @group index of a group annotation. Nil for include annotations.
	Group *int

	// Binding is the @binding index of a group annotation. Nil for include annotations.
	Binding *int
}

// AnnotationArg is an annotation argument: a struct type key, an address space or a variable name.
type AnnotationArg string

// Address spaces accepted by group annotations.
const (
	// AnnotationArgStorageTypeUniform maps to var<uniform>.
	AnnotationArgStorageTypeUniform AnnotationArg = "storage_uniform"

	// AnnotationArgStorageTypeRead maps to var<storage, read>.
	AnnotationArgStorageTypeRead AnnotationArg = "storage_read"

	// AnnotationArgStorageTypeReadWrite maps to var<storage, read_write>.
	AnnotationArgStorageTypeReadWrite AnnotationArg = "storage_read_write"
)

var validAddressSpaces = []AnnotationArg{
	AnnotationArgStorageTypeUniform,
	AnnotationArgStorageTypeRead,
	AnnotationArgStorageTypeReadWrite,
}

// elementType strips an array<> wrapper from a type argument.
func (a AnnotationArg) elementType() (AnnotationArg, bool) {
	inner, ok := strings.CutPrefix(string(a), "array<")
	if !ok {
		return a, false
	}
	return AnnotationArg(strings.TrimSuffix(inner, ">")), true
}

// parseAnnotation attempts to parse a single line of WGSL source as an annotation.
// Lines without the annotation prefix yield nil and no error. Struct type keys are
// checked later against the pre-processor's registry.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, nil
	}
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @echo annotation", lineNum)
	}

	switch args[0] {
	case string(annotationTypeInclude):
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @echo include annotation requires exactly one argument", lineNum)
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	case string(AnnotationTypeBindingGroup):
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @echo group annotation requires exactly five arguments (group, binding, address space, var name, type)", lineNum)
		}
		groupInt, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid group number %q in @echo group annotation: %v", lineNum, args[1], err)
		}
		bindingInt, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid binding number %q in @echo group annotation: %v", lineNum, args[2], err)
		}
		if !slices.Contains(validAddressSpaces, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown address space %q in @echo group annotation", lineNum, args[3])
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @echo annotation type %q", lineNum, args[0])
	}
}
