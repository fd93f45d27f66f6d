// pre_processor.go implements the WGSL shader pre-processor. It scans shader source for
// @echo: annotations, replaces them with registered struct source or generated binding
// declarations, and collects the declarations so callers can check their bind groups
// against what the shader expects.
//
// The pre-processor keeps two registries:
//   - structRegistry: maps AnnotationArg keys to WGSL struct source and the resolved type name.
//     Used by @echo:include (to inject the source) and @echo:group (to resolve the type name).
//   - addressSpaceRegistry: maps address space argument keys to WGSL var<> syntax strings.
package shader

import (
	"fmt"
	"strings"
)

// registryEntry pairs a WGSL struct source string with the type name used in generated declarations.
// Entries with an empty Source can only be referenced by group annotations.
type registryEntry struct {
	Source string
	Type   string
}

type preProcessor struct {
	structRegistry       map[AnnotationArg]registryEntry
	addressSpaceRegistry map[AnnotationArg]string

	// declarations is reset at the start of each Process call.
	declarations []Annotation
}

// PreProcessor turns annotated WGSL into plain WGSL.
type PreProcessor interface {
	// Process replaces every annotation in source. Include annotations become the registered
	// struct source and group annotations become @group/@binding declarations.
	// The declarations list is reset at the start of each call.
	//
	// Parameters:
	//   - source: the annotated WGSL source
	//
	// Returns:
	//   - string: the processed WGSL source
	//   - error: an error if an annotation is malformed or references an unregistered type
	Process(source string) (string, error)

	// Declarations returns the group annotations of the most recent Process call, in source order.
	//
	// Returns:
	//   - []Annotation: the declarations collected during the last Process call
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor. Struct types are registered with WithStruct.
//
// Parameters:
//   - options: functional options registering struct types
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor(options ...PreProcessorBuilderOption) PreProcessor {
	p := &preProcessor{
		structRegistry: make(map[AnnotationArg]registryEntry),
		addressSpaceRegistry: map[AnnotationArg]string{
			AnnotationArgStorageTypeUniform:   "var<uniform>",
			AnnotationArgStorageTypeRead:      "var<storage, read>",
			AnnotationArgStorageTypeReadWrite: "var<storage, read_write>",
		},
	}
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			entry, ok := p.structRegistry[a.Args[0]]
			if !ok || entry.Source == "" {
				return "", fmt.Errorf("line %d: unknown @echo:include argument %q", i+1, a.Args[0])
			}
			out = append(out, entry.Source)
		case AnnotationTypeBindingGroup:
			addrSpace := p.addressSpaceRegistry[a.Args[0]]
			varName := string(a.Args[1])

			key, isArray := a.Args[2].elementType()
			entry, ok := p.structRegistry[key]
			if !ok {
				return "", fmt.Errorf("line %d: unknown struct type %q in @echo:group annotation", i+1, key)
			}
			wgslType := entry.Type
			if isArray {
				wgslType = fmt.Sprintf("array<%s>", entry.Type)
			}

			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;", *a.Group, *a.Binding, addrSpace, varName, wgslType))
			p.declarations = append(p.declarations, *a)
		default:
			return "", fmt.Errorf("line %d: unknown annotation type %q", i+1, a.Type)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}

// MustProcess runs a new PreProcessor over source and panics on error.
// Meant for package-level shader variables built from embedded sources.
//
// Parameters:
//   - source: the annotated WGSL source
//   - options: functional options registering struct types
//
// Returns:
//   - string: the processed WGSL source
func MustProcess(source string, options ...PreProcessorBuilderOption) string {
	out, err := NewPreProcessor(options...).Process(source)
	if err != nil {
		panic(fmt.Sprintf("shader: %v", err))
	}
	return out
}
