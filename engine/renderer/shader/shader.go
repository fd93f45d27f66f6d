package shader

import (
	"slices"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies a shader stage.
type ShaderType int

const (
	// ShaderTypeCompute indicates a shader containing a @compute entry point.
	ShaderTypeCompute ShaderType = iota

	// ShaderTypeVertex is the vertex shader type, used for vertex processing in render pipelines.
	ShaderTypeVertex

	// ShaderTypeFragment is the fragment shader type, used for fragment processing in pair with a vertex shader.
	ShaderTypeFragment
)

// StructLayout is the host-shareable size and alignment of a WGSL struct.
// Structs ending in a runtime-sized array report the size of their fixed-size prefix.
type StructLayout struct {
	Name  string
	Size  uint64
	Align uint64
}

// Binding is one @group/@binding resource declaration.
type Binding struct {
	Group   int
	Binding int
	// AddressSpace is the var<> qualifier as written, e.g. "uniform" or "storage, read_write".
	AddressSpace string
	Name         string
	Type         string
	// MinSize is the smallest buffer that satisfies the binding, 0 if the type could not be resolved.
	MinSize uint64
}

// Writable reports whether the shader may write the bound buffer.
func (b Binding) Writable() bool {
	return strings.Contains(b.AddressSpace, "read_write")
}

// Reflection is what the engine reads back out of WGSL source: struct layouts, resource
// bindings, vertex inputs and entry points.
type Reflection struct {
	Structs       map[string]StructLayout
	Bindings      []Binding
	VertexLayouts []wgpu.VertexBufferLayout
	// WorkgroupSize is zero when the source has no @workgroup_size.
	WorkgroupSize [3]uint32
	EntryPoints   map[ShaderType]string
}

// Reflect parses WGSL source. Unparseable pieces are skipped rather than reported;
// the GPU driver remains the authority on whether the source compiles.
//
// Parameters:
//   - source: the WGSL source, after pre-processing
//
// Returns:
//   - Reflection: the parsed layouts and declarations. Bindings are sorted by group, then binding.
func Reflect(source string) Reflection {
	cleaned := stripComments(source)
	structs := parseStructs(cleaned)
	layouts := structLayouts(structs)

	r := Reflection{
		Structs:       make(map[string]StructLayout, len(layouts)),
		Bindings:      parseBindings(cleaned, layouts),
		WorkgroupSize: parseWorkgroupSize(cleaned),
		EntryPoints:   parseEntryPoints(cleaned),
	}
	for name, l := range layouts {
		r.Structs[name] = StructLayout{Name: name, Size: l.size, Align: l.align}
	}
	for _, s := range structs {
		if layout, ok := vertexLayout(s); ok {
			r.VertexLayouts = append(r.VertexLayouts, layout)
		}
	}
	return r
}

// Group returns the bindings of one bind group, sorted by binding index.
//
// Parameters:
//   - group: the @group index
//
// Returns:
//   - []Binding: the group's bindings, empty if the shader declares none
func (r Reflection) Group(group int) []Binding {
	var out []Binding
	for _, b := range r.Bindings {
		if b.Group == group {
			out = append(out, b)
		}
	}
	return out
}

func parseBindings(cleaned string, layouts map[string]typeLayout) []Binding {
	matches := bindingDeclRegex.FindAllStringSubmatch(cleaned, -1)
	bindings := make([]Binding, 0, len(matches))
	for _, match := range matches {
		group, _ := strconv.Atoi(match[1])
		binding, _ := strconv.Atoi(match[2])
		b := Binding{
			Group:        group,
			Binding:      binding,
			AddressSpace: strings.TrimSpace(match[3]),
			Name:         strings.TrimSpace(match[4]),
			Type:         strings.TrimSpace(match[5]),
		}
		if l, ok := layoutOf(b.Type, layouts); ok {
			b.MinSize = l.size
		}
		bindings = append(bindings, b)
	}
	slices.SortFunc(bindings, func(a, b Binding) int {
		if a.Group != b.Group {
			return a.Group - b.Group
		}
		return a.Binding - b.Binding
	})
	return bindings
}
