package shader

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// wgslStruct is a struct declaration as written in the source.
type wgslStruct struct {
	name    string
	members []wgslMember
}

type wgslMember struct {
	name     string
	typeName string
	// location is the @location index, -1 when absent.
	location int
	builtin  bool
}

var (
	structDeclRegex   = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	attributeRegex    = regexp.MustCompile(`@(\w+)\s*(?:\(([^)]*)\))?`)
	entryPointRegex   = regexp.MustCompile(`@(compute|vertex|fragment)\b[^{]*?\bfn\s+(\w+)`)
	workgroupRegex    = regexp.MustCompile(`@workgroup_size\s*\(([^)]*)\)`)
	bindingDeclRegex  = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
	entryPointsByName = map[string]ShaderType{"compute": ShaderTypeCompute, "vertex": ShaderTypeVertex, "fragment": ShaderTypeFragment}
)

// vertexFormats maps a scalar type and component count to the matching vertex attribute format.
var vertexFormats = map[string]map[int]wgpu.VertexFormat{
	"f32": {1: wgpu.VertexFormatFloat32, 2: wgpu.VertexFormatFloat32x2, 3: wgpu.VertexFormatFloat32x3, 4: wgpu.VertexFormatFloat32x4},
	"i32": {1: wgpu.VertexFormatSint32, 2: wgpu.VertexFormatSint32x2, 3: wgpu.VertexFormatSint32x3, 4: wgpu.VertexFormatSint32x4},
	"u32": {1: wgpu.VertexFormatUint32, 2: wgpu.VertexFormatUint32x2, 3: wgpu.VertexFormatUint32x3, 4: wgpu.VertexFormatUint32x4},
	"f16": {2: wgpu.VertexFormatFloat16x2, 4: wgpu.VertexFormatFloat16x4},
}

// stripComments removes line comments and nested block comments. Newlines are kept so
// offsets into the result still map onto source lines.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		switch {
		case strings.HasPrefix(source[i:], "/*"):
			depth++
			i++
		case depth > 0 && strings.HasPrefix(source[i:], "*/"):
			depth--
			i++
		case depth == 0 && strings.HasPrefix(source[i:], "//"):
			next := strings.IndexByte(source[i:], '\n')
			if next < 0 {
				return sb.String()
			}
			i += next - 1
		case depth == 0 || source[i] == '\n':
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}

func parseStructs(cleaned string) []wgslStruct {
	var structs []wgslStruct
	for _, m := range structDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		s := wgslStruct{name: m[1]}
		for _, decl := range splitMembers(m[2]) {
			if member, ok := parseMember(decl); ok {
				s.members = append(s.members, member)
			}
		}
		structs = append(structs, s)
	}
	return structs
}

// splitMembers splits a struct body at the commas outside of template brackets.
func splitMembers(body string) []string {
	var parts []string
	depth, start := 0, 0
	for i, c := range body {
		switch c {
		case '<':
			depth++
		case '>':
			depth = max(depth-1, 0)
		case ',':
			if depth == 0 {
				parts = append(parts, body[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, body[start:])
}

func parseMember(decl string) (wgslMember, bool) {
	member := wgslMember{location: -1}
	for _, attr := range attributeRegex.FindAllStringSubmatch(decl, -1) {
		switch attr[1] {
		case "builtin":
			member.builtin = true
		case "location":
			if loc, err := strconv.Atoi(strings.TrimSpace(attr[2])); err == nil {
				member.location = loc
			}
		}
	}
	name, typeName, ok := strings.Cut(attributeRegex.ReplaceAllString(decl, ""), ":")
	if !ok {
		return wgslMember{}, false
	}
	member.name = strings.TrimSpace(name)
	member.typeName = strings.TrimSpace(typeName)
	return member, member.name != "" && member.typeName != ""
}

// parseWorkgroupSize reads the first @workgroup_size. Omitted dimensions are 1; the result is
// zero when the source declares none.
func parseWorkgroupSize(cleaned string) [3]uint32 {
	m := workgroupRegex.FindStringSubmatch(cleaned)
	if m == nil {
		return [3]uint32{}
	}
	size := [3]uint32{1, 1, 1}
	for i, dim := range strings.SplitN(m[1], ",", 3) {
		if v, err := strconv.ParseUint(strings.TrimSpace(dim), 10, 32); err == nil {
			size[i] = uint32(v)
		}
	}
	return size
}

// parseEntryPoints returns the first entry point declared for each stage.
func parseEntryPoints(cleaned string) map[ShaderType]string {
	entries := make(map[ShaderType]string, 3)
	for _, m := range entryPointRegex.FindAllStringSubmatch(cleaned, -1) {
		t := entryPointsByName[m[1]]
		if _, seen := entries[t]; !seen {
			entries[t] = m[2]
		}
	}
	return entries
}

// vertexLayout packs a vertex input struct tightly into one per-vertex buffer, in member order.
// Structs with a builtin member, or without @location members, are not vertex inputs.
func vertexLayout(s wgslStruct) (wgpu.VertexBufferLayout, bool) {
	var attrs []wgpu.VertexAttribute
	var offset uint64
	for _, m := range s.members {
		if m.builtin || m.location < 0 {
			return wgpu.VertexBufferLayout{}, false
		}
		scalar, n, ok := vectorShape(m.typeName)
		if !ok {
			scalar, n = m.typeName, 1
		}
		format, ok := vertexFormats[scalar][n]
		if !ok {
			return wgpu.VertexBufferLayout{}, false
		}
		elem, _ := scalarLayout(scalar)
		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         format,
			Offset:         offset,
			ShaderLocation: uint32(m.location),
		})
		offset += elem.size * uint64(n)
	}
	if len(attrs) == 0 {
		return wgpu.VertexBufferLayout{}, false
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}, true
}
