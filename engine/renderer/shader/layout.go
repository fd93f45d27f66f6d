package shader

import (
	"regexp"
	"strconv"
	"strings"
)

// typeLayout is the host-shareable size and alignment of a WGSL type.
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
type typeLayout struct {
	size  uint64
	align uint64
}

var (
	// vec3<f32>, vec3f
	vectorTypeRegex = regexp.MustCompile(`^vec([234])(?:<\s*(\w+)\s*>|([fiuh]))$`)

	// mat4x4<f32>, mat4x4f
	matrixTypeRegex = regexp.MustCompile(`^mat([234])x([234])(?:<\s*(\w+)\s*>|([fh]))$`)
)

// scalarSuffixes maps the shorthand vector suffixes to their scalar type.
var scalarSuffixes = map[string]string{"f": "f32", "i": "i32", "u": "u32", "h": "f16"}

func scalarLayout(name string) (typeLayout, bool) {
	switch name {
	case "f32", "i32", "u32", "bool":
		return typeLayout{4, 4}, true
	case "f16":
		return typeLayout{2, 2}, true
	}
	return typeLayout{}, false
}

// vectorShape splits a vector type into its scalar type and component count.
func vectorShape(typeName string) (scalar string, n int, ok bool) {
	m := vectorTypeRegex.FindStringSubmatch(typeName)
	if m == nil {
		return "", 0, false
	}
	n, _ = strconv.Atoi(m[1])
	scalar = m[2]
	if scalar == "" {
		scalar = scalarSuffixes[m[3]]
	}
	return scalar, n, true
}

func vectorLayout(scalar string, n int) (typeLayout, bool) {
	s, ok := scalarLayout(scalar)
	if !ok || scalar == "bool" {
		return typeLayout{}, false
	}
	align := s.size * uint64(n)
	if n == 3 {
		align = s.size * 4
	}
	return typeLayout{s.size * uint64(n), align}, true
}

// layoutOf resolves a type against the scalars, vectors, matrices, atomics and arrays WGSL
// defines plus the struct layouts resolved so far. A runtime-sized array resolves to the
// stride of one element.
func layoutOf(typeName string, structs map[string]typeLayout) (typeLayout, bool) {
	typeName = strings.TrimSpace(typeName)
	if l, ok := scalarLayout(typeName); ok {
		return l, true
	}
	if l, ok := structs[typeName]; ok {
		return l, true
	}
	if scalar, n, ok := vectorShape(typeName); ok {
		return vectorLayout(scalar, n)
	}
	if m := matrixTypeRegex.FindStringSubmatch(typeName); m != nil {
		cols, _ := strconv.Atoi(m[1])
		rows, _ := strconv.Atoi(m[2])
		scalar := m[3]
		if scalar == "" {
			scalar = scalarSuffixes[m[4]]
		}
		col, ok := vectorLayout(scalar, rows)
		if !ok {
			return typeLayout{}, false
		}
		return typeLayout{uint64(cols) * alignUp(col.size, col.align), col.align}, true
	}
	if inner, ok := unwrap(typeName, "atomic"); ok {
		if inner != "u32" && inner != "i32" {
			return typeLayout{}, false
		}
		return scalarLayout(inner)
	}
	if inner, ok := unwrap(typeName, "array"); ok {
		elemType, count, sized := strings.Cut(inner, ",")
		elem, ok := layoutOf(elemType, structs)
		if !ok {
			return typeLayout{}, false
		}
		stride := alignUp(elem.size, elem.align)
		if !sized {
			return typeLayout{stride, elem.align}, true
		}
		n, err := strconv.ParseUint(strings.TrimSpace(count), 10, 64)
		if err != nil {
			return typeLayout{}, false
		}
		return typeLayout{n * stride, elem.align}, true
	}
	return typeLayout{}, false
}

// unwrap returns the parameter of a generic type such as array<T> or atomic<T>.
func unwrap(typeName, generic string) (string, bool) {
	if !strings.HasPrefix(typeName, generic+"<") || !strings.HasSuffix(typeName, ">") {
		return "", false
	}
	return strings.TrimSpace(typeName[len(generic)+1 : len(typeName)-1]), true
}

func isRuntimeArray(typeName string) bool {
	inner, ok := unwrap(strings.TrimSpace(typeName), "array")
	return ok && !strings.Contains(inner, ",")
}

// alignUp rounds v up to a multiple of align, which must be a power of two.
func alignUp(v, align uint64) uint64 {
	if align == 0 {
		return v
	}
	return (v + align - 1) &^ (align - 1)
}

// structLayout lays the members out in order, each at its alignment, and rounds the total up
// to the largest member alignment. A trailing runtime-sized array adds its alignment but
// no size; if it is the only member the struct takes the stride of one element.
func structLayout(s wgslStruct, structs map[string]typeLayout) (typeLayout, bool) {
	var offset uint64
	align := uint64(1)

	for i, m := range s.members {
		if m.builtin {
			continue
		}
		l, ok := layoutOf(m.typeName, structs)
		if !ok {
			return typeLayout{}, false
		}
		align = max(align, l.align)
		offset = alignUp(offset, l.align)
		if i == len(s.members)-1 && isRuntimeArray(m.typeName) {
			if offset == 0 {
				return l, true
			}
			return typeLayout{offset, align}, true
		}
		offset += l.size
	}
	return typeLayout{alignUp(offset, align), align}, true
}

// structLayouts resolves every struct, passing over the list until no further struct resolves
// so that declaration order does not matter.
func structLayouts(structs []wgslStruct) map[string]typeLayout {
	resolved := make(map[string]typeLayout, len(structs))
	for progress := true; progress; {
		progress = false
		for _, s := range structs {
			if _, done := resolved[s.name]; done {
				continue
			}
			if l, ok := structLayout(s, resolved); ok {
				resolved[s.name] = l
				progress = true
			}
		}
	}
	return resolved
}
