package shader

// PreProcessorBuilderOption is a functional option applied to a PreProcessor during construction via NewPreProcessor.
type PreProcessorBuilderOption func(*preProcessor)

// WithStruct registers a struct type key.
//
// Parameters:
//   - key: the argument used in annotations, e.g. "hit_record"
//   - source: the WGSL text injected by @echo:include, or empty for types declared elsewhere
//   - typeName: the WGSL type name emitted by @echo:group, e.g. "HitRecord"
//
// Returns:
//   - PreProcessorBuilderOption: option function to apply
func WithStruct(key AnnotationArg, source, typeName string) PreProcessorBuilderOption {
	return func(p *preProcessor) {
		p.structRegistry[key] = registryEntry{Source: source, Type: typeName}
	}
}
