package util

import (
	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/schema"
)

// TypeConverterConfig configures how schema types are converted to target language types.
type TypeConverterConfig struct {
	// TypeMapping maps primitive type kinds to target language types
	TypeMapping map[schema.TypeKind]string

	// ListFormat formats a list type given the element type
	// e.g., Python: "Sequence[%s]", TypeScript: "%s[]"
	ListFormat func(elemType string) string

	// Ref renders a reference to an enum, struct or interface node
	Ref func(t schema.Type) (string, error)

	// AnyPointerType is used for anyPointer and generic parameter slots
	// e.g., Python: "_AnyPointer" for readers, "Any" for setters
	AnyPointerType string
}

// ConvertType converts a schema type to a target language type string.
// The config parameter provides language-specific formatting rules.
func ConvertType(t schema.Type, config *TypeConverterConfig) (string, error) {
	if t.Kind.IsPrimitive() {
		mapped, ok := config.TypeMapping[t.Kind]
		if !ok {
			return "", errors.AssertionFailedf("no mapping for primitive %q", t.Kind)
		}
		return mapped, nil
	}

	switch t.Kind {
	case schema.TypeList:
		if t.Element == nil {
			return "", errors.NewInvalidSchema("list type without element")
		}
		elem, err := ConvertType(*t.Element, config)
		if err != nil {
			return "", err
		}
		return config.ListFormat(elem), nil

	case schema.TypeEnum, schema.TypeStruct, schema.TypeInterface:
		return config.Ref(t)

	case schema.TypeAnyPointer, schema.TypeParameter:
		// Generic parameters are erased to AnyPointer
		return config.AnyPointerType, nil

	default:
		return "", errors.Wrapf(errors.ErrUnsupported, "type kind %q", t.Kind)
	}
}
