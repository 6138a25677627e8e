package python

import (
	"github.com/teranos/stubgen/schema"
)

// TypeMapping defines how primitive schema types map to Python types
var TypeMapping = map[schema.TypeKind]string{
	schema.TypeVoid:    "None",
	schema.TypeBool:    "bool",
	schema.TypeInt8:    "int",
	schema.TypeInt16:   "int",
	schema.TypeInt32:   "int",
	schema.TypeInt64:   "int",
	schema.TypeUint8:   "int",
	schema.TypeUint16:  "int",
	schema.TypeUint32:  "int",
	schema.TypeUint64:  "int",
	schema.TypeFloat32: "float",
	schema.TypeFloat64: "float",
	schema.TypeText:    "str",
	schema.TypeData:    "bytes",
}

// MapPrimitive returns the Python type of a primitive kind. ok is false for
// composite kinds (list, enum, struct, interface, anyPointer, parameter).
func MapPrimitive(kind schema.TypeKind) (string, bool) {
	if !kind.IsPrimitive() {
		return "", false
	}
	py, ok := TypeMapping[kind]
	return py, ok
}

// IsPrimitive reports whether the type maps through the static table
func IsPrimitive(t schema.Type) bool {
	_, ok := MapPrimitive(t.Kind)
	return ok
}
