package schema

// TypeKind tags the variant of a Type
type TypeKind string

// Type kinds. Primitive kinds first, then composite kinds.
const (
	TypeVoid    TypeKind = "void"
	TypeBool    TypeKind = "bool"
	TypeInt8    TypeKind = "int8"
	TypeInt16   TypeKind = "int16"
	TypeInt32   TypeKind = "int32"
	TypeInt64   TypeKind = "int64"
	TypeUint8   TypeKind = "uint8"
	TypeUint16  TypeKind = "uint16"
	TypeUint32  TypeKind = "uint32"
	TypeUint64  TypeKind = "uint64"
	TypeFloat32 TypeKind = "float32"
	TypeFloat64 TypeKind = "float64"
	TypeText    TypeKind = "text"
	TypeData    TypeKind = "data"

	TypeList       TypeKind = "list"
	TypeEnum       TypeKind = "enum"
	TypeStruct     TypeKind = "struct"
	TypeInterface  TypeKind = "interface"
	TypeAnyPointer TypeKind = "anyPointer"
	TypeParameter  TypeKind = "parameter"
)

var primitiveKinds = map[TypeKind]bool{
	TypeVoid: true, TypeBool: true,
	TypeInt8: true, TypeInt16: true, TypeInt32: true, TypeInt64: true,
	TypeUint8: true, TypeUint16: true, TypeUint32: true, TypeUint64: true,
	TypeFloat32: true, TypeFloat64: true,
	TypeText: true, TypeData: true,
}

// IsPrimitive reports whether k maps directly to a scalar
func (k TypeKind) IsPrimitive() bool {
	return primitiveKinds[k]
}

// Valid reports whether k is a known type kind
func (k TypeKind) Valid() bool {
	switch k {
	case TypeList, TypeEnum, TypeStruct, TypeInterface, TypeAnyPointer, TypeParameter:
		return true
	}
	return k.IsPrimitive()
}

// Type is the type of a slot field, method parameter or constant
type Type struct {
	Kind TypeKind `json:"kind" yaml:"kind"`

	// Element is the element type of a list
	Element *Type `json:"element,omitempty" yaml:"element,omitempty"`

	// TypeID names the enum, struct or interface node
	TypeID ID `json:"type_id,omitempty" yaml:"type_id,omitempty"`

	// Brand binds the target's generic parameters, in parameter order
	Brand []Type `json:"brand,omitempty" yaml:"brand,omitempty"`

	// ParamScope and ParamIndex identify a generic parameter reference
	ParamScope ID  `json:"param_scope,omitempty" yaml:"param_scope,omitempty"`
	ParamIndex int `json:"param_index,omitempty" yaml:"param_index,omitempty"`
}

// IsPointerTarget reports whether the type refers to another node
func (t Type) IsPointerTarget() bool {
	switch t.Kind {
	case TypeEnum, TypeStruct, TypeInterface:
		return true
	}
	return false
}

// IsCapability reports whether values of this type are capabilities
func (t Type) IsCapability() bool {
	return t.Kind == TypeInterface
}
