package schema

// NodeKind tags the variant of a Node
type NodeKind string

// Node kinds
const (
	KindFile       NodeKind = "file"
	KindStruct     NodeKind = "struct"
	KindEnum       NodeKind = "enum"
	KindInterface  NodeKind = "interface"
	KindConst      NodeKind = "const"
	KindAnnotation NodeKind = "annotation"
)

// Valid reports whether k is a known node kind
func (k NodeKind) Valid() bool {
	switch k {
	case KindFile, KindStruct, KindEnum, KindInterface, KindConst, KindAnnotation:
		return true
	}
	return false
}

// FieldKind tags the variant of a Field
type FieldKind string

// Field kinds
const (
	FieldSlot  FieldKind = "slot"
	FieldGroup FieldKind = "group"
)

// Node is one declaration in the schema graph
type Node struct {
	ID   ID       `json:"id" yaml:"id"`
	Kind NodeKind `json:"kind" yaml:"kind"`

	// IsGroup marks struct nodes that are the body of a group field
	IsGroup bool `json:"is_group,omitempty" yaml:"is_group,omitempty"`

	// Name is the local name; file nodes use their path
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// DisplayName is the fully qualified name, e.g. "addressbook.capnp:Person.PhoneNumber"
	DisplayName string `json:"display_name,omitempty" yaml:"display_name,omitempty"`

	// ScopeID is the lexical parent; 0 for files
	ScopeID ID `json:"scope_id,omitempty" yaml:"scope_id,omitempty"`

	// NestedIDs lists nested declarations in declaration order
	NestedIDs []ID `json:"nested,omitempty" yaml:"nested,omitempty"`

	// Struct
	Fields            []Field `json:"fields,omitempty" yaml:"fields,omitempty"`
	DiscriminantCount int     `json:"discriminant_count,omitempty" yaml:"discriminant_count,omitempty"`

	// Enum
	Enumerants []string `json:"enumerants,omitempty" yaml:"enumerants,omitempty"`

	// Interface
	Methods      []Method `json:"methods,omitempty" yaml:"methods,omitempty"`
	Superclasses []ID     `json:"superclasses,omitempty" yaml:"superclasses,omitempty"`

	// Parameters names the generic parameters of a struct or interface
	Parameters []string `json:"parameters,omitempty" yaml:"parameters,omitempty"`

	// Const
	ConstType *Type `json:"const_type,omitempty" yaml:"const_type,omitempty"`

	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`
}

// HasUnion reports whether the struct carries an unnamed union
func (n *Node) HasUnion() bool {
	return n.DiscriminantCount > 0
}

// UnionFields returns the fields that belong to the unnamed union, in
// discriminant order
func (n *Node) UnionFields() []Field {
	members := make([]Field, n.DiscriminantCount)
	for _, f := range n.Fields {
		if f.Union > 0 && f.Union <= n.DiscriminantCount {
			members[f.Union-1] = f
		}
	}
	return members
}

// Field is a struct member, a method parameter or a method result
type Field struct {
	// Name is empty for anonymous groups
	Name string    `json:"name,omitempty" yaml:"name,omitempty"`
	Kind FieldKind `json:"kind,omitempty" yaml:"kind,omitempty"`

	// Type is set for slots
	Type *Type `json:"type,omitempty" yaml:"type,omitempty"`

	// GroupID is the struct node holding a group's members
	GroupID ID `json:"group_id,omitempty" yaml:"group_id,omitempty"`

	HasDefault bool `json:"has_default,omitempty" yaml:"has_default,omitempty"`

	// Union is 0 for fields outside the unnamed union, otherwise the
	// 1-based discriminant ordinal
	Union int `json:"union,omitempty" yaml:"union,omitempty"`

	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`
}

// IsGroup reports whether the field is a group
func (f Field) IsGroup() bool {
	return f.Kind == FieldGroup
}

// IsAnonymous reports whether the field is an unnamed group
func (f Field) IsAnonymous() bool {
	return f.Kind == FieldGroup && f.Name == ""
}

// Method is an interface method
type Method struct {
	Name    string  `json:"name" yaml:"name"`
	Params  []Field `json:"params,omitempty" yaml:"params,omitempty"`
	Results []Field `json:"results,omitempty" yaml:"results,omitempty"`
	Doc     string  `json:"doc,omitempty" yaml:"doc,omitempty"`
}

// ReturnsCapability reports whether any result is a capability
func (m Method) ReturnsCapability() bool {
	for _, r := range m.Results {
		if r.Type != nil && r.Type.IsCapability() {
			return true
		}
	}
	return false
}
