package python

// Decl is a node of the declaration tree built for one output file.
// Declarations render themselves through an Emitter.
type Decl interface {
	render(e *Emitter)
}

// Class is a class statement
type Class struct {
	Name  string
	Bases []string
	Doc   []string
	Body  []Decl
}

// Def is a method stub. self is implicit.
type Def struct {
	Name       string
	Params     []Param
	Returns    string
	Decorators []string
	Doc        []string
}

// Param is one method parameter. A Name of "*" renders a bare keyword-only
// marker; a Name starting with "**" renders a variadic keyword parameter.
type Param struct {
	Name    string
	Type    string
	Default string
}

// Attr is an annotated name: `name: type`
type Attr struct {
	Name string
	Type string
}

// TypeAliasDecl is an explicit alias: `Name: TypeAlias = Target`
type TypeAliasDecl struct {
	Name   string
	Target string
}

// overloaded marks a Def as one signature of an overload set
func overloaded(d *Def) *Def {
	d.Decorators = append([]string{"overload"}, d.Decorators...)
	return d
}

// property returns a read-only property getter
func property(name, typ string, doc []string) *Def {
	return &Def{Name: name, Returns: typ, Decorators: []string{"property"}, Doc: doc}
}

// setter returns the setter paired with a property getter
func setter(name, typ string) *Def {
	return &Def{
		Name:       name,
		Params:     []Param{{Name: "value", Type: typ}},
		Returns:    "None",
		Decorators: []string{name + ".setter"},
	}
}
