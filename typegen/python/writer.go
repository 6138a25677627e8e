package python

import (
	"fmt"
	"strings"
)

const indentUnit = "    "

// Emitter builds Python stub source with proper indentation.
type Emitter struct {
	buf    strings.Builder
	indent int
}

// NewEmitter creates a new Python code emitter.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Line writes a single line at the current indentation level.
func (e *Emitter) Line(line string) {
	if line == "" {
		e.buf.WriteByte('\n')
		return
	}
	for i := 0; i < e.indent; i++ {
		e.buf.WriteString(indentUnit)
	}
	e.buf.WriteString(line)
	e.buf.WriteByte('\n')
}

// Linef writes a formatted line at the current indentation level.
func (e *Emitter) Linef(format string, args ...any) {
	e.Line(fmt.Sprintf(format, args...))
}

// Blank writes an empty line.
func (e *Emitter) Blank() {
	e.buf.WriteByte('\n')
}

// Indent increases the indentation level.
func (e *Emitter) Indent() {
	e.indent++
}

// Dedent decreases the indentation level.
func (e *Emitter) Dedent() {
	if e.indent > 0 {
		e.indent--
	}
}

// String returns the accumulated source code.
func (e *Emitter) String() string {
	return e.buf.String()
}

// Len returns the current byte length.
func (e *Emitter) Len() int {
	return e.buf.Len()
}

// Docstring writes lines as a triple-quoted docstring
func (e *Emitter) Docstring(lines []string) {
	if len(lines) == 0 {
		return
	}
	if len(lines) == 1 {
		e.Line(`"""` + escapeDoc(lines[0]) + `"""`)
		return
	}
	e.Line(`"""` + escapeDoc(lines[0]))
	for _, line := range lines[1:] {
		e.Line(escapeDoc(line))
	}
	e.Line(`"""`)
}

// escapeDoc keeps doc text from terminating the docstring early
func escapeDoc(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"""`, `\"\"\"`)
	if strings.HasSuffix(s, `"`) {
		s += " "
	}
	return s
}

func (c *Class) render(e *Emitter) {
	head := "class " + c.Name
	if len(c.Bases) > 0 {
		head += "(" + strings.Join(c.Bases, ", ") + ")"
	}
	if len(c.Doc) == 0 && len(c.Body) == 0 {
		e.Line(head + ": ...")
		return
	}
	e.Line(head + ":")
	e.Indent()
	e.Docstring(c.Doc)
	for _, d := range c.Body {
		d.render(e)
	}
	e.Dedent()
}

func (d *Def) render(e *Emitter) {
	for _, dec := range d.Decorators {
		e.Line("@" + dec)
	}
	params := make([]string, 0, len(d.Params)+1)
	params = append(params, "self")
	for _, p := range d.Params {
		params = append(params, p.String())
	}
	head := fmt.Sprintf("def %s(%s) -> %s:", d.Name, strings.Join(params, ", "), d.Returns)
	if len(d.Doc) == 0 {
		e.Line(head + " ...")
		return
	}
	e.Line(head)
	e.Indent()
	e.Docstring(d.Doc)
	e.Dedent()
}

// String renders the parameter as it appears in a signature
func (p Param) String() string {
	if p.Name == "*" || p.Type == "" {
		return p.Name
	}
	s := p.Name + ": " + p.Type
	if p.Default != "" {
		s += " = " + p.Default
	}
	return s
}

func (a *Attr) render(e *Emitter) {
	e.Line(a.Name + ": " + a.Type)
}

func (t *TypeAliasDecl) render(e *Emitter) {
	e.Line(t.Name + ": TypeAlias = " + t.Target)
}
