package python

import (
	"sort"
	"strings"
	"unicode"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/schema"
)

// runtimeModule is the pycapnp module the dynamic base classes come from
const runtimeModule = "capnp.lib.capnp"

// stdlibImports maps every standard-library name a stub may use to its module
var stdlibImports = map[string]string{
	"Awaitable":              "collections.abc",
	"Sequence":               "collections.abc",
	"AbstractContextManager": "contextlib",
	"Any":                    "typing",
	"BinaryIO":               "typing",
	"Literal":                "typing",
	"Protocol":               "typing",
	"TypeAlias":              "typing",
	"TypedDict":              "typing",
	"overload":               "typing",
}

// runtimeNames are the pycapnp base classes a stub may derive from
var runtimeNames = map[string]bool{
	"_DynamicCapabilityClient": true,
	"_DynamicCapabilityServer": true,
	"_DynamicObjectReader":     true,
	"_DynamicStructBuilder":    true,
	"_DynamicStructReader":     true,
	"_EnumModule":              true,
	"_InterfaceModule":         true,
	"_StructModule":            true,
}

// importSet is the resolved import section of one output file
type importSet struct {
	stdlib   map[string][]string // module -> names
	runtime  []string
	relative map[string][]string // relative module -> import clauses
}

// collectImports scans the rendered body for well-known names and merges
// them with the cross-file imports recorded during synthesis. Names bound at
// module level may not shadow an import.
func collectImports(fs *fileState, body string) (*importSet, error) {
	set := &importSet{
		stdlib:   make(map[string][]string),
		relative: make(map[string][]string),
	}

	used := extractIdentifiers(body)
	for _, name := range used {
		if module, ok := stdlibImports[name]; ok {
			if owner, clash := fs.topLevel[name]; clash {
				return nil, shadowed(name, module, owner)
			}
			set.stdlib[module] = append(set.stdlib[module], name)
		}
		if runtimeNames[name] {
			if owner, clash := fs.topLevel[name]; clash {
				return nil, shadowed(name, runtimeModule, owner)
			}
			set.runtime = append(set.runtime, name)
		}
	}

	from := make(map[string]schema.ID)
	for module, names := range fs.imports {
		for local, imported := range names {
			owner := imported.Owner
			if prev, clash := fs.topLevel[local]; clash {
				return nil, errors.NewNameCollision(local, uint64(prev), uint64(owner))
			}
			if prev, dup := from[local]; dup && prev != owner {
				return nil, errors.NewNameCollision(local, uint64(prev), uint64(owner))
			}
			if std, ok := stdlibImports[local]; ok {
				return nil, shadowed(local, std, owner)
			}
			from[local] = owner
			clause := imported.Name
			if local != imported.Name {
				clause += " as " + local
			}
			set.relative[module] = append(set.relative[module], clause)
		}
	}

	for _, names := range set.stdlib {
		sort.Strings(names)
	}
	sort.Strings(set.runtime)
	for _, names := range set.relative {
		sort.Strings(names)
	}
	return set, nil
}

func shadowed(name, module string, owner schema.ID) error {
	err := errors.Wrapf(errors.ErrNameCollision, "%q declared by %s shadows %s.%s", name, owner, module, name)
	return errors.WithHint(err, "rename the schema declaration; stub modules import this name")
}

// render writes the import section, groups separated by blank lines
func (set *importSet) render(e *Emitter) {
	wrote := false
	group := func() {
		if wrote {
			e.Blank()
		}
		wrote = true
	}

	if len(set.stdlib) > 0 {
		group()
		for _, module := range sortedKeys(set.stdlib) {
			e.Linef("from %s import %s", module, strings.Join(set.stdlib[module], ", "))
		}
	}

	if len(set.runtime) > 0 {
		group()
		e.Linef("from %s import (", runtimeModule)
		e.Indent()
		for _, name := range set.runtime {
			e.Line(name + ",")
		}
		e.Dedent()
		e.Line(")")
	}

	if len(set.relative) > 0 {
		group()
		for _, module := range sortedKeys(set.relative) {
			e.Linef("from %s import %s", module, strings.Join(set.relative[module], ", "))
		}
	}
}

func (set *importSet) empty() bool {
	return len(set.stdlib) == 0 && len(set.runtime) == 0 && len(set.relative) == 0
}

// extractIdentifiers returns the distinct identifiers of Python source in
// first-seen order, ignoring string literals and docstrings
func extractIdentifiers(src string) []string {
	clean := stripStrings(src)
	words := strings.FieldsFunc(clean, func(r rune) bool {
		return !(r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r))
	})

	var out []string
	seen := make(map[string]bool)
	for _, w := range words {
		if seen[w] || unicode.IsDigit([]rune(w)[0]) {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

// stripStrings blanks out docstrings and string literals
func stripStrings(src string) string {
	var result strings.Builder
	i := 0
	for i < len(src) {
		if strings.HasPrefix(src[i:], `"""`) {
			end := strings.Index(src[i+3:], `"""`)
			if end == -1 {
				break
			}
			i += end + 6
			result.WriteByte(' ')
			continue
		}
		if src[i] == '"' {
			j := i + 1
			for j < len(src) && src[j] != '"' && src[j] != '\n' {
				if src[j] == '\\' {
					j++
				}
				j++
			}
			i = j + 1
			result.WriteByte(' ')
			continue
		}
		result.WriteByte(src[i])
		i++
	}
	return result.String()
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
