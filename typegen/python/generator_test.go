package python

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/teranos/stubgen/schema"
	"github.com/teranos/stubgen/typegen"
)

// loadArchive decodes testdata/<name>.txtar. schema.yaml holds the schema
// document; every other member is an expected output file.
func loadArchive(t *testing.T, name string) (*schema.Graph, map[string]string) {
	t.Helper()
	ar, err := txtar.ParseFile(filepath.Join("testdata", name+".txtar"))
	require.NoError(t, err)

	var graph *schema.Graph
	want := make(map[string]string)
	for _, f := range ar.Files {
		if f.Name == "schema.yaml" {
			graph, err = schema.Decode(f.Data, schema.FormatYAML)
			require.NoError(t, err)
			continue
		}
		want[f.Name] = string(f.Data)
	}
	require.NotNil(t, graph, "archive %s has no schema.yaml", name)
	return graph, want
}

func generate(t *testing.T, name string, opts ...Option) *typegen.Result {
	t.Helper()
	graph, _ := loadArchive(t, name)
	result, err := NewGenerator(opts...).Generate(graph)
	require.NoError(t, err)
	return result
}

func onlyFile(t *testing.T, result *typegen.Result) string {
	t.Helper()
	require.Len(t, result.Files, 1)
	return result.Files[0].Content
}

func TestGenerator_Metadata(t *testing.T) {
	gen := NewGenerator()
	assert.Equal(t, "python", gen.Language())
	assert.Equal(t, "pyi", gen.FileExtension())

	var _ typegen.Generator = gen
}

func TestGenerate_Golden(t *testing.T) {
	for _, name := range []string{"point", "addressbook", "crossfile"} {
		t.Run(name, func(t *testing.T) {
			graph, want := loadArchive(t, name)
			result, err := NewGenerator().Generate(graph)
			require.NoError(t, err)

			require.Len(t, result.Files, len(want))
			for _, f := range result.Files {
				expected, ok := want[f.Path]
				require.True(t, ok, "unexpected output %s", f.Path)
				assert.Equal(t, expected, f.Content)
			}
		})
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	graph, _ := loadArchive(t, "addressbook")
	gen := NewGenerator()

	first, err := gen.Generate(graph)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := gen.Generate(graph)
		require.NoError(t, err)
		assert.Equal(t, first, again, "run %d differs", i)
	}
}

func TestGenerate_EveryFieldHasAccessors(t *testing.T) {
	graph, _ := loadArchive(t, "addressbook")
	result, err := NewGenerator().Generate(graph)
	require.NoError(t, err)
	out := onlyFile(t, result)

	person, ok := graph.Node(0x101)
	require.True(t, ok)
	for _, f := range person.Fields {
		if f.IsAnonymous() {
			continue
		}
		ident := toPythonIdent(f.Name)
		assert.Contains(t, out, "def "+ident+"(self) -> ", "getter for %s", f.Name)
	}
	// flattened from the anonymous group
	assert.Contains(t, out, "def nickname(self) -> str: ...")
	assert.Contains(t, out, "nickname: str | None = None")
}

func TestGenerate_Addressbook(t *testing.T) {
	out := onlyFile(t, generate(t, "addressbook"))

	tests := []struct {
		name string
		want string
	}{
		{"struct module", "class _PersonStructModule(_StructModule):"},
		{"struct doc", `    """A person in the address book."""`},
		{"binding", "\nPerson: _PersonStructModule\n"},
		{"field doc", "        def name(self) -> str:\n            \"\"\"The person's full name.\"\"\""},
		{"integer getter", "def age(self) -> int: ..."},
		{"list getter", "def phones(self) -> Sequence[_PersonStructModule._PhoneNumberStructModule.Reader]: ..."},
		{"list setter", "def phones(self, value: Sequence[_PersonStructModule._PhoneNumberStructModule.Reader | _PersonStructModule._PhoneNumberStructModule.Builder | _PersonStructModule._PhoneNumberStructModule.Dict]) -> None: ..."},
		{"enum getter", "def favorite(self) -> _ColorEnumModule.Value: ..."},
		{"enum setter", "def favorite(self, value: _ColorEnumModule.Value | int) -> None: ..."},
		{"void getter", "def unemployed(self) -> None: ..."},
		{"union", `def which(self) -> Literal["unemployed", "employer"]: ...`},
		{"named group module", "    class _AddressGroupModule:\n        class Dict(TypedDict, total=False):\n            city: str\n"},
		{"group getter", "def address(self) -> _PersonStructModule._AddressGroupModule.Reader: ..."},
		{"group init", "        @overload\n        def init(self, field: Literal[\"address\"]) -> _PersonStructModule._AddressGroupModule.Builder: ...\n"},
		{"list init", "        @overload\n        def init(self, field: Literal[\"phones\"], size: int) -> Sequence[_PersonStructModule._PhoneNumberStructModule.Builder]: ...\n"},
		{"init fallback", "        @overload\n        def init(self, field: str, size: int | None = None) -> Any: ..."},
		{"any pointer getter", "def extra(self) -> _AnyPointer: ..."},
		{"any pointer setter", "def extra(self, value: Any) -> None: ..."},
		{"keyword escape", "def class_(self) -> str: ..."},
		{"new_message group", "address: _PersonStructModule._AddressGroupModule.Dict | None = None"},
		{"new_message void", "unemployed: None = None"},
		{"nested struct", "    class _PhoneNumberStructModule(_StructModule):"},
		{"nested enum", "        class _TypeEnumModule(_EnumModule):"},
		{"soft keyword kept", "def type(self) -> _PersonStructModule._PhoneNumberStructModule._TypeEnumModule.Value: ..."},
		{"enum module", "class _ColorEnumModule(_EnumModule):\n    Value: TypeAlias = Literal[\"red\", \"green\", \"blue\"]\n    red: int\n    green: int\n    blue: int\n"},
		{"const", "\nmaxPeople: int\n"},
		{"interface doc", "class _DirectoryInterfaceModule(_InterfaceModule):\n    \"\"\"Directory of people.\"\"\""},
		{"capability param", "def subscribe(self, callback: _DirectoryInterfaceModule.Client | _DirectoryInterfaceModule.Server | None = None) -> Awaitable[_DirectoryInterfaceModule.SubscribeResult]: ..."},
		{"empty result", "    class SubscribeResult(Protocol): ...\n"},
		{"alias enum", "ColorEnum: TypeAlias = _ColorEnumModule.Value | int"},
		{"alias group", "AddressReader: TypeAlias = _PersonStructModule._AddressGroupModule.Reader"},
		{"alias method", "LookupResult: TypeAlias = _DirectoryInterfaceModule.LookupResult"},
		{"stdlib imports", "from collections.abc import Awaitable, Sequence\n"},
		{"runtime import", "from capnp.lib.capnp import (\n    _DynamicCapabilityClient,\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, out, tt.want)
		})
	}

	assert.NotContains(t, out, "tag", "annotations produce no declarations")
	assert.Equal(t, 1, strings.Count(out, "from __future__ import annotations"))
}

func TestGenerate_AnyPointerCasts(t *testing.T) {
	out := onlyFile(t, generate(t, "addressbook"))

	want := strings.Join([]string{
		"class _AnyPointer(_DynamicObjectReader):",
		"    @overload",
		"    def as_struct(self, schema: _PersonStructModule) -> _PersonStructModule.Reader: ...",
		"    @overload",
		"    def as_struct(self, schema: _PersonStructModule._PhoneNumberStructModule) -> _PersonStructModule._PhoneNumberStructModule.Reader: ...",
		"    @overload",
		"    def as_struct(self, schema: Any) -> Any: ...",
		"    @overload",
		"    def as_interface(self, schema: _DirectoryInterfaceModule) -> _DirectoryInterfaceModule.Client: ...",
		"    @overload",
		"    def as_interface(self, schema: Any) -> Any: ...",
		"    def as_list(self, schema: Any) -> Sequence[Any]: ...",
		"    def as_text(self) -> str: ...",
	}, "\n")
	assert.Contains(t, out, want)
}

func TestGenerate_AnyPointerOnlyWhenUsed(t *testing.T) {
	out := onlyFile(t, generate(t, "point"))
	assert.NotContains(t, out, "_AnyPointer")
	assert.NotContains(t, out, "_DynamicObjectReader")
}

func TestGenerate_AliasTableSorted(t *testing.T) {
	result := generate(t, "addressbook")

	names := make([]string, len(result.Aliases))
	for i, a := range result.Aliases {
		names[i] = a.Name
	}
	assert.Equal(t, []string{
		"AddressBuilder",
		"AddressReader",
		"ColorEnum",
		"DirectoryClient",
		"DirectoryServer",
		"LookupResult",
		"PersonBuilder",
		"PersonReader",
		"PhoneNumberBuilder",
		"PhoneNumberReader",
		"SubscribeResult",
		"TypeEnum",
	}, names)

	for _, a := range result.Aliases {
		assert.Equal(t, "addressbook.capnp", a.Source)
	}

	// the alias section of the stub follows the same order
	out := onlyFile(t, result)
	last := -1
	for _, name := range names {
		idx := strings.Index(out, "\n"+name+": TypeAlias = ")
		require.NotEqual(t, -1, idx, "alias %s missing", name)
		assert.Greater(t, idx, last, "alias %s out of order", name)
		last = idx
	}
}

func TestGenerate_CrossFile(t *testing.T) {
	result := generate(t, "crossfile")
	require.Len(t, result.Files, 1)
	f := result.Files[0]
	assert.Equal(t, "app.capnp", f.Source)
	assert.Equal(t, "app_capnp.pyi", f.Path)

	out := f.Content
	assert.Contains(t, out, "from .common.shared_capnp import AddressBuilder, AddressReader, ColorEnum, ServiceClient, ServiceServer\n")
	assert.Equal(t, 1, strings.Count(out, "from .common.shared_capnp import"), "imports are deduplicated")

	assert.Contains(t, out, "def home(self) -> AddressReader: ...")
	assert.Contains(t, out, "def home(self, value: AddressReader | AddressBuilder | dict[str, Any]) -> None: ...")
	assert.Contains(t, out, "def homes(self) -> Sequence[AddressReader]: ...")
	assert.Contains(t, out, "def color(self) -> ColorEnum: ...")
	assert.Contains(t, out, "def service(self) -> ServiceClient: ...")
	assert.Contains(t, out, "def service(self, value: ServiceClient | ServiceServer) -> None: ...")
	assert.Contains(t, out, "        home: dict[str, Any]\n")
	assert.Contains(t, out, "def init(self, field: Literal[\"home\"]) -> AddressBuilder: ...")

	// foreign declarations and their aliases stay in their own stub
	assert.NotContains(t, out, "_AddressStructModule")
	assert.NotContains(t, out, "AddressReader: TypeAlias")
	assert.Contains(t, out, "UserReader: TypeAlias = _UserStructModule.Reader")

	// only the requested file's aliases are reported
	require.Len(t, result.Aliases, 2)
	for _, a := range result.Aliases {
		assert.Equal(t, "app.capnp", a.Source)
	}
}

// regenerate decodes an archive's schema again with different requested files
func regenerate(t *testing.T, name string, requested ...schema.ID) map[string]string {
	t.Helper()
	graph, _ := loadArchive(t, name)
	g, err := schema.NewGraph(graph.Nodes(), requested)
	require.NoError(t, err)
	result, err := NewGenerator().Generate(g)
	require.NoError(t, err)

	out := make(map[string]string, len(result.Files))
	for _, f := range result.Files {
		out[f.Path] = f.Content
	}
	return out
}

func TestGenerate_ShadowedForeignAlias(t *testing.T) {
	const (
		app    = schema.ID(0x200)
		shared = schema.ID(0x300)
	)
	appAlone := regenerate(t, "shadowed", app)["app_capnp.pyi"]
	sharedAlone := regenerate(t, "shadowed", shared)["common/shared_capnp.pyi"]
	together := regenerate(t, "shadowed", app, shared)

	// each stub names its aliases the same whichever files share the run
	assert.Equal(t, sharedAlone, together["common/shared_capnp.pyi"])
	assert.Equal(t, appAlone, together["app_capnp.pyi"])

	assert.Contains(t, appAlone, "from .common.shared_capnp import AddressBuilder as SharedAddressBuilder, AddressReader as SharedAddressReader, ColorEnum\n")
	assert.Contains(t, appAlone, "def home(self) -> SharedAddressReader: ...")
	assert.Contains(t, appAlone, "def home(self, value: SharedAddressReader | SharedAddressBuilder | dict[str, Any]) -> None: ...")
	assert.Contains(t, appAlone, "def local(self) -> _AddressStructModule.Reader: ...")
	assert.Contains(t, appAlone, "\nAddressReader: TypeAlias = _AddressStructModule.Reader\n")

	// every imported name is declared by the imported stub
	for _, name := range []string{"AddressBuilder", "AddressReader", "ColorEnum"} {
		assert.Contains(t, sharedAlone, "\n"+name+": TypeAlias = ", "shared stub lacks %s", name)
	}
	assert.NotContains(t, sharedAlone, "SharedAddress")
}

func TestGenerate_ForeignAliasesIgnoreCoRequestedFiles(t *testing.T) {
	alone := regenerate(t, "crossfile", 0x200)["app_capnp.pyi"]
	both := regenerate(t, "crossfile", 0x200, 0x300)
	require.Len(t, both, 2)
	assert.Equal(t, alone, both["app_capnp.pyi"])

	shared := both["common/shared_capnp.pyi"]
	for _, name := range []string{"AddressBuilder", "AddressReader", "ColorEnum", "ServiceClient", "ServiceServer"} {
		assert.Contains(t, shared, "\n"+name+": TypeAlias = ")
	}
}

func TestGenerate_SelfReferentialStruct(t *testing.T) {
	out := onlyFile(t, generate(t, "tree"))

	assert.Equal(t, 1, strings.Count(out, "class _TreeStructModule(_StructModule):"))
	assert.Contains(t, out, "        def kids(self) -> Sequence[_TreeStructModule.Reader]: ...\n")
	assert.Contains(t, out, "        def kids(self) -> Sequence[_TreeStructModule.Builder]: ...\n")
	assert.Contains(t, out, "        def kids(self, value: Sequence[_TreeStructModule.Reader | _TreeStructModule.Builder | _TreeStructModule.Dict]) -> None: ...\n")
	assert.Contains(t, out, "        kids: Sequence[_TreeStructModule.Dict]\n")
	assert.Contains(t, out, "def init(self, field: Literal[\"kids\"], size: int) -> Sequence[_TreeStructModule.Builder]: ...")
	assert.Contains(t, out, "\nTreeReader: TypeAlias = _TreeStructModule.Reader\n")
}

func TestGenerate_InterleavedUnionGroups(t *testing.T) {
	out := onlyFile(t, generate(t, "tree"))

	assert.Contains(t, out, "        def which(self) -> Literal[\"left\", \"right\"]: ...\n")

	left := "    class _LeftGroupModule:\n" +
		"        class Dict(TypedDict, total=False):\n" +
		"            size: int\n" +
		"            label: str\n" +
		"        class Reader(_DynamicStructReader):\n" +
		"            @property\n" +
		"            def size(self) -> int: ...\n" +
		"            @property\n" +
		"            def label(self) -> str: ...\n" +
		"            def as_builder(self) -> _ShapeStructModule._LeftGroupModule.Builder: ...\n"
	right := "    class _RightGroupModule:\n" +
		"        class Dict(TypedDict, total=False):\n" +
		"            size: float\n" +
		"            flag: bool\n" +
		"        class Reader(_DynamicStructReader):\n" +
		"            @property\n" +
		"            def size(self) -> float: ...\n" +
		"            @property\n" +
		"            def flag(self) -> bool: ...\n" +
		"            def as_builder(self) -> _ShapeStructModule._RightGroupModule.Builder: ...\n"
	assert.Contains(t, out, left)
	assert.Contains(t, out, right)

	// the enclosing struct exposes the groups and the plain field, never
	// the groups' members
	shapeDict := "    class Dict(TypedDict, total=False):\n" +
		"        left: _ShapeStructModule._LeftGroupModule.Dict\n" +
		"        tag: str\n" +
		"        right: _ShapeStructModule._RightGroupModule.Dict\n" +
		"    class Reader(_DynamicStructReader):\n"
	assert.Contains(t, out, shapeDict)
	assert.Contains(t, out, "def new_message(self, *, left: _ShapeStructModule._LeftGroupModule.Dict | None = None, tag: str | None = None, right: _ShapeStructModule._RightGroupModule.Dict | None = None, **kwargs: Any) -> _ShapeStructModule.Builder: ...")
	assert.Equal(t, 2, strings.Count(out, "def label(self) -> str: ..."), "label stays in the left group's views")
	assert.Equal(t, 2, strings.Count(out, "def flag(self) -> bool: ..."), "flag stays in the right group's views")

	for _, alias := range []string{
		"LeftBuilder: TypeAlias = _ShapeStructModule._LeftGroupModule.Builder",
		"LeftReader: TypeAlias = _ShapeStructModule._LeftGroupModule.Reader",
		"RightReader: TypeAlias = _ShapeStructModule._RightGroupModule.Reader",
	} {
		assert.Contains(t, out, "\n"+alias+"\n")
	}
}

func TestGenerate_Options(t *testing.T) {
	t.Run("no header", func(t *testing.T) {
		out := onlyFile(t, generate(t, "point", WithHeader(false)))
		assert.True(t, strings.HasPrefix(out, "from __future__ import annotations\n"))
		assert.NotContains(t, out, generatedMarker)
	})

	t.Run("suffix", func(t *testing.T) {
		result := generate(t, "point", WithSuffix("_pb.pyi"))
		assert.Equal(t, []string{"point_pb.pyi"}, result.Paths())
	})

	t.Run("empty suffix keeps default", func(t *testing.T) {
		result := generate(t, "point", WithSuffix(""))
		assert.Equal(t, []string{"point_capnp.pyi"}, result.Paths())
	})
}

func TestGenerate_NilGraph(t *testing.T) {
	_, err := NewGenerator().Generate(nil)
	assert.Error(t, err)
}
