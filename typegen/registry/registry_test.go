package registry

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/logger"
	"github.com/teranos/stubgen/schema"
)

// graph with
//
//	addressbook.capnp
//	  Person { PhoneNumber { Type (enum) }, address (group), (anonymous group) }
//	  Outer  { Inner }
//	  Other  { Inner }
//	  Service (interface)
func testGraph(t *testing.T) *schema.Graph {
	t.Helper()
	text := &schema.Type{Kind: schema.TypeText}
	g, err := schema.NewGraph([]*schema.Node{
		{ID: 1, Kind: schema.KindFile, DisplayName: "addressbook.capnp", NestedIDs: []schema.ID{10, 20, 30, 40}},
		{ID: 10, Kind: schema.KindStruct, DisplayName: "addressbook.capnp:Person", ScopeID: 1, NestedIDs: []schema.ID{11},
			Fields: []schema.Field{
				{Name: "name", Type: text},
				{Name: "address", Kind: schema.FieldGroup, GroupID: 13},
				{Kind: schema.FieldGroup, GroupID: 14},
			}},
		{ID: 11, Kind: schema.KindStruct, DisplayName: "addressbook.capnp:Person.PhoneNumber", ScopeID: 10, NestedIDs: []schema.ID{12}},
		{ID: 12, Kind: schema.KindEnum, DisplayName: "addressbook.capnp:Person.PhoneNumber.Type", ScopeID: 11, Enumerants: []string{"mobile"}},
		{ID: 13, Kind: schema.KindStruct, IsGroup: true, DisplayName: "addressbook.capnp:Person.address", ScopeID: 10},
		{ID: 14, Kind: schema.KindStruct, IsGroup: true, ScopeID: 10},
		{ID: 20, Kind: schema.KindStruct, DisplayName: "addressbook.capnp:Outer", ScopeID: 1, NestedIDs: []schema.ID{21}},
		{ID: 21, Kind: schema.KindStruct, DisplayName: "addressbook.capnp:Outer.Inner", ScopeID: 20},
		{ID: 30, Kind: schema.KindStruct, DisplayName: "addressbook.capnp:Other", ScopeID: 1, NestedIDs: []schema.ID{31}},
		{ID: 31, Kind: schema.KindStruct, DisplayName: "addressbook.capnp:Other.Inner", ScopeID: 30},
		{ID: 40, Kind: schema.KindInterface, DisplayName: "addressbook.capnp:Service", ScopeID: 1},
	}, []schema.ID{1})
	require.NoError(t, err)
	return g
}

func TestRegisterInternalIdentifiers(t *testing.T) {
	reg := New(testGraph(t))

	tests := []struct {
		id   schema.ID
		want string
	}{
		{1, ""},
		{10, "_PersonStructModule"},
		{11, "_PersonStructModule._PhoneNumberStructModule"},
		{12, "_PersonStructModule._PhoneNumberStructModule._TypeEnumModule"},
		{13, "_PersonStructModule._AddressGroupModule"},
		{14, "_PersonStructModule"},
		{21, "_OuterStructModule._InnerStructModule"},
		{31, "_OtherStructModule._InnerStructModule"},
		{40, "_ServiceInterfaceModule"},
	}

	for _, tt := range tests {
		t.Run(tt.id.String(), func(t *testing.T) {
			got, err := reg.Register(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, reg.Known(tt.id))

			// idempotent
			again, err := reg.Register(tt.id)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestRegisterIsStableAcrossRuns(t *testing.T) {
	g := testGraph(t)
	first, second := New(g), New(g)

	// different registration order, same identifiers
	ids := []schema.ID{12, 31, 10, 21, 13}
	for _, id := range ids {
		_, err := first.Register(id)
		require.NoError(t, err)
	}
	for i := len(ids) - 1; i >= 0; i-- {
		_, err := second.Register(ids[i])
		require.NoError(t, err)
	}
	for _, id := range ids {
		a, _ := first.Internal(id)
		b, _ := second.Internal(id)
		assert.Equal(t, a, b)
	}
}

func TestRegisterSiblingCollision(t *testing.T) {
	text := &schema.Type{Kind: schema.TypeText}
	g, err := schema.NewGraph([]*schema.Node{
		{ID: 1, Kind: schema.KindFile, DisplayName: "c.capnp", NestedIDs: []schema.ID{2}},
		{ID: 2, Kind: schema.KindStruct, DisplayName: "c.capnp:S", ScopeID: 1, Fields: []schema.Field{
			{Name: "my_group", Kind: schema.FieldGroup, GroupID: 3},
			{Name: "myGroup", Kind: schema.FieldGroup, GroupID: 4},
		}},
		{ID: 3, Kind: schema.KindStruct, IsGroup: true, ScopeID: 2, Fields: []schema.Field{{Name: "a", Type: text}}},
		{ID: 4, Kind: schema.KindStruct, IsGroup: true, ScopeID: 2, Fields: []schema.Field{{Name: "b", Type: text}}},
	}, []schema.ID{1})
	require.NoError(t, err)

	reg := New(g)
	_, err = reg.Register(3)
	require.NoError(t, err)

	_, err = reg.Register(4)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNameCollision))
	assert.Contains(t, err.Error(), "_MyGroupGroupModule")
}

func TestRegisterUnknownNode(t *testing.T) {
	reg := New(testGraph(t))
	_, err := reg.Register(999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnresolvedReference))
}

func request(id schema.ID, declared, base string, qualifiers []string, order int, roles ...Role) Request {
	targets := make(map[Role]string)
	for _, role := range roles {
		targets[role] = "_" + base + "." + string(role)
	}
	return Request{
		Subject:       Subject{Node: id},
		Declared:      declared,
		Base:          base,
		Qualifiers:    qualifiers,
		FileQualifier: "Addressbook",
		File:          1,
		Order:         order,
		Targets:       targets,
	}
}

func TestAliasSimple(t *testing.T) {
	reg := New(testGraph(t))
	require.NoError(t, reg.Request(request(10, "addressbook.capnp:Person", "Person", nil, 0, RoleReader, RoleBuilder)))

	name, err := reg.Alias(Subject{Node: 10}, RoleReader)
	require.NoError(t, err)
	assert.Equal(t, "PersonReader", name)

	name, err = reg.Alias(Subject{Node: 10}, RoleBuilder)
	require.NoError(t, err)
	assert.Equal(t, "PersonBuilder", name)
}

func TestAliasTieBreakTwoColliders(t *testing.T) {
	reg := New(testGraph(t))

	// Other.Inner is visited first but Outer.Inner has the shorter declared name
	require.NoError(t, reg.Request(request(31, "addressbook.capnp:Other.Inner", "Inner", []string{"Other"}, 0, RoleReader, RoleBuilder)))
	require.NoError(t, reg.Request(request(21, "addressbook.capnp:Outer.Inner", "Inner", []string{"Outer"}, 1, RoleReader, RoleBuilder)))

	// same length: visit order decides
	winner, err := reg.Alias(Subject{Node: 31}, RoleReader)
	require.NoError(t, err)
	assert.Equal(t, "InnerReader", winner)

	loser, err := reg.Alias(Subject{Node: 21}, RoleReader)
	require.NoError(t, err)
	assert.Equal(t, "OuterInnerReader", loser)
}

func TestAliasTieBreakShorterNameWins(t *testing.T) {
	reg := New(testGraph(t))

	require.NoError(t, reg.Request(request(31, "addressbook.capnp:Other.Inner", "Inner", []string{"Other"}, 0, RoleReader)))
	require.NoError(t, reg.Request(request(11, "addressbook.capnp:Inner", "Inner", nil, 5, RoleReader)))

	name, err := reg.Alias(Subject{Node: 11}, RoleReader)
	require.NoError(t, err)
	assert.Equal(t, "InnerReader", name)

	name, err = reg.Alias(Subject{Node: 31}, RoleReader)
	require.NoError(t, err)
	assert.Equal(t, "OtherInnerReader", name)
}

func TestAliasThreeColliders(t *testing.T) {
	reg := New(testGraph(t))

	// Three Inners: top-level, Outer.Inner, and a second Outer.Inner from a
	// different file qualifier
	require.NoError(t, reg.Request(request(11, "a:Inner", "Inner", nil, 0, RoleReader)))
	require.NoError(t, reg.Request(request(21, "a:Outer.Inner", "Inner", []string{"Outer"}, 1, RoleReader)))
	third := request(31, "b:Outer.Inner", "Inner", []string{"Outer"}, 2, RoleReader)
	third.FileQualifier = "Other"
	require.NoError(t, reg.Request(third))

	require.NoError(t, reg.Resolve())

	got := map[schema.ID]string{}
	for _, id := range []schema.ID{11, 21, 31} {
		name, err := reg.Alias(Subject{Node: id}, RoleReader)
		require.NoError(t, err)
		got[id] = name
	}
	assert.Equal(t, "InnerReader", got[11])
	assert.Equal(t, "OuterInnerReader", got[21])
	assert.Equal(t, "OtherOuterInnerReader", got[31])
}

func TestAliasExhaustionIsFatal(t *testing.T) {
	reg := New(testGraph(t))

	require.NoError(t, reg.Request(request(21, "a:Outer.Inner", "Inner", []string{"Outer"}, 0, RoleReader)))
	require.NoError(t, reg.Request(request(31, "a:Outer.Inner", "Inner", []string{"Outer"}, 1, RoleReader)))
	require.NoError(t, reg.Request(request(11, "a:Outer.Inner", "Inner", []string{"Outer"}, 2, RoleReader)))
	require.NoError(t, reg.Request(request(12, "a:Outer.Inner", "Inner", []string{"Outer"}, 3, RoleReader)))

	// levels 0, 1 and 2 go to the first three; the fourth has nowhere left
	err := reg.Resolve()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNameCollision))
	assert.Contains(t, err.Error(), "AddressbookOuterInnerReader")
	assert.Contains(t, err.Error(), schema.ID(11).String())
	assert.Contains(t, err.Error(), schema.ID(12).String())
}

func TestAliasAllRolesMoveTogether(t *testing.T) {
	reg := New(testGraph(t))

	// Only InnerBuilder is taken, yet Inner's Reader must move too
	reg.Reserve(1, "InnerBuilder", 99)
	require.NoError(t, reg.Request(request(21, "a:Outer.Inner", "Inner", []string{"Outer"}, 0, RoleReader, RoleBuilder)))

	reader, err := reg.Alias(Subject{Node: 21}, RoleReader)
	require.NoError(t, err)
	builder, err := reg.Alias(Subject{Node: 21}, RoleBuilder)
	require.NoError(t, err)
	assert.Equal(t, "OuterInnerReader", reader)
	assert.Equal(t, "OuterInnerBuilder", builder)
}

func TestAliasNamespacesArePerFile(t *testing.T) {
	reg := New(testGraph(t))

	// the same local name in two files: neither qualifies the other
	require.NoError(t, reg.Request(request(21, "a.capnp:Inner", "Inner", nil, 0, RoleReader, RoleBuilder)))
	other := request(31, "b.capnp:Inner", "Inner", nil, 0, RoleReader, RoleBuilder)
	other.File = 2
	other.FileQualifier = "B"
	require.NoError(t, reg.Request(other))

	// a reservation only blocks its own file
	reg.Reserve(2, "Unused", 99)
	require.NoError(t, reg.Resolve())

	for _, id := range []schema.ID{21, 31} {
		names, err := reg.Aliases(Subject{Node: id})
		require.NoError(t, err)
		assert.Equal(t, map[Role]string{RoleReader: "InnerReader", RoleBuilder: "InnerBuilder"}, names)
	}

	table := reg.Table()
	require.Len(t, table, 4)
	assert.Equal(t, "InnerBuilder", table[0].Name)
	assert.Equal(t, schema.ID(1), table[0].File)
	assert.Equal(t, "InnerBuilder", table[1].Name)
	assert.Equal(t, schema.ID(2), table[1].File)

	assert.True(t, reg.Claimed(1, "InnerReader"))
	assert.True(t, reg.Claimed(2, "Unused"))
	assert.False(t, reg.Claimed(1, "Unused"))
}

func TestAliasMethodSubjects(t *testing.T) {
	reg := New(testGraph(t))

	bar := Subject{Node: 40, Method: "bar"}
	require.NoError(t, reg.Request(Request{
		Subject:    bar,
		Declared:   "addressbook.capnp:Service.bar",
		Base:       "Bar",
		Qualifiers: []string{"Service"},
		Targets:    map[Role]string{RoleResult: "_ServiceInterfaceModule.BarResult"},
	}))

	name, err := reg.Alias(bar, RoleResult)
	require.NoError(t, err)
	assert.Equal(t, "BarResult", name)
}

func TestRequestMisuse(t *testing.T) {
	reg := New(testGraph(t))

	err := reg.Request(Request{Subject: Subject{Node: 10}})
	assert.True(t, errors.IsAssertionFailure(err), "request without roles")

	require.NoError(t, reg.Request(request(10, "a:Person", "Person", nil, 0, RoleReader)))
	err = reg.Request(request(10, "a:Person", "Person", nil, 0, RoleReader))
	assert.True(t, errors.IsAssertionFailure(err), "duplicate request")

	_, err = reg.Alias(Subject{Node: 10}, RoleServer)
	assert.True(t, errors.IsAssertionFailure(err), "role never requested")

	_, err = reg.Alias(Subject{Node: 11}, RoleReader)
	assert.True(t, errors.IsAssertionFailure(err), "subject never requested")

	_, err = reg.Aliases(Subject{Node: 11})
	assert.True(t, errors.IsAssertionFailure(err), "subject never requested")

	err = reg.Request(request(11, "a:Person.PhoneNumber", "PhoneNumber", nil, 1, RoleReader))
	assert.True(t, errors.IsAssertionFailure(err), "request after resolution")
}

func TestTableIsSorted(t *testing.T) {
	reg := New(testGraph(t))
	require.NoError(t, reg.Request(request(40, "a:Service", "Service", nil, 0, RoleClient, RoleServer)))
	require.NoError(t, reg.Request(request(10, "a:Person", "Person", nil, 1, RoleReader, RoleBuilder)))
	require.NoError(t, reg.Request(request(12, "a:Person.PhoneNumber.Type", "Type", nil, 2, RoleEnum)))
	require.NoError(t, reg.Resolve())

	table := reg.Table()
	names := make([]string, len(table))
	for i, a := range table {
		names[i] = a.Name
	}
	assert.True(t, sort.StringsAreSorted(names), "got %v", names)
	assert.Equal(t, []string{"PersonBuilder", "PersonReader", "ServiceClient", "ServiceServer", "TypeEnum"}, names)

	assert.Equal(t, "_Person.Builder", table[0].Target)
	assert.Equal(t, RoleBuilder, table[0].Role)
	assert.Equal(t, schema.ID(1), table[0].File)
}

func TestDeclaredTracking(t *testing.T) {
	reg := New(testGraph(t))

	reg.MarkReferenced(21)
	reg.MarkReferenced(10)
	reg.MarkReferenced(11)
	reg.MarkDeclared(10)

	assert.True(t, reg.Declared(10))
	assert.Equal(t, []schema.ID{11, 21}, reg.Undeclared())

	reg.MarkDeclared(11)
	reg.MarkDeclared(21)
	assert.Empty(t, reg.Undeclared())
}

func TestSegment(t *testing.T) {
	assert.Equal(t, "_PersonStructModule", Segment(&schema.Node{Kind: schema.KindStruct, Name: "Person"}, ""))
	assert.Equal(t, "_ColorEnumModule", Segment(&schema.Node{Kind: schema.KindEnum, Name: "Color"}, ""))
	assert.Equal(t, "_FooInterfaceModule", Segment(&schema.Node{Kind: schema.KindInterface, Name: "Foo"}, ""))
	assert.Equal(t, "_HomeAddressGroupModule", Segment(&schema.Node{Kind: schema.KindStruct, IsGroup: true, Name: "x"}, "home_address"))
}

func TestResolveLogsAssignedAliases(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, logger.InitializeTo(&buf, true, logger.VerbosityDebug))
	t.Cleanup(func() { require.NoError(t, logger.InitializeTo(&bytes.Buffer{}, false, logger.VerbosityUser)) })

	reg := New(testGraph(t))
	require.NoError(t, reg.Request(request(10, "addressbook.capnp:Person", "Person", nil, 0, RoleReader)))
	require.NoError(t, reg.Resolve())
	logger.Cleanup()

	var found bool
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if entry["msg"] != "assigned alias" {
			continue
		}
		found = true
		assert.Equal(t, "PersonReader", entry[logger.FieldAlias])
		assert.Equal(t, string(RoleReader), entry[logger.FieldRole])
	}
	assert.True(t, found, "no alias assignment logged")
}
