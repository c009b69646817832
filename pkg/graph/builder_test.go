package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/naviscope/pkg/symbol"
)

func newTestBuilder() *Builder {
	return NewBuilder(symbol.NewPool(), symbol.NewPathPool())
}

func pkgPath(name string) FQNPath {
	return FQNPath{{Name: name, Kind: KindPackage}}
}

func classPath(pkg, class string) FQNPath {
	return FQNPath{{Name: pkg, Kind: KindPackage}, {Name: class, Kind: KindClass}}
}

func TestStructuralNesting(t *testing.T) {
	b := newTestBuilder()
	b.AddNode(AddNodePayload{
		Parent: classPath("com.example", "MyClass"),
		Name:   "field",
		Kind:   KindField,
		Origin: OriginProject,
		Status: StatusResolved,
	})
	b.AddNode(AddNodePayload{
		Parent: classPath("com.example", "MyClass"),
		Name:   "method",
		Kind:   KindMethod,
		Origin: OriginProject,
		Status: StatusResolved,
	})
	g := b.Build()

	strings := g.Strings()
	_, ok := g.FindNode(FQNKey{Parent: NoIndex, Name: strings.Intern("com.example"), Kind: KindPackage})
	require.True(t, ok)

	pkgIdx, _ := g.FindNode(FQNKey{Parent: NoIndex, Name: strings.Intern("com.example"), Kind: KindPackage})
	classIdx, ok := g.FindNode(FQNKey{Parent: pkgIdx, Name: strings.Intern("MyClass"), Kind: KindClass})
	require.True(t, ok)

	fieldIdx, ok := g.FindNode(FQNKey{Parent: classIdx, Name: strings.Intern("field"), Kind: KindField})
	require.True(t, ok)
	methodIdx, ok := g.FindNode(FQNKey{Parent: classIdx, Name: strings.Intern("method"), Kind: KindMethod})
	require.True(t, ok)

	assert.Contains(t, g.Neighbors(classIdx, Outgoing, EdgeContains), fieldIdx)
	assert.Contains(t, g.Neighbors(classIdx, Outgoing, EdgeContains), methodIdx)
	assert.Contains(t, g.Neighbors(pkgIdx, Outgoing, EdgeContains), classIdx)
}

func TestAddNodeIdempotentOnIdentity(t *testing.T) {
	b := newTestBuilder()
	idx1 := b.AddNode(AddNodePayload{Parent: pkgPath("p"), Name: "C", Kind: KindClass, Status: StatusUnresolved})
	idx2 := b.AddNode(AddNodePayload{Parent: pkgPath("p"), Name: "C", Kind: KindClass, Status: StatusResolved})
	assert.Equal(t, idx1, idx2)

	g := b.Build()
	n, ok := g.GetNode(idx1)
	require.True(t, ok)
	assert.Equal(t, StatusResolved, n.Status)
}

func TestAddNodeDoesNotRegressStatus(t *testing.T) {
	b := newTestBuilder()
	idx := b.AddNode(AddNodePayload{Parent: pkgPath("p"), Name: "C", Kind: KindClass, Status: StatusResolved})
	b.AddNode(AddNodePayload{Parent: pkgPath("p"), Name: "C", Kind: KindClass, Status: StatusUnresolved})
	g := b.Build()
	n, _ := g.GetNode(idx)
	assert.Equal(t, StatusResolved, n.Status)
}

func TestInterfaceImplementation(t *testing.T) {
	b := newTestBuilder()
	b.AddNode(AddNodePayload{Parent: pkgPath("p"), Name: "Base", Kind: KindInterface, Status: StatusResolved})
	b.AddNode(AddNodePayload{Parent: pkgPath("p"), Name: "Impl", Kind: KindClass, Status: StatusResolved})
	b.AddEdge(AddEdgePayload{
		From: classPath("p", "Impl"),
		To:   FQNPath{{Name: "p", Kind: KindPackage}, {Name: "Base", Kind: KindInterface}},
		Type: EdgeImplements,
	})
	g := b.Build()

	strings := g.Strings()
	pkgIdx, _ := g.FindNode(FQNKey{Parent: NoIndex, Name: strings.Intern("p"), Kind: KindPackage})
	implIdx, _ := g.FindNode(FQNKey{Parent: pkgIdx, Name: strings.Intern("Impl"), Kind: KindClass})
	baseIdx, _ := g.FindNode(FQNKey{Parent: pkgIdx, Name: strings.Intern("Base"), Kind: KindInterface})

	assert.Contains(t, g.Neighbors(implIdx, Outgoing, EdgeImplements), baseIdx)
}

func TestRemovePathCascadesEdgesAndFileIndex(t *testing.T) {
	b := newTestBuilder()
	b.AddNode(AddNodePayload{
		Parent:   pkgPath("p"),
		Name:     "C",
		Kind:     KindClass,
		Status:   StatusResolved,
		Location: &LocationRef{Path: "p/C.go", Range: Range{EndLine: 10}},
	})
	b.UpdateFile("p/C.go", SourceFileInfo{ContentHash: 1, LastModified: 100})
	b.UpdateIdentifiers("p/C.go", []string{"C"})

	b.RemovePath("p/C.go")
	g := b.Build()

	_, ok := g.FileEntry(g.Paths().Intern("p/C.go"))
	assert.False(t, ok)
	strings := g.Strings()
	pkgIdx, pkgOK := g.FindNode(FQNKey{Parent: NoIndex, Name: strings.Intern("p"), Kind: KindPackage})
	require.True(t, pkgOK)
	_, classOK := g.FindNode(FQNKey{Parent: pkgIdx, Name: strings.Intern("C"), Kind: KindClass})
	assert.False(t, classOK)
}

func TestApplyOpsOrderingReindexFile(t *testing.T) {
	b := newTestBuilder()
	ops := []GraphOp{
		RemovePath("p/C.go"),
		UpdateFile("p/C.go", SourceFileInfo{ContentHash: 2, LastModified: 200}),
		AddNode(AddNodePayload{
			Parent:   pkgPath("p"),
			Name:     "C",
			Kind:     KindClass,
			Status:   StatusResolved,
			Location: &LocationRef{Path: "p/C.go", Range: Range{EndLine: 5}},
		}),
	}
	require.NoError(t, b.ApplyOps(ops))
	g := b.Build()
	fe, ok := g.FileEntry(g.Paths().Intern("p/C.go"))
	require.True(t, ok)
	assert.Equal(t, uint64(2), fe.Metadata.ContentHash)
	assert.Len(t, fe.Nodes, 1)
}

func TestApplyOpsIdempotentOnAddOnly(t *testing.T) {
	ops := []GraphOp{
		AddNode(AddNodePayload{Parent: pkgPath("p"), Name: "C", Kind: KindClass, Status: StatusResolved}),
		AddEdgeOp(AddEdgePayload{From: classPath("p", "C"), To: pkgPath("p"), Type: EdgeUsesDependency}),
	}
	b1 := newTestBuilder()
	require.NoError(t, b1.ApplyOps(ops))
	require.NoError(t, b1.ApplyOps(ops))
	g1 := b1.Build()

	b2 := newTestBuilder()
	require.NoError(t, b2.ApplyOps(ops))
	g2 := b2.Build()

	assert.Equal(t, g1.NodeCount(), g2.NodeCount())
	assert.Equal(t, g1.EdgeCount(), g2.EdgeCount())
}

func TestFromGraphDeepCopyIsIndependent(t *testing.T) {
	b := newTestBuilder()
	b.AddNode(AddNodePayload{Parent: pkgPath("p"), Name: "C", Kind: KindClass, Status: StatusResolved})
	g1 := b.Build()

	b2 := FromGraph(g1)
	b2.AddNode(AddNodePayload{Parent: pkgPath("p"), Name: "D", Kind: KindClass, Status: StatusResolved})
	g2 := b2.Build()

	assert.Equal(t, 2, g1.NodeCount())
	assert.Equal(t, 3, g2.NodeCount())
}

func TestFindNodeAtReturnsInnermost(t *testing.T) {
	b := newTestBuilder()
	b.AddNode(AddNodePayload{
		Parent:   pkgPath("p"),
		Name:     "C",
		Kind:     KindClass,
		Status:   StatusResolved,
		Location: &LocationRef{Path: "p/C.go", Range: Range{StartLine: 0, EndLine: 20}},
	})
	b.AddNode(AddNodePayload{
		Parent:   classPath("p", "C"),
		Name:     "method",
		Kind:     KindMethod,
		Status:   StatusResolved,
		Location: &LocationRef{Path: "p/C.go", Range: Range{StartLine: 5, EndLine: 8}},
	})
	g := b.Build()
	idx, ok := g.FindNodeAt(g.Paths().Intern("p/C.go"), 6, 0)
	require.True(t, ok)
	n, _ := g.GetNode(idx)
	assert.Equal(t, KindMethod, n.Kind)
}

func TestRootNodesExcludesContainedNodes(t *testing.T) {
	b := newTestBuilder()
	b.AddNode(AddNodePayload{Parent: pkgPath("p"), Name: "C", Kind: KindClass, Status: StatusResolved})
	g := b.Build()
	roots := g.RootNodes()
	require.Len(t, roots, 1)
	n, _ := g.GetNode(roots[0])
	assert.Equal(t, KindPackage, n.Kind)
}
