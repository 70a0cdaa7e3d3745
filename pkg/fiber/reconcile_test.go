package fiber

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/fiber/pkg/noop"
	"github.com/vango-dev/fiber/pkg/vdom"
)

func keyedList(keys ...string) *vdom.VNode {
	return vdom.Ul(vdom.Range(keys, func(k string, _ int) *vdom.VNode {
		return vdom.Li(vdom.Key(k), k)
	}))
}

func TestMountBuildsHostTree(t *testing.T) {
	env := newTestEnv(t)
	env.render(vdom.Div(vdom.Class("app"),
		vdom.H1("Title"),
		vdom.P("body"),
	))

	assert.Equal(t, `<div class="app"><h1>Title</h1><p>body</p></div>`, env.html())

	ops := env.host.Ops()
	assert.Equal(t, 3, noop.Count(ops, noop.OpCreate))
	assert.Equal(t, 2, noop.Count(ops, noop.OpCreateText))
	// The detached subtree is attached with a single container append.
	assert.Len(t, noop.Mutations(ops), 1)

	rec := env.lastCommit()
	assert.Equal(t, "sync", rec.Lane)
	assert.Equal(t, []string{"div"}, rec.Placed)
}

func TestKeyedReorderMovesWithoutRecreating(t *testing.T) {
	env := newTestEnv(t)
	env.render(keyedList("1", "2", "3"))
	require.Equal(t, "<ul><li>1</li><li>2</li><li>3</li></ul>", env.html())
	ul := env.container.Children[0]
	before := append([]*noop.Node(nil), ul.Children...)

	env.host.ResetOps()
	env.render(keyedList("3", "2", "1"))

	assert.Equal(t, "<ul><li>3</li><li>2</li><li>1</li></ul>", env.html())
	rec := env.lastCommit()
	assert.Equal(t, []string{"li[2]", "li[1]"}, rec.Placed, "3 stays put, the others move after it")
	assert.Zero(t, rec.Deletions)

	ops := env.host.Ops()
	assert.Zero(t, noop.Count(ops, noop.OpCreate))
	assert.Zero(t, noop.Count(ops, noop.OpCreateText))
	assert.Zero(t, noop.Count(ops, noop.OpRemove))
	assert.Zero(t, noop.Count(ops, noop.OpSetText))

	after := ul.Children
	assert.Same(t, before[2], after[0])
	assert.Same(t, before[1], after[1])
	assert.Same(t, before[0], after[2])
}

func TestKeyedInsertAndDelete(t *testing.T) {
	env := newTestEnv(t)
	env.render(keyedList("a", "b", "c"))
	ul := env.container.Children[0]
	a, c := ul.Children[0], ul.Children[2]

	env.host.ResetOps()
	env.render(keyedList("x", "a", "c", "d"))

	assert.Equal(t, "<ul><li>x</li><li>a</li><li>c</li><li>d</li></ul>", env.html())
	assert.Same(t, a, ul.Children[1])
	assert.Same(t, c, ul.Children[2])

	ops := env.host.Ops()
	assert.Equal(t, 2, noop.Count(ops, noop.OpCreate))
	assert.Equal(t, 1, noop.Count(ops, noop.OpRemove))
	assert.Equal(t, 1, noop.Count(ops, noop.OpInsert), "x goes before a")
	assert.Equal(t, 1, noop.Count(ops, noop.OpAppend), "d goes last")

	rec := env.lastCommit()
	assert.Equal(t, []string{"li[x]", "li[d]"}, rec.Placed)
	assert.Equal(t, 1, rec.Deletions)
}

func TestTextUpdateReusesHostNode(t *testing.T) {
	env := newTestEnv(t)
	env.render(vdom.P("a"))
	text := env.container.Children[0].Children[0]

	env.host.ResetOps()
	env.render(vdom.P("b"))

	assert.Equal(t, "<p>b</p>", env.html())
	ops := env.host.Ops()
	require.Len(t, ops, 1)
	assert.Equal(t, noop.OpSetText, ops[0].Kind)
	assert.Same(t, text, ops[0].Node)
	assert.Equal(t, 1, env.lastCommit().Updates)
}

func TestUnchangedRenderCommitsNothing(t *testing.T) {
	env := newTestEnv(t)
	tree := func() *vdom.VNode { return vdom.Div(vdom.ID("x"), vdom.Span("same")) }
	env.render(tree())

	env.host.ResetOps()
	env.render(tree())

	assert.Empty(t, env.host.Ops())
	rec := env.lastCommit()
	assert.Zero(t, rec.Placements)
	assert.Zero(t, rec.Updates)
	assert.Zero(t, rec.Deletions)
}

func TestPropUpdate(t *testing.T) {
	env := newTestEnv(t)
	env.render(vdom.Div(vdom.Class("a"), vdom.Title("old"), "x"))
	div := env.container.Children[0]

	env.host.ResetOps()
	env.render(vdom.Div(vdom.Class("b"), vdom.ID("main"), "x"))

	assert.Equal(t, `<div class="b" id="main">x</div>`, env.html())
	ops := env.host.Ops()
	require.Len(t, ops, 1)
	assert.Equal(t, noop.OpUpdateProps, ops[0].Kind)
	assert.Same(t, div, ops[0].Node)
	assert.Equal(t, []vdom.PropChange{
		{Key: "class", Value: "b"},
		{Key: "id", Value: "main"},
		{Key: "title", Removed: true},
	}, ops[0].Changes)
}

func TestTypeChangeReplacesSubtree(t *testing.T) {
	env := newTestEnv(t)
	env.render(vdom.Div(vdom.Span("a")))
	env.host.ResetOps()

	env.render(vdom.Div(vdom.P("a")))

	assert.Equal(t, "<div><p>a</p></div>", env.html())
	ops := env.host.Ops()
	assert.Equal(t, 1, noop.Count(ops, noop.OpRemove))
	assert.Equal(t, 1, noop.Count(ops, noop.OpCreate))
	assert.Equal(t, 1, env.lastCommit().Deletions)
}

func TestTextAndElementSwap(t *testing.T) {
	env := newTestEnv(t)
	env.render(vdom.Div("plain"))
	env.render(vdom.Div(vdom.Span("wrapped")))
	assert.Equal(t, "<div><span>wrapped</span></div>", env.html())

	env.render(vdom.Div("plain again"))
	assert.Equal(t, "<div>plain again</div>", env.html())
}

func TestRemoveAllChildren(t *testing.T) {
	env := newTestEnv(t)
	env.render(keyedList("a", "b"))
	env.host.ResetOps()

	env.render(vdom.Ul())

	assert.Equal(t, "<ul></ul>", env.html())
	assert.Equal(t, 2, noop.Count(env.host.Ops(), noop.OpRemove))
}

func TestNilChildrenKeepPositions(t *testing.T) {
	env := newTestEnv(t)
	list := func(showFirst bool) *vdom.VNode {
		return vdom.Ul([]*vdom.VNode{
			vdom.If(showFirst, vdom.Li("first")),
			vdom.Li("second"),
			vdom.Li("third"),
		})
	}
	env.render(list(true))
	ul := env.container.Children[0]
	second := ul.Children[1]

	env.render(list(false))

	assert.Equal(t, "<ul><li>second</li><li>third</li></ul>", env.html())
	assert.Same(t, second, ul.Children[0], "index identity ignores the hole")
}

func TestUnkeyedFragmentIsFlattened(t *testing.T) {
	env := newTestEnv(t)
	env.render(vdom.Fragment(vdom.Li("a"), vdom.Li("b")))
	assert.Equal(t, "<li>a</li><li>b</li>", env.html())

	snap := env.root.Snapshot()
	require.Len(t, snap.Tree.Children, 2, "no fragment fiber at the top")
	assert.Equal(t, "HostComponent", snap.Tree.Children[0].Tag)
}

func TestKeyedFragmentMovesAsUnit(t *testing.T) {
	env := newTestEnv(t)
	group := func() *vdom.VNode {
		return vdom.Fragment(vdom.Key("f"), vdom.Li("x"), vdom.Li("y"))
	}
	env.render(vdom.Ul(vdom.Li(vdom.Key("z"), "z"), group()))
	require.Equal(t, "<ul><li>z</li><li>x</li><li>y</li></ul>", env.html())

	env.host.ResetOps()
	env.render(vdom.Ul(group(), vdom.Li(vdom.Key("z"), "z")))

	assert.Equal(t, "<ul><li>x</li><li>y</li><li>z</li></ul>", env.html())
	assert.Equal(t, []string{"li[z]"}, env.lastCommit().Placed)
	assert.Zero(t, noop.Count(env.host.Ops(), noop.OpCreate))

	// Deleting the fragment removes both of its host children.
	env.host.ResetOps()
	env.render(vdom.Ul(vdom.Li(vdom.Key("z"), "z")))
	assert.Equal(t, "<ul><li>z</li></ul>", env.html())
	assert.Equal(t, 2, noop.Count(env.host.Ops(), noop.OpRemove))
}

func TestPlacementBeforeFragmentSibling(t *testing.T) {
	env := newTestEnv(t)
	group := vdom.Fragment(vdom.Key("g"), vdom.Li("x"), vdom.Li("y"))
	env.render(vdom.Ul(group))

	env.render(vdom.Ul(vdom.Li(vdom.Key("new"), "new"), vdom.Fragment(vdom.Key("g"), vdom.Li("x"), vdom.Li("y"))))

	assert.Equal(t, "<ul><li>new</li><li>x</li><li>y</li></ul>", env.html())
}

func TestDuplicateKeysWarnAndKeepFirst(t *testing.T) {
	env := newTestEnv(t)
	env.render(vdom.Ul(
		vdom.Li(vdom.Key("a"), "1"),
		vdom.Li(vdom.Key("a"), "2"),
		vdom.Li(vdom.Key("b"), "3"),
	))

	assert.Equal(t, "<ul><li>1</li><li>2</li><li>3</li></ul>", env.html())
	assert.Contains(t, env.logs.String(), "duplicate key among siblings")
	assert.Contains(t, env.logs.String(), "code=F004")

	ul := env.container.Children[0]
	first := ul.Children[0]

	env.logs.Reset()
	env.render(vdom.Ul(
		vdom.Li(vdom.Key("a"), "1"),
		vdom.Li(vdom.Key("a"), "2b"),
		vdom.Li(vdom.Key("b"), "3"),
	))
	assert.Equal(t, "<ul><li>1</li><li>2b</li><li>3</li></ul>", env.html())
	assert.Contains(t, env.logs.String(), "code=F004")
	assert.Len(t, ul.Children, 3)
	assert.NotSame(t, first, ul.Children[0], "the previous map keeps the later fiber under the shared key")
}

type foreignComponent struct{}

func (foreignComponent) ComponentName() string { return "Foreign" }

func TestUnknownComponentIsSkipped(t *testing.T) {
	env := newTestEnv(t)
	env.render(vdom.Div(vdom.Comp(foreignComponent{}), vdom.Span("kept")))

	assert.Equal(t, "<div><span>kept</span></div>", env.html())
	assert.Contains(t, env.logs.String(), "code=F005")
	assert.Empty(t, env.errs)
}
