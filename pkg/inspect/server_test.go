package inspect

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/fiber/pkg/fiber"
	"github.com/vango-dev/fiber/pkg/noop"
	"github.com/vango-dev/fiber/pkg/scheduler"
	"github.com/vango-dev/fiber/pkg/telemetry"
	"github.com/vango-dev/fiber/pkg/vdom"
)

type fixture struct {
	t     *testing.T
	srv   *Server
	ts    *httptest.Server
	sched *scheduler.Scheduler
	r     *fiber.Reconciler
	root  *fiber.FiberRootNode
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	reg := prometheus.NewRegistry()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := telemetry.NewMetrics(telemetry.WithRegistry(reg), telemetry.WithNamespace("inspect_test"))

	srv := New(append([]Option{WithGatherer(reg), WithLogger(logger)}, opts...)...)
	sched := scheduler.New(scheduler.WithLogger(logger))
	host := noop.New(noop.WithMicrotaskQueue(sched.QueueMicrotask))
	r := fiber.New(host, sched,
		fiber.WithLogger(logger),
		fiber.WithMetrics(metrics),
		fiber.WithCommitObserver(srv.Observer()),
	)

	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		srv.Close()
		ts.Close()
	})

	return &fixture{
		t:     t,
		srv:   srv,
		ts:    ts,
		sched: sched,
		r:     r,
		root:  r.CreateContainer(host.NewContainer()),
	}
}

func (f *fixture) render(el *vdom.VNode) {
	f.r.UpdateContainer(el, f.root)
	f.sched.FlushAll()
}

func (f *fixture) get(path string, header ...string) *http.Response {
	f.t.Helper()
	req, err := http.NewRequest(http.MethodGet, f.ts.URL+path, nil)
	require.NoError(f.t, err)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(f.t, err)
	f.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (f *fixture) getJSON(path string, v any) {
	f.t.Helper()
	resp := f.get(path)
	require.Equal(f.t, http.StatusOK, resp.StatusCode)
	require.NoError(f.t, json.NewDecoder(resp.Body).Decode(v))
}

func list(items ...string) *vdom.VNode {
	return vdom.Ul(vdom.Range(items, func(s string, _ int) *vdom.VNode {
		return vdom.Li(vdom.Key(s), s)
	}))
}

func TestRootsListsCommittedRoots(t *testing.T) {
	f := newFixture(t)

	var empty []RootSummary
	f.getJSON("/roots", &empty)
	assert.Empty(t, empty)

	f.render(list("a", "b"))

	var roots []RootSummary
	f.getJSON("/roots", &roots)
	require.Len(t, roots, 1)
	assert.Equal(t, f.root.ID, roots[0].ID)
	assert.Equal(t, 1, roots[0].Commits)
	require.NotNil(t, roots[0].LastCommit)
	assert.Equal(t, []string{"ul"}, roots[0].LastCommit.Placed)
	assert.Equal(t, "sync", roots[0].LastCommit.Lane)
}

func TestSnapshotHonorsETag(t *testing.T) {
	f := newFixture(t)
	f.render(list("a", "b"))

	resp := f.get("/roots/" + f.root.ID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	etag := resp.Header.Get("ETag")
	require.NotEmpty(t, etag)

	var snap fiber.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, f.root.ID, snap.RootID)
	require.Len(t, snap.Tree.Children, 1)
	ul := snap.Tree.Children[0]
	assert.Equal(t, "ul", ul.Type)
	require.Len(t, ul.Children, 2)
	assert.Equal(t, "a", ul.Children[0].Key)

	notModified := f.get("/roots/"+f.root.ID, "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, notModified.StatusCode)

	f.render(list("b", "a"))
	changed := f.get("/roots/"+f.root.ID, "If-None-Match", etag)
	assert.Equal(t, http.StatusOK, changed.StatusCode)
	assert.NotEqual(t, etag, changed.Header.Get("ETag"))
}

func TestUnknownRootIsNotFound(t *testing.T) {
	f := newFixture(t)
	for _, path := range []string{"/roots/missing", "/roots/missing/commits", "/roots/missing/stream"} {
		assert.Equal(t, http.StatusNotFound, f.get(path).StatusCode, path)
	}
}

func TestCommitHistoryIsBounded(t *testing.T) {
	f := newFixture(t, WithHistory(2))
	f.render(list("a"))
	f.render(list("a", "b"))
	f.render(list("a", "b", "c"))

	var records []fiber.CommitRecord
	f.getJSON("/roots/"+f.root.ID+"/commits", &records)
	require.Len(t, records, 2)
	assert.Equal(t, uint64(2), records[0].Sequence)
	assert.Equal(t, uint64(3), records[1].Sequence)
	assert.Equal(t, []string{"li[c]"}, records[1].Placed)

	var last []fiber.CommitRecord
	f.getJSON("/roots/"+f.root.ID+"/commits?limit=1", &last)
	require.Len(t, last, 1)
	assert.Equal(t, uint64(3), last[0].Sequence)

	var roots []RootSummary
	f.getJSON("/roots", &roots)
	require.Len(t, roots, 1)
	assert.Equal(t, 3, roots[0].Commits, "the counter is not bounded by the history")
}

func TestStreamSendsSnapshotThenCommits(t *testing.T) {
	f := newFixture(t)
	f.render(list("a"))

	url := "ws" + strings.TrimPrefix(f.ts.URL, "http") + "/roots/" + f.root.ID + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() StreamMessage {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var msg StreamMessage
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	hello := read()
	assert.Equal(t, MessageSnapshot, hello.Type)
	assert.Equal(t, f.root.ID, hello.RootID)
	var snap fiber.Snapshot
	require.NoError(t, json.Unmarshal(hello.Snapshot, &snap))
	assert.Equal(t, "ul", snap.Tree.Children[0].Type)
	assert.Equal(t, 1, f.srv.ClientCount(f.root.ID))

	f.render(list("a", "b"))
	msg := read()
	assert.Equal(t, MessageCommit, msg.Type)
	require.NotNil(t, msg.Commit)
	assert.Equal(t, uint64(2), msg.Commit.Sequence)
	assert.Equal(t, []string{"li[b]"}, msg.Commit.Placed)

	f.r.Unmount(f.root)
	f.sched.FlushAll()
	removed := read()
	assert.Equal(t, MessageRemoved, removed.Type)

	var roots []RootSummary
	f.getJSON("/roots", &roots)
	assert.Empty(t, roots)
}

func TestMetricsAndHealth(t *testing.T) {
	f := newFixture(t)
	f.render(list("a"))

	resp := f.get("/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "inspect_test_commits_total 1")

	assert.Equal(t, http.StatusNoContent, f.get("/healthz").StatusCode)
}

func TestETagIsStable(t *testing.T) {
	data := []byte(`{"rootId":"x"}`)
	assert.Equal(t, etagOf(data), etagOf(data))
	assert.NotEqual(t, etagOf(data), etagOf([]byte(`{"rootId":"y"}`)))
	assert.True(t, strings.HasPrefix(etagOf(data), `"`))
}
