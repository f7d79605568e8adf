package api

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/pedrohavay/namescreen/internal/logging"
	"github.com/pedrohavay/namescreen/screen"
	"github.com/pedrohavay/namescreen/watchlist"
)

func newTestServer(t *testing.T) (*Server, *watchlist.Store, watchlist.Entry) {
	t.Helper()
	store := watchlist.NewStore(nil)
	e, err := store.Add("Osama Bin Laden")
	require.NoError(t, err)
	return NewServer(store, nil, Options{Trace: true}), store, e
}

func do(s *Server, method, uri, body string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	if body != "" {
		ctx.Request.Header.SetContentType("text/plain")
		ctx.Request.SetBodyString(body)
	}
	s.Handler(ctx)
	return ctx
}

type verifyResponse struct {
	IsSanctioned    bool    `json:"isSanctioned"`
	SanctionedName  string  `json:"sanctionedName"`
	Jaro            float64 `json:"jaro"`
	Jaccard         float64 `json:"jaccard"`
	PhoneticMatches int     `json:"phoneticMatches"`
	LevenshteinNorm float64 `json:"levenshteinNorm"`
	Msg             string  `json:"msg"`
}

func decode(t *testing.T, ctx *fasthttp.RequestCtx, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), v), string(ctx.Response.Body()))
}

func TestVerifySanctionedVariants(t *testing.T) {
	s, _, _ := newTestServer(t)
	for _, variant := range []string{"Osama Bin Laden", "Ben Osama Ladn", "Laden Osama Bin", "to the Mr. Osama Bin Laden"} {
		t.Run(variant, func(t *testing.T) {
			ctx := do(s, "POST", BasePath+"/verify", variant)
			require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
			var res verifyResponse
			decode(t, ctx, &res)
			assert.True(t, res.IsSanctioned)
			assert.Equal(t, "Osama Bin Laden", res.SanctionedName)
			assert.Greater(t, res.Jaro, 0.0)
		})
	}
}

func TestVerifyNonMatch(t *testing.T) {
	s, _, _ := newTestServer(t)
	ctx := do(s, "POST", BasePath+"/verify", "John Doe")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var res verifyResponse
	decode(t, ctx, &res)
	assert.False(t, res.IsSanctioned)
	assert.Equal(t, screen.MsgNotFound, res.Msg)
}

func TestVerifyBadRequests(t *testing.T) {
	s, _, _ := newTestServer(t)

	ctx := do(s, "POST", BasePath+"/verify", "")
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
	var res verifyResponse
	decode(t, ctx, &res)
	assert.Equal(t, screen.MsgInvalidName, res.Msg)

	ctx = do(s, "POST", BasePath+"/verify", "R2-D2")
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

	ctx = do(s, "GET", BasePath+"/verify", "")
	assert.Equal(t, fasthttp.StatusMethodNotAllowed, ctx.Response.StatusCode())
}

func TestCreateAndGetPerson(t *testing.T) {
	s, _, _ := newTestServer(t)

	ctx := do(s, "POST", BasePath, "Jane Doe")
	require.Equal(t, fasthttp.StatusCreated, ctx.Response.StatusCode())
	var created watchlist.Entry
	decode(t, ctx, &created)
	assert.Equal(t, "Jane Doe", created.Name)
	assert.Equal(t, screen.Preprocess("Jane Doe"), created.PreprocessedName)
	assert.Equal(t, int64(2), created.ID)

	ctx = do(s, "GET", BasePath+"/2", "")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var got watchlist.Entry
	decode(t, ctx, &got)
	assert.Equal(t, created, got)

	ctx = do(s, "POST", BasePath, "")
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestGetAllNames(t *testing.T) {
	s, _, e := newTestServer(t)
	ctx := do(s, "GET", BasePath, "")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var all []watchlist.Entry
	decode(t, ctx, &all)
	require.Len(t, all, 1)
	assert.Equal(t, e.Name, all[0].Name)
	assert.Equal(t, "bin laden osama", all[0].PreprocessedName)
}

func TestUpdatePerson(t *testing.T) {
	s, _, e := newTestServer(t)
	ctx := do(s, "PUT", BasePath+"/1", "Osama Bin Laden Updated")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var up watchlist.Entry
	decode(t, ctx, &up)
	assert.Equal(t, e.ID, up.ID)
	assert.Equal(t, "Osama Bin Laden Updated", up.Name)
	assert.Equal(t, screen.Preprocess("Osama Bin Laden Updated"), up.PreprocessedName)

	assert.Equal(t, fasthttp.StatusBadRequest, do(s, "PUT", BasePath+"/1", "12345").Response.StatusCode())
	assert.Equal(t, fasthttp.StatusNotFound, do(s, "PUT", BasePath+"/77", "John Doe").Response.StatusCode())
}

func TestDeletePerson(t *testing.T) {
	s, store, _ := newTestServer(t)
	assert.Equal(t, fasthttp.StatusOK, do(s, "DELETE", BasePath+"/1", "").Response.StatusCode())
	assert.Equal(t, fasthttp.StatusNotFound, do(s, "GET", BasePath+"/1", "").Response.StatusCode())
	assert.Zero(t, store.Len())

	assert.Equal(t, fasthttp.StatusNotFound, do(s, "DELETE", BasePath+"/999", "").Response.StatusCode())
}

func TestInvalidIDsAndRoutes(t *testing.T) {
	s, _, _ := newTestServer(t)
	for _, uri := range []string{BasePath + "/0", BasePath + "/-3", BasePath + "/abc"} {
		assert.Equal(t, fasthttp.StatusBadRequest, do(s, "GET", uri, "").Response.StatusCode(), uri)
	}
	assert.Equal(t, fasthttp.StatusNotFound, do(s, "GET", "/nope", "").Response.StatusCode())
	assert.Equal(t, fasthttp.StatusMethodNotAllowed, do(s, "PATCH", BasePath+"/1", "x").Response.StatusCode())
	assert.Equal(t, fasthttp.StatusOK, do(s, "GET", "/health", "").Response.StatusCode())
}

func TestVerifyEmptyWatchlist(t *testing.T) {
	s := NewServer(watchlist.NewStore(nil), nil, Options{})
	ctx := do(s, "POST", BasePath+"/verify", "Osama Bin Laden")
	var res verifyResponse
	decode(t, ctx, &res)
	assert.False(t, res.IsSanctioned)
	assert.Equal(t, screen.MsgNotFound, res.Msg)
}

func TestServeInMemory(t *testing.T) {
	s, _, _ := newTestServer(t)
	s.opts.MaxConns = 4
	ln := fasthttputil.NewInmemoryListener()
	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- s.Serve(ctx, ln) }()

	client := &fasthttp.Client{Dial: func(string) (net.Conn, error) { return ln.Dial() }}
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)
	req.SetRequestURI("http://namescreen" + BasePath + "/verify")
	req.Header.SetMethod("POST")
	req.SetBodyString("Laden Osama Bin")
	require.NoError(t, client.DoTimeout(req, resp, 5*time.Second))
	assert.Equal(t, fasthttp.StatusOK, resp.StatusCode())
	var res verifyResponse
	require.NoError(t, json.Unmarshal(resp.Body(), &res))
	assert.True(t, res.IsSanctioned)

	cancel()
	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestTraceReachesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "namescreen.log")
	logger, err := logging.New(logging.Options{File: path, Level: "debug"})
	require.NoError(t, err)

	store := watchlist.NewStore(nil)
	_, err = store.Add("Osama Bin Laden")
	require.NoError(t, err)
	s := NewServer(store, logger, Options{Trace: true})
	require.Equal(t, fasthttp.StatusOK, do(s, "POST", BasePath+"/verify", "John Doe").Response.StatusCode())
	require.NoError(t, logger.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Candidate scored")
	assert.Contains(t, string(raw), "Name cleared")
}
