package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	deps, _ := testDeps(t, &FakeResourceService{})
	srv := httptest.NewServer(NewServer(NewWithHandlers(deps), testLogger()).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postMessage(t *testing.T, srv *httptest.Server, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/messages", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestServerHealthz(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServerDispatchesEnvelope(t *testing.T) {
	srv := testServer(t)

	resp, out := postMessage(t, srv, `{"action":"getAuthTokens"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, out["success"])
}

func TestServerUnknownActionIsStillHTTP200(t *testing.T) {
	srv := testServer(t)

	resp, out := postMessage(t, srv, `{"action":"makeCoffee"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "unknown action: makeCoffee", out["error"])
}

func TestServerMalformedEnvelopeIs400(t *testing.T) {
	srv := testServer(t)

	resp, out := postMessage(t, srv, `{"no":"action"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, out["success"])
}

func TestClientCall(t *testing.T) {
	srv := testServer(t)
	c := NewClient(srv.URL)

	out, err := c.Call(context.Background(), "reportAuthToken", map[string]any{
		"token": "tok-1",
		"url":   "https://acme.spend.cloud/api/x",
	})
	require.NoError(t, err)
	assert.Equal(t, true, out["added"])

	_, err = c.Call(context.Background(), "makeCoffee", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown action")
}

func TestClientPing(t *testing.T) {
	srv := testServer(t)

	c := NewClient(strings.TrimPrefix(srv.URL, "http://"))
	assert.NoError(t, c.Ping(context.Background()))

	down := NewClient("127.0.0.1:1")
	assert.Error(t, down.Ping(context.Background()))
}
