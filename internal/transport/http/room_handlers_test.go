package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getJSON(t *testing.T, url string, wantStatus int, v any) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, wantStatus, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealthEndpoint(t *testing.T) {
	ts := startTestServer(t, testConfig(), "unused")

	resp, err := ts.Client().Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestRoomEndpoints(t *testing.T) {
	ts := startTestServer(t, testConfig(), "unused")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var empty ListRoomsResponse
	getJSON(t, ts.URL+"/api/rooms", http.StatusOK, &empty)
	assert.Empty(t, empty.Rooms)

	conn := dial(t, ctx, ts)
	enterRoom(t, ctx, conn, "alice", "lobby")
	sendEvent(t, ctx, conn, "message", map[string]string{"name": "alice", "text": "hi"})
	readMessage(t, ctx, conn, "alice", "hi")

	var list ListRoomsResponse
	getJSON(t, ts.URL+"/api/rooms", http.StatusOK, &list)
	require.Len(t, list.Rooms, 1)
	assert.Equal(t, RoomResponse{Name: "lobby", Members: 1, AIEnabled: false, Window: 1}, list.Rooms[0])

	var detail RoomDetailResponse
	getJSON(t, ts.URL+"/api/rooms/lobby", http.StatusOK, &detail)
	assert.Equal(t, "lobby", detail.Name)
	assert.Equal(t, 1, detail.LogLength)
	require.Len(t, detail.Users, 1)
	assert.Equal(t, "alice", detail.Users[0].Name)

	var notFound ErrorResponse
	getJSON(t, ts.URL+"/api/rooms/missing", http.StatusNotFound, &notFound)
	assert.Equal(t, "room not found", notFound.Error)
}

func TestStaticAssetsServedWhenDirExists(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>chat</h1>"), 0o600))

	cfg := testConfig()
	cfg.StaticDir = dir
	ts := startTestServer(t, cfg, "unused")

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "<h1>chat</h1>")

	// API routes still win over the file server.
	var list ListRoomsResponse
	getJSON(t, ts.URL+"/api/rooms", http.StatusOK, &list)
}

func TestStaticAssetsDisabledWithoutDir(t *testing.T) {
	cfg := testConfig()
	cfg.StaticDir = filepath.Join(t.TempDir(), "missing")
	ts := startTestServer(t, cfg, "unused")

	resp, err := http.Get(ts.URL + "/index.html")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
