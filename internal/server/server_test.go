package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pedalboard/internal/models"
	"pedalboard/internal/storage/memory"
)

type boardResponse struct {
	Pedalboard models.Pedalboard `json:"pedalboard"`
	Pedal      models.Pedal      `json:"pedal"`
}

type listResponse struct {
	Pedalboards []models.Pedalboard `json:"pedalboards"`
}

type errorResponse struct {
	Error  string              `json:"error"`
	Fields []models.FieldError `json:"fields"`
}

func newTestServer(t *testing.T, staticDir string) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(memory.New(logger), logger, staticDir)
}

func do(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func createBoard(t *testing.T, srv *Server, name string) models.Pedalboard {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/api/pedalboards", map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[boardResponse](t, rec).Pedalboard
}

func addPedal(t *testing.T, srv *Server, boardID, name string) models.Pedal {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/api/pedalboards/"+boardID+"/pedals",
		map[string]any{"name": name, "brand": "Brand", "type": "Fuzz"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[boardResponse](t, rec).Pedal
}

func pedalIDs(seq []models.Pedal) []string {
	out := make([]string, len(seq))
	for i, p := range seq {
		out[i] = p.ID
	}
	return out
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, "")
	rec := do(t, srv, http.MethodGet, "/api/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestPedalTypes(t *testing.T) {
	srv := newTestServer(t, "")
	rec := do(t, srv, http.MethodGet, "/api/pedal-types", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[map[string][]string](t, rec)
	assert.Len(t, got["pedal_types"], 17)
	assert.Contains(t, got["pedal_types"], "Multi-effect")
}

func TestCreatePedalboard(t *testing.T) {
	srv := newTestServer(t, "")

	rec := do(t, srv, http.MethodPost, "/api/pedalboards", map[string]any{
		"name":        "Blues Rig",
		"description": "gigs",
		"pedals": []map[string]any{
			{"name": "TS9", "brand": "Ibanez", "type": "Overdrive", "position": 7},
			{"name": "Rat", "brand": "ProCo", "type": "Distortion", "position": 2},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	board := decode[boardResponse](t, rec).Pedalboard
	assert.NotEmpty(t, board.ID)
	assert.Equal(t, "Blues Rig", board.Name)
	assert.False(t, board.Favorite)
	require.Len(t, board.Pedals, 2)
	assert.Equal(t, 1, board.Pedals[0].Position)
	assert.Equal(t, 2, board.Pedals[1].Position)
}

func TestCreatePedalboard_BlankName(t *testing.T) {
	srv := newTestServer(t, "")

	rec := do(t, srv, http.MethodPost, "/api/pedalboards", map[string]any{"name": "   "})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[errorResponse](t, rec)
	require.Len(t, body.Fields, 1)
	assert.Equal(t, "name", body.Fields[0].Field)

	list := decode[listResponse](t, do(t, srv, http.MethodGet, "/api/pedalboards", nil))
	assert.Empty(t, list.Pedalboards)
}

func TestCreatePedalboard_MalformedBody(t *testing.T) {
	srv := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodPost, "/api/pedalboards", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownPedalboard(t *testing.T) {
	srv := newTestServer(t, "")

	tests := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/api/pedalboards/nope", nil},
		{http.MethodPatch, "/api/pedalboards/nope", map[string]any{"name": "x"}},
		{http.MethodDelete, "/api/pedalboards/nope", nil},
		{http.MethodPost, "/api/pedalboards/nope/favorite", nil},
		{http.MethodPut, "/api/pedalboards/nope/pedals", map[string]any{"pedals": []any{}}},
		{http.MethodPost, "/api/pedalboards/nope/pedals", map[string]any{"name": "a", "brand": "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := do(t, srv, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
			assert.Contains(t, decode[errorResponse](t, rec).Error, "not found")
		})
	}
}

func TestUpdateAndDelete(t *testing.T) {
	srv := newTestServer(t, "")
	board := createBoard(t, srv, "Old")

	rec := do(t, srv, http.MethodPatch, "/api/pedalboards/"+board.ID, map[string]any{"name": "New"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "New", decode[boardResponse](t, rec).Pedalboard.Name)

	rec = do(t, srv, http.MethodPatch, "/api/pedalboards/"+board.ID, map[string]any{"name": " "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodDelete, "/api/pedalboards/"+board.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/pedalboards/"+board.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestToggleFavoriteAndFilter(t *testing.T) {
	srv := newTestServer(t, "")
	blues := createBoard(t, srv, "Blues Setup")
	createBoard(t, srv, "Rock Configuration")

	rec := do(t, srv, http.MethodPost, "/api/pedalboards/"+blues.ID+"/favorite", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[boardResponse](t, rec).Pedalboard.Favorite)

	list := decode[listResponse](t, do(t, srv, http.MethodGet, "/api/pedalboards?favorite=true", nil))
	require.Len(t, list.Pedalboards, 1)
	assert.Equal(t, blues.ID, list.Pedalboards[0].ID)

	list = decode[listResponse](t, do(t, srv, http.MethodGet, "/api/pedalboards?q=ROCK", nil))
	require.Len(t, list.Pedalboards, 1)
	assert.Equal(t, "Rock Configuration", list.Pedalboards[0].Name)

	list = decode[listResponse](t, do(t, srv, http.MethodGet, "/api/pedalboards?q=rock&favorite=true", nil))
	assert.Empty(t, list.Pedalboards)

	rec = do(t, srv, http.MethodGet, "/api/pedalboards?favorite=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestManagePedals(t *testing.T) {
	srv := newTestServer(t, "")
	board := createBoard(t, srv, "Chain")
	base := "/api/pedalboards/" + board.ID + "/pedals"

	a := addPedal(t, srv, board.ID, "A")
	b := addPedal(t, srv, board.ID, "B")
	c := addPedal(t, srv, board.ID, "C")
	assert.Equal(t, 3, c.Position)

	rec := do(t, srv, http.MethodPost, base+"/"+b.ID+"/move", map[string]any{"direction": "up"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[boardResponse](t, rec).Pedalboard
	assert.Equal(t, []string{b.ID, a.ID, c.ID}, pedalIDs(got.Pedals))

	rec = do(t, srv, http.MethodDelete, base+"/"+a.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got = decode[boardResponse](t, rec).Pedalboard
	assert.Equal(t, []string{b.ID, c.ID}, pedalIDs(got.Pedals))
	assert.Equal(t, 1, got.Pedals[0].Position)
	assert.Equal(t, 2, got.Pedals[1].Position)

	rec = do(t, srv, http.MethodDelete, base+"/"+a.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodPost, base+"/"+b.ID+"/move", map[string]any{"direction": "sideways"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorResponse](t, rec)
	require.Len(t, body.Fields, 1)
	assert.Equal(t, "direction", body.Fields[0].Field)

	rec = do(t, srv, http.MethodPost, base+"/"+a.ID+"/move", map[string]any{"direction": "down"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodPost, base+"/"+b.ID+"/move", map[string]any{"direction": "up"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{b.ID, c.ID}, pedalIDs(decode[boardResponse](t, rec).Pedalboard.Pedals))
}

func TestAddPedal_ConcurrentRequestsAllStored(t *testing.T) {
	srv := newTestServer(t, "")
	board := createBoard(t, srv, "Chain")

	const requests = 100
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/pedalboards/"+board.ID+"/pedals",
				bytes.NewBufferString(`{"name":"Fuzz Face","brand":"Dunlop","type":"Fuzz"}`))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			srv.Engine().ServeHTTP(rec, req)
			if rec.Code == http.StatusCreated {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, requests, created)
	got := decode[boardResponse](t, do(t, srv, http.MethodGet, "/api/pedalboards/"+board.ID, nil)).Pedalboard
	assert.Len(t, got.Pedals, requests)
	for i, p := range got.Pedals {
		assert.Equal(t, i+1, p.Position)
	}
}

func TestAddPedal_Validation(t *testing.T) {
	srv := newTestServer(t, "")
	board := createBoard(t, srv, "Chain")

	rec := do(t, srv, http.MethodPost, "/api/pedalboards/"+board.ID+"/pedals",
		map[string]any{"name": "", "brand": "Boss", "type": "Banjo"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[errorResponse](t, rec)
	require.Len(t, body.Fields, 2)
	assert.Equal(t, "name", body.Fields[0].Field)
	assert.Equal(t, "type", body.Fields[1].Field)
}

func TestSetPedals(t *testing.T) {
	srv := newTestServer(t, "")
	board := createBoard(t, srv, "Chain")

	rec := do(t, srv, http.MethodPut, "/api/pedalboards/"+board.ID+"/pedals", map[string]any{
		"pedals": []map[string]any{
			{"id": "x", "name": "Polytune", "brand": "TC Electronic", "type": "Tuner", "position": 4},
			{"id": "y", "name": "TS9", "brand": "Ibanez", "type": "Overdrive", "position": 9},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[boardResponse](t, rec).Pedalboard
	assert.Equal(t, []string{"x", "y"}, pedalIDs(got.Pedals))
	assert.Equal(t, 2, got.Pedals[1].Position)

	rec = do(t, srv, http.MethodPut, "/api/pedalboards/"+board.ID+"/pedals", map[string]any{
		"pedals": []map[string]any{{"name": "", "brand": "Boss"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNoRoute(t *testing.T) {
	srv := newTestServer(t, "")

	rec := do(t, srv, http.MethodGet, "/api/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"endpoint not found"}`, rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/pedalboard/abc", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStaticClientFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "robots.txt"), []byte("User-agent: *"), 0o644))

	srv := newTestServer(t, dir)

	rec := do(t, srv, http.MethodGet, "/pedalboard/abc", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "app")

	rec = do(t, srv, http.MethodGet, "/robots.txt", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "User-agent")

	rec = do(t, srv, http.MethodGet, "/api/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
