package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jebob/snakes-and-ladders/game/config"
	"github.com/jebob/snakes-and-ladders/game/service"
	"github.com/jebob/snakes-and-ladders/game/session"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	archive, err := session.NewFileArchive(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create archive: %v", err)
	}
	svc := service.NewSimulationService(
		session.NewManager(),
		config.NewManager(t.TempDir()),
		archive,
	)
	server := httptest.NewServer(NewServer(svc, nil))
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url string, body interface{}, wantStatus int, out interface{}) {
	t.Helper()

	var reqBody bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&reqBody).Encode(body); err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &reqBody)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected status %d, got %d", method, url, wantStatus, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
	}
}

func createSession(t *testing.T, server *httptest.Server) *service.SessionInfo {
	t.Helper()
	var info service.SessionInfo
	doJSON(t, "POST", server.URL+"/api/sessions",
		map[string]string{}, http.StatusCreated, &info)
	return &info
}

func TestSessionLifecycle(t *testing.T) {
	server := newTestServer(t)

	info := createSession(t, server)
	if info.ID == "" || info.ConfigName != "canonical" {
		t.Fatalf("Unexpected session: %+v", info)
	}
	if info.Position != 0 || info.Won {
		t.Errorf("Expected a fresh game, got %+v", info)
	}

	var got service.SessionInfo
	doJSON(t, "GET", server.URL+"/api/sessions/"+info.ID, nil, http.StatusOK, &got)
	if got.ID != info.ID {
		t.Errorf("Expected session %s, got %s", info.ID, got.ID)
	}

	var listing struct {
		Count    int                    `json:"count"`
		Sessions []*service.SessionInfo `json:"sessions"`
	}
	doJSON(t, "GET", server.URL+"/api/sessions", nil, http.StatusOK, &listing)
	if listing.Count != 1 {
		t.Errorf("Expected 1 session, got %d", listing.Count)
	}

	doJSON(t, "DELETE", server.URL+"/api/sessions/"+info.ID, nil, http.StatusOK, nil)
	doJSON(t, "GET", server.URL+"/api/sessions/"+info.ID, nil, http.StatusNotFound, nil)
}

func TestGetSession_NotFound(t *testing.T) {
	server := newTestServer(t)
	doJSON(t, "GET", server.URL+"/api/sessions/nope", nil, http.StatusNotFound, nil)
}

func TestPlayTurnAndReset(t *testing.T) {
	server := newTestServer(t)
	info := createSession(t, server)

	var turn service.TurnResult
	doJSON(t, "POST", server.URL+"/api/sessions/"+info.ID+"/turn", nil, http.StatusOK, &turn)
	if turn.Turn != 1 || len(turn.Rolls) == 0 {
		t.Errorf("Unexpected turn result: %+v", turn)
	}

	var reset service.SessionInfo
	doJSON(t, "POST", server.URL+"/api/sessions/"+info.ID+"/reset", nil, http.StatusOK, &reset)
	if reset.Position != 0 || reset.Stats.RollCount != 0 {
		t.Errorf("Expected a zeroed game after reset, got %+v", reset)
	}
}

func TestRunToCompletion(t *testing.T) {
	server := newTestServer(t)
	info := createSession(t, server)

	var result service.GameResult
	doJSON(t, "POST", server.URL+"/api/sessions/"+info.ID+"/run", nil, http.StatusOK, &result)
	if !result.Won || result.Position != 100 {
		t.Errorf("Expected a won game at square 100, got %+v", result)
	}
	if result.Stats.LuckyRolls < 1 {
		t.Error("Winning counts as a lucky roll")
	}

	// A second run conflicts with the finished game
	doJSON(t, "POST", server.URL+"/api/sessions/"+info.ID+"/turn", nil, http.StatusConflict, nil)
}

func TestBatchEndpoints(t *testing.T) {
	server := newTestServer(t)

	var record service.BatchRecord
	doJSON(t, "POST", server.URL+"/api/batches",
		map[string]interface{}{"iterations": 5}, http.StatusCreated, &record)
	if record.Result == nil || record.Result.Games != 5 {
		t.Fatalf("Unexpected batch record: %+v", record)
	}

	var got service.BatchRecord
	doJSON(t, "GET", server.URL+"/api/batches/"+record.ID, nil, http.StatusOK, &got)
	if got.ID != record.ID {
		t.Errorf("Expected batch %s, got %s", record.ID, got.ID)
	}

	var listing struct {
		Count   int                    `json:"count"`
		Batches []*service.BatchRecord `json:"batches"`
	}
	doJSON(t, "GET", server.URL+"/api/batches", nil, http.StatusOK, &listing)
	if listing.Count != 1 {
		t.Errorf("Expected 1 batch, got %d", listing.Count)
	}

	doJSON(t, "GET", server.URL+"/api/batches/batch-0000", nil, http.StatusNotFound, nil)
}

func TestConfigEndpoints(t *testing.T) {
	server := newTestServer(t)

	body := map[string]interface{}{
		"config_id": "tiny",
		"config": map[string]interface{}{
			"name":       "tiny",
			"size":       20,
			"iterations": 100,
			"snakes":     [][2]int{{14, 2}},
			"ladders":    [][2]int{{5, 18}},
		},
	}
	doJSON(t, "POST", server.URL+"/api/configs", body, http.StatusCreated, nil)

	var listing struct {
		Count   int                   `json:"count"`
		Configs []*service.ConfigInfo `json:"configs"`
	}
	doJSON(t, "GET", server.URL+"/api/configs", nil, http.StatusOK, &listing)
	if listing.Count != 1 || listing.Configs[0].ConfigID != "tiny" {
		t.Errorf("Unexpected config listing: %+v", listing)
	}

	var cfg struct {
		Name string `json:"name"`
		Size int    `json:"size"`
	}
	doJSON(t, "GET", server.URL+"/api/configs/tiny", nil, http.StatusOK, &cfg)
	if cfg.Name != "tiny" || cfg.Size != 20 {
		t.Errorf("Unexpected config: %+v", cfg)
	}

	// Sessions can now be created on the new board
	var info service.SessionInfo
	doJSON(t, "POST", server.URL+"/api/sessions",
		map[string]string{"config_id": "tiny"}, http.StatusCreated, &info)
	if info.BoardSize != 20 {
		t.Errorf("Expected a 20-square board, got %d", info.BoardSize)
	}
}

func TestCreateConfig_Invalid(t *testing.T) {
	server := newTestServer(t)

	body := map[string]interface{}{
		"config_id": "bad",
		"config": map[string]interface{}{
			"name":       "bad",
			"size":       20,
			"iterations": 100,
			"snakes":     [][2]int{{2, 14}}, // goes upwards
		},
	}
	doJSON(t, "POST", server.URL+"/api/configs", body, http.StatusBadRequest, nil)

	doJSON(t, "POST", server.URL+"/api/configs",
		map[string]string{"config_id": "empty"}, http.StatusBadRequest, nil)
}

func TestCreateSession_UnknownConfig(t *testing.T) {
	server := newTestServer(t)
	doJSON(t, "POST", server.URL+"/api/sessions",
		map[string]string{"config_id": "nope"}, http.StatusNotFound, nil)
}
