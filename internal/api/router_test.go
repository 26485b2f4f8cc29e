package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hoop-club/internal/ai"
	"hoop-club/internal/arena"
	"hoop-club/internal/game"
	"hoop-club/internal/persistence"
)

// mockEngine satisfies EngineInterface without running a simulation.
type mockEngine struct {
	snapshot *game.Snapshot
	graph    *ai.NavGraph
	left     int
	right    int
	over     bool
	tick     uint64
	seed     int64

	profileSide arena.Side
	profileName string
	swapped     *arena.Arena
}

func (m *mockEngine) GetSnapshot() *game.Snapshot { return m.snapshot }
func (m *mockEngine) Score() (int, int)           { return m.left, m.right }
func (m *mockEngine) MatchOver() bool             { return m.over }
func (m *mockEngine) TickCount() uint64           { return m.tick }
func (m *mockEngine) NavGraph() *ai.NavGraph      { return m.graph }
func (m *mockEngine) Seed() int64                 { return m.seed }
func (m *mockEngine) Stats() map[string]uint64 {
	return map[string]uint64{"graph_rebuilds": 3, "replans": 12}
}
func (m *mockEngine) SetProfile(side arena.Side, name string) {
	m.profileSide, m.profileName = side, name
}
func (m *mockEngine) SwapArena(a *arena.Arena) { m.swapped = a }

// mockStore satisfies StatsStore with canned rows.
type mockStore struct {
	matches []persistence.MatchRecord
	events  []persistence.EventRecord
}

func (s *mockStore) RecentMatches(limit int) ([]persistence.MatchRecord, error) {
	return s.matches, nil
}
func (s *mockStore) RecentEvents(eventType string, limit int) ([]persistence.EventRecord, error) {
	return s.events, nil
}

func newTestServer(t *testing.T, engine EngineInterface, store StatsStore) *httptest.Server {
	t.Helper()
	profiles, err := ai.NewProfileStore("")
	if err != nil {
		t.Fatal(err)
	}
	router := NewRouter(RouterConfig{
		Engine:   engine,
		Levels:   arena.DefaultDatabase(),
		Profiles: profiles,
		Store:    store,
		RateLimitConfig: &RateLimitConfig{
			RequestsPerSecond: 1000,
			Burst:             1000,
			CleanupInterval:   time.Minute,
		},
		DisableLogging: true,
	})
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func postJSON(t *testing.T, url string, body interface{}) int {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

// TestHealthz tests the liveness probe.
func TestHealthz(t *testing.T) {
	ts := newTestServer(t, &mockEngine{}, nil)
	if code := getJSON(t, ts.URL+"/healthz", nil); code != http.StatusOK {
		t.Errorf("healthz = %d", code)
	}
}

// TestGetScore tests the score endpoint shape.
func TestGetScore(t *testing.T) {
	ts := newTestServer(t, &mockEngine{left: 2, right: 1, over: true, tick: 4200}, nil)

	var got map[string]interface{}
	if code := getJSON(t, ts.URL+"/api/score", &got); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if got["left"] != float64(2) || got["right"] != float64(1) {
		t.Errorf("score = %v - %v", got["left"], got["right"])
	}
	if got["matchOver"] != true {
		t.Error("matchOver missing")
	}
	if got["tick"] != float64(4200) {
		t.Errorf("tick = %v", got["tick"])
	}
}

// TestGetStats tests that engine counters and the seed are merged in.
func TestGetStats(t *testing.T) {
	ts := newTestServer(t, &mockEngine{tick: 100, seed: 777}, nil)

	var got map[string]interface{}
	getJSON(t, ts.URL+"/api/stats", &got)
	if got["seed"] != float64(777) {
		t.Errorf("seed = %v", got["seed"])
	}
	if got["graph_rebuilds"] != float64(3) || got["replans"] != float64(12) {
		t.Errorf("counters = %v / %v", got["graph_rebuilds"], got["replans"])
	}
}

// TestGetSnapshot tests snapshot relay and the not-ready case.
func TestGetSnapshot(t *testing.T) {
	snap := &game.Snapshot{
		Sequence:   9,
		TickNumber: 9,
		LevelID:    "courtyard",
		Agents: []game.AgentSnapshot{
			{ID: "agent-left", Side: "left"},
			{ID: "agent-right", Side: "right"},
		},
	}
	ts := newTestServer(t, &mockEngine{snapshot: snap}, nil)

	var got game.Snapshot
	if code := getJSON(t, ts.URL+"/api/snapshot", &got); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if got.LevelID != "courtyard" || len(got.Agents) != 2 {
		t.Errorf("snapshot = %+v", got)
	}

	empty := newTestServer(t, &mockEngine{}, nil)
	if code := getJSON(t, empty.URL+"/api/snapshot", nil); code != http.StatusServiceUnavailable {
		t.Errorf("no-snapshot status = %d, want 503", code)
	}
}

// TestGetNavGraph tests graph serialization and the not-ready case.
func TestGetNavGraph(t *testing.T) {
	def, _ := arena.DefaultDatabase().Get("courtyard")
	a := def.Build()
	caps := ai.NewCapabilities(ai.DefaultMovementSpec())
	eval := ai.NewShotEvaluator(a.FloorY, nil)
	graph := ai.NewGraphBuilder(caps, eval, ai.DefaultNavConfig()).Build(a, 5)

	ts := newTestServer(t, &mockEngine{graph: graph}, nil)

	var got struct {
		Generation uint64                   `json:"generation"`
		MaxQuality float64                  `json:"maxQuality"`
		Nodes      []map[string]interface{} `json:"nodes"`
	}
	if code := getJSON(t, ts.URL+"/api/navgraph", &got); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if got.Generation != 5 {
		t.Errorf("generation = %d", got.Generation)
	}
	if len(got.Nodes) != len(graph.Nodes) {
		t.Errorf("nodes = %d, want %d", len(got.Nodes), len(graph.Nodes))
	}
	if got.MaxQuality <= 0 {
		t.Errorf("maxQuality = %f", got.MaxQuality)
	}

	empty := newTestServer(t, &mockEngine{}, nil)
	if code := getJSON(t, empty.URL+"/api/navgraph", nil); code != http.StatusServiceUnavailable {
		t.Errorf("no-graph status = %d, want 503", code)
	}
}

// TestGetProfiles tests that the built-in profile is listed.
func TestGetProfiles(t *testing.T) {
	ts := newTestServer(t, &mockEngine{}, nil)

	var got []map[string]interface{}
	getJSON(t, ts.URL+"/api/profiles", &got)
	if len(got) == 0 {
		t.Fatal("no profiles returned")
	}
	if got[0]["name"] != "balanced" {
		t.Errorf("first profile = %v, want balanced", got[0]["name"])
	}
}

// TestSetProfile tests profile assignment and input validation.
func TestSetProfile(t *testing.T) {
	engine := &mockEngine{}
	ts := newTestServer(t, engine, nil)
	url := ts.URL + "/api/agent/profile"

	if code := postJSON(t, url, map[string]string{"side": "right", "profile": "rusher"}); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if engine.profileSide != arena.SideRight || engine.profileName != "rusher" {
		t.Errorf("engine got side=%v profile=%q", engine.profileSide, engine.profileName)
	}

	if code := postJSON(t, url, map[string]string{"side": "up", "profile": "rusher"}); code != http.StatusBadRequest {
		t.Errorf("bad side status = %d, want 400", code)
	}
	if code := postJSON(t, url, map[string]string{"side": "left"}); code != http.StatusBadRequest {
		t.Errorf("missing profile status = %d, want 400", code)
	}
}

// TestGetLevels tests the level catalogue endpoint.
func TestGetLevels(t *testing.T) {
	ts := newTestServer(t, &mockEngine{}, nil)

	var got []map[string]interface{}
	getJSON(t, ts.URL+"/api/levels", &got)
	if len(got) != 3 {
		t.Fatalf("got %d levels, want 3", len(got))
	}
	if got[0]["id"] != "courtyard" {
		t.Errorf("first level = %v", got[0]["id"])
	}
}

// TestSetLevel tests arena swapping and the unknown-level case.
func TestSetLevel(t *testing.T) {
	engine := &mockEngine{}
	ts := newTestServer(t, engine, nil)
	url := ts.URL + "/api/level"

	if code := postJSON(t, url, map[string]string{"id": "blacktop"}); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if engine.swapped == nil || engine.swapped.ID != "blacktop" {
		t.Errorf("engine swapped = %+v", engine.swapped)
	}

	if code := postJSON(t, url, map[string]string{"id": "moonbase"}); code != http.StatusNotFound {
		t.Errorf("unknown level status = %d, want 404", code)
	}
}

// TestHistoryEndpoints tests the store-backed endpoints and their
// disabled mode.
func TestHistoryEndpoints(t *testing.T) {
	store := &mockStore{
		matches: []persistence.MatchRecord{{ID: 1, Seed: 42, LevelID: "courtyard", ScoreLeft: 3}},
		events:  []persistence.EventRecord{{Sequence: 1, Type: "score"}},
	}
	ts := newTestServer(t, &mockEngine{}, store)

	var matches []persistence.MatchRecord
	if code := getJSON(t, ts.URL+"/api/matches", &matches); code != http.StatusOK {
		t.Fatalf("matches status = %d", code)
	}
	if len(matches) != 1 || matches[0].Seed != 42 {
		t.Errorf("matches = %+v", matches)
	}

	var events []persistence.EventRecord
	if code := getJSON(t, ts.URL+"/api/events", &events); code != http.StatusOK {
		t.Fatalf("events status = %d", code)
	}
	if len(events) != 1 || events[0].Type != "score" {
		t.Errorf("events = %+v", events)
	}

	disabled := newTestServer(t, &mockEngine{}, nil)
	if code := getJSON(t, disabled.URL+"/api/matches", nil); code != http.StatusNotFound {
		t.Errorf("disabled matches status = %d, want 404", code)
	}
	if code := getJSON(t, disabled.URL+"/api/events", nil); code != http.StatusNotFound {
		t.Errorf("disabled events status = %d, want 404", code)
	}
}

// TestRateLimit tests per-IP throttling on the HTTP surface.
func TestRateLimit(t *testing.T) {
	profiles, err := ai.NewProfileStore("")
	if err != nil {
		t.Fatal(err)
	}
	limiter := NewIPRateLimiter(RateLimitConfig{
		RequestsPerSecond: 1,
		Burst:             2,
		CleanupInterval:   time.Minute,
	})
	defer limiter.Stop()

	router := NewRouter(RouterConfig{
		Engine:         &mockEngine{},
		Levels:         arena.DefaultDatabase(),
		Profiles:       profiles,
		RateLimiter:    limiter,
		DisableLogging: true,
	})
	ts := httptest.NewServer(router)
	defer ts.Close()

	codes := make([]int, 3)
	for i := range codes {
		resp, err := http.Get(ts.URL + "/healthz")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		codes[i] = resp.StatusCode
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("burst requests = %v, want 200s", codes[:2])
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("third request = %d, want 429", codes[2])
	}

	stats := limiter.GetStats()
	if stats["allowed"] != 2 || stats["rejected"] != 1 {
		t.Errorf("limiter stats = %v", stats)
	}
}
