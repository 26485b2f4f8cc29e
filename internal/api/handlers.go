package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"hoop-club/internal/arena"
)

// Handler methods for routerHandlers
// These are used by both the standalone router (for testing) and the full Server.

func (h *routerHandlers) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot := h.engine.GetSnapshot()
	if snapshot == nil {
		writeError(w, "No snapshot yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, snapshot)
}

func (h *routerHandlers) handleGetScore(w http.ResponseWriter, r *http.Request) {
	left, right := h.engine.Score()
	writeJSON(w, map[string]interface{}{
		"left":      left,
		"right":     right,
		"matchOver": h.engine.MatchOver(),
		"tick":      h.engine.TickCount(),
	})
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{
		"tick": h.engine.TickCount(),
		"seed": h.engine.Seed(),
	}
	for k, v := range h.engine.Stats() {
		stats[k] = v
	}
	writeJSON(w, stats)
}

func (h *routerHandlers) handleGetNavGraph(w http.ResponseWriter, r *http.Request) {
	g := h.engine.NavGraph()
	if g == nil {
		writeError(w, "No graph yet", http.StatusServiceUnavailable)
		return
	}

	nodes := make([]map[string]interface{}, 0, len(g.Nodes))
	for i := range g.Nodes {
		n := &g.Nodes[i]
		edges := make([]map[string]interface{}, 0, len(g.Edges[n.ID]))
		for _, e := range g.Edges[n.ID] {
			edges = append(edges, map[string]interface{}{
				"to":       e.To,
				"kind":     e.Kind.String(),
				"cost":     e.Cost,
				"takeoffX": e.TakeoffX,
				"landingX": e.LandingX,
			})
		}
		nodes = append(nodes, map[string]interface{}{
			"id":           n.ID,
			"x":            n.Center.X,
			"y":            n.Center.Y,
			"leftX":        n.LeftX,
			"rightX":       n.RightX,
			"class":        n.Class.String(),
			"qualityLeft":  n.ShotQualityLeft,
			"qualityRight": n.ShotQualityRight,
			"edges":        edges,
		})
	}

	writeJSON(w, map[string]interface{}{
		"generation": g.Generation,
		"maxQuality": g.LevelMaxShotQuality,
		"nodes":      nodes,
	})
}

func (h *routerHandlers) handleGetProfiles(w http.ResponseWriter, r *http.Request) {
	names := h.profiles.Names()
	profiles := make([]map[string]interface{}, 0, len(names))
	for _, name := range names {
		p := h.profiles.Get(name)
		profiles = append(profiles, map[string]interface{}{
			"name":           name,
			"aggression":     p.Aggression,
			"defensiveIQ":    p.DefensiveIQ,
			"stealRange":     p.StealRange,
			"shootRange":     p.ShootRange,
			"minShotQuality": p.MinShotQuality,
		})
	}
	writeJSON(w, profiles)
}

func (h *routerHandlers) handleSetProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Side    string `json:"side"` // "left" or "right"
		Profile string `json:"profile"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Profile == "" {
		writeError(w, "Profile is required", http.StatusBadRequest)
		return
	}

	var side arena.Side
	switch req.Side {
	case "left":
		side = arena.SideLeft
	case "right":
		side = arena.SideRight
	default:
		writeError(w, "Side must be \"left\" or \"right\"", http.StatusBadRequest)
		return
	}

	h.engine.SetProfile(side, req.Profile)
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleGetLevels(w http.ResponseWriter, r *http.Request) {
	ids := h.levels.IDs()
	levels := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		def, _ := h.levels.Get(id)
		levels = append(levels, map[string]interface{}{
			"id":        id,
			"name":      def.Name,
			"platforms": len(def.Platforms),
		})
	}
	writeJSON(w, levels)
}

func (h *routerHandlers) handleSetLevel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	def, ok := h.levels.Get(req.ID)
	if !ok {
		writeError(w, "Unknown level", http.StatusNotFound)
		return
	}

	log.Printf("🏟️ Level change requested via API: %s", req.ID)
	h.engine.SwapArena(def.Build())
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleGetMatches(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, "Stats database disabled", http.StatusNotFound)
		return
	}

	limit := queryInt(r, "limit", 20, 200)
	matches, err := h.store.RecentMatches(limit)
	if err != nil {
		writeError(w, "Query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, matches)
}

func (h *routerHandlers) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, "Stats database disabled", http.StatusNotFound)
		return
	}

	limit := queryInt(r, "limit", 50, 500)
	events, err := h.store.RecentEvents(r.URL.Query().Get("type"), limit)
	if err != nil {
		writeError(w, "Query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, events)
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// Helper functions (package-level for reuse)

func queryInt(r *http.Request, key string, def, max int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
