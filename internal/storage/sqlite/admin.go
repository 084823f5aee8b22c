package sqlite

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/tailscale/tailsql/server/tailsql"
	"tailscale.com/tsweb"
)

// AttachAdminRoutes mounts the debug routes for the model database on mux:
// a tailsql console under /debug/tailsql/ and a JSON build listing under
// /debug/builds.
func (s *ModelStore) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		log.Fatalf("failed to create tailsql server: %v", err)
	}
	tsql.SetDB("sqlite://rooms.db", s.db, &tailsql.DBOptions{
		Label: "Room model DB",
	})
	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())

	debug.HandleFunc("builds", "Persisted room model builds (JSON, ?room= filters)", s.handleBuilds)
}

func (s *ModelStore) handleBuilds(w http.ResponseWriter, r *http.Request) {
	builds, err := s.ListBuilds(r.URL.Query().Get("room"))
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to list builds: %v", err), http.StatusInternalServerError)
		return
	}
	if builds == nil {
		builds = []*Build{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(builds); err != nil {
		log.Printf("Failed to encode builds: %v", err)
	}
}
