package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/mkastner/vigil/internal/api"
	"github.com/mkastner/vigil/internal/store"
)

// #region main
func main() {
	dbPath := envOr("VIGIL_DB", "vigil.db")
	addr := envOr("VIGIL_ADDR", ":5001")

	st, err := store.NewStore(dbPath)
	if err != nil {
		// The service degrades to in-memory semantics when the store cannot
		// open; clients still get session ids and health reports the outage.
		log.Printf("[API] store unavailable, continuing without persistence: %v", err)
		st = nil
	} else {
		defer st.Close()
	}

	metrics := api.NewMetrics()
	router := gin.Default()
	api.SetupRoutes(router, st, metrics)

	log.Printf("[API] listening on %s (db=%s)", addr, dbPath)
	if err := router.Run(addr); err != nil {
		log.Fatalf("serve: %v", err)
	}
}

// #endregion main

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
