package main

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// completedPallet mirrors the fields of the shift closed event the mock checks.
type completedPallet struct {
	PalletID      string    `json:"palletId"`
	WorkerName    string    `json:"workerName"`
	TotalDuration string    `json:"totalDuration"`
	ClosedAt      time.Time `json:"closedAt"`
}

type mockWMS struct {
	seen sync.Map
	// failEvery makes every n-th call answer 503 so the breaker can be watched.
	failEvery int64
	calls     atomic.Int64
}

func (m *mockWMS) completePallet(w http.ResponseWriter, r *http.Request) {
	if m.failEvery > 0 && m.calls.Add(1)%m.failEvery == 0 {
		http.Error(w, "temporarily unavailable", http.StatusServiceUnavailable)
		return
	}

	var p completedPallet
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || p.PalletID == "" {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	key := r.Header.Get("Idempotency-Key")
	if _, dup := m.seen.LoadOrStore(key, struct{}{}); dup && key != "" {
		log.Info().Str("pallet_id", p.PalletID).Str("key", key).Msg("Duplicate completion ignored")
		w.WriteHeader(http.StatusOK)
		return
	}

	log.Info().
		Str("pallet_id", p.PalletID).
		Str("worker", p.WorkerName).
		Str("total_duration", p.TotalDuration).
		Msg("Pallet completion received")
	w.WriteHeader(http.StatusAccepted)
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	m := &mockWMS{}
	if v, err := strconv.ParseInt(os.Getenv("WMS_MOCK_FAIL_EVERY"), 10, 64); err == nil {
		m.failEvery = v
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /", m.completePallet)

	log.Info().Str("addr", ":8081").Int64("fail_every", m.failEvery).Msg("WMS API mock server starting")
	log.Fatal().Err(http.ListenAndServe(":8081", mux)).Msg("WMS API mock stopped")
}
