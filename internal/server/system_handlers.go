package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/alfredorueda/portfolio-service/internal/database"
)

// SystemHandlers handles system-wide monitoring endpoints.
type SystemHandlers struct {
	log         zerolog.Logger
	startupTime time.Time
	portfolioDB *database.DB
	ledgerDB    *database.DB
	cacheDB     *database.DB
}

// NewSystemHandlers creates a new system handlers instance.
func NewSystemHandlers(log zerolog.Logger, portfolioDB, ledgerDB, cacheDB *database.DB) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("component", "system_handlers").Logger(),
		startupTime: time.Now(),
		portfolioDB: portfolioDB,
		ledgerDB:    ledgerDB,
		cacheDB:     cacheDB,
	}
}

// HealthResponse is the health endpoint payload.
type HealthResponse struct {
	Status    string            `json:"status"` // "healthy" or "unhealthy"
	UptimeSec int64             `json:"uptime_sec"`
	Databases map[string]string `json:"databases"` // name -> "ok" or error text
	Timestamp string            `json:"timestamp"`
}

// StatsResponse is the system stats payload.
type StatsResponse struct {
	UptimeHours float64 `json:"uptime_hours"`
	CPUPercent  float64 `json:"cpu_percent"`
	RAMPercent  float64 `json:"ram_percent"`
}

// HandleHealth reports whether every database answers a ping. Any failing
// database flips the overall status to unhealthy and the HTTP status to 503.
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	databases := map[string]*database.DB{
		"portfolio": h.portfolioDB,
		"ledger":    h.ledgerDB,
		"cache":     h.cacheDB,
	}

	response := HealthResponse{
		Status:    "healthy",
		UptimeSec: int64(time.Since(h.startupTime).Seconds()),
		Databases: make(map[string]string, len(databases)),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	status := http.StatusOK
	for name, db := range databases {
		if db == nil {
			response.Databases[name] = "not configured"
			response.Status = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		if err := db.Conn().Ping(); err != nil {
			h.log.Error().Err(err).Str("database", name).Msg("Database ping failed")
			response.Databases[name] = err.Error()
			response.Status = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		response.Databases[name] = "ok"
	}

	h.writeJSON(w, status, response)
}

// HandleStats reports process uptime and host CPU/RAM usage.
func (h *SystemHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	cpuPercent, ramPercent := h.getSystemStats()

	h.writeJSON(w, http.StatusOK, StatsResponse{
		UptimeHours: time.Since(h.startupTime).Hours(),
		CPUPercent:  cpuPercent,
		RAMPercent:  ramPercent,
	})
}

// getSystemStats calculates CPU and RAM usage percentages. The CPU sample
// window is kept short so the endpoint stays fast.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}
	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
