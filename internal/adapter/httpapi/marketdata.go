package httpapi

import (
	"net/http"
	"time"
)

type refreshResponse struct {
	Refreshed int               `json:"refreshed"`
	Failed    int               `json:"failed"`
	Points    int               `json:"points"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// refreshPrices triggers an immediate price refresh for the whole
// instrument catalog. Per-instrument failures are reported in the
// response rather than failing the request.
func (s *Server) refreshPrices(w http.ResponseWriter, r *http.Request) {
	result, err := s.Refresh.RefreshAll(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, refreshResponse{
		Refreshed: result.Refreshed,
		Failed:    result.Failed,
		Points:    result.Points,
		Errors:    result.Errors,
	})
}

type instrumentStatusResponse struct {
	InstrumentID string `json:"instrument_id"`
	Ticker       string `json:"ticker"`
	LastDate     string `json:"last_date,omitempty"`
	Stale        bool   `json:"stale"`
}

type marketDataStatusResponse struct {
	Instruments []instrumentStatusResponse `json:"instruments"`
	LastUpdate  string                     `json:"last_update,omitempty"`
	Outdated    bool                       `json:"outdated"`
}

func (s *Server) marketDataStatus(w http.ResponseWriter, r *http.Request) {
	info, err := s.Refresh.LastUpdateInfo(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := marketDataStatusResponse{
		Instruments: make([]instrumentStatusResponse, 0, len(info.Instruments)),
		Outdated:    info.Outdated,
	}
	if !info.LastUpdate.IsZero() {
		resp.LastUpdate = info.LastUpdate.Format(time.DateOnly)
	}
	for _, status := range info.Instruments {
		entry := instrumentStatusResponse{
			InstrumentID: status.InstrumentID.String(),
			Ticker:       status.Ticker,
			Stale:        status.Stale,
		}
		if !status.LastDate.IsZero() {
			entry.LastDate = status.LastDate.Format(time.DateOnly)
		}
		resp.Instruments = append(resp.Instruments, entry)
	}

	writeJSON(w, http.StatusOK, resp)
}

type schedulerStatusResponse struct {
	Running bool                `json:"running"`
	Jobs    []schedulerJobEntry `json:"jobs"`
}

type schedulerJobEntry struct {
	Name     string `json:"name"`
	Schedule string `json:"schedule"`
}

func (s *Server) schedulerStatus(w http.ResponseWriter, _ *http.Request) {
	status := s.Scheduler.Status()

	resp := schedulerStatusResponse{
		Running: status.Running,
		Jobs:    make([]schedulerJobEntry, 0, len(status.Jobs)),
	}
	for _, job := range status.Jobs {
		resp.Jobs = append(resp.Jobs, schedulerJobEntry{
			Name:     job.Name,
			Schedule: job.Schedule,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) startScheduler(w http.ResponseWriter, _ *http.Request) {
	s.Scheduler.Start()
	writeJSON(w, http.StatusOK, map[string]bool{"running": true})
}

func (s *Server) stopScheduler(w http.ResponseWriter, _ *http.Request) {
	s.Scheduler.Stop()
	writeJSON(w, http.StatusOK, map[string]bool{"running": false})
}
