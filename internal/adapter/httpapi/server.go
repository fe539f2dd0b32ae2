package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/simaogato/riskparity-backend/internal/scheduler"
	"github.com/simaogato/riskparity-backend/internal/usecase/basket"
	"github.com/simaogato/riskparity-backend/internal/usecase/ingest"
	"github.com/simaogato/riskparity-backend/internal/usecase/performance"
	"github.com/simaogato/riskparity-backend/internal/usecase/rebalance"
	"github.com/simaogato/riskparity-backend/internal/usecase/retirement"
	"github.com/simaogato/riskparity-backend/internal/usecase/trading"
	"github.com/simaogato/riskparity-backend/internal/usecase/valuation"

	"github.com/simaogato/riskparity-backend/internal/domain"
)

// Server exposes the usecase layer over a JSON HTTP API
type Server struct {
	Valuation   *valuation.ValuationService
	Trading     *trading.TradingService
	Baskets     *basket.BasketService
	Performance *performance.PerformanceService
	Rebalance   *rebalance.RebalanceService
	Retirement  *retirement.SimulationService
	Refresh     *ingest.RefreshService
	Instruments domain.InstrumentRepository
	Scheduler   *scheduler.Scheduler

	APIToken string
	Log      zerolog.Logger
}

// Routes builds the full router: CORS, request logging, a public
// health check and the authenticated v1 API.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-User-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(RequestLogger(s.Log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(Auth(s.APIToken))

		r.Get("/instruments", s.listInstruments)

		r.Route("/portfolio", func(r chi.Router) {
			r.Get("/", s.getPortfolio)
			r.Get("/metrics", s.getMetrics)
			r.Get("/evolution", s.getEvolution)
			r.Put("/cash", s.updateCash)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", s.recordTrade)
			r.Get("/", s.listTrades)
		})

		r.Route("/baskets", func(r chi.Router) {
			r.Post("/", s.createBasket)
			r.Get("/", s.listBaskets)
			r.Route("/{basketID}", func(r chi.Router) {
				r.Get("/", s.getBasket)
				r.Put("/", s.updateBasket)
				r.Delete("/", s.deleteBasket)
				r.Get("/performance", s.getBasketPerformance)
				r.Post("/rebalance", s.buildRebalancePlan)
			})
		})

		r.Route("/funds", func(r chi.Router) {
			r.Post("/", s.createFund)
			r.Get("/", s.listFunds)
			r.Put("/{fundID}", s.updateFund)
			r.Delete("/{fundID}", s.deleteFund)
		})

		r.Route("/retirement", func(r chi.Router) {
			r.Post("/simulate", s.simulateRetirement)
			r.Route("/simulations", func(r chi.Router) {
				r.Post("/", s.createSimulation)
				r.Get("/", s.listSimulations)
				r.Route("/{simulationID}", func(r chi.Router) {
					r.Get("/", s.getSimulation)
					r.Put("/", s.updateSimulation)
					r.Delete("/", s.deleteSimulation)
					r.Get("/projection", s.getProjection)
				})
			})
		})

		r.Route("/marketdata", func(r chi.Router) {
			r.Post("/refresh", s.refreshPrices)
			r.Get("/status", s.marketDataStatus)
		})

		r.Route("/scheduler", func(r chi.Router) {
			r.Get("/status", s.schedulerStatus)
			r.Post("/start", s.startScheduler)
			r.Post("/stop", s.stopScheduler)
		})
	})

	return r
}
