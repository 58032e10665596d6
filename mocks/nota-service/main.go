// Command nota-service is a stand-in for the remote tax calculation service,
// for local development and tests. It answers with the local engines and can
// be told to misbehave.
//
// Environment:
//
//	PORT          listen port (default 8090)
//	LATENCY_MS    added to every calculation (default 100)
//	FAILURE_RATE  fraction of calculations answered with 503 (default 0)
//
// A request header X-Mock-Fault forces one behaviour per request:
// server_error, bad_request, garbage, or slow.
package main

import (
	"encoding/json"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"taxcalc/internal/platform/logger"
	"taxcalc/internal/platform/middleware"
	"taxcalc/internal/tax/domain/bands"
	"taxcalc/internal/tax/domain/corporate"
	"taxcalc/internal/tax/domain/relief"
	"taxcalc/internal/tax/ratetable"
	"taxcalc/internal/tax/remote"
	"taxcalc/pkg/platform/httputil"
)

const (
	defaultPort      = "8090"
	defaultLatencyMs = 100
	faultHeader      = "X-Mock-Fault"
	slowDelay        = 15 * time.Second
)

type server struct {
	rates       *ratetable.Registry
	logger      *slog.Logger
	latency     time.Duration
	failureRate float64
	sleep       func(time.Duration)
}

func main() {
	_ = godotenv.Load() //nolint:errcheck // .env is optional
	log := logger.New(os.Getenv("ENVIRONMENT"))

	rates, err := ratetable.Load(0, os.Getenv("TAX_RATE_TABLE_PATH"))
	if err != nil {
		log.Error("load rate tables", "error", err)
		os.Exit(1)
	}

	srv := &server{
		rates:       rates,
		logger:      log,
		latency:     time.Duration(envInt("LATENCY_MS", defaultLatencyMs)) * time.Millisecond,
		failureRate: envFloat("FAILURE_RATE", 0),
		sleep:       time.Sleep,
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}
	log.Info("mock nota service starting", "port", port, "latency", srv.latency, "failure_rate", srv.failureRate)
	if err := http.ListenAndServe(":"+port, srv.routes()); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "nota-mock"})
	})

	r.Group(func(r chi.Router) {
		r.Use(s.faults)
		r.Post(remote.EndpointPIT, handle(s, s.pit))
		r.Post(remote.EndpointCIT, handle(s, s.cit))
		r.Post(remote.EndpointCGT, handle(s, s.cgt))
		r.Post(remote.EndpointTaxableIncome, handle(s, s.taxableIncome))
	})
	return r
}

// faults applies the configured latency and any requested misbehaviour.
func (s *server) faults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.latency > 0 {
			s.sleep(s.latency)
		}
		switch r.Header.Get(faultHeader) {
		case "server_error":
			http.Error(w, `{"error":"simulated outage"}`, http.StatusServiceUnavailable)
			return
		case "bad_request":
			http.Error(w, `{"error":"simulated rejection"}`, http.StatusBadRequest)
			return
		case "garbage":
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("<html>upstream proxy error</html>"))
			return
		case "slow":
			s.sleep(slowDelay)
		}
		if s.failureRate > 0 && rand.Float64() < s.failureRate {
			http.Error(w, `{"error":"random failure"}`, http.StatusServiceUnavailable)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handle decodes Req, runs fn and writes its response.
func handle[Req, Resp any](s *server, fn func(Req, *ratetable.Table) Resp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Req
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, fn(req, s.rates.Default()))
	}
}

func (s *server) pit(req remote.PITRequest, t *ratetable.Table) remote.PITResponse {
	res := bands.Compute(decimal.NewFromFloat(req.AnnualTaxableIncome), t.Bands)
	entries := make([]remote.BreakdownEntry, 0, len(res.Entries))
	for _, e := range res.Entries {
		entries = append(entries, remote.BreakdownEntry{
			Band:          e.Band,
			Rate:          e.Rate.InexactFloat64(),
			TaxableAmount: e.TaxableAmount.InexactFloat64(),
			TaxDue:        e.TaxDue.InexactFloat64(),
		})
	}
	return remote.PITResponse{
		Email:               req.Email,
		AnnualTaxableIncome: req.AnnualTaxableIncome,
		PITBreakdown:        entries,
		TotalPITDue:         res.Total.InexactFloat64(),
		Routing: remote.RoutingInfo{
			RouteType:          "state",
			RemittingAuthority: "State Internal Revenue Service",
			State:              req.StateOfResidence,
		},
		LegalBasis: t.Version,
	}
}

func (s *server) cit(req remote.CITRequest, t *ratetable.Table) remote.CITResponse {
	res := corporate.ComputeCIT(decimal.NewFromFloat(req.AnnualProfit), t.Business, true)
	return remote.CITResponse{
		CompanyEmail:        req.CompanyEmail,
		AnnualProfit:        req.AnnualProfit,
		CITRate:             t.Business.CITRate.InexactFloat64(),
		CITDue:              res.CITDue.InexactFloat64(),
		DevelopmentLevyRate: t.Business.DevelopmentLevyRate.InexactFloat64(),
		DevelopmentLevyDue:  res.DevelopmentLevy.InexactFloat64(),
		TotalTaxDue:         res.Total.InexactFloat64(),
		RemittingAuthority:  "FIRS",
		LegalBasis:          t.Version,
	}
}

func (s *server) cgt(req remote.CGTRequest, t *ratetable.Table) remote.CGTResponse {
	due := corporate.ComputeCGT(decimal.NewFromFloat(req.ChargeableGain), t.Business)
	return remote.CGTResponse{
		TaxpayerEmail:  req.TaxpayerEmail,
		TaxpayerType:   req.TaxpayerType,
		ChargeableGain: req.ChargeableGain,
		CGTDue:         due.InexactFloat64(),
		Method:         "flat",
		Routing:        remote.CGTRouting{RemittingAuthority: "FIRS"},
		LegalBasis:     t.Version,
	}
}

func (s *server) taxableIncome(req remote.TaxableIncomeRequest, t *ratetable.Table) remote.TaxableIncomeResponse {
	var in relief.Input
	if d := req.IndividualDeductions; d != nil {
		in = relief.Input{
			AnnualRent:    decimal.NewFromFloat(d.AnnualRentPaid),
			Pension:       decimal.NewFromFloat(d.PensionContribution),
			LifeInsurance: decimal.NewFromFloat(d.LifeAssurancePremium),
			HousingFund:   decimal.NewFromFloat(d.NHFContribution),
		}
	}
	taxable := relief.TaxableIncome(decimal.NewFromFloat(req.GrossIncome), in, t.Reliefs)

	details := make([]remote.DeductionDetail, 0, len(taxable.Reliefs.Items))
	for _, item := range taxable.Reliefs.Items {
		details = append(details, remote.DeductionDetail{
			Name:          item.Name,
			AppliedAmount: item.Amount.InexactFloat64(),
		})
	}
	return remote.TaxableIncomeResponse{
		TaxpayerType:       req.TaxpayerType,
		GrossIncome:        req.GrossIncome,
		TotalDeductions:    taxable.Reliefs.Total.InexactFloat64(),
		TaxableIncome:      taxable.Income.InexactFloat64(),
		DeductionBreakdown: details,
	}
}

func envInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return def
}
