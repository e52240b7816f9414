// Package server serves the mortgage calculator page and its JSON API.
package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/mortgage-calculator/internal/calculator"
	"github.com/iwvelando/mortgage-calculator/internal/config"
	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/format"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed static/* templates/*
var assets embed.FS

var pageTemplate = template.Must(template.ParseFS(assets, "templates/index.html"))

// Options configures the handler.
type Options struct {
	MaxRequestSize    int64
	SessionTTL        time.Duration
	RateLimitEnabled  bool
	RequestsPerMinute int
	RateLimitBurst    int
	CurrencySymbol    string
	Version           string
}

// OptionsFromConfig derives handler options from the loaded configuration.
func OptionsFromConfig(cfg *config.Configuration, version string) Options {
	return Options{
		MaxRequestSize:    cfg.Server.MaxRequestSizeBytes(),
		SessionTTL:        cfg.Server.SessionTTLDuration(),
		RateLimitEnabled:  cfg.Server.RateLimit.Enabled,
		RequestsPerMinute: cfg.Server.RateLimit.RequestsPerMinute,
		RateLimitBurst:    cfg.Server.RateLimit.Burst,
		CurrencySymbol:    cfg.Display.CurrencySymbol,
		Version:           version,
	}
}

type handler struct {
	logger         *zap.Logger
	maxRequestSize int64
	currencySymbol string
	version        string
	sessions       *sessionStore
	limiter        *rateLimiter
	mux            *http.ServeMux
	root           http.Handler
}

// Handler serves the web UI and the repayment API.
type Handler struct {
	h *handler
}

// NewHandler constructs the HTTP handler that serves the web UI and repayment API.
func NewHandler(logger *zap.Logger, opts Options) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if opts.MaxRequestSize <= 0 {
		opts.MaxRequestSize = constants.DefaultMaxRequestSizeBytes
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL, _ = time.ParseDuration(constants.DefaultSessionTTL)
	}
	if opts.CurrencySymbol == "" {
		opts.CurrencySymbol = constants.DefaultCurrencySymbol
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:         logger,
		maxRequestSize: opts.MaxRequestSize,
		currencySymbol: opts.CurrencySymbol,
		version:        trimmedVersion,
		sessions:       newSessionStore(logger.Named("sessions"), opts.SessionTTL),
	}
	if opts.RateLimitEnabled {
		rpm, burst := opts.RequestsPerMinute, opts.RateLimitBurst
		if rpm <= 0 {
			rpm = constants.DefaultRequestsPerMinute
		}
		if burst <= 0 {
			burst = constants.DefaultRateLimitBurst
		}
		h.limiter = newRateLimiter(rpm, burst)
	}

	mux := http.NewServeMux()

	// Calculator page
	mux.HandleFunc("/", h.handleIndex)
	mux.HandleFunc("/calculate", h.handleCalculate)
	mux.HandleFunc("/clear", h.handleClear)

	// Stateless repayment API
	mux.HandleFunc("/api/repayment", h.handleRepaymentAPI)

	// Version endpoint for UI metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	// Static assets
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(sub))))

	h.mux = mux
	h.root = h.logRequests(h.rateLimit(mux))
	return &Handler{h: h}
}

func (hh *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	hh.h.root.ServeHTTP(w, r)
}

// RunSweeper removes idle sessions and rate limiters every interval until ctx
// is done.
func (hh *Handler) RunSweeper(ctx context.Context, interval time.Duration) {
	h := hh.h
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sessions := h.sessions.sweep()
			limiters := 0
			if h.limiter != nil {
				limiters = h.limiter.sweep()
			}
			if sessions > 0 || limiters > 0 {
				h.logger.Debug("swept idle state",
					zap.String("op", "server.RunSweeper"),
					zap.Int("sessions", sessions),
					zap.Int("limiters", limiters),
				)
			}
		}
	}
}

type pageView struct {
	Form           calculator.Form
	Result         *resultView
	MortgageTypes  []mortgageTypeOption
	CurrencySymbol string
	Version        string
}

type resultView struct {
	MonthlyPayment string
	TotalPayment   string
}

type mortgageTypeOption struct {
	Value   string
	Label   string
	Checked bool
}

type repaymentResponse struct {
	MonthlyPayment        string `json:"monthlyPayment" yaml:"monthlyPayment"`
	TotalPayment          string `json:"totalPayment" yaml:"totalPayment"`
	MortgageType          string `json:"mortgageType" yaml:"mortgageType"`
	MonthlyPaymentDisplay string `json:"monthlyPaymentDisplay" yaml:"monthlyPaymentDisplay"`
	TotalPaymentDisplay   string `json:"totalPaymentDisplay" yaml:"totalPaymentDisplay"`
}

type errorResponse struct {
	Error  string            `json:"error" yaml:"error"`
	Errors map[string]string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

func (h *handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	sess := h.sessionFor(w, r)
	sess.mu.Lock()
	view := h.buildPage(sess.calc)
	sess.mu.Unlock()

	h.renderPage(w, http.StatusOK, view, "server.handleIndex")
}

func (h *handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestSize)
	if err := r.ParseForm(); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			http.Error(w, fmt.Sprintf("form exceeds limit of %d bytes", h.maxRequestSize), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, fmt.Sprintf("failed to parse form: %v", err), http.StatusBadRequest)
		return
	}

	form := calculator.NewFormFromValues(r.PostForm.Get)

	sess := h.sessionFor(w, r)
	sess.mu.Lock()
	err := sess.calc.Submit(form)
	view := h.buildPage(sess.calc)
	sess.mu.Unlock()

	status := http.StatusOK
	if err != nil {
		status = http.StatusUnprocessableEntity
		if !errors.Is(err, calculator.ErrMissingField) && !errors.Is(err, calculator.ErrInvalidField) {
			h.logger.Error("calculation failed",
				zap.String("op", "server.handleCalculate"),
				zap.Error(err),
			)
		}
	}

	h.renderPage(w, status, view, "server.handleCalculate")
}

func (h *handler) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	sess := h.sessionFor(w, r)
	sess.mu.Lock()
	sess.calc.Clear()
	sess.mu.Unlock()

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *handler) handleRepaymentAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestSize)
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()

	var payload map[string]interface{}
	if err := decoder.Decode(&payload); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxRequestSize), "server.handleRepaymentAPI")
			return
		}
		h.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), "server.handleRepaymentAPI")
		return
	}

	form := calculator.NewFormFromValues(func(key string) string {
		return coerceString(payload[key])
	})
	input, err := form.Validate()
	if err != nil {
		h.writeData(w, r, http.StatusUnprocessableEntity, errorResponse{
			Error:  "validation failed",
			Errors: form.Errors(),
		})
		return
	}

	result, err := calculator.ComputeRepayment(input)
	if err != nil {
		h.respondError(w, r, http.StatusUnprocessableEntity, err.Error(), "server.handleRepaymentAPI")
		return
	}

	h.logger.Info("repayment computed",
		zap.String("op", "server.handleRepaymentAPI"),
		zap.String("mortgageType", string(input.MortgageType)),
		zap.String("monthlyPayment", result.MonthlyPayment),
	)

	h.writeData(w, r, http.StatusOK, repaymentResponse{
		MonthlyPayment:        result.MonthlyPayment,
		TotalPayment:          result.TotalPayment,
		MortgageType:          string(input.MortgageType),
		MonthlyPaymentDisplay: format.FixedCurrency(h.currencySymbol, result.MonthlyPayment),
		TotalPaymentDisplay:   format.FixedCurrency(h.currencySymbol, result.TotalPayment),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeData(w, r, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// buildPage snapshots the calculator into a view. The caller holds the
// session lock.
func (h *handler) buildPage(calc *calculator.Calculator) pageView {
	form := calc.Form()
	view := pageView{
		Form:           form,
		CurrencySymbol: h.currencySymbol,
		Version:        h.version,
	}

	for _, mortgageType := range []calculator.MortgageType{calculator.Repayment, calculator.InterestOnly} {
		view.MortgageTypes = append(view.MortgageTypes, mortgageTypeOption{
			Value:   string(mortgageType),
			Label:   mortgageType.Label(),
			Checked: form.MortgageType.Value == string(mortgageType),
		})
	}

	if result, ok := calc.Result(); ok {
		view.Result = &resultView{
			MonthlyPayment: format.FixedCurrency(h.currencySymbol, result.MonthlyPayment),
			TotalPayment:   format.FixedCurrency(h.currencySymbol, result.TotalPayment),
		}
	}
	return view
}

func (h *handler) renderPage(w http.ResponseWriter, status int, view pageView, op string) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		h.logger.Error("failed to render page",
			zap.String("op", op),
			zap.Error(err),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("failed to write page", zap.String("op", op), zap.Error(err))
	}
}

func (h *handler) respondError(w http.ResponseWriter, r *http.Request, status int, msg string, op string) {
	h.logger.Error("repayment request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeData(w, r, status, errorResponse{Error: msg})
}

// writeData encodes payload as YAML when the client asks for it and as JSON
// otherwise.
func (h *handler) writeData(w http.ResponseWriter, r *http.Request, status int, payload interface{}) {
	if wantsYAML(r) {
		data, err := yaml.Marshal(payload)
		if err != nil {
			h.logger.Error("failed to encode YAML response", zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(status)
		if _, err := w.Write(data); err != nil {
			h.logger.Error("failed to write YAML response", zap.Error(err))
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func wantsYAML(r *http.Request) bool {
	accept := strings.ToLower(r.Header.Get("Accept"))
	return strings.Contains(accept, "application/yaml") ||
		strings.Contains(accept, "application/x-yaml") ||
		strings.Contains(accept, "text/yaml")
}

// coerceString turns a decoded JSON value into the raw text a form field
// would hold.
func coerceString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return fmt.Sprintf("%v", value)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// logRequests tags each request with an id and logs its outcome.
func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		h.logger.Info("request handled",
			zap.String("op", "server.logRequests"),
			zap.String("requestID", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
