// Package server exposes the ledger over gRPC (health, reflection)
// and an HTTP/JSON API for tooling, dashboards, and curl. Queries go
// through the engine like any other call, so every read is serialized
// against writes and receipted.
package server

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"OogaLedger/internal/call"
	"OogaLedger/internal/core"
	"OogaLedger/internal/ledger"
	u128math "OogaLedger/internal/math"
	"OogaLedger/internal/observability"
	"OogaLedger/internal/persistence"
)

// GRPCServer wraps the gRPC server and the HTTP/JSON mux.
type GRPCServer struct {
	grpcServer *grpc.Server
	httpServer *http.Server
	mux        *runtime.ServeMux
	grpcAddr   string
	httpAddr   string

	engine        *core.Engine
	db            *sql.DB
	healthChecker *observability.HealthChecker
	metrics       *observability.Metrics
	log           zerolog.Logger
}

// ServerDeps holds the dependencies behind the API handlers. DB is
// nil when the state backend is in memory; integrity verification is
// then unavailable.
type ServerDeps struct {
	Engine        *core.Engine
	DB            *sql.DB
	HealthChecker *observability.HealthChecker
	Metrics       *observability.Metrics
	Log           zerolog.Logger
}

// NewGRPCServer builds the server and registers all routes.
func NewGRPCServer(grpcAddr, httpAddr string, deps *ServerDeps) (*GRPCServer, error) {
	grpcServer := grpc.NewServer()

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	// Reflection for grpcurl / grpcui.
	reflection.Register(grpcServer)

	s := &GRPCServer{
		grpcServer:    grpcServer,
		mux:           runtime.NewServeMux(),
		grpcAddr:      grpcAddr,
		httpAddr:      httpAddr,
		engine:        deps.Engine,
		db:            deps.DB,
		healthChecker: deps.HealthChecker,
		metrics:       deps.Metrics,
		log:           deps.Log,
	}
	if err := s.registerRoutes(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *GRPCServer) registerRoutes() error {
	routes := []struct {
		method  string
		pattern string
		name    string
		handler runtime.HandlerFunc
	}{
		{"POST", "/v1/calls", "submit_call", s.handleSubmitCall},
		{"GET", "/v1/accounts/{address}/balances", "account_balances", s.handleAccountBalances},
		{"GET", "/v1/supply", "supply", s.handleSupply},
		{"GET", "/v1/integrity", "integrity", s.handleIntegrity},
	}
	for _, rt := range routes {
		if err := s.mux.HandlePath(rt.method, rt.pattern, s.instrumented(rt.name, rt.handler)); err != nil {
			return fmt.Errorf("register %s %s: %w", rt.method, rt.pattern, err)
		}
	}
	return nil
}

// Handler returns the full HTTP handler: the JSON API plus the health
// endpoints.
func (s *GRPCServer) Handler() http.Handler {
	httpMux := http.NewServeMux()
	if s.healthChecker != nil {
		httpMux.HandleFunc("/healthz", s.healthChecker.LivenessHandler)
		httpMux.HandleFunc("/readyz", s.healthChecker.ReadinessHandler)
	}
	httpMux.Handle("/", s.mux)
	return httpMux
}

// StartGRPC starts the gRPC server (blocking).
func (s *GRPCServer) StartGRPC(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.grpcAddr)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}

	go func() {
		<-ctx.Done()
		s.log.Info().Msg("grpc server shutting down")
		s.grpcServer.GracefulStop()
	}()

	s.log.Info().Str("addr", s.grpcAddr).Msg("grpc server listening")
	return s.grpcServer.Serve(lis)
}

// StartHTTP starts the HTTP/JSON API (blocking).
func (s *GRPCServer) StartHTTP(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:    s.httpAddr,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		s.log.Info().Msg("http server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	s.log.Info().Str("addr", s.httpAddr).Msg("http server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// ============================================================================
// HTTP/JSON handlers
// ============================================================================

type submitCallRequest struct {
	CallID        string   `json:"call_id,omitempty"`
	Inputs        []string `json:"inputs"`
	IncomingValue []byte   `json:"incoming_value,omitempty"`
}

type submitCallResponse struct {
	CallID        string `json:"call_id"`
	Data          []byte `json:"data,omitempty"`
	IncomingValue []byte `json:"incoming_value,omitempty"`
}

func (s *GRPCServer) handleSubmitCall(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	defer r.Body.Close()

	var req submitCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeStatus(w, r, status.Errorf(codes.InvalidArgument, "parse request: %v", err))
		return
	}

	// A client that supplies its own call_id gets at-most-once
	// semantics across retries; otherwise one is assigned.
	id := uuid.New()
	if req.CallID != "" {
		parsed, err := uuid.Parse(req.CallID)
		if err != nil {
			s.writeStatus(w, r, status.Errorf(codes.InvalidArgument, "parse call_id: %v", err))
			return
		}
		id = parsed
	}

	result, err := s.engine.Submit(r.Context(), call.Call{
		ID:       id,
		Inputs:   req.Inputs,
		Incoming: req.IncomingValue,
		Received: time.Now(),
	})
	if err != nil {
		s.writeStatus(w, r, callStatus(err))
		return
	}

	s.writeJSON(w, submitCallResponse{
		CallID:        id.String(),
		Data:          result.Data,
		IncomingValue: result.Incoming,
	})
}

type balancesResponse struct {
	Address string `json:"address"`
	Ooga    string `json:"ooga"`
	Booga   string `json:"booga"`
}

func (s *GRPCServer) handleAccountBalances(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	address := pathParams["address"]
	if address == "" {
		s.writeStatus(w, r, status.Error(codes.InvalidArgument, "address is required"))
		return
	}

	ooga, err := s.queryU128(r.Context(), "3", address)
	if err != nil {
		s.writeStatus(w, r, callStatus(err))
		return
	}
	booga, err := s.queryU128(r.Context(), "4", address)
	if err != nil {
		s.writeStatus(w, r, callStatus(err))
		return
	}

	// Balances render as decimal strings: a u128 does not fit a JSON
	// number.
	s.writeJSON(w, balancesResponse{
		Address: address,
		Ooga:    ooga.String(),
		Booga:   booga.String(),
	})
}

type supplyResponse struct {
	TotalOoga  string `json:"total_ooga"`
	TotalBooga string `json:"total_booga"`
}

func (s *GRPCServer) handleSupply(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	totalOoga, err := s.queryU128(r.Context(), "5")
	if err != nil {
		s.writeStatus(w, r, callStatus(err))
		return
	}
	totalBooga, err := s.queryU128(r.Context(), "6")
	if err != nil {
		s.writeStatus(w, r, callStatus(err))
		return
	}

	s.writeJSON(w, supplyResponse{
		TotalOoga:  totalOoga.String(),
		TotalBooga: totalBooga.String(),
	})
}

func (s *GRPCServer) handleIntegrity(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	if s.db == nil {
		s.writeStatus(w, r, status.Error(codes.Unimplemented,
			"integrity verification requires the postgres backend"))
		return
	}

	genesis := sha256.Sum256([]byte(core.GenesisHashSeed))
	report, err := persistence.VerifyChain(r.Context(), s.db, genesis)
	if err != nil {
		s.writeStatus(w, r, status.Errorf(codes.Internal, "verify chain: %v", err))
		return
	}

	s.writeJSON(w, report)
}

// queryU128 runs a query call through the engine and decodes its
// 16-byte result. Query calls carry the zero ID: they commit nothing,
// so deduplication would only reject legitimate repeat reads.
func (s *GRPCServer) queryU128(ctx context.Context, inputs ...string) (*big.Int, error) {
	result, err := s.engine.Submit(ctx, call.Call{
		Inputs:   inputs,
		Received: time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if len(result.Data) != u128math.U128Size {
		return nil, fmt.Errorf("query returned %d bytes, want %d", len(result.Data), u128math.U128Size)
	}
	return u128math.U128FromLE(result.Data), nil
}

// ============================================================================
// Helpers
// ============================================================================

// callStatus maps a call error to its gRPC status, keeping the
// diagnostic text verbatim.
func callStatus(err error) error {
	code := codes.Internal
	switch {
	case errors.Is(err, call.ErrMissingOperand),
		errors.Is(err, call.ErrInvalidOpcodeFormat),
		errors.Is(err, call.ErrUnrecognizedOpcode):
		code = codes.InvalidArgument
	case errors.Is(err, ledger.ErrInsufficientBalance):
		code = codes.FailedPrecondition
	case errors.Is(err, ledger.ErrBalanceOverflow):
		code = codes.OutOfRange
	case errors.Is(err, core.ErrDuplicateCall):
		code = codes.AlreadyExists
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	}
	return status.Error(code, err.Error())
}

func (s *GRPCServer) writeStatus(w http.ResponseWriter, r *http.Request, err error) {
	_, outbound := runtime.MarshalerForRequest(s.mux, r)
	runtime.DefaultHTTPErrorHandler(r.Context(), s.mux, outbound, w, r, err)
}

func (s *GRPCServer) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn().Err(err).Msg("write response")
	}
}

// instrumented wraps a handler with request count and duration
// metrics.
func (s *GRPCServer) instrumented(route string, h runtime.HandlerFunc) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
		if s.metrics == nil {
			h(w, r, pathParams)
			return
		}
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		h(sw, r, pathParams)
		s.metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(sw.code)).Inc()
		s.metrics.HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
