package api

import (
	"draw-app-backend/internal/livekit"
	"draw-app-backend/internal/queue"
	"draw-app-backend/internal/ws"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

type RouteRegistrar func(mux *http.ServeMux, s *APIServer)

type APIServer struct {
	listenAddr          string
	requestQueueManager *queue.RequestQueueManager
	issuer              *livekit.Client
	routeRegistrars     []RouteRegistrar
	handler             *ws.Handler
	metrics             *metrics
}

func NewAPIServer(listenAddr string, rqm *queue.RequestQueueManager, issuer *livekit.Client, handler *ws.Handler, registrars ...RouteRegistrar) *APIServer {

	return &APIServer{
		listenAddr:          listenAddr,
		requestQueueManager: rqm,
		issuer:              issuer,
		handler:             handler,
		routeRegistrars:     registrars,
		metrics:             newMetrics(prometheus.DefaultRegisterer, listenAddr, rqm),
	}
}

func (s *APIServer) Run() {
	mux := http.NewServeMux()

	for _, reg := range s.routeRegistrars {
		reg(mux, s)
	}

	mux.Handle("/metrics", s.metrics.metricsHandler())

	fmt.Printf("Server listening on http://localhost%s\n", s.listenAddr)

	if err := http.ListenAndServe(s.listenAddr, s.metrics.instrument(mux)); err != nil {
		fmt.Printf("server stopped: %v\n", err)
	}
}

func (s *APIServer) Issuer() *livekit.Client {
	return s.issuer
}

func (s *APIServer) Handler() *ws.Handler {
	return s.handler
}
