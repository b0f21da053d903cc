package router

import (
	"draw-app-backend/internal/api"
	"draw-app-backend/internal/api/endpoints"
	"net/http"
)

func RelayRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		roomEndpoints := endpoints.NewRoomEndpoints(s.Issuer(), s.Handler())
		mux.HandleFunc(prefix+"/create-room", s.MakeHTTPHandleFunc(roomEndpoints.CreateRoom))
		mux.HandleFunc(prefix+"/get-token", s.MakeHTTPHandleFunc(roomEndpoints.Token))
		mux.HandleFunc(prefix+"/rooms", s.MakeHTTPHandleFunc(roomEndpoints.Rooms))
		mux.HandleFunc(prefix+"/ws", s.MakeHTTPHandleFunc(roomEndpoints.Websocket))
	}
}
