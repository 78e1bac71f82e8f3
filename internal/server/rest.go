package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/goevery/signaling/internal/auth"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// RoomDirectory is the read side of the Dispatcher used for listings, plus
// the trigger for rooms created outside the relay.
type RoomDirectory interface {
	AllRoomParticipantCounts() map[string]int
	RoomParticipantCount(roomId string) int
	ConnectionCount() int
	RoomCount() int
	RoomListChanged()
}

type RoomsResponse struct {
	Rooms map[string]int `json:"rooms"`
}

type RoomResponse struct {
	RoomId       string `json:"roomId"`
	Participants int    `json:"participants"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
	Rooms       int    `json:"rooms"`
}

type RoomListChangedResponse struct {
	Success bool `json:"success"`
}

type RESTServer struct {
	logger        *zap.Logger
	rooms         RoomDirectory
	authenticator *auth.Authenticator
	metrics       http.Handler
}

func NewRESTServer(
	logger *zap.Logger,
	rooms RoomDirectory,
	authenticator *auth.Authenticator,
	metrics http.Handler,
) *RESTServer {
	return &RESTServer{
		logger,
		rooms,
		authenticator,
		metrics,
	}
}

func (s *RESTServer) Register(router *mux.Router) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, HealthResponse{
			Status:      "ok",
			Connections: s.rooms.ConnectionCount(),
			Rooms:       s.rooms.RoomCount(),
		})
	}).Methods("GET")

	router.HandleFunc("/rooms", func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)

		s.writeJSON(w, http.StatusOK, RoomsResponse{
			Rooms: s.rooms.AllRoomParticipantCounts(),
		})
	}).Methods("GET")

	router.Handle("/rooms/changed", s.requireAPIKey(func(w http.ResponseWriter, r *http.Request) {
		authentication, _ := auth.AuthenticationFromContext(r.Context())
		s.logger.Info("room list change announced", zap.String("subject", authentication.Subject))

		s.rooms.RoomListChanged()

		s.writeJSON(w, http.StatusAccepted, RoomListChangedResponse{
			Success: true,
		})
	})).Methods("POST", "OPTIONS")

	router.HandleFunc("/rooms/{roomId}", func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)

		roomId := mux.Vars(r)["roomId"]

		s.writeJSON(w, http.StatusOK, RoomResponse{
			RoomId:       roomId,
			Participants: s.rooms.RoomParticipantCount(roomId),
		})
	}).Methods("GET")

	if s.metrics != nil {
		router.Handle("/metrics", s.metrics).Methods("GET")
	}
}

func (s *RESTServer) requireAPIKey(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)

		if r.Method == "OPTIONS" {
			return
		}

		apiKey, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")

		authentication, err := s.authenticator.AuthenticateAPIKey(apiKey)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		next(w, r.WithContext(auth.WithAuthentication(r.Context(), authentication)))
	})
}

func (s *RESTServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}
