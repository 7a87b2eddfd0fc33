package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/synergysphere/realtime/internal/auth"
	"github.com/synergysphere/realtime/internal/realtime"
	"go.uber.org/zap"
)

type PublishRequest struct {
	Type    realtime.EventType `json:"type"`
	Payload json.RawMessage    `json:"payload"`
}

// RESTServer is the publish ingress for the main application. It never
// reaches into persistence; it only resolves rooms and fans out.
type RESTServer struct {
	logger      *zap.Logger
	idValidator *IdValidator
	publisher   *realtime.Publisher
	apiKeys     auth.APIKeys
}

func NewRESTServer(
	logger *zap.Logger,
	idValidator *IdValidator,
	publisher *realtime.Publisher,
	apiKeys auth.APIKeys,
) *RESTServer {
	return &RESTServer{
		logger,
		idValidator,
		publisher,
		apiKeys,
	}
}

func (s *RESTServer) Register(router *mux.Router) {
	router.HandleFunc("/publish/workspace/{workspaceId}", s.authenticated(s.handleWorkspacePublish)).
		Methods("POST", "OPTIONS")
	router.HandleFunc("/publish/user/{userId}", s.authenticated(s.handleUserPublish)).
		Methods("POST", "OPTIONS")
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")
}

func (s *RESTServer) handleWorkspacePublish(w http.ResponseWriter, r *http.Request) {
	workspaceId := mux.Vars(r)["workspaceId"]
	if err := s.idValidator.Validate(workspaceId); err != nil {
		http.Error(w, "invalid workspace id", http.StatusBadRequest)
		return
	}

	publishRequest, ok := s.decodePublishRequest(w, r)
	if !ok {
		return
	}

	if !publishRequest.Type.WorkspaceScoped() {
		http.Error(w, "event type is not workspace-scoped", http.StatusBadRequest)
		return
	}

	envelope := s.publisher.PublishToWorkspace(workspaceId, publishRequest.Type, publishRequest.Payload)

	s.writeEnvelope(w, envelope)
}

func (s *RESTServer) handleUserPublish(w http.ResponseWriter, r *http.Request) {
	userId := mux.Vars(r)["userId"]
	if err := s.idValidator.Validate(userId); err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	publishRequest, ok := s.decodePublishRequest(w, r)
	if !ok {
		return
	}

	if !publishRequest.Type.UserScoped() {
		http.Error(w, "event type is not user-scoped", http.StatusBadRequest)
		return
	}

	envelope := s.publisher.PublishToUser(userId, publishRequest.Type, publishRequest.Payload)

	s.writeEnvelope(w, envelope)
}

func (s *RESTServer) decodePublishRequest(w http.ResponseWriter, r *http.Request) (PublishRequest, bool) {
	var publishRequest PublishRequest
	err := json.NewDecoder(r.Body).Decode(&publishRequest)
	if err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return PublishRequest{}, false
	}

	return publishRequest, true
}

func (s *RESTServer) writeEnvelope(w http.ResponseWriter, envelope realtime.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(envelope)
	if err != nil {
		s.logger.Error("failed to encode publish response", zap.Error(err))
	}
}

func (s *RESTServer) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			return
		}

		header := r.Header.Get("Authorization")
		apiKey, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || !s.apiKeys.Verify(apiKey) {
			http.Error(w, "invalid api key", http.StatusUnauthorized)
			return
		}

		next(w, r)
	}
}
