package server

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/synergysphere/realtime/internal/ierr"
	"github.com/synergysphere/realtime/internal/realtime"
	"go.uber.org/zap"
)

type JoinWorkspaceRequest struct {
	WorkspaceId string `json:"workspaceId"`
}

type JoinWorkspaceResponse struct {
	WorkspaceId string    `json:"workspaceId"`
	Timestamp   time.Time `json:"timestamp"`
}

type LeaveWorkspaceRequest struct {
	WorkspaceId string `json:"workspaceId"`
}

type LeaveWorkspaceResponse struct {
	WorkspaceId string `json:"workspaceId"`
}

type TypingRequest struct {
	WorkspaceId string `json:"workspaceId"`
}

type HeartbeatResponse struct {
	Timestamp time.Time `json:"timestamp"`
}

// Router dispatches client frames to the hub. A returned nil response
// means the frame was a notification and nothing goes back on the wire.
type Router struct {
	logger      *zap.Logger
	idValidator *IdValidator
	hub         *realtime.Hub
}

func NewRouter(
	logger *zap.Logger,
	idValidator *IdValidator,
	hub *realtime.Hub,
) *Router {
	return &Router{
		logger,
		idValidator,
		hub,
	}
}

func (r *Router) Route(ctx context.Context, connection *realtime.Connection, request Request) *Response {
	response, err := r.handle(ctx, connection, request)
	if err != nil {
		response := request.ReplyWithError(r.mapError(err))

		return &response
	}

	hasResponse := response != nil

	if request.ReplyExpected() && !hasResponse {
		r.logger.Error("handler did not return a response but one was expected",
			zap.String("method", request.Method))

		response := request.ReplyWithError(
			ierr.New(ierr.ErrorCodeInternal, errors.New("internal error")),
		)

		return &response
	}

	if !request.ReplyExpected() {
		return nil
	}

	rawJson, err := json.Marshal(response)
	if err != nil {
		response := request.ReplyWithError(r.mapError(err))

		return &response
	}

	payload := json.RawMessage(rawJson)
	reply := request.Reply(&payload)

	return &reply
}

func (r *Router) handle(ctx context.Context, connection *realtime.Connection, request Request) (any, error) {
	switch request.Method {
	case "heartbeat":
		return HeartbeatResponse{Timestamp: time.Now()}, nil
	case "join_workspace":
		var joinReq JoinWorkspaceRequest
		if err := r.decodeWorkspaceParams(request.Params, &joinReq.WorkspaceId); err != nil {
			return nil, err
		}

		err := r.hub.Join(ctx, connection, joinReq.WorkspaceId)
		if err != nil {
			return nil, err
		}

		return JoinWorkspaceResponse{
			WorkspaceId: joinReq.WorkspaceId,
			Timestamp:   time.Now(),
		}, nil
	case "leave_workspace":
		var leaveReq LeaveWorkspaceRequest
		if err := r.decodeWorkspaceParams(request.Params, &leaveReq.WorkspaceId); err != nil {
			return nil, err
		}

		r.hub.Leave(connection, leaveReq.WorkspaceId)

		return LeaveWorkspaceResponse{
			WorkspaceId: leaveReq.WorkspaceId,
		}, nil
	case "typing_start":
		var typingReq TypingRequest
		if err := r.decodeWorkspaceParams(request.Params, &typingReq.WorkspaceId); err != nil {
			return nil, err
		}

		return nil, r.hub.TypingStart(connection, typingReq.WorkspaceId)
	case "typing_stop":
		var typingReq TypingRequest
		if err := r.decodeWorkspaceParams(request.Params, &typingReq.WorkspaceId); err != nil {
			return nil, err
		}

		return nil, r.hub.TypingStop(connection, typingReq.WorkspaceId)
	default:
		return nil, ierr.New(ierr.ErrorCodeNotFound, errors.New("method not found: "+request.Method))
	}
}

func (r *Router) decodeWorkspaceParams(params *json.RawMessage, workspaceId *string) error {
	var req struct {
		WorkspaceId string `json:"workspaceId"`
	}

	if err := decodeParams(params, &req); err != nil {
		return err
	}

	if err := r.idValidator.Validate(req.WorkspaceId); err != nil {
		return err
	}

	*workspaceId = req.WorkspaceId

	return nil
}

func (r *Router) mapError(err error) ierr.Error {
	var handlerErr ierr.Error
	if errors.As(err, &handlerErr) {
		return handlerErr
	}

	r.logger.Error("error in frame handler", zap.Error(err))

	return ierr.New(ierr.ErrorCodeInternal, errors.New("internal error"))
}

func decodeParams(params *json.RawMessage, v any) error {
	if params == nil {
		return ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("missing params"))
	}

	if err := json.Unmarshal(*params, v); err != nil {
		return ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("invalid params: "+err.Error()))
	}

	return nil
}
