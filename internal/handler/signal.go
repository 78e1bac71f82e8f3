package handler

import (
	"context"
	"encoding/json"

	"github.com/goevery/signaling/internal/broadcaster"
)

const (
	EventWebRTCOffer        = "webrtc_offer"
	EventWebRTCAnswer       = "webrtc_answer"
	EventWebRTCIceCandidate = "webrtc_ice_candidate"
)

type OfferRequest struct {
	To    string          `json:"to"`
	Offer json.RawMessage `json:"offer"`
}

type AnswerRequest struct {
	To     string          `json:"to"`
	Answer json.RawMessage `json:"answer"`
}

type IceCandidateRequest struct {
	To        string          `json:"to"`
	Candidate json.RawMessage `json:"candidate"`
}

type Offer struct {
	From  string          `json:"from"`
	Offer json.RawMessage `json:"offer"`
}

type Answer struct {
	From   string          `json:"from"`
	Answer json.RawMessage `json:"answer"`
}

type IceCandidate struct {
	From      string          `json:"from"`
	Candidate json.RawMessage `json:"candidate"`
}

// SignalHandler forwards WebRTC negotiation payloads to a single peer. The
// target does not have to share a room with the sender.
type SignalHandler struct {
	hub broadcaster.Hub
}

func NewSignalHandler(hub broadcaster.Hub) *SignalHandler {
	return &SignalHandler{
		hub,
	}
}

func (h *SignalHandler) HandleOffer(ctx context.Context, req OfferRequest) (RelayResponse, error) {
	if err := requireString("to", req.To); err != nil {
		return RelayResponse{}, err
	}
	if err := requireValue("offer", req.Offer); err != nil {
		return RelayResponse{}, err
	}

	return h.forward(ctx, req.To, EventWebRTCOffer, func(from string) any {
		return Offer{From: from, Offer: req.Offer}
	})
}

func (h *SignalHandler) HandleAnswer(ctx context.Context, req AnswerRequest) (RelayResponse, error) {
	if err := requireString("to", req.To); err != nil {
		return RelayResponse{}, err
	}
	if err := requireValue("answer", req.Answer); err != nil {
		return RelayResponse{}, err
	}

	return h.forward(ctx, req.To, EventWebRTCAnswer, func(from string) any {
		return Answer{From: from, Answer: req.Answer}
	})
}

func (h *SignalHandler) HandleIceCandidate(ctx context.Context, req IceCandidateRequest) (RelayResponse, error) {
	if err := requireString("to", req.To); err != nil {
		return RelayResponse{}, err
	}
	if err := requireValue("candidate", req.Candidate); err != nil {
		return RelayResponse{}, err
	}

	return h.forward(ctx, req.To, EventWebRTCIceCandidate, func(from string) any {
		return IceCandidate{From: from, Candidate: req.Candidate}
	})
}

func (h *SignalHandler) forward(
	ctx context.Context,
	to string,
	event string,
	payload func(from string) any,
) (RelayResponse, error) {
	connection, err := connectionFromContext(ctx)
	if err != nil {
		return RelayResponse{}, err
	}

	recipients := 0
	if h.hub.Unicast(to, event, payload(connection.Id)) {
		recipients = 1
	}

	return RelayResponse{
		Recipients: recipients,
	}, nil
}
