package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/oggyb/whatsapp-relay/internal/domain/callback"
	"github.com/oggyb/whatsapp-relay/internal/provider/factory"
	"github.com/oggyb/whatsapp-relay/internal/request"
	"github.com/oggyb/whatsapp-relay/internal/response"
	"github.com/oggyb/whatsapp-relay/internal/service"
)

const maxRequestBytes = 10 << 20

// Authorizer decides whether a request may use the relay.
type Authorizer interface {
	Authorize(r *http.Request) bool
}

// RelayHandler exposes batch sending and webhook translation on one
// endpoint.
type RelayHandler struct {
	svc             service.RelayService
	auth            Authorizer
	defaultCallback string
	log             zerolog.Logger
}

// NewRelayHandler constructs a RelayHandler. defaultCallback is used when a
// request carries no universalCallbackUrl.
func NewRelayHandler(svc service.RelayService, auth Authorizer, defaultCallback string, log zerolog.Logger) *RelayHandler {
	return &RelayHandler{
		svc:             svc,
		auth:            auth,
		defaultCallback: defaultCallback,
		log:             log.With().Str("component", "relay_handler").Logger(),
	}
}

// Relay godoc
// @Summary     Send messages or translate a provider webhook
// @Description Sends messagesToSend through the configured provider, or, when no messages are given,
// @Description translates requestToParse into delivery reports or incoming messages.
// @Tags        relay
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body request.RelayRequest true "Relay request"
// @Success     200 {object} response.RelayPayload
// @Failure     400 {object} response.ErrorResponse
// @Failure     401 {object} response.ErrorResponse
// @Failure     500 {object} response.ErrorResponse
// @Router      /whatsapp [post]
func (h *RelayHandler) Relay(w http.ResponseWriter, r *http.Request) {
	if !h.auth.Authorize(r) {
		response.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req request.RelayRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		response.RespondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	callbackBase := req.UniversalCallbackURL
	if callbackBase == "" {
		callbackBase = h.defaultCallback
	}

	payload := response.RelayPayload{Version: response.RelayVersion}

	switch {
	case len(req.MessagesToSend) > 0:
		results, err := h.svc.SendMessages(r.Context(), req.MessagesToSend, callbackBase)
		if err != nil {
			h.log.Error().Err(err).Int("messages", len(req.MessagesToSend)).Msg("batch not sent")
			if errors.Is(err, factory.ErrMissingConfig) {
				response.RespondError(w, http.StatusInternalServerError, "missing provider configuration")
				return
			}
			response.RespondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		payload.SentMessagesResults = results

	case req.RequestToParse != nil:
		res, err := h.svc.Translate(req.RequestToParse.Callback(), callbackBase)
		if err != nil {
			if errors.Is(err, callback.ErrInvalidCallback) {
				response.RespondError(w, http.StatusBadRequest, err.Error())
				return
			}
			h.log.Error().Err(err).Msg("callback translation failed")
			response.RespondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		payload.ParsedRequestResults = res
	}

	response.RespondRaw(w, http.StatusOK, payload)
}
