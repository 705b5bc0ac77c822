package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"voice-bridge/internal/apierrors"
	"voice-bridge/internal/observability"
	"voice-bridge/internal/voicecall/processor"
	"voice-bridge/internal/voicecall/twilio"

	"github.com/gin-gonic/gin"
	"github.com/twilio/twilio-go/client"
	"github.com/twilio/twilio-go/twiml"
)

const (
	mediaStreamPath = "/twilio"
	signatureHeader = "X-Twilio-Signature"
)

// HandleAnswerCall answers Twilio's voice webhook with a bidirectional
// <Stream> pointed back at this server.
func (h *Handler) HandleAnswerCall(c *gin.Context) {
	ctx := c.Request.Context()

	if err := c.Request.ParseForm(); err != nil {
		apierrors.BadRequest(c, apierrors.CodeInvalidInput, "Invalid form body")
		return
	}
	params := make(map[string]string, len(c.Request.PostForm))
	for key, values := range c.Request.PostForm {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	if h.twilio.AuthToken != "" {
		validator := client.NewRequestValidator(h.twilio.AuthToken)
		if !validator.Validate(h.requestURL(c), params, c.GetHeader(signatureHeader)) {
			h.logger.Warn(ctx, "rejected voice webhook with invalid signature")
			apierrors.Forbidden(c, apierrors.CodeBadSignature, "Invalid request signature")
			return
		}
	}

	if !h.registry.Accepting() {
		apierrors.RespondWithError(c, processor.ErrShuttingDown)
		return
	}

	callSID := params["CallSid"]
	from := params["From"]
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "call_sid", Value: callSID},
		observability.Field{Key: "caller", Value: from},
	)
	h.registry.Register(callSID, from)

	stream := twiml.VoiceStream{
		Url: fmt.Sprintf("wss://%s%s", h.publicHost(c), mediaStreamPath),
		InnerElements: []twiml.Element{
			twiml.VoiceParameter{Name: "caller", Value: from},
			twiml.VoiceParameter{Name: "callsid", Value: callSID},
		},
	}
	connect := twiml.VoiceConnect{
		InnerElements: []twiml.Element{stream},
	}

	twimlResult, err := twiml.Voice([]twiml.Element{connect})
	if err != nil {
		h.logger.Error(ctx, "failed to render TwiML", err)
		apierrors.InternalError(c, err)
		return
	}

	h.logger.Info(ctx, "answered incoming call")
	c.Header("Content-Type", "text/xml")
	c.String(http.StatusOK, twimlResult)
}

// HandleMediaStream upgrades Twilio's media stream and relays it until the call ends.
func (h *Handler) HandleMediaStream(c *gin.Context) {
	if !h.registry.Accepting() {
		apierrors.RespondWithError(c, processor.ErrShuttingDown)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already written the HTTP error
		h.logger.Error(c.Request.Context(), "websocket upgrade failed", err)
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	stop := context.AfterFunc(h.sessions, cancel)
	defer stop()

	conn := twilio.NewConn(ws, h.logger)
	if err := h.relay.Serve(ctx, conn); err != nil {
		if errors.Is(err, processor.ErrShuttingDown) {
			h.logger.Warn(ctx, "media stream refused during shutdown")
			return
		}
		h.logger.Error(ctx, "media stream ended with error", err)
	}
}

func (h *Handler) publicHost(c *gin.Context) string {
	if h.twilio.PublicHost != "" {
		return h.twilio.PublicHost
	}
	if host := c.GetHeader("X-Forwarded-Host"); host != "" {
		return host
	}
	return c.Request.Host
}

// requestURL rebuilds the URL Twilio signed. Behind a proxy the scheme and host
// come from PUBLIC_HOST or the forwarding headers.
func (h *Handler) requestURL(c *gin.Context) string {
	scheme := "https"
	if h.twilio.PublicHost == "" && c.Request.TLS == nil {
		if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
			scheme = strings.ToLower(proto)
		} else {
			scheme = "http"
		}
	}
	return scheme + "://" + h.publicHost(c) + c.Request.URL.RequestURI()
}
