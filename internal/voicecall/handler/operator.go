package handler

import (
	"net/http"
	"strings"
	"time"

	"voice-bridge/internal/apierrors"
	"voice-bridge/internal/observability"
	"voice-bridge/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UpdateGuidanceRequest struct {
	Guidance string `json:"guidance" binding:"max=8000"`
}

type AppendContextRequest struct {
	Note string `json:"note" binding:"required,max=2000"`
}

type CallerProfileResponse struct {
	Caller   store.Caller    `json:"caller"`
	Sessions []SessionDigest `json:"sessions"`
}

type SessionDigest struct {
	SessionID       uuid.UUID  `json:"session_id"`
	SessionNumber   int        `json:"session_number"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationSeconds *int64     `json:"duration_seconds,omitempty"`
	Summary         string     `json:"summary,omitempty"`
}

func toSessionDigest(s store.CallSession) SessionDigest {
	d := SessionDigest{
		SessionID:     s.SessionID,
		SessionNumber: s.SessionNumber,
		StartTime:     s.StartTime,
		Summary:       s.Summary.String,
	}
	if s.EndTime.Valid {
		end := s.EndTime.Time
		d.EndTime = &end
	}
	if s.DurationSeconds.Valid {
		secs := s.DurationSeconds.Int64
		d.DurationSeconds = &secs
	}
	return d
}

// phoneParam reads :phone in E.164 form.
func phoneParam(c *gin.Context) (string, bool) {
	phone := strings.TrimSpace(c.Param("phone"))
	if len(phone) < 2 || phone[0] != '+' {
		apierrors.BadRequest(c, apierrors.CodeInvalidPhone, "phone must be in E.164 format")
		return "", false
	}
	for _, r := range phone[1:] {
		if r < '0' || r > '9' {
			apierrors.BadRequest(c, apierrors.CodeInvalidPhone, "phone must be in E.164 format")
			return "", false
		}
	}
	return phone, true
}

func (h *Handler) HandleGetCaller(c *gin.Context) {
	phone, ok := phoneParam(c)
	if !ok {
		return
	}
	ctx := observability.WithFields(c.Request.Context(), observability.Field{Key: "caller", Value: phone})

	caller, err := h.store.GetCallerByPhone(ctx, phone)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	sessions, err := h.store.GetSessionsByPhone(ctx, phone)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	resp := CallerProfileResponse{
		Caller:   caller,
		Sessions: make([]SessionDigest, 0, len(sessions)),
	}
	for _, s := range sessions {
		resp.Sessions = append(resp.Sessions, toSessionDigest(s))
	}
	c.JSON(http.StatusOK, resp)
}

// HandleUpdateGuidance replaces the operator guidance read at the start of the
// caller's next call.
func (h *Handler) HandleUpdateGuidance(c *gin.Context) {
	phone, ok := phoneParam(c)
	if !ok {
		return
	}
	var req UpdateGuidanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationError(c, err)
		return
	}
	ctx := observability.WithFields(c.Request.Context(), observability.Field{Key: "caller", Value: phone})

	if err := h.store.UpdateMasterPrompt(ctx, phone, strings.TrimSpace(req.Guidance)); err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	h.logger.Info(ctx, "operator guidance updated")
	c.Status(http.StatusNoContent)
}

func (h *Handler) HandleAppendContext(c *gin.Context) {
	phone, ok := phoneParam(c)
	if !ok {
		return
	}
	var req AppendContextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationError(c, err)
		return
	}
	note := strings.Join(strings.Fields(req.Note), " ")
	if note == "" {
		apierrors.BadRequest(c, apierrors.CodeInvalidInput, "note is required")
		return
	}
	ctx := observability.WithFields(c.Request.Context(), observability.Field{Key: "caller", Value: phone})

	if err := h.store.AppendCallerContext(ctx, phone, note); err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) HandleGetSessionMessages(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, apierrors.CodeInvalidID, "session id must be a UUID")
		return
	}
	ctx := observability.WithFields(c.Request.Context(), observability.Field{Key: "session_id", Value: sessionID.String()})

	session, err := h.store.GetSessionByID(ctx, sessionID)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	messages, err := h.store.GetMessagesBySession(ctx, sessionID)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	if messages == nil {
		messages = []store.Message{}
	}
	c.JSON(http.StatusOK, gin.H{
		"session":  toSessionDigest(session),
		"messages": messages,
	})
}

func (h *Handler) HandleListActiveCalls(c *gin.Context) {
	calls := h.registry.Active()
	c.JSON(http.StatusOK, gin.H{
		"calls":     calls,
		"accepting": h.registry.Accepting(),
	})
}
