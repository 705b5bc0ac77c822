package handler

import (
	"context"
	"strings"

	"voice-bridge/internal/apierrors"
	"voice-bridge/internal/auth/processor"
	"voice-bridge/internal/observability"

	"github.com/gin-gonic/gin"
)

// OperatorIDKey is the gin context key holding the authenticated operator.
const OperatorIDKey = "Operator-ID"

// TokenValidator checks a bearer token.
type TokenValidator interface {
	ValidateJWTToken(ctx context.Context, token string) (processor.BaseClaims, error)
}

type Handler struct {
	authProcessor TokenValidator
	logger        *observability.Logger
}

func New(authProcessor TokenValidator, logger *observability.Logger) Handler {
	return Handler{authProcessor: authProcessor, logger: logger}
}

// HandleJWTMiddleware rejects requests without a valid operator bearer token.
// EventSource clients cannot set headers, so the SSE feed may pass the token
// as the access_token query parameter instead.
func (h *Handler) HandleJWTMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	tokenString := ""
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		tokenString = strings.TrimPrefix(header, "Bearer ")
	} else if q := c.Query("access_token"); q != "" {
		tokenString = q
	}
	if tokenString == "" {
		apierrors.Unauthorized(c, "Authorization token is missing or invalid")
		return
	}

	claims, err := h.authProcessor.ValidateJWTToken(ctx, tokenString)
	if err != nil {
		apierrors.Unauthorized(c, err.Error())
		return
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		apierrors.Unauthorized(c, "token has no subject")
		return
	}

	c.Set(OperatorIDKey, sub)
	c.Request = c.Request.WithContext(observability.WithFields(ctx,
		observability.Field{Key: "operator", Value: sub}))
	c.Next()
}
