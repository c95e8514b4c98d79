package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotes-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotes-service/internal/app"
)

// TokenHandler issues and revokes bearer tokens. Its routes are not gated.
type TokenHandler struct {
	service *app.TokenService
}

// NewTokenHandler creates a new token handler.
func NewTokenHandler(service *app.TokenService) *TokenHandler {
	return &TokenHandler{service: service}
}

// IssueToken handles GET /api/tokens
//
// @Summary Issue a bearer token
// @Tags tokens
// @Produce json
// @Success 200 {object} dto.TokenResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/tokens [get]
func (h *TokenHandler) IssueToken(c *gin.Context) {
	token, err := h.service.Issue(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{Token: token})
}

// RevokeToken handles DELETE /api/tokens/:token
//
// @Summary Revoke a bearer token
// @Tags tokens
// @Produce json
// @Param token path string true "Token"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/tokens/{token} [delete]
func (h *TokenHandler) RevokeToken(c *gin.Context) {
	var p dto.TokenParam
	if err := dto.BindURIAndValidate(c, &p); err != nil {
		p.Token = ""
	}

	if err := h.service.Revoke(c.Request.Context(), p.Token); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: app.MsgTokenRevoked})
}

// RegisterTokenRoutes registers token routes on the given router group.
func (h *TokenHandler) RegisterTokenRoutes(rg *gin.RouterGroup) {
	tokens := rg.Group("/tokens")
	tokens.GET("", h.IssueToken)
	tokens.DELETE("/:token", h.RevokeToken)
}
