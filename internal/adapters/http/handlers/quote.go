package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotes-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotes-service/internal/app"
)

// QuoteHandler handles quote-related HTTP endpoints.
type QuoteHandler struct {
	service *app.QuoteService
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(service *app.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		service: service,
	}
}

// ListQuotes handles GET /api/quotes
// Returns every stored quote, or [] when there are none.
//
// @Summary List quotes
// @Tags quotes
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.QuoteResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/quotes [get]
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	quotes, err := h.service.List(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteListResponse(quotes))
}

// GetQuote handles GET /api/quotes/:id
// The quote is returned as a one-element array.
//
// @Summary Get a quote by ID
// @Tags quotes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Quote ID"
// @Success 200 {array} dto.QuoteResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/quotes/{id} [get]
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	quote, err := h.service.Get(c.Request.Context(), quoteID(c))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, []dto.QuoteResponse{dto.NewQuoteResponse(quote)})
}

// CreateQuote handles POST /api/quotes
//
// @Summary Create a quote
// @Tags quotes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param quote body dto.CreateQuoteRequest true "Quote text and optional author"
// @Success 201 {object} dto.CreatedQuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/quotes [post]
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	var req dto.CreateQuoteRequest
	if err := dto.BindJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.MsgInvalidJSON))
		return
	}

	quote, err := h.service.Create(c.Request.Context(), req.ToDomain())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewCreatedQuoteResponse(quote))
}

// UpdateQuote handles PUT /api/quotes/:id
// The payload is validated before the id is resolved, so an invalid
// payload on a missing quote reports the payload problem.
//
// @Summary Update a quote
// @Tags quotes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Quote ID"
// @Param quote body dto.UpdateQuoteRequest true "Fields to change"
// @Success 200 {array} dto.QuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/quotes/{id} [put]
func (h *QuoteHandler) UpdateQuote(c *gin.Context) {
	var req dto.UpdateQuoteRequest
	if err := dto.BindJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.MsgInvalidJSON))
		return
	}

	quote, err := h.service.Update(c.Request.Context(), quoteID(c), req.ToDomain())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, []dto.QuoteResponse{dto.NewQuoteResponse(quote)})
}

// DeleteAllQuotes handles DELETE /api/quotes/all
//
// @Summary Delete every quote
// @Tags quotes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.MessageResponse
// @Router /api/quotes/all [delete]
func (h *QuoteHandler) DeleteAllQuotes(c *gin.Context) {
	n, err := h.service.DeleteAll(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: app.QuotesDeletedMessage(n)})
}

// DeleteQuote handles DELETE /api/quotes/:id
//
// @Summary Delete a quote
// @Tags quotes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Quote ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/quotes/{id} [delete]
func (h *QuoteHandler) DeleteQuote(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), quoteID(c)); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: app.MsgQuoteDeleted})
}

// RegisterQuoteRoutes registers quote routes on the given router group.
// middleware runs before every quote route; the token gate goes here.
// DELETE /all is registered ahead of DELETE /:id.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup, middleware ...gin.HandlerFunc) {
	quotes := rg.Group("/quotes", middleware...)
	quotes.GET("", h.ListQuotes)
	quotes.GET("/:id", h.GetQuote)
	quotes.POST("", h.CreateQuote)
	quotes.PUT("/:id", h.UpdateQuote)
	quotes.DELETE("/all", h.DeleteAllQuotes)
	quotes.DELETE("/:id", h.DeleteQuote)
}

// quoteID returns the :id parameter, or 0 when it is not a positive integer.
// The service reports 0 as a missing quote.
func quoteID(c *gin.Context) int64 {
	var p dto.QuoteIDParam
	if err := dto.BindURIAndValidate(c, &p); err != nil {
		return 0
	}

	return p.ID
}
