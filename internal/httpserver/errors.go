package httpserver

import (
	"errors"
	"net/http"

	"storefront-checkout/internal/domain"
	"storefront-checkout/internal/service/checkout"

	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error   string              `json:"error"`
	Message string              `json:"message"`
	Fields  []domain.FieldError `json:"fields,omitempty"`
}

func writeError(c *gin.Context, err error) {
	var (
		verr *domain.ValidationError
		serr *domain.SelectionError
		perr *domain.ProcessorError
		oerr *domain.OrderPersistenceError
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: "validation", Message: verr.Error(), Fields: verr.Fields})
	case errors.As(err, &serr):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{
			Error:   "selection",
			Message: serr.Reason,
			Fields:  []domain.FieldError{{Field: "paymentMethod", Code: "selection", Message: serr.Reason}},
		})
	case errors.Is(err, domain.ErrEmptyCart), errors.Is(err, domain.ErrInvalidCartItem):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid_cart", Message: err.Error()})
	case errors.Is(err, checkout.ErrRedirectInFlight):
		c.JSON(http.StatusConflict, errorResponse{Error: "redirect_in_progress", Message: err.Error()})
	case errors.Is(err, checkout.ErrPlacementInFlight):
		c.JSON(http.StatusConflict, errorResponse{Error: "placement_in_progress", Message: err.Error()})
	case errors.Is(err, checkout.ErrOrderPending):
		c.JSON(http.StatusConflict, errorResponse{Error: "order_pending", Message: err.Error()})
	case errors.Is(err, checkout.ErrSessionClosed):
		c.JSON(http.StatusConflict, errorResponse{Error: "session_closed", Message: err.Error()})
	case errors.As(err, &perr):
		c.JSON(http.StatusBadGateway, errorResponse{Error: "processor", Message: perr.Error()})
	case errors.As(err, &oerr):
		c.JSON(http.StatusBadGateway, errorResponse{Error: "order_not_placed", Message: oerr.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "not_found", Message: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal", Message: "internal error"})
	}
}
