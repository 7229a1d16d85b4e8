package httpserver

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"storefront-checkout/internal/domain"
	"storefront-checkout/internal/service/catalog"
	"storefront-checkout/internal/service/checkout"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type startSessionRequest struct {
	Items       []cartItemRequest   `json:"items" binding:"required,min=1,dive"`
	CurrentUser *domain.CurrentUser `json:"currentUser"`
}

type cartItemRequest struct {
	ProductID      string                   `json:"productId" binding:"required"`
	VariantID      string                   `json:"variantId"`
	Quantity       int                      `json:"quantity" binding:"required,min=1"`
	UnitPrice      decimal.Decimal          `json:"unitPrice"`
	NameKey        string                   `json:"nameKey"`
	VariantNameKey string                   `json:"variantNameKey"`
	LogoURL        string                   `json:"logoUrl"`
	Metadata       *domain.CartItemMetadata `json:"metadata"`
}

type paymentMethodRequest struct {
	ID domain.PaymentMethodID `json:"paymentMethodId" binding:"required"`
}

type submitResponse struct {
	Order   *domain.Order `json:"order,omitempty"`
	Session checkout.View `json:"session"`
}

type checkoutHandler struct {
	svc      CheckoutService
	settings checkout.SettingsProvider
	logger   *log.Logger
}

func (h *checkoutHandler) paymentMethods(c *gin.Context) {
	st, err := h.settings.Snapshot(c.Request.Context())
	if err != nil {
		h.logger.Printf("payment methods: load settings error=%v", err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"paymentMethods": catalog.Build(st)})
}

func (h *checkoutHandler) start(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}
	items := make([]domain.CartItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, domain.CartItem{
			ProductID:      it.ProductID,
			VariantID:      it.VariantID,
			Quantity:       it.Quantity,
			UnitPrice:      it.UnitPrice,
			NameKey:        it.NameKey,
			VariantNameKey: it.VariantNameKey,
			LogoURL:        it.LogoURL,
			Metadata:       it.Metadata,
		})
	}

	sess, err := h.svc.Start(c.Request.Context(), items, req.CurrentUser)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess.View())
}

func (h *checkoutHandler) view(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.View())
}

func (h *checkoutHandler) updateDraft(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var patch checkout.DraftPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}
	if err := sess.UpdateDraft(patch); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.View())
}

func (h *checkoutHandler) selectPaymentMethod(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req paymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}
	if err := sess.SelectPaymentMethod(req.ID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.View())
}

// submit answers 201 with the order, or 202 while a redirect is pending.
// With ?wait=true it holds the request until the redirect settles.
func (h *checkoutHandler) submit(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	res, err := sess.Submit(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if res.Order != nil {
		c.JSON(http.StatusCreated, submitResponse{Order: res.Order, Session: sess.View()})
		return
	}

	if wait, _ := strconv.ParseBool(c.Query("wait")); wait {
		o, err := sess.Wait(c.Request.Context())
		switch {
		case err != nil:
			writeError(c, err)
		case o != nil:
			c.JSON(http.StatusCreated, submitResponse{Order: o, Session: sess.View()})
		default:
			c.JSON(http.StatusAccepted, submitResponse{Session: sess.View()})
		}
		return
	}
	c.JSON(http.StatusAccepted, submitResponse{Session: sess.View()})
}

// abandon is the "back to store" exit.
func (h *checkoutHandler) abandon(c *gin.Context) {
	if err := h.svc.Abandon(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exit": "store"})
}

func (h *checkoutHandler) session(c *gin.Context) (*checkout.Session, bool) {
	sess, err := h.svc.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return sess, true
}

func orderHandler(orders OrderReader, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := orders.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				logger.Printf("orders: get id=%s error=%v", c.Param("id"), err)
			}
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}
