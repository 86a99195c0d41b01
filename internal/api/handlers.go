package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"oficina/internal/finance"
	"oficina/internal/report"
)

const dateLayout = "2006-01-02"

// Handler serves the report endpoints.
type Handler struct {
	svc *report.Service
}

// NewHandler creates a handler over svc.
func NewHandler(svc *report.Service) *Handler {
	return &Handler{svc: svc}
}

// fail maps service errors to HTTP statuses.
func fail(c *gin.Context, err error) {
	var verr *finance.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "Pagamento recusado",
			"reason":  verr.Reason(),
			"excess":  verr.Excess(),
		})
	case errors.Is(err, report.ErrInvoiceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Fatura não encontrada", "error": err.Error()})
	case errors.Is(err, report.ErrInvoiceCancelled):
		c.JSON(http.StatusConflict, gin.H{"message": "Fatura anulada", "error": err.Error()})
	case errors.Is(err, finance.ErrInvalidRange),
		errors.Is(err, finance.ErrUnknownWindow),
		errors.Is(err, finance.ErrUnknownSortKey):
		badRequest(c, err)
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Falha ao gerar relatório", "error": err.Error()})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"message": "Parâmetros inválidos", "error": err.Error()})
}

// GET /invoices?status=Atrasado,Pago%20Parcialmente
func (h *Handler) ListInvoices(c *gin.Context) {
	var statuses []finance.Status
	if st := c.Query("status"); st != "" {
		for _, s := range strings.Split(st, ",") {
			if s = strings.TrimSpace(s); s != "" {
				statuses = append(statuses, finance.Status(s))
			}
		}
	}

	rows, err := h.svc.Invoices(c.Request.Context(), statuses...)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

// GET /invoices/:id/balance
func (h *Handler) InvoiceBalance(c *gin.Context) {
	v, err := h.svc.InvoiceBalance(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": v})
}

// GET /invoices/:id/history
func (h *Handler) InvoiceHistory(c *gin.Context) {
	hist, err := h.svc.InvoiceHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": hist})
}

type paymentRowRequest struct {
	Method string      `json:"method"`
	Amount interface{} `json:"amount"`
}

type validatePaymentsRequest struct {
	ReceiptNumber string              `json:"receiptNumber"`
	Payments      []paymentRowRequest `json:"payments"`
}

// amountText accepts the amount as typed text or a JSON number.
func amountText(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// POST /invoices/:id/payments/validate
func (h *Handler) ValidatePayments(c *gin.Context) {
	var req validatePaymentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	rows := make([]finance.PaymentRow, 0, len(req.Payments))
	for _, p := range req.Payments {
		rows = append(rows, finance.PaymentRow{Method: p.Method, Amount: amountText(p.Amount)})
	}

	res, err := h.svc.ValidatePayments(c.Request.Context(), c.Param("id"), req.ReceiptNumber, rows)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": res})
}

// GET /reports/monthly
func (h *Handler) Monthly(c *gin.Context) {
	m, err := h.svc.Monthly(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": m})
}

// GET /reports/ledger?from=2025-03-01&to=2025-03-31
// Missing bounds default to today.
func (h *Handler) Ledger(c *gin.Context) {
	today := h.svc.Now()

	from, err := h.dateParam(c, "from", today)
	if err != nil {
		badRequest(c, err)
		return
	}
	to, err := h.dateParam(c, "to", today)
	if err != nil {
		badRequest(c, err)
		return
	}

	l, err := h.svc.Ledger(c.Request.Context(), from, to)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": l})
}

func (h *Handler) dateParam(c *gin.Context, name string, def time.Time) (time.Time, error) {
	v := c.Query(name)
	if v == "" {
		y, m, d := def.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, h.svc.Location()), nil
	}
	t, err := time.ParseInLocation(dateLayout, v, h.svc.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD: %w", name, err)
	}
	return t, nil
}

// GET /reports/loyalty?window=last-6-months&sort=visitCount&q=silva&limit=10
func (h *Handler) Loyalty(c *gin.Context) {
	window, err := finance.ParseWindow(c.Query("window"))
	if err != nil {
		badRequest(c, err)
		return
	}
	sortBy, err := finance.ParseSortKey(c.Query("sort"))
	if err != nil {
		badRequest(c, err)
		return
	}
	limit := 0
	if v := c.Query("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			badRequest(c, fmt.Errorf("limit must be a non-negative integer: %q", v))
			return
		}
	}

	stats, err := h.svc.Loyalty(c.Request.Context(), finance.LoyaltyQuery{
		Window: window,
		SortBy: sortBy,
		Search: c.Query("q"),
		Limit:  limit,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stats})
}
