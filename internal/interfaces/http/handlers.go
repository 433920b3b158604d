package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/oirpng/receipt-ledger/internal/application/service"
	"github.com/oirpng/receipt-ledger/internal/domain/entity"
	"github.com/oirpng/receipt-ledger/internal/report"
)

const dateLayout = "2006-01-02"

// Handlers contains all HTTP request handlers
type Handlers struct {
	catalog  service.CatalogService
	builder  service.BuilderService
	ledger   service.LedgerService
	pending  service.PendingFeeService
	register *report.RegisterExporter
	logger   Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	catalog service.CatalogService,
	builder service.BuilderService,
	ledger service.LedgerService,
	pending service.PendingFeeService,
	register *report.RegisterExporter,
	logger Logger,
) *Handlers {
	return &Handlers{
		catalog:  catalog,
		builder:  builder,
		ledger:   ledger,
		pending:  pending,
		register: register,
		logger:   logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success  bool        `json:"success"`
	Data     interface{} `json:"data,omitempty"`
	Error    string      `json:"error,omitempty"`
	Problems []string    `json:"problems,omitempty"`
}

// Health handles GET /health
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "receipt-ledger",
		"time":    time.Now().Format(time.RFC3339),
	})
}

// --- Fee catalog ---

type upsertFeeTypeRequest struct {
	Name           string `json:"name"`
	UnitPrice      string `json:"unit_price"`
	Description    string `json:"description"`
	LegalReference string `json:"legal_reference"`
	Active         *bool  `json:"active"`
}

// ListFeeTypes handles GET /api/v1/fee-types
func (h *Handlers) ListFeeTypes(c *gin.Context) {
	feeTypes, err := h.catalog.ListActive(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: feeTypes})
}

// GetFeeType handles GET /api/v1/fee-types/:code
func (h *Handlers) GetFeeType(c *gin.Context) {
	feeType, err := h.catalog.Lookup(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: feeType})
}

// UpsertFeeType handles PUT /api/v1/fee-types/:code
func (h *Handlers) UpsertFeeType(c *gin.Context) {
	var req upsertFeeTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	unitPrice, err := decimal.NewFromString(req.UnitPrice)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: fmt.Sprintf("invalid unit price %q", req.UnitPrice)})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	feeType := &entity.FeeType{
		Code:           c.Param("code"),
		Name:           req.Name,
		UnitPrice:      unitPrice,
		Description:    req.Description,
		LegalReference: req.LegalReference,
		Active:         active,
	}
	if err := h.catalog.Upsert(c.Request.Context(), feeType); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: feeType})
}

// --- Receipt lifecycle ---

type issueReceiptItem struct {
	FeeTypeCode string `json:"fee_type_code"`
	Quantity    int64  `json:"quantity"`
}

type issueReceiptRequest struct {
	OrganizationID   string             `json:"organization_id"`
	OrganizationName string             `json:"organization_name"`
	Items            []issueReceiptItem `json:"items"`
	PaymentMethod    string             `json:"payment_method"`
	PaymentReference string             `json:"payment_reference"`
	PaymentDate      string             `json:"payment_date"`
	IssuedBy         string             `json:"issued_by"`
	SettlePending    bool               `json:"settle_pending"`
}

// IssueReceipt handles POST /api/v1/receipts. It runs the full build,
// finalize, issue flow and optionally settles matching pending obligations.
func (h *Handlers) IssueReceipt(c *gin.Context) {
	var req issueReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	draft := h.builder.NewDraft()
	for _, item := range req.Items {
		if _, err := h.builder.AddItem(ctx, draft, item.FeeTypeCode, item.Quantity); err != nil {
			h.respondError(c, err)
			return
		}
	}

	var paymentDate time.Time
	if req.PaymentDate != "" {
		var err error
		if paymentDate, err = time.Parse(dateLayout, req.PaymentDate); err != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: fmt.Sprintf("invalid payment date %q", req.PaymentDate)})
			return
		}
	}

	finalized, err := h.builder.Finalize(draft, service.FinalizeParams{
		OrganizationID:   req.OrganizationID,
		OrganizationName: req.OrganizationName,
		PaymentMethod:    entity.PaymentMethod(req.PaymentMethod),
		PaymentReference: req.PaymentReference,
		PaymentDate:      paymentDate,
		IssuedBy:         req.IssuedBy,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	receipt, err := h.ledger.Issue(ctx, finalized)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if req.SettlePending {
		for _, item := range receipt.Items {
			if err := h.pending.Settle(ctx, receipt.OrganizationID, item.FeeTypeCode, receipt.ReceiptNumber); err != nil {
				// The receipt is already committed; settlement failure must
				// not unwind it. Surface in logs for reconciliation.
				h.logger.Error("Failed to settle pending fee after issuance",
					"receipt_number", receipt.ReceiptNumber,
					"fee_type", item.FeeTypeCode,
					"error", err)
			}
		}
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: receipt})
}

// GetReceipt handles GET /api/v1/receipts/:number
func (h *Handlers) GetReceipt(c *gin.Context) {
	receipt, err := h.ledger.Get(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: receipt})
}

type cancelReceiptRequest struct {
	Reason string `json:"reason"`
	Actor  string `json:"actor"`
}

// CancelReceipt handles POST /api/v1/receipts/:number/cancel
func (h *Handlers) CancelReceipt(c *gin.Context) {
	var req cancelReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	receipt, err := h.ledger.Cancel(c.Request.Context(), c.Param("number"), req.Reason, req.Actor)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: receipt})
}

// FindReceipts handles GET /api/v1/receipts?q=&from=&to=
func (h *Handlers) FindReceipts(c *gin.Context) {
	filter, err := parseReceiptFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	receipts, err := h.ledger.Find(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: receipts})
}

// --- Pending fees ---

type recordPendingFeeRequest struct {
	OrganizationID   string `json:"organization_id"`
	OrganizationName string `json:"organization_name"`
	FeeTypeCode      string `json:"fee_type_code"`
	Amount           string `json:"amount"`
	DueDate          string `json:"due_date"`
	WorkflowID       string `json:"workflow_id"`
	WorkflowTitle    string `json:"workflow_title"`
}

// RecordPendingFee handles POST /api/v1/pending-fees
func (h *Handlers) RecordPendingFee(c *gin.Context) {
	var req recordPendingFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: fmt.Sprintf("invalid amount %q", req.Amount)})
		return
	}

	var dueDate time.Time
	if req.DueDate != "" {
		if dueDate, err = time.Parse(dateLayout, req.DueDate); err != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: fmt.Sprintf("invalid due date %q", req.DueDate)})
			return
		}
	}

	fee := &entity.PendingFee{
		OrganizationID:   req.OrganizationID,
		OrganizationName: req.OrganizationName,
		FeeTypeCode:      req.FeeTypeCode,
		Amount:           amount,
		DueDate:          dueDate,
		WorkflowID:       req.WorkflowID,
		WorkflowTitle:    req.WorkflowTitle,
	}
	if err := h.pending.Record(c.Request.Context(), fee); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: fee})
}

type settlePendingFeeRequest struct {
	OrganizationID string `json:"organization_id"`
	FeeTypeCode    string `json:"fee_type_code"`
	ReceiptNumber  string `json:"receipt_number"`
}

// SettlePendingFee handles POST /api/v1/pending-fees/settle
func (h *Handlers) SettlePendingFee(c *gin.Context) {
	var req settlePendingFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	if err := h.pending.Settle(c.Request.Context(), req.OrganizationID, req.FeeTypeCode, req.ReceiptNumber); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// pendingFeeResponse adds the derived status to a pending fee
type pendingFeeResponse struct {
	*entity.PendingFee
	Status entity.PendingFeeStatus `json:"status"`
}

// ListPendingFees handles GET /api/v1/pending-fees?organization=
func (h *Handlers) ListPendingFees(c *gin.Context) {
	fees, err := h.pending.ListPending(c.Request.Context(), c.Query("organization"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	now := time.Now()
	out := make([]pendingFeeResponse, 0, len(fees))
	for _, fee := range fees {
		out = append(out, pendingFeeResponse{PendingFee: fee, Status: fee.Status(now)})
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: out})
}

// --- Reports ---

// ExportReceiptRegister handles GET /api/v1/reports/receipt-register
func (h *Handlers) ExportReceiptRegister(c *gin.Context) {
	filter, err := parseReceiptFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="receipt-register.xlsx"`)
	if err := h.register.Export(c.Request.Context(), filter, c.Writer); err != nil {
		h.logger.Error("Failed to export receipt register", "error", err)
		c.Status(http.StatusInternalServerError)
	}
}

// --- Helpers ---

func parseReceiptFilter(c *gin.Context) (entity.ReceiptFilter, error) {
	filter := entity.ReceiptFilter{Query: c.Query("q")}

	if from := c.Query("from"); from != "" {
		t, err := time.Parse(dateLayout, from)
		if err != nil {
			return filter, fmt.Errorf("invalid from date %q", from)
		}
		filter.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(dateLayout, to)
		if err != nil {
			return filter, fmt.Errorf("invalid to date %q", to)
		}
		filter.To = &t
	}
	return filter, nil
}

// respondError maps the core error taxonomy to HTTP status codes
func (h *Handlers) respondError(c *gin.Context, err error) {
	var verr *entity.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "validation failed", Problems: verr.Problems})
	case errors.Is(err, entity.ErrInvalidQuantity), errors.Is(err, entity.ErrMissingReason):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
	case errors.Is(err, entity.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
	case errors.Is(err, entity.ErrDuplicateItem),
		errors.Is(err, entity.ErrAlreadyCancelled),
		errors.Is(err, entity.ErrDuplicatePendingFee),
		errors.Is(err, entity.ErrConstraintViolated):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	case errors.Is(err, entity.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, Response{Success: false, Error: "storage unavailable"})
	default:
		h.logger.Error("Unhandled error", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
	}
}
