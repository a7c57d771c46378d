package handler

import (
	"net/http"
	"strconv"

	"github.com/branchly/inventory-service/internal/apperr"
	"github.com/branchly/inventory-service/internal/auth"
	"github.com/branchly/inventory-service/internal/respond"
	"github.com/branchly/inventory-service/internal/transfer"
	"github.com/branchly/inventory-service/internal/transfer/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TransferHandler struct {
	uc     transfer.UseCase
	logger *zap.Logger
}

func NewTransferHandler(uc transfer.UseCase, log *zap.Logger) *TransferHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &TransferHandler{uc: uc, logger: log}
}

type createTransferRequest struct {
	FromBranchID string                `json:"from_branch_id" binding:"required"`
	ToBranchID   string                `json:"to_branch_id" binding:"required"`
	Reason       string                `json:"reason" binding:"required,min=1"`
	Items        []transferItemRequest `json:"items" binding:"required,min=1,dive"`
}

type transferItemRequest struct {
	ProductID   string  `json:"product_id" binding:"required"`
	VariationID *string `json:"variation_id"`
	Quantity    int     `json:"quantity" binding:"required,gt=0"`
}

// Create handles POST /api/transfers. The branch permission check happens
// here, not in the engine: source access is mandatory, destination access
// is waived for employees.
func (h *TransferHandler) Create(c *gin.Context) {
	var req createTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	user := auth.GetUser(c.Request.Context())
	if user == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthenticated"})
		return
	}
	if !auth.CanTransfer(user, req.FromBranchID, req.ToBranchID) {
		respond.Error(c, apperr.Authorization("no permission for the requested branches"))
		return
	}

	input := &dto.CreateTransferInput{
		FromBranchID: req.FromBranchID,
		ToBranchID:   req.ToBranchID,
		Reason:       req.Reason,
		UserID:       user.UserID,
		Items:        make([]dto.TransferItemInput, len(req.Items)),
	}
	for i, item := range req.Items {
		input.Items[i] = dto.TransferItemInput{
			ProductID:   item.ProductID,
			VariationID: item.VariationID,
			Quantity:    item.Quantity,
		}
	}

	detail, err := h.uc.CreateTransfer(c.Request.Context(), input)
	if err != nil {
		h.logger.Warn("transfer failed",
			zap.String("from_branch_id", req.FromBranchID),
			zap.String("to_branch_id", req.ToBranchID),
			zap.Error(err))
		respond.Error(c, err)
		return
	}

	respond.OK(c, detail, "Transfer completed successfully")
}

// List handles GET /api/transfers. The pagination total mirrors the page
// length, which is what the dashboard has always been served; a true
// count would change the contract.
func (h *TransferHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	filters := &dto.TransferFilters{
		FromBranchID: c.Query("from_branch_id"),
		ToBranchID:   c.Query("to_branch_id"),
		Status:       c.Query("status"),
		Page:         page,
		PageSize:     limit,
	}

	transfers, err := h.uc.ListTransfers(c.Request.Context(), filters)
	if err != nil {
		h.logger.Error("failed to list transfers", zap.Error(err))
		respond.Error(c, err)
		return
	}

	respond.Paginated(c, transfers, respond.Pagination{
		Page:    page,
		Limit:   limit,
		Total:   len(transfers),
		HasNext: len(transfers) == limit,
		HasPrev: page > 1,
	})
}
