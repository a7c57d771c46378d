package handler

import (
	"net/http"
	"strconv"

	"github.com/branchly/inventory-service/internal/apperr"
	"github.com/branchly/inventory-service/internal/auth"
	"github.com/branchly/inventory-service/internal/inventory"
	"github.com/branchly/inventory-service/internal/inventory/dto"
	"github.com/branchly/inventory-service/internal/model"
	"github.com/branchly/inventory-service/internal/respond"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger *zap.Logger
}

func NewInventoryHandler(uc inventory.UseCase, log *zap.Logger) *InventoryHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &InventoryHandler{uc: uc, logger: log}
}

// GetProductInventory handles GET /api/inventory/product/:product_id.
func (h *InventoryHandler) GetProductInventory(c *gin.Context) {
	productID := c.Param("product_id")
	branchID := c.Query("branch_id")
	if branchID == "" {
		respond.Error(c, apperr.Validation("branch_id is required"))
		return
	}

	var variationID *string
	if v := c.Query("variation_id"); v != "" {
		variationID = &v
	}

	inv, err := h.uc.GetProductInventory(c.Request.Context(), productID, branchID, variationID)
	if err != nil {
		h.logger.Error("failed to get product inventory", zap.Error(err))
		respond.Error(c, err)
		return
	}

	respond.OK(c, inv, "")
}

// List handles GET /api/inventory.
func (h *InventoryHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	filters := &dto.InventoryFilters{
		BranchID:  c.Query("branch_id"),
		ProductID: c.Query("product_id"),
		LowStock:  c.Query("low_stock") == "true",
		Page:      page,
		PageSize:  limit,
	}

	items, total, err := h.uc.ListInventory(c.Request.Context(), filters)
	if err != nil {
		h.logger.Error("failed to list inventory", zap.Error(err))
		respond.Error(c, err)
		return
	}

	respond.Paginated(c, items, respond.Pagination{
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasNext: page*limit < total,
		HasPrev: page > 1,
	})
}

type adjustStockRequest struct {
	ProductID      string  `json:"product_id" binding:"required"`
	BranchID       string  `json:"branch_id" binding:"required"`
	VariationID    *string `json:"variation_id"`
	QuantityChange int     `json:"quantity_change" binding:"required"`
	Reason         string  `json:"reason" binding:"required,min=1"`
	ReferenceID    string  `json:"reference_id"`
}

// Adjust handles POST /api/inventory/adjust.
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	user := auth.GetUser(c.Request.Context())
	if user == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthenticated"})
		return
	}
	if !auth.HasBranchAccess(user, req.BranchID) {
		respond.Error(c, apperr.Authorization("no permission for branch %s", req.BranchID))
		return
	}

	inv, err := h.uc.AdjustStock(c.Request.Context(), &dto.AdjustStockInput{
		ProductID:      req.ProductID,
		BranchID:       req.BranchID,
		VariationID:    req.VariationID,
		QuantityChange: req.QuantityChange,
		Reason:         req.Reason,
		ReferenceID:    req.ReferenceID,
		ReferenceType:  model.ReferenceTypeManual,
		UserID:         user.UserID,
	})
	if err != nil {
		h.logger.Warn("stock adjustment failed",
			zap.String("product_id", req.ProductID),
			zap.String("branch_id", req.BranchID),
			zap.Error(err))
		respond.Error(c, err)
		return
	}

	respond.OK(c, inv, "Stock adjusted successfully")
}

// ListMovements handles GET /api/inventory/movements.
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	filters := &dto.MovementFilters{
		ProductID:     c.Query("product_id"),
		BranchID:      c.Query("branch_id"),
		MovementType:  c.Query("movement_type"),
		ReferenceType: c.Query("reference_type"),
		Page:          page,
		PageSize:      limit,
	}

	movements, total, err := h.uc.ListMovements(c.Request.Context(), filters)
	if err != nil {
		h.logger.Error("failed to list movements", zap.Error(err))
		respond.Error(c, err)
		return
	}

	respond.Paginated(c, movements, respond.Pagination{
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasNext: page*limit < total,
		HasPrev: page > 1,
	})
}
