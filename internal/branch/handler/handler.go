package handler

import (
	"github.com/branchly/inventory-service/internal/branch"
	"github.com/branchly/inventory-service/internal/respond"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BranchHandler struct {
	repo   branch.Repository
	logger *zap.Logger
}

func NewBranchHandler(repo branch.Repository, log *zap.Logger) *BranchHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &BranchHandler{repo: repo, logger: log}
}

// List handles GET /api/branches. Read-only, no use case in between: the
// dashboard only needs the active branches for its pickers.
func (h *BranchHandler) List(c *gin.Context) {
	branches, err := h.repo.FindAll(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list branches", zap.Error(err))
		respond.Error(c, err)
		return
	}
	respond.OK(c, branches, "")
}
