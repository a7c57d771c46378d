package transfer

import (
	"context"

	"github.com/branchly/inventory-service/internal/transfer/dto"
)

type UseCase interface {
	CreateTransfer(ctx context.Context, input *dto.CreateTransferInput) (*dto.TransferDetail, error)
	ListTransfers(ctx context.Context, filters *dto.TransferFilters) ([]dto.TransferDetail, error)
	GetTransfer(ctx context.Context, id string) (*dto.TransferDetail, error)
}
