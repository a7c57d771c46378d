package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/branchly/inventory-service/internal/inventory"
	"github.com/branchly/inventory-service/internal/inventory/dto"
	"github.com/branchly/inventory-service/internal/model"
	"github.com/branchly/inventory-service/internal/platform/broker"
	"go.uber.org/zap"
)

// SaleListener consumes sale events from the POS checkout flow and
// deducts the sold quantities from branch inventory. Sales themselves
// live in another service; only their stock effect lands here.
type SaleListener struct {
	consumer *broker.KafkaConsumer
	uc       inventory.UseCase
	logger   *zap.Logger
}

func NewSaleListener(consumer *broker.KafkaConsumer, uc inventory.UseCase, logger *zap.Logger) *SaleListener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
	}
}

func (l *SaleListener) Start(ctx context.Context) {
	l.logger.Info("starting sale event listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("stopping sale event listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				// Don't log context canceled error as error
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type SaleCompletedEvent struct {
	EventID   string      `json:"event_id"`
	EventType string      `json:"event_type"`
	Payload   SalePayload `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

type SalePayload struct {
	ID       string            `json:"id"`
	BranchID string            `json:"branch_id"`
	UserID   string            `json:"user_id"`
	Items    []SaleItemPayload `json:"items"`
}

type SaleItemPayload struct {
	ProductID   string  `json:"product_id"`
	VariationID *string `json:"variation_id"`
	Quantity    int     `json:"quantity"`
}

func (l *SaleListener) processMessage(ctx context.Context, value []byte) {
	var event SaleCompletedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != "SaleCompleted" {
		return
	}

	l.logger.Info("processing SaleCompleted event", zap.String("sale_id", event.Payload.ID))

	userID := event.Payload.UserID
	if userID == "" {
		userID = "system"
	}

	for _, item := range event.Payload.Items {
		input := &dto.AdjustStockInput{
			ProductID:      item.ProductID,
			BranchID:       event.Payload.BranchID,
			VariationID:    item.VariationID,
			QuantityChange: -item.Quantity, // Deduction
			Reason:         "Sale",
			ReferenceID:    event.Payload.ID,
			ReferenceType:  model.ReferenceTypeSale,
			UserID:         userID,
		}

		_, err := l.uc.AdjustStock(ctx, input)
		if err != nil {
			l.logger.Error("failed to deduct inventory for sale item",
				zap.String("sale_id", event.Payload.ID),
				zap.String("product_id", item.ProductID),
				zap.Error(err),
			)
		}
	}
}
