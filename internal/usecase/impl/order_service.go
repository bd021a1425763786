package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "fireworks/internal/delivery/context"
	"fireworks/internal/domain/entity"
	domainerrors "fireworks/internal/domain/errors"
	"fireworks/internal/domain/repository"
	"fireworks/internal/domain/service"
	"fireworks/internal/errors"
	"fireworks/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// orderService implements the OrderUsecase interface.
type orderService struct {
	txManager repository.TransactionManager
	orderRepo repository.OrderRepository
	events    service.OrderEventPublisher
	now       func() time.Time
	logger    *slog.Logger
}

// OrderServiceParams holds dependencies for OrderService, injected by Fx.
type OrderServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	OrderRepo repository.OrderRepository
	Events    service.OrderEventPublisher
	Logger    *slog.Logger
}

// NewOrderService is the constructor for orderService.
func NewOrderService(params OrderServiceParams) usecase.OrderUsecase {
	return &orderService{
		txManager: params.TxManager,
		orderRepo: params.OrderRepo,
		events:    params.Events,
		now:       time.Now,
		logger:    params.Logger,
	}
}

func (srv *orderService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateOrder snapshots the cart into line items and clears the cart in the same transaction.
// An empty cart fails with ErrCartEmpty before anything is written.
func (srv *orderService) CreateOrder(ctx context.Context, userID uuid.UUID, input usecase.OrderContactInput) (*entity.Order, error) {
	var created *entity.Order
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		cartRepo := repoFactory.CartRepo()
		orderRepo := repoFactory.OrderRepo()

		cartItems, err := cartRepo.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		if len(cartItems) == 0 {
			return domainerrors.ErrCartEmpty
		}

		if input.AddressID != nil {
			if _, err := repoFactory.AddressRepo().FindByID(ctx, userID, *input.AddressID); err != nil {
				return err
			}
		}

		items := make([]*entity.OrderLineItem, 0, len(cartItems))
		for _, cartItem := range cartItems {
			product := cartItem.Product
			if product == nil {
				return domainerrors.ErrProductNotFound.WrapMessage("cart references a missing product")
			}
			if !product.IsActive {
				return domainerrors.ErrProductUnavailable.WrapMessage(product.Name)
			}

			items = append(items, snapshotLineItem(product, cartItem.Amount))
		}

		order := &entity.Order{
			UserID:       userID,
			StatusID:     entity.OrderStatusCreatedID,
			AddressID:    input.AddressID,
			FIO:          input.FIO,
			Phone:        input.Phone,
			OperatorCall: input.OperatorCall,
			Items:        items,
		}
		if err := orderRepo.Create(ctx, order); err != nil {
			return err
		}

		if err := cartRepo.Clear(ctx, userID); err != nil {
			return err
		}

		created, err = orderRepo.FindByID(ctx, order.ID)

		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create order")
	}

	srv.log(ctx).Info("Order created",
		slog.Any("orderID", created.ID),
		slog.Any("userID", userID),
		slog.Int("items", len(created.Items)),
		slog.String("total", created.Total.StringFixed(2)),
	)
	srv.publish(ctx, service.OrderEventCreated, created)

	return created, nil
}

// GetOrder hides orders of other users from non-admin actors.
func (srv *orderService) GetOrder(ctx context.Context, actor usecase.Actor, orderID uuid.UUID) (*entity.Order, error) {
	order, err := srv.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get order")
	}
	if err := checkOrderAccess(actor, order); err != nil {
		return nil, err
	}

	return order, nil
}

func (srv *orderService) ListOrders(ctx context.Context, actor usecase.Actor, input usecase.OrderListInput) (*usecase.OrderListOutput, error) {
	filter := repository.OrderFilter{
		StatusID:    input.StatusID,
		ListOptions: repository.ListOptions{Limit: input.Limit, Offset: input.Offset},
	}
	if !actor.IsAdmin {
		userID := actor.UserID
		filter.UserID = &userID
	}

	orders, total, err := srv.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}

	return &usecase.OrderListOutput{Orders: orders, Total: total}, nil
}

// UpdateAddress replaces address and contact fields while the order is not shipped.
func (srv *orderService) UpdateAddress(ctx context.Context, actor usecase.Actor, orderID uuid.UUID, input usecase.OrderContactInput) (*entity.Order, error) {
	updated, err := srv.mutateOrder(ctx, actor, orderID, func(repoFactory repository.RepositoryFactory, order *entity.Order) error {
		if order.IsShipped() {
			return domainerrors.ErrOrderAlreadyShipped
		}

		if input.AddressID != nil {
			if _, err := repoFactory.AddressRepo().FindByID(ctx, order.UserID, *input.AddressID); err != nil {
				return err
			}
		}

		order.AddressID = input.AddressID
		order.FIO = input.FIO
		order.Phone = input.Phone
		order.OperatorCall = input.OperatorCall

		return repoFactory.OrderRepo().UpdateContact(ctx, order)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to update order address")
	}

	srv.publish(ctx, service.OrderEventUpdated, updated)

	return updated, nil
}

// UpdateStatus overwrites the status. Any known status may follow any other.
func (srv *orderService) UpdateStatus(ctx context.Context, actor usecase.Actor, orderID uuid.UUID, statusID int) (*entity.Order, error) {
	updated, err := srv.mutateOrder(ctx, actor, orderID, func(repoFactory repository.RepositoryFactory, order *entity.Order) error {
		orderRepo := repoFactory.OrderRepo()

		if _, err := orderRepo.FindStatus(ctx, statusID); err != nil {
			return err
		}

		return orderRepo.UpdateStatus(ctx, order.ID, statusID)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to update order status")
	}

	srv.log(ctx).Info("Order status changed", slog.Any("orderID", orderID), slog.Int("statusID", statusID))
	srv.publish(ctx, service.OrderEventStatusChanged, updated)

	return updated, nil
}

// RepeatOrder clones line items, address and contact data into a new "Created" order.
// The original order and the cart stay untouched.
func (srv *orderService) RepeatOrder(ctx context.Context, userID, orderID uuid.UUID) (*entity.Order, error) {
	var repeated *entity.Order
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		orderRepo := repoFactory.OrderRepo()

		original, err := orderRepo.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if original.UserID != userID {
			return domainerrors.ErrOrderNotFound
		}

		items := make([]*entity.OrderLineItem, 0, len(original.Items))
		for _, item := range original.Items {
			items = append(items, &entity.OrderLineItem{
				ProductID:    item.ProductID,
				ProductName:  item.ProductName,
				Amount:       item.Amount,
				PricePerUnit: item.PricePerUnit,
			})
		}

		order := &entity.Order{
			UserID:       original.UserID,
			StatusID:     entity.OrderStatusCreatedID,
			AddressID:    original.AddressID,
			FIO:          original.FIO,
			Phone:        original.Phone,
			OperatorCall: original.OperatorCall,
			Items:        items,
		}
		if err := orderRepo.Create(ctx, order); err != nil {
			return err
		}

		repeated, err = orderRepo.FindByID(ctx, order.ID)

		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to repeat order")
	}

	srv.log(ctx).Info("Order repeated", slog.Any("originalID", orderID), slog.Any("orderID", repeated.ID))
	srv.publish(ctx, service.OrderEventRepeated, repeated)

	return repeated, nil
}

func (srv *orderService) ListStatuses(ctx context.Context) ([]*entity.OrderStatus, error) {
	statuses, err := srv.orderRepo.ListStatuses(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list order statuses")
	}

	return statuses, nil
}

// AddItem appends a product to the order at its current price.
func (srv *orderService) AddItem(ctx context.Context, orderID uuid.UUID, input usecase.OrderItemInput) (*entity.Order, error) {
	if input.Amount < 1 {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("amount must be at least 1")
	}

	return srv.editItems(ctx, orderID, func(repoFactory repository.RepositoryFactory) error {
		product, err := repoFactory.ProductRepo().FindByID(ctx, input.ProductID)
		if err != nil {
			return err
		}

		item := snapshotLineItem(product, input.Amount)
		item.OrderID = orderID

		return repoFactory.OrderRepo().AddItem(ctx, item)
	})
}

func (srv *orderService) UpdateItemAmount(ctx context.Context, orderID, itemID uuid.UUID, amount int) (*entity.Order, error) {
	if amount < 1 {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("amount must be at least 1")
	}

	return srv.editItems(ctx, orderID, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.OrderRepo().UpdateItemAmount(ctx, orderID, itemID, amount)
	})
}

func (srv *orderService) RemoveItem(ctx context.Context, orderID, itemID uuid.UUID) (*entity.Order, error) {
	return srv.editItems(ctx, orderID, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.OrderRepo().DeleteItem(ctx, orderID, itemID)
	})
}

// editItems runs a line item mutation and recomputes the total in the same transaction.
func (srv *orderService) editItems(ctx context.Context, orderID uuid.UUID, edit func(repoFactory repository.RepositoryFactory) error) (*entity.Order, error) {
	var updated *entity.Order
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		orderRepo := repoFactory.OrderRepo()

		if _, err := orderRepo.FindByID(ctx, orderID); err != nil {
			return err
		}

		if err := edit(repoFactory); err != nil {
			return err
		}

		if _, err := orderRepo.RecalculateTotal(ctx, orderID); err != nil {
			return err
		}

		var err error
		updated, err = orderRepo.FindByID(ctx, orderID)

		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to edit order items")
	}

	srv.log(ctx).Info("Order items edited", slog.Any("orderID", orderID), slog.String("total", updated.Total.StringFixed(2)))
	srv.publish(ctx, service.OrderEventUpdated, updated)

	return updated, nil
}

// mutateOrder loads the order with access checks, applies fn and returns the reloaded order.
func (srv *orderService) mutateOrder(ctx context.Context, actor usecase.Actor, orderID uuid.UUID, fn func(repoFactory repository.RepositoryFactory, order *entity.Order) error) (*entity.Order, error) {
	var updated *entity.Order
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		orderRepo := repoFactory.OrderRepo()

		order, err := orderRepo.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := checkOrderAccess(actor, order); err != nil {
			return err
		}

		if err := fn(repoFactory, order); err != nil {
			return err
		}

		updated, err = orderRepo.FindByID(ctx, orderID)

		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// publish emits an order event after commit. Failures are logged and never fail the request.
func (srv *orderService) publish(ctx context.Context, eventType string, order *entity.Order) {
	event := &service.OrderEvent{
		Type:       eventType,
		OrderID:    order.ID.String(),
		UserID:     order.UserID.String(),
		StatusID:   order.StatusID,
		Total:      order.Total.StringFixed(2),
		OccurredAt: srv.now().UTC().Format(time.RFC3339),
	}

	if err := srv.events.PublishOrderEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish order event",
			slog.String("type", eventType),
			slog.Any("orderID", order.ID),
			slog.Any("error", err),
		)
	}
}

func checkOrderAccess(actor usecase.Actor, order *entity.Order) error {
	if actor.IsAdmin || order.UserID == actor.UserID {
		return nil
	}

	return domainerrors.ErrOrderNotFound
}

func snapshotLineItem(product *entity.Product, amount int) *entity.OrderLineItem {
	productID := product.ID

	return &entity.OrderLineItem{
		ProductID:    &productID,
		ProductName:  product.Name,
		Amount:       amount,
		PricePerUnit: product.Price,
	}
}
