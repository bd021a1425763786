package postgres

import (
	"context"
	"time"

	"fireworks/internal/domain/entity"
	domainerrors "fireworks/internal/domain/errors"
	"fireworks/internal/domain/repository"
	"fireworks/internal/errors"
	"fireworks/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository is the constructor for orderRepository.
func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

// Create inserts the order with its line items. The stored total is always
// derived from the inserted items, never taken from the caller.
func (repo *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	db := repo.db.WithContext(ctx)

	orderM := fromOrderDomain(order)
	orderM.Total = decimal.Zero
	if err := db.Create(orderM).Error; err != nil {
		return translateWriteError(err, domainerrors.ErrConflict, "failed to create order")
	}

	order.ID = orderM.ID
	order.CreatedAt = orderM.CreatedAt
	order.UpdatedAt = orderM.UpdatedAt

	if len(order.Items) > 0 {
		itemModels := make([]*model.OrderLineItemModel, 0, len(order.Items))
		for _, item := range order.Items {
			item.OrderID = order.ID
			itemModels = append(itemModels, fromOrderLineItemDomain(item))
		}
		if err := db.Create(&itemModels).Error; err != nil {
			return translateWriteError(err, domainerrors.ErrConflict, "failed to create order line items")
		}
		for i, itemM := range itemModels {
			order.Items[i].ID = itemM.ID
			order.Items[i].CreatedAt = itemM.CreatedAt
			order.Items[i].UpdatedAt = itemM.UpdatedAt
		}
	}

	total, err := repo.RecalculateTotal(ctx, order.ID)
	if err != nil {
		return err
	}
	order.Total = total

	return nil
}

func (repo *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var orderM model.OrderModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&orderM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrOrderNotFound
		}

		return nil, errors.Wrap(err, "failed to find order")
	}

	orders, err := repo.hydrate(ctx, []*model.OrderModel{&orderM})
	if err != nil {
		return nil, err
	}

	return orders[0], nil
}

func (repo *orderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]*entity.Order, int64, error) {
	query := repo.db.WithContext(ctx).Model(&model.OrderModel{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.StatusID != nil {
		query = query.Where("status_id = ?", *filter.StatusID)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to count orders")
	}

	var orderModels []*model.OrderModel
	if err := paginate(query, filter.ListOptions).Order("created_at DESC, id DESC").Find(&orderModels).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to list orders")
	}

	orders, err := repo.hydrate(ctx, orderModels)
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// UpdateContact writes the contact fields unless the order is already shipped.
// The status check is part of the UPDATE so a concurrent ship cannot slip in between.
func (repo *orderRepository) UpdateContact(ctx context.Context, order *entity.Order) error {
	db := repo.db.WithContext(ctx)
	orderM := fromOrderDomain(order)
	result := db.Model(&model.OrderModel{}).
		Where("id = ?", order.ID).
		Where("status_id NOT IN (?)", db.Model(&model.OrderStatusModel{}).Select("id").Where("text = ?", entity.OrderStatusShipped)).
		Select("address_id", "fio", "phone", "operator_call", "updated_at").
		Updates(orderM)
	if result.Error != nil {
		return translateWriteError(result.Error, domainerrors.ErrConflict, "failed to update order contact")
	}
	if result.RowsAffected == 0 {
		var exists int64
		if err := db.Model(&model.OrderModel{}).Where("id = ?", order.ID).Count(&exists).Error; err != nil {
			return errors.Wrap(err, "failed to check order")
		}
		if exists == 0 {
			return domainerrors.ErrOrderNotFound
		}

		return domainerrors.ErrOrderAlreadyShipped
	}

	order.UpdatedAt = orderM.UpdatedAt

	return nil
}

func (repo *orderRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, statusID int) error {
	result := repo.db.WithContext(ctx).Model(&model.OrderModel{}).
		Where("id = ?", orderID).
		Updates(map[string]any{"status_id": statusID, "updated_at": time.Now()})
	if result.Error != nil {
		return translateWriteError(result.Error, domainerrors.ErrConflict, "failed to update order status")
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrOrderNotFound
	}

	return nil
}

func (repo *orderRepository) FindStatus(ctx context.Context, id int) (*entity.OrderStatus, error) {
	var statusM model.OrderStatusModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&statusM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrOrderStatusNotFound
		}

		return nil, errors.Wrap(err, "failed to find order status")
	}

	return &entity.OrderStatus{ID: statusM.ID, Text: statusM.Text}, nil
}

func (repo *orderRepository) ListStatuses(ctx context.Context) ([]*entity.OrderStatus, error) {
	var statusModels []*model.OrderStatusModel
	if err := repo.db.WithContext(ctx).Order("id ASC").Find(&statusModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list order statuses")
	}

	return mapSlice(statusModels, func(m *model.OrderStatusModel) *entity.OrderStatus {
		return &entity.OrderStatus{ID: m.ID, Text: m.Text}
	}), nil
}

func (repo *orderRepository) AddItem(ctx context.Context, item *entity.OrderLineItem) error {
	itemM := fromOrderLineItemDomain(item)
	if err := repo.db.WithContext(ctx).Create(itemM).Error; err != nil {
		return translateWriteError(err, domainerrors.ErrConflict, "failed to add order line item")
	}

	item.ID = itemM.ID
	item.CreatedAt = itemM.CreatedAt
	item.UpdatedAt = itemM.UpdatedAt

	return nil
}

func (repo *orderRepository) UpdateItemAmount(ctx context.Context, orderID, itemID uuid.UUID, amount int) error {
	result := repo.db.WithContext(ctx).Model(&model.OrderLineItemModel{}).
		Where("id = ? AND order_id = ?", itemID, orderID).
		Updates(map[string]any{"amount": amount, "updated_at": time.Now()})
	if result.Error != nil {
		return translateWriteError(result.Error, domainerrors.ErrConflict, "failed to update order line item")
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrOrderItemNotFound
	}

	return nil
}

func (repo *orderRepository) DeleteItem(ctx context.Context, orderID, itemID uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ? AND order_id = ?", itemID, orderID).
		Delete(&model.OrderLineItemModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete order line item")
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrOrderItemNotFound
	}

	return nil
}

// RecalculateTotal must run in the transaction that mutated the line items.
func (repo *orderRepository) RecalculateTotal(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	db := repo.db.WithContext(ctx)

	var itemModels []*model.OrderLineItemModel
	if err := db.Where("order_id = ?", orderID).Find(&itemModels).Error; err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to load order line items")
	}

	total := entity.SumLineItems(mapSlice(itemModels, toOrderLineItemDomain))

	result := db.Model(&model.OrderModel{}).
		Where("id = ?", orderID).
		Updates(map[string]any{"total": total, "updated_at": time.Now()})
	if result.Error != nil {
		return decimal.Zero, domainerrors.NewDatabaseExecuteError(result.Error, "failed to store order total")
	}
	if result.RowsAffected == 0 {
		return decimal.Zero, domainerrors.ErrOrderNotFound
	}

	return total, nil
}

func (repo *orderRepository) DetachProduct(ctx context.Context, productID uuid.UUID) error {
	err := repo.db.WithContext(ctx).Model(&model.OrderLineItemModel{}).
		Where("product_id = ?", productID).
		Updates(map[string]any{"product_id": nil, "updated_at": time.Now()}).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to detach product from orders")
	}

	return nil
}

// hydrate loads statuses, addresses and line items for the given orders in three queries.
func (repo *orderRepository) hydrate(ctx context.Context, orderModels []*model.OrderModel) ([]*entity.Order, error) {
	db := repo.db.WithContext(ctx)

	orderIDs := make([]uuid.UUID, 0, len(orderModels))
	addressIDs := make([]uuid.UUID, 0, len(orderModels))
	statusIDs := make([]int, 0, len(orderModels))
	for _, orderM := range orderModels {
		orderIDs = append(orderIDs, orderM.ID)
		statusIDs = append(statusIDs, orderM.StatusID)
		if orderM.AddressID != nil {
			addressIDs = append(addressIDs, *orderM.AddressID)
		}
	}

	statuses := make(map[int]*entity.OrderStatus)
	if len(statusIDs) > 0 {
		var statusModels []*model.OrderStatusModel
		if err := db.Where("id IN ?", statusIDs).Find(&statusModels).Error; err != nil {
			return nil, errors.Wrap(err, "failed to load order statuses")
		}
		for _, statusM := range statusModels {
			statuses[statusM.ID] = &entity.OrderStatus{ID: statusM.ID, Text: statusM.Text}
		}
	}

	addresses := make(map[uuid.UUID]*entity.Address)
	if len(addressIDs) > 0 {
		var addressModels []*model.AddressModel
		if err := db.Where("id IN ?", addressIDs).Find(&addressModels).Error; err != nil {
			return nil, errors.Wrap(err, "failed to load order addresses")
		}
		for _, addressM := range addressModels {
			addresses[addressM.ID] = toAddressDomain(addressM)
		}
	}

	items := make(map[uuid.UUID][]*entity.OrderLineItem)
	if len(orderIDs) > 0 {
		var itemModels []*model.OrderLineItemModel
		if err := db.Where("order_id IN ?", orderIDs).Order("created_at ASC, id ASC").Find(&itemModels).Error; err != nil {
			return nil, errors.Wrap(err, "failed to load order line items")
		}
		for _, itemM := range itemModels {
			items[itemM.OrderID] = append(items[itemM.OrderID], toOrderLineItemDomain(itemM))
		}
	}

	orders := make([]*entity.Order, 0, len(orderModels))
	for _, orderM := range orderModels {
		order := toOrderDomain(orderM)
		order.Status = statuses[orderM.StatusID]
		if orderM.AddressID != nil {
			order.Address = addresses[*orderM.AddressID]
		}
		if orderItems, ok := items[orderM.ID]; ok {
			order.Items = orderItems
		}
		orders = append(orders, order)
	}

	return orders, nil
}

// --- Mapper Functions ---

func toOrderDomain(data *model.OrderModel) *entity.Order {
	return &entity.Order{
		ID:           data.ID,
		UserID:       data.UserID,
		StatusID:     data.StatusID,
		AddressID:    data.AddressID,
		FIO:          data.FIO,
		Phone:        data.Phone,
		OperatorCall: data.OperatorCall,
		Total:        data.Total,
		Items:        []*entity.OrderLineItem{},
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}

func fromOrderDomain(data *entity.Order) *model.OrderModel {
	return &model.OrderModel{
		ID:           data.ID,
		UserID:       data.UserID,
		StatusID:     data.StatusID,
		AddressID:    data.AddressID,
		FIO:          data.FIO,
		Phone:        data.Phone,
		OperatorCall: data.OperatorCall,
		Total:        data.Total,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}

func toOrderLineItemDomain(data *model.OrderLineItemModel) *entity.OrderLineItem {
	return &entity.OrderLineItem{
		ID:           data.ID,
		OrderID:      data.OrderID,
		ProductID:    data.ProductID,
		ProductName:  data.ProductName,
		Amount:       data.Amount,
		PricePerUnit: data.PricePerUnit,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}

func fromOrderLineItemDomain(data *entity.OrderLineItem) *model.OrderLineItemModel {
	return &model.OrderLineItemModel{
		ID:           data.ID,
		OrderID:      data.OrderID,
		ProductID:    data.ProductID,
		ProductName:  data.ProductName,
		Amount:       data.Amount,
		PricePerUnit: data.PricePerUnit,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}
