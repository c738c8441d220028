package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	apperrors "erp-assistant/internal/common/errors"
	"erp-assistant/internal/models"
)

const ordersTable = "orders"

var orderInsertColumns = []string{"order_id", "order_date", "order_amount"}

func scanOrder(row interface{ Scan(...interface{}) error }) (models.Order, error) {
	var o models.Order
	var amount sql.NullInt64
	if err := row.Scan(&o.ID, &o.OrderID, &o.OrderDate, &amount); err != nil {
		return models.Order{}, err
	}
	o.OrderAmount = nullInt(amount)
	return o, nil
}

func (s *Store) ListOrders(ctx context.Context, filters Filters, page Page) ([]models.Order, error) {
	query, args := s.listQuery(ordersTable, models.OrderColumns, filters, page)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (s *Store) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	query := "SELECT " + strings.Join(models.OrderColumns, ", ") + " FROM " + ordersTable +
		" WHERE order_id = " + s.dialect.Placeholder(1)
	o, err := scanOrder(s.db.QueryRowContext(ctx, query, orderID))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewRecordNotFoundError("Order not found", orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

func (s *Store) CreateOrder(ctx context.Context, o models.Order) (*models.Order, error) {
	o.OrderID = strings.TrimSpace(o.OrderID)
	if o.OrderID == "" {
		return nil, apperrors.NewRequiredFieldMissingError("order_id")
	}
	if strings.TrimSpace(o.OrderDate) == "" {
		return nil, apperrors.NewRequiredFieldMissingError("order_date")
	}

	taken, err := s.exists(ctx, ordersTable, "order_id", o.OrderID)
	if err != nil {
		return nil, fmt.Errorf("check order id: %w", err)
	}
	if taken {
		return nil, apperrors.NewDuplicateRecordError("order_id", "Order ID already registered")
	}

	err = s.db.QueryRowContext(ctx, s.insertQuery(ordersTable, orderInsertColumns),
		o.OrderID, o.OrderDate, o.OrderAmount,
	).Scan(&o.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewDuplicateRecordError("order_id", "Order ID already registered")
		}
		return nil, fmt.Errorf("insert order: %w", err)
	}
	return &o, nil
}

func (s *Store) DeleteOrder(ctx context.Context, orderID string) error {
	deleted, err := s.deleteBy(ctx, ordersTable, "order_id", orderID)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if !deleted {
		return apperrors.NewRecordNotFoundError("Order not found", orderID)
	}
	return nil
}
