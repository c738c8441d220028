package models

// Order is a row of the order management system. OrderDate is kept as the
// free-form string the client supplied.
type Order struct {
	ID          int64  `json:"id"`
	OrderID     string `json:"order_id"`
	OrderDate   string `json:"order_date"`
	OrderAmount *int64 `json:"order_amount"`
}

var OrderColumns = []string{"id", "order_id", "order_date", "order_amount"}

func (o Order) SchemaName() string { return SchemaOrder }

func (o Order) ToRecord() Record {
	return Record{
		"id":           o.ID,
		"order_id":     o.OrderID,
		"order_date":   o.OrderDate,
		"order_amount": nullable(o.OrderAmount),
	}
}
