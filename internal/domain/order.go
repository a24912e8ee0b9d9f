package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every accepted status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// ParseOrderStatus converts user input into an OrderStatus, ignoring case and
// surrounding whitespace.
func ParseOrderStatus(s string) (OrderStatus, error) {
	candidate := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, status := range OrderStatuses {
		if candidate == status {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

func (s OrderStatus) String() string {
	return string(s)
}

// Order is created by checkout. UnitCost and TotalCost are snapshots taken at
// checkout time and never follow later price changes.
type Order struct {
	OrderID   string          `json:"orderId" db:"order_id"`
	Address   string          `json:"address" db:"address"`
	Status    OrderStatus     `json:"status" db:"status"`
	ProductID int64           `json:"productId" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitCost  decimal.Decimal `json:"unitCost" db:"unit_cost"`
	TotalCost decimal.Decimal `json:"totalCost" db:"total_cost"`
}

// MarshalJSON writes both costs as numbers
func (o Order) MarshalJSON() ([]byte, error) {
	type plain Order
	return json.Marshal(struct {
		plain
		UnitCost  json.Number `json:"unitCost"`
		TotalCost json.Number `json:"totalCost"`
	}{plain: plain(o), UnitCost: jsonMoney(o.UnitCost), TotalCost: jsonMoney(o.TotalCost)})
}

// NewOrder snapshots the product's current price into a pending order.
func NewOrder(orderID string, product *Product, quantity int) *Order {
	return &Order{
		OrderID:   orderID,
		Address:   "",
		Status:    OrderStatusPending,
		ProductID: product.ID,
		Quantity:  quantity,
		UnitCost:  product.Price,
		TotalCost: product.Price.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// Clone returns a copy that can be mutated without affecting o.
func (o *Order) Clone() *Order {
	c := *o
	return &c
}

// OrderPatch carries the optional fields of an order update.
type OrderPatch struct {
	Address *string
	Status  *OrderStatus
}

// IsEmpty reports whether the patch changes nothing.
func (p OrderPatch) IsEmpty() bool {
	return p.Address == nil && p.Status == nil
}

// Apply writes the supplied fields onto order.
func (p OrderPatch) Apply(order *Order) {
	if p.Address != nil {
		order.Address = *p.Address
	}
	if p.Status != nil {
		order.Status = *p.Status
	}
}
