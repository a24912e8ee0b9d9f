package domain

import (
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderStatus(t *testing.T) {
	for _, in := range []string{"pending", "Confirmed", " SHIPPED ", "delivered", "cancelled"} {
		status, err := ParseOrderStatus(in)
		require.NoError(t, err, in)
		assert.Contains(t, OrderStatuses, status)
	}

	for _, in := range []string{"", "lost", "canceled", "ship ped"} {
		_, err := ParseOrderStatus(in)
		assert.Error(t, err, in)
	}
}

func TestNewOrderSnapshotsPrice(t *testing.T) {
	product := &Product{ID: 1, Name: "Red Shirt", Price: decimal.RequireFromString("19.99"), Stock: 10}
	order := NewOrder("id-1", product, 3)

	assert.Equal(t, OrderStatusPending, order.Status)
	assert.Equal(t, "", order.Address)
	assert.Equal(t, "59.97", order.TotalCost.StringFixed(2))

	product.Price = decimal.NewFromInt(100)
	assert.Equal(t, "19.99", order.UnitCost.StringFixed(2))
}

// Feature: storefront, Property: totalCost is quantity times unitCost without rounding drift
func TestProperty_TotalCostIsExact(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("totalCost / quantity == unitCost", prop.ForAll(
		func(cents int64, quantity int) bool {
			product := &Product{ID: 1, Price: decimal.New(cents, -2)}
			order := NewOrder("x", product, quantity)
			return order.TotalCost.Div(decimal.NewFromInt(int64(quantity))).Equal(order.UnitCost)
		},
		gen.Int64Range(0, 10_000_000),
		gen.IntRange(1, 10_000),
	))

	properties.TestingRun(t)
}

func TestProductJSONShape(t *testing.T) {
	product := Product{ID: 1, Name: "Red Shirt", Description: "cotton", Price: decimal.RequireFromString("20.50"), Stock: 7, ImageURL: "red.png"}

	data, err := json.Marshal(product)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"Red Shirt","description":"cotton","price":20.5,"stock":7,"imageUrl":"red.png"}`, string(data))

	var decoded Product
	require.NoError(t, json.Unmarshal([]byte(`{"id":2,"name":"Hat","price":"7.25","stock":1}`), &decoded))
	assert.Equal(t, "7.25", decoded.Price.String())
}

func TestOrderJSONShape(t *testing.T) {
	order := NewOrder("abc", &Product{ID: 4, Price: decimal.NewFromInt(20)}, 3)

	data, err := json.Marshal(order)
	require.NoError(t, err)
	assert.JSONEq(t, `{"orderId":"abc","address":"","status":"pending","productId":4,"quantity":3,"unitCost":20,"totalCost":60}`, string(data))
}

func TestMoneyJSONLeavesDecimalDefaultsAlone(t *testing.T) {
	data, err := json.Marshal(decimal.RequireFromString("20.50"))
	require.NoError(t, err)
	assert.Equal(t, `"20.5"`, string(data))

	data, err = json.Marshal([]*Product{{ID: 1, Price: decimal.RequireFromString("0.99")}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"price":0.99`)
}

func TestValidAmount(t *testing.T) {
	tests := []struct {
		amount string
		want   bool
	}{
		{"0", true},
		{"19.99", true},
		{"9999999999.99", true},
		{"10000000000", false},
		{"1.999", false},
		{"-0.01", false},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidAmount(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestPatches(t *testing.T) {
	assert.True(t, ProductPatch{}.IsEmpty())
	assert.True(t, OrderPatch{}.IsEmpty())

	stock := 3
	product := &Product{ID: 1, Name: "Hat", Stock: 9}
	ProductPatch{Stock: &stock}.Apply(product)
	assert.Equal(t, 3, product.Stock)
	assert.Equal(t, "Hat", product.Name)

	status := OrderStatusDelivered
	order := &Order{Address: "1 Main St", Status: OrderStatusPending}
	OrderPatch{Status: &status}.Apply(order)
	assert.Equal(t, "1 Main St", order.Address)
	assert.Equal(t, OrderStatusDelivered, order.Status)
}
