package schema

import "github.com/hamba/avro/v2"

const OrderPlacedSchemaTextV1 = `{
	"type": "record",
	"namespace": "eclypse.orders",
	"name": "order_placed",
	"fields": [
		{"name": "order_id", "type": "string"},
		{"name": "created_at", "type": "long"},
		{"name": "payment_method", "type": "string"},
		{"name": "lines", "type": {
			"type": "array",
			"items": {
				"type": "record",
				"name": "order_line",
				"fields": [
					{"name": "product_id", "type": "string"},
					{"name": "name", "type": "string"},
					{"name": "unit_price", "type": "double"},
					{"name": "quantity", "type": "int"}
				]
			}
		}},
		{"name": "subtotal", "type": "double"},
		{"name": "shipping", "type": "double"},
		{"name": "tax", "type": "double"},
		{"name": "total", "type": "double"}
	]
}`

type (
	OrderPlacedV1 struct {
		OrderID       string        `avro:"order_id"`
		CreatedAt     int64         `avro:"created_at"`
		PaymentMethod string        `avro:"payment_method"`
		Lines         []OrderLineV1 `avro:"lines"`
		Subtotal      float64       `avro:"subtotal"`
		Shipping      float64       `avro:"shipping"`
		Tax           float64       `avro:"tax"`
		Total         float64       `avro:"total"`
	}

	OrderLineV1 struct {
		ProductID string  `avro:"product_id"`
		Name      string  `avro:"name"`
		UnitPrice float64 `avro:"unit_price"`
		Quantity  int     `avro:"quantity"`
	}
)

func OrderPlacedV1Avro() avro.Schema {
	return avro.MustParse(OrderPlacedSchemaTextV1)
}

const StockAdjustmentSchemaTextV1 = `{
	"type": "record",
	"namespace": "eclypse.stock",
	"name": "stock_adjustment",
	"fields": [
		{"name": "product_id", "type": "string"},
		{"name": "quantity_delta", "type": "int"},
		{"name": "sold_delta", "type": "int"}
	]
}`

type StockAdjustmentV1 struct {
	ProductID     string `avro:"product_id"`
	QuantityDelta int    `avro:"quantity_delta"`
	SoldDelta     int    `avro:"sold_delta"`
}

func StockAdjustmentV1Avro() avro.Schema {
	return avro.MustParse(StockAdjustmentSchemaTextV1)
}
