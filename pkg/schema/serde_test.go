package schema_test

import (
	"context"
	"testing"

	"github.com/eclypse/storefront/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSchemaIdentifier struct {
	mock.Mock
}

func (c *MockSchemaIdentifier) DetermineID(
	ctx context.Context, subject string, avroSchemaText string,
) (id int, err error) {
	args := c.Called(ctx, subject, avroSchemaText)
	return args.Int(0), args.Error(1)
}

func TestSerdeOrderPlacedV1(t *testing.T) {

	t.Run("NoOpts", func(t *testing.T) {
		_, err := schema.NewSerdeOrderPlacedV1(t.Context())
		require.Error(t, err)
		assert.ErrorIs(t, err, schema.ErrTooFewOpts)
	})

	t.Run("OneOpt", func(t *testing.T) {
		_, err := schema.NewSerdeOrderPlacedV1(
			t.Context(),
			schema.SchemaIdentifierOpt(new(MockSchemaIdentifier)),
		)
		require.Error(t, err)
		assert.ErrorIs(t, err, schema.ErrTooFewOpts)
	})

	t.Run("IdentifierAndSubjectOpts", func(t *testing.T) {
		schemaIdentifier := new(MockSchemaIdentifier)
		schemaID := 1
		subject := "testTopic-value"

		schemaIdentifier.On(
			"DetermineID", t.Context(), subject, schema.OrderPlacedSchemaTextV1,
		).Return(schemaID, nil)

		_, err := schema.NewSerdeOrderPlacedV1(
			t.Context(),
			schema.SubjectOpt(subject),
			schema.SchemaIdentifierOpt(schemaIdentifier),
		)
		require.NoError(t, err)
	})

	t.Run("EncodeDecode", func(t *testing.T) {
		schemaIdentifier := new(MockSchemaIdentifier)
		schemaID := 1
		subject := "testTopic-value"

		schemaIdentifier.On(
			"DetermineID", t.Context(), subject, schema.OrderPlacedSchemaTextV1,
		).Return(schemaID, nil)

		serde, err := schema.NewSerdeOrderPlacedV1(
			t.Context(),
			schema.SubjectOpt(subject),
			schema.SchemaIdentifierOpt(schemaIdentifier),
		)
		require.NoError(t, err)

		orderValue1 := schema.OrderPlacedV1{
			OrderID:       "ORD-1735689600000",
			CreatedAt:     1735689600000,
			PaymentMethod: "card",
			Lines: []schema.OrderLineV1{
				{ProductID: "1", Name: "Vestido Eclipse Solar", UnitPrice: 10, Quantity: 2},
				{ProductID: "2", Name: "Blusa Lua Crescente", UnitPrice: 25.50, Quantity: 1},
			},
			Subtotal: 45.50,
			Shipping: 5.99,
			Tax:      10.47,
			Total:    61.96,
		}

		encodedData, err := serde.Encode(orderValue1)
		require.NoError(t, err)

		var orderValue2 schema.OrderPlacedV1
		err = serde.Decode(encodedData, &orderValue2)
		require.NoError(t, err)

		assert.Equal(t, orderValue1.OrderID, orderValue2.OrderID)
		assert.Equal(t, orderValue1.CreatedAt, orderValue2.CreatedAt)
		assert.Equal(t, orderValue1.PaymentMethod, orderValue2.PaymentMethod)
		assert.Equal(t, orderValue1.Subtotal, orderValue2.Subtotal)
		assert.Equal(t, orderValue1.Shipping, orderValue2.Shipping)
		assert.Equal(t, orderValue1.Tax, orderValue2.Tax)
		assert.Equal(t, orderValue1.Total, orderValue2.Total)

		require.Len(t, orderValue2.Lines, len(orderValue1.Lines))
		for i, v := range orderValue2.Lines {
			assert.Equal(t, orderValue1.Lines[i], v)
		}
	})

}

func TestSerdeStockAdjustmentV1(t *testing.T) {

	t.Run("NoOpts", func(t *testing.T) {
		_, err := schema.NewSerdeStockAdjustmentV1(t.Context())
		require.Error(t, err)
		assert.ErrorIs(t, err, schema.ErrTooFewOpts)
	})

	t.Run("EncodeDecode", func(t *testing.T) {
		schemaIdentifier := new(MockSchemaIdentifier)
		subject := "stock-adjustments-value"

		schemaIdentifier.On(
			"DetermineID", t.Context(), subject, schema.StockAdjustmentSchemaTextV1,
		).Return(2, nil)

		serde, err := schema.NewSerdeStockAdjustmentV1(
			t.Context(),
			schema.SubjectOpt(subject),
			schema.SchemaIdentifierOpt(schemaIdentifier),
		)
		require.NoError(t, err)

		adjValue1 := schema.StockAdjustmentV1{
			ProductID:     "1",
			QuantityDelta: -2,
			SoldDelta:     2,
		}

		encodedData, err := serde.Encode(adjValue1)
		require.NoError(t, err)

		var adjValue2 schema.StockAdjustmentV1
		err = serde.Decode(encodedData, &adjValue2)
		require.NoError(t, err)

		assert.Equal(t, adjValue1, adjValue2)
	})

}
