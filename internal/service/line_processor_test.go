package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessWholeUnitLine(t *testing.T) {
	p := perfume("Vetiver", 5, "0", "100", "60", "90")
	f := newFixture(p)

	line, err := f.lines.Process(context.Background(), 0, LineRequest{ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)

	assert.Equal(t, "Vetiver", line.ProductName)
	assert.Equal(t, 2, line.Quantity)
	assert.True(t, dec("90").Equal(line.UnitPrice))
	assert.True(t, dec("180").Equal(line.Total))
	assert.True(t, dec("60").Equal(line.PurchaseUnitCost))
	assert.True(t, dec("60").Equal(line.Benefit))
	assert.False(t, line.IsDecant)
	assert.False(t, line.DecantMl.Valid)
	assert.Equal(t, 3, f.products.get(p.ID).StockUnits)
}

func TestProcessPriceOverride(t *testing.T) {
	p := accessory("Funnel", 4, "1.20", "3")
	f := newFixture(p)

	override := dec("2.50")
	line, err := f.lines.Process(context.Background(), 3, LineRequest{ProductID: p.ID, Quantity: 3, UnitPrice: &override})
	require.NoError(t, err)

	assert.Equal(t, 3, line.Position)
	assert.True(t, dec("7.5").Equal(line.Total))
	assert.True(t, dec("3.9").Equal(line.Benefit), "benefit %s", line.Benefit)
}

func TestProcessDecantLine(t *testing.T) {
	p := perfume("Oud", 1, "0", "100", "100", "20")
	f := newFixture(p)

	line, err := f.lines.Process(context.Background(), 0, LineRequest{ProductID: p.ID, IsDecant: true, DecantMl: dec("10")})
	require.NoError(t, err)

	assert.True(t, line.IsDecant)
	assert.Equal(t, 1, line.Quantity)
	require.True(t, line.DecantMl.Valid)
	assert.True(t, dec("10").Equal(line.DecantMl.Decimal))
	assert.True(t, dec("20").Equal(line.Total))
	assert.True(t, dec("10").Equal(line.PurchaseUnitCost))
	assert.True(t, dec("10").Equal(line.Benefit))

	stored := f.products.get(p.ID)
	assert.Equal(t, 0, stored.StockUnits)
	assert.True(t, dec("90").Equal(stored.Bottle.OpenRemainderMl))
}

func TestProcessLineErrors(t *testing.T) {
	p := perfume("Iris", 2, "0", "100", "100", "150")
	acc := accessory("Box", 1, "1", "2")
	f := newFixture(p, acc)
	missing := uuid.New()

	tests := []struct {
		name     string
		req      LineRequest
		want     error
		wantName string
	}{
		{"unknown product", LineRequest{ProductID: missing, Quantity: 1}, ErrProductNotFound, ""},
		{"zero quantity", LineRequest{ProductID: p.ID, Quantity: 0}, ErrInvalidQuantity, "Iris"},
		{"zero ml", LineRequest{ProductID: p.ID, IsDecant: true, DecantMl: decimal.Zero}, ErrInvalidDecantRequest, "Iris"},
		{"decant from accessory", LineRequest{ProductID: acc.ID, IsDecant: true, DecantMl: dec("5")}, ErrInvalidDecantRequest, "Box"},
		{"too many units", LineRequest{ProductID: acc.ID, Quantity: 2}, ErrInsufficientStock, "Box"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.lines.Process(context.Background(), 1, tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var lineErr *LineError
			require.True(t, errors.As(err, &lineErr))
			assert.Equal(t, 1, lineErr.Index)
			assert.Equal(t, tt.req.ProductID, lineErr.ProductID)
			assert.Equal(t, tt.wantName, lineErr.ProductName)
		})
	}

	assert.Equal(t, 2, f.products.get(p.ID).StockUnits)
	assert.Equal(t, 1, f.products.get(acc.ID).StockUnits)
}

func TestProcessRejectsNegativeOverride(t *testing.T) {
	p := accessory("Box", 1, "1", "2")
	f := newFixture(p)

	neg := dec("-1")
	_, err := f.lines.Process(context.Background(), 0, LineRequest{ProductID: p.ID, Quantity: 1, UnitPrice: &neg})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 1, f.products.get(p.ID).StockUnits)
}

func TestProcessRejectsVolumesBeyondTwoDecimals(t *testing.T) {
	p := perfume("Oud", 1, "0", "100", "100", "20")
	f := newFixture(p)

	_, err := f.lines.Process(context.Background(), 0, LineRequest{ProductID: p.ID, IsDecant: true, DecantMl: dec("0.004")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDecantRequest)

	stored := f.products.get(p.ID)
	assert.Equal(t, 1, stored.StockUnits)
	assert.True(t, stored.Bottle.OpenRemainderMl.IsZero())

	line, err := f.lines.Process(context.Background(), 0, LineRequest{ProductID: p.ID, IsDecant: true, DecantMl: dec("2.50")})
	require.NoError(t, err)
	assert.True(t, dec("2.5").Equal(line.DecantMl.Decimal))
	assert.True(t, dec("97.5").Equal(f.products.get(p.ID).Bottle.OpenRemainderMl))
}

func TestProcessStringUnitPriceOverrides(t *testing.T) {
	p := accessory("Funnel", 4, "1", "3")
	f := newFixture(p)

	var req LineRequest
	body := `{"product_id":"` + p.ID.String() + `","quantity":2,"unit_price":"25"}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	line, err := f.lines.Process(context.Background(), 0, req)
	require.NoError(t, err)
	assert.True(t, dec("25").Equal(line.UnitPrice))
	assert.True(t, dec("50").Equal(line.Total))
}
