package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/billing"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

func TestGenerateInvoicePDF(t *testing.T) {
	doc := &billing.InvoiceDocument{
		Invoice: &entity.Invoice{
			ID:         "inv-1",
			Number:     "INV-000001",
			CustomerID: "cliente-1",
			Date:       time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			NetTotal:   decimal.NewFromInt(80),
			TaxRate:    decimal.RequireFromString("0.19"),
			TaxTotal:   decimal.RequireFromString("15.2"),
			GrandTotal: decimal.RequireFromString("95.2"),
		},
		ShipmentNumber: "SHP-000001",
		WarehouseCode:  "W1",
		Lines: []billing.InvoiceLine{{
			InvoiceDetail: entity.InvoiceDetail{
				Quantity:  decimal.NewFromInt(4),
				UnitPrice: decimal.NewFromInt(20),
				Subtotal:  decimal.NewFromInt(80),
			},
			ItemCode: "A",
			ItemName: "Tornillo",
		}},
	}

	out, err := NewMarotoPDFGenerator("Ferretería Demo").GenerateInvoicePDF(context.Background(), doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = NewMarotoPDFGenerator("x").GenerateInvoicePDF(context.Background(), &billing.InvoiceDocument{})
	assert.Error(t, err)
}

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":         "0,00",
		"95.2":      "95,20",
		"1234567.5": "1.234.567,50",
		"-1000":     "-1.000,00",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatMoney(decimal.RequireFromString(in)), in)
	}
}
