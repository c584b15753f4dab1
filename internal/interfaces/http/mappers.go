package http

import (
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

func toLedgerEntries(entries []*entity.StockLedgerEntry) []dto.LedgerEntryResponse {
	out := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.LedgerEntryResponse{
			ID:            e.ID,
			ItemID:        e.ItemID,
			WarehouseID:   e.WarehouseID,
			TxType:        e.TxType,
			ReferenceType: e.ReferenceType,
			ReferenceID:   e.ReferenceID,
			Quantity:      e.Quantity,
			UnitCost:      e.UnitCost,
			PostingDate:   e.PostingDate,
			CreatedBy:     e.CreatedBy,
		})
	}
	return out
}

func toReservations(rs []*entity.Reservation) []dto.ReservationResponse {
	out := make([]dto.ReservationResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, dto.ReservationResponse{
			ID:          r.ID,
			OrderID:     r.OrderID,
			OrderLineID: r.OrderLineID,
			ItemID:      r.ItemID,
			WarehouseID: r.WarehouseID,
			Quantity:    r.Quantity,
			Status:      r.Status,
		})
	}
	return out
}

func toAvailability(a entity.Availability) dto.AvailabilityResponse {
	return dto.AvailabilityResponse{
		ItemID:      a.ItemID,
		WarehouseID: a.WarehouseID,
		OnHand:      a.OnHand,
		Committed:   a.Committed,
		Available:   a.Available,
	}
}

func toItemAvailability(ia *inventory.ItemAvailability) dto.AvailabilityResponse {
	out := toAvailability(ia.Total)
	out.WarehouseID = ""
	for _, a := range ia.ByWarehouse {
		out.ByWarehouse = append(out.ByWarehouse, toAvailability(a))
	}
	return out
}

func toShipmentPosting(p *inventory.ShipmentPosting) dto.PostingResponse {
	out := dto.PostingResponse{
		DocumentID:  p.ShipmentID,
		Number:      p.Number,
		Entries:     toLedgerEntries(p.Entries),
		OrderStatus: p.OrderStatus,
	}
	if p.Invoice != nil {
		out.Invoice = &dto.InvoiceDraftResponse{
			ID:         p.Invoice.ID,
			Number:     p.Invoice.Number,
			NetTotal:   p.Invoice.NetTotal,
			TaxRate:    p.Invoice.TaxRate,
			TaxTotal:   p.Invoice.TaxTotal,
			GrandTotal: p.Invoice.GrandTotal,
		}
	}
	for _, b := range p.Backorders {
		out.Backorders = append(out.Backorders, dto.BackorderResponse{
			OrderLineID:    b.OrderLineID,
			ItemID:         b.ItemID,
			QtyBackordered: b.QtyBackordered,
			Status:         b.Status,
		})
	}
	return out
}

func toReceiptPosting(p *inventory.ReceiptPosting) dto.PostingResponse {
	return dto.PostingResponse{
		DocumentID:  p.ReceiptID,
		Number:      p.Number,
		Entries:     toLedgerEntries(p.Entries),
		OrderStatus: p.PurchaseOrderStatus,
		ItemCosts:   p.ItemCosts,
	}
}

func toShipmentDocument(s *entity.Shipment) dto.DocumentResponse {
	out := dto.DocumentResponse{ID: s.ID, Type: entity.DocTypeShipment, Number: s.Number, Status: s.Status, Date: s.ShipDate}
	for _, l := range s.Lines {
		cost := l.UnitCost
		out.Lines = append(out.Lines, dto.DocumentLineResponse{ID: l.ID, OrderLineID: l.OrderLineID, ItemID: l.ItemID, Quantity: l.Quantity, UnitCost: &cost})
	}
	return out
}

func toReceiptDocument(r *entity.Receipt) dto.DocumentResponse {
	out := dto.DocumentResponse{ID: r.ID, Type: entity.DocTypeReceipt, Number: r.Number, Status: r.Status, Date: r.ReceiptDate}
	for _, l := range r.Lines {
		cost := l.UnitCost
		out.Lines = append(out.Lines, dto.DocumentLineResponse{ID: l.ID, POLineID: l.POLineID, ItemID: l.ItemID, Quantity: l.Quantity, UnitCost: &cost})
	}
	return out
}

func toTransferDocument(t *entity.Transfer) dto.DocumentResponse {
	out := dto.DocumentResponse{ID: t.ID, Type: entity.DocTypeTransfer, Number: t.Number, Status: t.Status, Date: t.TransferDate}
	for _, l := range t.Lines {
		cost := l.UnitCost
		out.Lines = append(out.Lines, dto.DocumentLineResponse{ID: l.ID, ItemID: l.ItemID, Quantity: l.Quantity, UnitCost: &cost})
	}
	return out
}

func toAdjustmentDocument(a *entity.Adjustment) dto.DocumentResponse {
	out := dto.DocumentResponse{ID: a.ID, Type: entity.DocTypeAdjustment, Number: a.Number, Status: a.Status, Date: a.AdjustmentDate}
	for _, l := range a.Lines {
		system, actual := l.QtySystem, l.QtyActual
		out.Lines = append(out.Lines, dto.DocumentLineResponse{
			ID: l.ID, ItemID: l.ItemID, Quantity: l.Delta(),
			QtySystem: &system, QtyActual: &actual, UnitCost: l.UnitCost,
		})
	}
	return out
}
