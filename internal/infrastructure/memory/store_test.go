package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
)

func TestRun_ErrorDescartaCambios(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	boom := errors.New("boom")

	err := s.Run(ctx, func(repos repository.Repos) error {
		require.NoError(t, repos.Ledger().Append(ctx, &entity.StockLedgerEntry{ItemID: "i", WarehouseID: "w", Quantity: decimal.NewFromInt(3)}))
		_, err := repos.Sequences().Next(ctx, "c", "SHP")
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	snap := s.Snapshot()
	assert.Zero(t, snap.LedgerLen())
	assert.Empty(t, snap.Sequences())
}

func TestRun_CommitPublicaEstado(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	require.NoError(t, s.Run(ctx, func(repos repository.Repos) error {
		if err := repos.Ledger().Append(ctx, &entity.StockLedgerEntry{ItemID: "i", WarehouseID: "w", Quantity: decimal.NewFromInt(3)}); err != nil {
			return err
		}
		return repos.Ledger().Append(ctx, &entity.StockLedgerEntry{ItemID: "i", WarehouseID: "w", Quantity: decimal.NewFromInt(-1)})
	}))

	require.NoError(t, s.Run(ctx, func(repos repository.Repos) error {
		q, err := repos.Ledger().SumQuantity(ctx, "i", "w", nil)
		require.NoError(t, err)
		assert.True(t, q.Equal(decimal.NewFromInt(2)))
		return nil
	}))
	assert.Equal(t, 2, s.Snapshot().LedgerLen())
}

func TestRun_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := memory.New().Run(ctx, func(repository.Repos) error { called = true; return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestRun_DocumentoNoSeFiltraPorPuntero(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	o := &entity.SalesOrder{CompanyID: "c", Status: entity.SalesOrderDraft, Lines: []entity.SalesOrderLine{{ItemID: "i", QtyOrdered: decimal.NewFromInt(1), Status: entity.LineOpen}}}
	require.NoError(t, s.Run(ctx, func(repos repository.Repos) error { return repos.SalesOrders().Create(ctx, o) }))

	// Un Run fallido que muta la línea no debe alterar lo ya publicado.
	_ = s.Run(ctx, func(repos repository.Repos) error {
		got, err := repos.SalesOrders().GetForUpdate(ctx, o.ID)
		require.NoError(t, err)
		got.Lines[0].Status = entity.LineFulfilled
		require.NoError(t, repos.SalesOrders().UpdateLine(ctx, &got.Lines[0]))
		return errors.New("rollback")
	})

	got, ok := s.Snapshot().SalesOrder(o.ID)
	require.True(t, ok)
	assert.Equal(t, entity.LineOpen, got.Lines[0].Status)
}

func TestItems_CodigoUnicoPorEmpresa(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	err := s.Run(ctx, func(repos repository.Repos) error {
		if err := repos.Items().Create(ctx, &entity.Item{CompanyID: "c1", Code: "A"}); err != nil {
			return err
		}
		if err := repos.Items().Create(ctx, &entity.Item{CompanyID: "c2", Code: "A"}); err != nil {
			return err
		}
		return repos.Items().Create(ctx, &entity.Item{CompanyID: "c1", Code: "A"})
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestReservations_OrdenDeCreacionYSumas(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	require.NoError(t, s.Run(ctx, func(repos repository.Repos) error {
		for _, q := range []int64{3, 2} {
			if err := repos.Reservations().Create(ctx, &entity.Reservation{
				OrderID: "o", ItemID: "i", WarehouseID: "w", Quantity: decimal.NewFromInt(q), Status: entity.ReservationActive,
			}); err != nil {
				return err
			}
		}
		active, err := repos.Reservations().ListActiveByOrder(ctx, "o")
		require.NoError(t, err)
		require.Len(t, active, 2)
		assert.True(t, active[0].Quantity.Equal(decimal.NewFromInt(3)))

		require.NoError(t, repos.Reservations().UpdateStatus(ctx, active[0].ID, entity.ReservationCancelled))
		sum, err := repos.Reservations().SumActive(ctx, "i", "w")
		require.NoError(t, err)
		assert.True(t, sum.Equal(decimal.NewFromInt(2)))

		assert.ErrorIs(t, repos.Reservations().UpdateStatus(ctx, "nope", entity.ReservationCancelled), domain.ErrNotFound)
		return nil
	}))
}
