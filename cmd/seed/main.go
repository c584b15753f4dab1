// seed carga un catálogo inicial (bodegas, ítems y existencias de apertura) para una empresa
// a partir de un CSV exportado de hoja de cálculo.
//
// Uso: go run ./cmd/seed -company <uuid> [-file catalogo.csv] [-charset windows-1252]
// Las existencias se registran como ajustes contabilizados, uno por bodega.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/audit"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

func main() {
	file := flag.String("file", "catalogo.csv", "ruta del CSV")
	charset := flag.String("charset", "utf-8", "utf-8 | iso-8859-1 | windows-1252")
	companyID := flag.String("company", "", "empresa destino (obligatorio)")
	userID := flag.String("user", "seed", "usuario que firma los ajustes de apertura")
	flag.Parse()

	if *companyID == "" {
		fmt.Fprintln(os.Stderr, "-company es obligatorio")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir catálogo")
	}
	defer f.Close()

	r, err := decodeReader(f, *charset)
	if err != nil {
		log.Fatal().Err(err).Msg("charset")
	}
	cat, err := parseCatalog(r)
	if err != nil {
		log.Fatal().Err(err).Msg("leer catálogo")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	s := newSeeder(postgres.NewTxRunner(pool), log)
	res, err := s.load(ctx, *companyID, *userID, cat)
	if err != nil {
		log.Error().Err(err).Msg("carga interrumpida")
		pool.Close()
		os.Exit(1)
	}
	log.Info().
		Int("bodegas", res.Warehouses).
		Int("items", res.Items).
		Strs("ajustes", res.Adjustments).
		Msg("catálogo cargado")
}

type seeder struct {
	warehouses  *usecase.WarehouseUseCase
	items       *usecase.ItemUseCase
	drafts      *inventory.DraftUseCase
	adjustments *inventory.AdjustmentPostingUseCase
}

type seedResult struct {
	Warehouses  int
	Items       int
	Adjustments []string
}

func newSeeder(tx inventory.TxRunner, log *logger.Logger) *seeder {
	collab := inventory.Collaborators{Audit: audit.NewLogSink(log), Logger: log}
	return &seeder{
		warehouses:  usecase.NewWarehouseUseCase(tx),
		items:       usecase.NewItemUseCase(tx),
		drafts:      inventory.NewDraftUseCase(tx, collab),
		adjustments: inventory.NewAdjustmentPostingUseCase(tx, collab),
	}
}

// load es idempotente para bodegas e ítems: los códigos existentes se reutilizan.
// Las existencias de apertura se contabilizan siempre.
func (s *seeder) load(ctx context.Context, companyID, userID string, cat *catalog) (*seedResult, error) {
	res := &seedResult{}

	whIDs := make(map[string]string, len(cat.Warehouses))
	for _, w := range cat.Warehouses {
		created, err := s.warehouses.Create(ctx, companyID, dto.CreateWarehouseRequest{Code: w.Code, Name: w.Name})
		switch {
		case err == nil:
			whIDs[w.Code] = created.ID
			res.Warehouses++
		case errors.Is(err, domain.ErrConflict):
			id, lerr := s.findWarehouse(ctx, companyID, w.Code)
			if lerr != nil {
				return res, lerr
			}
			whIDs[w.Code] = id
		default:
			return res, fmt.Errorf("bodega %s: %w", w.Code, err)
		}
	}

	itemIDs := make(map[string]string, len(cat.Items))
	for _, it := range cat.Items {
		cost := it.Cost
		created, err := s.items.Create(ctx, companyID, dto.CreateItemRequest{
			Code:         it.Code,
			Name:         it.Name,
			UnitMeasure:  it.Unit,
			Cost:         &cost,
			Price:        it.Price,
			ReorderPoint: it.ReorderPoint,
			ReorderQty:   it.ReorderQty,
		})
		switch {
		case err == nil:
			itemIDs[it.Code] = created.ID
			res.Items++
		case errors.Is(err, domain.ErrConflict):
			id, lerr := s.findItem(ctx, companyID, it.Code)
			if lerr != nil {
				return res, lerr
			}
			itemIDs[it.Code] = id
		default:
			return res, fmt.Errorf("ítem %s: %w", it.Code, err)
		}
	}

	for _, w := range cat.Warehouses {
		opening := cat.Opening[w.Code]
		if len(opening) == 0 {
			continue
		}
		lines := make([]inventory.AdjustmentDraftLine, 0, len(opening))
		for _, o := range opening {
			unitCost := o.UnitCost
			lines = append(lines, inventory.AdjustmentDraftLine{ItemID: itemIDs[o.ItemCode], QtyActual: o.Qty, UnitCost: &unitCost})
		}
		adj, err := s.drafts.CreateAdjustmentDraft(ctx, inventory.AdjustmentDraftInput{
			CompanyID:   companyID,
			WarehouseID: whIDs[w.Code],
			Reason:      "saldo inicial",
			Lines:       lines,
		})
		if err != nil {
			return res, fmt.Errorf("ajuste de apertura %s: %w", w.Code, err)
		}
		posted, err := s.adjustments.PostAdjustment(ctx, companyID, userID, adj.ID)
		if err != nil {
			return res, fmt.Errorf("contabilizar apertura %s: %w", w.Code, err)
		}
		res.Adjustments = append(res.Adjustments, posted.Number)
	}
	return res, nil
}

const seedPageSize = 100

func (s *seeder) findWarehouse(ctx context.Context, companyID, code string) (string, error) {
	for offset := 0; ; offset += seedPageSize {
		page, err := s.warehouses.List(ctx, companyID, seedPageSize, offset)
		if err != nil {
			return "", err
		}
		for _, w := range page.Items {
			if w.Code == code {
				return w.ID, nil
			}
		}
		if len(page.Items) < seedPageSize {
			return "", domain.NotFoundf("bodega %s", code)
		}
	}
}

func (s *seeder) findItem(ctx context.Context, companyID, code string) (string, error) {
	for offset := 0; ; offset += seedPageSize {
		page, err := s.items.List(ctx, companyID, seedPageSize, offset)
		if err != nil {
			return "", err
		}
		for _, it := range page.Items {
			if it.Code == code {
				return it.ID, nil
			}
		}
		if len(page.Items) < seedPageSize {
			return "", domain.NotFoundf("ítem %s", code)
		}
	}
}
