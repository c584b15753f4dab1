package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Columnas esperadas (separador ';', con encabezado):
// bodega;nombre_bodega;item;nombre_item;unidad;costo;precio;punto_reorden;cantidad_reorden;existencia
const catalogColumns = 10

type seedWarehouse struct {
	Code string
	Name string
}

type seedItem struct {
	Code         string
	Name         string
	Unit         string
	Cost         decimal.Decimal
	Price        decimal.Decimal
	ReorderPoint decimal.Decimal
	ReorderQty   decimal.Decimal
}

type openingStock struct {
	ItemCode string
	Qty      decimal.Decimal
	UnitCost decimal.Decimal
}

type catalog struct {
	Warehouses []seedWarehouse
	Items      []seedItem
	// Opening existencias iniciales por código de bodega.
	Opening map[string][]openingStock
}

// decodeReader envuelve r según el charset del archivo exportado.
func decodeReader(r io.Reader, charset string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		return r, nil
	case "iso-8859-1", "iso8859-1", "latin1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("charset no soportado: %s", charset)
	}
}

func parseCatalog(r io.Reader) (*catalog, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = catalogColumns
	cr.TrimLeadingSpace = true

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("catálogo vacío")
		}
		return nil, fmt.Errorf("leer encabezado: %w", err)
	}

	cat := &catalog{Opening: make(map[string][]openingStock)}
	warehouses := make(map[string]string)
	items := make(map[string]seedItem)
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		whCode, itemCode := rec[0], rec[2]
		if whCode == "" || itemCode == "" {
			return nil, fmt.Errorf("línea %d: bodega e ítem son obligatorios", line)
		}
		nums, err := parseDecimals(rec[5:])
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		if _, ok := warehouses[whCode]; !ok {
			warehouses[whCode] = firstNonEmpty(rec[1], whCode)
		}
		it := seedItem{
			Code:         itemCode,
			Name:         firstNonEmpty(rec[3], itemCode),
			Unit:         rec[4],
			Cost:         nums[0],
			Price:        nums[1],
			ReorderPoint: nums[2],
			ReorderQty:   nums[3],
		}
		if prev, ok := items[itemCode]; ok && !sameItem(prev, it) {
			return nil, fmt.Errorf("línea %d: el ítem %s aparece con datos distintos", line, itemCode)
		}
		items[itemCode] = it
		if qty := nums[4]; qty.IsPositive() {
			cat.Opening[whCode] = append(cat.Opening[whCode], openingStock{ItemCode: itemCode, Qty: qty, UnitCost: it.Cost})
		} else if qty.IsNegative() {
			return nil, fmt.Errorf("línea %d: existencia negativa", line)
		}
	}

	for code, name := range warehouses {
		cat.Warehouses = append(cat.Warehouses, seedWarehouse{Code: code, Name: name})
	}
	sort.Slice(cat.Warehouses, func(i, j int) bool { return cat.Warehouses[i].Code < cat.Warehouses[j].Code })
	for _, it := range items {
		cat.Items = append(cat.Items, it)
	}
	sort.Slice(cat.Items, func(i, j int) bool { return cat.Items[i].Code < cat.Items[j].Code })
	return cat, nil
}

// parseDecimals acepta coma decimal (formato de hoja de cálculo local). Vacío = 0.
func parseDecimals(fields []string) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, len(fields))
	for i, f := range fields {
		if f == "" {
			out[i] = decimal.Zero
			continue
		}
		d, err := decimal.NewFromString(strings.ReplaceAll(f, ",", "."))
		if err != nil {
			return nil, fmt.Errorf("número inválido %q", f)
		}
		out[i] = d
	}
	return out, nil
}

func sameItem(a, b seedItem) bool {
	return a.Name == b.Name && a.Unit == b.Unit && a.Cost.Equal(b.Cost) && a.Price.Equal(b.Price) &&
		a.ReorderPoint.Equal(b.ReorderPoint) && a.ReorderQty.Equal(b.ReorderQty)
}

func firstNonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
