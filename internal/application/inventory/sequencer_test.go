package inventory_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
)

func TestFormatDocumentNumber(t *testing.T) {
	assert.Equal(t, "SHP-000001", inventory.FormatDocumentNumber("SHP", 1))
	assert.Equal(t, "INV-1234567", inventory.FormatDocumentNumber("INV", 1234567))
}

func TestNextDocumentNumber_PorAlcanceYTipo(t *testing.T) {
	f := newFixture(t)

	n, err := f.sequencer.NextDocumentNumber(f.ctx, companyID, "shp")
	require.NoError(t, err)
	assert.Equal(t, "SHP-000001", n)
	n, err = f.sequencer.NextDocumentNumber(f.ctx, companyID, "SHP")
	require.NoError(t, err)
	assert.Equal(t, "SHP-000002", n)

	n, err = f.sequencer.NextDocumentNumber(f.ctx, "otra-empresa", "SHP")
	require.NoError(t, err)
	assert.Equal(t, "SHP-000001", n)
	n, err = f.sequencer.NextDocumentNumber(f.ctx, companyID, "RCV")
	require.NoError(t, err)
	assert.Equal(t, "RCV-000001", n)
}

func TestNextDocumentNumber_Validacion(t *testing.T) {
	f := newFixture(t)
	for _, tc := range []struct{ scope, docType string }{
		{"", "SHP"},
		{companyID, ""},
		{companyID, "S"},
		{companyID, "SH-1"},
		{companyID, "DEMASIADOLARGO"},
	} {
		_, err := f.sequencer.NextDocumentNumber(f.ctx, tc.scope, tc.docType)
		assert.ErrorIs(t, err, domain.ErrValidation, "%q/%q", tc.scope, tc.docType)
	}
}

func TestNextDocumentNumber_ConcurrenteSinHuecosNiRepetidos(t *testing.T) {
	f := newFixture(t)
	const n = 50

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		got = make(map[string]bool, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := f.sequencer.NextDocumentNumber(f.ctx, companyID, "SO")
			assert.NoError(t, err)
			mu.Lock()
			got[num] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, got, n)
	for i := int64(1); i <= n; i++ {
		assert.True(t, got[inventory.FormatDocumentNumber("SO", i)])
	}
}
