package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/pkg/jwt"
)

func TestGenerateParse_RoundTrip(t *testing.T) {
	id := jwt.Identity{UserID: "u-1", CompanyID: "c-1", Role: "bodeguero"}
	tok, err := jwt.Generate("secreto", "ledger", id, time.Minute)
	require.NoError(t, err)

	got, err := jwt.Parse("secreto", "ledger", tok)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestParse_Rechaza(t *testing.T) {
	id := jwt.Identity{UserID: "u-1", CompanyID: "c-1"}

	expired, err := jwt.Generate("secreto", "ledger", id, -time.Minute)
	require.NoError(t, err)
	_, err = jwt.Parse("secreto", "ledger", expired)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)

	tok, err := jwt.Generate("secreto", "otro", id, time.Minute)
	require.NoError(t, err)
	_, err = jwt.Parse("secreto", "ledger", tok)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken, "emisor distinto")

	_, err = jwt.Parse("otra-clave", "", tok)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken, "firma distinta")

	noCompany, err := jwt.Generate("secreto", "", jwt.Identity{UserID: "u-1"}, time.Minute)
	require.NoError(t, err)
	_, err = jwt.Parse("secreto", "", noCompany)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}
