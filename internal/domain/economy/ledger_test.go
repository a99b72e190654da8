package economy_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/production-planner/internal/domain/economy"
)

func newLedger(t *testing.T) *economy.Ledger {
	t.Helper()
	model, err := economy.NewModel(forgeTables(), 3)
	require.NoError(t, err)
	return model.Ledger()
}

func TestLedger_InitializeMaterials(t *testing.T) {
	ledger := newLedger(t)

	require.NoError(t, ledger.InitializeMaterials())

	assert.Equal(t, 20.0, ledger.Materials("iron"))
	assert.Equal(t, 7.0, ledger.Materials("coal"))
	assert.Equal(t, -5.0, ledger.Materials("tool"))
	assert.Equal(t, []string{"tool"}, ledger.InDemandCommodities())
	assert.False(t, ledger.IsBalanced())
}

func TestLedger_InitializeMaterialsTwiceFails(t *testing.T) {
	ledger := newLedger(t)
	require.NoError(t, ledger.InitializeMaterials())

	err := ledger.InitializeMaterials()

	var already *economy.ErrMaterialsAlreadyInitialized
	assert.True(t, errors.As(err, &already))
}

func TestLedger_ApplyProduction(t *testing.T) {
	ledger := newLedger(t)
	require.NoError(t, ledger.InitializeMaterials())

	err := ledger.ApplyProduction("tool", 5, map[string]float64{"iron": 10, "coal": 2.5})

	require.NoError(t, err)
	assert.Equal(t, 10.0, ledger.Materials("iron"))
	assert.Equal(t, 4.5, ledger.Materials("coal"))
	assert.Equal(t, 0.0, ledger.Materials("tool"))
	assert.True(t, ledger.IsBalanced())
}

func TestLedger_ApplyProductionUnknownCommodityLeavesLedgerUntouched(t *testing.T) {
	ledger := newLedger(t)
	require.NoError(t, ledger.InitializeMaterials())

	err := ledger.ApplyProduction("tool", 5, map[string]float64{"iron": 10, "gold": 1})

	var unknown *economy.ErrUnknownCommodity
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "gold", unknown.Commodity)
	assert.Equal(t, 20.0, ledger.Materials("iron"))
	assert.Equal(t, -5.0, ledger.Materials("tool"))
}

func TestLedger_SnapshotIsIndependent(t *testing.T) {
	ledger := newLedger(t)
	require.NoError(t, ledger.InitializeMaterials())

	snapshot := ledger.Snapshot()
	require.NoError(t, ledger.ApplyProduction("tool", 1, map[string]float64{"iron": 2}))

	assert.Equal(t, 20.0, snapshot.Materials("iron"))
	assert.Equal(t, 18.0, ledger.Materials("iron"))
	assert.True(t, snapshot.MaterialsInitialized())
}

func TestLedger_UnknownCommodityRowsAreIgnored(t *testing.T) {
	ledger := newLedger(t)

	applied, err := ledger.AddSupply(economy.FlowRow{Row: 9, Commodity: "silver", Amount: -3}, 1)

	require.NoError(t, err)
	assert.False(t, applied)
}
