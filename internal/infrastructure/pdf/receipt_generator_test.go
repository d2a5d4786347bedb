package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Activos-api/internal/application/ports"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

func TestGenerate_ProducePDF(t *testing.T) {
	good := entity.ConditionGood
	serial := "SN-5420-01"
	data := ports.ReceiptData{
		Transaction: &entity.Transaction{
			ID: "tx-1", Seq: 42, AssetID: "a-1", AssetTag: "LT-001", AssetName: "Dell Latitude 5420",
			Type: entity.TxTypeReturn, ConditionOnReturn: &good, Remarks: "Sin novedad",
			PerformedByID: "u-1", CreatedAt: time.Date(2026, 6, 1, 9, 30, 0, 0, time.UTC),
		},
		Asset: &entity.Asset{
			ID: "a-1", AssetTag: "LT-001", SerialNo: &serial, Brand: "Dell", Model: "Latitude 5420",
			UnitCost: decimal.RequireFromString("1250.50"),
		},
		CategoryName: "Laptop",
		FromLocation: "Main Office",
		ToLocation:   "Warehouse",
		PerformedBy:  "admin",
	}

	out, err := NewMarotoReceiptGenerator().Generate(data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerate_ActivoEliminado(t *testing.T) {
	data := ports.ReceiptData{Transaction: &entity.Transaction{
		ID: "tx-9", Seq: 9, AssetTag: "PR-001", AssetName: "HP LaserJet", Type: entity.TxTypeRetire,
		CreatedAt: time.Now(),
	}}
	out, err := NewMarotoReceiptGenerator().Generate(data)
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	_, err = NewMarotoReceiptGenerator().Generate(ports.ReceiptData{})
	assert.Error(t, err)
}

func TestJoinNonEmpty(t *testing.T) {
	assert.Equal(t, "Dell Latitude", joinNonEmpty("Dell", "Latitude"))
	assert.Equal(t, "Dell", joinNonEmpty("Dell", ""))
	assert.Equal(t, "Latitude", joinNonEmpty("", "Latitude"))
}
