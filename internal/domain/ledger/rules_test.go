package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/ledger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Reglas de signo por tipo de asiento
// ──────────────────────────────────────────────────────────────────────────────

func TestExpectedSign_TiposDeEntrada(t *testing.T) {
	for _, tipo := range []string{entity.EntryTypeRECEIPT, entity.EntryTypeTRANSFERIn, entity.EntryTypeISSUECancel} {
		sign, ok := ledger.ExpectedSign(tipo)
		assert.True(t, ok, tipo)
		assert.Equal(t, 1, sign, "el tipo %s debe entrar stock", tipo)
	}
}

func TestExpectedSign_TiposDeSalida(t *testing.T) {
	for _, tipo := range []string{entity.EntryTypeISSUE, entity.EntryTypeTRANSFEROut, entity.EntryTypeRECEIPTCancel} {
		sign, ok := ledger.ExpectedSign(tipo)
		assert.True(t, ok, tipo)
		assert.Equal(t, -1, sign, "el tipo %s debe sacar stock", tipo)
	}
}

func TestExpectedSign_AjusteAdmiteAmbosSignos(t *testing.T) {
	sign, ok := ledger.ExpectedSign(entity.EntryTypeADJUSTMENT)
	assert.True(t, ok)
	assert.Equal(t, 0, sign)
}

func TestExpectedSign_TipoDesconocido(t *testing.T) {
	_, ok := ledger.ExpectedSign("MERMA")
	assert.False(t, ok)
}

func TestValidQuantity_RechazaCero(t *testing.T) {
	// Cantidad cero no es un movimiento, ni siquiera como ajuste.
	assert.False(t, ledger.ValidQuantity(entity.EntryTypeADJUSTMENT, decimal.Zero))
	assert.False(t, ledger.ValidQuantity(entity.EntryTypeRECEIPT, decimal.Zero))
}

func TestValidQuantity_SignoDebeCorresponderAlTipo(t *testing.T) {
	cien := decimal.NewFromInt(100)

	assert.True(t, ledger.ValidQuantity(entity.EntryTypeRECEIPT, cien))
	assert.False(t, ledger.ValidQuantity(entity.EntryTypeRECEIPT, cien.Neg()))

	assert.True(t, ledger.ValidQuantity(entity.EntryTypeISSUE, cien.Neg()))
	assert.False(t, ledger.ValidQuantity(entity.EntryTypeISSUE, cien))

	// Ajustes aceptan cualquier signo.
	assert.True(t, ledger.ValidQuantity(entity.EntryTypeADJUSTMENT, cien))
	assert.True(t, ledger.ValidQuantity(entity.EntryTypeADJUSTMENT, cien.Neg()))
}

// ──────────────────────────────────────────────────────────────────────────────
// Anulabilidad
// ──────────────────────────────────────────────────────────────────────────────

func TestCancelTypeFor_SoloRecepcionesYSalidas(t *testing.T) {
	ct, ok := ledger.CancelTypeFor(entity.EntryTypeRECEIPT)
	assert.True(t, ok)
	assert.Equal(t, entity.EntryTypeRECEIPTCancel, ct)

	ct, ok = ledger.CancelTypeFor(entity.EntryTypeISSUE)
	assert.True(t, ok)
	assert.Equal(t, entity.EntryTypeISSUECancel, ct)
}

func TestCancelTypeFor_NoAnulables(t *testing.T) {
	// Las compensatorias, traslados y ajustes no se anulan; la corrección de
	// una anulación errónea es un asiento nuevo.
	for _, tipo := range []string{
		entity.EntryTypeRECEIPTCancel,
		entity.EntryTypeISSUECancel,
		entity.EntryTypeTRANSFERIn,
		entity.EntryTypeTRANSFEROut,
		entity.EntryTypeADJUSTMENT,
	} {
		_, ok := ledger.CancelTypeFor(tipo)
		assert.False(t, ok, "el tipo %s no debe ser anulable", tipo)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Prefijos de numeración
// ──────────────────────────────────────────────────────────────────────────────

func TestTxPrefixFor_PorOrigen(t *testing.T) {
	assert.Equal(t, "CN", ledger.TxPrefixFor(entity.EntryTypeRECEIPTCancel, entity.RefTypeCANCEL))
	assert.Equal(t, "CN", ledger.TxPrefixFor(entity.EntryTypeISSUECancel, entity.RefTypeCANCEL))
	assert.Equal(t, "PO", ledger.TxPrefixFor(entity.EntryTypeRECEIPT, entity.RefTypePO))
	assert.Equal(t, "AJ", ledger.TxPrefixFor(entity.EntryTypeADJUSTMENT, entity.RefTypeCOUNT))
	assert.Equal(t, "MV", ledger.TxPrefixFor(entity.EntryTypeISSUE, entity.RefTypeMANUAL))
}
