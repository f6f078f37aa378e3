// Package ledger contiene las reglas de negocio puras del kardex
// (servicio de dominio, sin persistencia).
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// ExpectedSign devuelve el signo que debe tener la cantidad de un asiento
// según su tipo: +1 entra, -1 sale, 0 cualquiera (ajustes). ok=false si el
// tipo no existe.
func ExpectedSign(entryType string) (sign int, ok bool) {
	switch entryType {
	case entity.EntryTypeRECEIPT, entity.EntryTypeTRANSFERIn, entity.EntryTypeISSUECancel:
		return 1, true
	case entity.EntryTypeISSUE, entity.EntryTypeTRANSFEROut, entity.EntryTypeRECEIPTCancel:
		return -1, true
	case entity.EntryTypeADJUSTMENT:
		return 0, true
	}
	return 0, false
}

// ValidQuantity verifica que la cantidad sea no nula y con el signo del tipo.
func ValidQuantity(entryType string, qty decimal.Decimal) bool {
	sign, ok := ExpectedSign(entryType)
	if !ok || qty.IsZero() {
		return false
	}
	switch sign {
	case 1:
		return qty.IsPositive()
	case -1:
		return qty.IsNegative()
	}
	return true
}

// CancelTypeFor mapea un tipo anulable a su variante compensatoria.
// Solo recepciones y salidas son anulables; las compensatorias, los traslados
// y los ajustes no lo son.
func CancelTypeFor(entryType string) (cancelType string, ok bool) {
	switch entryType {
	case entity.EntryTypeRECEIPT:
		return entity.EntryTypeRECEIPTCancel, true
	case entity.EntryTypeISSUE:
		return entity.EntryTypeISSUECancel, true
	}
	return "", false
}

// TxPrefixFor devuelve el prefijo del número de transacción según origen.
func TxPrefixFor(entryType, refType string) string {
	switch {
	case entryType == entity.EntryTypeRECEIPTCancel || entryType == entity.EntryTypeISSUECancel:
		return "CN"
	case refType == entity.RefTypePO:
		return "PO"
	case refType == entity.RefTypeCOUNT:
		return "AJ"
	default:
		return "MV"
	}
}
