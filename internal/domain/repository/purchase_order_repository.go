package repository

import "github.com/jhoicas/Kardex-api/internal/domain/entity"

// PurchaseOrderRepository define el puerto sobre las órdenes de compra.
// El documento lo administra Compras; este núcleo solo lee líneas y mantiene
// el agregado recibido y los estados derivados.
type PurchaseOrderRepository interface {
	GetOrder(orderID string) (*entity.PurchaseOrder, error)
	GetLine(lineID string) (*entity.PurchaseOrderLine, error)
	// GetLineForUpdate bloquea la línea para chequear tolerancia de
	// sobre-recepción sin carrera entre recepciones concurrentes.
	GetLineForUpdate(lineID string) (*entity.PurchaseOrderLine, error)
	ListLines(orderID string) ([]*entity.PurchaseOrderLine, error)
	// UpdateLineAggregate persiste ReceivedQty y Status derivados del kardex.
	UpdateLineAggregate(line *entity.PurchaseOrderLine) error
	UpdateOrderStatus(orderID, status string) error
}
