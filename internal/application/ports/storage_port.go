package ports

import (
	"context"
	"io"

	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// ArchiveStore almacenamiento de objetos para el archivo del libro (S3, MinIO).
type ArchiveStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
}

// ReceiptData datos ya resueltos para imprimir un comprobante de custodia.
type ReceiptData struct {
	Transaction  *entity.Transaction
	Asset        *entity.Asset // nil si el activo ya no existe
	CategoryName string
	FromLocation string
	ToLocation   string
	AssignedTo   string
	PerformedBy  string
}

// ReceiptGenerator genera el PDF del comprobante de una entrada del libro.
type ReceiptGenerator interface {
	Generate(data ReceiptData) ([]byte, error)
}
