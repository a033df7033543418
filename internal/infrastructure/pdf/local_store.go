package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	appbilling "github.com/facturio/billing-api/internal/application/billing"
	"github.com/facturio/billing-api/pkg/config"
)

var _ appbilling.PDFStore = (*LocalStore)(nil)

// LocalStore guarda los PDFs generados en disco local, un archivo por factura.
// La URL devuelta es la ruta pública de descarga (PublicBase + /:id/pdf), no la
// ruta del filesystem.
type LocalStore struct {
	dir        string
	publicBase string
}

// NewLocalStore construye el store y asegura el directorio de almacenamiento.
func NewLocalStore(cfg config.PDFConfig) (*LocalStore, error) {
	if err := os.MkdirAll(cfg.StorageDir, 0o755); err != nil {
		return nil, fmt.Errorf("crear directorio de PDFs: %w", err)
	}
	return &LocalStore{
		dir:        cfg.StorageDir,
		publicBase: strings.TrimRight(cfg.PublicBase, "/"),
	}, nil
}

// Save escribe los bytes y devuelve la URL pública. Regenerar el PDF
// sobreescribe el archivo anterior.
func (s *LocalStore) Save(_ context.Context, invoiceID string, pdf []byte) (string, error) {
	path := s.path(invoiceID)
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return "", fmt.Errorf("escribir PDF %s: %w", path, err)
	}
	return fmt.Sprintf("%s/%s/pdf", s.publicBase, invoiceID), nil
}

// Load lee los bytes del PDF de la factura.
func (s *LocalStore) Load(_ context.Context, invoiceID string) ([]byte, error) {
	data, err := os.ReadFile(s.path(invoiceID))
	if err != nil {
		return nil, fmt.Errorf("leer PDF de factura %s: %w", invoiceID, err)
	}
	return data, nil
}

func (s *LocalStore) path(invoiceID string) string {
	// El ID es un UUID generado por la app; Base lo protege igualmente de
	// cualquier traversal.
	return filepath.Join(s.dir, filepath.Base(invoiceID)+".pdf")
}
