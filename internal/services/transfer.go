package services

import (
	"context"
	"fmt"

	"foyer/internal/amqp"
	"foyer/internal/transfer"
)

// Export builds the interchange document for download or backup.
func (s *LedgerService) Export() transfer.Document {
	return transfer.Export(s.store.Snapshot())
}

// ExportXLSX renders the dataset as a workbook.
func (s *LedgerService) ExportXLSX() ([]byte, error) {
	return transfer.XLSX(s.store.Snapshot())
}

// Import replaces the collections the document carries. Accounts are
// untouched; a single invalid record rejects the whole document.
func (s *LedgerService) Import(ctx context.Context, doc transfer.Document) error {
	next, err := transfer.Apply(s.store.Snapshot(), doc)
	if err != nil {
		return fmt.Errorf("apply import: %w", err)
	}
	if err := s.store.Replace(ctx, next); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	s.publish(ctx, amqp.EntityTransaction, amqp.ActionUpdated, "import")
	return nil
}
