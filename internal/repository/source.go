package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/almoxops/replen/internal/domain"
	"github.com/almoxops/replen/internal/ingest"
)

// MovementSource yields the movement ledger for one engine run.
type MovementSource interface {
	Movements(ctx context.Context) ([]domain.MovementRecord, error)
}

// CatalogSource yields the item catalog for one engine run.
type CatalogSource interface {
	Items(ctx context.Context) ([]domain.Item, error)
}

// FileMovementSource reads the ledger from a CSV or XLSX file, chosen
// by extension.
type FileMovementSource struct {
	Path    string
	Options ingest.Options
}

func (s FileMovementSource) Movements(ctx context.Context) ([]domain.MovementRecord, error) {
	var result *ingest.LedgerResult
	var err error
	if isXLSX(s.Path) {
		result, err = ingest.ReadLedgerXLSX(s.Path, s.Options)
	} else {
		result, err = ingest.ReadLedgerFile(s.Path, s.Options)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger from %s: %w", s.Path, err)
	}
	return result.Movements, nil
}

// FileCatalogSource reads the catalog from a CSV or XLSX file.
type FileCatalogSource struct {
	Path string
}

func (s FileCatalogSource) Items(ctx context.Context) ([]domain.Item, error) {
	if isXLSX(s.Path) {
		return ingest.ReadCatalogXLSX(s.Path)
	}
	return ingest.ReadCatalogFile(s.Path)
}

// SheetMovementSource pulls the ledger from a published-CSV sheet URL.
type SheetMovementSource struct {
	Client  *ingest.SheetClient
	URL     string
	Options ingest.Options
}

func (s SheetMovementSource) Movements(ctx context.Context) ([]domain.MovementRecord, error) {
	result, err := s.Client.FetchLedger(ctx, s.URL, s.Options)
	if err != nil {
		return nil, err
	}
	return result.Movements, nil
}

// SheetCatalogSource pulls the catalog from a published-CSV sheet URL.
type SheetCatalogSource struct {
	Client *ingest.SheetClient
	URL    string
}

func (s SheetCatalogSource) Items(ctx context.Context) ([]domain.Item, error) {
	return s.Client.FetchCatalog(ctx, s.URL)
}

func isXLSX(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".xlsx" || ext == ".xlsm"
}
