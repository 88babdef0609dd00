package store

import "fmt"

// ImportLogEntry is one recorded invoice upload.
type ImportLogEntry struct {
	ID           int64  `json:"id"`
	ImportID     string `json:"importId"`
	Filename     string `json:"filename"`
	FileSize     int64  `json:"fileSize"`
	SheetName    string `json:"sheetName"`
	ProductCount int    `json:"productCount"`
	SkippedRows  int    `json:"skippedRows"`
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage"`
	CreatedAt    string `json:"createdAt"`
}

// CreateImportLog records the start of an import and returns the row id.
func (s *Store) CreateImportLog(importID, filename, filePath string, fileSize int64) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO import_logs (import_id, filename, file_path, file_size, status)
		VALUES (?, ?, ?, ?, 'processing')
	`, importID, filename, filePath, fileSize)
	if err != nil {
		return 0, fmt.Errorf("failed to create import log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get import log id: %w", err)
	}
	return id, nil
}

// CompleteImportLog fills in the outcome of an import.
func (s *Store) CompleteImportLog(importID, sheetName string, productCount, skippedRows int, status, errorMessage string) error {
	_, err := s.db.Exec(`
		UPDATE import_logs SET
			sheet_name = ?,
			product_count = ?,
			skipped_rows = ?,
			status = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE import_id = ?
	`, sheetName, productCount, skippedRows, status, errorMessage, importID)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	return nil
}

// ListImportLogs returns the most recent imports, newest first.
func (s *Store) ListImportLogs(limit int) ([]ImportLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, import_id, filename, file_size, sheet_name,
		       product_count, skipped_rows, status, error_message, created_at
		FROM import_logs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list import logs: %w", err)
	}
	defer rows.Close()

	var entries []ImportLogEntry
	for rows.Next() {
		var e ImportLogEntry
		if err := rows.Scan(
			&e.ID, &e.ImportID, &e.Filename, &e.FileSize, &e.SheetName,
			&e.ProductCount, &e.SkippedRows, &e.Status, &e.ErrorMessage, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// CountImportLogs returns the number of recorded imports.
func (s *Store) CountImportLogs() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM import_logs").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count import logs: %w", err)
	}
	return n, nil
}

// LastImportTime returns the creation time of the most recent import, or
// "" when nothing has been imported yet.
func (s *Store) LastImportTime() (string, error) {
	var t string
	err := s.db.QueryRow("SELECT COALESCE(MAX(created_at), '') FROM import_logs").Scan(&t)
	if err != nil {
		return "", fmt.Errorf("failed to get last import time: %w", err)
	}
	return t, nil
}

// GetImportLog fetches a single import by its public id.
func (s *Store) GetImportLog(importID string) (ImportLogEntry, error) {
	var e ImportLogEntry
	err := s.db.QueryRow(`
		SELECT id, import_id, filename, file_size, sheet_name,
		       product_count, skipped_rows, status, error_message, created_at
		FROM import_logs WHERE import_id = ?
	`, importID).Scan(
		&e.ID, &e.ImportID, &e.Filename, &e.FileSize, &e.SheetName,
		&e.ProductCount, &e.SkippedRows, &e.Status, &e.ErrorMessage, &e.CreatedAt,
	)
	if err != nil {
		return ImportLogEntry{}, fmt.Errorf("failed to get import log %s: %w", importID, err)
	}
	return e, nil
}
