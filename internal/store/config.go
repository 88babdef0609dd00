package store

import (
	"database/sql"
	"fmt"
	"strconv"
)

// GetConfig fetches a configuration value.
func (s *Store) GetConfig(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("config key not found: %s", key)
		}
		return "", err
	}
	return value, nil
}

// GetConfigInt fetches an integer configuration value.
func (s *Store) GetConfigInt(key string) (int, error) {
	value, err := s.GetConfig(key)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(value)
}

// GetConfigFloat fetches a float configuration value.
func (s *Store) GetConfigFloat(key string) (float64, error) {
	value, err := s.GetConfig(key)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(value, 64)
}

// SetConfig stores a configuration value.
func (s *Store) SetConfig(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = ?, updated_at = CURRENT_TIMESTAMP
	`, key, value, value)
	return err
}

// SetConfigInt stores an integer configuration value.
func (s *Store) SetConfigInt(key string, value int) error {
	return s.SetConfig(key, strconv.Itoa(value))
}

// SetConfigFloat stores a float configuration value.
func (s *Store) SetConfigFloat(key string, value float64) error {
	return s.SetConfig(key, strconv.FormatFloat(value, 'f', -1, 64))
}

// GetAllConfig returns every configuration entry.
func (s *Store) GetAllConfig() (map[string]string, error) {
	rows, err := s.db.Query("SELECT key, value FROM config")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	config := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		config[key] = value
	}

	return config, rows.Err()
}
