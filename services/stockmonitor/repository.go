package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDedupStore implementa DedupStore usando PostgreSQL, para que a
// supressão sobreviva a reinícios do processo
type PostgresDedupStore struct {
	db *pgxpool.Pool
}

// NewPostgresDedupStore cria uma nova instância de PostgresDedupStore e
// garante a tabela de supressões
func NewPostgresDedupStore(ctx context.Context, db *pgxpool.Pool) (*PostgresDedupStore, error) {
	store := &PostgresDedupStore{db: db}
	if err := store.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure suppressions schema: %w", err)
	}
	return store, nil
}

func (s *PostgresDedupStore) ensureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS stock_alert_suppressions (
			warehouse  TEXT NOT NULL,
			sku        TEXT NOT NULL,
			alert_day  DATE NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (warehouse, sku)
		)
	`)
	return err
}

// Alerted verifica se a chave já alertou no dia informado
func (s *PostgresDedupStore) Alerted(ctx context.Context, key DedupKey, day string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM stock_alert_suppressions
			WHERE warehouse = $1 AND sku = $2 AND alert_day = $3
		)
	`, string(key.Warehouse), key.SKU, day).Scan(&exists)
	return exists, err
}

// Commit registra o alerta da chave no dia informado (cria ou atualiza)
func (s *PostgresDedupStore) Commit(ctx context.Context, key DedupKey, day string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO stock_alert_suppressions (warehouse, sku, alert_day, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (warehouse, sku)
		DO UPDATE SET alert_day = EXCLUDED.alert_day, updated_at = NOW()
	`, string(key.Warehouse), key.SKU, day)
	return err
}

// Clear remove a supressão da chave
func (s *PostgresDedupStore) Clear(ctx context.Context, key DedupKey) error {
	_, err := s.db.Exec(ctx, `
		DELETE FROM stock_alert_suppressions
		WHERE warehouse = $1 AND sku = $2
	`, string(key.Warehouse), key.SKU)
	return err
}
