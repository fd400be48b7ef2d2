package main

import (
	"context"
	"sync"
)

// dayLayout é o formato da data civil usada como janela de supressão
const dayLayout = "2006-01-02"

// DedupStore define a interface para o estado de supressão de alertas.
// A data do dia é um parâmetro explícito (formato dayLayout, no fuso
// configurado) para que transições de dia sejam simuláveis em teste.
type DedupStore interface {
	// Alerted verifica se a chave já alertou no dia informado.
	// Registros de dias anteriores contam como ausentes.
	Alerted(ctx context.Context, key DedupKey, day string) (bool, error)

	// Commit registra o alerta da chave no dia informado (cria ou atualiza)
	Commit(ctx context.Context, key DedupKey, day string) error

	// Clear remove a supressão da chave (sinal de recuperação de estoque)
	Clear(ctx context.Context, key DedupKey) error
}

// MemoryDedupStore implementa DedupStore em memória
type MemoryDedupStore struct {
	mu      sync.Mutex
	alerted map[DedupKey]string
}

// NewMemoryDedupStore cria uma nova instância de MemoryDedupStore
func NewMemoryDedupStore() *MemoryDedupStore {
	return &MemoryDedupStore{
		alerted: make(map[DedupKey]string),
	}
}

// Alerted verifica se a chave já alertou no dia informado
func (s *MemoryDedupStore) Alerted(_ context.Context, key DedupKey, day string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alerted[key] == day, nil
}

// Commit registra o alerta da chave no dia informado
func (s *MemoryDedupStore) Commit(_ context.Context, key DedupKey, day string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerted[key] = day
	return nil
}

// Clear remove a supressão da chave
func (s *MemoryDedupStore) Clear(_ context.Context, key DedupKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.alerted, key)
	return nil
}
