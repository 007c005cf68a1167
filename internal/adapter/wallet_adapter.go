package adapter

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/EcoSphere-Campus/service-rewards/internal/domain"
)

// WalletAdapter is the Anti-Corruption Layer interface for the external
// points wallet. The rewards core debits redemption costs through it and
// credits them back when a redemption is rolled back.
type WalletAdapter interface {
	// GetBalance returns the user's current points balance.
	GetBalance(ctx context.Context, userID uuid.UUID) (int64, error)

	// Debit removes points from the balance. Fails with an
	// InsufficientPoints domain error when the balance cannot cover it.
	Debit(ctx context.Context, userID uuid.UUID, amount int64) error

	// Credit returns points to the balance (compensation path).
	Credit(ctx context.Context, userID uuid.UUID, amount int64) error
}

// MockWalletAdapter is a development/testing implementation backed by an
// in-memory balance table. It simulates the wallet service without requiring
// the real points ledger.
type MockWalletAdapter struct {
	mu              sync.Mutex
	balances        map[uuid.UUID]int64
	startingBalance int64
	logger          *zap.Logger
}

// NewMockWalletAdapter creates a mock wallet. Unknown users start with the
// configured balance on first access.
func NewMockWalletAdapter(startingBalance int64, logger *zap.Logger) *MockWalletAdapter {
	return &MockWalletAdapter{
		balances:        make(map[uuid.UUID]int64),
		startingBalance: startingBalance,
		logger:          logger,
	}
}

// GetBalance returns the user's balance, seeding new users lazily.
func (m *MockWalletAdapter) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balanceLocked(userID), nil
}

// Debit removes points, refusing overdrafts.
func (m *MockWalletAdapter) Debit(ctx context.Context, userID uuid.UUID, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	balance := m.balanceLocked(userID)
	if balance < amount {
		return domain.NewInsufficientPointsError(amount, balance)
	}
	m.balances[userID] = balance - amount

	m.logger.Info("[MOCK WALLET] points debited",
		zap.String("user_id", userID.String()),
		zap.Int64("amount", amount),
		zap.Int64("balance", m.balances[userID]),
	)
	return nil
}

// Credit returns points to the balance.
func (m *MockWalletAdapter) Credit(ctx context.Context, userID uuid.UUID, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.balances[userID] = m.balanceLocked(userID) + amount

	m.logger.Info("[MOCK WALLET] points credited",
		zap.String("user_id", userID.String()),
		zap.Int64("amount", amount),
		zap.Int64("balance", m.balances[userID]),
	)
	return nil
}

// SetBalance overrides a user's balance. Test helper.
func (m *MockWalletAdapter) SetBalance(userID uuid.UUID, balance int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[userID] = balance
}

func (m *MockWalletAdapter) balanceLocked(userID uuid.UUID) int64 {
	if b, ok := m.balances[userID]; ok {
		return b
	}
	m.balances[userID] = m.startingBalance
	return m.startingBalance
}
