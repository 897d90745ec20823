package host

import (
	"context"
	"fmt"
	"sync"

	"github.com/gameshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger is an in-memory economy holding balances per player and currency
type Ledger struct {
	mu       sync.Mutex
	balances map[uuid.UUID]map[string]decimal.Decimal
}

// NewLedger creates an empty ledger
func NewLedger() *Ledger {
	return &Ledger{balances: make(map[uuid.UUID]map[string]decimal.Decimal)}
}

// Balance returns the balance of a player in a currency
func (l *Ledger) Balance(_ context.Context, playerID uuid.UUID, currency string) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[playerID][currency], nil
}

// Deposit adds amount to the balance
func (l *Ledger) Deposit(_ context.Context, playerID uuid.UUID, currency string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: deposit amount cannot be negative", shared.ErrInvalidInput)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	accounts := l.accounts(playerID)
	accounts[currency] = accounts[currency].Add(amount)
	return nil
}

// Withdraw removes amount from the balance if it is covered
func (l *Ledger) Withdraw(_ context.Context, playerID uuid.UUID, currency string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: withdraw amount cannot be negative", shared.ErrInvalidInput)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	accounts := l.accounts(playerID)
	balance := accounts[currency]
	if balance.LessThan(amount) {
		return shared.ErrInsufficientBalance
	}
	accounts[currency] = balance.Sub(amount)
	return nil
}

func (l *Ledger) accounts(playerID uuid.UUID) map[string]decimal.Decimal {
	accounts, ok := l.balances[playerID]
	if !ok {
		accounts = make(map[string]decimal.Decimal)
		l.balances[playerID] = accounts
	}
	return accounts
}
