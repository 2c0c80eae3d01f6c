// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management, and persistence.
package commands

import (
	"context"

	"orderflow/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// Each command depends on the narrowest interface covering the aggregates it
// touches, so mocks and the composition root stay honest about what a
// command may modify.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// StockRepoFactory provides access to stock repository within a transaction.
	StockRepoFactory interface {
		StockRepository() ports.StockRepository
	}

	// PaymentRepoFactory provides access to payment repository within a transaction.
	PaymentRepoFactory interface {
		PaymentRepository() ports.PaymentRepository
	}

	// TaskRepoFactory provides access to task repository within a transaction.
	TaskRepoFactory interface {
		TaskRepository() ports.TaskRepository
	}

	// OrderUoW manages transactions for order-only operations.
	// Used when commands only modify order aggregates.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// OrderStockUoW manages transactions spanning orders and stock.
	// Order creation reserves stock and inserts the order atomically.
	OrderStockUoW interface {
		TxManager
		OrderRepoFactory
		StockRepoFactory
	}

	// OrderStockUoWFactory creates new order+stock unit of work instances.
	OrderStockUoWFactory interface {
		Create() OrderStockUoW
	}

	// OrderStockTaskUoW manages transactions spanning orders, stock and
	// courier tasks. Cancellation and delivery completion move all three
	// in one transaction.
	OrderStockTaskUoW interface {
		TxManager
		OrderRepoFactory
		StockRepoFactory
		TaskRepoFactory
	}

	// OrderStockTaskUoWFactory creates new order+stock+task unit of work instances.
	OrderStockTaskUoWFactory interface {
		Create() OrderStockTaskUoW
	}

	// OrderPaymentUoW manages transactions spanning orders and payments.
	OrderPaymentUoW interface {
		TxManager
		OrderRepoFactory
		PaymentRepoFactory
	}

	// OrderPaymentUoWFactory creates new order+payment unit of work instances.
	OrderPaymentUoWFactory interface {
		Create() OrderPaymentUoW
	}

	// OrderTaskUoW manages transactions spanning orders and courier tasks.
	OrderTaskUoW interface {
		TxManager
		OrderRepoFactory
		TaskRepoFactory
	}

	// OrderTaskUoWFactory creates new order+task unit of work instances.
	OrderTaskUoWFactory interface {
		Create() OrderTaskUoW
	}
)
