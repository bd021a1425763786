// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import "context"

// TransactionManager defines the interface for managing database transactions.
type TransactionManager interface {
	// Execute runs a function within a database transaction.
	// If the function returns an error or panics, the transaction is rolled back. Otherwise, it's committed.
	Execute(ctx context.Context, fn func(txRepoFactory RepositoryFactory) error) error
}

// RepositoryFactory provides repository instances bound to a specific transaction.
type RepositoryFactory interface {
	UserRepo() UserRepository
	CategoryRepo() CategoryRepository
	TagRepo() TagRepository
	ProductRepo() ProductRepository
	DiscountRepo() DiscountRepository
	CartRepo() CartRepository
	FavoriteRepo() FavoriteRepository
	AddressRepo() AddressRepository
	OrderRepo() OrderRepository
	NewsletterRepo() NewsletterRepository
}

// ListOptions is offset pagination for list queries.
type ListOptions struct {
	Limit  int
	Offset int
}
