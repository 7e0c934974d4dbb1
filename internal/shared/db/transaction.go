// Package db provides partition-bound unit-of-work and scoped access to the
// per-tenant relational store.
package db

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"gorm.io/gorm"
)

// txKey is the context key for the bound *gorm.DB (transaction or pinned connection).
type txKey struct{}

var partitionPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// ValidatePartition rejects identifiers that cannot be spliced into a
// schema-binding statement.
func ValidatePartition(partition string) error {
	if !partitionPattern.MatchString(partition) {
		return fmt.Errorf("invalid partition identifier %q", partition)
	}
	return nil
}

// PostCommitAction runs only after the unit of work that registered it committed.
type PostCommitAction struct {
	Name string
	Fn   func(ctx context.Context) error
}

// UnitOfWork collects the post-commit actions of one transactional mutation.
type UnitOfWork struct {
	partition string
	actions   []PostCommitAction
}

// NewUnitOfWork returns an empty unit of work for partition.
func NewUnitOfWork(partition string) *UnitOfWork {
	return &UnitOfWork{partition: partition}
}

func (u *UnitOfWork) Partition() string {
	return u.partition
}

// AfterCommit registers fn to run once the surrounding transaction committed.
// Nothing registered here runs on rollback.
func (u *UnitOfWork) AfterCommit(name string, fn func(ctx context.Context) error) {
	u.actions = append(u.actions, PostCommitAction{Name: name, Fn: fn})
}

// Seal returns the commit signal carrying the actions registered so far.
// Only a runner that committed the surrounding transaction calls it.
func (u *UnitOfWork) Seal() *Committed {
	return &Committed{actions: u.actions}
}

// Committed is the successful-commit signal returned by UnitOfWorkRunner.Run.
type Committed struct {
	actions []PostCommitAction
}

func (c *Committed) Actions() []PostCommitAction {
	return c.actions
}

// Apply runs every post-commit action in registration order. A failing action
// does not stop the remaining ones; all failures are joined.
func (c *Committed) Apply(ctx context.Context) error {
	var errs []error
	for _, a := range c.actions {
		if err := a.Fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", a.Name, err))
		}
	}
	return errors.Join(errs...)
}

// UnitOfWorkRunner executes mutations inside a transaction bound to one partition.
type UnitOfWorkRunner struct {
	db *gorm.DB
}

func NewUnitOfWorkRunner(db *gorm.DB) *UnitOfWorkRunner {
	return &UnitOfWorkRunner{db: db}
}

// Run executes fn inside one transaction whose schema is bound to partition.
// It returns a non-nil Committed only when the transaction committed; the
// caller decides when to Apply it.
func (r *UnitOfWorkRunner) Run(ctx context.Context, partition string, fn func(ctx context.Context, uow *UnitOfWork) error) (*Committed, error) {
	if err := ValidatePartition(partition); err != nil {
		return nil, err
	}

	uow := NewUnitOfWork(partition)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := bindPartition(tx, partition, true); err != nil {
			return fmt.Errorf("failed to bind partition %s: %w", partition, err)
		}
		return fn(context.WithValue(ctx, txKey{}, tx), uow)
	})
	if err != nil {
		return nil, err
	}
	return uow.Seal(), nil
}

// PartitionScope pins one pooled connection, binds it to partition and runs
// fn with it in the context. Used for non-transactional reads.
func (r *UnitOfWorkRunner) PartitionScope(ctx context.Context, partition string, fn func(ctx context.Context) error) error {
	if err := ValidatePartition(partition); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		if err := bindPartition(conn, partition, false); err != nil {
			return fmt.Errorf("failed to bind partition %s: %w", partition, err)
		}
		defer unbindPartition(conn)
		return fn(context.WithValue(ctx, txKey{}, conn))
	})
}

// GetTxFromContext returns the bound transaction or connection from ctx,
// falling back to defaultDB.
func GetTxFromContext(ctx context.Context, defaultDB *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return defaultDB.WithContext(ctx)
}
