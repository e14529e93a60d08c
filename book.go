package carteira

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/etnz/carteira/store"
	"github.com/google/uuid"
)

// Book is the user's transaction list, persisted as a single JSON array in
// the store.TransactionsKey slot.
//
// Every read returns the full list: the accounting engine never sees a
// partial one.
type Book struct {
	mu    sync.Mutex // serializes read-modify-write cycles of this process
	store store.Store
}

// NewBook returns the book kept in 's'.
func NewBook(s store.Store) *Book {
	return &Book{store: s}
}

// Load returns the full transaction list. A missing slot is an empty list.
func (b *Book) Load(ctx context.Context) ([]Transaction, error) {
	raw, err := b.store.Get(ctx, store.TransactionsKey)
	if errors.Is(err, store.ErrNotFound) {
		return []Transaction{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot load transactions: %w", err)
	}
	return parseBook(raw)
}

func parseBook(raw string) ([]Transaction, error) {
	var txs []Transaction
	if err := json.Unmarshal([]byte(raw), &txs); err != nil {
		return nil, fmt.Errorf("stored transactions are unreadable: %w", err)
	}
	if txs == nil {
		txs = []Transaction{}
	}
	return txs, nil
}

// Save replaces the stored list with 'txs'.
func (b *Book) Save(ctx context.Context, txs []Transaction) error {
	if txs == nil {
		txs = []Transaction{}
	}
	data, err := json.Marshal(txs)
	if err != nil {
		return fmt.Errorf("cannot encode transactions: %w", err)
	}
	if err := b.store.Set(ctx, store.TransactionsKey, string(data)); err != nil {
		return fmt.Errorf("cannot save transactions: %w", err)
	}
	return nil
}

// modify loads the list, applies fn and saves the result.
func (b *Book) modify(ctx context.Context, fn func([]Transaction) ([]Transaction, error)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	txs, err := b.Load(ctx)
	if err != nil {
		return err
	}
	txs, err = fn(txs)
	if err != nil {
		return err
	}
	return b.Save(ctx, txs)
}

// Add appends a transaction and returns it as stored.
//
// A transaction without an id gets a new one. The ticker is normalized and
// the transaction must be valid.
func (b *Book) Add(ctx context.Context, tx Transaction) (Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	tx.normalize()
	if err := tx.Validate(); err != nil {
		return Transaction{}, fmt.Errorf("invalid transaction: %w", err)
	}
	err := b.modify(ctx, func(txs []Transaction) ([]Transaction, error) {
		return append(txs, tx), nil
	})
	if err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

// Update replaces the transaction with the same id.
func (b *Book) Update(ctx context.Context, tx Transaction) error {
	tx.normalize()
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("invalid transaction: %w", err)
	}
	return b.modify(ctx, func(txs []Transaction) ([]Transaction, error) {
		i := slices.IndexFunc(txs, func(t Transaction) bool { return t.ID == tx.ID })
		if i < 0 {
			return nil, fmt.Errorf("transaction %q: %w", tx.ID, ErrNotFound)
		}
		txs[i] = tx
		return txs, nil
	})
}

// Get returns the transaction with 'id'.
func (b *Book) Get(ctx context.Context, id string) (Transaction, error) {
	txs, err := b.Load(ctx)
	if err != nil {
		return Transaction{}, err
	}
	i := slices.IndexFunc(txs, func(t Transaction) bool { return t.ID == id })
	if i < 0 {
		return Transaction{}, fmt.Errorf("transaction %q: %w", id, ErrNotFound)
	}
	return txs[i], nil
}

// Delete removes the transaction with 'id'.
func (b *Book) Delete(ctx context.Context, id string) error {
	return b.modify(ctx, func(txs []Transaction) ([]Transaction, error) {
		i := slices.IndexFunc(txs, func(t Transaction) bool { return t.ID == id })
		if i < 0 {
			return nil, fmt.Errorf("transaction %q: %w", id, ErrNotFound)
		}
		return slices.Delete(txs, i, i+1), nil
	})
}

// Replace swaps the whole list, as an import does.
func (b *Book) Replace(ctx context.Context, txs []Transaction) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Save(ctx, txs)
}

// Import decodes an exported list from 'r' and replaces the book with it.
// The book is left untouched when the payload is rejected.
func (b *Book) Import(ctx context.Context, r io.Reader) (int, error) {
	txs, err := DecodeTransactions(r)
	if err != nil {
		return 0, err
	}
	if err := b.Replace(ctx, txs); err != nil {
		return 0, err
	}
	return len(txs), nil
}

// Export writes the full list to 'w'.
func (b *Book) Export(ctx context.Context, w io.Writer) error {
	txs, err := b.Load(ctx)
	if err != nil {
		return err
	}
	return EncodeTransactions(w, txs)
}

// Subscribe calls fn with the full list every time the stored list changes,
// for instance when another process edits the data directory. A removed slot
// is reported as an empty list.
//
// Cancel ctx to unsubscribe, the returned channel is closed afterwards.
func (b *Book) Subscribe(ctx context.Context, interval time.Duration, fn func([]Transaction, error)) <-chan struct{} {
	return store.Watch(ctx, b.store, store.TransactionsKey, interval, func(raw string, ok bool) {
		if !ok {
			fn([]Transaction{}, nil)
			return
		}
		fn(parseBook(raw))
	})
}
