package carteira

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// this file contains functions to handle the import/export format.
// It is the same format as the stored transaction list: a single, human
// readable, JSON array that the web app can read back.

// EncodeTransactions writes the transactions to 'w' as an indented JSON array.
//
// Each transaction is an object with properties 'id', 'ticker', 'type'
// ("Compra", "Venda" or "Dividendo"), 'quantity', 'price' and 'date' (YYYY-MM-DD).
func EncodeTransactions(w io.Writer, transactions []Transaction) error {
	if transactions == nil {
		transactions = []Transaction{}
	}
	data, err := json.MarshalIndent(transactions, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot encode transactions: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("cannot write transactions: %w", err)
	}
	return nil
}

// DecodeTransactions reads a JSON array of transactions from 'r'.
//
// Before decoding, the payload must pass a structural check: it must be a
// JSON array and, when not empty, its first element must carry both an 'id'
// and a 'ticker'. Any failure wraps ErrMalformedImport. Nothing is returned
// on failure so the caller never replaces its list with a partial one.
//
// Decoded records are normalized like the ones the Book adds: tickers are
// trimmed and upper-cased, dividends have a quantity of 1.
func DecodeTransactions(r io.Reader) ([]Transaction, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("cannot read transactions: %w", err)
	}
	if err := checkTransactionArray(data); err != nil {
		return nil, err
	}
	var transactions []Transaction
	if err := json.Unmarshal(data, &transactions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}
	if transactions == nil {
		transactions = []Transaction{}
	}
	for i := range transactions {
		transactions[i].normalize()
	}
	return transactions, nil
}

// checkTransactionArray rejects payloads that are obviously not a transaction list.
func checkTransactionArray(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return fmt.Errorf("%w: not a JSON array", ErrMalformedImport)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}
	if len(items) == 0 {
		return nil
	}
	var first map[string]json.RawMessage
	if err := json.Unmarshal(items[0], &first); err != nil {
		return fmt.Errorf("%w: first element is not an object", ErrMalformedImport)
	}
	for _, key := range []string{"id", "ticker"} {
		if _, ok := first[key]; !ok {
			return fmt.Errorf("%w: first element has no %q", ErrMalformedImport, key)
		}
	}
	return nil
}
