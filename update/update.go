// Package update tells whether a newer version of the application exists and
// clears the cached data of the previous version.
package update

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/carteira/store"
	"golang.org/x/mod/semver"
)

// Current is the version of this build.
var Current = "v1.2.0"

// Info describes the latest released version.
type Info struct {
	Current   string   `json:"current"`
	Latest    string   `json:"latest"`
	Changelog []string `json:"changelog"`
}

// Latest is the latest known release.
var Latest = Info{
	Current: Current,
	Latest:  "v1.2.0",
	Changelog: []string{
		"Notificações de dividendos e de atualizações.",
		"Comando de atualização que limpa os dados em cache.",
		"Gráfico de patrimônio alinhado com o capital investido.",
	},
}

// canonical accepts versions with or without the leading "v".
func canonical(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// Available reports whether Latest is a newer version than Current.
// Invalid versions are never newer.
func (i Info) Available() bool {
	cur, latest := canonical(i.Current), canonical(i.Latest)
	if !semver.IsValid(cur) || !semver.IsValid(latest) {
		return false
	}
	return semver.Compare(latest, cur) > 0
}

// Kept are the keys that survive an update.
var Kept = []string{store.TransactionsKey, store.APIKeyKey}

// Apply removes every key of 's' except the transactions and the API key, and
// returns the removed keys.
func Apply(ctx context.Context, s store.Store) ([]string, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot list stored keys: %w", err)
	}
	var removed []string
	for _, key := range keys {
		if slices.Contains(Kept, key) {
			continue
		}
		if err := s.Remove(ctx, key); err != nil {
			return removed, fmt.Errorf("cannot clear %q: %w", key, err)
		}
		removed = append(removed, key)
	}
	return removed, nil
}
