// Package middleware wraps a HistoryStore to transform turns on their way
// to and from storage.
package middleware

import "github.com/hazriqpedia/waybill/pkg/ports"

// Middleware allows wrapping a HistoryStore to add behavior.
type Middleware func(ports.HistoryStore) ports.HistoryStore

// Chain wraps store with mws. The first middleware sees turns first on Append
// and last on Load.
func Chain(store ports.HistoryStore, mws ...Middleware) ports.HistoryStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
