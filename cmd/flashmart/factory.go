package main

import (
	"fmt"

	"github.com/joss/flashmart/internal/cart"
	"github.com/joss/flashmart/internal/catalog"
	"github.com/joss/flashmart/internal/checkout"
	"github.com/joss/flashmart/internal/config"
	"github.com/joss/flashmart/internal/guard"
	"github.com/joss/flashmart/internal/kvstore"
	"github.com/joss/flashmart/internal/session"
	"github.com/joss/flashmart/internal/theme"
	"github.com/joss/flashmart/internal/transport"
)

// App owns the wired service objects. Constructed once per invocation and
// passed by reference; no package-level mutable state.
type App struct {
	KV       *kvstore.Store
	API      *transport.Client
	Session  *session.Store
	Catalog  *catalog.Store
	Cart     *cart.Store
	Checkout *checkout.Client
	Guard    *guard.Guard
	Theme    *theme.Store
	Routes   *guard.Table
}

// newApp hydrates every store from persistent storage and wires the
// session-expired signal from the transport into the session store.
func newApp() (*App, error) {
	env := config.Env()

	kv, err := kvstore.Open(config.GetPaths().Data)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	api := transport.New(env.APIURL, kv, env.Timeout)
	sess := session.NewStore(kv, api)
	api.OnSessionExpired(sess.HandleSessionExpired)

	routes, err := guard.NewTable(guard.DefaultRoutes()...)
	if err != nil {
		return nil, fmt.Errorf("route table: %w", err)
	}

	return &App{
		KV:       kv,
		API:      api,
		Session:  sess,
		Catalog:  catalog.NewStore(api),
		Cart:     cart.NewStore(kv),
		Checkout: checkout.NewClient(api, kv),
		Guard:    guard.New(sess, kv),
		Theme:    theme.NewStore(kv),
		Routes:   routes,
	}, nil
}

// Close releases the local store.
func (a *App) Close() error {
	return a.KV.Close()
}
