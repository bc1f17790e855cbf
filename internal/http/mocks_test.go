package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/notify"
	"github.com/fjod/go_cart/storefront/internal/orders"
	"github.com/fjod/go_cart/storefront/internal/payment"
	"github.com/fjod/go_cart/storefront/internal/storage"
)

type ProductCatalogMock struct {
	products []catalog.Product
	err      error
}

func (m ProductCatalogMock) List(context.Context) ([]catalog.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

func (m ProductCatalogMock) Get(_ context.Context, id int64) (*catalog.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, catalog.ErrProductNotFound
}

var testProducts = []catalog.Product{
	{ID: 101, Name: "Minimalist Oak Dining Table", Category: "dining", PriceMinor: 89999, ImageURL: "/dining-table.jpg"},
	{ID: 201, Name: "Modern Lounge Chair", Category: "living", PriceMinor: 29999, ImageURL: "/lounge-chair.jpg"},
}

type testServer struct {
	router  http.Handler
	gateway *payment.StaticGateway
	feed    *notify.Feed
	book    *orders.Book
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	feed := notify.NewFeed(0, 0)
	registry := cart.NewRegistry(cart.Deps{
		Storage:  storage.NewMemoryStore(),
		Notifier: feed,
	}, cart.RegistryConfig{CleanupInterval: time.Hour})
	t.Cleanup(registry.Close)
	gw := payment.NewStaticGateway(true)
	book := orders.NewBook()

	resolve := func(ctx context.Context, owner string) (checkout.Cart, error) {
		s, err := registry.Get(ctx, owner)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	manager, err := checkout.NewManager(resolve, nil, checkout.ManagerConfig{CleanupInterval: time.Hour}, checkout.Deps{
		Gateway:        gw,
		Orders:         orders.NewRecorder(book, nil, nil),
		Notifier:       feed,
		PaymentTimeout: time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(manager.Close)

	return &testServer{
		router: NewRouter(RouterDeps{
			Carts:    registry,
			Catalog:  ProductCatalogMock{products: testProducts},
			Checkout: manager,
			Orders:   book,
			Feed:     feed,
		}),
		gateway: gw,
		feed:    feed,
		book:    book,
	}
}
