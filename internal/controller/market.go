package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sheikh-saqib/farmer-portal/internal/ledger"
	"github.com/sheikh-saqib/farmer-portal/internal/market"
	"github.com/sheikh-saqib/farmer-portal/internal/models"
	"github.com/sheikh-saqib/farmer-portal/internal/models/events"
	"github.com/sheikh-saqib/farmer-portal/internal/render"
)

const insufficientTokens = "Insufficient tokens to complete this purchase."

type MarketViews struct {
	Balance      render.Region
	Transactions render.Region
	Preview      render.Region
	Catalog      render.Region
}

// MarketPage is the marketplace and token wallet.
type MarketPage struct {
	deps    Deps
	ledger  *ledger.Ledger
	catalog *market.Catalog

	mu      sync.Mutex
	pending *models.PurchaseItem
	confirm ActionGuard

	Views MarketViews
}

func NewMarketPage(deps Deps, l *ledger.Ledger, catalog *market.Catalog) *MarketPage {
	return &MarketPage{deps: deps, ledger: l, catalog: catalog}
}

// ShowCatalog renders the products of category.
func (p *MarketPage) ShowCatalog(category string) ([]models.CatalogItem, error) {
	items := p.catalog.Filter(category)
	html, err := render.Catalog(items)
	return items, renderInto(&p.Views.Catalog, html, err)
}

// Select remembers the item for confirmation and renders the preview.
// Confirmation is only offered when the balance covers the price.
func (p *MarketPage) Select(name string) (render.PurchasePreview, error) {
	item, ok := p.catalog.Find(name)
	if !ok {
		return render.PurchasePreview{}, fmt.Errorf("%w: %q", ErrUnknownItem, name)
	}
	pi := item.PurchaseItem()

	p.mu.Lock()
	p.pending = &pi
	p.mu.Unlock()

	balance := p.ledger.Balance()
	preview := render.PurchasePreview{
		Item:         pi,
		Balance:      balance,
		BalanceAfter: balance - pi.Price,
		CanConfirm:   balance >= pi.Price,
	}
	html, err := render.Purchase(preview)
	return preview, renderInto(&p.Views.Preview, html, err)
}

// Confirm applies the selected purchase. On insufficient funds the selection
// is kept so the modal stays open.
func (p *MarketPage) Confirm(ctx context.Context) (models.Transaction, error) {
	if err := p.confirm.Begin(); err != nil {
		return models.Transaction{}, err
	}
	defer p.confirm.Finish()

	p.mu.Lock()
	pending := p.pending
	p.mu.Unlock()
	if pending == nil {
		return models.Transaction{}, ErrNoPendingPurchase
	}

	tx, err := p.ledger.ApplyPurchase(*pending)
	if errors.Is(err, ledger.ErrInsufficientFunds) {
		p.deps.notify(insufficientTokens, true)
		return models.Transaction{}, err
	}
	if err != nil {
		p.deps.notify(err.Error(), true)
		return models.Transaction{}, err
	}

	p.mu.Lock()
	p.pending = nil
	p.mu.Unlock()
	p.Views.Preview.Render("")

	if err := p.Refresh(); err != nil {
		return tx, err
	}
	p.deps.notify(fmt.Sprintf("Successfully purchased %s for %d tokens!", pending.Name, pending.Price), false)
	p.deps.publish(ctx, events.TypePurchaseCompleted, events.PurchaseCompleted{
		Item:    pending.Name,
		Price:   pending.Price,
		Balance: tx.Balance,
	})
	return tx, nil
}

// Cancel drops the selected item.
func (p *MarketPage) Cancel() {
	p.mu.Lock()
	p.pending = nil
	p.mu.Unlock()
	p.Views.Preview.Render("")
}

func (p *MarketPage) Pending() (models.PurchaseItem, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		return models.PurchaseItem{}, false
	}
	return *p.pending, true
}

// Refresh re-renders the balance and the transaction history from one snapshot.
func (p *MarketPage) Refresh() error {
	balance, txs := p.ledger.Snapshot()
	balanceHTML, err := render.Balance(balance)
	if err != nil {
		return err
	}
	txHTML, err := render.Transactions(txs)
	if err != nil {
		return err
	}
	p.Views.Balance.Render(balanceHTML)
	p.Views.Transactions.Render(txHTML)
	return nil
}
