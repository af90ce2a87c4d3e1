package services

import (
	"context"
	"io"
	"sync"

	"github.com/dmitrijs2005/pharmcart/internal/client/client"
	"github.com/dmitrijs2005/pharmcart/internal/client/models"
)

type cartCall struct {
	Op       MutationOp
	ItemID   string
	Quantity int
}

// fakeClient implements client.Client for service tests. Hooks left nil
// succeed with zero values.
type fakeClient struct {
	LoginFn  func(ctx context.Context, email, password string, rememberMe bool) (*client.AuthResult, error)
	SignupFn func(ctx context.Context, profile models.SignupProfile) (*client.AuthResult, error)
	ListFn   func(ctx context.Context, q models.InventoryQuery) (*models.InventoryPage, error)
	AddFn    func(ctx context.Context, itemID string, quantity int) error
	UpdateFn func(ctx context.Context, itemID string, quantity int) error

	mu        sync.Mutex
	cartCalls []cartCall
	queries   []models.InventoryQuery
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) Login(ctx context.Context, email, password string, rememberMe bool) (*client.AuthResult, error) {
	if f.LoginFn == nil {
		return &client.AuthResult{Token: "token"}, nil
	}
	return f.LoginFn(ctx, email, password, rememberMe)
}

func (f *fakeClient) Signup(ctx context.Context, profile models.SignupProfile) (*client.AuthResult, error) {
	if f.SignupFn == nil {
		return &client.AuthResult{Token: "token"}, nil
	}
	return f.SignupFn(ctx, profile)
}

func (f *fakeClient) ListInventory(ctx context.Context, q models.InventoryQuery) (*models.InventoryPage, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	if f.ListFn == nil {
		return &models.InventoryPage{Page: q.Page, Limit: q.Limit}, nil
	}
	return f.ListFn(ctx, q)
}

func (f *fakeClient) AddCartItem(ctx context.Context, itemID string, quantity int) error {
	f.mu.Lock()
	f.cartCalls = append(f.cartCalls, cartCall{OpAdd, itemID, quantity})
	f.mu.Unlock()
	if f.AddFn == nil {
		return nil
	}
	return f.AddFn(ctx, itemID, quantity)
}

func (f *fakeClient) UpdateCartItem(ctx context.Context, itemID string, quantity int) error {
	f.mu.Lock()
	f.cartCalls = append(f.cartCalls, cartCall{OpUpdate, itemID, quantity})
	f.mu.Unlock()
	if f.UpdateFn == nil {
		return nil
	}
	return f.UpdateFn(ctx, itemID, quantity)
}

func (f *fakeClient) UploadInventory(context.Context, string, io.Reader, models.BulkUploadMode) (*models.BulkUploadResult, error) {
	return &models.BulkUploadResult{}, nil
}

func (f *fakeClient) calls() []cartCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]cartCall(nil), f.cartCalls...)
}

func (f *fakeClient) listed() []models.InventoryQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.InventoryQuery(nil), f.queries...)
}
