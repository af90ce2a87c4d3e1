package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/pharmcart/internal/client/models"
)

// AuthResult is the body of a successful login or signup.
type AuthResult struct {
	Token string          `json:"token"`
	User  models.Identity `json:"user"`
}

// Client is the contract of the ordering API.
type Client interface {
	Login(ctx context.Context, email, password string, rememberMe bool) (*AuthResult, error)
	Signup(ctx context.Context, profile models.SignupProfile) (*AuthResult, error)
	ListInventory(ctx context.Context, q models.InventoryQuery) (*models.InventoryPage, error)
	AddCartItem(ctx context.Context, itemID string, quantity int) error
	UpdateCartItem(ctx context.Context, itemID string, quantity int) error
	UploadInventory(ctx context.Context, filename string, r io.Reader, mode models.BulkUploadMode) (*models.BulkUploadResult, error)
}

// Credentials supplies the bearer token to attach to outbound requests.
type Credentials interface {
	Token() (string, bool)
}
