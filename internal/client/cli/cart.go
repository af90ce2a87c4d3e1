package cli

import (
	"context"
	"fmt"
)

// Add puts one unit of an item in the cart.
func (a *App) Add(ctx context.Context, itemID string) error {
	if err := a.cart.Add(ctx, itemID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %s to cart.\n", sanitize(itemID))
	return nil
}

// Quantity edits and immediately commits the quantity of a cart item. Raw
// input that is not a positive number becomes 1.
func (a *App) Quantity(ctx context.Context, itemID, raw string) error {
	q, err := a.cart.Edit(itemID, raw)
	if err != nil {
		return err
	}
	if err := a.cart.Commit(ctx, itemID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Quantity of %s set to %d.\n", sanitize(itemID), q)
	return nil
}

// Cart prints the cart lines and the last mutation error, if any.
func (a *App) Cart(context.Context) error {
	renderCart(a.out, a.cart.Lines(), a.cart.Banner())
	return nil
}

// Dismiss clears the mutation error banner.
func (a *App) Dismiss(context.Context) error {
	a.cart.ClearBanner()
	return nil
}
