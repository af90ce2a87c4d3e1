package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// List fetches (or reuses) the current inventory page and prints it. Fetch
// failures are shown in place of the table.
func (a *App) List(ctx context.Context) error {
	v, _ := a.inventory.Refresh(ctx)
	renderInventory(a.out, v, a.cart.Line, a.now())
	return nil
}

// Search sets the free-text filter; an empty text clears it.
func (a *App) Search(ctx context.Context, text string) error {
	a.inventory.SetSearch(text)
	return a.List(ctx)
}

// Category sets the category filter; "All" clears it.
func (a *App) Category(ctx context.Context, name string) error {
	a.inventory.SetCategory(name)
	return a.List(ctx)
}

// Categories prints the categories present on the current page.
func (a *App) Categories(context.Context) error {
	names := a.inventory.Categories()
	for i, n := range names {
		names[i] = sanitize(n)
	}
	fmt.Fprintln(a.out, strings.Join(names, ", "))
	return nil
}

func (a *App) Reset(ctx context.Context) error {
	a.inventory.ResetFilters()
	return a.List(ctx)
}

func (a *App) Page(ctx context.Context, arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("page %q: not a number", arg)
	}
	a.inventory.SetPage(n)
	return a.List(ctx)
}

func (a *App) Next(ctx context.Context) error {
	a.inventory.NextPage()
	return a.List(ctx)
}

func (a *App) Prev(ctx context.Context) error {
	a.inventory.PrevPage()
	return a.List(ctx)
}
