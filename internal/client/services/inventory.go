package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/pharmcart/internal/client/client"
	"github.com/dmitrijs2005/pharmcart/internal/client/models"
	"github.com/dmitrijs2005/pharmcart/internal/logging"
)

const (
	// PageSize is the fixed number of items per inventory page.
	PageSize = 8
	// DefaultStaleTime is how long a fetched page is served from cache.
	DefaultStaleTime = 30 * time.Second

	maxClampPasses = 4
)

// View is a snapshot of what the inventory screen shows.
type View struct {
	Query      models.InventoryQuery
	Items      []models.InventoryListItem
	Total      int
	TotalPages int
	// Loading is set while the current search and category have never been
	// fetched successfully.
	Loading bool
	// Refreshing is set while a fetch for the current query is in flight and
	// earlier data stays visible.
	Refreshing bool
	Err        error
}

type cachedPage struct {
	page    *models.InventoryPage
	fetched time.Time
}

// InventoryComposer turns search text, category and page number into one
// inventory query and keeps the page number valid as totals change.
type InventoryComposer struct {
	api       client.Client
	staleTime time.Duration
	now       func() time.Time
	log       logging.Logger
	group     singleflight.Group

	mu       sync.Mutex
	page     int
	search   string
	category string

	items    []models.InventoryListItem
	total    int
	err      error
	shapes   map[string]bool
	inflight map[string]int
	cache    map[string]cachedPage
}

type ComposerOption func(*InventoryComposer)

// WithStaleTime sets how long fetched pages are reused. Zero disables the
// cache; in-flight deduplication still applies.
func WithStaleTime(d time.Duration) ComposerOption {
	return func(c *InventoryComposer) { c.staleTime = d }
}

func WithClock(now func() time.Time) ComposerOption {
	return func(c *InventoryComposer) { c.now = now }
}

func WithComposerLogger(l logging.Logger) ComposerOption {
	return func(c *InventoryComposer) { c.log = l }
}

func NewInventoryComposer(api client.Client, opts ...ComposerOption) *InventoryComposer {
	c := &InventoryComposer{
		api:       api,
		staleTime: DefaultStaleTime,
		now:       time.Now,
		log:       logging.Discard(),
		page:      1,
		shapes:    make(map[string]bool),
		inflight:  make(map[string]int),
		cache:     make(map[string]cachedPage),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetSearch changes the search text and returns to page 1.
func (c *InventoryComposer) SetSearch(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search = text
	c.page = 1
	c.err = nil
}

// SetCategory changes the category filter and returns to page 1.
// models.CategoryAll clears the filter.
func (c *InventoryComposer) SetCategory(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.category = name
	c.page = 1
	c.err = nil
}

func (c *InventoryComposer) ResetFilters() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search = ""
	c.category = ""
	c.page = 1
	c.err = nil
}

// SetPage moves to page n, never below 1.
func (c *InventoryComposer) SetPage(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setPageLocked(n)
}

// NextPage advances one page unless the last known page is shown.
func (c *InventoryComposer) NextPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shapes[c.queryLocked().Shape()] && c.page >= totalPages(c.total) {
		return
	}
	c.setPageLocked(c.page + 1)
}

func (c *InventoryComposer) PrevPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setPageLocked(c.page - 1)
}

func (c *InventoryComposer) setPageLocked(n int) {
	if n < 1 {
		n = 1
	}
	if n != c.page {
		c.err = nil
	}
	c.page = n
}

// Query returns the query for the current inputs.
func (c *InventoryComposer) Query() models.InventoryQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queryLocked()
}

func (c *InventoryComposer) queryLocked() models.InventoryQuery {
	return models.NewInventoryQuery(c.page, PageSize, c.search, c.category)
}

// Refresh fetches the current query, or serves it from cache while fresh.
// When the result shows the page is past the end, the page is clamped and
// the query reissued. A response for a query that is no longer current is
// dropped. On failure the items are cleared and the error, which matches
// client.ErrFetchFailed, is both returned and kept in the view.
func (c *InventoryComposer) Refresh(ctx context.Context) (View, error) {
	for pass := 0; pass < maxClampPasses; pass++ {
		c.mu.Lock()
		q := c.queryLocked()
		key := q.Key()

		page, fresh := c.cachedLocked(key)
		if !fresh {
			c.inflight[key]++
			c.mu.Unlock()

			var err error
			page, err = c.fetch(ctx, q)

			c.mu.Lock()
			c.inflight[key]--
			if c.inflight[key] == 0 {
				delete(c.inflight, key)
			}

			if c.queryLocked().Key() != key {
				c.log.Debug(ctx, "inventory response for outdated query dropped", "query", key)
				v := c.viewLocked()
				c.mu.Unlock()
				return v, nil
			}
			if err != nil {
				c.items = nil
				c.total = 0
				c.err = err
				v := c.viewLocked()
				c.mu.Unlock()
				c.log.Warn(ctx, "inventory fetch failed", "query", key, "error", err)
				return v, err
			}
			c.cache[key] = cachedPage{page: page, fetched: c.now()}
			c.pruneLocked()
		}

		c.items = page.Data
		c.total = page.Total
		c.err = nil
		c.shapes[q.Shape()] = true

		if last := totalPages(page.Total); c.page > last {
			c.log.Debug(ctx, "inventory page clamped", "from", c.page, "to", last)
			c.page = last
			c.mu.Unlock()
			continue
		}

		v := c.viewLocked()
		c.mu.Unlock()
		return v, nil
	}

	return c.View(), nil
}

// fetch collapses identical concurrent requests into one.
func (c *InventoryComposer) fetch(ctx context.Context, q models.InventoryQuery) (*models.InventoryPage, error) {
	v, err, _ := c.group.Do(q.Key(), func() (any, error) {
		return c.api.ListInventory(ctx, q)
	})
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	page, ok := v.(*models.InventoryPage)
	if !ok || page == nil {
		return nil, fmt.Errorf("%w: empty inventory page", client.ErrFetchFailed)
	}
	return page, nil
}

func (c *InventoryComposer) cachedLocked(key string) (*models.InventoryPage, bool) {
	if c.staleTime <= 0 {
		return nil, false
	}
	e, ok := c.cache[key]
	if !ok || c.now().Sub(e.fetched) >= c.staleTime {
		return nil, false
	}
	return e.page, true
}

func (c *InventoryComposer) pruneLocked() {
	now := c.now()
	for k, e := range c.cache {
		if now.Sub(e.fetched) >= c.staleTime {
			delete(c.cache, k)
		}
	}
}

// Invalidate drops every cached page so the next Refresh goes to the
// network. Call it when the credential changes.
func (c *InventoryComposer) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.cache)
}

// View returns the current snapshot without fetching.
func (c *InventoryComposer) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *InventoryComposer) viewLocked() View {
	q := c.queryLocked()
	fetched := c.shapes[q.Shape()]
	inflight := c.inflight[q.Key()] > 0

	items := make([]models.InventoryListItem, len(c.items))
	copy(items, c.items)

	return View{
		Query:      q,
		Items:      items,
		Total:      c.total,
		TotalPages: totalPages(c.total),
		Loading:    !fetched && c.err == nil,
		Refreshing: fetched && inflight,
		Err:        c.err,
	}
}

// Categories returns models.CategoryAll followed by the sorted, distinct
// category names of the items currently shown.
func (c *InventoryComposer) Categories() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]struct{})
	var names []string
	for _, it := range c.items {
		name := it.CategoryName()
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return append([]string{models.CategoryAll}, names...)
}

func totalPages(total int) int {
	if total <= 0 {
		return 1
	}
	return (total + PageSize - 1) / PageSize
}
