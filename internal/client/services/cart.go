package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/dmitrijs2005/pharmcart/internal/client/client"
	"github.com/dmitrijs2005/pharmcart/internal/logging"
	"github.com/dmitrijs2005/pharmcart/internal/metrics"
)

var (
	ErrControllerClosed = errors.New("cart controller closed")
	ErrNotInCart        = errors.New("item is not in the cart")
	ErrAlreadyInCart    = errors.New("item is already in the cart")
)

// RollbackPolicy decides what happens to the optimistic quantity when a
// mutation fails.
type RollbackPolicy int

const (
	// RollbackNever keeps the optimistic quantity after a failure. The
	// server may disagree with what is displayed until the next successful
	// mutation.
	RollbackNever RollbackPolicy = iota
	// RollbackToConfirmed restores the last server-confirmed quantity, or
	// removes the line when the server never confirmed one.
	RollbackToConfirmed
)

// MutationOp names a cart mutation.
type MutationOp string

const (
	OpAdd    MutationOp = "add"
	OpUpdate MutationOp = "update"
)

// MutationError is a failed cart mutation. It matches
// client.ErrMutationFailed.
type MutationError struct {
	ItemID string
	Op     MutationOp
	Err    error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s item %s: %v", e.Op, e.ItemID, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

func (e *MutationError) Is(target error) bool {
	return target == client.ErrMutationFailed
}

// CartLine is the displayed state of one item. Quantity 0 means the item is
// not in the cart.
type CartLine struct {
	ItemID   string
	Quantity int
	Pending  bool
}

type lineState struct {
	quantity  int
	confirmed int
	seq       uint64
	pending   bool
}

// CartController mediates between quantity edits and the remote cart. Each
// item has its own state and sequence counter; a mutation on one item never
// waits for another.
type CartController struct {
	api      client.Client
	rollback RollbackPolicy
	recorder metrics.Recorder
	log      logging.Logger

	mu     sync.Mutex
	lines  map[string]*lineState
	banner error
	closed bool
}

type CartOption func(*CartController)

func WithRollback(p RollbackPolicy) CartOption {
	return func(c *CartController) { c.rollback = p }
}

func WithCartRecorder(r metrics.Recorder) CartOption {
	return func(c *CartController) { c.recorder = r }
}

func WithCartLogger(l logging.Logger) CartOption {
	return func(c *CartController) { c.log = l }
}

func NewCartController(api client.Client, opts ...CartOption) *CartController {
	c := &CartController{
		api:      api,
		rollback: RollbackNever,
		recorder: metrics.Nop{},
		log:      logging.Discard(),
		lines:    make(map[string]*lineState),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add puts an item in the cart with quantity 1. The line is shown as
// quantity 1 and pending before the request is sent.
func (c *CartController) Add(ctx context.Context, itemID string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrControllerClosed
	}
	line := c.lineLocked(itemID)
	if line.quantity > 0 {
		c.mu.Unlock()
		return ErrAlreadyInCart
	}
	c.banner = nil
	line.quantity = 1
	line.pending = true
	line.seq++
	seq := line.seq
	c.mu.Unlock()

	err := c.api.AddCartItem(ctx, itemID, 1)
	return c.resolve(ctx, itemID, seq, OpAdd, 1, err)
}

// Edit applies raw quantity input to an item already in the cart and
// returns the coerced quantity. Nothing is sent until Commit.
func (c *CartController) Edit(itemID, raw string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, ErrControllerClosed
	}
	line, ok := c.lines[itemID]
	if !ok || line.quantity == 0 {
		return 0, ErrNotInCart
	}
	line.quantity = CoerceQuantity(raw)
	return line.quantity, nil
}

// Commit sends the local quantity of an item when it differs from the last
// confirmed one, or when an earlier mutation is still unresolved.
func (c *CartController) Commit(ctx context.Context, itemID string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrControllerClosed
	}
	line, ok := c.lines[itemID]
	if !ok || line.quantity == 0 {
		c.mu.Unlock()
		return ErrNotInCart
	}
	if !line.pending && line.quantity == line.confirmed {
		c.mu.Unlock()
		return nil
	}
	c.banner = nil
	line.pending = true
	line.seq++
	seq, qty := line.seq, line.quantity
	c.mu.Unlock()

	err := c.api.UpdateCartItem(ctx, itemID, qty)
	return c.resolve(ctx, itemID, seq, OpUpdate, qty, err)
}

// resolve applies a mutation response. Responses that are not the latest
// for their item, or that arrive after Close, change nothing.
func (c *CartController) resolve(ctx context.Context, itemID string, seq uint64, op MutationOp, qty int, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		c.recorder.RecordMutation(string(op), metrics.OutcomeDiscarded)
		return ErrControllerClosed
	}
	line := c.lines[itemID]
	if line.seq != seq {
		c.recorder.RecordMutation(string(op), metrics.OutcomeDiscarded)
		c.log.Debug(ctx, "superseded cart response discarded", "item", itemID, "op", op, "seq", seq, "latest", line.seq)
		return nil
	}

	line.pending = false
	if err == nil {
		line.confirmed = qty
		c.recorder.RecordMutation(string(op), metrics.OutcomeSuccess)
		return nil
	}

	merr := &MutationError{ItemID: itemID, Op: op, Err: err}
	c.banner = merr
	if c.rollback == RollbackToConfirmed {
		line.quantity = line.confirmed
	}
	c.recorder.RecordMutation(string(op), metrics.OutcomeFailure)
	c.log.Warn(ctx, "cart mutation failed", "item", itemID, "op", op, "quantity", qty, "error", err)
	return merr
}

func (c *CartController) lineLocked(itemID string) *lineState {
	line, ok := c.lines[itemID]
	if !ok {
		line = &lineState{}
		c.lines[itemID] = line
	}
	return line
}

// Line returns the state of one item. Unknown items are absent.
func (c *CartController) Line(itemID string) CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	line, ok := c.lines[itemID]
	if !ok {
		return CartLine{ItemID: itemID}
	}
	return CartLine{ItemID: itemID, Quantity: line.quantity, Pending: line.pending}
}

// Lines returns the items in the cart sorted by id.
func (c *CartController) Lines() []CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]CartLine, 0, len(c.lines))
	for id, line := range c.lines {
		if line.quantity == 0 {
			continue
		}
		out = append(out, CartLine{ItemID: id, Quantity: line.quantity, Pending: line.pending})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out
}

// Banner returns the error of the last failed mutation, if not dismissed.
func (c *CartController) Banner() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.banner
}

func (c *CartController) ClearBanner() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.banner = nil
}

// Close detaches the controller. Responses still in flight are ignored.
func (c *CartController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// CoerceQuantity turns raw input into a quantity of at least 1. Input that
// is not a number, zero or negative becomes 1; fractions are truncated.
func CoerceQuantity(raw string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || f < 1 {
		return 1
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}
