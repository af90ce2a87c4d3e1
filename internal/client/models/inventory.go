package models

import (
	"sort"
	"strconv"
	"time"
)

type Brand struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// InventoryBatch is one lot of a drug. ExpirationDate is kept as sent by the
// server (RFC 3339 or a bare date); use Expires to read it.
type InventoryBatch struct {
	ID             string `json:"id"`
	BatchNumber    string `json:"batchNumber"`
	ExpirationDate string `json:"expirationDate"`
	Quantity       int    `json:"quantity"`
}

// Expires parses ExpirationDate.
func (b InventoryBatch) Expires() (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, b.ExpirationDate); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

type Drug struct {
	ID        string           `json:"id"`
	DrugName  string           `json:"drugName"`
	BasePrice string           `json:"basePrice"`
	Brand     *Brand           `json:"brand,omitempty"`
	Category  *Category        `json:"category,omitempty"`
	Batches   []InventoryBatch `json:"batches"`
}

// InventoryListItem is a drug as listed by GET /inventory.
type InventoryListItem struct {
	Drug
	TotalQuantity int `json:"totalQuantity"`
}

// CategoryName returns "" for uncategorized items.
func (d Drug) CategoryName() string {
	if d.Category == nil {
		return ""
	}
	return d.Category.Name
}

func (d Drug) BrandName() string {
	if d.Brand == nil {
		return ""
	}
	return d.Brand.Name
}

// Price parses BasePrice. ok is false when the server sent something that is
// not a number.
func (d Drug) Price() (price float64, ok bool) {
	p, err := strconv.ParseFloat(d.BasePrice, 64)
	if err != nil {
		return 0, false
	}
	return p, true
}

// PrimaryBatch returns the earliest-expiring batch, or nil when there are
// none. Batches with unreadable dates sort last.
func (d Drug) PrimaryBatch() *InventoryBatch {
	if len(d.Batches) == 0 {
		return nil
	}
	batches := make([]InventoryBatch, len(d.Batches))
	copy(batches, d.Batches)
	sort.SliceStable(batches, func(i, j int) bool {
		ti, okI := batches[i].Expires()
		tj, okJ := batches[j].Expires()
		if okI != okJ {
			return okI
		}
		return ti.Before(tj)
	})
	return &batches[0]
}

// ExpiringSoon reports whether the primary batch expires within three
// months of now.
func (d Drug) ExpiringSoon(now time.Time) bool {
	b := d.PrimaryBatch()
	if b == nil {
		return false
	}
	exp, ok := b.Expires()
	if !ok {
		return false
	}
	return !exp.After(now.AddDate(0, 3, 0))
}

// InventoryPage is the body of GET /inventory.
type InventoryPage struct {
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
	Total int                 `json:"total"`
	Data  []InventoryListItem `json:"data"`
}

// BulkUploadMode selects whether uploaded quantities replace or add to stock.
type BulkUploadMode string

const (
	BulkUploadSet       BulkUploadMode = "set"
	BulkUploadIncrement BulkUploadMode = "increment"
)

type BulkUploadResult struct {
	Processed int            `json:"processed"`
	Mode      BulkUploadMode `json:"mode"`
}
