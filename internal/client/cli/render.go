package cli

import (
	"errors"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"
	"unicode"

	"github.com/microcosm-cc/bluemonday"

	"github.com/dmitrijs2005/pharmcart/internal/client/client"
	"github.com/dmitrijs2005/pharmcart/internal/client/models"
	"github.com/dmitrijs2005/pharmcart/internal/client/services"
)

const pageWindowSize = 5

var textPolicy = bluemonday.StrictPolicy()

// sanitize turns server-provided text into a single plain line: markup is
// stripped and control characters (including terminal escapes) dropped.
func sanitize(s string) string {
	s = html.UnescapeString(textPolicy.Sanitize(s))
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// renderInventory prints the current page as a table with the cart state of
// each row, followed by a page footer.
func renderInventory(w io.Writer, v services.View, line func(id string) services.CartLine, now time.Time) {
	switch {
	case v.Err != nil:
		fmt.Fprintf(w, "%s\nType 'list' to retry.\n", describeError(v.Err))
		return
	case v.Loading && len(v.Items) == 0:
		fmt.Fprintln(w, "Loading...")
		return
	case len(v.Items) == 0:
		fmt.Fprintln(w, "No items match the current filters.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBRAND\tCATEGORY\tPRICE\tSTOCK\tEXPIRES\tCART")
	for _, it := range v.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			sanitize(it.ID),
			sanitize(it.DrugName),
			orDash(sanitize(it.BrandName())),
			orDash(sanitize(it.CategoryName())),
			formatPrice(it.Drug),
			it.TotalQuantity,
			formatExpiry(it.Drug, now),
			formatCartLine(line(it.ID)),
		)
	}
	_ = tw.Flush()

	footer := fmt.Sprintf("Page %d of %d (%d items)  %s", v.Query.Page, v.TotalPages, v.Total, formatPageWindow(v.Query.Page, v.TotalPages))
	if v.Refreshing {
		footer += "  refreshing..."
	}
	fmt.Fprintln(w, footer)
}

func formatPrice(d models.Drug) string {
	p, ok := d.Price()
	if !ok {
		return orDash(sanitize(d.BasePrice))
	}
	return strconv.FormatFloat(p, 'f', 2, 64)
}

// formatExpiry shows the primary batch date, marked with "!" when it
// expires within three months.
func formatExpiry(d models.Drug, now time.Time) string {
	b := d.PrimaryBatch()
	if b == nil {
		return "-"
	}
	exp, ok := b.Expires()
	if !ok {
		return orDash(sanitize(b.ExpirationDate))
	}
	s := exp.Format(time.DateOnly)
	if d.ExpiringSoon(now) {
		s += " !"
	}
	return s
}

func formatCartLine(l services.CartLine) string {
	if l.Quantity == 0 {
		if l.Pending {
			return "..."
		}
		return "-"
	}
	s := strconv.Itoa(l.Quantity)
	if l.Pending {
		s += " ..."
	}
	return s
}

// pageWindow returns up to size page numbers centred on current.
func pageWindow(current, total, size int) []int {
	if total < 1 {
		total = 1
	}
	if current < 1 {
		current = 1
	}
	if current > total {
		current = total
	}
	start := max(1, current-size/2)
	end := min(total, start+size-1)
	start = max(1, end-size+1)

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}

func formatPageWindow(current, total int) string {
	var b strings.Builder
	for i, p := range pageWindow(current, total, pageWindowSize) {
		if i > 0 {
			b.WriteByte(' ')
		}
		if p == current {
			fmt.Fprintf(&b, "[%d]", p)
		} else {
			b.WriteString(strconv.Itoa(p))
		}
	}
	return b.String()
}

func renderCart(w io.Writer, lines []services.CartLine, banner error) {
	if banner != nil {
		fmt.Fprintf(w, "! %s\n", describeError(banner))
	}
	if len(lines) == 0 {
		fmt.Fprintln(w, "Cart is empty.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tQTY")
	for _, l := range lines {
		fmt.Fprintf(tw, "%s\t%s\n", sanitize(l.ItemID), formatCartLine(l))
	}
	_ = tw.Flush()
}

// describeError renders an error for the user, preferring the message the
// server sent.
func describeError(err error) string {
	var serverMsg string
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		serverMsg = sanitize(apiErr.Message)
	}
	withServer := func(fallback string) string {
		if serverMsg != "" {
			return fallback + ": " + serverMsg
		}
		return fallback
	}

	var merr *services.MutationError
	switch {
	case errors.Is(err, client.ErrInvalidCredentials):
		return withServer("Login failed")
	case errors.Is(err, client.ErrRegistrationRejected):
		return withServer("Registration rejected")
	case errors.As(err, &merr):
		return withServer(fmt.Sprintf("Could not %s item %s", merr.Op, sanitize(merr.ItemID)))
	case errors.Is(err, client.ErrUnauthorized):
		return withServer("Not authorized, please log in")
	case errors.Is(err, client.ErrUnavailable):
		return "Server unavailable, please try again later"
	case errors.Is(err, client.ErrUploadFailed):
		return withServer("Upload failed")
	case errors.Is(err, client.ErrFetchFailed):
		return withServer("Could not load inventory")
	case errors.Is(err, services.ErrNotInCart):
		return "Item is not in the cart, use 'add' first"
	case errors.Is(err, services.ErrAlreadyInCart):
		return "Item is already in the cart, use 'qty' to change it"
	}
	return err.Error()
}
