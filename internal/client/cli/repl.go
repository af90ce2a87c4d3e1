package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error

	List(ctx context.Context) error
	Search(ctx context.Context, text string) error
	Category(ctx context.Context, name string) error
	Categories(ctx context.Context) error
	Reset(ctx context.Context) error
	Page(ctx context.Context, arg string) error
	Next(ctx context.Context) error
	Prev(ctx context.Context) error

	Add(ctx context.Context, itemID string) error
	Quantity(ctx context.Context, itemID, raw string) error
	Cart(ctx context.Context) error
	Dismiss(ctx context.Context) error
	Upload(ctx context.Context, path, mode string) error
}

const (
	helpLoggedOut = "Available commands: register, login, whoami, exit"
	helpLoggedIn  = "Available commands: (l)ist, search [text], category <name|All>, categories, reset, " +
		"page <n>, (n)ext, (p)rev, add <id>, qty <id> <n>, cart, dismiss, upload <file> [set|increment], " +
		"whoami, logout, exit"
)

// runREPL starts a simple read–eval–print loop for the pharmcart CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Errors returned by a command are printed and
// the loop continues. The loop exits on EOF, on "exit" or "quit", or when
// ctx is cancelled.
//
// Commands
//
//	Not logged in:
//	  - help            show available commands
//	  - register        create an account
//	  - login           authenticate
//	  - whoami          show the current identity
//	  - exit | quit     leave the program
//
//	Logged in:
//	  - list | l        show the current inventory page
//	  - search [text]   filter by text (no text clears the filter)
//	  - category <c>    filter by category ("All" clears it)
//	  - categories      list categories on the current page
//	  - reset           clear all filters
//	  - page <n>, next | n, prev | p
//	  - add <id>        add an item to the cart
//	  - qty <id> <n>    change the quantity of a cart item
//	  - cart            show the cart
//	  - dismiss         clear the cart error banner
//	  - upload <file> [set|increment]  bulk inventory upload
//	  - logout          log out
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(w, "pharmcart %s> ", statusFn())

		line, err := readLine(reader)
		if err != nil {
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, helpLoggedIn)
			} else {
				fmt.Fprintln(w, helpLoggedOut)
			}

		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "whoami":
			cmdErr = a.WhoAmI(ctx)

		case "l", "list":
			cmdErr = a.List(ctx)
		case "search":
			cmdErr = a.Search(ctx, strings.Join(args, " "))
		case "category":
			if len(args) == 0 {
				fmt.Fprintln(w, "Usage: category <name|All>")
				continue
			}
			cmdErr = a.Category(ctx, strings.Join(args, " "))
		case "categories":
			cmdErr = a.Categories(ctx)
		case "reset":
			cmdErr = a.Reset(ctx)
		case "page":
			if len(args) != 1 {
				fmt.Fprintln(w, "Usage: page <n>")
				continue
			}
			cmdErr = a.Page(ctx, args[0])
		case "n", "next":
			cmdErr = a.Next(ctx)
		case "p", "prev":
			cmdErr = a.Prev(ctx)

		case "add":
			if len(args) != 1 {
				fmt.Fprintln(w, "Usage: add <id>")
				continue
			}
			cmdErr = a.Add(ctx, args[0])
		case "qty":
			if len(args) != 2 {
				fmt.Fprintln(w, "Usage: qty <id> <quantity>")
				continue
			}
			cmdErr = a.Quantity(ctx, args[0], args[1])
		case "cart":
			cmdErr = a.Cart(ctx)
		case "dismiss":
			cmdErr = a.Dismiss(ctx)
		case "upload":
			if len(args) < 1 || len(args) > 2 {
				fmt.Fprintln(w, "Usage: upload <file> [set|increment]")
				continue
			}
			mode := ""
			if len(args) == 2 {
				mode = args[1]
			}
			cmdErr = a.Upload(ctx, args[0], mode)

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}

		if cmdErr != nil {
			fmt.Fprintln(w, "Error:", describeError(cmdErr))
		}
	}
}
