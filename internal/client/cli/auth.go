package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/pharmcart/internal/client/models"
	"github.com/dmitrijs2005/pharmcart/internal/common"
)

// getSimpleText, getPassword and getYesNo are indirections used to
// facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getYesNo      = GetYesNo
)

// Register prompts for the account and company details and signs up. The
// new session is always remembered across restarts.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	company, err := getSimpleText(a.reader, "Enter company name", a.out)
	if err != nil {
		return err
	}
	license, err := getSimpleText(a.reader, "Enter pharmacy license number", a.out)
	if err != nil {
		return err
	}

	id, err := a.sessions.Signup(ctx, models.SignupProfile{
		Email:         email,
		Password:      string(password),
		CompanyName:   company,
		LicenseNumber: license,
	})
	if err != nil {
		return err
	}

	a.resetSessionState()
	fmt.Fprintf(a.out, "Welcome, %s!\n", id)
	return nil
}

// Login prompts for credentials and the remember-me choice (default yes).
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	remember, err := getYesNo(a.reader, "Remember me?", true, a.out)
	if err != nil {
		return err
	}

	id, err := a.sessions.Login(ctx, email, string(password), remember)
	if err != nil {
		return err
	}

	a.resetSessionState()
	fmt.Fprintf(a.out, "Logged in as %s\n", id)
	return nil
}

// Logout forgets the credential everywhere it was stored.
func (a *App) Logout(ctx context.Context) error {
	err := a.sessions.Logout(ctx)
	a.resetSessionState()
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// WhoAmI prints the known identity. After a restore only the credential is
// known, so the pricing tier is reported as unknown.
func (a *App) WhoAmI(context.Context) error {
	sess := a.sessions.Session()
	switch id, ok := sess.Identity(); {
	case ok:
		fmt.Fprintf(a.out, "%s, tier %s\n", id.Email, id.Tier)
	case sess.Authenticated():
		fmt.Fprintln(a.out, "Logged in (restored session), tier unknown until next login.")
	default:
		fmt.Fprintln(a.out, "Not logged in.")
	}
	return nil
}
