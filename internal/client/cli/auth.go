package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/qaforum/internal/client/confirm"
	"github.com/dmitrijs2005/qaforum/internal/client/guard"
	"github.com/dmitrijs2005/qaforum/internal/client/models"
	"github.com/dmitrijs2005/qaforum/internal/common"
)

// getSimpleText, getMultiline and getPassword are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText = GetSimpleText
	getMultiline  = GetMultiline
	getPassword   = GetPassword
)

// Register prompts for the account fields and creates the account. The
// issued token becomes the session.
func (a *App) Register(ctx context.Context) error {
	var reg models.Registration
	prompts := []struct {
		label string
		dst   *string
	}{
		{"Email", &reg.Email},
		{"Username", &reg.Username},
		{"First name", &reg.FirstName},
		{"Last name", &reg.LastName},
	}
	for _, p := range prompts {
		v, err := getSimpleText(a.reader, p.label, a.out)
		if err != nil {
			return err
		}
		*p.dst = v
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	reg.Password = string(password)

	st, err := a.auth.Register(ctx, reg)
	if err != nil {
		return err
	}
	a.navigate(guard.Home)
	fmt.Fprintf(a.out, "Account created. Welcome, %s\n", st.Username)
	return nil
}

// Login prompts for username and password and signs in.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	st, err := a.auth.SignIn(ctx, models.Credentials{Username: username, Password: string(password)})
	if err != nil {
		return err
	}
	a.navigate(guard.Home)
	fmt.Fprintf(a.out, "Welcome, %s\n", st.Username)
	return nil
}

// Logout asks for confirmation; the session ends on "yes".
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		a.println("You are not signed in.")
		return nil
	}
	a.gate.Request(confirm.Target{Kind: confirm.Logout})
	a.println("Sign out? Type 'yes' to confirm or 'no' to cancel.")
	return nil
}

// WhoAmI prints the verified identity.
func (a *App) WhoAmI(ctx context.Context) error {
	st := a.sessions.Current()
	if !st.IsAuthenticated {
		a.println("Not signed in.")
		return nil
	}
	line := fmt.Sprintf("%s (id %d)", st.Username, st.UserID)
	if !st.ExpiresAt.IsZero() {
		line += ", token expires " + st.ExpiresAt.Local().Format("2006-01-02 15:04")
	}
	if at, ok, err := a.creds.SavedAt(ctx); err != nil {
		a.log.Warn(ctx, "read credential timestamp", "error", err)
	} else if ok {
		line += ", signed in " + at.Local().Format("2006-01-02 15:04")
	}
	a.println(line)
	return nil
}
