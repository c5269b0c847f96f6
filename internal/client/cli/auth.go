package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/lingopal/lingopal-client/internal/client/token"
	"github.com/lingopal/lingopal-client/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts the user for an email and password and authenticates
// against the backend. On success the issued token pair is handed to the
// credential store, which persists it and marks the session logged in.
//
// The password byte slice is securely wiped before returning. A server
// that is unreachable reports common.ErrorUnavailable; the user stays
// logged out and can retry once connectivity returns.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.api.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, common.ErrorUnavailable) {
			printlnFn("Backend unavailable, try again later")
			return err
		}
		printlnFn("Login failed:", err.Error())
		return err
	}

	if err := a.creds.SetTokens(ctx, res.Token, res.RefreshToken); err != nil {
		printlnFn("Failed to store session:", err.Error())
		return err
	}

	printlnFn("Logged in")
	return nil
}

// Logout clears both token slots and the login flags. Clearing is
// unconditional: even when storage misbehaves the in-memory session is
// gone afterwards.
func (a *App) Logout(ctx context.Context) error {
	if err := a.creds.ClearTokens(ctx); err != nil {
		printlnFn("Logout completed with storage errors:", err.Error())
		return err
	}
	printlnFn("Logged out")
	return nil
}

// Status prints the session, connectivity, and boot route summary.
func (a *App) Status(ctx context.Context) error {
	if a.isLoggedIn() {
		printlnFn("Session: logged in")
	} else {
		printlnFn("Session: logged out")
	}
	printlnFn("Connectivity:", string(a.watcher.State()))
	if r := a.bootResult(); r != nil {
		printlnFn("Boot route:", string(r.Route.Name))
	}
	return nil
}

// Boot prints the route computed by the startup sequence.
func (a *App) Boot(ctx context.Context) error {
	r := a.bootResult()
	if r == nil {
		printlnFn("Boot has not finished yet")
		return nil
	}
	printRoute(*r)
	return nil
}

// Whoami decodes the current access token and fetches the profile it
// points at.
func (a *App) Whoami(ctx context.Context) error {
	access := a.creds.AccessToken()
	if access == "" {
		printlnFn("Not logged in")
		return nil
	}

	claims, err := token.Decode(access)
	if err != nil {
		return err
	}

	profile, err := a.api.Profile(ctx, claims.SubjectID)
	if err != nil {
		printlnFn("Failed to fetch profile:", err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("%s <%s>", profile.Name, profile.Email))
	if len(claims.Roles) > 0 {
		printlnFn("Roles:", fmt.Sprintf("%v", claims.Roles))
	}
	return nil
}
