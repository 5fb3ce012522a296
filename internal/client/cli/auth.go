package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/jobmarket/internal/common"
)

// getSimpleText, getWithDefault and getPassword are indirections used to
// facilitate testing. They can be swapped in tests.
var (
	getSimpleText  = GetSimpleText
	getWithDefault = GetWithDefault
	getPassword    = GetPassword
)

// Register prompts for email, password and role and creates the account.
// The password is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	role, err := getWithDefault(a.reader, "Role (jobseeker|employer)", "jobseeker", a.out)
	if err != nil {
		return err
	}

	if err := a.authService.Register(ctx, email, password, role); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Success! You can log in now.")
	return nil
}

// Login prompts for credentials, opens a session and loads the visitor's
// recently viewed list.
func (a *App) Login(ctx context.Context) error {
	email, err := getWithDefault(a.reader, "Enter email", a.authService.LastEmail(ctx), a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Login(ctx, email, password); err != nil {
		return err
	}

	a.startSession(email)
	a.setMode(ModeOnline)
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.authService.Logout(ctx)
	a.endSession()
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
