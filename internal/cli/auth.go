package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/nexuscare/nexuscare-cli/internal/common"
	"github.com/nexuscare/nexuscare-cli/internal/nexuscare"
)

// getSimpleText and getPassword are indirections over the interactive input
// helpers so tests can swap them out.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register walks the user through account creation. Passwords are read
// without echo and wiped once the request has been sent.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Choose a username", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	firstName, err := getSimpleText(a.reader, "First name", os.Stdout)
	if err != nil {
		return err
	}
	lastName, err := getSimpleText(a.reader, "Last name", os.Stdout)
	if err != nil {
		return err
	}
	phone, err := getSimpleText(a.reader, "Phone number", os.Stdout)
	if err != nil {
		return err
	}
	userType, err := getSimpleText(a.reader, "Role (patient, doctor, admin, nurse)", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword("Choose a password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword("Confirm password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	req := &nexuscare.RegisterRequest{
		Username:        username,
		Email:           email,
		Password:        string(password),
		ConfirmPassword: string(confirm),
		UserType:        userType,
		FirstName:       firstName,
		LastName:        lastName,
		PhoneNumber:     phone,
	}
	if _, err := a.svc.Register(ctx, req); err != nil {
		return err
	}

	fmt.Println("Account created. You can now sign in with 'login'.")
	return nil
}

// Login authenticates against the backend and hands the result to the
// session store, which persists it and feeds the token to the API client.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.svc.Login(ctx, email, string(password))
	if err != nil {
		return err
	}

	if err := a.session.Login(ctx, &res.User, res.Access); err != nil {
		a.logger.Warn(ctx, "login will not survive a restart", "error", err.Error())
	}

	fmt.Printf("Signed in as %s (%s).\n", res.User.DisplayName(), res.User.Role())
	return nil
}

// Logout clears the session and all persisted credentials. Harmless when
// already signed out.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	fmt.Println("Signed out.")
	return nil
}

// Whoami prints the current session.
func (a *App) Whoami() {
	user := a.session.User()
	if user == nil {
		fmt.Println("Not signed in.")
		return
	}
	fmt.Printf("%s <%s>, role %s\n", user.DisplayName(), user.Email, user.Role())
}
