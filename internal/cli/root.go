package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/nexuscare/nexuscare-cli/internal/api"
	"github.com/nexuscare/nexuscare-cli/internal/guard"
	"github.com/nexuscare/nexuscare-cli/internal/nexuscare"
)

func (a *App) prompt() string {
	user := a.session.User()
	if user == nil {
		return "nexuscare> "
	}
	return fmt.Sprintf("nexuscare (%s %s)> ", user.Email, user.Role())
}

// Root runs the command loop until exit or EOF. Commands and prompts share
// a.reader; a second buffered reader on stdin would swallow typed lines.
func (a *App) Root(ctx context.Context) {
	fmt.Println("NexusCare CLI (type 'help' for commands)")

	for {
		fmt.Print(a.prompt())
		line, err := a.reader.ReadString('\n')
		if err != nil {
			break
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]

		switch cmd {
		case "help":
			a.help()
		case "register":
			a.report(a.Register(ctx))
		case "login":
			a.report(a.Login(ctx))
		case "logout":
			a.report(a.Logout(ctx))
		case "whoami":
			a.Whoami()
		case "doctors":
			a.runGuarded(ctx, allRoles, a.listDoctors)
		case "request":
			a.runGuarded(ctx, []string{nexuscare.RolePatient}, a.requestConsultation)
		case "my":
			a.runGuarded(ctx, []string{nexuscare.RolePatient, nexuscare.RoleDoctor}, a.myConsultations)
		case "review":
			a.runGuarded(ctx, []string{nexuscare.RolePatient}, a.createReview)
		case "pending":
			a.runGuarded(ctx, []string{nexuscare.RoleAdmin}, a.pendingConsultations)
		case "assign":
			a.runGuarded(ctx, []string{nexuscare.RoleAdmin}, a.assignDoctor)
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}

var allRoles = []string{
	nexuscare.RolePatient,
	nexuscare.RoleDoctor,
	nexuscare.RoleAdmin,
	nexuscare.RoleNurse,
}

func (a *App) help() {
	if a.session.User() == nil {
		fmt.Println("Available commands: register, login, exit")
		return
	}
	fmt.Println("Available commands: whoami, doctors, request, my, review, pending, assign, logout, exit")
}

// runGuarded is the CLI's route guard: the protected command only runs on
// DecisionAllow; the other decisions print the equivalent of the loading
// placeholder, the sign-in redirect, or the unauthorized page.
func (a *App) runGuarded(ctx context.Context, roles []string, fn func(ctx context.Context) error) {
	switch a.guard.Check(roles...) {
	case guard.DecisionLoading:
		fmt.Println("Session is still loading, try again in a moment.")
	case guard.DecisionSignIn:
		fmt.Println("Please sign in first (command: login).")
	case guard.DecisionUnauthorized:
		fmt.Println("Your role is not allowed to use this command.")
	case guard.DecisionAllow:
		a.report(fn(ctx))
	}
}

// report prints a failed command's flattened error message; backend
// validation payloads come out as "field: message" summaries.
func (a *App) report(err error) {
	if err != nil {
		fmt.Println("Error:", api.ExtractErrors(err))
	}
}
