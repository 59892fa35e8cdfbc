package cli

import (
	"context"
	"fmt"
)

// listDoctors prints the registered medical professionals.
func (a *App) listDoctors(ctx context.Context) error {
	doctors, err := a.svc.Professionals(ctx)
	if err != nil {
		return err
	}
	if len(doctors) == 0 {
		fmt.Println("No doctors registered.")
		return nil
	}
	for _, d := range doctors {
		fmt.Printf("#%d Dr. %s %s (%s)\n", d.User.ID, d.User.FirstName, d.User.LastName, d.Specialization)
	}
	return nil
}

// pendingConsultations lists consultations waiting for a doctor.
func (a *App) pendingConsultations(ctx context.Context) error {
	consultations, err := a.svc.PendingConsultations(ctx)
	if err != nil {
		return err
	}
	if len(consultations) == 0 {
		fmt.Println("No pending consultations.")
		return nil
	}
	for _, c := range consultations {
		printConsultation(c)
	}
	return nil
}

// assignDoctor attaches a doctor to a pending consultation. Dashboards that
// need the refreshed list afterwards call 'pending' again; each command is
// one request, completed before the next starts.
func (a *App) assignDoctor(ctx context.Context) error {
	consultationID, err := a.promptID("Consultation id")
	if err != nil {
		return err
	}
	doctorID, err := a.promptID("Doctor id")
	if err != nil {
		return err
	}

	updated, err := a.svc.AssignDoctor(ctx, consultationID, doctorID)
	if err != nil {
		return err
	}

	fmt.Printf("Consultation #%d is now %s.\n", updated.ID, updated.Status)
	printConsultation(*updated)
	return nil
}
