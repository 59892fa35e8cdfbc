package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/nexuscare/nexuscare-cli/internal/nexuscare"
)

// requestConsultation books a consultation for the signed-in patient. When
// the backend returns a payment link the booking is not complete: the link
// is the next required step, and the command says so instead of reporting
// success.
func (a *App) requestConsultation(ctx context.Context) error {
	symptoms, err := getSimpleText(a.reader, "Describe your symptoms", os.Stdout)
	if err != nil {
		return err
	}
	notes, err := GetMultiline(a.reader, "Additional notes (optional)", os.Stdout)
	if err != nil {
		return err
	}
	consultationType, err := getSimpleText(a.reader, "Consultation type (virtual, in_person) [virtual]", os.Stdout)
	if err != nil {
		return err
	}
	if consultationType == "" {
		consultationType = "virtual"
	}

	req := &nexuscare.ConsultationRequest{
		Symptoms:         symptoms,
		Notes:            notes,
		ConsultationType: consultationType,
		PaymentStatus:    "pending",
	}
	res, err := a.svc.RequestConsultation(ctx, req)
	if err != nil {
		return err
	}

	if res.PaymentLink != "" {
		fmt.Println("Consultation requested, awaiting payment.")
		fmt.Println("Complete your payment at:", res.PaymentLink)
		return nil
	}

	fmt.Printf("Consultation #%d requested (status: %s).\n", res.Consultation.ID, res.Consultation.Status)
	return nil
}

// myConsultations lists the caller's consultations.
func (a *App) myConsultations(ctx context.Context) error {
	consultations, err := a.svc.MyConsultations(ctx)
	if err != nil {
		return err
	}
	if len(consultations) == 0 {
		fmt.Println("No consultations yet.")
		return nil
	}
	for _, c := range consultations {
		printConsultation(c)
	}
	return nil
}

// createReview rates a completed consultation.
func (a *App) createReview(ctx context.Context) error {
	id, err := a.promptID("Consultation id")
	if err != nil {
		return err
	}
	ratingText, err := getSimpleText(a.reader, "Rating (1-5)", os.Stdout)
	if err != nil {
		return err
	}
	rating, err := strconv.Atoi(ratingText)
	if err != nil {
		return fmt.Errorf("rating must be a number: %w", err)
	}
	comment, err := GetMultiline(a.reader, "Comment (optional)", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.svc.CreateReview(ctx, id, rating, comment); err != nil {
		return err
	}
	fmt.Println("Thank you for your review!")
	return nil
}

func (a *App) promptID(prompt string) (int64, error) {
	text, err := getSimpleText(a.reader, prompt, os.Stdout)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", prompt, err)
	}
	return id, nil
}

func printConsultation(c nexuscare.Consultation) {
	doctor := "unassigned"
	if c.Doctor != nil {
		doctor = fmt.Sprintf("Dr. %s %s", c.Doctor.FirstName, c.Doctor.LastName)
	}
	fmt.Printf("#%d [%s] %s (%s)\n", c.ID, c.Status, c.Symptoms, doctor)
	if c.ScheduledTime != "" {
		fmt.Printf("    scheduled: %s\n", c.ScheduledTime)
	}
	if c.MeetingLink != "" {
		fmt.Printf("    meeting: %s\n", c.MeetingLink)
	}
}
