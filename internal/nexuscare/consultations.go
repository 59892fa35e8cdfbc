package nexuscare

import (
	"context"
	"fmt"
)

// ConsultationRequest is the payload a patient submits to book a
// consultation.
type ConsultationRequest struct {
	Symptoms         string `json:"symptoms" validate:"required"`
	Notes            string `json:"notes,omitempty"`
	ConsultationType string `json:"consultation_type" validate:"required,oneof=virtual in_person"`
	PaymentStatus    string `json:"payment_status" validate:"required,oneof=pending paid waived"`
}

// RequestConsultation submits a booking request. Callers must inspect
// PaymentLink on the response: when non-empty the booking is awaiting
// payment and the link is the next required step.
func (s *Service) RequestConsultation(ctx context.Context, req *ConsultationRequest) (*ConsultationRequestResponse, error) {
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}

	var res ConsultationRequestResponse
	err := s.api.Post(ctx, "/consultation/consultations/request/", req, &res, nil)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// MyConsultations lists the caller's own consultations (patient or doctor
// view, decided by the backend from the token).
func (s *Service) MyConsultations(ctx context.Context) ([]Consultation, error) {
	var consultations []Consultation
	err := s.api.Get(ctx, "/consultation/consultations/my-consultations/", &consultations, nil)
	if err != nil {
		return nil, err
	}
	return consultations, nil
}

type reviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment,omitempty"`
}

// CreateReview rates a completed consultation.
func (s *Service) CreateReview(ctx context.Context, consultationID int64, rating int, comment string) error {
	req := reviewRequest{Rating: rating, Comment: comment}
	if err := s.validateStruct(&req); err != nil {
		return err
	}
	path := fmt.Sprintf("/consultation/consultations/%d/review/", consultationID)
	return s.api.Post(ctx, path, req, nil, nil)
}

// PendingConsultations lists unassigned consultations. Admin only; the
// backend enforces the role, the CLI guard keeps honest users from even
// asking.
func (s *Service) PendingConsultations(ctx context.Context) ([]Consultation, error) {
	var consultations []Consultation
	err := s.api.Get(ctx, "/consultation/consultations/pending/", &consultations, nil)
	if err != nil {
		return nil, err
	}
	return consultations, nil
}

type assignRequest struct {
	DoctorID int64 `json:"doctor_id"`
}

// AssignDoctor attaches a doctor to a pending consultation and returns the
// updated record.
func (s *Service) AssignDoctor(ctx context.Context, consultationID, doctorID int64) (*Consultation, error) {
	var updated Consultation
	path := fmt.Sprintf("/consultation/consultations/%d/assign/", consultationID)
	err := s.api.Patch(ctx, path, assignRequest{DoctorID: doctorID}, &updated, nil)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
