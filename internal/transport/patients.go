package transport

import (
	"context"
	"net/http"

	"github.com/cxde-rxnin/carekeep/internal/domain"
)

func (c *Client) ListPatients(ctx context.Context) ([]domain.Patient, error) {
	var out []domain.Patient
	if err := c.do(ctx, http.MethodGet, "/patients", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Patient(ctx context.Context, id string) (*domain.Patient, error) {
	var out domain.Patient
	if err := c.do(ctx, http.MethodGet, "/patients/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePatientInput mirrors what the registration wizard collects.
// Age is derived from DOB client-side, the way the web UI does it.
type CreatePatientInput struct {
	Name           string        `json:"name"`
	Age            int           `json:"age,omitempty"`
	DOB            string        `json:"dob"`
	Gender         domain.Gender `json:"gender"`
	MedicalHistory []string      `json:"medicalHistory"`
}

func (c *Client) CreatePatient(ctx context.Context, in CreatePatientInput) (*domain.Patient, error) {
	var out domain.Patient
	if err := c.do(ctx, http.MethodPost, "/patients", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PatientUpdate is a partial patch; empty fields are left untouched.
type PatientUpdate struct {
	Name           string        `json:"name,omitempty"`
	DOB            string        `json:"dob,omitempty"`
	Gender         domain.Gender `json:"gender,omitempty"`
	MedicalHistory []string      `json:"medicalHistory,omitempty"`
}

func (c *Client) UpdatePatient(ctx context.Context, id string, in PatientUpdate) (*domain.Patient, error) {
	var out domain.Patient
	if err := c.do(ctx, http.MethodPatch, "/patients/"+id, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeletePatient(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/patients/"+id, nil, nil)
}
