package domain

import "time"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type Patient struct {
	ID             string    `json:"_id"`
	Name           string    `json:"name"`
	Age            int       `json:"age,omitempty"`
	DOB            string    `json:"dob"`
	Gender         Gender    `json:"gender"`
	MedicalHistory []string  `json:"medicalHistory,omitempty"`
	CreatedAt      time.Time `json:"createdAt,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt,omitempty"`
}

type Document struct {
	ID         string    `json:"_id"`
	PatientID  string    `json:"patientId"`
	FileName   string    `json:"fileName"`
	FileURL    string    `json:"fileUrl,omitempty"`
	SizeBytes  int64     `json:"size,omitempty"`
	UploadedAt time.Time `json:"uploadedAt,omitempty"`
}
