package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cxde-rxnin/carekeep/internal/domain"
	"github.com/cxde-rxnin/carekeep/internal/transport"
	"github.com/cxde-rxnin/carekeep/internal/wizard"
)

var patientsCmd = &cobra.Command{
	Use:   "patients",
	Short: "Manage patient records",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		return requireAuth()
	},
}

var patientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List patient records",
	RunE: func(cmd *cobra.Command, _ []string) error {
		patients, err := a.api.ListPatients(cmd.Context())
		if err != nil {
			return err
		}
		if len(patients) == 0 {
			fmt.Println(faintStyle.Render("No patients yet."))
			return nil
		}
		for _, p := range patients {
			fmt.Printf("%s  %-24s  %3d  %s\n", p.ID, p.Name, p.Age, p.Gender)
		}
		return nil
	},
}

var patientsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one patient record with its documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := a.api.Patient(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Print(renderPatient(*p))

		docs, err := a.api.PatientDocuments(cmd.Context(), p.ID)
		if err != nil {
			return err
		}
		if len(docs) > 0 {
			fmt.Println(labelStyle.Render("Documents:"))
			for _, d := range docs {
				fmt.Printf("  %s  %s\n", d.ID, d.FileName)
			}
		}
		return nil
	},
}

var patientsNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a patient record",
	Long:  "Walks through the patient form step by step. Type /back at any prompt\nto return to the previous step.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		eng := wizard.New(
			wizard.Step{
				Title: "Identity",
				Fields: []wizard.Field{
					{Name: "name", Required: true, Rules: []wizard.Rule{wizard.MinLen(2)}},
					{Name: "dob", Required: true, Rules: []wizard.Rule{wizard.Date()}},
					{Name: "gender", Required: true, Rules: []wizard.Rule{wizard.OneOf("male", "female", "other")}},
				},
			},
			wizard.Step{
				Title: "Medical history",
				Fields: []wizard.Field{
					{Name: "medicalHistory", Required: false},
				},
			},
		)
		pages := []wizardPage{
			{title: "Identity", fields: []wizardField{
				{name: "name", label: "Full name"},
				{name: "dob", label: "Date of birth (YYYY-MM-DD)"},
				{name: "gender", label: "Gender (male/female/other)"},
			}},
			{title: "Medical history", fields: []wizardField{
				{name: "medicalHistory", label: "Conditions, comma separated (optional)"},
			}},
		}

		form, err := runWizard(eng, pages)
		if err != nil {
			return err
		}

		p, err := a.api.CreatePatient(cmd.Context(), transport.CreatePatientInput{
			Name:           form["name"],
			Age:            ageFromDOB(form["dob"], time.Now()),
			DOB:            form["dob"],
			Gender:         domain.Gender(form["gender"]),
			MedicalHistory: splitHistory(form["medicalHistory"]),
		})
		if err != nil {
			return err
		}

		fmt.Println(okStyle.Render("Patient created."))
		fmt.Print(renderPatient(*p))
		return nil
	},
}

var patientUpdate struct {
	name    string
	dob     string
	gender  string
	history string
}

var patientsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change fields on a patient record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := transport.PatientUpdate{
			Name:   patientUpdate.name,
			DOB:    patientUpdate.dob,
			Gender: domain.Gender(patientUpdate.gender),
		}
		if patientUpdate.history != "" {
			in.MedicalHistory = splitHistory(patientUpdate.history)
		}
		if in.Name == "" && in.DOB == "" && in.Gender == "" && in.MedicalHistory == nil {
			return fmt.Errorf("nothing to update; pass at least one of --name, --dob, --gender, --history")
		}

		p, err := a.api.UpdatePatient(cmd.Context(), args[0], in)
		if err != nil {
			return err
		}
		fmt.Println(okStyle.Render("Patient updated."))
		fmt.Print(renderPatient(*p))
		return nil
	},
}

var patientsDeleteYes bool

var patientsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a patient record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !patientsDeleteYes {
			answer, err := readLine("Delete this patient and its documents? (yes/no)")
			if err != nil {
				return err
			}
			if strings.ToLower(answer) != "yes" {
				fmt.Println("Aborted.")
				return nil
			}
		}
		if err := a.api.DeletePatient(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println(okStyle.Render("Patient deleted."))
		return nil
	},
}

// ageFromDOB derives whole years from an ISO date, counting a birthday
// that hasn't happened yet this year as not reached. Unparseable input
// yields 0 and the server falls back to the dob field.
func ageFromDOB(dob string, now time.Time) int {
	born, err := time.Parse("2006-01-02", dob)
	if err != nil {
		return 0
	}
	age := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

func splitHistory(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func init() {
	f := patientsUpdateCmd.Flags()
	f.StringVar(&patientUpdate.name, "name", "", "full name")
	f.StringVar(&patientUpdate.dob, "dob", "", "date of birth (YYYY-MM-DD)")
	f.StringVar(&patientUpdate.gender, "gender", "", "male, female or other")
	f.StringVar(&patientUpdate.history, "history", "", "medical history, comma separated")

	patientsDeleteCmd.Flags().BoolVarP(&patientsDeleteYes, "yes", "y", false, "skip the confirmation prompt")

	patientsCmd.AddCommand(patientsListCmd, patientsShowCmd, patientsNewCmd, patientsUpdateCmd, patientsDeleteCmd)
}
