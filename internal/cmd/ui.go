package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/cxde-rxnin/carekeep/internal/domain"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	faintStyle = lipgloss.NewStyle().Faint(true)
	labelStyle = lipgloss.NewStyle().Bold(true)
)

func kv(label, value string) string {
	return fmt.Sprintf("%s %s", labelStyle.Render(label+":"), value)
}

func renderTitle(s string) string {
	return titleStyle.Render(s)
}

func renderPatient(p domain.Patient) string {
	var b strings.Builder
	fmt.Fprintln(&b, renderTitle(p.Name))
	fmt.Fprintln(&b, kv("ID", p.ID))
	fmt.Fprintln(&b, kv("Age", fmt.Sprintf("%d", p.Age)))
	if p.DOB != "" {
		fmt.Fprintln(&b, kv("DOB", p.DOB))
	}
	fmt.Fprintln(&b, kv("Gender", string(p.Gender)))
	if len(p.MedicalHistory) > 0 {
		fmt.Fprintln(&b, kv("History", strings.Join(p.MedicalHistory, ", ")))
	}
	return b.String()
}

func renderBackup(bk domain.Backup) string {
	status := bk.Status
	switch {
	case bk.Completed():
		status = okStyle.Render(status)
	case bk.Status == "failed":
		status = errStyle.Render(status)
	default:
		status = warnStyle.Render(status)
	}
	return fmt.Sprintf("%s  %s  %-8s  %s",
		bk.ID,
		bk.BackupDate.Local().Format("2006-01-02 15:04"),
		string(bk.Scope),
		status,
	)
}

func humanTime(t *time.Time) string {
	if t == nil {
		return faintStyle.Render("never")
	}
	return t.Local().Format("2006-01-02 15:04")
}
