package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cxde-rxnin/carekeep/internal/transport"
	"github.com/cxde-rxnin/carekeep/internal/wizard"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Sign in, sign up and inspect the stored session",
}

var loginEmail string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		email := loginEmail
		var err error
		if email == "" {
			if email, err = readLine("Email"); err != nil {
				return err
			}
		}
		password, err := readPassword("Password")
		if err != nil {
			return err
		}

		res, err := a.api.Login(cmd.Context(), transport.LoginInput{Email: email, Password: password})
		if err != nil {
			return err
		}
		a.store.SetAuth(res.Token, res.User)

		fmt.Println(okStyle.Render("Signed in as " + res.User.HospitalName))
		return nil
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Register a hospital account",
	Long:  "Walks through the registration form, then prompts for the one-time\npasscode emailed to the hospital address. Type /back at any prompt to\nreturn to the previous step.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		eng := wizard.New(
			wizard.Step{
				Title: "Hospital details",
				Fields: []wizard.Field{
					{Name: "hospitalName", Required: true, Rules: []wizard.Rule{wizard.MinLen(2)}},
					{Name: "address", Required: true},
					{Name: "phoneNumber", Required: false, Rules: []wizard.Rule{wizard.MinLen(7)}},
				},
			},
			wizard.Step{
				Title: "Account credentials",
				Fields: []wizard.Field{
					{Name: "email", Required: true, Rules: []wizard.Rule{wizard.Email()}},
					{Name: "password", Required: true, Rules: []wizard.Rule{wizard.MinLen(8)}},
					{Name: "confirmPassword", Required: true, Rules: []wizard.Rule{
						wizard.MatchesField("password", "must match the password"),
					}},
				},
			},
		)
		pages := []wizardPage{
			{title: "Hospital details", fields: []wizardField{
				{name: "hospitalName", label: "Hospital name"},
				{name: "address", label: "Address"},
				{name: "phoneNumber", label: "Phone number (optional)"},
			}},
			{title: "Account credentials", fields: []wizardField{
				{name: "email", label: "Email"},
				{name: "password", label: "Password", secret: true},
				{name: "confirmPassword", label: "Confirm password", secret: true},
			}},
		}

		form, err := runWizard(eng, pages)
		if err != nil {
			return err
		}

		reg, err := a.api.InitiateRegistration(cmd.Context(), transport.RegistrationInput{
			HospitalName: form["hospitalName"],
			Email:        form["email"],
			Password:     form["password"],
			Address:      form["address"],
			PhoneNumber:  form["phoneNumber"],
		})
		if err != nil {
			return err
		}
		fmt.Println(okStyle.Render("Registration started, check your inbox for the passcode."))
		fmt.Println(faintStyle.Render("Session ID: " + reg.SessionID))

		return verifyLoop(cmd, reg.SessionID)
	},
}

var (
	verifySession string
	verifyOTP     string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Complete a pending registration with the emailed passcode",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if verifySession == "" {
			return fmt.Errorf("--session is required")
		}
		if verifyOTP != "" {
			return verifyOnce(cmd, verifySession, verifyOTP)
		}
		return verifyLoop(cmd, verifySession)
	},
}

var resendSession string

var resendCmd = &cobra.Command{
	Use:   "resend",
	Short: "Email a fresh passcode for a pending registration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if resendSession == "" {
			return fmt.Errorf("--session is required")
		}
		if err := a.api.ResendRegistrationOTP(cmd.Context(), resendSession); err != nil {
			return err
		}
		fmt.Println(okStyle.Render("Passcode resent."))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored session",
	RunE: func(*cobra.Command, []string) error {
		a.store.ClearAuth()
		fmt.Println("Signed out.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show who is signed in",
	RunE: func(*cobra.Command, []string) error {
		sess := a.store.Read()
		if !sess.Authenticated() {
			fmt.Println(faintStyle.Render("Not signed in."))
			return nil
		}
		fmt.Println(kv("Hospital", sess.User.HospitalName))
		fmt.Println(kv("Email", sess.User.Email))
		if a.store.Expired() {
			fmt.Println(warnStyle.Render("The stored token has expired; sign in again."))
		}
		return nil
	},
}

// verifyLoop prompts for the passcode until verification succeeds.
// Entering "r" resends, an empty line aborts.
func verifyLoop(cmd *cobra.Command, sessionID string) error {
	for {
		otp, err := readLine("Passcode (r to resend, empty to abort)")
		if err != nil {
			return err
		}
		switch strings.ToLower(otp) {
		case "":
			return fmt.Errorf("registration pending; finish later with 'carekeep auth verify --session %s'", sessionID)
		case "r":
			if err := a.api.ResendRegistrationOTP(cmd.Context(), sessionID); err != nil {
				fmt.Println(errStyle.Render(err.Error()))
				continue
			}
			fmt.Println(okStyle.Render("Passcode resent."))
			continue
		}

		if err := verifyOnce(cmd, sessionID, otp); err != nil {
			fmt.Println(errStyle.Render(err.Error()))
			continue
		}
		return nil
	}
}

func verifyOnce(cmd *cobra.Command, sessionID, otp string) error {
	res, err := a.api.VerifyRegistration(cmd.Context(), sessionID, otp)
	if err != nil {
		return err
	}
	a.store.SetAuth(res.Token, res.User)
	fmt.Println(okStyle.Render("Account verified, signed in as " + res.User.HospitalName))
	return nil
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email (prompted when omitted)")
	verifyCmd.Flags().StringVar(&verifySession, "session", "", "registration session id")
	verifyCmd.Flags().StringVar(&verifyOTP, "otp", "", "passcode (prompted when omitted)")
	resendCmd.Flags().StringVar(&resendSession, "session", "", "registration session id")

	authCmd.AddCommand(loginCmd, signupCmd, verifyCmd, resendCmd, logoutCmd, statusCmd)
}
