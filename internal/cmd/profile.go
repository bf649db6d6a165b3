package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cxde-rxnin/carekeep/internal/transport"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update the hospital profile",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		return requireAuth()
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the hospital profile",
	RunE: func(cmd *cobra.Command, _ []string) error {
		u, err := a.api.Profile(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(renderTitle(u.HospitalName))
		fmt.Println(kv("Email", u.Email))
		if u.Address != "" {
			fmt.Println(kv("Address", u.Address))
		}
		if u.PhoneNumber != "" {
			fmt.Println(kv("Phone", u.PhoneNumber))
		}
		return nil
	},
}

var profileUpdate transport.ProfileUpdate

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Change profile fields",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if profileUpdate == (transport.ProfileUpdate{}) {
			return fmt.Errorf("nothing to update; pass at least one of --name, --email, --address, --phone")
		}

		u, err := a.api.UpdateProfile(cmd.Context(), profileUpdate)
		if err != nil {
			return err
		}

		// Keep the stored session in step with the server.
		if sess := a.store.Read(); sess.Authenticated() {
			a.store.SetAuth(sess.Token, *u)
		}

		fmt.Println(okStyle.Render("Profile updated."))
		return nil
	},
}

func init() {
	f := profileUpdateCmd.Flags()
	f.StringVar(&profileUpdate.HospitalName, "name", "", "hospital name")
	f.StringVar(&profileUpdate.Email, "email", "", "contact email")
	f.StringVar(&profileUpdate.Address, "address", "", "street address")
	f.StringVar(&profileUpdate.PhoneNumber, "phone", "", "phone number")

	profileCmd.AddCommand(profileShowCmd, profileUpdateCmd)
}
