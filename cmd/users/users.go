package users

import "github.com/spf13/cobra"

// UsersCmd is the parent command for user management operations
var UsersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage application users",
	Long:  `Commands for managing POS users directly from the server, bypassing the HTTP registration flow.`,
}

func init() {
	createCmd.Flags().StringVar(&emailFlag, "email", "", "Email address of the user")
	createCmd.Flags().StringVar(&firstNameFlag, "first-name", "", "First name of the user")
	createCmd.Flags().StringVar(&lastNameFlag, "last-name", "", "Last name of the user")
	createCmd.Flags().StringVar(&passwordFlag, "password", "", "Password for the user (use --stdin to avoid shell history)")
	createCmd.Flags().StringVar(&roleFlag, "role", "ADMIN", "Role to assign to the user (ADMIN or SELLER)")
	createCmd.Flags().StringVar(&orgFlag, "org", "", "Organization ID to assign (skips onboarding)")
	createCmd.Flags().StringVar(&storeFlag, "store", "", "Store ID to assign (requires --org)")
	createCmd.Flags().BoolVar(&stdinFlag, "stdin", false, "Read password from stdin instead of --password flag")

	UsersCmd.AddCommand(createCmd)
}
