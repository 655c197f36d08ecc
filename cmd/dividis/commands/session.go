package commands

import (
	"github.com/spf13/cobra"

	"github.com/satjeet/ClinePythonDividis/internal/domain"
)

func (c *cli) loginCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login [username]",
		Short: "Sign in and remember the token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := c.ws.Session
			if err := s.Login(cmd.Context(), args[0], password); err != nil {
				return failed(err, s.Err())
			}
			c.printf("Sesión iniciada como %s (nivel %d, %d XP)\n", s.Username(), s.UserLevel(), s.UserXP())
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (c *cli) registerCmd() *cobra.Command {
	var in domain.RegisterInput
	cmd := &cobra.Command{
		Use:   "register [username]",
		Short: "Create an account and sign in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Username = args[0]
			s := c.ws.Session
			if err := s.Register(cmd.Context(), in); err != nil {
				return failed(err, s.Err())
			}
			c.printf("Cuenta creada. Sesión iniciada como %s\n", s.Username())
			return nil
		},
	}
	cmd.Flags().StringVarP(&in.Password, "password", "p", "", "account password")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "last name")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.ws.Session.Logout(cmd.Context()); err != nil {
				return err
			}
			c.printf("Sesión cerrada\n")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	var update domain.ProfileUpdate
	var username, email string
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in profile, or change it with --username/--email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireSession(); err != nil {
				return err
			}
			s := c.ws.Session

			if cmd.Flags().Changed("username") {
				update.Username = &username
			}
			if cmd.Flags().Changed("email") {
				update.Email = &email
			}
			if update.Username != nil || update.Email != nil {
				if err := s.UpdateProfile(cmd.Context(), update); err != nil {
					return failed(err, s.Err())
				}
			}

			if c.asJSON {
				return c.printJSON(s.View())
			}
			user := s.User()
			c.printf("%s <%s>\n", user.User.Username, user.User.Email)
			c.printf("Nivel %d · %d XP\n", s.UserLevel(), s.UserXP())
			for _, a := range user.Achievements {
				c.printf("  %s %s\n", a.Achievement.Icon, a.Achievement.Name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "new username")
	cmd.Flags().StringVar(&email, "email", "", "new email")
	return cmd
}
