package cli

import (
	"github.com/chachabrian/uniride-backend/pkg/api"
	"github.com/spf13/cobra"
)

func (a *app) registerCmd() *cobra.Command {
	var req api.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account with your university email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.client.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			if err := a.remember(resp); err != nil {
				return err
			}
			a.printf("Welcome, %s. You are logged in.\n", resp.User.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Username, "username", "", "display name")
	cmd.Flags().StringVar(&req.Email, "email", "", "university email")
	cmd.Flags().StringVar(&req.Password, "password", "", "password (min 6 characters)")
	cmd.Flags().StringVar(&req.Gender, "gender", "", "female, male or unspecified")
	cmd.Flags().StringVar(&req.EnrollmentID, "enrollment-id", "", "student enrollment number")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := a.remember(resp); err != nil {
				return err
			}
			a.printf("Logged in as %s (user %d).\n", resp.User.Email, resp.User.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "university email")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.client.Profile(cmd.Context())
			if err != nil {
				return err
			}
			return a.emit(user, func() {
				a.printf("%s <%s> user %d, %s\n", user.Username, user.Email, user.ID, user.Gender)
			})
		},
	}
}

func (a *app) remember(resp *api.AuthResponse) error {
	a.cfg.Token = resp.Token
	a.cfg.Email = resp.User.Email
	return a.cfg.Save(a.configPath)
}
