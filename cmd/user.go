package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/vibast-solutions/ms-go-contacts/app/repository"
	"github.com/vibast-solutions/ms-go-contacts/app/service"

	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var userSetRoleCmd = &cobra.Command{
	Use:   "set-role <email> <role>",
	Short: "Set the role of a user (user or admin)",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		ctx := context.Background()

		userAuthService, cleanup, err := newUserAuthServiceForCommands(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		user, err := userAuthService.SetRole(ctx, args[0], args[1])
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				return fmt.Errorf("user %q not found", args[0])
			}
			if errors.Is(err, service.ErrInvalidRole) {
				return fmt.Errorf("role must be one of: user, admin")
			}
			return err
		}

		fmt.Printf("user_id: %d\n", user.ID)
		fmt.Printf("email: %s\n", user.Email)
		fmt.Printf("role: %s\n", user.Role)
		return nil
	},
}

func init() {
	userCmd.AddCommand(userSetRoleCmd)
	rootCmd.AddCommand(userCmd)
}

// newUserAuthServiceForCommands builds the account service without the mail
// and avatar transports, which no maintenance command uses.
func newUserAuthServiceForCommands(ctx context.Context) (service.UserAuthService, func(), error) {
	cfg, db, err := openDB()
	if err != nil {
		return nil, nil, err
	}

	identityCache, closeCache := newIdentityCache(ctx, cfg)

	userAuthService := service.NewUserAuthService(
		db,
		repository.NewUserRepository(db),
		repository.NewPasswordResetTokenRepository(db),
		service.NewPasswordHasher(cfg.Password.HashCost),
		service.NewTokenService(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL),
		identityCache,
		nil,
		nil,
		cfg,
	)

	cleanup := func() {
		closeCache()
		db.Close()
	}
	return userAuthService, cleanup, nil
}
