package cmd

import (
	"fmt"
	"time"

	"github.com/frahmantamala/task-management/internal/auth"
	"github.com/spf13/cobra"
)

var (
	tokenUserID int64
	tokenRole   string
	tokenTTL    time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an identity token",
	Long:  `Issue an HS256 bearer token for the jwt identity source, signed with security.jwt_secret.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(".")
		if err != nil {
			return err
		}

		role, err := auth.ParseRole(tokenRole)
		if err != nil {
			return err
		}
		id, err := auth.NewIdentity(tokenUserID, role)
		if err != nil {
			return err
		}

		ttl := tokenTTL
		if ttl <= 0 {
			ttl = cfg.Security.TokenTTL
		}
		token, err := auth.IssueToken(cfg.Security.JWTSecret, cfg.Security.JWTIssuer, id, ttl)
		if err != nil {
			return fmt.Errorf("failed to issue token: %w", err)
		}
		cmd.Println(token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().Int64Var(&tokenUserID, "user-id", 0, "caller id to embed as the subject")
	tokenCmd.Flags().StringVar(&tokenRole, "role", "User", "caller role (Admin or User)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (defaults to security.token_ttl)")
	_ = tokenCmd.MarkFlagRequired("user-id")

	rootCmd.AddCommand(tokenCmd)
}
