package main

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iliyamo/food-ordering-assistant/internal/utils"
)

func newTokenCmd(v *viper.Viper) *cobra.Command {
	var (
		userID string
		role   string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, _ []string) error {
			v.AutomaticEnv()
			v.SetDefault("ACCESS_TOKEN_TTL_MIN", 60)
			secret := v.GetString("JWT_SECRET")
			if secret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			if ttl <= 0 {
				ttl = time.Duration(v.GetInt("ACCESS_TOKEN_TTL_MIN")) * time.Minute
			}
			tok, err := utils.NewAccessToken(secret, userID, role, ttl)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(tok)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user ID placed in the sub claim")
	cmd.Flags().StringVar(&role, "role", "USER", "role claim, USER or ADMIN")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default ACCESS_TOKEN_TTL_MIN)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
