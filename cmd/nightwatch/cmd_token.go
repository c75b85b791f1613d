/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/friendsincode/nightwatch/internal/auth"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API token",
	Long:  "Sign a bearer token with NIGHTWATCH_JWT_SIGNING_KEY for use against the API",
	RunE:  runToken,
}

var (
	tokenSubject string
	tokenRoles   []string
	tokenTTL     time.Duration
)

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "Token subject (required)")
	tokenCmd.Flags().StringSliceVar(&tokenRoles, "role", []string{string(auth.RoleViewer)}, "Roles to grant: planner, viewer")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")
	tokenCmd.MarkFlagRequired("subject")
}

func runToken(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	if cfg.JWTSigningKey == "" {
		return fmt.Errorf("NIGHTWATCH_JWT_SIGNING_KEY is not set")
	}

	roles := make([]auth.Role, 0, len(tokenRoles))
	for _, r := range tokenRoles {
		role := auth.Role(r)
		if role != auth.RolePlanner && role != auth.RoleViewer {
			return fmt.Errorf("unknown role %q", r)
		}
		roles = append(roles, role)
	}

	token, err := auth.Issue([]byte(cfg.JWTSigningKey), tokenSubject, roles, tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
