package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-authgate/tokengate/internal/auth"
	"github.com/go-authgate/tokengate/internal/config"
	"github.com/go-authgate/tokengate/internal/models"
	"github.com/go-authgate/tokengate/internal/store"
	"github.com/go-authgate/tokengate/internal/token"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

// envUserPassword supplies the password for user create when neither
// --password nor --password-stdin is given.
const envUserPassword = "TOKENGATE_USER_PASSWORD"

var (
	userUsername    string
	userEmail       string
	userPassword    string
	userPasswordIn  bool
	userFullName    string
	userRole        string
	userExtraClaims string
	userInactive    bool

	listPage     int
	listPageSize int
	listSearch   string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage local users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a local user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		password, err := resolvePassword(cmd.InOrStdin())
		if err != nil {
			return err
		}
		return withStore(func(s *store.Store) error {
			user, err := newUser(password)
			if err != nil {
				return err
			}
			if err := s.CreateUser(user); err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", user.Username, user.ID)
			return nil
		})
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete USERNAME",
	Short: "Delete a local user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(s *store.Store) error {
			user, err := s.GetUserByUsername(context.Background(), args[0])
			if err != nil {
				return err
			}
			if err := s.DeleteUser(user.ID); err != nil {
				return fmt.Errorf("failed to delete user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted user %s\n", user.Username)
			return nil
		})
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List local users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStore(func(s *store.Store) error {
			params := store.NewPaginationParams(listPage, listPageSize, listSearch)
			users, page, err := s.ListUsersPaginated(params)
			if err != nil {
				return err
			}

			if err := renderUsers(cmd.OutOrStdout(), users); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d (%d users)\n",
				page.CurrentPage, page.TotalPages, page.Total)
			return nil
		})
	},
}

func init() {
	userCreateCmd.Flags().StringVar(&userUsername, "username", "", "login name (required)")
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "email address (required)")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "",
		"password (prefer --password-stdin or "+envUserPassword+")")
	userCreateCmd.Flags().BoolVar(&userPasswordIn, "password-stdin", false, "read the password from stdin")
	userCreateCmd.Flags().StringVar(&userFullName, "full-name", "", "display name")
	userCreateCmd.Flags().StringVar(&userRole, "role", models.RoleUser, "user or admin")
	userCreateCmd.Flags().StringVar(&userExtraClaims, "claims", "", "extra token claims as a JSON object")
	userCreateCmd.Flags().BoolVar(&userInactive, "inactive", false, "create the user disabled")
	for _, name := range []string{"username", "email"} {
		_ = userCreateCmd.MarkFlagRequired(name)
	}

	userListCmd.Flags().IntVar(&listPage, "page", 1, "page number")
	userListCmd.Flags().IntVar(&listPageSize, "page-size", 10, "users per page")
	userListCmd.Flags().StringVar(&listSearch, "search", "", "filter by username or email")

	userCmd.AddCommand(userCreateCmd, userDeleteCmd, userListCmd)
	rootCmd.AddCommand(userCmd)
}

// resolvePassword picks the password from --password-stdin, --password or
// the environment, in that order.
func resolvePassword(stdin io.Reader) (string, error) {
	password := userPassword
	if userPasswordIn {
		if password != "" {
			return "", errors.New("--password and --password-stdin are mutually exclusive")
		}
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read password from stdin: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		password = os.Getenv(envUserPassword)
	}
	if password == "" {
		return "", fmt.Errorf("a password is required: use --password-stdin, --password or %s", envUserPassword)
	}
	return password, nil
}

func newUser(password string) (*models.User, error) {
	if userRole != models.RoleUser && userRole != models.RoleAdmin {
		return nil, fmt.Errorf("invalid role %q", userRole)
	}
	if !strings.Contains(userEmail, "@") {
		return nil, fmt.Errorf("invalid email %q", userEmail)
	}

	var extra map[string]any
	if userExtraClaims != "" {
		if err := json.Unmarshal([]byte(userExtraClaims), &extra); err != nil {
			return nil, fmt.Errorf("--claims must be a JSON object: %w", err)
		}
		if err := token.ValidateClaims(extra); err != nil {
			return nil, fmt.Errorf("--claims: %w", err)
		}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	return &models.User{
		ID:           uuid.NewString(),
		Username:     userUsername,
		Email:        userEmail,
		PasswordHash: hash,
		FullName:     userFullName,
		Role:         userRole,
		IsActive:     !userInactive,
		ExtraClaims:  extra,
	}, nil
}

func renderUsers(w io.Writer, users []models.User) error {
	table := tablewriter.NewWriter(w)
	table.Options(
		tablewriter.WithHeader([]string{"Username", "Email", "Role", "Active"}),
		tablewriter.WithRendition(
			tw.Rendition{
				Borders: tw.Border{
					Left:   tw.State(1),
					Top:    tw.State(1),
					Right:  tw.State(1),
					Bottom: tw.State(1),
				},
			},
		),
		tablewriter.WithAlignment(tw.MakeAlign(4, tw.AlignLeft)),
	)

	for _, u := range users {
		if err := table.Append([]string{
			u.Username,
			u.Email,
			u.Role,
			strconv.FormatBool(u.IsActive),
		}); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}

func withStore(fn func(s *store.Store) error) error {
	cfg := config.Load()
	s, err := store.New(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := fn(s); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			fmt.Fprintln(os.Stderr, "no such user")
		}
		return err
	}
	return nil
}
