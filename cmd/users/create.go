package users

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/mail"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/EliabLM/pos-system-api/internal/auth"
	"github.com/EliabLM/pos-system-api/internal/config"
	"github.com/EliabLM/pos-system-api/internal/db/bunx"
	"github.com/EliabLM/pos-system-api/internal/db/models"
	"github.com/EliabLM/pos-system-api/internal/repository"
)

var (
	emailFlag     string
	firstNameFlag string
	lastNameFlag  string
	passwordFlag  string
	roleFlag      string
	orgFlag       string
	storeFlag     string
	stdinFlag     bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new POS user",
	Long: `Creates a user directly in the database. Without --org the user starts
unonboarded and is sent to /onboarding on first login; with --org (and
--store) the user lands straight on the dashboard.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Validate required flags
		if emailFlag == "" {
			return fmt.Errorf("--email flag is required")
		}

		if firstNameFlag == "" {
			return fmt.Errorf("--first-name flag is required")
		}

		password := passwordFlag
		if stdinFlag {
			// Read password from stdin
			scanner := bufio.NewScanner(os.Stdin)
			fmt.Print("Enter password: ")
			if scanner.Scan() {
				password = scanner.Text()
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
		}

		if password == "" {
			return fmt.Errorf("password is required (use --password or --stdin)")
		}

		// Validate email format
		if _, err := mail.ParseAddress(emailFlag); err != nil {
			return fmt.Errorf("invalid email format: %w", err)
		}

		role := auth.Role(strings.ToUpper(roleFlag))
		if !role.Known() {
			return fmt.Errorf("invalid role %q (valid roles: %s, %s)", roleFlag, auth.RoleAdmin, auth.RoleSeller)
		}

		if storeFlag != "" && orgFlag == "" {
			return fmt.Errorf("--store requires --org")
		}
		if orgFlag != "" && storeFlag == "" {
			return fmt.Errorf("--org requires --store (every assigned user works at a store)")
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, err := bunx.NewDB(cfg.DatabaseURL, cfg.MaxDBConnections)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		ctx := context.Background()
		userRepo := repository.NewBunUserRepository(db)

		// Verify the assignment targets exist before creating anything
		if orgFlag != "" {
			if _, err := repository.NewBunOrganizationRepository(db).GetByID(ctx, orgFlag); err != nil {
				return fmt.Errorf("failed to resolve organization: %w", err)
			}
			store, err := repository.NewBunStoreRepository(db).GetByID(ctx, storeFlag)
			if err != nil {
				return fmt.Errorf("failed to resolve store: %w", err)
			}
			if store.OrganizationID != orgFlag {
				return fmt.Errorf("store %q does not belong to organization %q", storeFlag, orgFlag)
			}
		}

		// Hash password with bcrypt
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), 12)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		user := &models.User{
			Email:        emailFlag,
			PasswordHash: string(hashedPassword),
			FirstName:    firstNameFlag,
			LastName:     lastNameFlag,
			Role:         string(role),
			IsActive:     true,
		}

		if err := userRepo.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return fmt.Errorf("user with email %q already exists", emailFlag)
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		if orgFlag != "" {
			if err := userRepo.AssignOrganization(ctx, user.ID, orgFlag, storeFlag); err != nil {
				return fmt.Errorf("failed to assign organization: %w", err)
			}
		}

		fmt.Println("User created successfully!")
		fmt.Println("----------------------------------------")
		fmt.Printf("User ID: %s\n", user.ID)
		fmt.Printf("Email: %s\n", user.Email)
		fmt.Printf("Name: %s\n", user.FullName())
		fmt.Printf("Role: %s\n", user.Role)
		if orgFlag != "" {
			fmt.Printf("Organization: %s\n", orgFlag)
			fmt.Printf("Store: %s\n", storeFlag)
		}
		fmt.Println("----------------------------------------")

		return nil
	},
}
