// Command admin manages forum accounts directly against the database. Admin
// rights are never granted over HTTP.
//
// Usage:
//
//	go run ./cmd/admin create-admin -username root -email root@example.com -password 'S3cretPass'
//	go run ./cmd/admin promote -email alice@example.com
//	go run ./cmd/admin demote -email alice@example.com
//	go run ./cmd/admin verify -email alice@example.com
//	go run ./cmd/admin reset-password -email alice@example.com
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"qa_forum_backend/internal/config"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/repository"
	"qa_forum_backend/internal/service"
	"qa_forum_backend/internal/util"
	"qa_forum_backend/pkg/database"
	"strings"

	"gorm.io/gorm"
)

const usage = `usage: admin <command> [flags]

commands:
  create-admin    -username -email -password
  promote         -email
  demote          -email
  verify          -email
  reset-password  -email [-password]`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(2)
	}

	cmd := os.Args[1]
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	configDir := fs.String("config", "configs", "directory containing config.yaml")
	email := fs.String("email", "", "account email")
	username := fs.String("username", "", "username for create-admin")
	password := fs.String("password", "", "password; generated when empty for reset-password")
	fs.Parse(os.Args[2:])

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.InitDB(&cfg.Database, true, false)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	users := repository.NewUserRepository(db)

	switch cmd {
	case "create-admin":
		err = createAdmin(users, *username, *email, *password)
	case "promote":
		err = updateUser(users, *email, map[string]interface{}{"is_admin": true})
	case "demote":
		err = updateUser(users, *email, map[string]interface{}{"is_admin": false})
	case "verify":
		err = updateUser(users, *email, map[string]interface{}{
			"is_verified":          true,
			"verification_token":   "",
			"verification_expires": nil,
		})
	case "reset-password":
		err = resetPassword(users, *email, *password)
	default:
		fmt.Println(usage)
		os.Exit(2)
	}

	if err != nil {
		log.Fatalf("%s failed: %v", cmd, err)
	}
}

func createAdmin(users *repository.UserRepository, username, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return errors.New("username, email and password are required")
	}
	if err := service.ValidateUsername(username); err != nil {
		return err
	}
	if err := service.ValidatePassword(password); err != nil {
		return err
	}

	existing, err := users.FindByEmail(email)
	if err == nil {
		if err := users.UpdateFields(existing.ID, map[string]interface{}{"is_admin": true, "is_verified": true}); err != nil {
			return err
		}
		log.Printf("Existing user %s promoted to admin", existing.Username)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := service.HashPassword(password)
	if err != nil {
		return err
	}

	user := &model.User{
		Username:   username,
		Email:      email,
		Password:   hash,
		IsAdmin:    true,
		IsVerified: true,
		Settings:   model.Settings{Theme: "light", Language: "en"},
	}
	if err := users.Create(user); err != nil {
		return err
	}
	log.Printf("Admin %s created with id %s", user.Username, user.ID)
	return nil
}

func updateUser(users *repository.UserRepository, email string, fields map[string]interface{}) error {
	user, err := users.FindByEmail(email)
	if err != nil {
		return fmt.Errorf("find %s: %w", email, err)
	}
	if err := users.UpdateFields(user.ID, fields); err != nil {
		return err
	}
	log.Printf("User %s updated", user.Username)
	return nil
}

func resetPassword(users *repository.UserRepository, email, password string) error {
	user, err := users.FindByEmail(email)
	if err != nil {
		return fmt.Errorf("find %s: %w", email, err)
	}

	generated := password == ""
	if generated {
		password, err = util.TempPassword(12)
		if err != nil {
			return err
		}
	} else if err := service.ValidatePassword(password); err != nil {
		return err
	}

	hash, err := service.HashPassword(password)
	if err != nil {
		return err
	}
	if err := users.UpdateFields(user.ID, map[string]interface{}{
		"password":              hash,
		"reset_password_token":  "",
		"reset_password_expire": nil,
	}); err != nil {
		return err
	}

	if generated {
		log.Printf("Password for %s reset to: %s", user.Username, password)
	} else {
		log.Printf("Password for %s reset", user.Username)
	}
	return nil
}
