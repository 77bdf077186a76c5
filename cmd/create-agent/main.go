package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/polisure/certprep-backend/internal/config"
	"github.com/polisure/certprep-backend/internal/database"
	"github.com/polisure/certprep-backend/internal/logger"
	"github.com/polisure/certprep-backend/internal/model"
	"github.com/polisure/certprep-backend/internal/repository"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	agentRepo := repository.NewAgentRepository(pool)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Agent ===")

	// Employee ID
	fmt.Print("Enter Employee ID: ")
	empID, _ := reader.ReadString('\n')
	empID = strings.TrimSpace(empID)
	if empID == "" {
		fmt.Println("Error: Employee ID is required")
		return
	}

	// Name
	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	// Department
	fmt.Print("Enter Department (optional): ")
	department, _ := reader.ReadString('\n')
	department = strings.TrimSpace(department)

	// Password
	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println() // Newline after password input
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	// Admin flag
	fmt.Print("Grant admin access? (y/N): ")
	adminStr, _ := reader.ReadString('\n')
	isAdmin := strings.EqualFold(strings.TrimSpace(adminStr), "y")

	// ─── Logic ─────────────────────────────────────────────────────────

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	agent := &model.Agent{
		EmpID:        empID,
		Name:         name,
		Department:   department,
		PasswordHash: string(hashedPassword),
		IsAdmin:      isAdmin,
	}

	if err := agentRepo.Create(ctx, agent); err != nil {
		log.Fatal().Err(err).Msg("Failed to create agent")
	}

	fmt.Printf("\nSuccess! Agent '%s' (%s) created with ID: %d\n", agent.Name, agent.EmpID, agent.ID)
}
