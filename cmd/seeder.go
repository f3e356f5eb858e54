package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/kdiomande/courrier-registry/internal/auth"
	"github.com/kdiomande/courrier-registry/internal/directory"
	"github.com/kdiomande/courrier-registry/internal/instruction"
	instructionpg "github.com/kdiomande/courrier-registry/internal/instruction/postgres"
	"github.com/kdiomande/courrier-registry/internal/organization"
	"github.com/kdiomande/courrier-registry/pkg/logger"
)

var seedAdmin bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the instruction catalog and optional bootstrap admin",
	Long:  `Seed the default processing instructions; idempotent, safe to re-run. With --admin, also creates a bootstrap hierarchy and admin account when none exists.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		_, gormDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		instrService := instruction.NewService(instructionpg.NewInstructionRepository(gormDB), logger.L())
		if err := instrService.Seed(); err != nil {
			log.Fatalf("failed to seed instructions: %v", err)
		}
		fmt.Println("Instruction catalog seeded")

		if !seedAdmin {
			return
		}

		var accounts int64
		if err := gormDB.Model(&auth.Account{}).Count(&accounts).Error; err != nil {
			log.Fatalf("failed to check accounts: %v", err)
		}
		if accounts > 0 {
			fmt.Println("Accounts already exist; skipping admin bootstrap")
			return
		}

		// A login account must resolve to a directory user, which needs the
		// full hierarchy chain underneath it.
		dept := organization.Department{Name: "Cabinet"}
		if err := gormDB.Create(&dept).Error; err != nil {
			log.Fatalf("failed to create bootstrap department: %v", err)
		}

		svc := organization.Service{Name: "Secrétariat Central", DepartmentID: dept.ID}
		if err := gormDB.Create(&svc).Error; err != nil {
			log.Fatalf("failed to create bootstrap service: %v", err)
		}

		fn := organization.Function{Name: "Administrateur", ServiceID: svc.ID}
		if err := gormDB.Create(&fn).Error; err != nil {
			log.Fatalf("failed to create bootstrap function: %v", err)
		}

		user := directory.User{FullName: "Administrateur", FunctionID: fn.ID}
		if err := gormDB.Create(&user).Error; err != nil {
			log.Fatalf("failed to create bootstrap user: %v", err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte("changeme"), cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash bootstrap password: %v", err)
		}

		account := auth.Account{
			Email:        "admin@courrier.local",
			PasswordHash: string(hash),
			UserID:       user.ID,
		}
		if err := gormDB.Create(&account).Error; err != nil {
			log.Fatalf("failed to create bootstrap account: %v", err)
		}

		fmt.Println("Seeded admin account:", account.Email)
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedAdmin, "admin", false, "Also create a bootstrap admin account when no account exists")
}
