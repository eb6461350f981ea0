package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/sweetshop/app/models"
	"github.com/shashiranjanraj/sweetshop/pkg/migration"
	"github.com/shashiranjanraj/sweetshop/pkg/queue"
)

func init() {
	migration.Register("20260101000000_create_users_table", &CreateUsersTable{})
	migration.Register("20260101000001_create_sweets_table", &CreateSweetsTable{})
	migration.Register("20260101000002_create_purchases_table", &CreatePurchasesTable{})
	migration.Register("20260101000003_create_failed_jobs_table", &CreateFailedJobsTable{})
}

type CreateUsersTable struct{}

func (m *CreateUsersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{})
}

func (m *CreateUsersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("users")
}

// CreateSweetsTable includes the quantity >= 0 check constraint, so even a
// hand-written UPDATE cannot drive stock negative.
type CreateSweetsTable struct{}

func (m *CreateSweetsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Sweet{})
}

func (m *CreateSweetsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("sweets")
}

type CreatePurchasesTable struct{}

func (m *CreatePurchasesTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Purchase{})
}

func (m *CreatePurchasesTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("purchases")
}

type CreateFailedJobsTable struct{}

func (m *CreateFailedJobsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&queue.FailedJobRecord{})
}

func (m *CreateFailedJobsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("failed_jobs")
}
