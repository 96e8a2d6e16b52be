package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
)

// ActiveMembershipIndex enforces at most one ACTIVE membership per user.
const ActiveMembershipIndex = "idx_company_members_active_user"

const activeUserColumn = "active_user_id"

// Models lists every persistent model in dependency order.
func Models() []any {
	return []any{
		&models.User{},
		&models.Company{},
		&models.CustomRole{},
		&models.CompanyMember{},
		&models.CompanyInvitation{},
		&models.CompanyCodeJoin{},
		&models.Internship{},
		&models.Application{},
		&models.Assignment{},
		&models.Project{},
		&models.Experience{},
		&models.Notification{},
		&models.AuditLog{},
		&models.OutboxEvent{},
		&models.CacheEntry{},
	}
}

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	return ensureActiveMembershipIndex(db)
}

// ensureActiveMembershipIndex adds the uniqueness rule gorm tags cannot express. SQLite and
// Postgres get a partial index; MySQL indexes a generated column that is NULL unless ACTIVE.
func ensureActiveMembershipIndex(db *gorm.DB) error {
	migrator := db.Migrator()
	if migrator.HasIndex(&models.CompanyMember{}, ActiveMembershipIndex) {
		return nil
	}

	status := string(models.MemberStatusActive)
	switch db.Dialector.Name() {
	case "sqlite", "postgres":
		stmt := fmt.Sprintf("CREATE UNIQUE INDEX %s ON company_members (user_id) WHERE status = '%s'", ActiveMembershipIndex, status)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create %s: %w", ActiveMembershipIndex, err)
		}
	case "mysql":
		if !migrator.HasColumn(&models.CompanyMember{}, activeUserColumn) {
			stmt := fmt.Sprintf("ALTER TABLE company_members ADD COLUMN %s VARCHAR(36) GENERATED ALWAYS AS (CASE WHEN status = '%s' THEN user_id END) VIRTUAL", activeUserColumn, status)
			if err := db.Exec(stmt).Error; err != nil {
				return fmt.Errorf("add %s: %w", activeUserColumn, err)
			}
		}
		stmt := fmt.Sprintf("CREATE UNIQUE INDEX %s ON company_members (%s)", ActiveMembershipIndex, activeUserColumn)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create %s: %w", ActiveMembershipIndex, err)
		}
	}
	return nil
}
