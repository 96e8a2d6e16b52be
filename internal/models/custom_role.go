package models

import "gorm.io/datatypes"

// CustomRole is a company defined permission bundle.
type CustomRole struct {
	BaseModel

	CompanyID   string                      `gorm:"size:36;not null;uniqueIndex:idx_custom_roles_company_name" json:"company_id"`
	Company     *Company                    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Name        string                      `gorm:"size:64;not null;uniqueIndex:idx_custom_roles_company_name" json:"name"`
	Permissions datatypes.JSONSlice[string] `json:"permissions"`
	Color       string                      `gorm:"size:16" json:"color"`
}
