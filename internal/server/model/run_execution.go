package model

import "gorm.io/gorm"

type RunExecution struct {
	gorm.Model
	RunUUID    string `gorm:"not null;type:varchar(50);uniqueIndex"`
	RunName    string `gorm:"type:varchar(100);not null;index"`
	Project    string `gorm:"type:varchar(100);not null"`
	Status     string `gorm:"type:varchar(20);not null"`
	ErrorText  string `gorm:"type:text"`
	ReportJSON string `gorm:"type:text"`
}
