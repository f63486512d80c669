package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	// ProjectOpen means the project is accepting freelancers.
	ProjectOpen ProjectStatus = "OPEN"
	// ProjectCompleted means the project has been marked done by its owner.
	ProjectCompleted ProjectStatus = "COMPLETED"
)

// Project represents a freelance project posted on the marketplace.
type Project struct {
	ID          uuid.UUID     `json:"id" gorm:"type:char(36);primaryKey"`
	Title       string        `json:"title" gorm:"size:200;not null"`
	Description string        `json:"description" gorm:"type:text;not null"`
	Budget      int           `json:"budget" gorm:"not null"`
	TechStack   []string      `json:"tech_stack" gorm:"serializer:json"`
	Status      ProjectStatus `json:"status" gorm:"size:20;not null;default:'OPEN';index"`
	CreatedBy   uuid.UUID     `json:"created_by" gorm:"type:char(36);not null;index"`
	CreatedAt   time.Time     `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = ProjectOpen
	}
	return nil
}
