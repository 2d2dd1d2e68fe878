package entity

import "time"

type TaskType string

const (
	TaskWater    TaskType = "Water"
	TaskFood     TaskType = "Food"
	TaskCleaning TaskType = "Cleaning"
)

type Schedule struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TaskType     TaskType  `gorm:"size:20;not null" json:"task_type"`
	Description  string    `gorm:"type:text" json:"description"`
	AssignedToID *uint     `gorm:"index" json:"assigned_to"`
	AssignedTo   *Member   `gorm:"foreignKey:AssignedToID;constraint:OnDelete:SET NULL" json:"-"`
	Date         time.Time `gorm:"type:date;not null;index" json:"date"`
	Time         string    `gorm:"size:8;not null" json:"time"`
	Completed    bool      `gorm:"not null;default:false" json:"completed"`
}
