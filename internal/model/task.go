package model

// Task is a to-do record. It is the only entity of the store.
type Task struct {
	ID          uint    `gorm:"primaryKey"`
	Title       string  `gorm:"not null"`
	Description string  `gorm:"default:''"`
	Completed   bool    `gorm:"default:false"`
	Priority    string  `gorm:"default:medium"`
	DueDate     *string
	Category    *string
	// CreatedAt is a "YYYY-MM-DD HH:MM:SS" UTC string written once on insert.
	CreatedAt string
}

// Priority labels the UI offers. The set is not enforced.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)
