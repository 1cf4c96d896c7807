package ticket

import (
	"time"

	categoryDatamodel "github.com/frahmantamala/office-ticketing/internal/core/datamodel/category"
	userDatamodel "github.com/frahmantamala/office-ticketing/internal/core/datamodel/user"
)

type Ticket struct {
	ID               int64      `gorm:"primaryKey"`
	Title            string     `gorm:"column:title;size:200;not null"`
	Description      string     `gorm:"column:description;not null"`
	Status           int        `gorm:"column:status;not null;default:1"`
	Priority         int        `gorm:"column:priority;not null;default:2"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	UpdatedAt        *time.Time `gorm:"column:updated_at;autoUpdateTime:false"`
	ResolvedAt       *time.Time `gorm:"column:resolved_at"`
	DueDate          *time.Time `gorm:"column:due_date"`
	CreatedByUserID  int64      `gorm:"column:created_by_user_id;not null"`
	AssignedToUserID *int64     `gorm:"column:assigned_to_user_id"`
	CategoryID       int64      `gorm:"column:category_id;not null"`

	CreatedByUser  *userDatamodel.User         `gorm:"foreignKey:CreatedByUserID"`
	AssignedToUser *userDatamodel.User         `gorm:"foreignKey:AssignedToUserID"`
	Category       *categoryDatamodel.Category `gorm:"foreignKey:CategoryID"`
	Comments       []Comment                   `gorm:"foreignKey:TicketID"`
}

func (Ticket) TableName() string {
	return "tickets"
}

type Comment struct {
	ID         int64     `gorm:"primaryKey"`
	Content    string    `gorm:"column:content;not null"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	IsInternal bool      `gorm:"column:is_internal;not null;default:false"`
	TicketID   int64     `gorm:"column:ticket_id;not null"`
	UserID     int64     `gorm:"column:user_id;not null"`

	User *userDatamodel.User `gorm:"foreignKey:UserID"`
}

func (Comment) TableName() string {
	return "comments"
}
