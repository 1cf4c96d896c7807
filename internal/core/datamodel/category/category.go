package category

import "time"

type Category struct {
	ID          int64      `gorm:"primaryKey"`
	Name        string     `gorm:"column:name;size:100;uniqueIndex;not null"`
	Description string     `gorm:"column:description"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   *time.Time `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (Category) TableName() string {
	return "categories"
}
