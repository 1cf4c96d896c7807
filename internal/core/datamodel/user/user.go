package user

import "time"

type User struct {
	ID           int64      `gorm:"primaryKey"`
	Username     string     `gorm:"column:username;size:50;uniqueIndex;not null"`
	FirstName    string     `gorm:"column:first_name;size:100;not null"`
	LastName     string     `gorm:"column:last_name;size:100;not null"`
	Email        string     `gorm:"column:email;size:255;uniqueIndex;not null"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	Phone        *string    `gorm:"column:phone;size:50"`
	Department   *string    `gorm:"column:department;size:100"`
	Role         string     `gorm:"column:role;size:20;not null;default:User"`
	IsActive     bool       `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    *time.Time `gorm:"column:updated_at;autoUpdateTime:false"`
	UpdatedBy    *int64     `gorm:"column:updated_by"`
}

func (User) TableName() string {
	return "users"
}
