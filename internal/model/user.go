package model

type User struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Username string `gorm:"not null;uniqueIndex;size:255" json:"username"`
	Password string `gorm:"not null;size:255" json:"-"`
}

func (User) TableName() string {
	return "users"
}
