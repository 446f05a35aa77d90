package model

// 用户角色
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// User 用户表 — 对应 users
type User struct {
	ID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name     string `gorm:"type:varchar(255);not null"                     json:"name"`
	Email    string `gorm:"type:varchar(255);not null"                     json:"email"`
	Password string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role     string `gorm:"type:varchar(20);not null"                      json:"role"` // 创建后不可变更
	SoftDeleteModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }
