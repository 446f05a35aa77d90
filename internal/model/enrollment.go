package model

// Enrollment 选课表 — 对应 enrollments
type Enrollment struct {
	ID        string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CourseID  string `gorm:"type:uuid;not null"                             json:"course_id"`
	StudentID string `gorm:"type:uuid;not null"                             json:"student_id"`
	SoftDeleteModel

	// 关联
	Course  *Course `gorm:"foreignKey:CourseID"  json:"course,omitempty"`
	Student *User   `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

// TableName 指定表名
func (Enrollment) TableName() string { return "enrollments" }
