package model

// Course 课程表 — 对应 courses
type Course struct {
	ID            string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Title         string  `gorm:"type:varchar(255);not null"                     json:"title"`
	CourseCode    string  `gorm:"type:varchar(50);not null"                      json:"course_code"`
	Description   *string `gorm:"type:text"                                      json:"description"`
	TeacherID     string  `gorm:"type:uuid;not null"                             json:"teacher_id"`
	IsActive      bool    `gorm:"not null"                                       json:"is_active"`
	ThumbnailPath *string `gorm:"type:varchar(500)"                              json:"-"`
	ThumbnailURL  *string `gorm:"type:varchar(1000)"                             json:"thumbnail_url"`
	SoftDeleteModel

	// 关联
	Teacher     *User        `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
	Lessons     []Lesson     `gorm:"foreignKey:CourseID"  json:"lessons,omitempty"`
	Assignments []Assignment `gorm:"foreignKey:CourseID"  json:"assignments,omitempty"`
	Enrollments []Enrollment `gorm:"foreignKey:CourseID"  json:"enrollments,omitempty"`

	// 统计字段（查询时聚合，不落库）
	StudentsCount    int64 `gorm:"->;-:migration" json:"students_count"`
	LessonsCount     int64 `gorm:"->;-:migration" json:"lessons_count"`
	AssignmentsCount int64 `gorm:"->;-:migration" json:"assignments_count"`
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }
