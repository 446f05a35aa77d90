package model

import "time"

// Lesson 课时表 — 对应 lessons
type Lesson struct {
	ID         string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CourseID   string  `gorm:"type:uuid;not null"                             json:"course_id"`
	Title      string  `gorm:"type:varchar(255);not null"                     json:"title"`
	LessonCode string  `gorm:"type:varchar(50);not null"                      json:"lesson_code"`
	Content    *string `gorm:"type:text"                                      json:"content"`
	SoftDeleteModel

	// 关联
	Course      *Course            `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Attachments []LessonAttachment `gorm:"foreignKey:LessonID" json:"attachments,omitempty"`
}

// TableName 指定表名
func (Lesson) TableName() string { return "lessons" }

// LessonAttachment 课时附件表 — 对应 lesson_attachments（硬删除）
type LessonAttachment struct {
	ID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	LessonID string `gorm:"type:uuid;not null"                             json:"lesson_id"`
	FileName string `gorm:"type:varchar(255);not null"                     json:"file_name"`
	FilePath string `gorm:"type:varchar(500);not null"                     json:"file_path"`
	FileURL  string `gorm:"type:varchar(1000);not null"                    json:"file_url"`
	FileType string `gorm:"type:varchar(20);not null;default:'other'"      json:"file_type"`
	MimeType string `gorm:"type:varchar(255)"                              json:"mime_type"`
	FileSize int64  `gorm:"not null;default:0"                             json:"file_size"`
	BaseModel

	Lesson *Lesson `gorm:"foreignKey:LessonID" json:"lesson,omitempty"`
}

// TableName 指定表名
func (LessonAttachment) TableName() string { return "lesson_attachments" }

// LessonCompletion 学生课时完成记录 — 对应 lesson_completions
type LessonCompletion struct {
	ID          string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	LessonID    string    `gorm:"type:uuid;not null"                             json:"lesson_id"`
	StudentID   string    `gorm:"type:uuid;not null"                             json:"student_id"`
	CompletedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"completed_at"`
}

// TableName 指定表名
func (LessonCompletion) TableName() string { return "lesson_completions" }
