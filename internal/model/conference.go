package model

import "time"

// 会议状态：scheduled → active → ended
const (
	ConferenceScheduled = "scheduled"
	ConferenceActive    = "active"
	ConferenceEnded     = "ended"
)

// Conference 在线会议表 — 对应 conferences
type Conference struct {
	ID        string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CourseID  string     `gorm:"type:uuid;not null"                             json:"course_id"`
	TeacherID string     `gorm:"type:uuid;not null"                             json:"teacher_id"`
	Title     string     `gorm:"type:varchar(255);not null"                     json:"title"`
	RoomID    string     `gorm:"type:varchar(32);not null"                      json:"room_id"`
	Status    string     `gorm:"type:varchar(20);not null;default:'scheduled'"  json:"status"`
	StartedAt *time.Time `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
	SoftDeleteModel

	// 关联
	Course  *Course `gorm:"foreignKey:CourseID"  json:"course,omitempty"`
	Teacher *User   `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
}

// TableName 指定表名
func (Conference) TableName() string { return "conferences" }
