package model

import "time"

// 日程分类
const (
	CategoryStudy    = "study"
	CategoryExam     = "exam"
	CategoryMeeting  = "meeting"
	CategoryPersonal = "personal"
	CategoryOther    = "other"
)

// ScheduleEvent 个人日程表 — 对应 schedule_events（硬删除）
type ScheduleEvent struct {
	ID          string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID      string    `gorm:"type:uuid;not null"                             json:"user_id"`
	Title       string    `gorm:"type:varchar(255);not null"                     json:"title"`
	Description *string   `gorm:"type:text"                                      json:"description"`
	Category    string    `gorm:"type:varchar(20);not null;default:'other'"      json:"category"`
	StartTime   time.Time `gorm:"not null"                                       json:"start_time"`
	EndTime     time.Time `gorm:"not null"                                       json:"end_time"`
	AllDay      bool      `gorm:"not null;default:false"                         json:"all_day"`
	Color       string    `gorm:"type:varchar(30);not null;default:'blue'"       json:"color"`
	BaseModel
}

// TableName 指定表名
func (ScheduleEvent) TableName() string { return "schedule_events" }
