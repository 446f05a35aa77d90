package dto

// ── 个人日程模块 DTO ──

// ScheduleEventRequest 创建 / 更新日程请求
type ScheduleEventRequest struct {
	Title       string  `json:"title"       binding:"required,notblank,max=255"`
	Description *string `json:"description"`
	Category    string  `json:"category"    binding:"required,schedule_category"`
	Start       string  `json:"start"       binding:"required,datetime_flex"`
	End         string  `json:"end"         binding:"required,datetime_flex"`
	Color       string  `json:"color"       binding:"required,notblank,max=30"`
	AllDay      bool    `json:"allDay"`
}

// ScheduleEventResponse 日程响应（字段名与前端日历组件一致）
type ScheduleEventResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Category    string  `json:"category"`
	Start       string  `json:"start"`
	End         string  `json:"end"`
	Color       string  `json:"color"`
	AllDay      bool    `json:"allDay"`
}

// ScheduleImportResponse ICS 导入结果
type ScheduleImportResponse struct {
	Imported int                     `json:"imported"`
	Skipped  int                     `json:"skipped"`
	Events   []ScheduleEventResponse `json:"events"`
}
