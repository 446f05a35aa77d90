package dto

// ── 用户模块 DTO ──

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	Role    string `form:"role"    binding:"omitempty,oneof=admin teacher student"`
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// UpdateUserRequest 更新用户信息请求（整体替换，角色不可修改）
type UpdateUserRequest struct {
	Name     string  `json:"name"     binding:"required,notblank,max=255"`
	Email    string  `json:"email"    binding:"required,email,max=255"`
	Password *string `json:"password" binding:"omitempty,min=8,max=72"`
}
