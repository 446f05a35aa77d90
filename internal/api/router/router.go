package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gamerzord/latihan-magang-lms/config"
	"github.com/gamerzord/latihan-magang-lms/internal/api/handler"
	"github.com/gamerzord/latihan-magang-lms/internal/api/middleware"
	"github.com/gamerzord/latihan-magang-lms/pkg/jwt"
	"github.com/gamerzord/latihan-magang-lms/pkg/redis"
)

// multipart 请求在单文件上限之外预留的表单开销
const multipartOverhead = 1 << 20

// maxFilesPerRequest 单次附件上传允许的文件数
const maxFilesPerRequest = 10

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, blacklist redis.Blacklist, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.MaxMultipartMemory = 8 << 20

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders(cfg.Auth.Cookie.Secure))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes, cfg.Storage.MaxUploadBytes*maxFilesPerRequest+multipartOverhead))

	// ── 健康检查 / 指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", middleware.MetricsHandler())

	// ── 本地存储静态文件 ──
	if cfg.Storage.Driver == "local" || cfg.Storage.Driver == "" {
		r.Static(storageMount(cfg.Storage.Local.PublicURL), cfg.Storage.Local.Root)
	}

	// 前端在站点根路径完成 CSRF 握手，/api 下保留同名别名
	r.GET("/sanctum/csrf-cookie", middleware.CSRFCookie(&cfg.Auth))

	loginLimit := middleware.RateLimit(rdb, cfg.RateLimit.LoginLimit, cfg.RateLimit.LoginWindow)

	api := r.Group("/api")
	{
		// 公开接口
		api.GET("/sanctum/csrf-cookie", middleware.CSRFCookie(&cfg.Auth))
		api.GET("/csrf-cookie", middleware.CSRFCookie(&cfg.Auth))
		api.POST("/login", loginLimit, h.Auth.Login)
		api.POST("/admin/login", loginLimit, h.Auth.AdminLogin)
		api.POST("/users", h.Auth.Register)

		// 需要认证的路由
		authorized := api.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist, &cfg.Auth))
		authorized.Use(middleware.CSRF(&cfg.Auth))
		{
			authorized.GET("/user", h.Auth.CurrentUser)
			authorized.POST("/logout", h.Auth.Logout)

			// 用户模块（查看 / 修改 / 删除在 Service 层按本人或 admin 鉴权）
			users := authorized.Group("/users")
			{
				users.GET("", middleware.RoleAuth("admin"), h.User.ListUsers)
				users.GET("/:id", h.User.GetUser)
				users.PUT("/:id", h.User.UpdateUser)
				users.DELETE("/:id", h.User.DeleteUser)
			}

			// 课程模块
			courses := authorized.Group("/courses")
			{
				courses.GET("", h.Course.ListCourses)
				courses.POST("", middleware.RoleAuth("admin", "teacher"), h.Course.CreateCourse)
				courses.GET("/:id", h.Course.GetCourse)
				courses.PUT("/:id", middleware.RoleAuth("admin", "teacher"), h.Course.UpdateCourse)
				courses.DELETE("/:id", middleware.RoleAuth("admin", "teacher"), h.Course.DeleteCourse)
				courses.POST("/:id/thumbnail", middleware.RoleAuth("admin", "teacher"), h.Course.UploadThumbnail)
			}

			// 课时与附件
			lessons := authorized.Group("/lessons")
			{
				lessons.GET("", h.Lesson.ListLessons)
				lessons.POST("", middleware.RoleAuth("admin", "teacher"), h.Lesson.CreateLesson)
				lessons.GET("/:id", h.Lesson.GetLesson)
				lessons.PUT("/:id", middleware.RoleAuth("admin", "teacher"), h.Lesson.UpdateLesson)
				lessons.DELETE("/:id", middleware.RoleAuth("admin", "teacher"), h.Lesson.DeleteLesson)
				lessons.POST("/:id/attachments", middleware.RoleAuth("admin", "teacher"), h.Lesson.UploadAttachments)
				lessons.POST("/:id/complete", middleware.RoleAuth("student"), h.Lesson.CompleteLesson)
				lessons.DELETE("/:id/complete", middleware.RoleAuth("student"), h.Lesson.UncompleteLesson)
			}
			attachments := authorized.Group("/attachments")
			{
				attachments.GET("/:id", h.Lesson.GetAttachment)
				attachments.GET("/:id/download", h.Lesson.DownloadAttachment)
				attachments.DELETE("/:id", middleware.RoleAuth("admin", "teacher"), h.Lesson.DeleteAttachment)
			}

			// 作业模块
			assignments := authorized.Group("/assignments")
			{
				assignments.GET("", h.Assignment.ListAssignments)
				assignments.POST("", middleware.RoleAuth("admin", "teacher"), h.Assignment.CreateAssignment)
				assignments.GET("/:id", h.Assignment.GetAssignment)
				assignments.PUT("/:id", middleware.RoleAuth("admin", "teacher"), h.Assignment.UpdateAssignment)
				assignments.DELETE("/:id", middleware.RoleAuth("admin", "teacher"), h.Assignment.DeleteAssignment)
			}

			// 选课模块
			enrollments := authorized.Group("/enrollments")
			{
				enrollments.GET("", h.Enrollment.ListEnrollments)
				enrollments.POST("", middleware.RoleAuth("admin", "teacher"), h.Enrollment.CreateEnrollment)
				enrollments.GET("/:id", h.Enrollment.GetEnrollment)
				enrollments.PUT("/:id", middleware.RoleAuth("admin", "teacher"), h.Enrollment.UpdateEnrollment)
				enrollments.DELETE("/:id", middleware.RoleAuth("admin", "teacher"), h.Enrollment.DeleteEnrollment)
			}

			// 作业提交（提交者 / 课程教师的归属校验在 Service 层）
			submissions := authorized.Group("/submissions")
			{
				submissions.GET("", h.Submission.ListSubmissions)
				submissions.POST("", middleware.RoleAuth("student"), h.Submission.CreateSubmission)
				submissions.GET("/:id", h.Submission.GetSubmission)
				submissions.PUT("/:id", middleware.RoleAuth("student"), h.Submission.ResubmitSubmission)
				submissions.DELETE("/:id", h.Submission.DeleteSubmission)
				submissions.POST("/:id/grade", middleware.RoleAuth("admin", "teacher"), h.Submission.GradeSubmission)
				submissions.GET("/:id/download", h.Submission.DownloadSubmission)
			}

			// 在线会议
			conferences := authorized.Group("/conferences")
			{
				conferences.GET("", h.Conference.ListConferences)
				conferences.POST("", middleware.RoleAuth("admin", "teacher"), h.Conference.CreateConference)
				conferences.GET("/:id", h.Conference.GetConference)
				conferences.PUT("/:id", middleware.RoleAuth("admin", "teacher"), h.Conference.UpdateConference)
				conferences.DELETE("/:id", middleware.RoleAuth("admin", "teacher"), h.Conference.DeleteConference)
				conferences.POST("/:id/start", middleware.RoleAuth("admin", "teacher"), h.Conference.StartConference)
				conferences.POST("/:id/end", middleware.RoleAuth("admin", "teacher"), h.Conference.EndConference)
				conferences.GET("/:id/ws", h.Conference.JoinRoom)
			}

			// 学生视图
			student := authorized.Group("/student")
			{
				student.GET("/courses", h.Course.StudentCourses)
				student.GET("/courses/:id", h.Course.StudentCourse)

				schedule := student.Group("/schedule")
				{
					schedule.GET("", h.Schedule.ListEvents)
					schedule.POST("", h.Schedule.CreateEvent)
					schedule.GET("/export.ics", h.Export.ExportSchedule)
					schedule.POST("/import", h.Schedule.ImportICS)
					schedule.PUT("/:id", h.Schedule.UpdateEvent)
					schedule.DELETE("/:id", h.Schedule.DeleteEvent)
				}
			}

			// 教师视图
			teacher := authorized.Group("/teacher")
			{
				teacher.GET("/courses", h.Course.TeacherCourses)
				teacher.GET("/courses/:id", h.Course.TeacherCourse)
				teacher.GET("/courses/:id/submissions", h.Course.CourseSubmissions)
				teacher.GET("/courses/:id/submissions/export", h.Export.ExportGradebook)
			}
		}
	}

	return r
}

// storageMount 取 public_url 的路径部分作为静态路由前缀，默认 /storage
func storageMount(publicURL string) string {
	p := publicURL
	if i := strings.Index(p, "://"); i >= 0 {
		p = p[i+3:]
		if j := strings.Index(p, "/"); j >= 0 {
			p = p[j:]
		} else {
			p = ""
		}
	}
	p = "/" + strings.Trim(p, "/")
	if p == "/" {
		return "/storage"
	}
	return p
}
