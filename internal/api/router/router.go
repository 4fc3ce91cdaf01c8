package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"conser-control/backend/config"
	"conser-control/backend/internal/api/handler"
	"conser-control/backend/internal/api/middleware"
	"conser-control/backend/pkg/jwt"
	"conser-control/backend/pkg/redis"
)

// 配置类写操作的角色
var configRoles = []string{"admin", "sesmt"}

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时限流中间件降级放行
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	if cfg.Server.MaxBodyBytes > 0 {
		r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))
	}

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1（全部需要认证） ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr))
	if cfg.Server.RateLimit > 0 {
		v1.Use(middleware.RateLimit(rdb, cfg.Server.RateLimit, time.Minute))
	}
	writer := middleware.RoleAuth(configRoles...)
	{
		// 部门
		sectors := v1.Group("/sectors")
		{
			sectors.GET("", h.Sector.ListSectors)
			sectors.GET("/:id", h.Sector.GetSector)
			sectors.POST("", writer, h.Sector.CreateSector)
			sectors.PUT("/:id", writer, h.Sector.UpdateSector)
			sectors.PATCH("/:id/active", writer, h.Sector.SetSectorActive)
			sectors.DELETE("/:id", middleware.RoleAuth("admin"), h.Sector.DeleteSector)
		}

		// 体检目录
		exams := v1.Group("/exams")
		{
			exams.GET("", h.Exam.ListExams)
			exams.GET("/:id", h.Exam.GetExam)
			exams.GET("/:id/prices/:provider_id", h.Exam.GetExamPrice)
			exams.POST("", writer, h.Exam.RegisterExam)
			exams.PUT("/:id", writer, h.Exam.UpdateExam)
			exams.PATCH("/:id/active", writer, h.Exam.SetExamActive)
		}

		// EPI 目录
		equipment := v1.Group("/equipment")
		{
			equipment.GET("", h.Equipment.ListEquipment)
			equipment.GET("/:id", h.Equipment.GetEquipment)
			equipment.GET("/:id/mandatory", h.Equipment.IsMandatory)
			equipment.POST("", writer, h.Equipment.RegisterEquipment)
			equipment.PUT("/:id", writer, h.Equipment.UpdateEquipment)
			equipment.PATCH("/:id/active", writer, h.Equipment.SetEquipmentActive)
		}

		// 工服目录
		uniforms := v1.Group("/uniforms")
		{
			uniforms.GET("", h.Equipment.ListUniforms)
			uniforms.GET("/:id", h.Equipment.GetUniform)
			uniforms.POST("", writer, h.Equipment.RegisterUniform)
			uniforms.PUT("/:id", writer, h.Equipment.UpdateUniform)
			uniforms.PATCH("/:id/active", writer, h.Equipment.SetUniformActive)
		}

		// 职能与需求绑定
		functions := v1.Group("/functions")
		{
			functions.GET("", h.Function.ListFunctions)
			functions.GET("/:id", h.Function.GetFunction)
			functions.GET("/:id/requirements", h.Function.GetRequirements)
			functions.GET("/:id/exams/count", h.Function.CountDistinctExams)
			functions.POST("", writer, h.Function.CreateFunction)
			functions.PUT("/:id", writer, h.Function.UpdateFunction)
			functions.PATCH("/:id/active", writer, h.Function.SetFunctionActive)
			functions.PUT("/:id/equipment", writer, h.Function.SetEquipment)
			functions.PUT("/:id/uniforms", writer, h.Function.SetUniforms)
			functions.PUT("/:id/exams/:trigger", writer, h.Function.SetExamsForTrigger)
		}

		// 员工与合规台账
		employees := v1.Group("/employees")
		{
			employees.GET("", h.Employee.ListEmployees)
			employees.GET("/:id", h.Employee.GetEmployee)
			employees.POST("", writer, h.Employee.CreateEmployee)
			employees.PUT("/:id", writer, h.Employee.UpdateEmployee)
			employees.DELETE("/:id", middleware.RoleAuth("admin"), h.Employee.DeleteEmployee)

			employees.GET("/:id/records", h.Compliance.ListRecords)
			employees.GET("/:id/pending", h.Compliance.GetPending)
			employees.POST("/:id/records/exams", writer, h.Compliance.RecordExam)
			employees.POST("/:id/records/equipment", writer, h.Compliance.RecordEquipment)
			employees.POST("/:id/records/documents", writer, h.Compliance.RecordDocument)
		}

		records := v1.Group("/records")
		{
			records.GET("/:id/attachment", h.Compliance.GetAttachmentURL)
			records.PUT("/:id/attachment", writer, h.Compliance.AttachFile)
			records.DELETE("/:id", writer, h.Compliance.DeleteRecord)
		}

		// 文书模板
		templates := v1.Group("/document-templates")
		{
			templates.GET("", h.Document.ListTemplates)
			templates.GET("/:id", h.Document.GetTemplate)
			templates.POST("/:id/preview", h.Document.PreviewTemplate)
			templates.POST("", writer, h.Document.CreateTemplate)
			templates.PUT("/:id", writer, h.Document.UpdateTemplate)
			templates.PATCH("/:id/active", writer, h.Document.SetTemplateActive)
		}

		// 合规参数
		settings := v1.Group("/compliance-settings")
		{
			settings.GET("", h.Setting.GetSetting)
			settings.PUT("", writer, h.Setting.UpdateSetting)
		}

		// 报表
		reports := v1.Group("/reports")
		{
			reports.GET("/pending", writer, h.Export.ExportPending)
			reports.GET("/employees/:id/calendar", h.Export.ExportEmployeeCalendar)
		}
	}

	return r
}
