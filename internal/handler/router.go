package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/univ-academics-api/internal/middleware"
)

// Handlers groups every HTTP handler mounted under the API prefix.
type Handlers struct {
	Results    *ResultHandler
	Exams      *ExamHandler
	Subjects   *SubjectHandler
	Reports    *ReportHandler
	Attendance *AttendanceHandler
}

// RegisterRoutes mounts the API on group. auth guards every route except the
// signed download; staff guards writes and report generation.
func RegisterRoutes(group *gin.RouterGroup, h Handlers, auth, staff gin.HandlerFunc) {
	group.GET("/export/:token", h.Reports.Download)

	api := group.Group("", auth)

	subjects := api.Group("/subjects")
	subjects.GET("", h.Subjects.List)
	subjects.GET("/:id", h.Subjects.Get)
	subjects.POST("", staff, h.Subjects.Create)
	subjects.PUT("/:id", staff, h.Subjects.Update)
	subjects.POST("/:id/exams/ensure", staff, h.Subjects.EnsureExams)

	exams := api.Group("/exams")
	exams.GET("", h.Exams.List)
	exams.GET("/cohort", h.Exams.Cohort)
	exams.GET("/:id", h.Exams.Get)
	exams.POST("", staff, h.Exams.Create)
	exams.PUT("/:id", staff, h.Exams.Update)
	exams.GET("/:id/results", h.Exams.Results)
	exams.GET("/:id/statistics", middleware.WithResponseMeta(), h.Exams.Statistics)

	results := api.Group("/results")
	results.GET("", h.Results.List)
	results.GET("/:id", h.Results.Get)
	results.POST("", staff, h.Results.Create)
	results.PUT("", staff, h.Results.Upsert)
	results.POST("/bulk", staff, h.Results.Bulk)

	api.GET("/grading/compute", h.Results.Compute)

	reports := api.Group("/reports")
	reports.GET("/exams/summary", middleware.WithResponseMeta(), h.Exams.Summary)
	reports.GET("/students/:id/report-card", h.Reports.ReportCard)
	reports.GET("/report-cards/bulk", staff, h.Reports.BulkReportCards)

	attendance := api.Group("/attendance")
	attendance.GET("/roster", staff, h.Attendance.Roster)
	attendance.GET("/history", h.Attendance.History)
	attendance.POST("/bulk", staff, h.Attendance.Bulk)
}
