package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gamerzord/latihan-magang-lms/internal/model"
	"github.com/gamerzord/latihan-magang-lms/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 导出内容以 bytes.Buffer 返回，由 Handler 层设置响应头后写入
type ExportService interface {
	// ExportGradebook 导出课程成绩册为 Excel：行为选课学生，列为课程作业
	ExportGradebook(ctx context.Context, courseID, callerID, callerRole string) (*bytes.Buffer, string, error)
	// ExportSchedule 导出本人日程为 iCalendar
	ExportSchedule(ctx context.Context, userID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	loc    *time.Location
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) ExportService {
	if loc == nil {
		loc = time.UTC
	}
	return &exportService{repo: repo, loc: loc, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportGradebook 导出课程成绩册
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 标题行：课程名称 + 课程编号
//   - 表头：学生 | 邮箱 | 作业1 | 作业2 | ... | 平均分
//   - 单元格：已批改显示分数，否则显示提交状态
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportGradebook(ctx context.Context, courseID, callerID, callerRole string) (*bytes.Buffer, string, error) {
	// 1. 课程与权限
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, "", err
	}
	if !ownsCourse(course, callerID, callerRole) {
		return nil, "", ErrNoPermission
	}

	// 2. 学生、作业、提交
	students, err := s.repo.Enrollment.ListStudents(ctx, courseID)
	if err != nil {
		return nil, "", err
	}
	assignments, err := s.repo.Assignment.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, "", err
	}
	subs, err := s.repo.Submission.List(ctx, repository.SubmissionFilter{CourseID: courseID})
	if err != nil {
		return nil, "", err
	}

	// 索引: "assignmentID:studentID" → submission
	subIndex := make(map[string]*model.Submission, len(subs))
	for i := range subs {
		subIndex[subs[i].AssignmentID+":"+subs[i].StudentID] = &subs[i]
	}

	// 3. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "成绩册"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	lastCol := 2 + len(assignments) // 0-based: 学生, 邮箱, 作业..., 平均分
	f.SetColWidth(sheetName, "A", "A", 20)
	f.SetColWidth(sheetName, "B", "B", 28)
	for i := range assignments {
		col := colName(2 + i)
		f.SetColWidth(sheetName, col, col, 16)
	}
	f.SetColWidth(sheetName, colName(lastCol), colName(lastCol), 10)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s (%s) 成绩册", course.Title, course.CourseCode))
	f.MergeCell(sheetName, "A1", cell(colName(lastCol), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	row := 2
	f.SetCellValue(sheetName, cell("A", row), "学生")
	f.SetCellValue(sheetName, cell("B", row), "邮箱")
	for i, a := range assignments {
		f.SetCellValue(sheetName, cell(colName(2+i), row), fmt.Sprintf("%s (%s)", a.Title, a.AssignmentCode))
	}
	f.SetCellValue(sheetName, cell(colName(lastCol), row), "平均分")
	f.SetCellStyle(sheetName, cell("A", row), cell(colName(lastCol), row), headerStyle)

	// 数据行
	row = 3
	for _, st := range students {
		f.SetCellValue(sheetName, cell("A", row), st.Name)
		f.SetCellValue(sheetName, cell("B", row), st.Email)

		var sum float64
		graded := 0
		for i, a := range assignments {
			target := cell(colName(2+i), row)
			sub, ok := subIndex[a.ID+":"+st.ID]
			switch {
			case !ok:
				f.SetCellValue(sheetName, target, statusLabel(model.SubmissionNotSubmitted))
			case sub.Grade != nil:
				f.SetCellValue(sheetName, target, *sub.Grade)
				sum += *sub.Grade
				graded++
			default:
				f.SetCellValue(sheetName, target, statusLabel(sub.Status))
			}
		}
		if graded > 0 {
			f.SetCellValue(sheetName, cell(colName(lastCol), row), roundTo(sum/float64(graded), 2))
		} else {
			f.SetCellValue(sheetName, cell(colName(lastCol), row), "-")
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("gradebook_%s.xlsx", course.CourseCode)
	return buf, filename, nil
}

func statusLabel(status string) string {
	switch status {
	case model.SubmissionSubmitted:
		return "已提交"
	case model.SubmissionLate:
		return "迟交"
	default:
		return "未提交"
	}
}

func roundTo(v float64, places int) float64 {
	p := 1.0
	for i := 0; i < places; i++ {
		p *= 10
	}
	return float64(int64(v*p+0.5)) / p
}

// ═══════════════════════════════════════════════════════════
// ExportSchedule 导出个人日程为 iCalendar
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportSchedule(ctx context.Context, userID string) (*bytes.Buffer, string, error) {
	events, err := s.repo.ScheduleEvent.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询日程失败", zap.Error(err))
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//latihan-magang-lms//schedule//EN")

	stamp := time.Now().UTC()
	for _, e := range events {
		ev := cal.AddEvent(e.ID + "@lms")
		ev.SetDtStampTime(stamp)
		ev.SetSummary(e.Title)
		if e.AllDay {
			ev.SetAllDayStartAt(e.StartTime.In(s.loc))
			ev.SetAllDayEndAt(e.EndTime.In(s.loc))
		} else {
			ev.SetStartAt(e.StartTime)
			ev.SetEndAt(e.EndTime)
		}
		if e.Description != nil && *e.Description != "" {
			ev.SetDescription(*e.Description)
		}
		ev.SetProperty(ics.ComponentPropertyCategories, e.Category)
		ev.SetProperty(ics.ComponentProperty("COLOR"), e.Color)
	}

	buf := bytes.NewBufferString(cal.Serialize())
	return buf, "schedule.ics", nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
