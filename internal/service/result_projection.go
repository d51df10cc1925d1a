package service

import (
	"database/sql"
	"errors"

	"github.com/noah-isme/univ-academics-api/internal/dto"
	"github.com/noah-isme/univ-academics-api/internal/models"
	"github.com/noah-isme/univ-academics-api/pkg/grading"
)

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func composeRecord(result models.Result, student *models.Student, exam *models.Exam, subject *models.Subject) models.ResultRecord {
	return models.ResultRecord{
		Result:            result,
		StudentNumber:     student.StudentNumber,
		StudentName:       student.FullName,
		SubjectName:       subject.Name,
		SubjectCode:       subject.Code,
		SubjectTotalMarks: subject.TotalMarks,
		ExamName:          exam.Name,
		ExamType:          exam.ExamType,
		ExamDate:          exam.ExamDate,
		ExamTotalMarks:    exam.TotalMarks,
	}
}

// toResultListItem grades rec against the subject's total marks.
func toResultListItem(rec models.ResultRecord, calc *grading.Calculator) dto.ResultListItem {
	g := calc.Compute(rec.MarksObtained, float64(rec.SubjectTotalMarks))
	return dto.ResultListItem{
		ID:            rec.ID,
		StudentID:     rec.StudentID,
		StudentNumber: rec.StudentNumber,
		StudentName:   rec.StudentName,
		ExamID:        rec.ExamID,
		ExamName:      rec.ExamName,
		ExamType:      rec.ExamType,
		SubjectID:     rec.SubjectID,
		SubjectCode:   rec.SubjectCode,
		SubjectName:   rec.SubjectName,
		MarksObtained: rec.MarksObtained,
		TotalMarks:    rec.SubjectTotalMarks,
		Percentage:    grading.Round(g.Percentage, 2),
		Grade:         g.Grade,
		GradePoint:    g.GradePoint,
		UpdatedAt:     rec.UpdatedAt,
	}
}

func toResultDetail(rec models.ResultRecord, calc *grading.Calculator) dto.ResultDetail {
	return dto.ResultDetail{
		ResultListItem: toResultListItem(rec, calc),
		ExamTypeLabel:  rec.ExamType.Label(),
		ExamDate:       rec.ExamDate,
		ExamTotalMarks: rec.ExamTotalMarks,
		Remarks:        rec.Remarks,
		TeacherComment: rec.TeacherComment,
		GradingTable:   calc.TableName(),
		CreatedAt:      rec.CreatedAt,
	}
}
