package handler

import (
	"bytes"
	"strings"
	"time"

	"github.com/solutions/job-portal/internal/protodef/model"
)

const exportDateLayout = "1/2/2006"

var exportHeader = []string{
	"Name", "Email", "Phone", "Department", "Status",
	"Applied Date", "Interview Date", "Interview Time",
}

// ExportCSV 表头不加引号，数据行每个字段都加引号。
func ExportCSV(apps []model.ApplicationDo, loc *time.Location) []byte {
	if loc == nil {
		loc = time.Local
	}
	buf := &bytes.Buffer{}
	buf.WriteString(strings.Join(exportHeader, ","))
	buf.WriteByte('\n')
	for _, app := range apps {
		interviewDate := ""
		if app.InterviewDate != nil {
			interviewDate = app.InterviewDate.In(loc).Format(exportDateLayout)
		}
		row := []string{
			app.Name,
			app.Email,
			app.Phone,
			app.DisplayDepartment(),
			string(app.Status),
			app.AppliedAt.In(loc).Format(exportDateLayout),
			interviewDate,
			app.InterviewTime,
		}
		for i, field := range row {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('"')
			buf.WriteString(strings.ReplaceAll(field, `"`, `""`))
			buf.WriteByte('"')
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
