package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobPositionFill(t *testing.T) {
	p := (&JobPositionDo{Title: "Web Dev", TotalPositions: 5, FilledPositions: 2}).Fill()
	assert.Equal(t, 3, p.AvailablePositions)
	assert.Equal(t, "globe", p.Icon)

	p = (&JobPositionDo{Title: "Astronaut", TotalPositions: 1}).Fill()
	assert.Equal(t, DefaultJobIcon, p.Icon)

	p = (&JobPositionDo{Title: "Web Dev", Icon: "code"}).Fill()
	assert.Equal(t, "code", p.Icon)
}

func TestJobPositionOpen(t *testing.T) {
	assert.True(t, (&JobPositionDo{IsActive: true, TotalPositions: 2, FilledPositions: 1}).Open())
	assert.False(t, (&JobPositionDo{IsActive: true, TotalPositions: 2, FilledPositions: 2}).Open())
	assert.False(t, (&JobPositionDo{IsActive: false, TotalPositions: 2}).Open())
}

func TestDocuments(t *testing.T) {
	d := Documents{}
	d.Set(DocumentResume, "resume-1.pdf")
	d.Set(DocumentAadharCard, "aadharCard-1.jpg")
	d.Set("photo", "ignored.jpg")
	assert.Equal(t, "resume-1.pdf", d.Get(DocumentResume))
	assert.Equal(t, []string{"resume-1.pdf", "aadharCard-1.jpg"}, d.Keys())
}

func TestApplicationMapHidesPassword(t *testing.T) {
	app := ApplicationDo{ID: "1", Name: "Jane", Password: "hash", Status: ApplicationStatusPending}
	m := app.Map().Merge(map[string]interface{}{"documentUrls": map[string]string{}})
	assert.NotContains(t, m, "password")
	assert.Equal(t, "Jane", m["name"])
	assert.Contains(t, m, "documentUrls")
}

func TestPaginationAndStats(t *testing.T) {
	assert.Equal(t, Pagination{Current: 2, Total: 3, Count: 21, PerPage: 10}, NewPagination(2, 10, 21))
	assert.Equal(t, 0, NewPagination(1, 10, 0).Total)

	s := ApplicationStats{}
	s.Add(ApplicationStatusPending, 3)
	s.Add(ApplicationStatusAccepted, 1)
	s.Add(ApplicationStatus("Unknown"), 2)
	assert.Equal(t, ApplicationStats{Total: 6, Pending: 3, Accepted: 1}, s)
}

func TestResponseErrorStatus(t *testing.T) {
	assert.Equal(t, 409, NewResponseError(ResponseErrorUsernameTaken, "x").HTTPStatus())
	assert.Equal(t, 500, NewResponseError(999999, "x").HTTPStatus())
}
