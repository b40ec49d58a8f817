package models

import (
	"math"
	"time"
)

// CourseSummary is one entry of the dashboard course list.
// The counters are always produced by Summarize, never edited in place.
type CourseSummary struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Code            string    `json:"code"`
	CreatedAt       time.Time `json:"createdAt"`
	ModuleCount     int       `json:"moduleCount"`
	CompletedTopics int       `json:"completedTopics"`
	TotalTopics     int       `json:"totalTopics"`
}

// Summarize derives the list entry for a course.
func Summarize(c *Course, createdAt time.Time) CourseSummary {
	total, completed := c.Counts()
	return CourseSummary{
		ID:              c.ID,
		Name:            c.Name,
		Code:            c.Code,
		CreatedAt:       createdAt,
		ModuleCount:     len(c.Modules),
		CompletedTopics: completed,
		TotalTopics:     total,
	}
}

// Percent is the rounded completion percentage, 0 for an empty course.
func (s CourseSummary) Percent() int {
	if s.TotalTopics == 0 {
		return 0
	}
	return int(math.Round(float64(s.CompletedTopics) / float64(s.TotalTopics) * 100))
}

// User is the cosmetic signed-in identity. There is no authentication.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}
