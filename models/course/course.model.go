package course

import "gorm.io/gorm"

// Course represents a training course assigned to healthcare staff
type Course struct {
	gorm.Model
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	Author          string  `json:"author"`
	Department      string  `json:"department"`                           // target department, empty = all staff
	Duration        int64   `json:"duration" gorm:"default:0"`            // duration in hours
	Status          string  `json:"status" gorm:"default:'DRAFT'"`        // DRAFT, ACTIVE, INACTIVE
	MinOverallScore float64 `json:"min_overall_score" gorm:"default:70"`  // weighted score required to pass the course
	ThumbnailURL    string  `json:"thumbnail_url"`
	IsPublished     bool    `json:"is_published" gorm:"default:false"`
	IsDeleted       bool    `gorm:"default:false"`
}

// Module represents a graded section within a course
type Module struct {
	gorm.Model
	CourseID     uint    `json:"course_id" gorm:"index;not null"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Weight       float64 `json:"weight" gorm:"default:0"`         // percentage contribution to course grade (0-100)
	IsCritical   bool    `json:"is_critical" gorm:"default:false"` // must be passed regardless of weighted score
	PassingScore float64 `json:"passing_score" gorm:"default:70"`  // 0-100
	OrderIndex   int     `json:"order_index" gorm:"default:0"`     // module order in course
	IsDeleted    bool    `gorm:"default:false"`
}
