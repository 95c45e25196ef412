package course

import (
	"time"

	"gorm.io/gorm"
)

// BlockType enum values
const (
	BlockTypeText  = "TEXT"
	BlockTypeVideo = "VIDEO"
	BlockTypeImage = "IMAGE"
	BlockTypeQuiz  = "QUIZ"
)

// ContentBlock represents a playback unit within a module
type ContentBlock struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null"`
	ModuleID    uint   `json:"module_id" gorm:"index;not null"`
	Title       string `json:"title"`
	Description string `json:"description"`
	BlockType   string `json:"block_type" gorm:"default:'TEXT'"` // TEXT, VIDEO, IMAGE, QUIZ
	TextContent string `json:"text_content" gorm:"type:text"`    // for TEXT type
	VideoURL    string `json:"video_url"`                        // for VIDEO type
	ImageURL    string `json:"image_url"`                        // for IMAGE type
	OrderIndex  int    `json:"order_index" gorm:"default:0"`
	IsRequired  bool   `json:"is_required" gorm:"default:true"` // counts toward module completion
	IsPublished bool   `json:"is_published" gorm:"default:false"`
	IsDeleted   bool   `gorm:"default:false"`
}

// BlockCompletion tracks a learner's completion of a content block
type BlockCompletion struct {
	gorm.Model
	UserID         uint       `json:"user_id" gorm:"index;not null"`
	CourseID       uint       `json:"course_id" gorm:"index;not null"`
	ModuleID       uint       `json:"module_id" gorm:"index;not null"`
	ContentBlockID uint       `json:"content_block_id" gorm:"index;not null"`
	CompletedAt    *time.Time `json:"completed_at"`
	IsDeleted      bool       `gorm:"default:false"`
}
