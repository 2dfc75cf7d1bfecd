package entity

import (
	"time"

	"github.com/google/uuid"
)

type NodeKind string

const (
	NodeKindTheme NodeKind = "theme"
	NodeKindCode  NodeKind = "code"
)

// HierarchyNode is one node of the generated codeframe. Themes have no
// parent; codes have exactly one theme parent.
type HierarchyNode struct {
	Id                 uuid.UUID
	JobId              uuid.UUID
	ParentId           *uuid.UUID
	Name               string
	Kind               NodeKind
	Confidence         float64
	IsVerified         bool
	NeedsReview        bool
	SourceClusterId    *uuid.UUID
	SourceBrandMention string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
