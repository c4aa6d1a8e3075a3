package sochx

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// JourneyStage is the research pipeline stage enumeration shared by user
// profiles and project stage tracking.
type JourneyStage string

const (
	StageExploration      JourneyStage = "EXPLORATION"
	StageTopicDiscovery   JourneyStage = "TOPIC_DISCOVERY"
	StageLiteratureReview JourneyStage = "LITERATURE_REVIEW"
	StageMethodology      JourneyStage = "METHODOLOGY"
	StageExecution        JourneyStage = "EXECUTION"
	StageDocumentation    JourneyStage = "DOCUMENTATION"
	StagePublication      JourneyStage = "PUBLICATION"
)

// AllJourneyStages returns the pipeline stages in order. Project creation
// seeds one progress row per stage.
func AllJourneyStages() []JourneyStage {
	return []JourneyStage{
		StageExploration,
		StageTopicDiscovery,
		StageLiteratureReview,
		StageMethodology,
		StageExecution,
		StageDocumentation,
		StagePublication,
	}
}

// IsValid checks membership in the closed stage set.
func (s JourneyStage) IsValid() bool {
	switch s {
	case StageExploration, StageTopicDiscovery, StageLiteratureReview,
		StageMethodology, StageExecution, StageDocumentation, StagePublication:
		return true
	default:
		return false
	}
}

// NotificationType enumerates server-generated notification kinds.
type NotificationType string

const (
	NotificationMilestoneCompleted     NotificationType = "MILESTONE_COMPLETED"
	NotificationCommunityReply         NotificationType = "COMMUNITY_REPLY"
	NotificationResourceRecommendation NotificationType = "RESOURCE_RECOMMENDATION"
)

// User is the identity model.
type User struct {
	bun.BaseModel        `bun:"table:users,alias:usr"`
	ID                   uuid.UUID    `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email                string       `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash         string       `bun:"password_hash" json:"-"`
	GoogleID             string       `bun:"google_id,nullzero" json:"-"`
	FullName             string       `bun:"full_name,notnull" json:"full_name,omitempty"`
	Role                 UserRole     `bun:"user_role,notnull" json:"role,omitempty"`
	AcademicLevel        string       `bun:"academic_level" json:"academic_level,omitempty"`
	IntendedFieldOfStudy string       `bun:"intended_field_of_study" json:"intended_field_of_study,omitempty"`
	ResearchInterests    []string     `bun:"research_interests" json:"research_interests,omitempty"`
	SkillTags            []string     `bun:"skill_tags" json:"skill_tags,omitempty"`
	ProfilePhotoURL      string       `bun:"profile_photo_url" json:"profile_photo_url,omitempty"`
	CurrentJourneyStage  JourneyStage `bun:"current_journey_stage" json:"current_journey_stage,omitempty"`
	CreatedAt            *time.Time   `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt            *time.Time   `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

type userIdentity struct {
	user *User
}

func (i userIdentity) ID() string     { return i.user.ID.String() }
func (i userIdentity) Email() string  { return i.user.Email }
func (i userIdentity) Role() UserRole { return i.user.Role }

// AsIdentity adapts the record to the Identity view TokenService consumes.
func (u *User) AsIdentity() Identity {
	return userIdentity{user: u}
}

// PasswordResetToken is a single-use, time-boxed recovery token. Expired rows
// are treated as invalid rather than actively purged.
type PasswordResetToken struct {
	bun.BaseModel `bun:"table:password_reset_tokens,alias:prt"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Token         string     `bun:"token,notnull,unique" json:"-"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User          *User      `bun:"rel:belongs-to,join:user_id=id" json:"-"`
	ExpiresAt     time.Time  `bun:"expires_at,notnull" json:"expires_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Expired reports whether the token is past its expiry at the given instant.
func (t *PasswordResetToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}

// Notification is the persisted record behind the realtime push. ReadAt stays
// nil until the owner marks it read.
type Notification struct {
	bun.BaseModel `bun:"table:notifications,alias:ntf"`
	ID            uuid.UUID        `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID        `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	Type          NotificationType `bun:"type,notnull" json:"type,omitempty"`
	Message       string           `bun:"message,notnull" json:"message,omitempty"`
	Payload       map[string]any   `bun:"payload" json:"payload,omitempty"`
	CreatedAt     *time.Time       `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	ReadAt        *time.Time       `bun:"read_at,nullzero" json:"read_at"`
}

// Project is a research project with a generated stage pipeline.
type Project struct {
	bun.BaseModel `bun:"table:projects,alias:prj"`
	ID            uuid.UUID        `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	OwnerID       uuid.UUID        `bun:"owner_id,notnull,type:uuid" json:"owner_id,omitempty"`
	Title         string           `bun:"title,notnull" json:"title,omitempty"`
	Description   string           `bun:"description" json:"description,omitempty"`
	Field         string           `bun:"field" json:"field,omitempty"`
	Objective     string           `bun:"objective" json:"objective,omitempty"`
	ProposalURL   string           `bun:"proposal_url" json:"proposal_url,omitempty"`
	CurrentStage  JourneyStage     `bun:"current_stage" json:"current_stage,omitempty"`
	Stages        []*StageProgress `bun:"rel:has-many,join:id=project_id" json:"stages,omitempty"`
	CreatedAt     *time.Time       `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time       `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// StageProgress tracks completion of one pipeline stage for one project.
// (project_id, stage) is unique.
type StageProgress struct {
	bun.BaseModel    `bun:"table:stage_progress,alias:stp"`
	ID               uuid.UUID    `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	ProjectID        uuid.UUID    `bun:"project_id,notnull,type:uuid,unique:project_stage" json:"project_id,omitempty"`
	Stage            JourneyStage `bun:"stage,notnull,unique:project_stage" json:"stage,omitempty"`
	Completion       int          `bun:"completion,notnull" json:"completion"`
	MilestoneTitle   string       `bun:"milestone_title" json:"milestone_title,omitempty"`
	MilestoneDueDate *time.Time   `bun:"milestone_due_date,nullzero" json:"milestone_due_date,omitempty"`
	Notes            string       `bun:"notes" json:"notes,omitempty"`
	UpdatedAt        *time.Time   `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// DiscussionThread is a community discussion topic.
type DiscussionThread struct {
	bun.BaseModel `bun:"table:discussion_threads,alias:dth"`
	ID            uuid.UUID         `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Title         string            `bun:"title,notnull" json:"title,omitempty"`
	Category      string            `bun:"category,notnull" json:"category,omitempty"`
	CreatedByID   uuid.UUID         `bun:"created_by_id,notnull,type:uuid" json:"created_by_id,omitempty"`
	Posts         []*DiscussionPost `bun:"rel:has-many,join:id=thread_id" json:"posts,omitempty"`
	CreatedAt     *time.Time        `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time        `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// DiscussionPost is a post in a thread; ParentID links replies.
type DiscussionPost struct {
	bun.BaseModel `bun:"table:discussion_posts,alias:dpo"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	ThreadID      uuid.UUID  `bun:"thread_id,notnull,type:uuid" json:"thread_id,omitempty"`
	AuthorID      uuid.UUID  `bun:"author_id,notnull,type:uuid" json:"author_id,omitempty"`
	ParentID      *uuid.UUID `bun:"parent_id,nullzero,type:uuid" json:"parent_id,omitempty"`
	Content       string     `bun:"content,notnull" json:"content,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Resource is a curated learning resource published by admins.
type Resource struct {
	bun.BaseModel `bun:"table:resources,alias:res"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Title         string     `bun:"title,notnull" json:"title,omitempty"`
	Description   string     `bun:"description" json:"description,omitempty"`
	URL           string     `bun:"url,notnull" json:"url,omitempty"`
	Subject       string     `bun:"subject" json:"subject,omitempty"`
	Difficulty    string     `bun:"difficulty" json:"difficulty,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// ResourceBookmark marks a resource saved by a user; (resource_id, user_id)
// is unique and re-bookmarking is a no-op.
type ResourceBookmark struct {
	bun.BaseModel `bun:"table:resource_bookmarks,alias:rbm"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	ResourceID    uuid.UUID  `bun:"resource_id,notnull,type:uuid,unique:resource_user" json:"resource_id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid,unique:resource_user" json:"user_id,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// ResourceView is an append-only view event.
type ResourceView struct {
	bun.BaseModel `bun:"table:resource_views,alias:rvw"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	ResourceID    uuid.UUID  `bun:"resource_id,notnull,type:uuid" json:"resource_id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}
