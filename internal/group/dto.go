package group

import "github.com/google/uuid"

// CreateGroupRequest represents the request to create a group
type CreateGroupRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description *string `json:"description,omitempty"`
	IsTemporary bool    `json:"is_temporary"`
}

// UpdateGroupRequest represents the request to update a group
type UpdateGroupRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty"`
}

// AddMemberRequest represents the request to add a member to a group
type AddMemberRequest struct {
	UserID uuid.UUID  `json:"user_id" validate:"required"`
	Role   MemberRole `json:"role,omitempty"`
}

// UpdateMemberRequest represents the request to update a member
type UpdateMemberRequest struct {
	Status *MemberStatus `json:"status,omitempty"`
	Role   *MemberRole   `json:"role,omitempty"`
}

// GroupResponse represents the response for a group
type GroupResponse struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Description *string                `json:"description,omitempty"`
	IsTemporary bool                   `json:"is_temporary"`
	CreatedAt   string                 `json:"created_at"`
	Members     []*GroupMemberResponse `json:"members,omitempty"`
}

// GroupMemberResponse represents the response for a group member
type GroupMemberResponse struct {
	ID       string       `json:"id"`
	GroupID  string       `json:"group_id"`
	UserID   string       `json:"user_id"`
	Username string       `json:"username,omitempty"`
	Email    string       `json:"email,omitempty"`
	Status   MemberStatus `json:"status"`
	Role     MemberRole   `json:"role"`
	JoinedAt string       `json:"joined_at"`
}

// ToResponse converts a Group model to a GroupResponse DTO
func (g *Group) ToResponse() *GroupResponse {
	return &GroupResponse{
		ID:          g.ID.String(),
		Name:        g.Name,
		Description: g.Description,
		IsTemporary: g.IsTemporary,
		CreatedAt:   g.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToResponse converts a GroupMember model to a GroupMemberResponse DTO
func (m *GroupMember) ToResponse() *GroupMemberResponse {
	return &GroupMemberResponse{
		ID:       m.ID.String(),
		GroupID:  m.GroupID.String(),
		UserID:   m.UserID.String(),
		Username: m.Username,
		Email:    m.Email,
		Status:   m.Status,
		Role:     m.Role,
		JoinedAt: m.JoinedAt.Format("2006-01-02T15:04:05Z"),
	}
}
