package collab

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// Role is a collaborator permission level. Roles are ordered:
// view < comment < edit < admin.
type Role int

const (
	RoleView Role = iota + 1
	RoleComment
	RoleEdit
	RoleAdmin
)

var roleNames = map[Role]string{
	RoleView:    "view",
	RoleComment: "comment",
	RoleEdit:    "edit",
	RoleAdmin:   "admin",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// AtLeast reports whether r grants everything want grants.
func (r Role) AtLeast(want Role) bool {
	return r.Valid() && r >= want
}

// ParseRole converts a role name.
func ParseRole(s string) (Role, error) {
	for r, name := range roleNames {
		if name == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("role %q: %w", s, ErrInvalidInput)
}

func (r Role) MarshalJSON() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("role %d: %w", int(r), ErrInvalidInput)
	}
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// MemberStatus is the state of an invitation.
type MemberStatus string

const (
	StatusActive   MemberStatus = "active"
	StatusInvited  MemberStatus = "invited"
	StatusDeclined MemberStatus = "declined"
)

// Collaborator is a user's membership in a project.
type Collaborator struct {
	ID       string       `json:"id"`
	UserID   string       `json:"user_id"`
	Username string       `json:"username"`
	Email    string       `json:"email"`
	Role     Role         `json:"role"`
	Status   MemberStatus `json:"status"`
	JoinedAt time.Time    `json:"joined_at"`
}

// Project groups collaborators working on one universe. A user appears at
// most once across Owner and Collaborators.
type Project struct {
	ID            string         `json:"id"`
	UniverseID    string         `json:"universe_id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Owner         Collaborator   `json:"owner"`
	Collaborators []Collaborator `json:"collaborators"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (p Project) clone() Project {
	p.Collaborators = slices.Clone(p.Collaborators)
	return p
}

// member returns the index of userID in Collaborators, or -1.
func (p *Project) member(userID string) int {
	return slices.IndexFunc(p.Collaborators, func(c Collaborator) bool { return c.UserID == userID })
}

// Comment is a threaded remark on a project. Replies nest recursively.
type Comment struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Resolved  bool      `json:"resolved"`
	Replies   []Comment `json:"replies,omitempty"`
}

func (c Comment) clone() Comment {
	if c.Replies != nil {
		replies := make([]Comment, len(c.Replies))
		for i, r := range c.Replies {
			replies[i] = r.clone()
		}
		c.Replies = replies
	}
	return c
}

// find returns the comment with id within the thread rooted at c.
func (c *Comment) find(id string) *Comment {
	if c.ID == id {
		return c
	}
	for i := range c.Replies {
		if found := c.Replies[i].find(id); found != nil {
			return found
		}
	}
	return nil
}

// prune removes the reply with id from the thread rooted at c.
func (c *Comment) prune(id string) bool {
	for i := range c.Replies {
		if c.Replies[i].ID == id {
			c.Replies = slices.Delete(c.Replies, i, i+1)
			return true
		}
		if c.Replies[i].prune(id) {
			return true
		}
	}
	return false
}

// CreateProjectRequest defines project creation inputs.
type CreateProjectRequest struct {
	UniverseID    string
	Title         string
	Description   string
	OwnerUserID   string
	OwnerUsername string
	OwnerEmail    string
}

// ProjectPatch replaces the top-level fields that are set.
type ProjectPatch struct {
	Title       *string
	Description *string
}

// InviteRequest defines an invitation.
type InviteRequest struct {
	UserID   string
	Username string
	Email    string
	Role     Role
}

// CommentRequest defines a new comment or reply.
type CommentRequest struct {
	UserID   string
	Username string
	Content  string
}
