package collab

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/storyverse/internal/domain/activity"
	"github.com/rpggio/storyverse/internal/repository"
	"github.com/rpggio/storyverse/internal/store"
)

// ActivityLog records collaboration events.
type ActivityLog interface {
	Log(ctx context.Context, entry *activity.Entry) error
}

// Service handles collaboration projects, their members and comment threads.
// Member lists are edited on a copy of the project and replaced wholesale.
type Service struct {
	projects *store.Store[Project]
	comments *store.Store[Comment]
	activity ActivityLog
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a new collaboration service. activity may be nil.
func NewService(gw repository.Gateway, activity ActivityLog, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		projects: store.New(store.Options[Project]{
			Name:    "project",
			Gateway: gw,
			Logger:  logger,
			Key:     func(p Project) string { return p.ID },
			Prepare: func(p *Project, id string, now time.Time) {
				p.ID = id
				p.CreatedAt = now
				p.UpdatedAt = now
				p.Owner.JoinedAt = now
			},
			Touch: func(p *Project, now time.Time) { p.UpdatedAt = now },
			Clone: Project.clone,
		}),
		comments: store.New(store.Options[Comment]{
			Name:    "comment",
			Gateway: gw,
			Logger:  logger,
			Key:     func(c Comment) string { return c.ID },
			Prepare: func(c *Comment, id string, now time.Time) {
				c.ID = id
				c.Timestamp = now
			},
			Clone: Comment.clone,
		}),
		activity: activity,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateProject creates a project owned by the requesting user with admin rights.
func (s *Service) CreateProject(ctx context.Context, req CreateProjectRequest) (Project, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.OwnerUserID) == "" {
		return Project{}, fmt.Errorf("title and owner are required: %w", ErrInvalidInput)
	}
	p, err := s.projects.Create(ctx, Project{
		UniverseID:  req.UniverseID,
		Title:       req.Title,
		Description: req.Description,
		Owner: Collaborator{
			ID:       uuid.NewString(),
			UserID:   req.OwnerUserID,
			Username: req.OwnerUsername,
			Email:    req.OwnerEmail,
			Role:     RoleAdmin,
			Status:   StatusActive,
		},
		Collaborators: []Collaborator{},
	})
	if err != nil {
		return Project{}, fmt.Errorf("creating project: %w", err)
	}
	s.record(ctx, activity.KindProjectCreated, p.ID, p.Owner.UserID, "created project "+p.Title)
	return p, nil
}

// GetProject fetches a project by ID.
func (s *Service) GetProject(id string) (Project, error) {
	p, ok := s.projects.Get(id)
	if !ok {
		return Project{}, ErrProjectNotFound
	}
	return p, nil
}

// ListProjects returns the projects userID owns or has not declined.
// An empty userID lists every project.
func (s *Service) ListProjects(userID string) []Project {
	return s.projects.List(func(p Project) bool {
		if userID == "" || p.Owner.UserID == userID {
			return true
		}
		i := p.member(userID)
		return i >= 0 && p.Collaborators[i].Status != StatusDeclined
	})
}

// UpdateProject applies patch to a project.
func (s *Service) UpdateProject(ctx context.Context, id string, patch ProjectPatch) (Project, error) {
	p, err := s.projects.Update(ctx, id, func(p *Project) {
		if patch.Title != nil {
			p.Title = *patch.Title
		}
		if patch.Description != nil {
			p.Description = *patch.Description
		}
	})
	if err != nil {
		return Project{}, mapError("updating project", err)
	}
	return p, nil
}

// DeleteProject removes a project and its comment threads.
func (s *Service) DeleteProject(ctx context.Context, id string) error {
	if err := s.projects.Remove(ctx, id); err != nil {
		return mapError("deleting project", err)
	}
	remaining := s.comments.List(func(c Comment) bool { return c.ProjectID != id })
	if err := s.comments.Replace(remaining); err != nil {
		return fmt.Errorf("deleting project comments: %w", err)
	}
	return nil
}

// InviteCollaborator adds a pending member.
func (s *Service) InviteCollaborator(ctx context.Context, projectID string, req InviteRequest) (Project, error) {
	if strings.TrimSpace(req.UserID) == "" || !req.Role.Valid() {
		return Project{}, fmt.Errorf("user and role are required: %w", ErrInvalidInput)
	}
	p, err := s.projects.Modify(ctx, projectID, func(p *Project) error {
		if p.Owner.UserID == req.UserID || p.member(req.UserID) >= 0 {
			return ErrAlreadyMember
		}
		p.Collaborators = append(p.Collaborators, Collaborator{
			ID:       uuid.NewString(),
			UserID:   req.UserID,
			Username: req.Username,
			Email:    req.Email,
			Role:     req.Role,
			Status:   StatusInvited,
		})
		return nil
	})
	if err != nil {
		return Project{}, mapError("inviting collaborator", err)
	}
	s.record(ctx, activity.KindCollaboratorInvited, p.ID, p.Owner.UserID, "invited "+req.Username)
	return p, nil
}

// RespondToInvite accepts or declines a pending invitation.
func (s *Service) RespondToInvite(ctx context.Context, projectID, userID string, accept bool) (Project, error) {
	p, err := s.editMember(ctx, projectID, userID, func(c *Collaborator) error {
		if c.Status != StatusInvited {
			return ErrNotInvited
		}
		if accept {
			c.Status = StatusActive
			c.JoinedAt = s.now()
		} else {
			c.Status = StatusDeclined
		}
		return nil
	})
	if err != nil {
		return Project{}, mapError("responding to invite", err)
	}
	return p, nil
}

// UpdateRole changes a member's role.
func (s *Service) UpdateRole(ctx context.Context, projectID, userID string, role Role) (Project, error) {
	if !role.Valid() {
		return Project{}, fmt.Errorf("role %d: %w", int(role), ErrInvalidInput)
	}
	p, err := s.editMember(ctx, projectID, userID, func(c *Collaborator) error {
		c.Role = role
		return nil
	})
	if err != nil {
		return Project{}, mapError("updating role", err)
	}
	return p, nil
}

// RemoveCollaborator drops a member. The owner cannot be removed.
func (s *Service) RemoveCollaborator(ctx context.Context, projectID, userID string) (Project, error) {
	p, err := s.projects.Modify(ctx, projectID, func(p *Project) error {
		if p.Owner.UserID == userID {
			return ErrOwnerImmutable
		}
		i := p.member(userID)
		if i < 0 {
			return ErrCollaboratorNotFound
		}
		members := make([]Collaborator, 0, len(p.Collaborators)-1)
		members = append(members, p.Collaborators[:i]...)
		p.Collaborators = append(members, p.Collaborators[i+1:]...)
		return nil
	})
	if err != nil {
		return Project{}, mapError("removing collaborator", err)
	}
	return p, nil
}

// CanAccess reports whether userID holds at least role in the project. The
// owner always can; other members must be active.
func (s *Service) CanAccess(projectID, userID string, role Role) bool {
	p, ok := s.projects.Get(projectID)
	if !ok {
		return false
	}
	if p.Owner.UserID == userID {
		return true
	}
	i := p.member(userID)
	if i < 0 {
		return false
	}
	c := p.Collaborators[i]
	return c.Status == StatusActive && c.Role.AtLeast(role)
}

// AddComment starts a thread. The author needs at least the comment role.
func (s *Service) AddComment(ctx context.Context, projectID string, req CommentRequest) (Comment, error) {
	if err := s.checkComment(projectID, req); err != nil {
		return Comment{}, err
	}
	c, err := s.comments.Create(ctx, Comment{
		ProjectID: projectID,
		UserID:    req.UserID,
		Username:  req.Username,
		Content:   req.Content,
	})
	if err != nil {
		return Comment{}, fmt.Errorf("adding comment: %w", err)
	}
	s.record(ctx, activity.KindCommentAdded, c.ID, req.UserID, "commented on "+projectID)
	return c, nil
}

// Reply appends a reply to any comment in a thread and returns the updated thread.
func (s *Service) Reply(ctx context.Context, commentID string, req CommentRequest) (Comment, error) {
	root, ok := s.threadOf(commentID)
	if !ok {
		return Comment{}, ErrCommentNotFound
	}
	if err := s.checkComment(root.ProjectID, req); err != nil {
		return Comment{}, err
	}
	reply := Comment{
		ID:        uuid.NewString(),
		ProjectID: root.ProjectID,
		UserID:    req.UserID,
		Username:  req.Username,
		Content:   req.Content,
		Timestamp: s.now(),
	}
	thread, err := s.comments.Modify(ctx, root.ID, func(c *Comment) error {
		parent := c.find(commentID)
		if parent == nil {
			return ErrCommentNotFound
		}
		parent.Replies = append(parent.Replies, reply)
		return nil
	})
	if err != nil {
		return Comment{}, mapCommentError("replying to comment", err)
	}
	return thread, nil
}

// ResolveComment sets the resolved flag of any comment in a thread.
func (s *Service) ResolveComment(ctx context.Context, commentID string, resolved bool) (Comment, error) {
	root, ok := s.threadOf(commentID)
	if !ok {
		return Comment{}, ErrCommentNotFound
	}
	thread, err := s.comments.Modify(ctx, root.ID, func(c *Comment) error {
		target := c.find(commentID)
		if target == nil {
			return ErrCommentNotFound
		}
		target.Resolved = resolved
		return nil
	})
	if err != nil {
		return Comment{}, mapCommentError("resolving comment", err)
	}
	return thread, nil
}

// DeleteComment removes a thread, or a reply and everything beneath it.
func (s *Service) DeleteComment(ctx context.Context, commentID string) error {
	root, ok := s.threadOf(commentID)
	if !ok {
		return ErrCommentNotFound
	}
	if root.ID == commentID {
		if err := s.comments.Remove(ctx, commentID); err != nil {
			return mapCommentError("deleting comment", err)
		}
		return nil
	}
	_, err := s.comments.Modify(ctx, root.ID, func(c *Comment) error {
		if !c.prune(commentID) {
			return ErrCommentNotFound
		}
		return nil
	})
	if err != nil {
		return mapCommentError("deleting comment", err)
	}
	return nil
}

// ListComments returns a project's threads, oldest first.
func (s *Service) ListComments(projectID string) []Comment {
	return s.comments.List(func(c Comment) bool { return c.ProjectID == projectID })
}

// SetCurrentProject focuses a project; nil clears the focus.
func (s *Service) SetCurrentProject(p *Project) {
	s.projects.SetCurrent(p)
}

// CurrentProject returns the focused project.
func (s *Service) CurrentProject() (Project, bool) {
	return s.projects.Current()
}

// IsLoading reports whether a project or comment operation is in flight.
func (s *Service) IsLoading() bool {
	return s.projects.IsLoading() || s.comments.IsLoading()
}

func (s *Service) editMember(ctx context.Context, projectID, userID string, edit func(*Collaborator) error) (Project, error) {
	return s.projects.Modify(ctx, projectID, func(p *Project) error {
		if p.Owner.UserID == userID {
			return ErrOwnerImmutable
		}
		i := p.member(userID)
		if i < 0 {
			return ErrCollaboratorNotFound
		}
		return edit(&p.Collaborators[i])
	})
}

func (s *Service) checkComment(projectID string, req CommentRequest) error {
	if strings.TrimSpace(req.Content) == "" || strings.TrimSpace(req.UserID) == "" {
		return fmt.Errorf("author and content are required: %w", ErrInvalidInput)
	}
	if _, ok := s.projects.Get(projectID); !ok {
		return ErrProjectNotFound
	}
	if !s.CanAccess(projectID, req.UserID, RoleComment) {
		return ErrForbidden
	}
	return nil
}

func (s *Service) threadOf(commentID string) (Comment, bool) {
	for _, c := range s.comments.List(nil) {
		if c.find(commentID) != nil {
			return c, true
		}
	}
	return Comment{}, false
}

func (s *Service) record(ctx context.Context, kind activity.Kind, entityID, actorID, summary string) {
	if s.activity == nil {
		return
	}
	entry := &activity.Entry{Kind: kind, EntityID: entityID, ActorID: actorID, Summary: summary}
	if err := s.activity.Log(ctx, entry); err != nil {
		s.logger.Warn("failed to log activity", "kind", kind, "entity_id", entityID, "error", err)
	}
}

func mapError(op string, err error) error {
	return mapNotFound(op, err, ErrProjectNotFound)
}

func mapCommentError(op string, err error) error {
	return mapNotFound(op, err, ErrCommentNotFound)
}

func mapNotFound(op string, err, notFound error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, notFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
