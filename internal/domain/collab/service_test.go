package collab_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rpggio/storyverse/internal/domain/collab"
	"github.com/stretchr/testify/require"
)

func newProject(t *testing.T, svc *collab.Service) collab.Project {
	t.Helper()
	p, err := svc.CreateProject(context.Background(), collab.CreateProjectRequest{
		UniverseID:    "u1",
		Title:         "Writers Room",
		OwnerUserID:   "owner",
		OwnerUsername: "Olive",
	})
	require.NoError(t, err)
	return p
}

func TestRole_Ordering(t *testing.T) {
	require.True(t, collab.RoleAdmin.AtLeast(collab.RoleEdit))
	require.True(t, collab.RoleComment.AtLeast(collab.RoleComment))
	require.False(t, collab.RoleView.AtLeast(collab.RoleComment))
	require.False(t, collab.Role(0).AtLeast(collab.RoleView))

	r, err := collab.ParseRole("edit")
	require.NoError(t, err)
	require.Equal(t, collab.RoleEdit, r)
	_, err = collab.ParseRole("owner")
	require.ErrorIs(t, err, collab.ErrInvalidInput)
}

func TestRole_JSON(t *testing.T) {
	data, err := json.Marshal(collab.Collaborator{UserID: "a", Role: collab.RoleComment})
	require.NoError(t, err)
	require.Contains(t, string(data), `"role":"comment"`)

	var c collab.Collaborator
	require.NoError(t, json.Unmarshal(data, &c))
	require.Equal(t, collab.RoleComment, c.Role)
}

func TestCollabService_CreateProjectOwnerIsAdmin(t *testing.T) {
	svc := collab.NewService(nil, nil, nil)
	p := newProject(t, svc)

	require.Equal(t, collab.RoleAdmin, p.Owner.Role)
	require.Equal(t, collab.StatusActive, p.Owner.Status)
	require.False(t, p.Owner.JoinedAt.IsZero())
	require.Empty(t, p.Collaborators)

	_, err := svc.CreateProject(context.Background(), collab.CreateProjectRequest{Title: "x"})
	require.ErrorIs(t, err, collab.ErrInvalidInput)
}

func TestCollabService_OneEntryPerUser(t *testing.T) {
	ctx := context.Background()
	svc := collab.NewService(nil, nil, nil)
	p := newProject(t, svc)

	_, err := svc.InviteCollaborator(ctx, p.ID, collab.InviteRequest{UserID: "bea", Role: collab.RoleEdit})
	require.NoError(t, err)

	_, err = svc.InviteCollaborator(ctx, p.ID, collab.InviteRequest{UserID: "bea", Role: collab.RoleView})
	require.ErrorIs(t, err, collab.ErrAlreadyMember)
	_, err = svc.InviteCollaborator(ctx, p.ID, collab.InviteRequest{UserID: "owner", Role: collab.RoleView})
	require.ErrorIs(t, err, collab.ErrAlreadyMember)

	got, err := svc.GetProject(p.ID)
	require.NoError(t, err)
	require.Len(t, got.Collaborators, 1)
}

func TestCollabService_InviteLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := collab.NewService(nil, nil, nil)
	p := newProject(t, svc)

	_, err := svc.InviteCollaborator(ctx, p.ID, collab.InviteRequest{UserID: "bea", Role: collab.RoleComment})
	require.NoError(t, err)
	require.False(t, svc.CanAccess(p.ID, "bea", collab.RoleView))

	p, err = svc.RespondToInvite(ctx, p.ID, "bea", true)
	require.NoError(t, err)
	require.Equal(t, collab.StatusActive, p.Collaborators[0].Status)
	require.False(t, p.Collaborators[0].JoinedAt.IsZero())
	require.True(t, svc.CanAccess(p.ID, "bea", collab.RoleComment))
	require.False(t, svc.CanAccess(p.ID, "bea", collab.RoleEdit))

	_, err = svc.RespondToInvite(ctx, p.ID, "bea", false)
	require.ErrorIs(t, err, collab.ErrNotInvited)

	_, err = svc.UpdateRole(ctx, p.ID, "bea", collab.RoleEdit)
	require.NoError(t, err)
	require.True(t, svc.CanAccess(p.ID, "bea", collab.RoleEdit))

	_, err = svc.UpdateRole(ctx, p.ID, "owner", collab.RoleView)
	require.ErrorIs(t, err, collab.ErrOwnerImmutable)

	p, err = svc.RemoveCollaborator(ctx, p.ID, "bea")
	require.NoError(t, err)
	require.Empty(t, p.Collaborators)

	_, err = svc.RemoveCollaborator(ctx, p.ID, "bea")
	require.ErrorIs(t, err, collab.ErrCollaboratorNotFound)
	_, err = svc.RemoveCollaborator(ctx, p.ID, "owner")
	require.ErrorIs(t, err, collab.ErrOwnerImmutable)
}

func TestCollabService_ListProjects(t *testing.T) {
	ctx := context.Background()
	svc := collab.NewService(nil, nil, nil)
	p := newProject(t, svc)

	_, err := svc.InviteCollaborator(ctx, p.ID, collab.InviteRequest{UserID: "bea", Role: collab.RoleView})
	require.NoError(t, err)
	_, err = svc.InviteCollaborator(ctx, p.ID, collab.InviteRequest{UserID: "cal", Role: collab.RoleView})
	require.NoError(t, err)
	_, err = svc.RespondToInvite(ctx, p.ID, "cal", false)
	require.NoError(t, err)

	require.Len(t, svc.ListProjects("owner"), 1)
	require.Len(t, svc.ListProjects("bea"), 1)
	require.Empty(t, svc.ListProjects("cal"))
	require.Len(t, svc.ListProjects(""), 1)
}

func TestCollabService_CommentThreads(t *testing.T) {
	ctx := context.Background()
	svc := collab.NewService(nil, nil, nil)
	p := newProject(t, svc)

	root, err := svc.AddComment(ctx, p.ID, collab.CommentRequest{UserID: "owner", Content: "Chapter one drags"})
	require.NoError(t, err)

	thread, err := svc.Reply(ctx, root.ID, collab.CommentRequest{UserID: "owner", Content: "Agreed"})
	require.NoError(t, err)
	require.Len(t, thread.Replies, 1)
	replyID := thread.Replies[0].ID

	thread, err = svc.Reply(ctx, replyID, collab.CommentRequest{UserID: "owner", Content: "Cut the prologue"})
	require.NoError(t, err)
	require.Len(t, thread.Replies[0].Replies, 1)

	thread, err = svc.ResolveComment(ctx, replyID, true)
	require.NoError(t, err)
	require.True(t, thread.Replies[0].Resolved)
	require.False(t, thread.Resolved)

	require.NoError(t, svc.DeleteComment(ctx, replyID))
	threads := svc.ListComments(p.ID)
	require.Len(t, threads, 1)
	require.Empty(t, threads[0].Replies)

	require.NoError(t, svc.DeleteComment(ctx, root.ID))
	require.Empty(t, svc.ListComments(p.ID))
	require.ErrorIs(t, svc.DeleteComment(ctx, root.ID), collab.ErrCommentNotFound)
}

func TestCollabService_CommentRequiresRole(t *testing.T) {
	ctx := context.Background()
	svc := collab.NewService(nil, nil, nil)
	p := newProject(t, svc)

	_, err := svc.InviteCollaborator(ctx, p.ID, collab.InviteRequest{UserID: "viewer", Role: collab.RoleView})
	require.NoError(t, err)
	_, err = svc.RespondToInvite(ctx, p.ID, "viewer", true)
	require.NoError(t, err)

	_, err = svc.AddComment(ctx, p.ID, collab.CommentRequest{UserID: "viewer", Content: "hi"})
	require.ErrorIs(t, err, collab.ErrForbidden)
	_, err = svc.AddComment(ctx, "missing", collab.CommentRequest{UserID: "owner", Content: "hi"})
	require.ErrorIs(t, err, collab.ErrProjectNotFound)
	_, err = svc.AddComment(ctx, p.ID, collab.CommentRequest{UserID: "owner"})
	require.ErrorIs(t, err, collab.ErrInvalidInput)
}

func TestCollabService_DeleteProjectDropsComments(t *testing.T) {
	ctx := context.Background()
	svc := collab.NewService(nil, nil, nil)
	p := newProject(t, svc)
	svc.SetCurrentProject(&p)

	_, err := svc.AddComment(ctx, p.ID, collab.CommentRequest{UserID: "owner", Content: "note"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProject(ctx, p.ID))
	require.Empty(t, svc.ListComments(p.ID))
	_, ok := svc.CurrentProject()
	require.False(t, ok)
	require.ErrorIs(t, svc.DeleteProject(ctx, p.ID), collab.ErrProjectNotFound)
}

func TestCollabService_UpdateProject(t *testing.T) {
	ctx := context.Background()
	svc := collab.NewService(nil, nil, nil)
	p := newProject(t, svc)

	title := "Renamed"
	got, err := svc.UpdateProject(ctx, p.ID, collab.ProjectPatch{Title: &title})
	require.NoError(t, err)
	require.Equal(t, "Renamed", got.Title)
	require.Equal(t, p.Owner, got.Owner)
	require.True(t, got.UpdatedAt.After(p.UpdatedAt))

	_, err = svc.UpdateProject(ctx, "missing", collab.ProjectPatch{})
	require.ErrorIs(t, err, collab.ErrProjectNotFound)
}
