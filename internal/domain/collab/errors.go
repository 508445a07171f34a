package collab

import "errors"

var (
	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrCollaboratorNotFound indicates the user is not a member of the project.
	ErrCollaboratorNotFound = errors.New("collaborator not found")
	// ErrAlreadyMember indicates the user already has an entry in the project.
	ErrAlreadyMember = errors.New("user is already a member of this project")
	// ErrOwnerImmutable indicates an attempt to change or remove the project owner.
	ErrOwnerImmutable = errors.New("project owner cannot be changed")
	// ErrNotInvited indicates a response to an invitation that is not pending.
	ErrNotInvited = errors.New("no pending invitation")
	// ErrCommentNotFound indicates the comment doesn't exist.
	ErrCommentNotFound = errors.New("comment not found")
	// ErrForbidden indicates the user lacks the required role.
	ErrForbidden = errors.New("insufficient project role")
	// ErrInvalidInput indicates invalid collaboration input.
	ErrInvalidInput = errors.New("invalid collaboration input")
)
