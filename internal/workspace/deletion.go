package workspace

import (
	"errors"

	"github.com/lumenhq/workroom/internal/directory"
)

// Deletion workflow: a small state machine layered over the project status.
//
//	Active (any status except deletion_requested)
//	  --RequestDeletion (non-creator, non-admin)--> DeletionRequested
//	  --DeleteImmediately (creator/admin)--------> Deleted (removed)
//	DeletionRequested
//	  --ApproveDeletion (creator/admin)----------> Deleted (removed)
//	  --RejectDeletion (creator/admin)-----------> Active (status "pending")
//
// RejectDeletion resets the status to pending rather than restoring whatever
// status preceded the request. That loses information for projects that were
// on hold or in progress before the request; it is preserved here as the
// documented behavior pending a product decision (see DESIGN.md).

var (
	// ErrNotAllowed is returned when the caller lacks authority for a
	// deletion transition.
	ErrNotAllowed = errors.New("caller is not allowed to perform this transition")

	// ErrInvalidTransition is returned when the requested transition is not
	// reachable from the project's current deletion state.
	ErrInvalidTransition = errors.New("transition not allowed from current state")
)

// canDelete reports whether the caller holds delete authority: the project
// creator or an admin.
func canDelete(caller *directory.User, p *Project) bool {
	return caller != nil && (caller.IsAdmin() || caller.ID == p.CreatedBy)
}

// RequestDeletion moves an active project into the deletion-requested state.
// Callers with delete authority must use DeleteImmediately instead. Unknown
// project ids are silent no-ops.
func (s *Store) RequestDeletion(caller *directory.User, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.find(projectID)
	if p == nil {
		return nil
	}
	if canDelete(caller, p) {
		return ErrNotAllowed
	}
	if p.Status == StatusDeletionRequested {
		return ErrInvalidTransition
	}

	p.Status = StatusDeletionRequested
	s.persist()
	s.metrics.RecordMutation("request_deletion")
	s.logger.Info().Str("project", projectID).Str("caller", callerID(caller)).Msg("deletion requested")
	return nil
}

// ApproveDeletion permanently removes a deletion-requested project. Only the
// project creator or an admin may approve.
func (s *Store) ApproveDeletion(caller *directory.User, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.find(projectID)
	if p == nil {
		return nil
	}
	if !canDelete(caller, p) {
		return ErrNotAllowed
	}
	if p.Status != StatusDeletionRequested {
		return ErrInvalidTransition
	}

	s.removeLocked(projectID)
	s.logger.Info().Str("project", projectID).Str("caller", callerID(caller)).Msg("deletion approved")
	return nil
}

// RejectDeletion returns a deletion-requested project to the active state,
// resetting its status to pending. Only the project creator or an admin may
// reject.
func (s *Store) RejectDeletion(caller *directory.User, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.find(projectID)
	if p == nil {
		return nil
	}
	if !canDelete(caller, p) {
		return ErrNotAllowed
	}
	if p.Status != StatusDeletionRequested {
		return ErrInvalidTransition
	}

	p.Status = StatusPending
	s.persist()
	s.metrics.RecordMutation("reject_deletion")
	s.logger.Info().Str("project", projectID).Str("caller", callerID(caller)).Msg("deletion rejected")
	return nil
}

// DeleteImmediately removes an active project, bypassing the request step.
// Only the project creator or an admin may delete immediately; a project
// already in the deletion-requested state must go through ApproveDeletion.
func (s *Store) DeleteImmediately(caller *directory.User, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.find(projectID)
	if p == nil {
		return nil
	}
	if !canDelete(caller, p) {
		return ErrNotAllowed
	}
	if p.Status == StatusDeletionRequested {
		return ErrInvalidTransition
	}

	s.removeLocked(projectID)
	s.logger.Info().Str("project", projectID).Str("caller", callerID(caller)).Msg("project deleted immediately")
	return nil
}

func callerID(u *directory.User) string {
	if u == nil {
		return ""
	}
	return u.ID
}
