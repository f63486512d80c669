package client

import (
	"context"
	"sync"
)

// ProjectStore caches the server's project list and applies client-visible
// mutations without a full re-fetch after every write. The list and the
// current-project slot are independent copies kept in lockstep: a merge is
// applied to each, never through a shared reference.
//
// The shared status/error fields follow idle -> loading -> succeeded|failed
// per operation; when two operations race, the later response wins there,
// while per-entity merges remain independent of it. Locks are never held
// across a network await.
type ProjectStore struct {
	gw *Gateway

	mu       sync.Mutex
	projects []Project
	current  *Project
	status   OpStatus
	errMsg   string
}

// NewProjectStore creates an empty project store.
func NewProjectStore(gw *Gateway) *ProjectStore {
	return &ProjectStore{
		gw:     gw,
		status: StatusIdle,
	}
}

// FetchAll replaces the cached list wholesale with the server's response.
func (s *ProjectStore) FetchAll(ctx context.Context) ([]Project, error) {
	s.setLoading()

	projects, err := s.gw.FetchProjects(ctx)
	if err != nil {
		s.setFailed(err)
		return nil, err
	}

	s.mu.Lock()
	s.projects = projects
	s.status = StatusSucceeded
	s.errMsg = ""
	s.mu.Unlock()

	return cloneProjects(projects), nil
}

// Create posts a draft and, once the server confirms, prepends the returned
// project. There is no optimistic insert: callers treat this as blocking.
func (s *ProjectStore) Create(ctx context.Context, draft ProjectDraft) (Project, error) {
	s.setLoading()

	created, err := s.gw.CreateProject(ctx, draft)
	if err != nil {
		s.setFailed(err)
		return Project{}, err
	}

	s.mu.Lock()
	// Guard list-identity uniqueness even if the server echoes an id the
	// cache already holds.
	filtered := s.projects[:0]
	for _, p := range s.projects {
		if p.ID != created.ID {
			filtered = append(filtered, p)
		}
	}
	s.projects = append([]Project{created.Clone()}, filtered...)
	s.status = StatusSucceeded
	s.errMsg = ""
	s.mu.Unlock()

	return created, nil
}

// Update sends the patch to the server, then merges its non-nil fields into
// the matching list element and, independently, into the current project when
// it has the same identity. An absent list element is not an error: the
// operation still succeeds and updates whichever copies exist.
func (s *ProjectStore) Update(ctx context.Context, id string, patch ProjectPatch) error {
	s.setLoading()

	if err := s.gw.UpdateProject(ctx, id, patch); err != nil {
		s.setFailed(err)
		return err
	}

	s.mu.Lock()
	for i := range s.projects {
		if s.projects[i].ID == id {
			applyPatch(&s.projects[i], patch)
			break
		}
	}
	if s.current != nil && s.current.ID == id {
		applyPatch(s.current, patch)
	}
	s.status = StatusSucceeded
	s.errMsg = ""
	s.mu.Unlock()

	return nil
}

// Delete removes the project from the list; the current project is cleared if
// it referenced the same identity.
func (s *ProjectStore) Delete(ctx context.Context, id string) error {
	s.setLoading()

	if err := s.gw.DeleteProject(ctx, id); err != nil {
		s.setFailed(err)
		return err
	}

	s.mu.Lock()
	filtered := s.projects[:0]
	for _, p := range s.projects {
		if p.ID != id {
			filtered = append(filtered, p)
		}
	}
	s.projects = filtered
	if s.current != nil && s.current.ID == id {
		s.current = nil
	}
	s.status = StatusSucceeded
	s.errMsg = ""
	s.mu.Unlock()

	return nil
}

// Complete marks the project COMPLETED in both the list and the current
// project. Completion is global: every viewer sees the new status.
func (s *ProjectStore) Complete(ctx context.Context, id string) error {
	s.setLoading()

	if err := s.gw.CompleteProject(ctx, id); err != nil {
		s.setFailed(err)
		return err
	}

	s.mu.Lock()
	for i := range s.projects {
		if s.projects[i].ID == id {
			s.projects[i].Status = ProjectCompleted
			break
		}
	}
	if s.current != nil && s.current.ID == id {
		s.current.Status = ProjectCompleted
	}
	s.status = StatusSucceeded
	s.errMsg = ""
	s.mu.Unlock()

	return nil
}

// SelectCurrent sets the current project from an already-known value, e.g.
// when navigating to a detail view from a list the client holds. It does not
// require the project to be in the list, so direct-link navigation works
// before the list has loaded.
func (s *ProjectStore) SelectCurrent(p Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := p.Clone()
	s.current = &c
}

// ClearCurrent drops the current project.
func (s *ProjectStore) ClearCurrent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

// Reset returns the store to its initial state. Called on logout.
func (s *ProjectStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = nil
	s.current = nil
	s.status = StatusIdle
	s.errMsg = ""
}

// Projects returns a copy of the cached list.
func (s *ProjectStore) Projects() []Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneProjects(s.projects)
}

// Current returns a copy of the current project, if one is selected.
func (s *ProjectStore) Current() (Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Project{}, false
	}
	return s.current.Clone(), true
}

// Status returns the status of the most recent operation.
func (s *ProjectStore) Status() OpStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Err returns the last failure message, empty if none.
func (s *ProjectStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

func (s *ProjectStore) setLoading() {
	s.mu.Lock()
	s.status = StatusLoading
	s.errMsg = ""
	s.mu.Unlock()
}

func (s *ProjectStore) setFailed(err error) {
	s.mu.Lock()
	s.status = StatusFailed
	s.errMsg = err.Error()
	s.mu.Unlock()
}

// applyPatch merges the patch into p. Slices are copied so the list element
// and the current project never share backing storage.
func applyPatch(p *Project, patch ProjectPatch) {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Budget != nil {
		p.Budget = *patch.Budget
	}
	if patch.TechStack != nil {
		p.TechStack = append([]string(nil), (*patch.TechStack)...)
	}
}
