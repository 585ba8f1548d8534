package mockapi

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/workcity/crm-client/internal/core/domain"
	"github.com/workcity/crm-client/internal/core/ports"
)

var (
	errEmailTaken        = errors.New("User with this email already exists")
	errUnknownUser       = errors.New("Invalid email or password")
	errUnknownClient     = errors.New("Referenced client does not exist")
	errRecordNotFound    = errors.New("Record not found")
	errWrongPassword     = errors.New("Current password is incorrect")
	errClientHasProjects = errors.New("Client still has projects")
)

type userRecord struct {
	user         domain.User
	passwordHash []byte
}

// memStore is the in-memory backing state of the mock API. Lists are kept
// newest-first, matching the ordering contract of the real backend.
type memStore struct {
	mu       sync.Mutex
	users    map[string]*userRecord // by id
	clients  []domain.Client
	projects []domain.Project
}

func newMemStore() *memStore {
	return &memStore{users: make(map[string]*userRecord)}
}

// ── Users ────────────────────────────────────────────────────────────────────

func (m *memStore) createUser(firstName, lastName, email, password, role string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rec := range m.users {
		if strings.EqualFold(rec.user.Email, email) {
			return nil, errEmailTaken
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:        uuid.NewString(),
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.users[user.ID] = &userRecord{user: user, passwordHash: hash}
	return &user, nil
}

func (m *memStore) authenticate(email, password string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rec := range m.users {
		if strings.EqualFold(rec.user.Email, email) {
			if bcrypt.CompareHashAndPassword(rec.passwordHash, []byte(password)) != nil {
				return nil, errUnknownUser
			}
			user := rec.user
			return &user, nil
		}
	}
	return nil, errUnknownUser
}

func (m *memStore) getUser(id string) (*domain.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.users[id]
	if !ok {
		return nil, false
	}
	user := rec.user
	return &user, true
}

func (m *memStore) updateUser(id string, patch ports.ProfilePatch) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.users[id]
	if !ok {
		return nil, errRecordNotFound
	}
	if patch.FirstName != nil {
		rec.user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		rec.user.LastName = *patch.LastName
	}
	if patch.Email != nil {
		rec.user.Email = *patch.Email
	}
	rec.user.UpdatedAt = time.Now().UTC()
	user := rec.user
	return &user, nil
}

func (m *memStore) changePassword(id, current, next string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.users[id]
	if !ok {
		return errRecordNotFound
	}
	if bcrypt.CompareHashAndPassword(rec.passwordHash, []byte(current)) != nil {
		return errWrongPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	rec.passwordHash = hash
	rec.user.UpdatedAt = time.Now().UTC()
	return nil
}

// ── Clients ──────────────────────────────────────────────────────────────────

func (m *memStore) insertClient(draft ports.ClientDraft) domain.Client {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	client := domain.Client{
		ID:        uuid.NewString(),
		Name:      draft.Name,
		Email:     draft.Email,
		Phone:     draft.Phone,
		Company:   draft.Company,
		Position:  draft.Position,
		Address:   draft.Address,
		City:      draft.City,
		State:     draft.State,
		ZipCode:   draft.ZipCode,
		Country:   draft.Country,
		Status:    draft.Status,
		Notes:     draft.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.clients = append([]domain.Client{client}, m.clients...)
	return client
}

func (m *memStore) getClient(id string) (*domain.Client, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.clients {
		if m.clients[i].ID == id {
			client := m.clients[i]
			return &client, true
		}
	}
	return nil, false
}

func (m *memStore) updateClient(id string, patch ports.ClientPatch) (*domain.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.clients {
		if m.clients[i].ID != id {
			continue
		}
		c := &m.clients[i]
		if patch.Name != nil {
			c.Name = *patch.Name
		}
		if patch.Email != nil {
			c.Email = *patch.Email
		}
		if patch.Phone != nil {
			c.Phone = *patch.Phone
		}
		if patch.Company != nil {
			c.Company = *patch.Company
		}
		if patch.Position != nil {
			c.Position = *patch.Position
		}
		if patch.Address != nil {
			c.Address = *patch.Address
		}
		if patch.City != nil {
			c.City = *patch.City
		}
		if patch.State != nil {
			c.State = *patch.State
		}
		if patch.ZipCode != nil {
			c.ZipCode = *patch.ZipCode
		}
		if patch.Country != nil {
			c.Country = *patch.Country
		}
		if patch.Status != nil {
			c.Status = *patch.Status
		}
		if patch.Notes != nil {
			c.Notes = *patch.Notes
		}
		c.UpdatedAt = time.Now().UTC()
		client := *c
		return &client, nil
	}
	return nil, errRecordNotFound
}

func (m *memStore) deleteClient(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.projects {
		if p.ClientID == id {
			return errClientHasProjects
		}
	}
	for i := range m.clients {
		if m.clients[i].ID == id {
			m.clients = append(m.clients[:i], m.clients[i+1:]...)
			return nil
		}
	}
	return errRecordNotFound
}

func (m *memStore) listClients(f ports.Filters) ([]domain.Client, ports.Pagination) {
	m.mu.Lock()
	matched := make([]domain.Client, 0, len(m.clients))
	for _, c := range m.clients {
		if f.Status != "" && string(c.Status) != f.Status {
			continue
		}
		if f.Search != "" && !matchesAny(f.Search, c.Name, c.Email, c.Company) {
			continue
		}
		matched = append(matched, c)
	}
	m.mu.Unlock()

	sortClients(matched, f.SortBy, f.SortOrder)
	page, pagination := paginate(len(matched), f)
	return matched[page.start:page.end], pagination
}

// ── Projects ─────────────────────────────────────────────────────────────────

func (m *memStore) insertProject(draft ports.ProjectDraft) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.clientExistsLocked(draft.ClientID) {
		return nil, errUnknownClient
	}

	now := time.Now().UTC()
	project := domain.Project{
		ID:           uuid.NewString(),
		Name:         draft.Name,
		Description:  draft.Description,
		ClientID:     draft.ClientID,
		Status:       draft.Status,
		StartDate:    draft.StartDate,
		EndDate:      draft.EndDate,
		Budget:       draft.Budget,
		Technologies: append([]string(nil), draft.Technologies...),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.projects = append([]domain.Project{project}, m.projects...)
	return &project, nil
}

func (m *memStore) getProject(id string) (*domain.Project, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.projects {
		if m.projects[i].ID == id {
			project := m.projects[i]
			return &project, true
		}
	}
	return nil, false
}

func (m *memStore) updateProject(id string, patch ports.ProjectPatch) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.projects {
		if m.projects[i].ID != id {
			continue
		}
		p := &m.projects[i]
		if patch.ClientID != nil {
			if !m.clientExistsLocked(*patch.ClientID) {
				return nil, errUnknownClient
			}
			p.ClientID = *patch.ClientID
		}
		if patch.Name != nil {
			p.Name = *patch.Name
		}
		if patch.Description != nil {
			p.Description = *patch.Description
		}
		if patch.Status != nil {
			p.Status = *patch.Status
		}
		if patch.StartDate != nil {
			p.StartDate = *patch.StartDate
		}
		if patch.EndDate != nil {
			p.EndDate = patch.EndDate
		}
		if patch.Budget != nil {
			p.Budget = *patch.Budget
		}
		if patch.Technologies != nil {
			p.Technologies = append([]string(nil), (*patch.Technologies)...)
		}
		p.UpdatedAt = time.Now().UTC()
		project := *p
		return &project, nil
	}
	return nil, errRecordNotFound
}

func (m *memStore) deleteProject(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.projects {
		if m.projects[i].ID == id {
			m.projects = append(m.projects[:i], m.projects[i+1:]...)
			return nil
		}
	}
	return errRecordNotFound
}

func (m *memStore) listProjects(f ports.Filters) ([]domain.Project, ports.Pagination) {
	m.mu.Lock()
	matched := make([]domain.Project, 0, len(m.projects))
	for _, p := range m.projects {
		if f.Status != "" && string(p.Status) != f.Status {
			continue
		}
		if f.Search != "" && !matchesAny(f.Search, p.Name, p.Description) {
			continue
		}
		matched = append(matched, p)
	}
	m.mu.Unlock()

	sortProjects(matched, f.SortBy, f.SortOrder)
	page, pagination := paginate(len(matched), f)
	return matched[page.start:page.end], pagination
}

func (m *memStore) projectsByClient(clientID string) []domain.Project {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Project, 0)
	for _, p := range m.projects {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	return out
}

func (m *memStore) clientExistsLocked(id string) bool {
	for i := range m.clients {
		if m.clients[i].ID == id {
			return true
		}
	}
	return false
}

// ── List helpers ─────────────────────────────────────────────────────────────

func matchesAny(needle string, haystacks ...string) bool {
	needle = strings.ToLower(needle)
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}

type pageBounds struct {
	start, end int
}

func paginate(total int, f ports.Filters) (pageBounds, ports.Pagination) {
	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}

	totalPages := (total + limit - 1) / limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return pageBounds{start: start, end: end}, ports.Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: limit,
	}
}

func sortClients(items []domain.Client, sortBy, order string) {
	if sortBy == "" {
		return // newest-first insertion order
	}
	desc := order == "desc"
	sort.SliceStable(items, func(i, j int) bool {
		var less bool
		switch sortBy {
		case "name":
			less = strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
		case "company":
			less = strings.ToLower(items[i].Company) < strings.ToLower(items[j].Company)
		default:
			less = items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		if desc {
			return !less
		}
		return less
	})
}

func sortProjects(items []domain.Project, sortBy, order string) {
	if sortBy == "" {
		return
	}
	desc := order == "desc"
	sort.SliceStable(items, func(i, j int) bool {
		var less bool
		switch sortBy {
		case "name":
			less = strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
		case "startDate":
			less = items[i].StartDate.Before(items[j].StartDate)
		default:
			less = items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		if desc {
			return !less
		}
		return less
	})
}
