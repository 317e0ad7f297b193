package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/lib/pq"
	"github.com/text-materials-api/internal/models"
	"github.com/text-materials-api/internal/repository"
)

// uniqueViolation mimics the error PostgreSQL reports for duplicate keys
func uniqueViolation(constraint string) error {
	return &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint", Constraint: constraint}
}

// Store is an in-memory implementation of every repository, sharing state
// so joins (category titles, author names) and cascades behave like the
// PostgreSQL schema
type Store struct {
	mu sync.Mutex

	users         map[int64]*models.User
	categories    map[int64]*models.Category
	materials     map[int64]*models.TextMaterial
	comments      map[int64]*models.Comment
	bans          map[int64]*models.Ban
	notifications map[string]*models.Notification
	likes         map[[2]int64]bool
	saves         map[[2]int64]bool
	nextID        int64

	// Err, when set, is returned by every write operation
	Err error
	// PingErr is returned by HealthCheck
	PingErr error

	User         *MockUserRepository
	Category     *MockCategoryRepository
	Material     *MockMaterialRepository
	Association  *MockAssociationRepository
	Comment      *MockCommentRepository
	Ban          *MockBanRepository
	Notification *MockNotificationRepository
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	s := &Store{
		users:         make(map[int64]*models.User),
		categories:    make(map[int64]*models.Category),
		materials:     make(map[int64]*models.TextMaterial),
		comments:      make(map[int64]*models.Comment),
		bans:          make(map[int64]*models.Ban),
		notifications: make(map[string]*models.Notification),
		likes:         make(map[[2]int64]bool),
		saves:         make(map[[2]int64]bool),
	}
	s.User = &MockUserRepository{s: s}
	s.Category = &MockCategoryRepository{s: s}
	s.Material = &MockMaterialRepository{s: s}
	s.Association = &MockAssociationRepository{s: s}
	s.Comment = &MockCommentRepository{s: s}
	s.Ban = &MockBanRepository{s: s}
	s.Notification = &MockNotificationRepository{s: s}
	return s
}

// Repositories exposes the store through the repository interfaces
func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		User:         s.User,
		Category:     s.Category,
		Material:     s.Material,
		Association:  s.Association,
		Comment:      s.Comment,
		Ban:          s.Ban,
		Notification: s.Notification,
		DB:           s,
	}
}

// HealthCheck implements repository.Pinger
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.PingErr
}

func (s *Store) newID() int64 {
	s.nextID++
	return s.nextID
}

// Verify interface compliance
var (
	_ repository.UserRepository         = (*MockUserRepository)(nil)
	_ repository.CategoryRepository     = (*MockCategoryRepository)(nil)
	_ repository.MaterialRepository     = (*MockMaterialRepository)(nil)
	_ repository.AssociationRepository  = (*MockAssociationRepository)(nil)
	_ repository.CommentRepository      = (*MockCommentRepository)(nil)
	_ repository.BanRepository          = (*MockBanRepository)(nil)
	_ repository.NotificationRepository = (*MockNotificationRepository)(nil)
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct{ s *Store }

func copyUser(u *models.User) *models.User {
	c := *u
	c.Roles = append([]string{}, u.Roles...)
	return &c
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	for _, u := range m.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return uniqueViolation("users_email_key")
		}
		if u.Username == user.Username {
			return uniqueViolation("users_username_key")
		}
	}
	user.ID = m.s.newID()
	user.Email = strings.ToLower(user.Email)
	if user.Roles == nil {
		user.Roles = []string{}
	}
	m.s.users[user.ID] = copyUser(user)
	return nil
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	existing, ok := m.s.users[user.ID]
	if !ok {
		return nil
	}
	updated := copyUser(user)
	updated.Roles = existing.Roles
	m.s.users[user.ID] = updated
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if u, ok := m.s.users[id]; ok {
		return copyUser(u), nil
	}
	return nil, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if strings.EqualFold(u.Email, email) {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (m *MockUserRepository) List(ctx context.Context) ([]*models.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	users := make([]*models.User, 0, len(m.s.users))
	for _, u := range m.s.users {
		users = append(users, copyUser(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *MockUserRepository) AddRole(ctx context.Context, userID int64, role string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	u, ok := m.s.users[userID]
	if !ok || u.HasRole(role) {
		return nil
	}
	u.Roles = append(u.Roles, role)
	sort.Strings(u.Roles)
	return nil
}

func (m *MockUserRepository) RemoveRole(ctx context.Context, userID int64, role string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	u, ok := m.s.users[userID]
	if !ok {
		return nil
	}
	kept := u.Roles[:0]
	for _, r := range u.Roles {
		if r != role {
			kept = append(kept, r)
		}
	}
	u.Roles = kept
	return nil
}

func (m *MockUserRepository) Count(ctx context.Context) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return len(m.s.users), nil
}

// MockCategoryRepository is a mock implementation of CategoryRepository
type MockCategoryRepository struct{ s *Store }

func (m *MockCategoryRepository) titleTaken(title string, except int64) bool {
	for _, c := range m.s.categories {
		if c.ID != except && strings.EqualFold(c.Title, title) {
			return true
		}
	}
	return false
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	if m.titleTaken(category.Title, 0) {
		return uniqueViolation("categories_title_key")
	}
	category.ID = m.s.newID()
	c := *category
	m.s.categories[c.ID] = &c
	return nil
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	if m.titleTaken(category.Title, category.ID) {
		return uniqueViolation("categories_title_key")
	}
	if _, ok := m.s.categories[category.ID]; ok {
		c := *category
		m.s.categories[c.ID] = &c
	}
	return nil
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	delete(m.s.categories, id)
	return nil
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if c, ok := m.s.categories[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (m *MockCategoryRepository) TitleExists(ctx context.Context, title string) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.titleTaken(title, 0), nil
}

func (m *MockCategoryRepository) InUse(ctx context.Context, id int64) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, mat := range m.s.materials {
		if mat.CategoryID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	categories := make([]*models.Category, 0, len(m.s.categories))
	for _, c := range m.s.categories {
		cp := *c
		categories = append(categories, &cp)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Title < categories[j].Title })
	return categories, nil
}

// MockMaterialRepository is a mock implementation of MaterialRepository
type MockMaterialRepository struct{ s *Store }

// joined returns a copy with category title and author name filled in
func (m *MockMaterialRepository) joined(mat *models.TextMaterial) models.TextMaterial {
	c := *mat
	c.CategoryTitle = ""
	c.AuthorName = ""
	if cat, ok := m.s.categories[c.CategoryID]; ok {
		c.CategoryTitle = cat.Title
	}
	if c.AuthorID != nil {
		if u, ok := m.s.users[*c.AuthorID]; ok {
			c.AuthorName = u.Username
		} else {
			c.AuthorID = nil
		}
	}
	return c
}

func (m *MockMaterialRepository) Create(ctx context.Context, material *models.TextMaterial) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	material.ID = m.s.newID()
	c := *material
	m.s.materials[c.ID] = &c
	return nil
}

func (m *MockMaterialRepository) Update(ctx context.Context, material *models.TextMaterial) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	if _, ok := m.s.materials[material.ID]; ok {
		c := *material
		m.s.materials[c.ID] = &c
	}
	return nil
}

func (m *MockMaterialRepository) Delete(ctx context.Context, id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	for key := range m.s.likes {
		if key[1] == id {
			delete(m.s.likes, key)
		}
	}
	for key := range m.s.saves {
		if key[1] == id {
			delete(m.s.saves, key)
		}
	}
	for cid, c := range m.s.comments {
		if c.MaterialID == id {
			delete(m.s.comments, cid)
		}
	}
	delete(m.s.materials, id)
	return nil
}

func (m *MockMaterialRepository) GetByID(ctx context.Context, id int64) (*models.TextMaterial, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if mat, ok := m.s.materials[id]; ok {
		c := m.joined(mat)
		return &c, nil
	}
	return nil, nil
}

func (m *MockMaterialRepository) List(ctx context.Context, scope models.MaterialScope) ([]models.TextMaterial, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []models.TextMaterial
	for _, mat := range m.s.materials {
		if scope.AuthorID != nil && !mat.IsAuthor(*scope.AuthorID) {
			continue
		}
		if scope.SavedBy != nil && !m.s.saves[[2]int64{*scope.SavedBy, mat.ID}] {
			continue
		}
		if scope.LikedBy != nil && !m.s.likes[[2]int64{*scope.LikedBy, mat.ID}] {
			continue
		}
		out = append(out, m.joined(mat))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockMaterialRepository) Count(ctx context.Context) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return len(m.s.materials), nil
}

func (m *MockMaterialRepository) StreamApproved(ctx context.Context, callback func(*models.TextMaterial) error) error {
	all, _ := m.List(ctx, models.MaterialScope{})
	sort.SliceStable(all, func(i, j int) bool { return all[i].DatePublished.Before(all[j].DatePublished) })
	for i := range all {
		if all[i].ApprovalStatus != models.StatusApproved {
			continue
		}
		if err := callback(&all[i]); err != nil {
			return err
		}
	}
	return nil
}

// MockAssociationRepository is a mock implementation of AssociationRepository
type MockAssociationRepository struct{ s *Store }

func (m *MockAssociationRepository) table(kind repository.AssociationKind) map[[2]int64]bool {
	if kind == repository.Likes {
		return m.s.likes
	}
	return m.s.saves
}

func (m *MockAssociationRepository) Add(ctx context.Context, kind repository.AssociationKind, userID, materialID int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	m.table(kind)[[2]int64{userID, materialID}] = true
	return nil
}

func (m *MockAssociationRepository) Remove(ctx context.Context, kind repository.AssociationKind, userID, materialID int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	delete(m.table(kind), [2]int64{userID, materialID})
	return nil
}

func (m *MockAssociationRepository) Contains(ctx context.Context, kind repository.AssociationKind, userID, materialID int64) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.table(kind)[[2]int64{userID, materialID}], nil
}

func (m *MockAssociationRepository) Count(ctx context.Context, kind repository.AssociationKind, materialID int64) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	count := 0
	for key := range m.table(kind) {
		if key[1] == materialID {
			count++
		}
	}
	return count, nil
}

// MockCommentRepository is a mock implementation of CommentRepository
type MockCommentRepository struct{ s *Store }

func (m *MockCommentRepository) joined(c *models.Comment) *models.Comment {
	cp := *c
	cp.AuthorName = ""
	if cp.AuthorID != nil {
		if u, ok := m.s.users[*cp.AuthorID]; ok {
			cp.AuthorName = u.Username
		}
	}
	return &cp
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	comment.ID = m.s.newID()
	c := *comment
	m.s.comments[c.ID] = &c
	return nil
}

func (m *MockCommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	if existing, ok := m.s.comments[comment.ID]; ok {
		existing.Content = comment.Content
	}
	return nil
}

func (m *MockCommentRepository) Delete(ctx context.Context, id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	delete(m.s.comments, id)
	return nil
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if c, ok := m.s.comments[id]; ok {
		return m.joined(c), nil
	}
	return nil, nil
}

func (m *MockCommentRepository) ListByMaterial(ctx context.Context, materialID int64) ([]*models.Comment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*models.Comment
	for _, c := range m.s.comments {
		if c.MaterialID == materialID {
			out = append(out, m.joined(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MockCommentRepository) HasReplies(ctx context.Context, id int64) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, c := range m.s.comments {
		if c.ParentID != nil && *c.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockCommentRepository) Count(ctx context.Context) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return len(m.s.comments), nil
}

// MockBanRepository is a mock implementation of BanRepository
type MockBanRepository struct{ s *Store }

func (m *MockBanRepository) Create(ctx context.Context, ban *models.Ban) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	for _, b := range m.s.bans {
		if b.UserID == ban.UserID {
			return uniqueViolation("bans_user_id_key")
		}
	}
	ban.ID = m.s.newID()
	b := *ban
	m.s.bans[b.ID] = &b
	return nil
}

func (m *MockBanRepository) Update(ctx context.Context, ban *models.Ban) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	if _, ok := m.s.bans[ban.ID]; ok {
		b := *ban
		m.s.bans[b.ID] = &b
	}
	return nil
}

func (m *MockBanRepository) Delete(ctx context.Context, id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	delete(m.s.bans, id)
	return nil
}

func (m *MockBanRepository) GetByID(ctx context.Context, id int64) (*models.Ban, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if b, ok := m.s.bans[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}

func (m *MockBanRepository) GetByUserID(ctx context.Context, userID int64) (*models.Ban, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, b := range m.s.bans {
		if b.UserID == userID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockBanRepository) List(ctx context.Context) ([]*models.Ban, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	bans := make([]*models.Ban, 0, len(m.s.bans))
	for _, b := range m.s.bans {
		cp := *b
		bans = append(bans, &cp)
	}
	sort.Slice(bans, func(i, j int) bool { return bans[i].Expires.After(bans[j].Expires) })
	return bans, nil
}

// MockNotificationRepository is a mock implementation of NotificationRepository
type MockNotificationRepository struct {
	s *Store
	// CreateErr, when set, makes queuing notifications fail
	CreateErr error
	// ClaimErr, when set, makes MarkAsSending fail
	ClaimErr error
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	if m.CreateErr != nil {
		return m.CreateErr
	}
	cp := *n
	m.s.notifications[n.ID] = &cp
	return nil
}

func (m *MockNotificationRepository) Update(ctx context.Context, n *models.Notification) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	if existing, ok := m.s.notifications[n.ID]; ok {
		existing.Status = n.Status
		existing.Attempts = n.Attempts
		existing.LastError = n.LastError
		existing.SentAt = n.SentAt
	}
	return nil
}

func (m *MockNotificationRepository) sorted(pred func(*models.Notification) bool) []*models.Notification {
	var out []*models.Notification
	for _, n := range m.s.notifications {
		if pred(n) {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (m *MockNotificationRepository) GetPending(ctx context.Context, limit int) ([]*models.Notification, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := m.sorted(func(n *models.Notification) bool { return n.Status == models.NotificationPending })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockNotificationRepository) MarkAsSending(ctx context.Context, id string) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.ClaimErr != nil {
		return false, m.ClaimErr
	}
	n, ok := m.s.notifications[id]
	if !ok || n.Status != models.NotificationPending {
		return false, nil
	}
	n.Status = models.NotificationSending
	return true, nil
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*models.Notification, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := m.sorted(func(n *models.Notification) bool { return n.UserID == userID })
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// All returns every notification in creation order
func (m *MockNotificationRepository) All() []*models.Notification {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.sorted(func(*models.Notification) bool { return true })
}
