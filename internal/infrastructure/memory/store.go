// Package memory implementa los puertos de persistencia en memoria.
// Lo usan los tests de casos de uso y de handlers; se comporta como los repos PostgreSQL
// (NotFound como error, RETURNING, conflicto por email y referencia única opcional).
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/jhoicas/inventory-manager/internal/domain"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/domain/repository"
)

// Store estado compartido de los tres repos.
type Store struct {
	mu       sync.Mutex
	txMu     sync.Mutex
	products map[string]*entity.Product
	users    map[string]*entity.User
	audit    []*entity.AuditEntry

	// UniqueReferencia emula el índice único products_referencia_key.
	UniqueReferencia bool
	// AuditErr si no es nil, Append falla con este error.
	AuditErr error
	// StoreErr si no es nil, toda operación de productos y usuarios falla con este error.
	StoreErr error
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		products: make(map[string]*entity.Product),
		users:    make(map[string]*entity.User),
	}
}

func (s *Store) fail() error {
	if s.StoreErr != nil {
		return errors.Mark(s.StoreErr, domain.ErrStoreUnavailable)
	}
	return nil
}

// AuditEntries copia del historial en orden de inserción.
func (s *Store) AuditEntries() []*entity.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.AuditEntry, len(s.audit))
	copy(out, s.audit)
	return out
}

// Products repo de productos sobre el store.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Users repo de usuarios sobre el store.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Audit repo de auditoría sobre el store.
func (s *Store) Audit() *AuditRepo { return &AuditRepo{s: s} }

// ProductRepo implementa repository.ProductRepository.
type ProductRepo struct{ s *Store }

var _ repository.ProductRepository = (*ProductRepo)(nil)

func (r *ProductRepo) referenciaTaken(ref, exceptID string) bool {
	if !r.s.UniqueReferencia {
		return false
	}
	for id, p := range r.s.products {
		if id != exceptID && p.Referencia == ref {
			return true
		}
	}
	return false
}

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(); err != nil {
		return nil, err
	}
	if _, ok := r.s.products[p.ID]; ok || r.referenciaTaken(p.Referencia, "") {
		return nil, errors.Wrap(domain.ErrConflict, "insert product")
	}
	r.s.products[p.ID] = p.Clone()
	return p.Clone(), nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(); err != nil {
		return nil, err
	}
	p, ok := r.s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *ProductRepo) GetByReferencia(_ context.Context, ref string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(); err != nil {
		return nil, err
	}
	for _, p := range r.s.products {
		if p.Referencia == ref {
			return p.Clone(), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(); err != nil {
		return nil, err
	}
	cur, ok := r.s.products[p.ID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if r.referenciaTaken(p.Referencia, p.ID) {
		return nil, errors.Wrap(domain.ErrConflict, "update product")
	}
	next := p.Clone()
	next.CreatedAt = cur.CreatedAt
	r.s.products[p.ID] = next
	return next.Clone(), nil
}

func (r *ProductRepo) Delete(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(); err != nil {
		return nil, err
	}
	p, ok := r.s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(r.s.products, id)
	return p, nil
}

func (r *ProductRepo) List(_ context.Context, f entity.ProductFilter) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(); err != nil {
		return nil, err
	}
	list := make([]*entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if f.Referencia != "" && !strings.Contains(strings.ToLower(p.Referencia), strings.ToLower(f.Referencia)) {
			continue
		}
		if (f.Cor != "" && p.Cor != f.Cor) || (f.Rack != "" && p.Rack != f.Rack) || (f.Acab != "" && p.Acab != f.Acab) {
			continue
		}
		if f.Marked != nil && p.Marked != *f.Marked {
			continue
		}
		list = append(list, p.Clone())
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return page(list, f.Limit, f.Offset), nil
}

// UserRepo implementa repository.UserRepository.
type UserRepo struct{ s *Store }

var _ repository.UserRepository = (*UserRepo)(nil)

func cloneUser(u *entity.User) *entity.User {
	c := *u
	return &c
}

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(); err != nil {
		return err
	}
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.s.users[u.ID] = cloneUser(u)
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(); err != nil {
		return nil, err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(); err != nil {
		return nil, err
	}
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *UserRepo) List(_ context.Context) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(); err != nil {
		return nil, err
	}
	list := make([]*entity.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		list = append(list, cloneUser(u))
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (r *UserRepo) UpdateRole(_ context.Context, id string, role entity.Role) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(); err != nil {
		return nil, err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u.Role = role
	return cloneUser(u), nil
}

func (r *UserRepo) Delete(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(); err != nil {
		return nil, err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(r.s.users, id)
	return u, nil
}

func (r *UserRepo) CountAdmins(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(); err != nil {
		return 0, err
	}
	n := 0
	for _, u := range r.s.users {
		if u.Role == entity.RoleAdmin {
			n++
		}
	}
	return n, nil
}

// RunIdentity serializa las transacciones de identidad y restaura los usuarios si fn falla.
func (s *Store) RunIdentity(_ context.Context, fn func(users repository.UserRepository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	backup := make(map[string]*entity.User, len(s.users))
	for id, u := range s.users {
		backup[id] = cloneUser(u)
	}
	s.mu.Unlock()

	if err := fn(s.Users()); err != nil {
		s.mu.Lock()
		s.users = backup
		s.mu.Unlock()
		return err
	}
	return nil
}

// AuditRepo implementa repository.AuditRepository.
type AuditRepo struct{ s *Store }

var _ repository.AuditRepository = (*AuditRepo)(nil)

func (r *AuditRepo) Append(ctx context.Context, e *entity.AuditEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.AuditErr != nil {
		return r.s.AuditErr
	}
	c := *e
	r.s.audit = append(r.s.audit, &c)
	return nil
}

func (r *AuditRepo) List(_ context.Context, f entity.AuditFilter) ([]*entity.AuditEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]*entity.AuditEntry, 0, len(r.s.audit))
	for i := len(r.s.audit) - 1; i >= 0; i-- {
		e := r.s.audit[i]
		if f.Day != nil {
			y, m, d := f.Day.UTC().Date()
			ey, em, ed := e.CreatedAt.UTC().Date()
			if y != ey || m != em || d != ed {
				continue
			}
		}
		if (f.Action != "" && e.Action != f.Action) || (f.Entity != "" && e.Entity != f.Entity) ||
			(f.EntityID != "" && e.EntityID != f.EntityID) || (f.UserID != "" && e.Actor.UserID != f.UserID) {
			continue
		}
		c := *e
		list = append(list, &c)
	}
	return page(list, f.Limit, f.Offset), nil
}

func page[T any](list []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(list) {
			return list[:0]
		}
		list = list[offset:]
	}
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
