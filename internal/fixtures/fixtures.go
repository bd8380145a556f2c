// Package fixtures provides in-memory test doubles for the repository
// contracts. The fake store enforces the same uniqueness rules as the real
// schema so services can be tested against genuine constraint behavior.
package fixtures

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nestbank/nestbank/pkg/domain"
	"github.com/nestbank/nestbank/pkg/repository"
)

// Store is an in-memory implementation of repository.UnitOfWork. Each
// repository method is individually atomic, guarded by one mutex, which is
// what the real store guarantees per statement.
type Store struct {
	mu sync.Mutex

	accounts    map[uuid.UUID]*domain.Account
	byNumber    map[string]uuid.UUID
	byOwnerType map[string]uuid.UUID

	transactions []*domain.Transaction
	nextTxID     int64

	users      map[uuid.UUID]*domain.User
	byIdentity map[string]uuid.UUID

	sessions map[uuid.UUID]*domain.Session

	// AccountGetErr, when set, is returned by AccountRepository.Get. It lets
	// tests fail the confirming read that follows a successful write.
	AccountGetErr error
	// TransactionCreateErr, when set, is returned by
	// TransactionRepository.Create.
	TransactionCreateErr error
	// AddToBalanceErr, when set, is returned by
	// AccountRepository.AddToBalance.
	AddToBalanceErr error
	// AccountGetByOwnerTypeErr, when set, is returned by
	// AccountRepository.GetByOwnerAndType.
	AccountGetByOwnerTypeErr error
}

// snapshot captures the store state so Do can roll back on failure.
type snapshot struct {
	accounts     map[uuid.UUID]*domain.Account
	byNumber     map[string]uuid.UUID
	byOwnerType  map[string]uuid.UUID
	transactions []*domain.Transaction
	nextTxID     int64
	users        map[uuid.UUID]*domain.User
	byIdentity   map[string]uuid.UUID
	sessions     map[uuid.UUID]*domain.Session
}

// NewStore creates an empty fake store.
func NewStore() *Store {
	return &Store{
		accounts:    make(map[uuid.UUID]*domain.Account),
		byNumber:    make(map[string]uuid.UUID),
		byOwnerType: make(map[string]uuid.UUID),
		users:       make(map[uuid.UUID]*domain.User),
		byIdentity:  make(map[string]uuid.UUID),
		sessions:    make(map[uuid.UUID]*domain.Session),
	}
}

func ownerTypeKey(ownerID uuid.UUID, t domain.AccountType) string {
	return ownerID.String() + "/" + string(t)
}

// Do runs fn against the same store and discards its writes when fn fails,
// matching the real store's transaction rollback. Restore is whole-store, so
// tests that force a rollback must not run writers concurrently with it.
func (s *Store) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	s.mu.Lock()
	snap := s.capture()
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.restore(snap)
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) capture() *snapshot {
	snap := &snapshot{
		accounts:     make(map[uuid.UUID]*domain.Account, len(s.accounts)),
		byNumber:     make(map[string]uuid.UUID, len(s.byNumber)),
		byOwnerType:  make(map[string]uuid.UUID, len(s.byOwnerType)),
		transactions: make([]*domain.Transaction, len(s.transactions)),
		nextTxID:     s.nextTxID,
		users:        make(map[uuid.UUID]*domain.User, len(s.users)),
		byIdentity:   make(map[string]uuid.UUID, len(s.byIdentity)),
		sessions:     make(map[uuid.UUID]*domain.Session, len(s.sessions)),
	}
	for id, a := range s.accounts {
		cp := *a
		snap.accounts[id] = &cp
	}
	for k, v := range s.byNumber {
		snap.byNumber[k] = v
	}
	for k, v := range s.byOwnerType {
		snap.byOwnerType[k] = v
	}
	copy(snap.transactions, s.transactions)
	for id, u := range s.users {
		cp := *u
		snap.users[id] = &cp
	}
	for k, v := range s.byIdentity {
		snap.byIdentity[k] = v
	}
	for id, sess := range s.sessions {
		cp := *sess
		snap.sessions[id] = &cp
	}
	return snap
}

func (s *Store) restore(snap *snapshot) {
	s.accounts = snap.accounts
	s.byNumber = snap.byNumber
	s.byOwnerType = snap.byOwnerType
	s.transactions = snap.transactions
	s.nextTxID = snap.nextTxID
	s.users = snap.users
	s.byIdentity = snap.byIdentity
	s.sessions = snap.sessions
}

// AccountRepository implements repository.UnitOfWork.
func (s *Store) AccountRepository() repository.AccountRepository { return &accountRepo{s} }

// TransactionRepository implements repository.UnitOfWork.
func (s *Store) TransactionRepository() repository.TransactionRepository { return &transactionRepo{s} }

// UserRepository implements repository.UnitOfWork.
func (s *Store) UserRepository() repository.UserRepository { return &userRepo{s} }

// SessionRepository implements repository.UnitOfWork.
func (s *Store) SessionRepository() repository.SessionRepository { return &sessionRepo{s} }

type accountRepo struct{ s *Store }

func (r *accountRepo) Create(ctx context.Context, a *domain.Account) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byNumber[a.Number]; taken {
		return repository.ErrDuplicateAccountNumber
	}
	key := ownerTypeKey(a.OwnerID, a.Type)
	if _, taken := s.byOwnerType[key]; taken {
		return repository.ErrDuplicateOwnerType
	}
	cp := *a
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
		cp.UpdatedAt = cp.CreatedAt
	}
	s.accounts[cp.ID] = &cp
	s.byNumber[cp.Number] = cp.ID
	s.byOwnerType[key] = cp.ID
	return nil
}

func (r *accountRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.AccountGetErr != nil {
		return nil, s.AccountGetErr
	}
	a, ok := s.accounts[id]
	if !ok {
		return nil, repository.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (r *accountRepo) GetByOwnerAndType(ctx context.Context, ownerID uuid.UUID, t domain.AccountType) (*domain.Account, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.AccountGetByOwnerTypeErr != nil {
		return nil, s.AccountGetByOwnerTypeErr
	}
	id, ok := s.byOwnerType[ownerTypeKey(ownerID, t)]
	if !ok {
		return nil, repository.ErrNoRows
	}
	cp := *s.accounts[id]
	return &cp, nil
}

func (r *accountRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Account, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Account
	for _, a := range s.accounts {
		if a.OwnerID == ownerID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// AddToBalance is a single locked increment, matching the atomicity of the
// real UPDATE ... SET balance = balance + delta.
func (r *accountRepo) AddToBalance(ctx context.Context, id uuid.UUID, delta int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.AddToBalanceErr != nil {
		return s.AddToBalanceErr
	}
	a, ok := s.accounts[id]
	if !ok {
		return repository.ErrNoRows
	}
	a.Balance += delta
	a.UpdatedAt = time.Now().UTC()
	return nil
}

type transactionRepo struct{ s *Store }

func (r *transactionRepo) Create(ctx context.Context, t *domain.Transaction) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.TransactionCreateErr != nil {
		return s.TransactionCreateErr
	}
	s.nextTxID++
	t.ID = s.nextTxID
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	cp := *t
	s.transactions = append(s.transactions, &cp)
	return nil
}

func (r *transactionRepo) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*domain.Transaction, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Transaction
	for _, t := range s.transactions {
		if t.AccountID == accountID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, u *domain.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byIdentity[u.Username]; taken {
		return repository.ErrDuplicateIdentity
	}
	if _, taken := s.byIdentity[u.Email]; taken {
		return repository.ErrDuplicateIdentity
	}
	cp := *u
	s.users[cp.ID] = &cp
	s.byIdentity[cp.Username] = cp.ID
	s.byIdentity[cp.Email] = cp.ID
	return nil
}

func (r *userRepo) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) GetByIdentity(ctx context.Context, identity string) (*domain.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byIdentity[identity]
	if !ok {
		return nil, repository.ErrNoRows
	}
	cp := *s.users[id]
	return &cp, nil
}

type sessionRepo struct{ s *Store }

func (r *sessionRepo) Create(ctx context.Context, sess *domain.Session) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sess
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	s.sessions[cp.ID] = &cp
	return nil
}

func (r *sessionRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, repository.ErrNoRows
	}
	cp := *sess
	return &cp, nil
}

func (r *sessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return repository.ErrNoRows
	}
	delete(s.sessions, id)
	return nil
}

func (r *sessionRepo) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, sess := range s.sessions {
		if sess.ExpiresAt.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

// SetSessionRemaining rewrites every stored session to expire the given
// duration from now. Lets tests place sessions just inside or outside the
// validation buffer without a clock abstraction.
func (s *Store) SetSessionRemaining(remaining time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deadline := time.Now().UTC().Add(remaining)
	for _, sess := range s.sessions {
		sess.ExpiresAt = deadline
	}
}

// ScriptedNumbers is an accountnumber.Generator that returns a fixed
// sequence, then wraps around. It lets tests force collisions
// deterministically.
type ScriptedNumbers struct {
	mu      sync.Mutex
	Numbers []string
	next    int
}

// Generate returns the next scripted number.
func (g *ScriptedNumbers) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := g.Numbers[g.next%len(g.Numbers)]
	g.next++
	return n, nil
}
