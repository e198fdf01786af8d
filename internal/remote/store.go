package remote

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/forgo/travelog/api/internal/database"
	"github.com/forgo/travelog/api/internal/model"
	"github.com/forgo/travelog/api/internal/repository"
)

// Store implements repository.Store on a database.Database. It is the only
// backend implementing repository.Authenticator.
type Store struct {
	db database.Database
}

var (
	_ repository.Store         = (*Store)(nil)
	_ repository.Authenticator = (*Store)(nil)
)

// New wraps an already connected database handle.
func New(db database.Database) *Store {
	return &Store{db: db}
}

// Open connects to SurrealDB, applies the schema and returns the store.
func Open(ctx context.Context, cfg database.Config) (*Store, error) {
	db := database.NewSurrealDB(cfg)
	if err := db.Connect(ctx); err != nil {
		return nil, err
	}
	if err := EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db), nil
}

func (s *Store) conn() (database.Database, error) {
	if s.db == nil {
		return nil, repository.ErrNotInitialized
	}
	return s.db, nil
}

func (s *Store) Members() repository.MemberRepository     { return &memberRepo{s: s} }
func (s *Store) Places() repository.PlaceRepository       { return &placeRepo{s: s} }
func (s *Store) Reviews() repository.ReviewRepository     { return &reviewRepo{s: s} }
func (s *Store) Posts() repository.PostRepository         { return &postRepo{s: s} }
func (s *Store) Wishlists() repository.WishlistRepository { return &wishlistRepo{s: s} }

// Ping verifies the connection is live.
func (s *Store) Ping(ctx context.Context) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	return db.Ping(ctx)
}

// Close releases the connection. Further calls return ErrNotInitialized.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Authenticate verifies the email/password pair and returns the member.
// Unknown emails, wrong passwords and WITHDRAWN members all map to
// ErrInvalidCredentials so callers cannot distinguish which check failed.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*model.Member, error) {
	m, err := s.Members().FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, repository.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(password)); err != nil {
		return nil, repository.ErrInvalidCredentials
	}
	if m.Status != model.StatusActive {
		return nil, repository.ErrInvalidCredentials
	}
	return m, nil
}
