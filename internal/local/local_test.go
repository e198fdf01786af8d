package local

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/forgo/travelog/api/internal/model"
)

// newTestStore opens a store over an in-memory filesystem with a short
// debounce window so snapshot behavior is observable in tests.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{
		DataDir:        "data",
		DebounceWindow: 10 * time.Millisecond,
		Fs:             afero.NewMemMapFs(),
		Logger:         discardLogger(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func createTestMember(t *testing.T, s *Store, email, nickname string) *model.Member {
	t.Helper()
	m, err := s.Members().Create(context.Background(), model.CreateMemberParams{
		Email:    email,
		Password: "secret-password",
		Nickname: nickname,
	})
	require.NoError(t, err)
	require.NotNil(t, m)
	return m
}

func createTestPlace(t *testing.T, s *Store, name, region string) *model.Place {
	t.Helper()
	p, err := s.Places().Create(context.Background(), model.CreatePlaceParams{
		Region:    region,
		Latitude:  33.458,
		Longitude: 126.942,
		Name:      name,
	})
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func createTestReview(t *testing.T, s *Store, memberID string, placeID *string, location string, rating int, tags []string) *model.Review {
	t.Helper()
	r, err := s.Reviews().Create(context.Background(), model.CreateReviewParams{
		MemberID: memberID,
		PlaceID:  placeID,
		Location: location,
		Rating:   rating,
		Comment:  "visited " + location,
		Tags:     tags,
	})
	require.NoError(t, err)
	require.NotNil(t, r)
	return r
}

func createTestPost(t *testing.T, s *Store, memberID, category, title string, tags []string) *model.Post {
	t.Helper()
	p, err := s.Posts().Create(context.Background(), model.CreatePostParams{
		MemberID: memberID,
		Category: category,
		Title:    title,
		Content:  "content of " + title,
		Tags:     tags,
	})
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func strp(s string) *string { return &s }

func intp(i int) *int { return &i }
