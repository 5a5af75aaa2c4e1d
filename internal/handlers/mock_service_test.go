package handlers

import (
	"context"
	"fmt"
	"mime/multipart"
	"testing"
	"time"

	"wanderlust"
	"wanderlust/internal/logger"
	"wanderlust/internal/service"

	"github.com/gin-gonic/gin"
)

const testTemplates = "../../web/templates/*.html"

type mockAuth struct {
	SignUpFn       func(username, email, password string) (*wanderlust.User, error)
	AuthenticateFn func(username, password string) (*wanderlust.User, error)
	UserByIDFn     func(id int64) (*wanderlust.User, error)
}

func (m *mockAuth) SignUp(_ context.Context, username, email, password string) (*wanderlust.User, error) {
	return m.SignUpFn(username, email, password)
}

func (m *mockAuth) Authenticate(_ context.Context, username, password string) (*wanderlust.User, error) {
	return m.AuthenticateFn(username, password)
}

func (m *mockAuth) UserByID(_ context.Context, id int64) (*wanderlust.User, error) {
	if m.UserByIDFn != nil {
		return m.UserByIDFn(id)
	}
	return &wanderlust.User{ID: id, Username: fmt.Sprintf("user%d", id)}, nil
}

type mockListings struct {
	ListFn   func() ([]wanderlust.Listing, error)
	GetFn    func(id string) (*wanderlust.Listing, error)
	CreateFn func(in service.ListingInput, image *multipart.FileHeader) (*wanderlust.Listing, error)
	UpdateFn func(id string, in service.ListingInput, image *multipart.FileHeader) (*wanderlust.Listing, error)
	DeleteFn func(id string) error

	createCalls int
	deletedIDs  []string
}

func (m *mockListings) List(_ context.Context) ([]wanderlust.Listing, error) {
	return m.ListFn()
}

func (m *mockListings) Get(_ context.Context, id string) (*wanderlust.Listing, error) {
	return m.GetFn(id)
}

func (m *mockListings) Create(_ context.Context, in service.ListingInput, image *multipart.FileHeader) (*wanderlust.Listing, error) {
	m.createCalls++
	return m.CreateFn(in, image)
}

func (m *mockListings) Update(_ context.Context, id string, in service.ListingInput, image *multipart.FileHeader) (*wanderlust.Listing, error) {
	return m.UpdateFn(id, in, image)
}

func (m *mockListings) Delete(_ context.Context, id string) error {
	m.deletedIDs = append(m.deletedIDs, id)
	return m.DeleteFn(id)
}

type mockReviews struct {
	AddFn    func(listingID string, authorID int64, body string, rating int) (*wanderlust.Review, error)
	DeleteFn func(listingID, reviewID string, requesterID int64) error

	addCalls int
}

func (m *mockReviews) Add(_ context.Context, listingID string, authorID int64, body string, rating int) (*wanderlust.Review, error) {
	m.addCalls++
	return m.AddFn(listingID, authorID, body, rating)
}

func (m *mockReviews) Delete(_ context.Context, listingID, reviewID string, requesterID int64) error {
	return m.DeleteFn(listingID, reviewID, requesterID)
}

// fakeSessions is a working in-memory SessionManager so handler tests can
// follow the real cookie and flash flow.
type fakeSessions struct {
	rows map[string]*wanderlust.Session
	seq  int
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{rows: make(map[string]*wanderlust.Session)}
}

func (f *fakeSessions) Start(_ context.Context) (*wanderlust.Session, error) {
	f.seq++
	now := time.Now().UTC()
	s := &wanderlust.Session{
		Token:     fmt.Sprintf("tok-%d", f.seq),
		CreatedAt: now,
		ExpiresAt: now.Add(service.SessionTTL),
	}
	f.rows[s.Token] = s
	return s, nil
}

func (f *fakeSessions) Get(_ context.Context, token string) (*wanderlust.Session, error) {
	s, ok := f.rows[token]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessions) Login(_ context.Context, token string, userID int64) error {
	if s, ok := f.rows[token]; ok {
		s.UserID = userID
	}
	return nil
}

func (f *fakeSessions) Logout(_ context.Context, token string) error {
	delete(f.rows, token)
	return nil
}

func (f *fakeSessions) AddFlash(_ context.Context, token, kind, message string) error {
	s, ok := f.rows[token]
	if !ok {
		return nil
	}
	if kind == service.FlashError {
		s.Flash.Error = append(s.Flash.Error, message)
	} else {
		s.Flash.Success = append(s.Flash.Success, message)
	}
	return nil
}

func (f *fakeSessions) PopFlash(_ context.Context, token string) (wanderlust.Flash, error) {
	s, ok := f.rows[token]
	if !ok {
		return wanderlust.Flash{}, nil
	}
	out := s.Flash
	s.Flash = wanderlust.Flash{}
	return out, nil
}

func (f *fakeSessions) Sweep(context.Context, time.Duration) {}

// seedUser creates a logged-in session and returns its cookie token.
func (f *fakeSessions) seedUser(userID int64) string {
	s, _ := f.Start(context.Background())
	s.UserID = userID
	return s.Token
}

// flashFor returns the pending flash of the session, without clearing it.
func (f *fakeSessions) flashFor(token string) wanderlust.Flash {
	if s, ok := f.rows[token]; ok {
		return s.Flash
	}
	return wanderlust.Flash{}
}

func newTestRouter(t *testing.T, svc *service.Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc, logger.New(logger.ErrorLevel))
	return h.InitRoutes(testTemplates, t.TempDir(), false)
}
