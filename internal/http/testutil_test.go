package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"dataset-market/internal/domain"
	"dataset-market/internal/service"
)

type stubOTPRepo struct {
	codes  map[int64]domain.OtpCode
	nextID int64
}

func newStubOTPRepo() *stubOTPRepo {
	return &stubOTPRepo{codes: make(map[int64]domain.OtpCode)}
}

func (s *stubOTPRepo) Create(_ context.Context, otp domain.OtpCode) (domain.OtpCode, error) {
	s.nextID++
	otp.ID = s.nextID
	s.codes[otp.ID] = otp
	return otp, nil
}

func (s *stubOTPRepo) latest(userID int64, otpType domain.OtpType, match func(domain.OtpCode) bool) (domain.OtpCode, error) {
	var found []domain.OtpCode
	for _, otp := range s.codes {
		if otp.UserID == userID && otp.Type == otpType && match(otp) {
			found = append(found, otp)
		}
	}
	if len(found) == 0 {
		return domain.OtpCode{}, pgx.ErrNoRows
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].CreatedAt.Equal(found[j].CreatedAt) {
			return found[i].ID > found[j].ID
		}
		return found[i].CreatedAt.After(found[j].CreatedAt)
	})
	return found[0], nil
}

func (s *stubOTPRepo) GetLatestByType(_ context.Context, userID int64, otpType domain.OtpType) (domain.OtpCode, error) {
	return s.latest(userID, otpType, func(domain.OtpCode) bool { return true })
}

func (s *stubOTPRepo) GetLatestUnusedByCode(_ context.Context, userID int64, otpType domain.OtpType, code string) (domain.OtpCode, error) {
	return s.latest(userID, otpType, func(otp domain.OtpCode) bool {
		return otp.UsedAt == nil && otp.Code == code
	})
}

func (s *stubOTPRepo) markUsed(id int64, usedAt time.Time) error {
	otp, ok := s.codes[id]
	if !ok || otp.UsedAt != nil {
		return pgx.ErrNoRows
	}
	otp.UsedAt = &usedAt
	s.codes[id] = otp
	return nil
}

type stubUserRepo struct {
	users  map[int64]domain.User
	nextID int64
	otps   *stubOTPRepo
}

func newStubUserRepo(otps *stubOTPRepo) *stubUserRepo {
	return &stubUserRepo{users: make(map[int64]domain.User), otps: otps}
}

func (s *stubUserRepo) Create(_ context.Context, user domain.User) (domain.User, error) {
	s.nextID++
	user.ID = s.nextID
	s.users[user.ID] = user
	return user, nil
}

func (s *stubUserRepo) GetByID(_ context.Context, id int64) (domain.User, error) {
	user, ok := s.users[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (s *stubUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	for _, user := range s.users {
		if user.Email == strings.ToLower(email) {
			return user, nil
		}
	}
	return domain.User{}, pgx.ErrNoRows
}

func (s *stubUserRepo) GetByUsername(_ context.Context, username string) (domain.User, error) {
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return domain.User{}, pgx.ErrNoRows
}

func (s *stubUserRepo) GetByIdentifier(ctx context.Context, identifier string) (domain.User, error) {
	if user, err := s.GetByEmail(ctx, identifier); err == nil {
		return user, nil
	}
	return s.GetByUsername(ctx, identifier)
}

func (s *stubUserRepo) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	user, ok := s.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.PasswordHash = passwordHash
	s.users[id] = user
	return nil
}

func (s *stubUserRepo) UpdateRefreshTokenHash(_ context.Context, id int64, hash *string) error {
	user, ok := s.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.RefreshTokenHash = hash
	s.users[id] = user
	return nil
}

func (s *stubUserRepo) UpdateProfile(_ context.Context, id int64, fullname, photo *string) (domain.User, error) {
	user, ok := s.users[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	if fullname != nil {
		user.Fullname = *fullname
	}
	if photo != nil {
		user.Photo = *photo
	}
	s.users[id] = user
	return user, nil
}

func (s *stubUserRepo) List(_ context.Context, limit, offset int) ([]domain.User, error) {
	ids := make([]int64, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	var users []domain.User
	for i := offset; i < len(ids) && len(users) < limit; i++ {
		users = append(users, s.users[ids[i]])
	}
	return users, nil
}

func (s *stubUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(s.users)), nil
}

func (s *stubUserRepo) ConfirmRegistration(_ context.Context, userID, otpID int64, usedAt time.Time) error {
	user, ok := s.users[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	if err := s.otps.markUsed(otpID, usedAt); err != nil {
		return err
	}
	user.IsVerified = true
	s.users[userID] = user
	return nil
}

func (s *stubUserRepo) ResetCredentials(_ context.Context, userID int64, passwordHash string, otpID int64, usedAt time.Time) error {
	user, ok := s.users[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	if err := s.otps.markUsed(otpID, usedAt); err != nil {
		return err
	}
	user.PasswordHash = passwordHash
	user.RefreshTokenHash = nil
	s.users[userID] = user
	return nil
}

type stubCategoryRepo struct {
	categories map[int64]domain.Category
	nextID     int64
}

func newStubCategoryRepo() *stubCategoryRepo {
	return &stubCategoryRepo{categories: make(map[int64]domain.Category)}
}

func (s *stubCategoryRepo) Create(_ context.Context, category domain.Category) (domain.Category, error) {
	s.nextID++
	category.ID = s.nextID
	s.categories[category.ID] = category
	return category, nil
}

func (s *stubCategoryRepo) List(_ context.Context) ([]domain.Category, error) {
	items := make([]domain.Category, 0, len(s.categories))
	for _, category := range s.categories {
		items = append(items, category)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *stubCategoryRepo) GetByID(_ context.Context, id int64) (domain.Category, error) {
	category, ok := s.categories[id]
	if !ok {
		return domain.Category{}, pgx.ErrNoRows
	}
	return category, nil
}

func (s *stubCategoryRepo) Update(_ context.Context, category domain.Category) (domain.Category, error) {
	current, ok := s.categories[category.ID]
	if !ok {
		return domain.Category{}, pgx.ErrNoRows
	}
	current.Name = category.Name
	current.Slug = category.Slug
	s.categories[category.ID] = current
	return current, nil
}

func (s *stubCategoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := s.categories[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.categories, id)
	return nil
}

type stubSender struct {
	lastSubject string
}

func (s *stubSender) Send(_ context.Context, _, subject, _, _ string) error {
	s.lastSubject = subject
	return nil
}

type apiFixture struct {
	router *gin.Engine
	users  *stubUserRepo
	otps   *stubOTPRepo
	sender *stubSender
	tokens *service.TokenService
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	otps := newStubOTPRepo()
	users := newStubUserRepo(otps)
	sender := &stubSender{}

	otpSvc := service.NewOTPService(otps)
	tokenSvc := service.NewTokenService("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour, users)
	authSvc := service.NewAuthService(logger, "Dataset Market", "support@datamarket.test", users, otpSvc, tokenSvc, sender, nil)
	userSvc := service.NewUserService(logger, users)
	categorySvc := service.NewCategoryService(newStubCategoryRepo())

	router := NewRouter(
		logger,
		tokenSvc,
		NewAuthHandler(logger, authSvc),
		NewUserHandler(logger, userSvc),
		NewCategoryHandler(logger, categorySvc),
	)

	return &apiFixture{router: router, users: users, otps: otps, sender: sender, tokens: tokenSvc}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body failed: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	return out
}
