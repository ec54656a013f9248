package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/postmove/shared/config"
	"github.com/itchan-dev/postmove/shared/domain"
	mw "github.com/itchan-dev/postmove/shared/middleware"
	"github.com/stretchr/testify/assert"
)

// --- Mocks ---

type MockTopicService struct {
	MockFind func(user domain.User, id domain.TopicId) (domain.Topic, error)
	MockGet  func(user domain.User, id domain.TopicId) (domain.TopicWithPosts, error)
}

func (m *MockTopicService) Find(ctx context.Context, user domain.User, id domain.TopicId) (domain.Topic, error) {
	if m.MockFind != nil {
		return m.MockFind(user, id)
	}
	return domain.Topic{Id: id, Title: "Origin", CategoryId: 1}, nil
}

func (m *MockTopicService) Get(ctx context.Context, user domain.User, id domain.TopicId) (domain.TopicWithPosts, error) {
	if m.MockGet != nil {
		return m.MockGet(user, id)
	}
	return domain.TopicWithPosts{Topic: domain.Topic{Id: id}}, nil
}

type MockPostMoveService struct {
	MockToTopic    func(req domain.RelocationRequest, destinationId domain.TopicId) (domain.RelocationResult, error)
	MockToNewTopic func(req domain.RelocationRequest, title domain.TopicTitle) (domain.RelocationResult, error)
}

func (m *MockPostMoveService) ToTopic(ctx context.Context, req domain.RelocationRequest, destinationId domain.TopicId) (domain.RelocationResult, error) {
	if m.MockToTopic != nil {
		return m.MockToTopic(req, destinationId)
	}
	return domain.RelocationResult{Destination: domain.Topic{Id: destinationId}}, nil
}

func (m *MockPostMoveService) ToNewTopic(ctx context.Context, req domain.RelocationRequest, title domain.TopicTitle) (domain.RelocationResult, error) {
	if m.MockToNewTopic != nil {
		return m.MockToNewTopic(req, title)
	}
	return domain.RelocationResult{Destination: domain.Topic{Id: 100, Title: title}}, nil
}

type MockHealthChecker struct {
	err error
}

func (m *MockHealthChecker) Ping(ctx context.Context) error {
	return m.err
}

// --- Helpers ---

var testAdmin = &domain.User{Id: 1, Username: "mod", Admin: true}

func testHandler(topic TopicService, postMove PostMoveService) *Handler {
	cfg := &config.Config{Public: config.Public{BaseURL: "http://forum.test"}}
	return New(topic, postMove, &MockHealthChecker{}, cfg)
}

func withUser(req *http.Request, user *domain.User) *http.Request {
	if user == nil {
		return req
	}
	return req.WithContext(context.WithValue(req.Context(), mw.UserClaimsKey, user))
}

func serve(h *Handler, method, target, body string, user *domain.User) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Get("/health", h.Health)
	router.Get("/v1/topics/{topic}", h.GetTopic)
	router.Post("/v1/admin/topics/{topic}/move_posts", h.MovePosts)

	req := withUser(httptest.NewRequest(method, target, strings.NewReader(body)), user)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	h := testHandler(&MockTopicService{}, &MockPostMoveService{})

	rr := serve(h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())

	h.health = &MockHealthChecker{err: errors.New("connection refused")}
	rr = serve(h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
