package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/itchan-dev/postmove/shared/domain"
	internal_errors "github.com/itchan-dev/postmove/shared/errors"
	"github.com/itchan-dev/postmove/shared/storage/pg"
)

// --- In-memory storage ---

// fakeStorage keeps topics and posts in maps and restores a snapshot when a
// transaction function fails, which is enough to observe rollback behaviour.
type fakeStorage struct {
	mu sync.Mutex

	topics      map[domain.TopicId]*domain.Topic
	posts       map[domain.PostId]*domain.Post
	lastTopicId domain.TopicId
	lastPostId  domain.PostId

	txCount     int
	selectCalls int

	// Hooks to inject failures.
	relocateErr   error
	statisticsErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		topics: make(map[domain.TopicId]*domain.Topic),
		posts:  make(map[domain.PostId]*domain.Post),
	}
}

func (f *fakeStorage) addTopic(title string, category domain.CategoryId, owner domain.UserId) domain.TopicId {
	f.lastTopicId++
	now := time.Now().UTC()
	f.topics[f.lastTopicId] = &domain.Topic{
		Id: f.lastTopicId, Title: title, CategoryId: category, UserId: owner, BumpedAt: now, CreatedAt: now,
	}
	return f.lastTopicId
}

// addPosts appends one post per author, created a second apart.
func (f *fakeStorage) addPosts(topicId domain.TopicId, authors ...domain.UserId) []domain.PostId {
	var ids []domain.PostId
	base := time.Now().UTC().Add(-time.Hour)
	for _, author := range authors {
		topic := f.topics[topicId]
		topic.HighestPostNumber++
		f.lastPostId++
		f.posts[f.lastPostId] = &domain.Post{
			Id:          f.lastPostId,
			TopicId:     topicId,
			UserId:      author,
			CreatedById: author,
			PostNumber:  topic.HighestPostNumber,
			SortOrder:   topic.HighestPostNumber,
			Type:        domain.PostTypeRegular,
			Raw:         fmt.Sprintf("post %d", f.lastPostId),
			CreatedAt:   base.Add(time.Duration(f.lastPostId) * time.Second),
		}
		ids = append(ids, f.lastPostId)
	}
	_ = f.UpdateTopicStatistics(context.Background(), nil, topicId)
	return ids
}

func (f *fakeStorage) postsOf(topicId domain.TopicId) []domain.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Post
	for _, p := range f.posts {
		if p.TopicId == topicId {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out
}

func (f *fakeStorage) topic(id domain.TopicId) domain.Topic {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.topics[id]
}

func (f *fakeStorage) snapshot() (map[domain.TopicId]domain.Topic, map[domain.PostId]domain.Post, domain.TopicId, domain.PostId) {
	topics := make(map[domain.TopicId]domain.Topic, len(f.topics))
	for id, t := range f.topics {
		topics[id] = *t
	}
	posts := make(map[domain.PostId]domain.Post, len(f.posts))
	for id, p := range f.posts {
		posts[id] = *p
	}
	return topics, posts, f.lastTopicId, f.lastPostId
}

func (f *fakeStorage) restore(topics map[domain.TopicId]domain.Topic, posts map[domain.PostId]domain.Post, lastTopic domain.TopicId, lastPost domain.PostId) {
	f.topics = make(map[domain.TopicId]*domain.Topic, len(topics))
	for id, t := range topics {
		t := t
		f.topics[id] = &t
	}
	f.posts = make(map[domain.PostId]*domain.Post, len(posts))
	for id, p := range posts {
		p := p
		f.posts[id] = &p
	}
	f.lastTopicId, f.lastPostId = lastTopic, lastPost
}

func (f *fakeStorage) WithTx(ctx context.Context, fn func(q pg.Querier) error) error {
	f.mu.Lock()
	f.txCount++
	topics, posts, lastTopic, lastPost := f.snapshot()
	f.mu.Unlock()

	if err := fn(nil); err != nil {
		f.mu.Lock()
		f.restore(topics, posts, lastTopic, lastPost)
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeStorage) SelectPostsForMove(ctx context.Context, q pg.Querier, topicId domain.TopicId, ids []domain.PostId) ([]*domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selectCalls++

	var out []*domain.Post
	for _, p := range f.posts {
		if p.TopicId == topicId && slices.Contains(ids, p.Id) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Id < out[j].Id
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeStorage) FindTopic(ctx context.Context, q pg.Querier, id domain.TopicId, forUpdate bool) (*domain.Topic, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.topics[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (f *fakeStorage) CreateTopic(ctx context.Context, q pg.Querier, data domain.TopicCreationData) (domain.Topic, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastTopicId++
	t := &domain.Topic{
		Id: f.lastTopicId, Title: data.Title, CategoryId: data.CategoryId, UserId: data.UserId,
		BumpedAt: data.CreatedAt, CreatedAt: data.CreatedAt,
	}
	f.topics[t.Id] = t
	return *t, nil
}

func (f *fakeStorage) NextPostNumber(ctx context.Context, q pg.Querier, topicId domain.TopicId) (domain.PostNumber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.topics[topicId]
	if !ok {
		return 0, internal_errors.NotFound("Topic not found")
	}
	highest := t.HighestPostNumber
	for _, p := range f.posts {
		if p.TopicId == topicId && p.PostNumber > highest {
			highest = p.PostNumber
		}
	}
	t.HighestPostNumber = highest + 1
	return t.HighestPostNumber, nil
}

func (f *fakeStorage) RelocatePost(ctx context.Context, q pg.Querier, id domain.PostId, from, to domain.TopicId, number domain.PostNumber) error {
	if f.relocateErr != nil {
		return f.relocateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok || p.TopicId != from {
		return internal_errors.Conflict("Post is no longer in topic")
	}
	p.TopicId, p.PostNumber, p.SortOrder = to, number, number
	return nil
}

func (f *fakeStorage) InsertPost(ctx context.Context, q pg.Querier, data domain.PostCreationData, cooked string) (domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if data.PostNumber == nil {
		return domain.Post{}, errors.New("post number is not reserved")
	}
	for _, p := range f.posts {
		if p.TopicId == data.TopicId && p.PostNumber == *data.PostNumber {
			return domain.Post{}, fmt.Errorf("duplicate post number %d in topic %d", *data.PostNumber, data.TopicId)
		}
	}
	f.lastPostId++
	p := &domain.Post{
		Id: f.lastPostId, TopicId: data.TopicId, UserId: data.Author, CreatedById: data.CreatedBy,
		PostNumber: *data.PostNumber, SortOrder: *data.PostNumber, Type: data.Type,
		Raw: data.Raw, Cooked: cooked, CreatedAt: data.CreatedAt,
	}
	f.posts[p.Id] = p
	return *p, nil
}

func (f *fakeStorage) UpdateTopicStatistics(ctx context.Context, q pg.Querier, topicId domain.TopicId) error {
	if f.statisticsErr != nil {
		return f.statisticsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.topics[topicId]
	if !ok {
		return internal_errors.NotFound("Topic not found")
	}
	t.PostsCount, t.ParticipantCount = 0, 0
	t.LastPostedAt, t.LastPostUserId = nil, nil
	participants := make(map[domain.UserId]struct{})
	var last *domain.Post
	for _, p := range f.posts {
		if p.TopicId != topicId {
			continue
		}
		t.PostsCount++
		if p.PostNumber > t.HighestPostNumber {
			t.HighestPostNumber = p.PostNumber
		}
		if p.Type == domain.PostTypeRegular {
			participants[p.UserId] = struct{}{}
		}
		if last == nil || p.CreatedAt.After(last.CreatedAt) {
			last = p
		}
	}
	t.ParticipantCount = len(participants)
	if last != nil {
		at, user := last.CreatedAt, last.UserId
		t.LastPostedAt, t.LastPostUserId = &at, &user
	}
	return nil
}

// --- Collaborator mocks ---

type MockNotifier struct {
	notifyFunc func(ctx context.Context, moveId string, postIds []domain.PostId, movedBy domain.UserId) error

	mu      sync.Mutex
	calls   int
	postIds []domain.PostId
	movedBy domain.UserId
}

func (m *MockNotifier) NotifyMovedPosts(ctx context.Context, moveId string, postIds []domain.PostId, movedBy domain.UserId) error {
	m.mu.Lock()
	m.calls++
	m.postIds = postIds
	m.movedBy = movedBy
	m.mu.Unlock()

	if m.notifyFunc != nil {
		return m.notifyFunc(ctx, moveId, postIds, movedBy)
	}
	return nil
}

type MockCategoryAccess struct {
	allowed map[domain.CategoryId][]string
}

func (m *MockCategoryAccess) AllowedDomains(category domain.CategoryId) []string {
	return m.allowed[category]
}

type MockTitleValidator struct {
	titleFunc func(title string) error
}

func (m *MockTitleValidator) Title(title string) error {
	if m.titleFunc != nil {
		return m.titleFunc(title)
	}
	return nil
}

type MockRawValidator struct {
	rawFunc func(raw string) error
}

func (m *MockRawValidator) Raw(raw string) error {
	if m.rawFunc != nil {
		return m.rawFunc(raw)
	}
	return nil
}
