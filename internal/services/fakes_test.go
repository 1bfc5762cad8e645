package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"communityevents/internal/domain"
)

// testLogger discards output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

const testTimeout = 5 * time.Second

// fakeTx runs the callback inline and counts transactions.
type fakeTx struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return fn(ctx)
}

// fakeEventRepo is an in-memory EventRepository. Reads return copies so services
// must call Update for a change to stick.
type fakeEventRepo struct {
	mu           sync.Mutex
	byID         map[string]*domain.Event
	nextID       int
	participants *fakeParticipantRepo
	favorites    *fakeFavoriteRepo
	updateErr    error
}

func newFakeEventRepo(participants *fakeParticipantRepo, favorites *fakeFavoriteRepo) *fakeEventRepo {
	return &fakeEventRepo{
		byID:         make(map[string]*domain.Event),
		nextID:       1,
		participants: participants,
		favorites:    favorites,
	}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

// stored returns the raw row, deleted or not.
func (f *fakeEventRepo) stored(id string) *domain.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id]
}

func (f *fakeEventRepo) live(id string) (*domain.Event, bool) {
	e, ok := f.byID[id]
	if !ok || e.IsDeleted() {
		return nil, false
	}
	cp := *e
	return &cp, true
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.live(id); ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Event, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.live(e.ID); !ok {
		return domain.ErrNotFound
	}
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeEventRepo) collect(keep func(e *domain.Event) bool) []*domain.Event {
	out := make([]*domain.Event, 0)
	for id := range f.byID {
		if e, ok := f.live(id); ok && keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (f *fakeEventRepo) ListPublic(ctx context.Context, filter domain.EventFilter, page domain.PaginationParams) ([]*domain.Event, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.collect(func(e *domain.Event) bool {
		if e.Visibility != domain.VisibilityPublic || e.Status != domain.EventStatusPublished {
			return false
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(e.Title), strings.ToLower(filter.Query)) {
			return false
		}
		return filter.CategoryID == "" || e.CategoryID == filter.CategoryID
	})
	start := min(page.Offset(), len(all))
	end := min(start+page.Limit(), len(all))
	return all[start:end], len(all), nil
}

func (f *fakeEventRepo) ListByOrganizer(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.collect(func(e *domain.Event) bool { return e.OrganizerID == organizerID }), nil
}

func (f *fakeEventRepo) ListAttending(ctx context.Context, userID string) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.collect(func(e *domain.Event) bool {
		return e.OrganizerID != userID && f.participants.has(e.ID, userID)
	}), nil
}

func (f *fakeEventRepo) ListFavoritedBy(ctx context.Context, userID string) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.collect(func(e *domain.Event) bool { return f.favorites.has(e.ID, userID) }), nil
}

// fakeParticipantRepo enforces the (event, user) and token uniqueness of the real table.
type fakeParticipantRepo struct {
	mu         sync.Mutex
	byID       map[string]*domain.Participant
	nextID     int
	createErrs []error // consumed one per Create call before the insert is attempted
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{byID: make(map[string]*domain.Participant), nextID: 1}
}

func (f *fakeParticipantRepo) has(eventID, userID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.find(func(p *domain.Participant) bool { return p.EventID == eventID && p.UserID == userID }) != nil
}

func (f *fakeParticipantRepo) find(match func(p *domain.Participant) bool) *domain.Participant {
	for _, p := range f.byID {
		if match(p) {
			return p
		}
	}
	return nil
}

func (f *fakeParticipantRepo) tokenTaken(token string) bool {
	return f.find(func(p *domain.Participant) bool { return p.CheckinToken != nil && *p.CheckinToken == token }) != nil
}

func (f *fakeParticipantRepo) Create(ctx context.Context, p *domain.Participant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		return err
	}
	if f.find(func(o *domain.Participant) bool { return o.EventID == p.EventID && o.UserID == p.UserID }) != nil {
		return domain.NewError(domain.ErrConflict, "already registered for this event")
	}
	if p.CheckinToken != nil && f.tokenTaken(*p.CheckinToken) {
		return domain.ErrDuplicateToken
	}
	p.ID = fmt.Sprintf("p-%d", f.nextID)
	f.nextID++
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeParticipantRepo) get(match func(p *domain.Participant) bool) (*domain.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p := f.find(match); p != nil {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeParticipantRepo) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Participant, error) {
	return f.get(func(p *domain.Participant) bool { return p.EventID == eventID && p.UserID == userID })
}

func (f *fakeParticipantRepo) GetByEventAndUserForUpdate(ctx context.Context, eventID, userID string) (*domain.Participant, error) {
	return f.GetByEventAndUser(ctx, eventID, userID)
}

func (f *fakeParticipantRepo) GetByEventAndToken(ctx context.Context, eventID, token string) (*domain.Participant, error) {
	return f.get(func(p *domain.Participant) bool {
		return p.EventID == eventID && p.CheckinToken != nil && *p.CheckinToken == token
	})
}

func (f *fakeParticipantRepo) UpdateStatus(ctx context.Context, id string, status domain.AttendanceStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Status = status
	return nil
}

func (f *fakeParticipantRepo) SetCheckinToken(ctx context.Context, id, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if f.tokenTaken(token) {
		return domain.ErrDuplicateToken
	}
	if p.CheckinToken != nil {
		return domain.NewError(domain.ErrConflict, "check-in token already issued")
	}
	p.CheckinToken = &token
	return nil
}

func (f *fakeParticipantRepo) MarkCheckedIn(ctx context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if p.CheckedInAt != nil {
		return domain.NewError(domain.ErrConflict, "participant already checked in")
	}
	p.Status = domain.AttendanceAttended
	p.CheckedInAt = &at
	return nil
}

func (f *fakeParticipantRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeParticipantRepo) ListByEvent(ctx context.Context, eventID string) ([]*domain.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Participant, 0)
	for _, p := range f.byID {
		if p.EventID == eventID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeParticipantRepo) count(eventID string, keep func(p *domain.Participant) bool) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, p := range f.byID {
		if p.EventID == eventID && keep(p) {
			n++
		}
	}
	return n
}

func (f *fakeParticipantRepo) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	return f.count(eventID, func(*domain.Participant) bool { return true }), nil
}

func (f *fakeParticipantRepo) CountActiveByEvent(ctx context.Context, eventID string) (int64, error) {
	return f.count(eventID, func(p *domain.Participant) bool { return p.Status != domain.AttendanceCancelled }), nil
}

func (f *fakeParticipantRepo) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	return f.has(eventID, userID), nil
}

// fakeCommentRepo is an in-memory CommentRepository.
type fakeCommentRepo struct {
	byID   map[string]*domain.Comment
	order  []string
	nextID int
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{byID: make(map[string]*domain.Comment), nextID: 1}
}

func (f *fakeCommentRepo) Create(ctx context.Context, c *domain.Comment) error {
	c.ID = fmt.Sprintf("c-%d", f.nextID)
	f.nextID++
	cp := *c
	cp.UserName = "name-" + c.UserID
	f.byID[c.ID] = &cp
	f.order = append(f.order, c.ID)
	return nil
}

func (f *fakeCommentRepo) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	if c, ok := f.byID[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCommentRepo) Update(ctx context.Context, c *domain.Comment) error {
	if _, ok := f.byID[c.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeCommentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeCommentRepo) ListByEvent(ctx context.Context, eventID string) ([]*domain.Comment, error) {
	out := make([]*domain.Comment, 0)
	for i := len(f.order) - 1; i >= 0; i-- {
		if c, ok := f.byID[f.order[i]]; ok && c.EventID == eventID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeCommentRepo) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	list, _ := f.ListByEvent(ctx, eventID)
	return int64(len(list)), nil
}

// fakeRatingRepo keys ratings by (event, user) like the upsert in the real store.
type fakeRatingRepo struct {
	byKey  map[string]*domain.Rating
	nextID int
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{byKey: make(map[string]*domain.Rating), nextID: 1}
}

func ratingKey(eventID, userID string) string { return eventID + "/" + userID }

func (f *fakeRatingRepo) Upsert(ctx context.Context, r *domain.Rating) error {
	key := ratingKey(r.EventID, r.UserID)
	if existing, ok := f.byKey[key]; ok {
		existing.Score = r.Score
		existing.Comment = r.Comment
		r.ID = existing.ID
		r.CreatedAt = existing.CreatedAt
		return nil
	}
	r.ID = fmt.Sprintf("r-%d", f.nextID)
	f.nextID++
	cp := *r
	f.byKey[key] = &cp
	return nil
}

func (f *fakeRatingRepo) Delete(ctx context.Context, eventID, userID string) error {
	key := ratingKey(eventID, userID)
	if _, ok := f.byKey[key]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byKey, key)
	return nil
}

func (f *fakeRatingRepo) ListByEvent(ctx context.Context, eventID string) ([]*domain.Rating, error) {
	out := make([]*domain.Rating, 0)
	for _, r := range f.byKey {
		if r.EventID == eventID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeRatingRepo) Summary(ctx context.Context, eventID string) (*domain.RatingSummary, error) {
	s := &domain.RatingSummary{}
	var sum int
	for _, r := range f.byKey {
		if r.EventID == eventID {
			s.Count++
			sum += r.Score
		}
	}
	if s.Count > 0 {
		s.Average = float64(sum) / float64(s.Count)
	}
	return s, nil
}

// fakeFavoriteRepo is an in-memory FavoriteRepository.
type fakeFavoriteRepo struct {
	mu    sync.Mutex
	byKey map[string]*domain.Favorite
}

func newFakeFavoriteRepo() *fakeFavoriteRepo {
	return &fakeFavoriteRepo{byKey: make(map[string]*domain.Favorite)}
}

func (f *fakeFavoriteRepo) has(eventID, userID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byKey[ratingKey(eventID, userID)]
	return ok
}

func (f *fakeFavoriteRepo) Create(ctx context.Context, fav *domain.Favorite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := ratingKey(fav.EventID, fav.UserID)
	if _, ok := f.byKey[key]; ok {
		return domain.NewError(domain.ErrConflict, "event already in favorites")
	}
	fav.ID = "fav-" + key
	cp := *fav
	f.byKey[key] = &cp
	return nil
}

func (f *fakeFavoriteRepo) Delete(ctx context.Context, eventID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := ratingKey(eventID, userID)
	if _, ok := f.byKey[key]; !ok {
		return domain.NewError(domain.ErrNotFound, "event is not in favorites")
	}
	delete(f.byKey, key)
	return nil
}

func (f *fakeFavoriteRepo) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	return f.has(eventID, userID), nil
}

func (f *fakeFavoriteRepo) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, fav := range f.byKey {
		if fav.EventID == eventID {
			n++
		}
	}
	return n, nil
}

// fakeCategoryRepo is an in-memory CategoryRepository.
type fakeCategoryRepo struct {
	byID map[string]*domain.Category
	err  error
}

func newFakeCategoryRepo(ids ...string) *fakeCategoryRepo {
	f := &fakeCategoryRepo{byID: make(map[string]*domain.Category)}
	for _, id := range ids {
		f.byID[id] = &domain.Category{ID: id, Name: "name-" + id}
	}
	return f
}

func (f *fakeCategoryRepo) List(ctx context.Context) ([]*domain.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*domain.Category, 0, len(f.byID))
	for _, c := range f.byID {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeCategoryRepo) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	if c, ok := f.byID[id]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

// fakeUserRepo is an in-memory UserRepository with a unique email index.
type fakeUserRepo struct {
	byID      map[string]*domain.User
	nextID    int
	getErr    error
	updateErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*domain.User), nextID: 1}
}

func (f *fakeUserRepo) emailTaken(email, exceptID string) bool {
	for _, u := range f.byID {
		if u.Email == email && u.ID != exceptID {
			return true
		}
	}
	return false
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if f.emailTaken(u.Email, "") {
		return domain.ErrDuplicateEmail
	}
	if u.ID == "" {
		u.ID = fmt.Sprintf("user-%d", f.nextID)
		f.nextID++
	}
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, u *domain.User) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.byID[u.ID]; !ok {
		return domain.ErrNotFound
	}
	if f.emailTaken(u.Email, u.ID) {
		return domain.ErrDuplicateEmail
	}
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id, hash, salt string) error {
	u, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = hash
	u.Salt = salt
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakePasswordHasher hashes as "hash:<salt>:<password>".
type fakePasswordHasher struct{}

func (fakePasswordHasher) GenerateSalt() (string, error) { return "salt", nil }

func (fakePasswordHasher) Hash(salt, password string) (string, error) {
	return "hash:" + salt + ":" + password, nil
}

func (fakePasswordHasher) Compare(hash, salt, password string) error {
	if hash != "hash:"+salt+":"+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokenIssuer implements domain.TokenIssuer for tests.
type fakeTokenIssuer struct {
	err   error
	roles []string
}

func (f *fakeTokenIssuer) Issue(userID, email string, roles []string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.roles = roles
	return "token-" + userID, nil
}

// fakeEmailService records what would have been sent.
type fakeEmailService struct {
	mu           sync.Mutex
	welcome      []*domain.WelcomeEmailData
	registration []*domain.RegistrationEmailData
	err          error
}

func (f *fakeEmailService) SendWelcome(ctx context.Context, data *domain.WelcomeEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.welcome = append(f.welcome, data)
	return f.err
}

func (f *fakeEmailService) SendRegistrationConfirmed(ctx context.Context, data *domain.RegistrationEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registration = append(f.registration, data)
	return f.err
}

// fakeMetrics records attendance counters.
type fakeMetrics struct {
	mu         sync.Mutex
	registered int
	checkedIn  int
	rejections []string
}

func (f *fakeMetrics) Registered(ctx context.Context, eventID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered++
}

func (f *fakeMetrics) CheckedIn(ctx context.Context, eventID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkedIn++
}

func (f *fakeMetrics) CheckinRejected(ctx context.Context, eventID, reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejections = append(f.rejections, reason)
}

// fakeUploader implements domain.ImageUploader for tests.
type fakeUploader struct {
	url   string
	err   error
	name  string
	stall bool

	hadDeadline bool
}

func (f *fakeUploader) Upload(ctx context.Context, name string, image io.Reader) (string, error) {
	_, f.hadDeadline = ctx.Deadline()
	if f.stall {
		<-ctx.Done()
		return "", fmt.Errorf("cloudinary upload: %w", ctx.Err())
	}
	if f.err != nil {
		return "", f.err
	}
	f.name = name
	return f.url, nil
}

// testEnv wires every service over one set of fakes.
type testEnv struct {
	now          time.Time
	tx           *fakeTx
	events       *fakeEventRepo
	participants *fakeParticipantRepo
	comments     *fakeCommentRepo
	ratings      *fakeRatingRepo
	favorites    *fakeFavoriteRepo
	categories   *fakeCategoryRepo
	users        *fakeUserRepo
	email        *fakeEmailService
	metrics      *fakeMetrics
	uploader     *fakeUploader

	eventSvc      *eventService
	attendanceSvc *attendanceService
	commentSvc    *commentService
	ratingSvc     *ratingService
	favoriteSvc   *favoriteService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		now:          time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		tx:           &fakeTx{},
		participants: newFakeParticipantRepo(),
		comments:     newFakeCommentRepo(),
		ratings:      newFakeRatingRepo(),
		favorites:    newFakeFavoriteRepo(),
		categories:   newFakeCategoryRepo("cat-1", "cat-2"),
		users:        newFakeUserRepo(),
		email:        &fakeEmailService{},
		metrics:      &fakeMetrics{},
		uploader:     &fakeUploader{url: "https://res.cloudinary.com/demo/image/upload/events/cover.jpg"},
	}
	env.events = newFakeEventRepo(env.participants, env.favorites)
	clock := func() time.Time { return env.now }
	resolver := NewEventResolver(env.participants, env.comments, env.ratings, env.favorites)

	env.eventSvc = NewEventService(env.tx, env.events, env.categories, resolver, env.uploader, testTimeout).(*eventService)
	env.eventSvc.now = clock
	env.attendanceSvc = NewAttendanceService(env.tx, env.events, env.participants, env.users, env.email, env.metrics, testLogger, testTimeout).(*attendanceService)
	env.attendanceSvc.now = clock
	env.commentSvc = NewCommentService(env.tx, env.events, env.comments, testTimeout).(*commentService)
	env.commentSvc.now = clock
	env.ratingSvc = NewRatingService(env.tx, env.events, env.ratings, testTimeout).(*ratingService)
	env.ratingSvc.now = clock
	env.favoriteSvc = NewFavoriteService(env.tx, env.events, env.favorites, resolver, testTimeout).(*favoriteService)
	env.favoriteSvc.now = clock
	return env
}

func (env *testEnv) addUser(id, name string) {
	env.users.byID[id] = &domain.User{ID: id, Name: name, Email: id + "@example.com", Role: domain.RoleUser, Active: true}
}

func validEventInput() domain.EventInput {
	start := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	return domain.EventInput{
		Title:       "Go meetup",
		Description: "Talks and pizza",
		CategoryID:  "cat-1",
		StartDate:   start,
		EndDate:     start.Add(2 * time.Hour),
		Location:    "Library",
	}
}

// publishedEvent creates and publishes an event organized by organizerID.
func (env *testEnv) publishedEvent(organizerID string) string {
	view, err := env.eventSvc.Create(context.Background(), organizerID, validEventInput())
	if err != nil {
		panic(err)
	}
	if err := env.eventSvc.Publish(context.Background(), organizerID, view.ID); err != nil {
		panic(err)
	}
	return view.ID
}
