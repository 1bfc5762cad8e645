package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"communityevents/internal/delivery/http/helpers"
	"communityevents/internal/delivery/http/middleware"
	"communityevents/internal/domain"
)

const (
	testEventID   = "0b0c52c4-5d8a-4a1e-9c43-3f7c9e1d2a10"
	testCommentID = "6f1d2e3c-7a8b-4c9d-8e0f-1a2b3c4d5e6f"
	testUserID    = "user-1"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// call describes one request against a handler.
type call struct {
	method string
	target string
	body   any
	userID string
	path   map[string]string
	header map[string]string
}

func serve(t *testing.T, handler http.HandlerFunc, c call) (*httptest.ResponseRecorder, helpers.APIResponse) {
	t.Helper()
	var body io.Reader
	switch b := c.body.(type) {
	case nil:
	case string:
		body = bytes.NewBufferString(b)
	case []byte:
		body = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(c.method, "http://test"+c.target, body)
	for k, v := range c.header {
		req.Header.Set(k, v)
	}
	for k, v := range c.path {
		req.SetPathValue(k, v)
	}
	if c.userID != "" {
		req = req.WithContext(middleware.SetUserID(req.Context(), c.userID))
	}
	rr := httptest.NewRecorder()
	handler(rr, req)

	var envelope helpers.APIResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope), rr.Body.String())
	return rr, envelope
}

// decodeData re-decodes the envelope data into out.
func decodeData(t *testing.T, envelope helpers.APIResponse, out any) {
	t.Helper()
	require.Nil(t, envelope.Error)
	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func eventPath() map[string]string { return map[string]string{"id": testEventID} }

type fakeEventService struct {
	createFn     func(organizerID string, in domain.EventInput) (*domain.EventView, error)
	updateFn     func(callerID, eventID string, in domain.EventInput) (*domain.EventView, error)
	transitionFn func(action, callerID, eventID string) error
	coverFn      func(callerID, eventID, name string, image []byte) (*domain.EventView, error)
	getFn        func(eventID, callerID string) (*domain.EventView, error)
	searchFn     func(callerID string, filter domain.EventFilter, page domain.PaginationParams) ([]*domain.EventView, int, error)
	listFn       func(userID string) ([]*domain.EventView, error)
}

func (f *fakeEventService) Create(_ context.Context, organizerID string, in domain.EventInput) (*domain.EventView, error) {
	return f.createFn(organizerID, in)
}

func (f *fakeEventService) Update(_ context.Context, callerID, eventID string, in domain.EventInput) (*domain.EventView, error) {
	return f.updateFn(callerID, eventID, in)
}

func (f *fakeEventService) Publish(_ context.Context, callerID, eventID string) error {
	return f.transitionFn("publish", callerID, eventID)
}

func (f *fakeEventService) Cancel(_ context.Context, callerID, eventID string) error {
	return f.transitionFn("cancel", callerID, eventID)
}

func (f *fakeEventService) Archive(_ context.Context, callerID, eventID string) error {
	return f.transitionFn("archive", callerID, eventID)
}

func (f *fakeEventService) Delete(_ context.Context, callerID, eventID string) error {
	return f.transitionFn("delete", callerID, eventID)
}

func (f *fakeEventService) SetCoverImage(_ context.Context, callerID, eventID, name string, image io.Reader) (*domain.EventView, error) {
	raw, err := io.ReadAll(image)
	if err != nil {
		return nil, err
	}
	return f.coverFn(callerID, eventID, name, raw)
}

func (f *fakeEventService) Get(_ context.Context, eventID, callerID string) (*domain.EventView, error) {
	return f.getFn(eventID, callerID)
}

func (f *fakeEventService) ListPublic(_ context.Context, callerID string, page domain.PaginationParams) ([]*domain.EventView, int, error) {
	return f.searchFn(callerID, domain.EventFilter{}, page)
}

func (f *fakeEventService) Search(_ context.Context, callerID string, filter domain.EventFilter, page domain.PaginationParams) ([]*domain.EventView, int, error) {
	return f.searchFn(callerID, filter, page)
}

func (f *fakeEventService) ListMine(_ context.Context, organizerID string) ([]*domain.EventView, error) {
	return f.listFn(organizerID)
}

func (f *fakeEventService) ListAttending(_ context.Context, userID string) ([]*domain.EventView, error) {
	return f.listFn(userID)
}

type fakeAttendanceService struct {
	registerFn func(userID, eventID string) (*domain.Participant, error)
	updateFn   func(userID, eventID string, status domain.AttendanceStatus) (*domain.Participant, error)
	cancelErr  error
	ticketFn   func(userID, eventID string) (*domain.Ticket, error)
	checkInFn  func(organizerID, eventID, token string) (*domain.Participant, error)
	listFn     func(organizerID, eventID string) ([]*domain.AttendanceItem, error)
}

func (f *fakeAttendanceService) Register(_ context.Context, userID, eventID string) (*domain.Participant, error) {
	return f.registerFn(userID, eventID)
}

func (f *fakeAttendanceService) UpdateStatus(_ context.Context, userID, eventID string, status domain.AttendanceStatus) (*domain.Participant, error) {
	return f.updateFn(userID, eventID, status)
}

func (f *fakeAttendanceService) Cancel(context.Context, string, string) error {
	return f.cancelErr
}

func (f *fakeAttendanceService) GetTicket(_ context.Context, userID, eventID string) (*domain.Ticket, error) {
	return f.ticketFn(userID, eventID)
}

func (f *fakeAttendanceService) CheckIn(_ context.Context, organizerID, eventID, token string) (*domain.Participant, error) {
	return f.checkInFn(organizerID, eventID, token)
}

func (f *fakeAttendanceService) AttendanceList(_ context.Context, organizerID, eventID string) ([]*domain.AttendanceItem, error) {
	return f.listFn(organizerID, eventID)
}

type fakeCommentService struct {
	comments  []*domain.CommentView
	lastUser  string
	lastText  string
	createErr error
	updateErr error
	deleteErr error
}

func (f *fakeCommentService) Create(_ context.Context, userID, eventID, content string) (*domain.Comment, error) {
	f.lastUser, f.lastText = userID, content
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &domain.Comment{ID: testCommentID, EventID: eventID, UserID: userID, Content: content}, nil
}

func (f *fakeCommentService) Update(_ context.Context, userID, eventID, commentID, content string) (*domain.Comment, error) {
	f.lastUser, f.lastText = userID, content
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &domain.Comment{ID: commentID, EventID: eventID, UserID: userID, Content: content}, nil
}

func (f *fakeCommentService) Delete(_ context.Context, userID, _, _ string) error {
	f.lastUser = userID
	return f.deleteErr
}

func (f *fakeCommentService) List(_ context.Context, _, callerID string) ([]*domain.CommentView, error) {
	f.lastUser = callerID
	return f.comments, nil
}

type fakeRatingService struct {
	lastScore   int
	lastComment *string
	rateErr     error
	deleteErr   error
	summary     *domain.RatingSummary
}

func (f *fakeRatingService) Rate(_ context.Context, userID, eventID string, score int, comment *string) (*domain.Rating, error) {
	f.lastScore, f.lastComment = score, comment
	if f.rateErr != nil {
		return nil, f.rateErr
	}
	return &domain.Rating{EventID: eventID, UserID: userID, Score: score, Comment: comment}, nil
}

func (f *fakeRatingService) Delete(context.Context, string, string) error { return f.deleteErr }

func (f *fakeRatingService) List(context.Context, string) ([]*domain.Rating, error) {
	return []*domain.Rating{}, nil
}

func (f *fakeRatingService) Summary(context.Context, string) (*domain.RatingSummary, error) {
	return f.summary, nil
}

type fakeFavoriteService struct {
	addErr     error
	removeErr  error
	isFavorite bool
	events     []*domain.EventView
}

func (f *fakeFavoriteService) Add(context.Context, string, string) error    { return f.addErr }
func (f *fakeFavoriteService) Remove(context.Context, string, string) error { return f.removeErr }

func (f *fakeFavoriteService) IsFavorite(context.Context, string, string) (bool, error) {
	return f.isFavorite, nil
}

func (f *fakeFavoriteService) List(context.Context, string) ([]*domain.EventView, error) {
	return f.events, nil
}

type fakeCategoryService struct {
	categories []*domain.Category
}

func (f *fakeCategoryService) List(context.Context) ([]*domain.Category, error) {
	return f.categories, nil
}

func (f *fakeCategoryService) GetByID(_ context.Context, id string) (*domain.Category, error) {
	for _, c := range f.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, domain.NewError(domain.ErrNotFound, "category not found")
}

type fakeAuthService struct {
	result *domain.AuthResult
	err    error
	args   []string
}

func (f *fakeAuthService) Register(_ context.Context, name, email, password string) (*domain.AuthResult, error) {
	f.args = []string{name, email, password}
	return f.result, f.err
}

func (f *fakeAuthService) Login(_ context.Context, email, password string) (*domain.AuthResult, error) {
	f.args = []string{email, password}
	return f.result, f.err
}

type fakeUserService struct {
	user        *domain.User
	getErr      error
	updateErr   error
	lastUpdate  domain.ProfileUpdate
	passwordErr error
	passwords   []string
	deleteErr   error
	deletedID   string
}

func (f *fakeUserService) GetByID(context.Context, string) (*domain.User, error) {
	return f.user, f.getErr
}

func (f *fakeUserService) UpdateProfile(_ context.Context, userID string, in domain.ProfileUpdate) (*domain.User, error) {
	f.lastUpdate = in
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &domain.User{ID: userID, Name: in.Name, Email: in.Email, Phone: in.Phone}, nil
}

func (f *fakeUserService) ChangePassword(_ context.Context, _, current, next string) error {
	f.passwords = []string{current, next}
	return f.passwordErr
}

func (f *fakeUserService) DeleteAccount(_ context.Context, userID string) error {
	f.deletedID = userID
	return f.deleteErr
}
