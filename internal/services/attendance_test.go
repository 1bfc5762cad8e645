package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"communityevents/internal/domain"
)

func TestAttendanceService_CheckInFlow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.addUser("user-1", "Uma")

	eventID := env.publishedEvent("org-1")

	p, err := env.attendanceSvc.Register(ctx, "user-1", eventID)
	require.NoError(t, err)
	assert.Equal(t, domain.AttendanceConfirmed, p.Status)

	ticket, err := env.attendanceSvc.GetTicket(ctx, "user-1", eventID)
	require.NoError(t, err)
	require.NotEmpty(t, ticket.CheckinToken)
	assert.Equal(t, "Go meetup", ticket.EventTitle)
	assert.Nil(t, ticket.CheckedInAt)

	checkinAt := env.now.Add(time.Hour)
	env.now = checkinAt
	checked, err := env.attendanceSvc.CheckIn(ctx, "org-1", eventID, ticket.CheckinToken)
	require.NoError(t, err)
	assert.Equal(t, domain.AttendanceAttended, checked.Status)
	require.NotNil(t, checked.CheckedInAt)
	assert.Equal(t, checkinAt, *checked.CheckedInAt)

	env.now = checkinAt.Add(time.Minute)
	_, err = env.attendanceSvc.CheckIn(ctx, "org-1", eventID, ticket.CheckinToken)
	require.ErrorIs(t, err, domain.ErrConflict)
	var already *domain.AlreadyCheckedInError
	require.ErrorAs(t, err, &already)
	assert.Equal(t, checkinAt, already.CheckedInAt, "original check-in time is reported")

	stored, err := env.participants.GetByEventAndUser(ctx, eventID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, checkinAt, *stored.CheckedInAt, "second scan leaves the timestamp unchanged")

	assert.Equal(t, 1, env.metrics.registered)
	assert.Equal(t, 1, env.metrics.checkedIn)
	assert.Equal(t, []string{domain.RejectAlreadyCheckedIn}, env.metrics.rejections)
}

func TestAttendanceService_Register(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		setup   func(env *testEnv) string
		wantErr error
		wantMsg string
	}{
		{
			name:  "published event",
			setup: func(env *testEnv) string { return env.publishedEvent("org-1") },
		},
		{
			name: "draft event",
			setup: func(env *testEnv) string {
				v, _ := env.eventSvc.Create(context.Background(), "org-1", validEventInput())
				return v.ID
			},
			wantErr: domain.ErrConflict,
			wantMsg: "cannot register for unpublished events",
		},
		{
			name: "cancelled event",
			setup: func(env *testEnv) string {
				id := env.publishedEvent("org-1")
				_ = env.eventSvc.Cancel(context.Background(), "org-1", id)
				return id
			},
			wantErr: domain.ErrConflict,
			wantMsg: "cannot register for cancelled events",
		},
		{
			name: "archived event",
			setup: func(env *testEnv) string {
				id := env.publishedEvent("org-1")
				_ = env.eventSvc.Archive(context.Background(), "org-1", id)
				return id
			},
			wantErr: domain.ErrConflict,
			wantMsg: "cannot register for archived events",
		},
		{
			name: "deleted event",
			setup: func(env *testEnv) string {
				id := env.publishedEvent("org-1")
				_ = env.eventSvc.Delete(context.Background(), "org-1", id)
				return id
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "already registered",
			setup: func(env *testEnv) string {
				id := env.publishedEvent("org-1")
				_, _ = env.attendanceSvc.Register(context.Background(), "user-1", id)
				return id
			},
			wantErr: domain.ErrConflict,
			wantMsg: "already registered for this event",
		},
		{
			name: "event is full",
			setup: func(env *testEnv) string {
				in := validEventInput()
				one := 1
				in.MaxCapacity = &one
				v, _ := env.eventSvc.Create(context.Background(), "org-1", in)
				_ = env.eventSvc.Publish(context.Background(), "org-1", v.ID)
				_, _ = env.attendanceSvc.Register(context.Background(), "user-2", v.ID)
				return v.ID
			},
			wantErr: domain.ErrConflict,
			wantMsg: "event is full",
		},
		{
			name: "cancelled participants free their seat",
			setup: func(env *testEnv) string {
				in := validEventInput()
				one := 1
				in.MaxCapacity = &one
				v, _ := env.eventSvc.Create(context.Background(), "org-1", in)
				_ = env.eventSvc.Publish(context.Background(), "org-1", v.ID)
				_, _ = env.attendanceSvc.Register(context.Background(), "user-2", v.ID)
				_, _ = env.attendanceSvc.UpdateStatus(context.Background(), "user-2", v.ID, domain.AttendanceCancelled)
				return v.ID
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			env.addUser("user-1", "Uma")
			eventID := tt.setup(env)

			p, err := env.attendanceSvc.Register(ctx, "user-1", eventID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				if tt.wantMsg != "" {
					assert.EqualError(t, err, tt.wantMsg)
				}
				return
			}
			require.NoError(t, err)
			require.NotNil(t, p.CheckinToken)
			assert.Len(t, *p.CheckinToken, 43, "32 random bytes, unpadded base64url")
			assert.Equal(t, env.now, p.RegisteredAt)
		})
	}
}

func TestAttendanceService_Register_TokenRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("one collision is retried", func(t *testing.T) {
		env := newTestEnv()
		eventID := env.publishedEvent("org-1")
		env.participants.createErrs = []error{domain.ErrDuplicateToken}

		p, err := env.attendanceSvc.Register(ctx, "user-1", eventID)
		require.NoError(t, err)
		assert.NotEmpty(t, p.ID)
	})

	t.Run("second collision is an internal error", func(t *testing.T) {
		env := newTestEnv()
		eventID := env.publishedEvent("org-1")
		env.participants.createErrs = []error{domain.ErrDuplicateToken, domain.ErrDuplicateToken}

		_, err := env.attendanceSvc.Register(ctx, "user-1", eventID)
		require.ErrorIs(t, err, domain.ErrDuplicateToken)
		for _, kind := range []error{domain.ErrConflict, domain.ErrNotFound, domain.ErrInvalidInput} {
			assert.NotErrorIs(t, err, kind)
		}
		assert.Empty(t, env.participants.byID)
		assert.Zero(t, env.metrics.registered)
	})

	t.Run("generator failure", func(t *testing.T) {
		env := newTestEnv()
		eventID := env.publishedEvent("org-1")
		env.attendanceSvc.newToken = func() (string, error) { return "", errors.New("entropy exhausted") }

		_, err := env.attendanceSvc.Register(ctx, "user-1", eventID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "generate check-in token")
	})
}

func TestAttendanceService_Register_SendsConfirmation(t *testing.T) {
	ctx := context.Background()

	t.Run("email carries the ticket", func(t *testing.T) {
		env := newTestEnv()
		env.addUser("user-1", "Uma")
		eventID := env.publishedEvent("org-1")

		p, err := env.attendanceSvc.Register(ctx, "user-1", eventID)
		require.NoError(t, err)
		require.Len(t, env.email.registration, 1)
		sent := env.email.registration[0]
		assert.Equal(t, "user-1@example.com", sent.Email)
		assert.Equal(t, "Uma", sent.Name)
		assert.Equal(t, "Go meetup", sent.EventTitle)
		assert.Equal(t, *p.CheckinToken, sent.CheckinToken)
	})

	t.Run("email failure keeps the registration", func(t *testing.T) {
		env := newTestEnv()
		env.addUser("user-1", "Uma")
		env.email.err = errors.New("ses throttled")
		eventID := env.publishedEvent("org-1")

		_, err := env.attendanceSvc.Register(ctx, "user-1", eventID)
		require.NoError(t, err)
		ok, _ := env.participants.Exists(ctx, eventID, "user-1")
		assert.True(t, ok)
	})
}

func TestAttendanceService_ConcurrentRegistrationsLeaveOneRow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	eventID := env.publishedEvent("org-1")

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = env.attendanceSvc.Register(ctx, "user-1", eventID)
		}()
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		require.ErrorIs(t, err, domain.ErrConflict)
	}
	assert.Equal(t, 1, ok)
	n, _ := env.participants.CountByEvent(ctx, eventID)
	assert.Equal(t, int64(1), n)
}

func TestAttendanceService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		checkIn    bool
		register   bool
		status     domain.AttendanceStatus
		wantErr    error
		wantStatus domain.AttendanceStatus
	}{
		{name: "cancel attendance", register: true, status: domain.AttendanceCancelled, wantStatus: domain.AttendanceCancelled},
		{name: "confirm again", register: true, status: domain.AttendanceConfirmed, wantStatus: domain.AttendanceConfirmed},
		{name: "attended only through check-in", register: true, status: domain.AttendanceAttended, wantErr: domain.ErrInvalidInput, wantStatus: domain.AttendanceConfirmed},
		{name: "unknown status", register: true, status: "MAYBE", wantErr: domain.ErrInvalidInput, wantStatus: domain.AttendanceConfirmed},
		{name: "checked in participant is frozen", register: true, checkIn: true, status: domain.AttendanceCancelled, wantErr: domain.ErrConflict, wantStatus: domain.AttendanceAttended},
		{name: "not registered", status: domain.AttendanceCancelled, wantErr: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			eventID := env.publishedEvent("org-1")
			if tt.register {
				_, err := env.attendanceSvc.Register(ctx, "user-1", eventID)
				require.NoError(t, err)
			}
			if tt.checkIn {
				ticket, err := env.attendanceSvc.GetTicket(ctx, "user-1", eventID)
				require.NoError(t, err)
				_, err = env.attendanceSvc.CheckIn(ctx, "org-1", eventID, ticket.CheckinToken)
				require.NoError(t, err)
			}

			p, err := env.attendanceSvc.UpdateStatus(ctx, "user-1", eventID, tt.status)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantStatus, p.Status)
			}
			if tt.register {
				stored, err := env.participants.GetByEventAndUser(ctx, eventID, "user-1")
				require.NoError(t, err)
				assert.Equal(t, tt.wantStatus, stored.Status)
				assert.Equal(t, tt.checkIn, stored.CheckedInAt != nil)
			}
		})
	}
}

func TestAttendanceService_Cancel(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	eventID := env.publishedEvent("org-1")

	_, err := env.attendanceSvc.Register(ctx, "user-1", eventID)
	require.NoError(t, err)
	require.NoError(t, env.attendanceSvc.Cancel(ctx, "user-1", eventID))

	exists, _ := env.participants.Exists(ctx, eventID, "user-1")
	assert.False(t, exists, "cancellation deletes the row")

	err = env.attendanceSvc.Cancel(ctx, "user-1", eventID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.EqualError(t, err, "not registered for this event")

	_, err = env.attendanceSvc.Register(ctx, "user-1", eventID)
	require.NoError(t, err, "a cancelled user can register again")
}

func TestAttendanceService_GetTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("not registered", func(t *testing.T) {
		env := newTestEnv()
		eventID := env.publishedEvent("org-1")

		_, err := env.attendanceSvc.GetTicket(ctx, "user-1", eventID)
		require.ErrorIs(t, err, domain.ErrNotFound)
		assert.EqualError(t, err, "not registered for this event")
	})

	t.Run("legacy row gets a token once", func(t *testing.T) {
		env := newTestEnv()
		env.addUser("user-1", "Uma")
		eventID := env.publishedEvent("org-1")
		legacy := domain.NewParticipant(eventID, "user-1", env.now)
		legacy.UserName = "Uma"
		require.NoError(t, env.participants.Create(ctx, legacy))

		first, err := env.attendanceSvc.GetTicket(ctx, "user-1", eventID)
		require.NoError(t, err)
		require.NotEmpty(t, first.CheckinToken)
		assert.Equal(t, "Uma", first.UserName)

		second, err := env.attendanceSvc.GetTicket(ctx, "user-1", eventID)
		require.NoError(t, err)
		assert.Equal(t, first.CheckinToken, second.CheckinToken, "token is never regenerated")
	})

	t.Run("backfill collision is retried once", func(t *testing.T) {
		env := newTestEnv()
		eventID := env.publishedEvent("org-1")
		taken := "taken-token"
		other := domain.NewParticipant(eventID, "user-2", env.now)
		other.CheckinToken = &taken
		require.NoError(t, env.participants.Create(ctx, other))
		legacy := domain.NewParticipant(eventID, "user-1", env.now)
		require.NoError(t, env.participants.Create(ctx, legacy))

		tokens := []string{taken, "fresh-token"}
		env.attendanceSvc.newToken = func() (string, error) {
			tok := tokens[0]
			tokens = tokens[1:]
			return tok, nil
		}
		ticket, err := env.attendanceSvc.GetTicket(ctx, "user-1", eventID)
		require.NoError(t, err)
		assert.Equal(t, "fresh-token", ticket.CheckinToken)
	})
}

func TestAttendanceService_CheckInRejections(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	eventA := env.publishedEvent("org-1")
	eventB := env.publishedEvent("org-1")

	_, err := env.attendanceSvc.Register(ctx, "user-1", eventA)
	require.NoError(t, err)
	ticket, err := env.attendanceSvc.GetTicket(ctx, "user-1", eventA)
	require.NoError(t, err)

	tests := []struct {
		name       string
		organizer  string
		eventID    string
		token      string
		wantErr    error
		wantReason string
	}{
		{name: "non organizer", organizer: "user-1", eventID: eventA, token: ticket.CheckinToken, wantErr: domain.ErrForbidden, wantReason: domain.RejectForbidden},
		{name: "token replayed on another event", organizer: "org-1", eventID: eventB, token: ticket.CheckinToken, wantErr: domain.ErrNotFound, wantReason: domain.RejectUnknownToken},
		{name: "unknown token", organizer: "org-1", eventID: eventA, token: "nope", wantErr: domain.ErrNotFound, wantReason: domain.RejectUnknownToken},
		{name: "blank token", organizer: "org-1", eventID: eventA, token: "  ", wantErr: domain.ErrInvalidInput},
		{name: "missing event", organizer: "org-1", eventID: "ev-missing", token: ticket.CheckinToken, wantErr: domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env.metrics.rejections = nil
			_, err := env.attendanceSvc.CheckIn(ctx, tt.organizer, tt.eventID, tt.token)
			require.ErrorIs(t, err, tt.wantErr)
			if tt.wantReason != "" {
				assert.Equal(t, []string{tt.wantReason}, env.metrics.rejections)
			} else {
				assert.Empty(t, env.metrics.rejections)
			}
		})
	}

	stored, err := env.participants.GetByEventAndUser(ctx, eventA, "user-1")
	require.NoError(t, err)
	assert.Nil(t, stored.CheckedInAt, "rejected scans never check the participant in")
	assert.Equal(t, domain.AttendanceConfirmed, stored.Status)
}

func TestAttendanceService_AttendanceList(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	eventID := env.publishedEvent("org-1")

	for _, u := range []string{"user-1", "user-2"} {
		_, err := env.attendanceSvc.Register(ctx, u, eventID)
		require.NoError(t, err)
	}
	ticket, err := env.attendanceSvc.GetTicket(ctx, "user-1", eventID)
	require.NoError(t, err)
	_, err = env.attendanceSvc.CheckIn(ctx, "org-1", eventID, ticket.CheckinToken)
	require.NoError(t, err)

	_, err = env.attendanceSvc.AttendanceList(ctx, "user-1", eventID)
	require.ErrorIs(t, err, domain.ErrForbidden)

	items, err := env.attendanceSvc.AttendanceList(ctx, "org-1", eventID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	checked := map[string]bool{}
	for _, it := range items {
		checked[it.UserID] = it.HasCheckedIn
	}
	assert.Equal(t, map[string]bool{"user-1": true, "user-2": false}, checked)
}

func TestStoreWithToken(t *testing.T) {
	calls := 0
	token, err := storeWithToken(newCheckinToken, func(token string) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Regexp(t, `^[A-Za-z0-9_-]{43}$`, token)

	other, err := newCheckinToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)

	boom := errors.New("insert failed")
	_, err = storeWithToken(newCheckinToken, func(string) error { return boom })
	require.ErrorIs(t, err, boom)
}
