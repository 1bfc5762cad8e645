package domain

// EventAction is a lifecycle command applied to an event.
type EventAction string

const (
	EventActionPublish EventAction = "publish"
	EventActionCancel  EventAction = "cancel"
	EventActionArchive EventAction = "archive"
)

// EventActions lists every lifecycle action.
var EventActions = []EventAction{EventActionPublish, EventActionCancel, EventActionArchive}

// eventTransitions maps a status to the actions it accepts and their resulting status.
// A missing entry is a state machine violation.
var eventTransitions = map[EventStatus]map[EventAction]EventStatus{
	EventStatusDraft: {
		EventActionPublish: EventStatusPublished,
	},
	EventStatusPublished: {
		EventActionCancel:  EventStatusCancelled,
		EventActionArchive: EventStatusArchived,
	},
	EventStatusCancelled: {
		EventActionArchive: EventStatusArchived,
	},
	EventStatusArchived: {},
}

var transitionRejections = map[EventAction]string{
	EventActionPublish: "only draft events can be published",
	EventActionCancel:  "only published events can be cancelled",
	EventActionArchive: "only published or cancelled events can be archived",
}

// Transition returns the status reached by applying action to current,
// or an ErrConflict error when the state machine does not allow it.
func Transition(current EventStatus, action EventAction) (EventStatus, error) {
	next, ok := eventTransitions[current][action]
	if !ok {
		msg, known := transitionRejections[action]
		if !known {
			return current, NewError(ErrInvalidInput, "unknown event action %q", action)
		}
		return current, NewError(ErrConflict, "%s (status is %s)", msg, current)
	}
	return next, nil
}

// IsValid reports whether s is a known status.
func (s EventStatus) IsValid() bool {
	_, ok := eventTransitions[s]
	return ok
}

// IsTerminal reports whether no lifecycle action leaves s.
func (s EventStatus) IsTerminal() bool {
	return len(eventTransitions[s]) == 0
}

// CanApply reports whether action is allowed from s.
func (s EventStatus) CanApply(action EventAction) bool {
	_, ok := eventTransitions[s][action]
	return ok
}
