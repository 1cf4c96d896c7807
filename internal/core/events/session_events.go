package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeLoginSucceeded     = "session.login_succeeded"
	EventTypeLogout             = "session.logout"
	EventTypeNavigateToRegister = "session.navigate_register"
	EventTypeNavigateToLogin    = "session.navigate_login"
)

type LoginSucceededEvent struct {
	BaseEvent
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func NewLoginSucceededEvent(userID int64, username, role string) *LoginSucceededEvent {
	return &LoginSucceededEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeLoginSucceeded,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":  userID,
				"username": username,
				"role":     role,
			},
		},
		UserID:   userID,
		Username: username,
		Role:     role,
	}
}

type LogoutEvent struct {
	BaseEvent
	UserID int64 `json:"user_id"`
}

func NewLogoutEvent(userID int64) *LogoutEvent {
	return &LogoutEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeLogout,
			Timestamp: time.Now(),
			Data:      map[string]interface{}{"user_id": userID},
		},
		UserID: userID,
	}
}

// NavigationEvent asks the session host to switch between the login and
// registration screens.
type NavigationEvent struct {
	BaseEvent
}

func NewNavigationEvent(eventType string) *NavigationEvent {
	return &NavigationEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data:      map[string]interface{}{},
		},
	}
}
