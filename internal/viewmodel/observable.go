// Package viewmodel holds the interactive state behind the CLI screens.
// Each view-model exposes its state as fields, commands as methods that
// return errors, and change notification through Observable.
package viewmodel

import (
	"fmt"

	errors "github.com/frahmantamala/office-ticketing/internal"
)

// Observable calls subscribers synchronously, in subscription order, with
// the name of each changed property.
type Observable struct {
	subscribers []subscriber
	nextID      int
}

type subscriber struct {
	id int
	fn func(property string)
}

// Subscribe registers fn and returns a function that removes it.
func (o *Observable) Subscribe(fn func(property string)) func() {
	id := o.nextID
	o.nextID++
	o.subscribers = append(o.subscribers, subscriber{id: id, fn: fn})
	return func() {
		for i, s := range o.subscribers {
			if s.id == id {
				o.subscribers = append(o.subscribers[:i:i], o.subscribers[i+1:]...)
				return
			}
		}
	}
}

func (o *Observable) notify(properties ...string) {
	for _, p := range properties {
		for _, s := range o.subscribers {
			s.fn(p)
		}
	}
}

const (
	PropCurrentUser    = "CurrentUser"
	PropStatusMessage  = "StatusMessage"
	PropIsLoading      = "IsLoading"
	PropTickets        = "Tickets"
	PropSelectedTicket = "SelectedTicket"
	PropPage           = "Page"
	PropForm           = "Form"
	PropErrorMessage   = "ErrorMessage"
	PropUsers          = "Users"
	PropSelectedUser   = "SelectedUser"
)

// describe renders err for a status line. Validation errors list every
// failing field.
func describe(err error) string {
	if appErr, ok := errors.IsAppError(err); ok {
		return appErr.GetDetailedMessage()
	}
	return err.Error()
}

func statusf(prefix string, err error) string {
	return fmt.Sprintf("%s: %s", prefix, describe(err))
}
