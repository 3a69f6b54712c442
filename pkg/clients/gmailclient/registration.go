package gmailclient

import (
	"fmt"
	"strings"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

const eventTimeLayout = "Mon 02 Jan 2006, 15:04"

// SendRegistrationConfirmation emails a volunteer that they are registered for event
func (c *Client) SendRegistrationConfirmation(to, name string, event model.Event) error {
	subject, body := RegistrationConfirmation(name, event)
	return c.SendEmail(to, subject, body)
}

// RegistrationConfirmation renders the confirmation subject and body
func RegistrationConfirmation(name string, event model.Event) (subject, body string) {
	greeting := "Hi"
	if name = strings.TrimSpace(name); name != "" {
		greeting = "Hi " + name
	}

	where := event.Location.Name
	if event.Location.Type == model.LocationVirtual {
		where = "Online"
		if event.Location.Name != "" && !strings.EqualFold(event.Location.Name, "online") {
			where = fmt.Sprintf("Online (%s)", event.Location.Name)
		}
	}

	subject = fmt.Sprintf("You're registered: %s", event.Title)

	var b strings.Builder
	fmt.Fprintf(&b, "%s,\n\n", greeting)
	fmt.Fprintf(&b, "Thanks for signing up to volunteer at %s.\n\n", event.Title)
	fmt.Fprintf(&b, "When:  %s - %s\n", event.Start.Format(eventTimeLayout), event.End.Format(eventTimeLayout))
	fmt.Fprintf(&b, "Where: %s\n", where)
	if event.RegistrationDeadline != nil {
		fmt.Fprintf(&b, "\nYou can withdraw until %s.\n", event.RegistrationDeadline.Format(eventTimeLayout))
	}
	b.WriteString("\nOnce you're there, pick up a task from the event page and say hello in the event chat.\n")
	b.WriteString("\nSee you soon,\nVolunteer Hub\n")

	return subject, b.String()
}
