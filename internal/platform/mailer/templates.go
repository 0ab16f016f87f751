package mailer

import (
	"fmt"
	"html"
)

type Message struct {
	Subject string
	Text    string
	HTML    string
}

func greeting(name string) string {
	if name == "" {
		return "Hello"
	}
	return "Hello " + name
}

func WelcomeMessage(name, username, role string) Message {
	subject := "Welcome to EventSphere"
	text := fmt.Sprintf("%s,\n\nYour %s account %q is ready.", greeting(name), role, username)
	body := fmt.Sprintf(`<p>%s,</p><p>Your %s account <b>%s</b> is ready.</p>`,
		html.EscapeString(greeting(name)), html.EscapeString(role), html.EscapeString(username))
	return Message{Subject: subject, Text: text, HTML: body}
}

func RegistrationMessage(name, eventTitle, date, location string) Message {
	subject := fmt.Sprintf("You're registered: %s", eventTitle)
	text := fmt.Sprintf("%s,\n\nYou are registered for %s on %s at %s.\nShow your QR code at the entrance to check in.",
		greeting(name), eventTitle, date, location)
	body := fmt.Sprintf(`<p>%s,</p><p>You are registered for <b>%s</b> on %s at %s.</p><p>Show your QR code at the entrance to check in.</p>`,
		html.EscapeString(greeting(name)), html.EscapeString(eventTitle), html.EscapeString(date), html.EscapeString(location))
	return Message{Subject: subject, Text: text, HTML: body}
}

func CertificateMessage(name, eventTitle, number, code string) Message {
	subject := fmt.Sprintf("Your certificate for %s", eventTitle)
	text := fmt.Sprintf("%s,\n\nYour certificate %s for %s has been issued.\nVerification code: %s",
		greeting(name), number, eventTitle, code)
	body := fmt.Sprintf(`<p>%s,</p><p>Your certificate <b>%s</b> for %s has been issued.</p><p>Verification code: <code>%s</code></p>`,
		html.EscapeString(greeting(name)), html.EscapeString(number), html.EscapeString(eventTitle), html.EscapeString(code))
	return Message{Subject: subject, Text: text, HTML: body}
}
