package notify

// Renderer produces the external-channel document (subject and body)
// for an event.  Rendering rich HTML is an external concern; the
// dispatcher only needs something to hand to the message sender.
type Renderer interface {
	Render(ev Event) (subject, body string, err error)
}

// PlainTextRenderer renders events as plain text using the same fixed
// templates the in-app channel uses.  It is the default when no richer
// renderer is wired in.
type PlainTextRenderer struct{}

// Render implements Renderer.
func (PlainTextRenderer) Render(ev Event) (string, string, error) {
	title, message, _, err := render(ev)
	if err != nil {
		return "", "", err
	}
	return title, message, nil
}
