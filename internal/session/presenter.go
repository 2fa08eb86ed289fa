package session

// Choice is one selectable option offered to a user. Token is what the
// transport hands back when the option is picked.
type Choice struct {
	Label string
	Token string
}

// Presenter is the outbound half of the chat transport: it renders a set of
// labeled choices or sends a plain text notice. Delivery failures are the
// transport's concern, not the engine's.
type Presenter interface {
	PresentChoices(userID, prompt string, choices []Choice) error
	Notify(userID, text string) error
}
