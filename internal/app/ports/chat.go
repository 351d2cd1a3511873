package ports

// SenderPort posts text to the joined channel.
type SenderPort interface {
	Say(text string) error
}
