package events

// Topic constants for domain events emitted by the billing flow.
const (
	TopicPurchaseCompleted = "purchase.completed"
)
