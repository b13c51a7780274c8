package outbox

// Event is the envelope written to outbox_events. The Kafka topic equals
// EventType, one topic per event type and version.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

const AggregateBooking = "booking"

// BookingEventType names the topic for a booking entering status.
func BookingEventType(status string) string {
	return "salon.booking." + status + ".v1"
}
