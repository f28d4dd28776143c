package rooms

// Metrics receives registry events. *metrics.Recorder and metrics.Nop satisfy it.
type Metrics interface {
	RoomFull(number string)
	ReleaseUnderflow(number string)
	SetOccupancy(roomType string, occupied, capacity int)
}
