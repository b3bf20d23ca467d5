package models

// Tables lists every model owned by the conversation core, in creation order.
func Tables() []interface{} {
	return []interface{}{
		&Room{},
		&RoomMember{},
		&Message{},
		&Event{},
		&EventParticipant{},
	}
}
