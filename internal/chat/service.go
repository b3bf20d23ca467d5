package chat

import "gorm.io/gorm"

// Service wires the conversation core on top of one database.
type Service struct {
	Store       *Store
	Directory   *Directory
	Coordinator *Coordinator
	Messages    *MessageStore
}

func NewService(db *gorm.DB) *Service {
	store := NewStore(db)
	directory := NewDirectory(store)
	return &Service{
		Store:       store,
		Directory:   directory,
		Coordinator: NewCoordinator(store, directory),
		Messages:    NewMessageStore(store),
	}
}
