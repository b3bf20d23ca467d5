package config

import (
	"context"
	"log"
	"meetup_chat/internal/chat"
	"meetup_chat/models"
)

const (
	demoOrganizerID uint = 1
	demoGuestID     uint = 2
)

// SeedDemo creates a demo event and a direct conversation between users 1 and
// 2 so a fresh database has something to poll. It is a no-op once any event
// exists.
func SeedDemo(ctx context.Context, svc *chat.Service) error {
	log.Println("🌱 Seeding demo data...")

	var count int64
	if err := svc.Store.DB().WithContext(ctx).Model(&models.Event{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Demo data already present, skipping")
		return nil
	}

	event, room, err := svc.Coordinator.CreateEvent(ctx, demoOrganizerID, "Demo Meetup", 10)
	if err != nil {
		log.Printf("Failed to seed demo event: %v", err)
		return err
	}
	log.Printf("Event seeded: %s (ID: %d, room: %d)", event.Title, event.ID, room.ID)

	if err := svc.Coordinator.Join(ctx, demoGuestID, event.ID); err != nil {
		log.Printf("Failed to seed demo participant: %v", err)
		return err
	}

	direct, err := svc.Directory.ResolveOrCreateDirect(ctx, demoOrganizerID, demoGuestID)
	if err != nil {
		log.Printf("Failed to seed direct room: %v", err)
		return err
	}
	if _, err := svc.Messages.Append(ctx, direct.ID, demoOrganizerID, "Welcome to the meetup!"); err != nil {
		log.Printf("Failed to seed welcome message: %v", err)
		return err
	}

	log.Println("✅ Seeding complete.")
	return nil
}
