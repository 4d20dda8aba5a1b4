package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hardware-management-api/internal/models"
)

// demoEmployee is the display name the demo directory gives employees
const demoEmployee = "Employee User"

// SeedAssets is the starting asset catalogue of a fresh deployment. HW-001
// is held by the demo employee so their dashboard lists it.
func SeedAssets() []models.Asset {
	return []models.Asset{
		{AssetID: "HW-001", Name: `MacBook Pro 16"`, SerialNumber: "SERIAL-12345", Category: "Laptop", Status: models.StatusAssigned, AssignedTo: demoEmployee, PurchaseDate: "15/01/2024"},
		{AssetID: "HW-002", Name: `Dell Monitor 27"`, SerialNumber: "MON-67890", Category: "Monitor", Status: models.StatusAvailable, AssignedTo: models.Unassigned, PurchaseDate: "20/03/2024"},
		{AssetID: "HW-003", Name: "Logitech Mouse", SerialNumber: "MOUSE-456", Category: "Peripheral", Status: models.StatusMaintenance, AssignedTo: "Jane Smith", PurchaseDate: "10/02/2024"},
		{AssetID: "HW-004", Name: "HP EliteBook 840", SerialNumber: "HP-840-789", Category: "Laptop", Status: models.StatusAvailable, AssignedTo: models.Unassigned, PurchaseDate: "05/04/2024"},
		{AssetID: "HW-005", Name: "Dell Keyboard", SerialNumber: "KB-123", Category: "Peripheral", Status: models.StatusAssigned, AssignedTo: "Mike Johnson", PurchaseDate: "12/03/2024"},
	}
}

// SeedActivity is the starting activity feed, dated relative to now
func SeedActivity(now time.Time) []models.Activity {
	return []models.Activity{
		{Type: models.ActivityRequest, Message: "Your laptop request was approved", CreatedAt: now.Add(-72 * time.Hour)},
		{Type: models.ActivityMaintenance, Message: "Monitor maintenance completed", CreatedAt: now.Add(-24 * time.Hour)},
		{Type: models.ActivityAssigned, Message: "Dell XPS 15 assigned to you", CreatedAt: now.Add(-2 * time.Hour)},
	}
}

// SeedRequests are the requests awaiting review in a fresh deployment
func SeedRequests(now time.Time) []models.AssetRequest {
	joining := now.AddDate(0, 0, 14).Format(models.JoiningDateLayout)
	return []models.AssetRequest{
		{
			Category: "Laptop", Reason: "Current laptop battery no longer holds a charge",
			Priority: models.PriorityHigh, RequestedBy: "john.doe@company.com", RequesterName: demoEmployee,
			RequesterRole: models.RoleEmployee, Status: models.RequestPending, CreatedAt: now.Add(-5 * time.Hour),
		},
		{
			Category: "Monitor", Reason: "Second screen for design review work",
			Priority: models.PriorityNormal, RequestedBy: "jane.smith@company.com", RequesterName: "Jane Smith",
			RequesterRole: models.RoleEmployee, Status: models.RequestPending, CreatedAt: now.Add(-26 * time.Hour),
		},
		{
			Category: "Laptop", Reason: "Standard developer setup for new joiner",
			Priority: models.PriorityNormal, EmployeeName: "Alex Green", JoiningDate: joining,
			RequestedBy: "hr@company.com", RequesterName: "HR User",
			RequesterRole: models.RoleHR, Status: models.RequestPending, CreatedAt: now.Add(-48 * time.Hour),
		},
	}
}

// Seed writes the seed data through any store. Assets whose serial number
// is already known are left as they are, so running it twice neither
// duplicates the catalogue nor undoes issue/return history; the activity
// feed and requests are only added when the catalogue was empty.
func Seed(ctx context.Context, s Store, now time.Time) (int, error) {
	created := 0
	for _, a := range SeedAssets() {
		_, err := s.AssetBySerial(ctx, a.SerialNumber)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return created, fmt.Errorf("seed asset %s: %w", a.AssetID, err)
		}
		if _, _, err := s.UpsertAssetBySerial(ctx, a); err != nil {
			return created, fmt.Errorf("seed asset %s: %w", a.AssetID, err)
		}
		created++
	}
	if created < len(SeedAssets()) {
		return created, nil
	}
	for _, act := range SeedActivity(now) {
		if _, err := s.AddActivity(ctx, act); err != nil {
			return created, fmt.Errorf("seed activity: %w", err)
		}
	}
	for _, r := range SeedRequests(now) {
		if _, err := s.CreateRequest(ctx, r); err != nil {
			return created, fmt.Errorf("seed request: %w", err)
		}
	}
	return created, nil
}
