package database

import (
	"context"
	"errors"
	"testing"

	"github.com/chachabrian/uniride-backend/internal/models"
)

func TestMemoryUsers(t *testing.T) {
	users := NewMemoryUsers()
	ctx := context.Background()

	u := &models.User{Username: "wanjiru", Email: "wanjiru@uni.ac.ke", Gender: models.GenderFemale}
	if err := users.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if u.ID == 0 {
		t.Fatal("ID not assigned")
	}

	dup := &models.User{Username: "other", Email: "WANJIRU@uni.ac.ke"}
	if err := users.CreateUser(ctx, dup); !errors.Is(err, ErrUserExists) {
		t.Errorf("duplicate CreateUser() error = %v, want ErrUserExists", err)
	}

	got, err := users.UserByEmail(ctx, "Wanjiru@Uni.ac.ke")
	if err != nil || got.ID != u.ID {
		t.Fatalf("UserByEmail() = %+v, %v", got, err)
	}

	got.EnrollmentID = "SCT-221"
	if err := users.UpdateUser(ctx, got); err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}
	again, _ := users.UserByID(ctx, u.ID)
	if again.EnrollmentID != "SCT-221" {
		t.Errorf("EnrollmentID = %q", again.EnrollmentID)
	}

	if _, err := users.UserByID(ctx, 99); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("UserByID(99) error = %v, want ErrUserNotFound", err)
	}
}
