package auth

import (
	"testing"
)

func TestHashPassword(t *testing.T) {
	password := "testpassword123"

	hashed, err := HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	if hashed == "" || hashed == password {
		t.Fatal("Hash should be non-empty and differ from the password")
	}

	hashed2, err := HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password second time: %v", err)
	}
	if hashed == hashed2 {
		t.Error("Different hashes should be generated for same password (bcrypt salt)")
	}
}

func TestCheckPassword(t *testing.T) {
	hashed, err := HashPassword("testpassword123")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	if !CheckPassword(hashed, "testpassword123") {
		t.Error("CheckPassword should return true for correct password")
	}
	if CheckPassword(hashed, "wrongpassword") {
		t.Error("CheckPassword should return false for wrong password")
	}
	if CheckPassword(hashed, "") {
		t.Error("CheckPassword should return false for empty password")
	}
	if CheckPassword("", "testpassword123") {
		t.Error("CheckPassword should return false for empty hash")
	}
}
