package models

import "testing"

func TestPasswordHashing(t *testing.T) {
	user := User{Username: "nurse1"}
	if err := user.SetPassword("correct horse battery staple"); err != nil {
		t.Fatal(err)
	}

	if user.PasswordHash == "correct horse battery staple" {
		t.Fatal("password stored in plain text")
	}
	if !user.CheckPassword("correct horse battery staple") {
		t.Error("correct password rejected")
	}
	if user.CheckPassword("wrong") {
		t.Error("wrong password accepted")
	}
}

func TestSanitizeOmitsPasswordHash(t *testing.T) {
	user := User{Username: "admin", Role: RoleAdmin, DefaultWard: "1"}
	if err := user.SetPassword("admin123"); err != nil {
		t.Fatal(err)
	}

	s := user.Sanitize()
	if s.Username != "admin" || s.Role != RoleAdmin || s.DefaultWard != "1" {
		t.Errorf("sanitized fields wrong: %+v", s)
	}
}
