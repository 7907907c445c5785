package org

import (
	"encoding/hex"
	"testing"
)

func TestNewInvitationToken_Format(t *testing.T) {
	token, err := newInvitationToken()
	if err != nil {
		t.Fatalf("newInvitationToken failed: %v", err)
	}

	if len(token) != invitationTokenLen*2 {
		t.Errorf("token length = %d, want %d", len(token), invitationTokenLen*2)
	}
	if _, err := hex.DecodeString(token); err != nil {
		t.Errorf("token is not valid hex: %v", err)
	}
}

func TestNewInvitationToken_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := newInvitationToken()
		if err != nil {
			t.Fatalf("newInvitationToken failed: %v", err)
		}
		if seen[token] {
			t.Fatal("duplicate invitation token generated")
		}
		seen[token] = true
	}
}
