package session

import (
	"testing"
	"time"
)

func TestSession_New(t *testing.T) {
	expiresAt := time.Now().Add(24 * time.Hour)
	sess := New("test-id", "test-token", expiresAt)

	if sess.ID != "test-id" {
		t.Errorf("ID = %q, want %q", sess.ID, "test-id")
	}
	if sess.Token != "test-token" {
		t.Errorf("Token = %q, want %q", sess.Token, "test-token")
	}
	if !sess.IsNew() {
		t.Error("IsNew() = false, want true")
	}
	if !sess.IsDirty() {
		t.Error("IsDirty() = false, want true")
	}
	if sess.NeedsRotation() {
		t.Error("NeedsRotation() = true for new session, want false")
	}
}

func TestSession_AuthenticateAndLogout(t *testing.T) {
	sess := New("id", "token", time.Now().Add(time.Hour))
	sess.ClearDirty()

	if sess.IsAuthenticated() {
		t.Error("IsAuthenticated() = true for new session, want false")
	}

	sess.Authenticate("42")
	if !sess.IsAuthenticated() || *sess.UserID != "42" {
		t.Errorf("UserID = %v, want 42", sess.UserID)
	}
	if !sess.NeedsRotation() || !sess.IsDirty() {
		t.Error("Authenticate should request rotation and mark dirty")
	}

	sess.ClearRotation()
	sess.SetCSRF("csrf_token", "abc", time.Now().Add(time.Hour))
	sess.Logout()

	if sess.IsAuthenticated() {
		t.Error("IsAuthenticated() = true after Logout, want false")
	}
	if _, ok := sess.CSRFToken("csrf_token"); ok {
		t.Error("Logout should drop CSRF tokens")
	}
	if !sess.NeedsRotation() {
		t.Error("Logout should request rotation")
	}
}

func TestSession_Values(t *testing.T) {
	sess := New("id", "token", time.Now().Add(time.Hour))
	sess.ClearDirty()

	sess.SetValue("key", "value")
	if !sess.IsDirty() {
		t.Error("SetValue should mark session as dirty")
	}

	val, ok := sess.GetValue("key")
	if !ok || val != "value" {
		t.Errorf("GetValue = %v, %v, want value, true", val, ok)
	}

	sess.ClearDirty()
	sess.DeleteValue("nonexistent")
	if sess.IsDirty() {
		t.Error("DeleteValue of a missing key should not mark dirty")
	}

	sess.DeleteValue("key")
	if _, ok := sess.GetValue("key"); ok {
		t.Error("value still present after DeleteValue")
	}
}

func TestSession_Flash(t *testing.T) {
	sess := New("id", "token", time.Now().Add(time.Hour))
	sess.Flash("login_error", "Invalid credentials")

	msg, ok := sess.TakeFlash("login_error")
	if !ok || msg != "Invalid credentials" {
		t.Errorf("TakeFlash = %q, %v", msg, ok)
	}
	if _, ok := sess.TakeFlash("login_error"); ok {
		t.Error("flash must be readable once")
	}
}

func TestSession_Clone(t *testing.T) {
	sess := New("id", "token", time.Now().Add(time.Hour))
	sess.SetValue("k", "v")
	sess.SetCSRF("n", "t", time.Now().Add(time.Hour))
	sess.Authenticate("1")

	c := sess.Clone()
	c.SetValue("k", "changed")
	c.SetCSRF("n", "other", time.Now())
	*c.UserID = "2"

	if v, _ := sess.GetValue("k"); v != "v" {
		t.Errorf("clone shares Values: got %v", v)
	}
	if tok, _ := sess.CSRFToken("n"); tok.Token != "t" {
		t.Errorf("clone shares CSRF: got %q", tok.Token)
	}
	if *sess.UserID != "1" {
		t.Errorf("clone shares UserID: got %q", *sess.UserID)
	}
}

func TestSession_IsExpired(t *testing.T) {
	if New("id", "t", time.Now().Add(time.Hour)).IsExpired() {
		t.Error("IsExpired() = true for future expiry")
	}
	if !New("id", "t", time.Now().Add(-time.Second)).IsExpired() {
		t.Error("IsExpired() = false for past expiry")
	}
}

func TestValue(t *testing.T) {
	sess := New("id", "token", time.Now().Add(time.Hour))
	sess.SetValue("count", 3)

	n, err := Value[int](sess, "count")
	if err != nil || n != 3 {
		t.Errorf("Value[int] = %d, %v", n, err)
	}
	if _, err := Value[string](sess, "count"); err == nil {
		t.Error("expected type mismatch error")
	}
	if _, err := Value[int](nil, "count"); err != ErrNotFound {
		t.Errorf("Value on nil session = %v, want ErrNotFound", err)
	}
	if got := ValueOr(sess, "missing", "def"); got != "def" {
		t.Errorf("ValueOr = %q, want def", got)
	}
}
