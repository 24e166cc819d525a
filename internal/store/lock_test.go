package store

import "testing"

func TestProjectLock_LockUnlock(t *testing.T) {
	dir := t.TempDir()

	l, err := NewProjectLock(dir)
	if err != nil {
		t.Fatalf("NewProjectLock: %v", err)
	}
	if err := l.Lock(); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if err := l.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
}

func TestProjectLock_SerializesSecondHandle(t *testing.T) {
	dir := t.TempDir()

	l1, err := NewProjectLock(dir)
	if err != nil {
		t.Fatalf("NewProjectLock l1: %v", err)
	}
	l2, err := NewProjectLock(dir)
	if err != nil {
		t.Fatalf("NewProjectLock l2: %v", err)
	}

	if err := l1.Lock(); err != nil {
		t.Fatalf("l1.Lock: %v", err)
	}
	defer l1.Unlock()

	locked, err := l2.fl.TryLock()
	if err != nil {
		t.Fatalf("TryLock: %v", err)
	}
	if locked {
		t.Fatalf("expected second handle to fail to acquire the held lock")
	}
}
