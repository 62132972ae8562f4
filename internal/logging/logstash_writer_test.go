package logging

import (
	"bufio"
	"net"
	"testing"
	"time"
)

func TestNewLogstashWriterRejectsEmptyAddr(t *testing.T) {
	if _, err := NewLogstashWriter("  "); err == nil {
		t.Fatal("expected error for empty address")
	}
}

func TestLogstashWriterShipsEntries(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	lines := make(chan string, 4)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		sc := bufio.NewScanner(conn)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	w, err := NewLogstashWriter(ln.Addr().String())
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}

	if _, err := w.Write([]byte(`{"msg":"hello"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	select {
	case got := <-lines:
		if got != `{"msg":"hello"}` {
			t.Fatalf("got line %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("entry never reached the listener")
	}
}

func TestLogstashWriterDropsWhenUnreachable(t *testing.T) {
	// Point at a port nothing listens on; writes must return immediately
	// and report full success to keep the logger unblocked.
	w, err := NewLogstashWriter("127.0.0.1:1", WithDialTimeout(50*time.Millisecond), WithRetryBackoff(time.Minute))
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	defer w.Close()

	for i := 0; i < 10; i++ {
		n, err := w.Write([]byte("entry\n"))
		if err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
		if n != 6 {
			t.Fatalf("write %d reported %d bytes", i, n)
		}
	}
}

func TestLogstashWriterClosedWrite(t *testing.T) {
	w, err := NewLogstashWriter("127.0.0.1:1")
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := w.Write([]byte("late")); err == nil {
		t.Fatal("expected error writing to closed writer")
	}
}
