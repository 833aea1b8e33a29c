// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 GINA Propulsion

package ginalink

import (
	"io"
	"testing"
	"time"
)

func TestPipe_DeliversInOrder(t *testing.T) {
	a, b := Pipe()

	a.Send([]byte("DC=CMD:IGN#0\n"))
	a.Send([]byte("DC=PING\n"))

	if frame, ok := b.TryReceive(); !ok || string(frame) != "DC=CMD:IGN#0\n" {
		t.Fatalf("First frame wrong: %q %v", frame, ok)
	}
	if frame, ok := b.TryReceive(); !ok || string(frame) != "DC=PING\n" {
		t.Fatalf("Second frame wrong: %q %v", frame, ok)
	}
	if _, ok := b.TryReceive(); ok {
		t.Errorf("Empty pipe returned a frame")
	}
}

func TestPipe_DirectionsAreIndependent(t *testing.T) {
	a, b := Pipe()

	a.Send([]byte("DC=CMD:IGN#0\n"))
	b.Send([]byte("DC=ACK:#0\n"))

	if frame, ok := a.TryReceive(); !ok || string(frame) != "DC=ACK:#0\n" {
		t.Errorf("A side got %q %v", frame, ok)
	}
	if frame, ok := b.TryReceive(); !ok || string(frame) != "DC=CMD:IGN#0\n" {
		t.Errorf("B side got %q %v", frame, ok)
	}
}

func TestPipe_SendCopiesFrame(t *testing.T) {
	a, b := Pipe()

	buf := []byte("DC=PING\n")
	a.Send(buf)
	buf[3] = 'X'

	frame, ok := b.TryReceive()
	if !ok || string(frame) != "DC=PING\n" {
		t.Errorf("Sender mutation leaked into the queue: %q", frame)
	}
}

// waitReceive polls TryReceive until a frame arrives or the deadline
// passes, since the reader goroutine delivers asynchronously.
func waitReceive(t *testing.T, ch Channel) []byte {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if frame, ok := ch.TryReceive(); ok {
			return frame
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("No frame arrived before the deadline")
	return nil
}

func TestStreamChannel_ReassemblesSplitFrames(t *testing.T) {
	pr, pw := io.Pipe()
	ch := NewStreamChannel(struct {
		io.Reader
		io.Writer
	}{pr, io.Discard})

	// Frame arrives in two chunks, as a slow radio would deliver it.
	go func() {
		pw.Write([]byte("DC=CMD:OP"))
		time.Sleep(5 * time.Millisecond)
		pw.Write([]byte("EN_ALL#3\n"))
		pw.Close()
	}()

	frame := waitReceive(t, ch)
	if string(frame) != "DC=CMD:OPEN_ALL#3\n" {
		t.Errorf("Reassembly wrong: %q", frame)
	}
}

func TestStreamChannel_SplitsCoalescedFrames(t *testing.T) {
	pr, pw := io.Pipe()
	ch := NewStreamChannel(struct {
		io.Reader
		io.Writer
	}{pr, io.Discard})

	go func() {
		pw.Write([]byte("DC=ACK:#1\nDC=ACK:#1\nDC=PING\n"))
		pw.Close()
	}()

	want := []string{"DC=ACK:#1\n", "DC=ACK:#1\n", "DC=PING\n"}
	for i, w := range want {
		if got := string(waitReceive(t, ch)); got != w {
			t.Fatalf("Frame %d: got %q, want %q", i, got, w)
		}
	}
}

func TestStreamChannel_NoFramesWhenQuiet(t *testing.T) {
	pr, _ := io.Pipe()
	ch := NewStreamChannel(struct {
		io.Reader
		io.Writer
	}{pr, io.Discard})

	if _, ok := ch.TryReceive(); ok {
		t.Errorf("TryReceive reported a frame on a silent stream")
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, io.ErrClosedPipe }

func TestStreamChannel_SendWrapsWriteError(t *testing.T) {
	pr, _ := io.Pipe()
	ch := NewStreamChannel(struct {
		io.Reader
		io.Writer
	}{pr, failingWriter{}})

	if err := ch.Send([]byte("DC=PING\n")); err == nil {
		t.Errorf("Expected send error from a closed transport")
	}
}
