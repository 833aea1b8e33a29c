// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 GINA Propulsion

package ginalink

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
)

// Channel is the byte-frame abstraction the link state machines run over.
// Send blocks until the physical layer completes. TryReceive never blocks;
// it returns the next whole frame if one has arrived since the last poll.
type Channel interface {
	Send(frame []byte) error
	TryReceive() ([]byte, bool)
}

// streamFrameBuffer is how many decoded frames a StreamChannel holds
// before it starts dropping. The radio itself only keeps one packet, so a
// small buffer is already generous.
const streamFrameBuffer = 64

// StreamChannel adapts a byte stream (serial port, WebSocket wrapper) to
// the Channel interface. A single reader goroutine splits the stream on
// the frame terminator and hands whole frames to the control loop through
// a buffered channel. The goroutine touches nothing but the frame queue
// and the pending flag; all other state belongs to the loop.
type StreamChannel struct {
	w       io.Writer
	frames  chan []byte
	pending atomic.Bool
}

// NewStreamChannel wraps rw and starts the reader goroutine. The goroutine
// exits when a read fails (port closed, connection lost).
func NewStreamChannel(rw io.ReadWriter) *StreamChannel {
	c := &StreamChannel{
		w:      rw,
		frames: make(chan []byte, streamFrameBuffer),
	}
	go c.readLoop(rw)
	return c
}

func (c *StreamChannel) readLoop(r io.Reader) {
	defer close(c.frames)
	br := bufio.NewReaderSize(r, MaxFrameSize*2)
	for {
		frame, err := br.ReadBytes(Terminator)
		if err != nil {
			if err != io.EOF {
				log.Printf("channel: read error: %v", err)
			}
			// A partial frame at stream end is corrupt, not resumable.
			return
		}
		select {
		case c.frames <- frame:
			c.pending.Store(true)
		default:
			log.Printf("channel: frame queue full, dropping %d bytes", len(frame))
		}
	}
}

// Send writes one frame, blocking until the transport accepts it.
func (c *StreamChannel) Send(frame []byte) error {
	if _, err := c.w.Write(frame); err != nil {
		return fmt.Errorf("transport send: %w", err)
	}
	return nil
}

// TryReceive returns the next buffered frame without blocking. The pending
// flag is the single-bit handoff from the reader goroutine: consumed here,
// set only there.
func (c *StreamChannel) TryReceive() ([]byte, bool) {
	if !c.pending.Load() {
		return nil, false
	}
	select {
	case frame, ok := <-c.frames:
		if !ok {
			c.pending.Store(false)
			return nil, false
		}
		if len(c.frames) == 0 {
			c.pending.Store(false)
		}
		return frame, true
	default:
		c.pending.Store(false)
		return nil, false
	}
}

// PipeEnd is one side of an in-memory lossless channel pair, used by the
// sim bench and the package tests.
type PipeEnd struct {
	mu    sync.Mutex
	peer  *PipeEnd
	queue [][]byte
}

// Pipe returns two connected channel ends. Frames sent on one end arrive
// on the other in order.
func Pipe() (*PipeEnd, *PipeEnd) {
	a := &PipeEnd{}
	b := &PipeEnd{}
	a.peer = b
	b.peer = a
	return a, b
}

// Send delivers a copy of the frame to the peer's queue.
func (e *PipeEnd) Send(frame []byte) error {
	cp := make([]byte, len(frame))
	copy(cp, frame)
	e.peer.mu.Lock()
	e.peer.queue = append(e.peer.queue, cp)
	e.peer.mu.Unlock()
	return nil
}

// TryReceive pops the oldest delivered frame, if any.
func (e *PipeEnd) TryReceive() ([]byte, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return nil, false
	}
	frame := e.queue[0]
	e.queue = e.queue[1:]
	return frame, true
}
