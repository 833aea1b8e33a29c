// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 GINA Propulsion

package ginalink

import (
	"fmt"
	"strconv"
	"strings"
)

// Decode parses one raw frame into a Message.
//
// Input is accepted only if it starts with the exact header and contains a
// terminator within the maximum frame size. There is no cross-call
// buffering: the radio delivers whole frames or nothing, so input without
// a terminator is corrupt and is dropped, not held for a later poll.
//
// A recognized prefix (CMD:/ACK:/TLM:/PING) sets the kind; anything else
// decodes as KindUnknown so higher layers can still log it.
func Decode(raw []byte) (*Message, error) {
	if len(raw) < len(Header) || string(raw[:len(Header)]) != Header {
		return nil, fmt.Errorf("%w: missing %q header", ErrMalformedFrame, Header)
	}

	limit := len(raw)
	if limit > MaxFrameSize {
		limit = MaxFrameSize
	}
	nl := -1
	for i := len(Header); i < limit; i++ {
		if raw[i] == Terminator {
			nl = i
			break
		}
	}
	if nl < 0 {
		return nil, fmt.Errorf("%w: no terminator", ErrMalformedFrame)
	}

	body := strings.TrimRight(string(raw[len(Header):nl]), "\r")

	switch {
	case strings.HasPrefix(body, PrefixCommand):
		text, seq, err := splitSeq(body[len(PrefixCommand):])
		if err != nil {
			return nil, err
		}
		return &Message{Kind: KindCommand, Payload: text, Seq: seq}, nil

	case strings.HasPrefix(body, PrefixAck):
		text, seq, err := splitSeq(body[len(PrefixAck):])
		if err != nil {
			return nil, err
		}
		if text != "" {
			return nil, fmt.Errorf("%w: unexpected ack body %q", ErrMalformedFrame, text)
		}
		return &Message{Kind: KindAck, Seq: seq}, nil

	case strings.HasPrefix(body, PrefixTelemetry):
		return &Message{Kind: KindTelemetry, Payload: body[len(PrefixTelemetry):]}, nil

	case body == PingBody:
		return &Message{Kind: KindPing}, nil

	default:
		return &Message{Kind: KindUnknown, Payload: body}, nil
	}
}

// splitSeq separates "<text>#<seq>" into its parts.
func splitSeq(s string) (string, int, error) {
	idx := strings.LastIndexByte(s, SeqSeparator)
	if idx < 0 {
		return "", 0, fmt.Errorf("%w: missing sequence separator", ErrMalformedFrame)
	}
	seq, err := strconv.Atoi(s[idx+1:])
	if err != nil || seq < 0 {
		return "", 0, fmt.Errorf("%w: bad sequence %q", ErrMalformedFrame, s[idx+1:])
	}
	return s[:idx], seq, nil
}

// EncodeCommand builds a command frame: DC=CMD:<text>#<seq>\n
func EncodeCommand(text string, seq int) ([]byte, error) {
	return encodeFrame(fmt.Sprintf("%s%s%c%d", PrefixCommand, text, SeqSeparator, seq))
}

// EncodeAck builds an acknowledgment frame: DC=ACK:#<seq>\n
func EncodeAck(seq int) ([]byte, error) {
	return encodeFrame(fmt.Sprintf("%s%c%d", PrefixAck, SeqSeparator, seq))
}

// EncodeTelemetry builds a telemetry frame: DC=TLM:<payload>\n
// The payload is passed through opaque; the framer does not inspect it.
func EncodeTelemetry(payload string) ([]byte, error) {
	return encodeFrame(PrefixTelemetry + payload)
}

// EncodePing builds a keep-alive frame: DC=PING\n
func EncodePing() ([]byte, error) {
	return encodeFrame(PingBody)
}

// encodeFrame wraps a body with header and terminator, enforcing the
// radio's frame size limit before anything reaches the channel.
func encodeFrame(body string) ([]byte, error) {
	n := len(Header) + len(body) + 1
	if n > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrFrameTooLong, n, MaxFrameSize)
	}
	frame := make([]byte, 0, n)
	frame = append(frame, Header...)
	frame = append(frame, body...)
	frame = append(frame, Terminator)
	return frame, nil
}
