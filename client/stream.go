// Copyright 2025 The DuoScience Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"

	duoscience "github.com/duoscience/duoscience-go"
)

// StreamConn represents a connection to a task's SSE event stream.
type StreamConn struct {
	reader   *bufio.Reader
	closer   io.Closer
	mu       sync.Mutex
	closed   bool
	lastErr  error
	doneChan chan struct{}
}

// NewStreamConn creates a new StreamConn from an io.ReadCloser.
func NewStreamConn(rc io.ReadCloser) *StreamConn {
	return &StreamConn{
		reader:   bufio.NewReader(rc),
		closer:   rc,
		doneChan: make(chan struct{}),
	}
}

// Close closes the stream connection.
func (s *StreamConn) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	close(s.doneChan)
	return s.closer.Close()
}

// Done returns a channel that's closed when the stream is closed.
func (s *StreamConn) Done() <-chan struct{} {
	return s.doneChan
}

// Err returns the last error that occurred while reading from the stream.
func (s *StreamConn) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// setError sets the last error encountered.
func (s *StreamConn) setError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	if err != nil && !s.closed {
		s.closed = true
		close(s.doneChan)
	}
}

// readData reads the data of the next SSE event. Heartbeat events carry no
// data and are skipped. io.EOF is returned unwrapped when the server ends
// the stream.
func (s *StreamConn) readData(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	if s.closed {
		err := s.lastErr
		if err == nil {
			err = errors.New("stream closed")
		}
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	var data []byte

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		line, err := s.reader.ReadString('\n')
		if err != nil {
			s.setError(err)
			if err == io.EOF {
				return nil, err
			}
			return nil, NewStreamError("reading line", err)
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			// Empty line ends the event. Events without data are
			// heartbeats and are skipped.
			if len(data) > 0 {
				return data, nil
			}
			continue
		}

		// Comment lines keep the connection alive, field lines other than
		// data carry nothing the task protocol uses.
		if strings.HasPrefix(line, ":") {
			continue
		}
		if strings.HasPrefix(line, "data:") {
			if len(data) > 0 {
				data = append(data, '\n')
			}
			data = append(data, strings.TrimSpace(line[5:])...)
		}
	}
}

// ReadEvent reads the next task event from the stream.
func (s *StreamConn) ReadEvent(ctx context.Context) (*duoscience.Event, error) {
	data, err := s.readData(ctx)
	if err != nil {
		return nil, err
	}

	var event duoscience.Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, NewJSONError("unmarshaling event data", err)
	}

	return &event, nil
}
