// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package common

import (
	"context"
	"crypto/tls"
	"net/http/httptrace"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// ConnectionEvent is a single timed step of an http round trip
type ConnectionEvent struct {
	Name     string
	Address  string
	Duration time.Duration
	Reused   bool
	Err      error
}

// ConnectionTimings collects the connection events of a request
type ConnectionTimings struct {
	mu     sync.Mutex
	target string
	events []ConnectionEvent
}

func (c *ConnectionTimings) record(event ConnectionEvent) {
	c.mu.Lock()
	c.events = append(c.events, event)
	c.mu.Unlock()
	log.WithFields(log.Fields{
		"event":    event.Name,
		"address":  event.Address,
		"duration": event.Duration,
		"reused":   event.Reused,
		"target":   c.target,
	}).Debug("http connection event")
}

// Events returns a copy of the events seen so far
func (c *ConnectionTimings) Events() []ConnectionEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ConnectionEvent(nil), c.events...)
}

// WithConnectionTrace attaches an httptrace.ClientTrace to the context
// so that dns, connection, tls and first byte timings are logged at debug level
func WithConnectionTrace(ctx context.Context, target string) (context.Context, *ConnectionTimings) {
	timings := &ConnectionTimings{target: target}
	var dnsStart, connStart, connEnd, tlsStart time.Time

	clientTrace := &httptrace.ClientTrace{
		GetConn: func(hostPort string) {
			connStart = time.Now()
		},
		GotConn: func(info httptrace.GotConnInfo) {
			connEnd = time.Now()
			address := ""
			if info.Conn != nil {
				address = info.Conn.RemoteAddr().String()
			}
			timings.record(ConnectionEvent{Name: "GotConn", Address: address, Duration: connEnd.Sub(connStart), Reused: info.Reused})
		},
		DNSStart: func(info httptrace.DNSStartInfo) {
			dnsStart = time.Now()
		},
		DNSDone: func(info httptrace.DNSDoneInfo) {
			address := ""
			if len(info.Addrs) > 0 {
				address = info.Addrs[0].String()
			}
			timings.record(ConnectionEvent{Name: "DNS", Address: address, Duration: time.Since(dnsStart), Err: info.Err})
		},
		TLSHandshakeStart: func() {
			tlsStart = time.Now()
		},
		TLSHandshakeDone: func(state tls.ConnectionState, err error) {
			timings.record(ConnectionEvent{Name: "TLSHandshake", Address: state.ServerName, Duration: time.Since(tlsStart), Err: err})
		},
		GotFirstResponseByte: func() {
			timings.record(ConnectionEvent{Name: "GotFirstResponseByte", Duration: time.Since(connEnd)})
		},
	}
	return httptrace.WithClientTrace(ctx, clientTrace), timings
}
