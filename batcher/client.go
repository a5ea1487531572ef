// Package batcher implements the client side of the batch submission
// protocol: one duplex websocket to the batching service, pipelined
// authenticated submissions, and correlation of the asynchronous inclusion
// responses with the in-flight requests.
package batcher

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/zkbatch/zkbatch/merkle"
	"github.com/zkbatch/zkbatch/types"
)

// handshakeTimeout bounds the websocket opening handshake. Submissions and
// responses themselves carry no internal timeout; callers bound them with
// a context.
const handshakeTimeout = 10 * time.Second

// ErrNoResponses signals that the stream closed before any inclusion data
// arrived. It is distinct from a partial result, where some submissions
// were answered and the rest are reported in Result.Missing.
var ErrNoResponses = errors.New("batcher: stream closed before any batch inclusion data was received")

// ConnectionError reports a stream that could not be established or that
// dropped mid-flight. It is surfaced to the caller and never retried
// internally; retry policy is a caller concern.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("batcher: connection to %s: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Client is a submission client bound to one websocket connection. The
// write half is guarded by a mutex so concurrent submissions never
// interleave partial writes; the mutex is released between sends and is
// never held while awaiting a response. The read half runs as a separate
// goroutine per Submit call.
type Client struct {
	addr    string
	conn    *websocket.Conn
	writeMu sync.Mutex
	log     zerolog.Logger
}

// Dial opens the duplex stream to the batching service at addr
// (a ws:// or wss:// URL).
func Dial(ctx context.Context, addr string, log zerolog.Logger) (*Client, error) {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, addr, nil)
	if err != nil {
		return nil, &ConnectionError{Addr: addr, Err: err}
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	log.Info().Str("addr", addr).Msg("websocket handshake completed")

	return &Client{addr: addr, conn: conn, log: log}, nil
}

// Close tears down the connection. Any blocked read unblocks with an error.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Result is the outcome of a completed submission run. Verified holds one
// AlignedVerificationData per answered submission, in submission order.
// Missing lists the commitments of submissions the service never answered;
// they are reported explicitly rather than silently dropped.
type Result struct {
	Verified []types.AlignedVerificationData
	Missing  []types.VerificationDataCommitment
}

// pending tracks one in-flight submission until its response arrives.
type pending struct {
	commitment types.VerificationDataCommitment
	aligned    *types.AlignedVerificationData
}

// Submit validates, signs and sends every item, then collects inclusion
// responses until each submission is answered or the stream closes.
//
// All items are sent before any response is required, so the service may
// batch them together. Responses are not required to preserve submission
// order: each inbound BatchInclusionData is matched to the unique in-flight
// commitment whose leaf hash verifies under the response's root, proof and
// index. Arrival order is never used for correlation.
//
// Validation failures abort before any network activity. A stream that
// closes with zero responses returns ErrNoResponses; a stream that closes
// with some responses outstanding returns a Result whose Missing field
// reports them, with a nil error.
func (c *Client) Submit(ctx context.Context, items []types.VerificationData, key *ecdsa.PrivateKey) (*Result, error) {
	if len(items) == 0 {
		return &Result{}, nil
	}

	// Reject malformed input before touching the network.
	for i := range items {
		if err := items[i].Validate(); err != nil {
			return nil, fmt.Errorf("batcher: submission %d: %w", i, err)
		}
	}

	inflight := make([]pending, len(items))
	for i := range items {
		msg, err := types.NewClientMessage(items[i], key)
		if err != nil {
			return nil, err
		}
		if err := c.send(&msg); err != nil {
			return nil, err
		}
		inflight[i] = pending{commitment: items[i].Commitment()}
		c.log.Info().Int("submission", i).
			Stringer("leaf", inflight[i].commitment.LeafHash()).
			Msg("sent proof to batcher")
	}

	received, readErr := c.collectResponses(ctx, inflight)
	if readErr != nil && !errors.Is(readErr, errStreamClosed) {
		return nil, readErr
	}
	if received == 0 {
		return nil, ErrNoResponses
	}

	res := &Result{}
	for i := range inflight {
		if inflight[i].aligned != nil {
			res.Verified = append(res.Verified, *inflight[i].aligned)
		} else {
			res.Missing = append(res.Missing, inflight[i].commitment)
			c.log.Warn().Int("submission", i).
				Stringer("leaf", inflight[i].commitment.LeafHash()).
				Msg("no batch inclusion data received for submission")
		}
	}
	return res, nil
}

// send serializes and writes one message while holding the write mutex.
// The mutex is released before returning, so no lock is held across any
// await on a response.
func (c *Client) send(msg *types.ClientMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("batcher: encoding client message: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return &ConnectionError{Addr: c.addr, Err: err}
	}
	return nil
}

// errStreamClosed marks the read loop ending because the peer closed the
// stream; it is an internal condition, translated by Submit into either
// ErrNoResponses or a partial Result.
var errStreamClosed = errors.New("batcher: stream closed")

// inbound is one frame from the reader goroutine.
type inbound struct {
	data []byte
	err  error
}

// collectResponses consumes inbound frames until every in-flight
// submission is answered, the stream closes, or ctx is cancelled. It
// returns the number of correlated responses.
func (c *Client) collectResponses(ctx context.Context, inflight []pending) (int, error) {
	frames := make(chan inbound)
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			_, data, err := c.conn.ReadMessage()
			select {
			case frames <- inbound{data: data, err: err}:
			case <-done:
				return
			}
			if err != nil {
				return
			}
		}
	}()

	received := 0
	outstanding := len(inflight)
	for outstanding > 0 {
		select {
		case <-ctx.Done():
			// Unblock the reader; the connection is unusable for this
			// run after cancellation.
			c.conn.SetReadDeadline(time.Now())
			return received, ctx.Err()
		case in := <-frames:
			if in.err != nil {
				return received, errStreamClosed
			}

			var bid types.BatchInclusionData
			if err := json.Unmarshal(in.data, &bid); err != nil {
				// Malformed frame; the owed response may still arrive.
				c.log.Warn().Err(err).Msg("discarding malformed batch inclusion data")
				continue
			}

			i := correlate(inflight, &bid)
			if i < 0 {
				c.log.Warn().Stringer("root", bid.BatchMerkleRoot).
					Uint64("index", bid.IndexInBatch).
					Msg("batch inclusion data does not match any in-flight submission")
				continue
			}

			aligned := types.NewAlignedVerificationData(inflight[i].commitment, bid)
			inflight[i].aligned = &aligned
			received++
			outstanding--
			c.log.Info().Int("submission", i).
				Stringer("root", bid.BatchMerkleRoot).
				Uint64("index", bid.IndexInBatch).
				Msg("batch inclusion data received")
		}
	}
	return received, nil
}

// correlate finds the in-flight submission a response belongs to: the one
// whose commitment leaf verifies under the response's root, proof and
// index. Returns -1 if no unanswered submission matches.
func correlate(inflight []pending, bid *types.BatchInclusionData) int {
	for i := range inflight {
		if inflight[i].aligned != nil {
			continue
		}
		if merkle.VerifyProof[types.VerificationDataCommitment](
			types.CommitmentBatch{},
			bid.BatchMerkleRoot,
			inflight[i].commitment,
			int(bid.IndexInBatch),
			bid.BatchInclusionProof,
		) {
			return i
		}
	}
	return -1
}
