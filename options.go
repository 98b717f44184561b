// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bond

import "time"

// Options configures a Listener or a BondedStream.
type Options struct {
	// FragmentSize is the maximum payload length of one frame, and the
	// chunk size large writes are split into. Fixed at 8192 by the wire
	// format; overridable only for tests that want to exercise the
	// small/large boundary without allocating megabytes of payload.
	FragmentSize int

	// PartialSessionTimeout bounds how long a partial bond session (fewer
	// than N members accepted) may sit in the listener's session table
	// before Accept discards it. Zero disables the reaper.
	PartialSessionTimeout time.Duration

	// PollRetryDelay controls the portable (non-epoll) readiness poller's
	// wait granularity when a member is not yet ready:
	//   - zero: cooperative yield (runtime.Gosched) and retry immediately
	//   - positive: sleep for the duration between retries
	// It has no effect on platforms with an epoll-backed poller, which
	// block in the kernel until the member is actually ready.
	PollRetryDelay time.Duration
}

var defaultOptions = Options{
	FragmentSize:          FragmentSize,
	PartialSessionTimeout: 30 * time.Second,
	PollRetryDelay:        0,
}

type Option func(*Options)

// WithFragmentSize overrides the small/large write boundary and large-write
// chunk size. Intended for tests; production use should leave this at the
// wire format's fixed FragmentSize so both peers agree.
func WithFragmentSize(n int) Option {
	return func(o *Options) { o.FragmentSize = n }
}

// WithPartialSessionTimeout sets how long a Listener holds a partially
// bonded session before discarding it. Zero disables the reaper.
func WithPartialSessionTimeout(d time.Duration) Option {
	return func(o *Options) { o.PartialSessionTimeout = d }
}

// WithPollRetryDelay sets the portable poller's retry cadence. See
// Options.PollRetryDelay.
func WithPollRetryDelay(d time.Duration) Option {
	return func(o *Options) { o.PollRetryDelay = d }
}
