// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bond

import (
	"net"
	"testing"
)

// tcpPipe returns two ends of one real loopback TCP connection. Member
// flows need a genuine file descriptor (newMember requires syscall.Conn),
// so white-box stream tests cannot use net.Pipe and instead dial through a
// throwaway local listener, the same way the package's own integration
// tests exercise real sockets end to end.
func tcpPipe(t *testing.T) (client, server net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	acceptErr := make(chan error, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			acceptErr <- err
			return
		}
		accepted <- c
	}()

	client, err = net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	select {
	case server = <-accepted:
	case err := <-acceptErr:
		t.Fatalf("accept: %v", err)
	}
	return client, server
}

// streamPair builds two directly-wired BondedStreams of width n, bypassing
// the handshake entirely: newBondedStream only needs already-open member
// connections in matching order, which is exactly what the handshake
// produces in production.
func streamPair(t *testing.T, n int, opts Options) (client, server *BondedStream) {
	t.Helper()
	clientConns := make([]net.Conn, n)
	serverConns := make([]net.Conn, n)
	for i := 0; i < n; i++ {
		c, s := tcpPipe(t)
		clientConns[i] = c
		serverConns[i] = s
	}
	cs, err := newBondedStream(clientConns, opts)
	if err != nil {
		t.Fatalf("newBondedStream(client): %v", err)
	}
	ss, err := newBondedStream(serverConns, opts)
	if err != nil {
		t.Fatalf("newBondedStream(server): %v", err)
	}
	t.Cleanup(func() {
		cs.Close()
		ss.Close()
	})
	return cs, ss
}

func TestStreamRotationAlignment(t *testing.T) {
	const n = 4
	client, server := streamPair(t, n, defaultOptions)

	for k := 0; k < 2*n+1; k++ {
		payload := []byte{byte(k)}
		if _, err := client.Write(payload); err != nil {
			t.Fatalf("write %d: %v", k, err)
		}
		got := make([]byte, 1)
		if _, err := server.Read(got); err != nil {
			t.Fatalf("read %d: %v", k, err)
		}
		if got[0] != payload[0] {
			t.Fatalf("read %d got %v, want %v", k, got, payload)
		}
		want := (k + 1) % n
		if client.nextStream != want {
			t.Fatalf("after write %d, client.nextStream = %d, want %d", k, client.nextStream, want)
		}
		if server.nextStream != want {
			t.Fatalf("after read %d, server.nextStream = %d, want %d", k, server.nextStream, want)
		}
	}
}

func TestStreamReadableResidueAtBoundaryOnly(t *testing.T) {
	client, server := streamPair(t, 2, defaultOptions)

	payload := make([]byte, 10)
	for i := range payload {
		payload[i] = byte(i)
	}
	if _, err := client.Write(payload); err != nil {
		t.Fatalf("write: %v", err)
	}

	// Read in two halves smaller than the frame to force readable > 0
	// mid-frame, then confirm it drops back to zero at
	// the boundary.
	half := make([]byte, 5)
	if _, err := server.Read(half); err != nil {
		t.Fatalf("read first half: %v", err)
	}
	if server.readable != 5 {
		t.Fatalf("readable after partial frame consumption = %d, want 5", server.readable)
	}
	if _, err := server.Read(half); err != nil {
		t.Fatalf("read second half: %v", err)
	}
	if server.readable != 0 {
		t.Fatalf("readable at frame boundary = %d, want 0", server.readable)
	}
}

func TestStreamSmallWriteExactlyOneFrame(t *testing.T) {
	client, server := streamPair(t, 1, defaultOptions)

	payload := make([]byte, FragmentSize-1)
	for i := range payload {
		payload[i] = byte(i)
	}
	if _, err := client.Write(payload); err != nil {
		t.Fatalf("write: %v", err)
	}
	got := make([]byte, len(payload))
	if _, err := server.Read(got); err != nil {
		t.Fatalf("read: %v", err)
	}
	for i := range got {
		if got[i] != payload[i] {
			t.Fatalf("byte %d = %d, want %d", i, got[i], payload[i])
		}
	}
}

func TestStreamLargeWriteBoundary(t *testing.T) {
	for _, size := range []int{FragmentSize, FragmentSize + 1, 3*FragmentSize + 17} {
		client, server := streamPair(t, 3, defaultOptions)

		payload := make([]byte, size)
		for i := range payload {
			payload[i] = byte(i)
		}
		if _, err := client.Write(payload); err != nil {
			t.Fatalf("size %d: write: %v", size, err)
		}
		got := make([]byte, size)
		if _, err := server.Read(got); err != nil {
			t.Fatalf("size %d: read: %v", size, err)
		}
		for i := range got {
			if got[i] != payload[i] {
				t.Fatalf("size %d: byte %d = %d, want %d", size, i, got[i], payload[i])
			}
		}
	}
}

func TestStreamWidthOneDegenerate(t *testing.T) {
	client, server := streamPair(t, 1, defaultOptions)

	payload := []byte("single member still speaks the framed protocol")
	if _, err := client.Write(payload); err != nil {
		t.Fatalf("write: %v", err)
	}
	got := make([]byte, len(payload))
	if _, err := server.Read(got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("read %q, want %q", got, payload)
	}
	if client.nextStream != 0 || server.nextStream != 0 {
		t.Fatalf("width-1 rotation cursor moved: client=%d server=%d", client.nextStream, server.nextStream)
	}
}

func TestStreamProtocolViolationOverlongFrame(t *testing.T) {
	client, server := streamPair(t, 1, Options{FragmentSize: 16, PollRetryDelay: defaultOptions.PollRetryDelay})

	// Forge a frame header claiming a length larger than the agreed
	// fragment size directly on the wire, bypassing Write's own
	// chunking, to exercise the decoder's guard.
	var hdr [frameHeaderLen]byte
	encodeFrameHeader(hdr[:], 1000)
	if _, err := client.writeFullTo(0, hdr[:]); err != nil {
		t.Fatalf("write forged header: %v", err)
	}

	buf := make([]byte, 4)
	if _, err := server.Read(buf); err != ErrTooLong {
		t.Fatalf("read with overlong frame = %v, want ErrTooLong", err)
	}
	if err := server.checkOpen(); err != ErrTooLong {
		t.Fatalf("stream not poisoned with ErrTooLong after protocol violation, got %v", err)
	}
}

func TestStreamClosePropagatesAsShortRead(t *testing.T) {
	client, server := streamPair(t, 3, defaultOptions)

	if _, err := client.Write([]byte("partial")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	buf := make([]byte, 100)
	if _, err := server.Read(buf); err == nil {
		t.Fatalf("read after peer close returned nil error")
	}
	if err := server.checkOpen(); err == nil {
		t.Fatalf("stream not poisoned after peer close")
	}
}

func TestStreamReadWriteOnClosedStream(t *testing.T) {
	client, _ := streamPair(t, 1, defaultOptions)
	if err := client.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if _, err := client.Write([]byte("x")); err != ErrStreamClosed {
		t.Fatalf("write after close = %v, want ErrStreamClosed", err)
	}
	if _, err := client.Read(make([]byte, 1)); err != ErrStreamClosed {
		t.Fatalf("read after close = %v, want ErrStreamClosed", err)
	}
}
