package ams

import "fmt"

// FrameScanner accumulates inbound bytes and emits complete AMS/TCP packets
// one at a time without blocking on I/O. A packet is complete once the
// buffer holds at least 6 bytes (the TCP header) and 6+length bytes total;
// partial trailing bytes are retained for the next Feed call.
type FrameScanner struct {
	buf []byte
}

// NewFrameScanner creates an empty scanner.
func NewFrameScanner() *FrameScanner {
	return &FrameScanner{}
}

// Feed appends newly-received bytes to the internal buffer.
func (s *FrameScanner) Feed(b []byte) {
	s.buf = append(s.buf, b...)
}

// Next extracts and returns the next complete packet from the buffer, if
// one is available. It must be called repeatedly after Feed until it
// returns ok == false, since more than one packet may have arrived together.
func (s *FrameScanner) Next() (pkt *Packet, ok bool, err error) {
	if len(s.buf) < 6 {
		return nil, false, nil
	}

	var hdr TCPHeader
	if err := hdr.UnmarshalBinary(s.buf[0:6]); err != nil {
		return nil, false, err
	}

	total := 6 + int(hdr.Length)
	if len(s.buf) < total {
		return nil, false, nil
	}

	frame := make([]byte, total)
	copy(frame, s.buf[:total])
	s.buf = s.buf[total:]

	p := &Packet{TCPHeader: hdr}
	if hdr.CommandFlag != CommandFlagADS {
		p.Data = frame[6:total]
		return p, true, nil
	}

	if len(frame) < 38 {
		return nil, false, nil
	}
	if err := p.Header.UnmarshalBinary(frame[6:38]); err != nil {
		return nil, false, err
	}
	if p.Header.DataLength > 0 {
		if len(frame) < 38+int(p.Header.DataLength) {
			return nil, false, fmt.Errorf("ams: frame declares %d data bytes, has %d", p.Header.DataLength, len(frame)-38)
		}
		p.Data = frame[38 : 38+int(p.Header.DataLength)]
	}
	return p, true, nil
}

// Pending returns the number of unconsumed bytes currently buffered.
func (s *FrameScanner) Pending() int {
	return len(s.buf)
}
