package protocol

import "time"

// Version is the wire format version sent in every Hello.
const Version uint16 = 1

// Hello is the first frame a server sends on a new session.
type Hello struct {
	Version       uint16
	SessionID     string
	RootID        uint64        // node the first mutations insert into
	FrameInterval time.Duration // frame period of the server loop
	ServerTime    time.Time
}

// EncodeHello encodes a Hello to bytes.
func EncodeHello(h *Hello) []byte {
	e := NewEncoder()
	e.WriteUint16(h.Version)
	e.WriteString(h.SessionID)
	e.WriteUvarint(h.RootID)
	e.WriteUvarint(uint64(h.FrameInterval / time.Microsecond))
	e.WriteUint64(uint64(h.ServerTime.UnixMilli()))
	return e.Bytes()
}

// DecodeHello decodes a Hello from bytes.
func DecodeHello(data []byte) (*Hello, error) {
	d := NewDecoder(data)
	h := &Hello{}
	var err error

	if h.Version, err = d.ReadUint16(); err != nil {
		return nil, err
	}
	if h.SessionID, err = d.ReadString(); err != nil {
		return nil, err
	}
	if h.RootID, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	interval, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	h.FrameInterval = time.Duration(interval) * time.Microsecond
	ms, err := d.ReadUint64()
	if err != nil {
		return nil, err
	}
	h.ServerTime = time.UnixMilli(int64(ms))
	return h, nil
}
