package protocol

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestUvarintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 300, 16383, 16384, 1<<32 - 1, 1<<63 + 5}
	e := NewEncoder()
	for _, v := range values {
		e.WriteUvarint(v)
	}
	want := 0
	for _, v := range values {
		want += UvarintLen(v)
	}
	if e.Len() != want {
		t.Fatalf("encoded %d bytes, UvarintLen sums to %d", e.Len(), want)
	}

	d := NewDecoder(e.Bytes())
	for _, v := range values {
		got, err := d.ReadUvarint()
		if err != nil {
			t.Fatalf("ReadUvarint() error: %v", err)
		}
		if got != v {
			t.Errorf("ReadUvarint() = %d, want %d", got, v)
		}
	}
	if !d.EOF() {
		t.Errorf("decoder has %d bytes left", d.Remaining())
	}
}

func TestDecoderErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		read func(d *Decoder) error
		want error
	}{
		{
			name: "truncated varint",
			data: []byte{0x80, 0x80},
			read: func(d *Decoder) error { _, err := d.ReadUvarint(); return err },
			want: io.ErrUnexpectedEOF,
		},
		{
			name: "overflowing varint",
			data: []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01},
			read: func(d *Decoder) error { _, err := d.ReadUvarint(); return err },
			want: ErrVarintOverflow,
		},
		{
			name: "string longer than input",
			data: []byte{0x05, 'a', 'b'},
			read: func(d *Decoder) error { _, err := d.ReadString(); return err },
			want: io.ErrUnexpectedEOF,
		},
		{
			name: "string over the limit",
			data: []byte{0xFF, 0xFF, 0x7F},
			read: func(d *Decoder) error { _, err := d.ReadString(); return err },
			want: ErrAllocationTooLarge,
		},
		{
			name: "invalid bool",
			data: []byte{0x02},
			read: func(d *Decoder) error { _, err := d.ReadBool(); return err },
			want: ErrInvalidBool,
		},
		{
			name: "collection over the limit",
			data: []byte{0xFF, 0xFF, 0xFF, 0x7F},
			read: func(d *Decoder) error { _, err := d.ReadCollectionCount(); return err },
			want: ErrCollectionTooLarge,
		},
		{
			name: "collection larger than input",
			data: []byte{0x03, 0x00},
			read: func(d *Decoder) error { _, err := d.ReadCollectionCount(); return err },
			want: io.ErrUnexpectedEOF,
		},
		{
			name: "short uint64",
			data: []byte{0x00, 0x01},
			read: func(d *Decoder) error { _, err := d.ReadUint64(); return err },
			want: io.ErrUnexpectedEOF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.read(NewDecoder(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFixedWidthAndStrings(t *testing.T) {
	e := NewEncoder()
	e.WriteUint16(0xBEEF)
	e.WriteUint64(0x0102030405060708)
	e.WriteString("héllo")
	e.WriteBool(true)
	e.WriteBool(false)

	d := NewDecoder(e.Bytes())
	if v, _ := d.ReadUint16(); v != 0xBEEF {
		t.Errorf("ReadUint16() = %#x", v)
	}
	if v, _ := d.ReadUint64(); v != 0x0102030405060708 {
		t.Errorf("ReadUint64() = %#x", v)
	}
	if s, _ := d.ReadString(); s != "héllo" {
		t.Errorf("ReadString() = %q", s)
	}
	if b, _ := d.ReadBool(); !b {
		t.Error("ReadBool() = false, want true")
	}
	if b, _ := d.ReadBool(); b {
		t.Error("ReadBool() = true, want false")
	}
	if StringLen("héllo") != 1+len("héllo") {
		t.Errorf("StringLen() = %d", StringLen("héllo"))
	}

	e.Reset()
	if e.Len() != 0 {
		t.Errorf("Len() after Reset = %d", e.Len())
	}
	e.WriteString(strings.Repeat("x", 200))
	if e.Len() != 202 {
		t.Errorf("Len() = %d, want 202", e.Len())
	}
}
