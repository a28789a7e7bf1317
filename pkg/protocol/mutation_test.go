package protocol

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	rerrors "github.com/vango-dev/reconcile/internal/errors"
)

func sampleBatch() []Mutation {
	return []Mutation{
		{Op: OpCreateElement, Node: 2, Name: "div", Value: "html"},
		{Op: OpCreateText, Node: 3, Value: "hello"},
		{Op: OpInsertBefore, Parent: 2, Node: 3},
		{Op: OpInsertBefore, Parent: 1, Node: 2, Ref: 7},
		{Op: OpSetText, Node: 3, Value: "bye"},
		{Op: OpSetAttr, Node: 2, Name: "id", Value: "a"},
		{Op: OpRemoveAttr, Node: 2, Name: "id"},
		{Op: OpAddClass, Node: 2, Name: "v-enter"},
		{Op: OpRemoveClass, Node: 2, Name: "v-enter"},
		{Op: OpSetStyle, Node: 2, Name: "display", Value: "none"},
		{Op: OpRemoveStyle, Node: 2, Name: "display"},
		{Op: OpListen, Node: 2, Name: "click"},
		{Op: OpUnlisten, Node: 2, Name: "click"},
		{Op: OpDetach, Node: 2},
	}
}

func TestMutationsRoundTrip(t *testing.T) {
	batch := sampleBatch()
	data := EncodeMutations(batch)

	size := UvarintLen(uint64(len(batch)))
	for _, m := range batch {
		size += m.EncodedLen()
	}
	if len(data) != size {
		t.Errorf("encoded %d bytes, EncodedLen sums to %d", len(data), size)
	}

	got, err := DecodeMutations(data)
	if err != nil {
		t.Fatalf("DecodeMutations() error: %v", err)
	}
	if !reflect.DeepEqual(got, batch) {
		t.Errorf("DecodeMutations() = %v, want %v", got, batch)
	}
}

func TestSetAttrEncoding(t *testing.T) {
	data := EncodeMutations([]Mutation{{Op: OpSetAttr, Node: 3, Name: "id", Value: "a"}})
	want := []byte{0x01, 0x06, 0x03, 0x02, 'i', 'd', 0x01, 'a'}
	if !reflect.DeepEqual(data, want) {
		t.Errorf("encoding = % x, want % x", data, want)
	}
}

func TestDecodeMutationsErrors(t *testing.T) {
	valid := EncodeMutations(sampleBatch()[:2])
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"unknown op", []byte{0x01, 0x7E, 0x01}},
		{"truncated", valid[:len(valid)-2]},
		{"trailing bytes", append(append([]byte{}, valid...), 0x00)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeMutations(tt.data)
			if err == nil {
				t.Fatal("expected an error")
			}
			var coded *rerrors.Error
			if !errors.As(err, &coded) || coded.Code != "E400" {
				t.Errorf("error = %v, want E400", err)
			}
		})
	}
}

func TestMutationFramesSplitsLargeBatches(t *testing.T) {
	if frames := MutationFrames(nil); len(frames) != 0 {
		t.Errorf("empty batch produced %d frames", len(frames))
	}

	text := strings.Repeat("x", 20_000)
	var batch []Mutation
	for i := 0; i < 10; i++ {
		batch = append(batch, Mutation{Op: OpCreateText, Node: uint64(i + 1), Value: text})
	}
	frames := MutationFrames(batch)
	if len(frames) < 4 {
		t.Fatalf("got %d frames, want at least 4", len(frames))
	}

	var decoded []Mutation
	for i, f := range frames {
		if len(f.Payload) > MaxPayloadSize {
			t.Errorf("frame %d payload is %d bytes", i, len(f.Payload))
		}
		if final := f.Flags.Has(FlagFinal); final != (i == len(frames)-1) {
			t.Errorf("frame %d final = %v", i, final)
		}
		muts, err := DecodeMutations(f.Payload)
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		decoded = append(decoded, muts...)
	}
	if !reflect.DeepEqual(decoded, batch) {
		t.Error("split frames do not reassemble the batch")
	}
}

func TestMutationString(t *testing.T) {
	tests := []struct {
		m    Mutation
		want string
	}{
		{Mutation{Op: OpInsertBefore, Parent: 1, Node: 2}, "InsertBefore #2 into #1 before #0"},
		{Mutation{Op: OpSetAttr, Node: 2, Name: "id", Value: "a"}, `SetAttr #2 id "a"`},
		{Mutation{Op: OpDetach, Node: 4}, "Detach #4"},
		{Mutation{Op: Op(0x7E)}, "Op(0x7E) #0"},
	}
	for _, tt := range tests {
		if got := tt.m.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestHelloRoundTrip(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_123)
	h := &Hello{
		Version:       Version,
		SessionID:     "7f9c",
		RootID:        1,
		FrameInterval: 16 * time.Millisecond,
		ServerTime:    now,
	}
	got, err := DecodeHello(EncodeHello(h))
	if err != nil {
		t.Fatalf("DecodeHello() error: %v", err)
	}
	if got.SessionID != h.SessionID || got.RootID != 1 || got.FrameInterval != h.FrameInterval || !got.ServerTime.Equal(now) {
		t.Errorf("DecodeHello() = %+v", got)
	}
	if _, err := DecodeHello([]byte{0x00}); err == nil {
		t.Error("expected an error for a truncated hello")
	}
}

func TestErrorMessage(t *testing.T) {
	em := &ErrorMessage{Code: "E303", Message: "no pending callback", Fatal: true}
	got, err := DecodeErrorMessage(EncodeErrorMessage(em))
	if err != nil {
		t.Fatalf("DecodeErrorMessage() error: %v", err)
	}
	if *got != *em {
		t.Errorf("DecodeErrorMessage() = %+v", got)
	}
	if got.Error() != "fatal: E303: no pending callback" {
		t.Errorf("Error() = %q", got.Error())
	}
}
