package wire

import (
	"bytes"
	"testing"
)

func TestRoundTripConnless(t *testing.T) {
	var buf [MaxPacketSize]byte
	encoded, err := WriteConnless(buf[:], []byte("ping"))
	if err != nil {
		t.Fatalf("WriteConnless: %v", err)
	}
	p, ok := Read(encoded, nil)
	if !ok {
		t.Fatal("Read: expected ok")
	}
	if !p.Connless {
		t.Fatal("expected Connless packet")
	}
	if !bytes.Equal(p.Data, []byte("ping")) {
		t.Fatalf("got data %q, want %q", p.Data, "ping")
	}
}

func TestRoundTripControlConnect(t *testing.T) {
	var buf [MaxPacketSize]byte
	token := [4]byte{1, 2, 3, 4}
	encoded, err := WriteControl(buf[:], ControlConnect, token, nil)
	if err != nil {
		t.Fatalf("WriteControl: %v", err)
	}
	p, ok := Read(encoded, nil)
	if !ok {
		t.Fatal("Read: expected ok")
	}
	if p.Connless {
		t.Fatal("expected connected packet")
	}
	if p.Kind != KindControl || p.Control != ControlConnect {
		t.Fatalf("got kind=%v control=%v, want control Connect", p.Kind, p.Control)
	}
	if p.Token != token {
		t.Fatalf("got token %v, want %v", p.Token, token)
	}
}

func TestRoundTripControlAccept(t *testing.T) {
	var buf [MaxPacketSize]byte
	token := [4]byte{5, 6, 7, 8}
	encoded, err := WriteControl(buf[:], ControlAccept, token, nil)
	if err != nil {
		t.Fatalf("WriteControl: %v", err)
	}
	p, ok := Read(encoded, nil)
	if !ok {
		t.Fatal("Read: expected ok")
	}
	if p.Control != ControlAccept || p.Token != token {
		t.Fatalf("got control=%v token=%v, want Accept/%v", p.Control, p.Token, token)
	}
}

func TestRoundTripControlClose(t *testing.T) {
	var buf [MaxPacketSize]byte
	encoded, err := WriteControl(buf[:], ControlClose, [4]byte{}, []byte("bye"))
	if err != nil {
		t.Fatalf("WriteControl: %v", err)
	}
	p, ok := Read(encoded, nil)
	if !ok {
		t.Fatal("Read: expected ok")
	}
	if p.Control != ControlClose {
		t.Fatalf("got control %v, want Close", p.Control)
	}
	if !bytes.Equal(p.Data, []byte("bye")) {
		t.Fatalf("got reason %q, want %q", p.Data, "bye")
	}
}

func TestRoundTripChunk(t *testing.T) {
	var buf [MaxPacketSize]byte
	encoded, err := WriteChunk(buf[:], true, 7, []byte("payload"))
	if err != nil {
		t.Fatalf("WriteChunk: %v", err)
	}
	p, ok := Read(encoded, nil)
	if !ok {
		t.Fatal("Read: expected ok")
	}
	if p.Kind != KindChunk || !p.Vital || p.Sequence != 7 {
		t.Fatalf("got kind=%v vital=%v seq=%d, want Chunk/true/7", p.Kind, p.Vital, p.Sequence)
	}
	if !bytes.Equal(p.Chunk, []byte("payload")) {
		t.Fatalf("got chunk %q, want %q", p.Chunk, "payload")
	}
}

func TestWriteConnlessTooLong(t *testing.T) {
	var buf [MaxPacketSize]byte
	_, err := WriteConnless(buf[:], make([]byte, MaxPacketSize))
	if err != ErrTooLongData {
		t.Fatalf("got err %v, want ErrTooLongData", err)
	}
}

func TestWriteCapacityError(t *testing.T) {
	buf := make([]byte, 2)
	_, err := WriteConnless(buf, []byte("ping"))
	if err != ErrCapacity {
		t.Fatalf("got err %v, want ErrCapacity", err)
	}
}

func TestReadMalformed(t *testing.T) {
	if _, ok := Read(nil, nil); ok {
		t.Fatal("expected malformed for empty data")
	}
	if _, ok := Read([]byte{0xaa}, nil); ok {
		t.Fatal("expected malformed for unrecognized flag")
	}
}
