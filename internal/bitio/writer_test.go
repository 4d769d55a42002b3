package bitio

import "testing"

func TestWriteBitsAcrossBoundary(t *testing.T) {
	w := NewWriter(4)
	w.WriteBits(0x3, 2)
	w.WriteBits(0x15, 6)
	got := w.Data()
	want := byte(0x3<<6 | 0x15)
	if len(got) != 1 || got[0] != want {
		t.Fatalf("got %v, want [%08b]", got, want)
	}
}

func TestWriteUE(t *testing.T) {
	cases := []struct {
		value uint32
		want  []byte
	}{
		{0, []byte{0x80}},
		{1, []byte{0x40}},
		{2, []byte{0x60}},
		{3, []byte{0x20}},
	}
	for _, c := range cases {
		w := NewWriter(4)
		w.WriteUE(c.value)
		w.ByteAlign()
		if got := w.Data(); len(got) != len(c.want) || got[0] != c.want[0] {
			t.Errorf("WriteUE(%d) = %v, want %v", c.value, got, c.want)
		}
	}
}

func TestWriteSEZigZag(t *testing.T) {
	cases := []struct {
		value int32
		ue    uint32
	}{
		{0, 0},
		{1, 1},
		{-1, 2},
		{2, 3},
		{-2, 4},
	}
	for _, c := range cases {
		a := NewWriter(4)
		a.WriteSE(c.value)
		b := NewWriter(4)
		b.WriteUE(c.ue)
		if string(a.Data()) != string(b.Data()) {
			t.Errorf("WriteSE(%d) != WriteUE(%d)", c.value, c.ue)
		}
	}
}

func TestByteAlignAndWriteBytes(t *testing.T) {
	w := NewWriter(4)
	w.WriteBits(0x1, 1)
	w.ByteAlign()
	if w.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", w.Len())
	}
	w.WriteBytes([]byte{0xAB, 0xCD})
	if w.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", w.Len())
	}
}
