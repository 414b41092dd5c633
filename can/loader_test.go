package can

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMap(t *testing.T) {
	path, err := filepath.Abs("../config/can/can_map.csv")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Skipf("can_map.csv not found at %s: %v", path, err)
	}

	m, err := LoadMap(path)
	if err != nil {
		t.Fatalf("LoadMap: %v", err)
	}

	fd, err := m.FrameByName("ETC_THROTTLE")
	if err != nil {
		t.Fatalf("FrameByName(ETC_THROTTLE): %v", err)
	}
	if fd.ID != 0x200 {
		t.Errorf("ETC_THROTTLE.ID = 0x%X, want 0x200", fd.ID)
	}
	if len(fd.Signals) != 4 {
		t.Errorf("ETC_THROTTLE has %d signals, want 4", len(fd.Signals))
	}

	rx := m.RXFrames()
	if len(rx) != 1 || rx[0].Name != "ETC_RX_CMD" {
		t.Errorf("RXFrames() = %v, want [ETC_RX_CMD]", frameNames(rx))
	}

	tx := m.TXFrames()
	if len(tx) != 3 {
		t.Errorf("len(TXFrames()) = %d, want 3", len(tx))
	}
}

func TestLoadMapRejectsInvalidDirection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.csv")
	csv := "direction,frame_id,frame_name,cycle_ms,dlc,signal_name,start_bit,bit_length,endianness,signed,factor,offset,min,max,default,unit,comment\n" +
		"sideways,0x100,BAD_FRAME,10,8,x,0,8,little,false,1,0,0,255,0,,\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadMap(path); err == nil {
		t.Fatal("expected error for invalid direction column")
	}
}

func TestLoadMapAcceptsBigEndianColumn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "be.csv")
	csv := "direction,frame_id,frame_name,cycle_ms,dlc,signal_name,start_bit,bit_length,endianness,signed,factor,offset,min,max,default,unit,comment\n" +
		"tx,0x100,BE_FRAME,10,8,x,0,8,big,false,1,0,0,255,0,,\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadMap(path)
	if err != nil {
		t.Fatalf("LoadMap: %v", err)
	}
	fd, err := m.FrameByName("BE_FRAME")
	if err != nil {
		t.Fatal(err)
	}
	if fd.Signals[0].Endianness != "big" {
		t.Errorf("Endianness = %q, want %q", fd.Signals[0].Endianness, "big")
	}
}

func frameNames(fds []*FrameDef) []string {
	out := make([]string, len(fds))
	for i, fd := range fds {
		out[i] = fd.Name
	}
	return out
}
