package options

import "testing"

func TestNewAppliesDefaults(t *testing.T) {
	o := New()
	if o.DataDir != "" {
		t.Fatalf("default DataDir = %q, want empty", o.DataDir)
	}
	if o.CompactionThreshold != DefaultCompactionThreshold {
		t.Fatalf("default CompactionThreshold = %d, want %d", o.CompactionThreshold, DefaultCompactionThreshold)
	}
	if o.Sync != DefaultSync {
		t.Fatalf("default Sync = %v, want %v", o.Sync, DefaultSync)
	}
}

func TestWithOverrides(t *testing.T) {
	o := New(
		WithDataDir("/tmp/data"),
		WithCompactionThreshold(2048),
		WithSync(true),
	)
	if o.DataDir != "/tmp/data" {
		t.Fatalf("DataDir = %q", o.DataDir)
	}
	if o.CompactionThreshold != 2048 {
		t.Fatalf("CompactionThreshold = %d", o.CompactionThreshold)
	}
	if !o.Sync {
		t.Fatalf("Sync = false, want true")
	}
}

func TestWithDataDirIgnoresEmptyString(t *testing.T) {
	o := New(WithDataDir("/tmp/data"), WithDataDir(""))
	if o.DataDir != "/tmp/data" {
		t.Fatalf("DataDir = %q, want unchanged by empty override", o.DataDir)
	}
}

func TestWithCompactionThresholdIgnoresZero(t *testing.T) {
	o := New(WithCompactionThreshold(0))
	if o.CompactionThreshold != DefaultCompactionThreshold {
		t.Fatalf("CompactionThreshold = %d, want default preserved", o.CompactionThreshold)
	}
}
