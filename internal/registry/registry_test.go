// internal/registry/registry_test.go
package registry

import (
	"errors"
	"testing"
)

func TestLookup(t *testing.T) {
	table, err := NewTable([]Descriptor{
		{Name: "active_power", Address: 32080, Length: 2, Kind: Signed, Unit: "W"},
	})
	if err != nil {
		t.Fatalf("NewTable() err=%v", err)
	}

	d, err := table.Lookup("active_power")
	if err != nil {
		t.Fatalf("Lookup err=%v", err)
	}
	if d.Address != 32080 || d.Length != 2 {
		t.Fatalf("unexpected descriptor: %+v", d)
	}
}

func TestLookupUnknown(t *testing.T) {
	table, err := NewTable(nil)
	if err != nil {
		t.Fatalf("NewTable() err=%v", err)
	}

	_, err = table.Lookup("no_such_register")
	var uerr *UnknownRegisterError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected UnknownRegisterError, got %v", err)
	}
	if uerr.Name != "no_such_register" {
		t.Fatalf("error names wrong register: %q", uerr.Name)
	}
}

func TestDuplicateNameRejected(t *testing.T) {
	_, err := NewTable([]Descriptor{
		{Name: "x", Address: 1, Length: 1, Kind: Unsigned},
		{Name: "x", Address: 2, Length: 1, Kind: Unsigned},
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestOverlapRejected(t *testing.T) {
	_, err := NewTable([]Descriptor{
		{Name: "a", Address: 100, Length: 2, Kind: Unsigned},
		{Name: "b", Address: 101, Length: 1, Kind: Unsigned},
	})
	if err == nil {
		t.Fatal("expected overlap error, got nil")
	}
}

func TestAliasOverlapAllowed(t *testing.T) {
	_, err := NewTable([]Descriptor{
		{Name: "grid_voltage", Address: 32066, Length: 1, Kind: Unsigned, Alias: true},
		{Name: "line_voltage_a_b", Address: 32066, Length: 1, Kind: Unsigned},
	})
	if err != nil {
		t.Fatalf("alias overlap rejected: %v", err)
	}
}

func TestEnumRequiresMapping(t *testing.T) {
	_, err := NewTable([]Descriptor{
		{Name: "mode", Address: 1, Length: 1, Kind: Enum},
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestTimestampLengthEnforced(t *testing.T) {
	_, err := NewTable([]Descriptor{
		{Name: "ts", Address: 1, Length: 1, Kind: Timestamp},
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestScale(t *testing.T) {
	s := Gain(10)
	if got := s.Apply(1234); got != 123.4 {
		t.Fatalf("Apply = %v", got)
	}
	if got := s.Invert(123.4); got != 1234 {
		t.Fatalf("Invert = %v", got)
	}

	var unit Scale
	if !unit.IsUnit() {
		t.Fatal("zero scale should be unit")
	}
	if got := unit.Apply(7); got != 7 {
		t.Fatalf("unit Apply = %v", got)
	}
}

func TestBuiltinCatalog(t *testing.T) {
	table := DefaultTable()
	if table.Len() == 0 {
		t.Fatal("empty catalog")
	}

	for _, name := range []string{
		"model_name", "serial_number", "active_power", "device_status",
		"state_1", "startup_time", "storage_working_mode",
	} {
		if _, err := table.Lookup(name); err != nil {
			t.Fatalf("catalog missing %s: %v", name, err)
		}
	}

	d, err := table.Lookup("grid_voltage")
	if err != nil {
		t.Fatalf("Lookup err=%v", err)
	}
	if !d.Alias {
		t.Fatal("grid_voltage must be an alias of line_voltage_a_b")
	}
}
