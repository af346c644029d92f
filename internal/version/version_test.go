package version

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"2.7.2", "2.7.2", false},
		{" 2.7.2.0 ", "2.7.2.0", false},
		{"10", "10", false},
		{"", "", true},
		{"2.7.2-rc1", "", true},
		{"v2.7", "", true},
		{"2..7", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := Parse(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidVersion) {
					t.Fatalf("Parse(%q) err = %v, want ErrInvalidVersion", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.in, err)
			}
			if v.String() != tt.want {
				t.Fatalf("String() = %q, want %q", v.String(), tt.want)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"2.7.0", "2.7.2", -1},
		{"2.7.10", "2.7.9", 1},
		{"2.7", "2.7.0", 0},
		{"2.7.2.0", "2.7.2", 0},
		{"3.0", "2.99.99", 1},
	}
	for _, tt := range tests {
		got := MustParse(tt.a).Compare(MustParse(tt.b))
		if got != tt.want {
			t.Errorf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestZeroVersionSortsFirst(t *testing.T) {
	var zero Version
	if !zero.IsZero() {
		t.Fatal("expected zero version")
	}
	if !zero.LessThan(MustParse("0.0.1")) {
		t.Fatal("zero version should sort before 0.0.1")
	}
	if !zero.Equal(Version{}) {
		t.Fatal("zero versions should be equal")
	}
}

func TestSort(t *testing.T) {
	vs := []Version{MustParse("2.7.2"), MustParse("2.6.0"), MustParse("2.7.0"), MustParse("2.7.1")}
	Sort(vs)
	want := []string{"2.6.0", "2.7.0", "2.7.1", "2.7.2"}
	for i, v := range vs {
		if v.String() != want[i] {
			t.Fatalf("Sort()[%d] = %s, want %s", i, v, want[i])
		}
	}
}

func TestMustParsePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	_ = MustParse("not-a-version")
}
