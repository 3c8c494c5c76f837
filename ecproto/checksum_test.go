package ecproto

import "testing"

func TestSum8(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected byte
	}{
		{
			name:     "empty data",
			data:     []byte{},
			expected: 0x00,
		},
		{
			name:     "single byte",
			data:     []byte{0x5A},
			expected: 0x5A,
		},
		{
			name:     "multiple bytes",
			data:     []byte{0x01, 0x02, 0x03, 0x04},
			expected: 0x0A,
		},
		{
			name:     "overflow wraps",
			data:     []byte{0xFF, 0x02},
			expected: 0x01,
		},
		{
			name:     "erased block is size mod 256 times 0xFF",
			data:     []byte{0xFF, 0xFF, 0xFF, 0xFF},
			expected: 0xFC,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Sum8(tt.data)
			if result != tt.expected {
				t.Errorf("Sum8() = 0x%02X, want 0x%02X", result, tt.expected)
			}
		})
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusSuccess, "success"},
		{StatusInvalidCommand, "invalid command"},
		{StatusGeneralError, "error"},
		{StatusInvalidParam, "invalid parameter"},
		{StatusAccessDenied, "access denied"},
		{Status(99), "unknown status"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestStatusError(t *testing.T) {
	err := &StatusError{Op: "flash erase", Status: StatusAccessDenied}

	want := "flash erase failed: access denied (0x04)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	if !IsStatusError(err) {
		t.Error("IsStatusError() = false, want true")
	}

	if !IsAccessDenied(err) {
		t.Error("IsAccessDenied() = false, want true")
	}

	other := &StatusError{Op: "flash read", Status: StatusInvalidParam}
	if IsAccessDenied(other) {
		t.Error("IsAccessDenied() = true for invalid param, want false")
	}
}

func BenchmarkSum8(b *testing.B) {
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Sum8(data)
	}
}
