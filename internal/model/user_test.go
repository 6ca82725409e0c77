package model

import "testing"

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role     string
		minimum  string
		expected bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleNurse, true},
		{RoleNurse, RoleAdmin, false},
		{RoleNurse, RoleNurse, true},
		// Unknown roles fail-closed.
		{"unknown", RoleNurse, false},
		{RoleAdmin, "unknown", false},
		{"", "", false},
		{"", RoleNurse, false},
	}

	for _, tt := range tests {
		got := RoleAtLeast(tt.role, tt.minimum)
		if got != tt.expected {
			t.Errorf("RoleAtLeast(%q, %q) = %v, want %v", tt.role, tt.minimum, got, tt.expected)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"short", true},
		{"1234567", true},
		{"12345678", false},
		{"a-valid-password", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
		}
	}
}

func TestLowStock(t *testing.T) {
	tests := []struct {
		stock, threshold int
		want             bool
	}{
		{25, 20, false},
		{21, 20, false},
		{20, 20, true},
		{19, 20, true},
		{0, 0, true},
		{0, 5, true},
		{1, 0, false},
	}

	for _, tt := range tests {
		m := Medication{CurrentStock: tt.stock, MinimumThreshold: tt.threshold}
		if got := m.LowStock(); got != tt.want {
			t.Errorf("LowStock(stock=%d, threshold=%d) = %v, want %v", tt.stock, tt.threshold, got, tt.want)
		}
	}
}
