package models

import "testing"

func TestSqliteDSN(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"./cragtopo.db", "./cragtopo.db?_txlock=immediate&_busy_timeout=5000"},
		{"file:topo.db?cache=shared", "file:topo.db?cache=shared&_txlock=immediate&_busy_timeout=5000"},
		{"topo.db?_busy_timeout=100", "topo.db?_busy_timeout=100&_txlock=immediate"},
		{"topo.db?_txlock=deferred&_busy_timeout=100", "topo.db?_txlock=deferred&_busy_timeout=100"},
	}
	for _, tt := range tests {
		if got := SqliteDSN(tt.in); got != tt.want {
			t.Errorf("SqliteDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
