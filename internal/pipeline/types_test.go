package pipeline

import "testing"

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want Severity
	}{
		{"low", SeverityLow},
		{"medium", SeverityMedium},
		{"high", SeverityHigh},
		{"critical", SeverityCritical},
		{"URGENT", SeverityMedium},
		{"", SeverityMedium},
		{"garbage", SeverityMedium},
	}
	for _, tt := range tests {
		if got := ParseSeverity(tt.in); got != tt.want {
			t.Errorf("ParseSeverity(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestSeverity_Urgent(t *testing.T) {
	urgent := map[Severity]bool{
		SeverityLow:      false,
		SeverityMedium:   false,
		SeverityHigh:     true,
		SeverityCritical: true,
	}
	for severity, want := range urgent {
		if got := severity.Urgent(); got != want {
			t.Errorf("%s.Urgent() = %v, want %v", severity, got, want)
		}
	}
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in   string
		want Priority
	}{
		{"high", PriorityHigh},
		{"medium", PriorityMedium},
		{"low", PriorityLow},
		{"", PriorityMedium},
		{"critical", PriorityMedium},
	}
	for _, tt := range tests {
		if got := ParsePriority(tt.in); got != tt.want {
			t.Errorf("ParsePriority(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestSignal_String(t *testing.T) {
	tests := []struct {
		signal Signal
		want   string
	}{
		{SignalContinue, "continue"},
		{SignalBlock, "block"},
		{SignalExit, "exit"},
		{Signal(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.signal.String(); got != tt.want {
			t.Errorf("Signal(%d).String() = %q, want %q", tt.signal, got, tt.want)
		}
	}
}
