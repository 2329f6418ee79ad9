package applog

import "testing"

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"TRACE": LevelTrace,
		"debug": LevelDebug,
		"Info":  LevelInfo,
		"WARN":  LevelWarn,
		"error": LevelError,
		"":      LevelInfo,
		"bogus": LevelInfo,
	}
	for s, want := range cases {
		if got := parseLevel(s); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestConfigureDevNull(t *testing.T) {
	if err := Configure(Options{Level: "DEBUG"}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	Debug("this should not panic: %d", 1)
	Warn("nor should this: %s", "ok")
}

func TestDefaultSatisfiesWarnf(t *testing.T) {
	Default.Warnf("test warning %d", 1)
}
